package cache

import (
	"encoding/binary"
	"sort"

	"go.uber.org/zap"
)

// CompactionReport summarizes what compact did (or, with DryRun set,
// would have done), grounded on the teacher's database/dry_run.go
// pattern of answering a question about an operation without committing
// it.
type CompactionReport struct {
	BlobsRelocated int
	BytesBefore    uint64
	BytesAfter     uint64
	BytesReclaimed uint64
	DryRun         bool
}

type blobRef struct {
	oldAddr uint64
	length  uint64
	kind    byte
}

// compact implements spec.md §4.7's in-place compaction. Comments below
// are numbered to match the spec's 8 steps; step 1 (holding the
// exclusive lock) is the caller's job -- cache.go never calls this
// outside a locked section.
func (s *Segment) compact(dryRun bool) (*CompactionReport, error) {
	keySlots := s.keyTableSlots()
	fpSlots := s.fpTableSlots()

	// Step 2: R_key / R_content_fp from the KeyTable.
	refKeyAddrs := map[uint64]bool{}
	refContentFPs := map[Hash128]bool{}
	for i := uint64(0); i < keySlots; i++ {
		h := s.keySlotHash(i)
		if h.isZero() || h.isTombstone() {
			continue
		}
		refKeyAddrs[s.keySlotAddr(i)] = true
		refContentFPs[s.keySlotContentFP(i)] = true
	}

	// Step 3: R_content from the FingerprintTable.
	refContentAddrs := map[uint64]bool{}
	for i := uint64(0); i < fpSlots; i++ {
		h := s.fpSlotHash(i)
		if h.isZero() || h.isTombstone() {
			continue
		}
		if refContentFPs[h] {
			refContentAddrs[s.fpSlotAddr(i)] = true
		}
	}

	// Step 4: validate every referenced blob; invalid entries are
	// logged and dropped rather than aborting compaction.
	var refs []blobRef
	for addr := range refKeyAddrs {
		kind, payload, err := s.readBlob(addr)
		if err != nil || kind != blobTypeKey {
			s.logger.Warn("compaction dropped invalid key blob reference", zap.Uint64("addr", addr))
			continue
		}
		refs = append(refs, blobRef{oldAddr: addr, length: alignedBlobSize(len(payload)), kind: blobTypeKey})
	}
	for addr := range refContentAddrs {
		kind, payload, err := s.readBlob(addr)
		if err != nil || kind != blobTypeContent {
			s.logger.Warn("compaction dropped invalid content blob reference", zap.Uint64("addr", addr))
			continue
		}
		refs = append(refs, blobRef{oldAddr: addr, length: alignedBlobSize(len(payload)), kind: blobTypeContent})
	}

	// Step 5: relocate referenced blobs in ascending address order,
	// sequentially from blob_pool_start.
	sort.Slice(refs, func(i, j int) bool { return refs[i].oldAddr < refs[j].oldAddr })
	relocation := make(map[uint64]uint64, len(refs))
	cursor := s.blobPoolStart()
	for _, r := range refs {
		relocation[r.oldAddr] = cursor
		cursor += r.length
	}

	report := &CompactionReport{
		BlobsRelocated: len(refs),
		BytesBefore:    s.blobUsed(),
		BytesAfter:     cursor - s.blobPoolStart(),
		DryRun:         dryRun,
	}
	report.BytesReclaimed = report.BytesBefore - report.BytesAfter

	if dryRun {
		return report, nil
	}

	// New addresses are always <= old addresses, so copying in
	// ascending order never overwrites a blob before it's read.
	for _, r := range refs {
		newAddr := relocation[r.oldAddr]
		if newAddr == r.oldAddr {
			continue
		}
		copy(s.data[newAddr:newAddr+r.length], s.data[r.oldAddr:r.oldAddr+r.length])
	}

	// Step 6: rewrite every key_addr/content_addr via the relocation
	// map. A referenced address that didn't survive validation (step 4
	// dropped it) tombstones its owning slot instead.
	for i := uint64(0); i < keySlots; i++ {
		h := s.keySlotHash(i)
		if h.isZero() || h.isTombstone() {
			continue
		}
		if newAddr, ok := relocation[s.keySlotAddr(i)]; ok {
			off := s.keySlotOffset(i)
			binary.LittleEndian.PutUint64(s.data[off+keyOffAddr:off+keyOffAddr+8], newAddr)
		} else {
			s.tombstoneKeySlot(i)
			s.setItemCount(s.itemCount() - 1)
		}
	}
	for i := uint64(0); i < fpSlots; i++ {
		h := s.fpSlotHash(i)
		if h.isZero() || h.isTombstone() {
			continue
		}
		if newAddr, ok := relocation[s.fpSlotAddr(i)]; ok {
			off := s.fpSlotOffset(i)
			binary.LittleEndian.PutUint64(s.data[off+fpOffContentAddr:off+fpOffContentAddr+8], newAddr)
		} else {
			s.tombstoneFPSlot(i)
		}
	}

	// Step 7: zero the tail, update blob_next/blob_used.
	poolEnd := s.blobPoolStart() + s.blobPoolSize()
	for i := cursor; i < poolEnd; i++ {
		s.data[i] = 0
	}
	s.setBlobNext(cursor)
	s.setBlobUsed(cursor - s.blobPoolStart())

	// Step 8 (release the lock) happens in the caller, cache.go.
	return report, nil
}
