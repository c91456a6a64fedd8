package cache

import (
	"bytes"
	"encoding/binary"
)

// FingerprintEntry field offsets within a slot (spec.md §3.2/§6.3):
// content_fp:16, content_addr:u64.
const (
	fpOffContentFP   = 0
	fpOffContentAddr = 16
)

func (s *Segment) fpSlotOffset(i uint64) uint64 {
	return s.fpTableStart() + i*fpEntrySize
}

func (s *Segment) fpSlotHash(i uint64) Hash128 {
	off := s.fpSlotOffset(i)
	var h Hash128
	copy(h[:], s.data[off+fpOffContentFP:off+fpOffContentFP+16])
	return h
}

func (s *Segment) fpSlotAddr(i uint64) uint64 {
	off := s.fpSlotOffset(i)
	return binary.LittleEndian.Uint64(s.data[off+fpOffContentAddr : off+fpOffContentAddr+8])
}

func (s *Segment) writeFPSlot(i uint64, fp Hash128, addr uint64) {
	off := s.fpSlotOffset(i)
	copy(s.data[off+fpOffContentFP:off+fpOffContentFP+16], fp[:])
	binary.LittleEndian.PutUint64(s.data[off+fpOffContentAddr:off+fpOffContentAddr+8], addr)
}

func (s *Segment) tombstoneFPSlot(i uint64) {
	off := s.fpSlotOffset(i)
	copy(s.data[off+fpOffContentFP:off+fpOffContentFP+16], tombstoneHash[:])
}

// fpGetOrPut implements §4.6's FingerprintTable.get_or_put: probe for an
// existing fingerprint (verifying the stored bytes actually match per
// §4.6's collision policy, since the 128-bit hash is only a hint), and
// on a miss append the content blob and claim a slot.
func (s *Segment) fpGetOrPut(fp Hash128, contentBytes []byte) (addr uint64, isNew bool, err error) {
	slots := s.fpTableSlots()
	start := probeStart(fp, slots)
	var freeSlot uint64
	haveFree := false

	for step := uint64(0); step < slots; step++ {
		idx := (start + step) % slots
		h := s.fpSlotHash(idx)
		switch {
		case h.isZero():
			if !haveFree {
				freeSlot, haveFree = idx, true
			}
			goto insert
		case h.isTombstone():
			if !haveFree {
				freeSlot, haveFree = idx, true
			}
		default:
			if h == fp {
				existingAddr := s.fpSlotAddr(idx)
				_, stored, rerr := s.readBlob(existingAddr)
				if rerr != nil {
					return 0, false, rerr
				}
				if bytes.Equal(stored, contentBytes) {
					return existingAddr, false, nil
				}
			}
		}
	}

insert:
	if !haveFree {
		return 0, false, &TablesFullError{Table: "FingerprintTable", ItemCount: slots, TableSlots: slots, LoadFactorMax: defaultLoadFactorMax}
	}
	contentAddr, err := s.appendBlob(blobTypeContent, contentBytes)
	if err != nil {
		return 0, false, err
	}
	s.writeFPSlot(freeSlot, fp, contentAddr)
	return contentAddr, true, nil
}

// fpLookup finds the content_addr stored for fp without needing the
// original content bytes on hand, used by Get (which only has a key,
// not the value it maps to) to resolve the fingerprint a KeyEntry
// references.
func (s *Segment) fpLookup(fp Hash128) (uint64, bool) {
	slots := s.fpTableSlots()
	start := probeStart(fp, slots)
	for step := uint64(0); step < slots; step++ {
		idx := (start + step) % slots
		h := s.fpSlotHash(idx)
		switch {
		case h.isZero():
			return 0, false
		case h.isTombstone():
			continue
		default:
			if h == fp {
				return s.fpSlotAddr(idx), true
			}
		}
	}
	return 0, false
}
