package cache

import (
	"bytes"
	"encoding/binary"
)

// KeyEntry field offsets within a slot (spec.md §3.2/§6.3): key_hash:16,
// key_addr:u64, content_fp:16, last_access_ns:u64.
const (
	keyOffHash         = 0
	keyOffAddr         = 16
	keyOffContentFP    = 24
	keyOffLastAccessNs = 40
)

func (s *Segment) keySlotOffset(i uint64) uint64 {
	return s.keyTableStart() + i*keyEntrySize
}

func (s *Segment) keySlotHash(i uint64) Hash128 {
	off := s.keySlotOffset(i)
	var h Hash128
	copy(h[:], s.data[off+keyOffHash:off+keyOffHash+16])
	return h
}

func (s *Segment) keySlotAddr(i uint64) uint64 {
	off := s.keySlotOffset(i)
	return binary.LittleEndian.Uint64(s.data[off+keyOffAddr : off+keyOffAddr+8])
}

func (s *Segment) keySlotContentFP(i uint64) Hash128 {
	off := s.keySlotOffset(i)
	var h Hash128
	copy(h[:], s.data[off+keyOffContentFP:off+keyOffContentFP+16])
	return h
}

func (s *Segment) keySlotLastAccess(i uint64) uint64 {
	off := s.keySlotOffset(i)
	return binary.LittleEndian.Uint64(s.data[off+keyOffLastAccessNs : off+keyOffLastAccessNs+8])
}

func (s *Segment) writeKeySlot(i uint64, hash Hash128, addr uint64, contentFP Hash128, lastAccessNs uint64) {
	off := s.keySlotOffset(i)
	copy(s.data[off+keyOffHash:off+keyOffHash+16], hash[:])
	binary.LittleEndian.PutUint64(s.data[off+keyOffAddr:off+keyOffAddr+8], addr)
	copy(s.data[off+keyOffContentFP:off+keyOffContentFP+16], contentFP[:])
	binary.LittleEndian.PutUint64(s.data[off+keyOffLastAccessNs:off+keyOffLastAccessNs+8], lastAccessNs)
}

func (s *Segment) setKeySlotContentFP(i uint64, fp Hash128) {
	off := s.keySlotOffset(i)
	copy(s.data[off+keyOffContentFP:off+keyOffContentFP+16], fp[:])
}

func (s *Segment) setKeySlotLastAccess(i uint64, ns uint64) {
	off := s.keySlotOffset(i)
	binary.LittleEndian.PutUint64(s.data[off+keyOffLastAccessNs:off+keyOffLastAccessNs+8], ns)
}

func (s *Segment) tombstoneKeySlot(i uint64) {
	off := s.keySlotOffset(i)
	copy(s.data[off+keyOffHash:off+keyOffHash+16], tombstoneHash[:])
}

// keyLookupResult is what keyLookup reports about a probe.
type keyLookupResult struct {
	slot      uint64
	found     bool  // an occupied slot whose key bytes match
	freeSlot  uint64
	haveFree  bool
}

// keyLookup implements §4.6's KeyTable.lookup probe: skip tombstones,
// compare key bytes on hash match, stop at the first empty slot. It
// also records the first tombstone/empty slot seen, so insert can reuse
// the probe without re-walking the chain.
func (s *Segment) keyLookup(keyBytes []byte) (keyLookupResult, error) {
	hash := Fingerprint128(keyBytes)
	slots := s.keyTableSlots()
	start := probeStart(hash, slots)
	var res keyLookupResult

	for step := uint64(0); step < slots; step++ {
		idx := (start + step) % slots
		h := s.keySlotHash(idx)
		switch {
		case h.isZero():
			if !res.haveFree {
				res.freeSlot, res.haveFree = idx, true
			}
			return res, nil
		case h.isTombstone():
			if !res.haveFree {
				res.freeSlot, res.haveFree = idx, true
			}
		default:
			if h == hash {
				addr := s.keySlotAddr(idx)
				_, stored, err := s.readBlob(addr)
				if err != nil {
					return res, err
				}
				if bytes.Equal(stored, keyBytes) {
					res.slot, res.found = idx, true
					return res, nil
				}
			}
		}
	}
	return res, nil
}

// keyInsert implements §4.6's KeyTable.insert: enforce load_factor_max,
// probe for an existing slot to replace or the first free slot to claim,
// then write key_addr/content_fp/last_access_ns. load_factor_max itself
// isn't part of the persisted header (spec.md §6.3's field table omits
// it), so enforcement always uses defaultLoadFactorMax regardless of
// what a segment was originally sized with.
func (s *Segment) keyInsert(keyBytes []byte, contentFP Hash128, nowNs uint64) error {
	res, err := s.keyLookup(keyBytes)
	if err != nil {
		return err
	}
	if res.found {
		s.setKeySlotContentFP(res.slot, contentFP)
		s.setKeySlotLastAccess(res.slot, nowNs)
		return nil
	}

	slots := s.keyTableSlots()
	if float64(s.itemCount()+1)/float64(slots) > defaultLoadFactorMax {
		return &TablesFullError{Table: "KeyTable", ItemCount: s.itemCount() + 1, TableSlots: slots, LoadFactorMax: defaultLoadFactorMax}
	}
	if !res.haveFree {
		return &TablesFullError{Table: "KeyTable", ItemCount: s.itemCount(), TableSlots: slots, LoadFactorMax: defaultLoadFactorMax}
	}

	keyAddr, err := s.appendBlob(blobTypeKey, keyBytes)
	if err != nil {
		return err
	}
	hash := Fingerprint128(keyBytes)
	s.writeKeySlot(res.freeSlot, hash, keyAddr, contentFP, nowNs)
	s.setItemCount(s.itemCount() + 1)
	return nil
}

// keyTouch updates last_access_ns without mutating content_fp.
func (s *Segment) keyTouch(keyBytes []byte, nowNs uint64) (bool, error) {
	res, err := s.keyLookup(keyBytes)
	if err != nil {
		return false, err
	}
	if !res.found {
		return false, nil
	}
	s.setKeySlotLastAccess(res.slot, nowNs)
	return true, nil
}

// keyDelete converts the matching slot to a tombstone and decrements
// item_count; a miss is a no-op.
func (s *Segment) keyDelete(keyBytes []byte) (bool, error) {
	res, err := s.keyLookup(keyBytes)
	if err != nil {
		return false, err
	}
	if !res.found {
		return false, nil
	}
	s.tombstoneKeySlot(res.slot)
	s.setItemCount(s.itemCount() - 1)
	return true, nil
}
