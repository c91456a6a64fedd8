package cache

import "math/rand"

const (
	evictionSampleSize   = 10
	evictionMaxResamples = 4
)

// evictOne implements spec.md §4.7's approximated-LRU eviction: sample
// evictionSampleSize slots uniformly, skip empty/tombstone entries, and
// tombstone whichever sampled occupied slot has the smallest
// last_access_ns. Falls back to a full linear scan when repeated
// sampling turns up nothing, e.g. a sparsely occupied table.
func (s *Segment) evictOne(rng *rand.Rand) error {
	slots := s.keyTableSlots()
	if slots == 0 {
		return &CorruptionError{Detail: "key table has zero slots", CorrelationID: s.correlationID}
	}

	for attempt := 0; attempt < evictionMaxResamples; attempt++ {
		var bestSlot, bestAccess uint64
		haveBest := false
		for i := 0; i < evictionSampleSize; i++ {
			idx := uint64(rng.Int63n(int64(slots)))
			h := s.keySlotHash(idx)
			if h.isZero() || h.isTombstone() {
				continue
			}
			access := s.keySlotLastAccess(idx)
			if !haveBest || access < bestAccess {
				bestSlot, bestAccess, haveBest = idx, access, true
			}
		}
		if haveBest {
			s.tombstoneKeySlot(bestSlot)
			s.setItemCount(s.itemCount() - 1)
			return nil
		}
	}

	var bestSlot, bestAccess uint64
	haveBest := false
	for idx := uint64(0); idx < slots; idx++ {
		h := s.keySlotHash(idx)
		if h.isZero() || h.isTombstone() {
			continue
		}
		access := s.keySlotLastAccess(idx)
		if !haveBest || access < bestAccess {
			bestSlot, bestAccess, haveBest = idx, access, true
		}
	}
	if !haveBest {
		return &CorruptionError{Detail: "eviction found no occupied slots despite a nonzero item_count", CorrelationID: s.correlationID}
	}
	s.tombstoneKeySlot(bestSlot)
	s.setItemCount(s.itemCount() - 1)
	return nil
}
