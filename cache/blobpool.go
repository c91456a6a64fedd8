package cache

import "encoding/binary"

// Blob type tags (spec.md §3.2).
const (
	blobTypeKey     byte = 1
	blobTypeContent byte = 2
)

const blobHeaderSize = 1 + 4 // type:u8 + length:u32_le

func alignedBlobSize(payloadLen int) uint64 {
	return align8(uint64(blobHeaderSize + payloadLen))
}

// appendBlob implements §4.5's append: validate bounds, write
// [type:1][len:4][bytes], round blob_next up to 8-byte alignment, update
// blob_used/blob_next. Fails with PoolFullError if there is no room;
// the caller (cache.go) is responsible for evicting/compacting and
// retrying.
func (s *Segment) appendBlob(blobType byte, payload []byte) (uint64, error) {
	entrySize := alignedBlobSize(len(payload))
	poolEnd := s.blobPoolStart() + s.blobPoolSize()
	addr := s.blobNext()
	if addr+entrySize > poolEnd {
		return 0, &PoolFullError{Requested: uint32(entrySize), Available: poolEnd - addr}
	}

	s.data[addr] = blobType
	binary.LittleEndian.PutUint32(s.data[addr+1:addr+5], uint32(len(payload)))
	copy(s.data[addr+5:addr+5+uint64(len(payload))], payload)
	for i := addr + 5 + uint64(len(payload)); i < addr+entrySize; i++ {
		s.data[i] = 0
	}

	s.setBlobNext(addr + entrySize)
	s.setBlobUsed(s.blobUsed() + entrySize)
	return addr, nil
}

// readBlob implements §4.5's read: bounds-check addr+header+len against
// the pool end before returning a view into the segment, never a copy
// (callers that need an owned copy, like CacheSegment.Get, copy it
// themselves).
func (s *Segment) readBlob(addr uint64) (byte, []byte, error) {
	poolEnd := s.blobPoolStart() + s.blobPoolSize()
	if addr < s.blobPoolStart() || addr+blobHeaderSize > poolEnd {
		return 0, nil, &CorruptionError{Detail: "blob address out of pool bounds", CorrelationID: s.correlationID}
	}
	blobType := s.data[addr]
	length := binary.LittleEndian.Uint32(s.data[addr+1 : addr+5])
	end := addr + blobHeaderSize + uint64(length)
	if end > poolEnd {
		return 0, nil, &CorruptionError{Detail: "blob length extends past pool end", CorrelationID: s.correlationID}
	}
	return blobType, s.data[addr+blobHeaderSize : end], nil
}
