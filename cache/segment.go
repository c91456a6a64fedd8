// Package cache implements the content-addressable shared-memory cache
// (spec.md §3.2, §4.4-§4.8): a single fixed-size segment holding a header,
// a blob pool, and two open-addressed hash tables, guarded by one
// process-wide lock (§5).
package cache

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	magicValue       uint64 = 0x5343434143484530
	formatVersion    uint32 = 1
	headerRegionSize        = 512
)

// Header field byte offsets, per spec.md §6.3's on-disk layout table.
const (
	offMagic          = 0x00
	offVersion        = 0x08
	offSegmentVersion = 0x0C
	offTotalSize      = 0x10
	offBlobPoolStart  = 0x18
	offBlobPoolSize   = 0x20
	offBlobUsed       = 0x28
	offBlobNext       = 0x30
	offKeyTableStart  = 0x38
	offKeyTableSlots  = 0x40
	offFPTableStart   = 0x48
	offFPTableSlots   = 0x50
	offMaxItems       = 0x58
	offItemCount      = 0x60
)

// Segment is an attached view of a cache segment's shared memory. All
// mutation goes through the methods here, which assume the caller
// already holds lock (enforced by CacheSegment's exported API in
// cache.go, never by re-acquiring here — see lock.go's doc comment on
// why this module treats "reentrant" as an API-shape property instead
// of a recursive-mutex primitive).
type Segment struct {
	data          []byte
	backing       *attachedFile
	lock          *segmentLock
	logger        *zap.Logger
	metrics       *metricsSet
	correlationID string
}

func (s *Segment) u64(off int) uint64     { return binary.LittleEndian.Uint64(s.data[off : off+8]) }
func (s *Segment) setU64(off int, v uint64) { binary.LittleEndian.PutUint64(s.data[off:off+8], v) }
func (s *Segment) u32(off int) uint32     { return binary.LittleEndian.Uint32(s.data[off : off+4]) }
func (s *Segment) setU32(off int, v uint32) { binary.LittleEndian.PutUint32(s.data[off:off+4], v) }

func (s *Segment) magic() uint64            { return s.u64(offMagic) }
func (s *Segment) version() uint32          { return s.u32(offVersion) }
func (s *Segment) segmentVersion() uint32   { return s.u32(offSegmentVersion) }
func (s *Segment) totalSize() uint64        { return s.u64(offTotalSize) }
func (s *Segment) blobPoolStart() uint64    { return s.u64(offBlobPoolStart) }
func (s *Segment) blobPoolSize() uint64     { return s.u64(offBlobPoolSize) }
func (s *Segment) blobUsed() uint64         { return s.u64(offBlobUsed) }
func (s *Segment) setBlobUsed(v uint64)     { s.setU64(offBlobUsed, v) }
func (s *Segment) blobNext() uint64         { return s.u64(offBlobNext) }
func (s *Segment) setBlobNext(v uint64)     { s.setU64(offBlobNext, v) }
func (s *Segment) keyTableStart() uint64    { return s.u64(offKeyTableStart) }
func (s *Segment) keyTableSlots() uint64    { return s.u64(offKeyTableSlots) }
func (s *Segment) fpTableStart() uint64     { return s.u64(offFPTableStart) }
func (s *Segment) fpTableSlots() uint64     { return s.u64(offFPTableSlots) }
func (s *Segment) maxItems() uint64         { return s.u64(offMaxItems) }
func (s *Segment) itemCount() uint64        { return s.u64(offItemCount) }
func (s *Segment) setItemCount(v uint64)    { s.setU64(offItemCount, v) }

// initHeader zeroes the whole segment and writes a fresh header plus an
// empty (all-zero) KeyTable/FingerprintTable -- the all-zero slot state
// is exactly the spec's "empty" state for both tables, so no further
// table initialization is required (spec.md §3.2).
func initHeader(data []byte, l Layout, maxItems uint64) {
	for i := range data {
		data[i] = 0
	}
	s := &Segment{data: data}
	s.setU64(offMagic, magicValue)
	s.setU32(offVersion, formatVersion)
	s.setU32(offSegmentVersion, 1)
	s.setU64(offTotalSize, l.TotalSize)
	s.setU64(offBlobPoolStart, l.BlobPoolStart)
	s.setU64(offBlobPoolSize, l.BlobPoolSize)
	s.setU64(offBlobUsed, 0)
	s.setU64(offBlobNext, l.BlobPoolStart)
	s.setU64(offKeyTableStart, l.KeyTableStart)
	s.setU64(offKeyTableSlots, l.KeyTableSlots)
	s.setU64(offFPTableStart, l.FPTableStart)
	s.setU64(offFPTableSlots, l.FPTableSlots)
	s.setU64(offMaxItems, maxItems)
	s.setU64(offItemCount, 0)
}

// openHeader validates an existing segment's header against the magic
// and version this build expects (spec.md §7: CacheCorruption on
// magic/version mismatch or out-of-range offsets).
func openHeader(data []byte) (*Segment, error) {
	if len(data) < headerRegionSize {
		return nil, &CorruptionError{Detail: fmt.Sprintf("segment too small: %d bytes", len(data)), CorrelationID: uuid.NewString()}
	}
	s := &Segment{data: data}
	if s.magic() != magicValue {
		return nil, &CorruptionError{
			Detail:        fmt.Sprintf("bad magic 0x%x", s.magic()),
			CorrelationID: uuid.NewString(),
		}
	}
	if s.version() != formatVersion {
		return nil, &CorruptionError{
			Detail:        fmt.Sprintf("unsupported version %d", s.version()),
			CorrelationID: uuid.NewString(),
		}
	}
	if s.totalSize() > uint64(len(data)) {
		return nil, &CorruptionError{
			Detail:        fmt.Sprintf("total_size %d exceeds mapped region %d", s.totalSize(), len(data)),
			CorrelationID: uuid.NewString(),
		}
	}
	if s.blobPoolStart()+s.blobPoolSize() > s.keyTableStart() ||
		s.keyTableStart()+s.keyTableSlots()*keyEntrySize > s.fpTableStart() ||
		s.fpTableStart()+s.fpTableSlots()*fpEntrySize > s.totalSize() {
		return nil, &CorruptionError{Detail: "region offsets overlap or exceed segment bounds", CorrelationID: uuid.NewString()}
	}
	return s, nil
}
