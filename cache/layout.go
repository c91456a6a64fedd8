package cache

import "math"

// LayoutParams are the sizing inputs spec.md §4.4 requires at
// initialization time. DedupFactor defaults to 1.0 (no assumed sharing
// of content blobs across keys) when zero.
type LayoutParams struct {
	MaxItems      uint64
	AvgKeyBytes   uint64
	AvgValueBytes uint64
	LoadFactorMax float64
	DedupFactor   float64
}

const defaultLoadFactorMax = 0.65

func (p LayoutParams) normalized() LayoutParams {
	if p.LoadFactorMax <= 0 {
		p.LoadFactorMax = defaultLoadFactorMax
	}
	if p.DedupFactor <= 0 {
		p.DedupFactor = 1.0
	}
	return p
}

// Layout is the set of region offsets/sizes computed from LayoutParams by
// the §4.4 formula. All boundaries are 8-byte aligned.
type Layout struct {
	HeaderSize    uint64
	KeyTableStart uint64
	KeyTableSlots uint64
	KeyTableSize  uint64
	FPTableStart  uint64
	FPTableSlots  uint64
	FPTableSize   uint64
	BlobPoolStart uint64
	BlobPoolSize  uint64
	TotalSize     uint64
}

// keyEntrySize follows the field list in spec.md §3.2/§6.3
// (key_hash:16 + key_addr:8 + content_fp:16 + last_access_ns:8 = 48
// bytes), not the "40 bytes" figure stated in the same paragraph --
// the two numbers disagree in spec.md itself; the field list is the
// operative definition since the wire format table repeats it
// byte-for-byte (see DESIGN.md).
const (
	keyEntrySize = 48
	fpEntrySize  = 24
)

func align8(n uint64) uint64 { return (n + 7) &^ 7 }

// ComputeLayout implements spec.md §4.4's sizing formula verbatim:
// key_table_slots = ceil(max_items / load_factor_max), fp_table_slots
// mirrors it (worst case: no dedup), and blob_pool_size assumes a 1.5x
// overhead factor over the estimated key and (deduped) value bytes.
func ComputeLayout(p LayoutParams) Layout {
	p = p.normalized()

	keySlots := uint64(math.Ceil(float64(p.MaxItems) / p.LoadFactorMax))
	fpSlots := keySlots

	keyTableSize := align8(keySlots * keyEntrySize)
	fpTableSize := align8(fpSlots * fpEntrySize)

	estimatedBytes := float64(p.MaxItems)*float64(p.AvgKeyBytes) +
		float64(p.MaxItems)*float64(p.AvgValueBytes)*p.DedupFactor
	blobPoolSize := align8(uint64(math.Ceil(1.5 * estimatedBytes)))

	// Region order follows spec.md §3.2: Header, BlobPool, KeyTable,
	// FingerprintTable.
	headerSize := uint64(headerRegionSize)
	blobPoolStart := headerSize
	keyTableStart := blobPoolStart + blobPoolSize
	fpTableStart := keyTableStart + keyTableSize
	totalSize := fpTableStart + fpTableSize

	return Layout{
		HeaderSize:    headerSize,
		KeyTableStart: keyTableStart,
		KeyTableSlots: keySlots,
		KeyTableSize:  keyTableSize,
		FPTableStart:  fpTableStart,
		FPTableSlots:  fpSlots,
		FPTableSize:   fpTableSize,
		BlobPoolStart: blobPoolStart,
		BlobPoolSize:  blobPoolSize,
		TotalSize:     totalSize,
	}
}
