package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSegment(t *testing.T, maxItems uint64) *CacheSegment {
	t.Helper()
	path := filepath.Join(t.TempDir(), "segment.bin")
	cs, err := CreateSegment(Config{
		Path: path,
		Layout: LayoutParams{
			MaxItems:      maxItems,
			AvgKeyBytes:   16,
			AvgValueBytes: 32,
			LoadFactorMax: defaultLoadFactorMax,
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Detach() })
	return cs
}

func TestCacheRoundTrip(t *testing.T) {
	cs := newTestSegment(t, 8)
	require.NoError(t, cs.Put([]byte("q1"), []byte("plan-bytes-1")))

	got, err := cs.Get([]byte("q1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("plan-bytes-1"), got)

	miss, err := cs.Get([]byte("nope"))
	require.NoError(t, err)
	assert.Nil(t, miss)
}

func TestCacheTouch(t *testing.T) {
	cs := newTestSegment(t, 8)
	require.NoError(t, cs.Put([]byte("q1"), []byte("plan-bytes-1")))

	require.NoError(t, cs.Touch([]byte("q1")))
	assert.ErrorIs(t, cs.Touch([]byte("nope")), ErrKeyNotFound)
}

// TestCacheDedupS5 is spec.md §8 scenario S5: two keys sharing the same
// value dedup to a single content blob.
func TestCacheDedupS5(t *testing.T) {
	cs := newTestSegment(t, 8)
	plan1 := []byte("shared-plan-bytes")

	require.NoError(t, cs.Put([]byte("q1"), plan1))
	require.NoError(t, cs.Put([]byte("q2"), plan1))

	got1, err := cs.Get([]byte("q1"))
	require.NoError(t, err)
	got2, err := cs.Get([]byte("q2"))
	require.NoError(t, err)
	assert.Equal(t, plan1, got1)
	assert.Equal(t, plan1, got2)

	stats, err := cs.Stats()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), stats.ItemCount)
	// One content blob for the shared value plus one key blob per key.
	assert.Equal(t, alignedBlobSize(len(plan1))+2*alignedBlobSize(len("q1")), stats.BlobUsed)
}

func TestCachePutIdempotenceProperty5(t *testing.T) {
	cs := newTestSegment(t, 8)
	require.NoError(t, cs.Put([]byte("k"), []byte("v")))
	statsAfterFirst, err := cs.Stats()
	require.NoError(t, err)

	require.NoError(t, cs.Put([]byte("k"), []byte("v")))
	statsAfterSecond, err := cs.Stats()
	require.NoError(t, err)

	assert.Equal(t, statsAfterFirst.ItemCount, statsAfterSecond.ItemCount)
	assert.Equal(t, statsAfterFirst.BlobUsed, statsAfterSecond.BlobUsed)
}

// TestCacheEvictionS6 is spec.md §8 scenario S6.
func TestCacheEvictionS6(t *testing.T) {
	cs := newTestSegment(t, 2)

	require.NoError(t, cs.Put([]byte("a"), []byte("A")))
	require.NoError(t, cs.Put([]byte("b"), []byte("B")))
	_, err := cs.seg.keyTouch([]byte("a"), uint64(1<<62))
	require.NoError(t, err)
	require.NoError(t, cs.Put([]byte("c"), []byte("C")))

	gotA, err := cs.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("A"), gotA)

	gotB, err := cs.Get([]byte("b"))
	require.NoError(t, err)
	assert.Nil(t, gotB)

	gotC, err := cs.Get([]byte("c"))
	require.NoError(t, err)
	assert.Equal(t, []byte("C"), gotC)
}

// TestCacheDeleteThenReinsertProperty9 exercises tombstone correctness
// (spec.md §8 property 9).
func TestCacheDeleteThenReinsertProperty9(t *testing.T) {
	cs := newTestSegment(t, 8)
	require.NoError(t, cs.Put([]byte("k"), []byte("v1")))
	require.NoError(t, cs.Delete([]byte("k")))

	miss, err := cs.Get([]byte("k"))
	require.NoError(t, err)
	assert.Nil(t, miss)

	require.NoError(t, cs.Put([]byte("k"), []byte("v2")))
	got, err := cs.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
}

// TestCacheCompactionS7 is spec.md §8 scenario S7.
func TestCacheCompactionS7(t *testing.T) {
	cs := newTestSegment(t, 16)
	keys := [][]byte{[]byte("k1"), []byte("k2"), []byte("k3"), []byte("k4")}
	for i, k := range keys {
		require.NoError(t, cs.Put(k, []byte{byte('A' + i)}))
	}
	require.NoError(t, cs.Delete(keys[1]))
	require.NoError(t, cs.Delete(keys[3]))

	report, err := cs.Compact(false)
	require.NoError(t, err)
	// 2 surviving keys each reference one key blob and one distinct
	// content blob (no dedup: the four values are all different).
	assert.Equal(t, 4, report.BlobsRelocated)

	survivors := [][]byte{keys[0], keys[2]}
	for _, k := range survivors {
		got, err := cs.Get(k)
		require.NoError(t, err)
		assert.NotNil(t, got)
	}
	for _, k := range []([]byte){keys[1], keys[3]} {
		got, err := cs.Get(k)
		require.NoError(t, err)
		assert.Nil(t, got)
	}

	stats, err := cs.Stats()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), stats.ItemCount)
}

func TestCacheCompactDryRunDoesNotMutate(t *testing.T) {
	cs := newTestSegment(t, 8)
	require.NoError(t, cs.Put([]byte("k1"), []byte("v1")))
	require.NoError(t, cs.Delete([]byte("k1")))

	before, err := cs.Stats()
	require.NoError(t, err)

	report, err := cs.Compact(true)
	require.NoError(t, err)
	assert.True(t, report.DryRun)

	after, err := cs.Stats()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestOpenSegmentRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "segment.bin")
	cs, err := CreateSegment(Config{Path: path, Layout: LayoutParams{MaxItems: 4, AvgKeyBytes: 8, AvgValueBytes: 8}})
	require.NoError(t, err)
	require.NoError(t, cs.Detach())

	bad, err := openSegmentFile(path)
	require.NoError(t, err)
	bad.data[0] ^= 0xFF
	require.NoError(t, bad.close())

	_, err = OpenSegment(Config{Path: path})
	require.Error(t, err)
	var corrupt *CorruptionError
	assert.ErrorAs(t, err, &corrupt)
}
