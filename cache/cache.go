package cache

import (
	"errors"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Config bundles everything needed to create or attach a cache segment
// (spec.md §4.4's sizing inputs plus the lock/logging/metrics ambient
// concerns SPEC_FULL.md adds).
type Config struct {
	Path              string
	Layout            LayoutParams
	LockTimeout       time.Duration
	SlowLockThreshold time.Duration
	Logger            *zap.Logger
	Registerer        prometheus.Registerer
}

// Stats is spec.md §4.8's stats() result.
type Stats struct {
	ItemCount    uint64
	BlobUsed     uint64
	BlobPoolSize uint64
	TableLoad    float64
	Tombstones   uint64
}

// CacheSegment is the public API surface spec.md §4.8 describes
// (get/put/delete/compact/stats), backed by an attached Segment.
type CacheSegment struct {
	seg *Segment
}

// CreateSegment lays out a brand-new segment file at cfg.Path sized per
// cfg.Layout and initializes an empty header/tables (spec.md §4.4).
func CreateSegment(cfg Config) (*CacheSegment, error) {
	layout := ComputeLayout(cfg.Layout)
	af, err := createSegmentFile(cfg.Path, layout.TotalSize)
	if err != nil {
		return nil, err
	}
	initHeader(af.data, layout, cfg.Layout.MaxItems)
	return wrapSegment(af, cfg)
}

// OpenSegment attaches to an existing segment file, validating its
// header before use (spec.md §7: CacheCorruption on a bad magic or
// version).
func OpenSegment(cfg Config) (*CacheSegment, error) {
	af, err := openSegmentFile(cfg.Path)
	if err != nil {
		return nil, err
	}
	if _, err := openHeader(af.data); err != nil {
		af.close()
		return nil, err
	}
	return wrapSegment(af, cfg)
}

func wrapSegment(af *attachedFile, cfg Config) (*CacheSegment, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	seg := &Segment{
		data:          af.data,
		backing:       af,
		logger:        logger,
		correlationID: uuid.NewString(),
	}
	seg.lock = newSegmentLock(int(af.file.Fd()), cfg.LockTimeout, cfg.SlowLockThreshold, logger)
	seg.metrics = newMetricsSet(cfg.Registerer, filepath.Base(cfg.Path))
	return &CacheSegment{seg: seg}, nil
}

// Detach unmaps the segment and closes its backing file descriptor.
// It does not alter the segment's contents; another process may still
// attach it.
func (c *CacheSegment) Detach() error {
	return c.seg.backing.close()
}

// Get implements spec.md §4.8's get: returns a copy of the content
// bytes and updates last_access_ns, or (nil, nil) on a miss.
func (c *CacheSegment) Get(key []byte) ([]byte, error) {
	if err := c.seg.lock.Lock(); err != nil {
		return nil, err
	}
	defer c.seg.lock.Unlock()

	res, err := c.seg.keyLookup(key)
	if err != nil {
		return nil, err
	}
	if !res.found {
		return nil, nil
	}

	fp := c.seg.keySlotContentFP(res.slot)
	addr, ok := c.seg.fpLookup(fp)
	if !ok {
		return nil, &CorruptionError{
			Detail:        "key entry references a missing fingerprint entry",
			CorrelationID: c.seg.correlationID,
		}
	}
	_, payload, err := c.seg.readBlob(addr)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(payload))
	copy(out, payload)

	c.seg.setKeySlotLastAccess(res.slot, uint64(time.Now().UnixNano()))
	c.updateMetrics()
	return out, nil
}

// Put implements spec.md §4.8's put: insert-or-replace with
// fingerprint-table dedup. It evicts one entry at capacity or on a full
// KeyTable, and compacts once on a full blob pool, before giving up.
func (c *CacheSegment) Put(key, value []byte) error {
	if err := c.seg.lock.Lock(); err != nil {
		return err
	}
	defer c.seg.lock.Unlock()

	now := uint64(time.Now().UnixNano())
	fp := Fingerprint128(value)

	if _, _, err := c.seg.fpGetOrPut(fp, value); err != nil {
		var poolFull *PoolFullError
		if !errors.As(err, &poolFull) {
			return err
		}
		if _, cerr := c.seg.compact(false); cerr != nil {
			return cerr
		}
		if _, _, err = c.seg.fpGetOrPut(fp, value); err != nil {
			return err
		}
	}

	res, err := c.seg.keyLookup(key)
	if err != nil {
		return err
	}
	if !res.found && c.seg.itemCount()+1 > c.seg.maxItems() {
		if err := c.seg.evictOne(newEvictionRand()); err != nil {
			return err
		}
	}

	if err := c.seg.keyInsert(key, fp, now); err != nil {
		var tablesFull *TablesFullError
		var poolFull *PoolFullError
		switch {
		case errors.As(err, &tablesFull):
			if everr := c.seg.evictOne(newEvictionRand()); everr != nil {
				return everr
			}
			err = c.seg.keyInsert(key, fp, now)
		case errors.As(err, &poolFull):
			if _, cerr := c.seg.compact(false); cerr != nil {
				return cerr
			}
			err = c.seg.keyInsert(key, fp, now)
		}
		if err != nil {
			return err
		}
	}

	c.updateMetrics()
	return nil
}

func newEvictionRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Delete implements spec.md §4.8's delete: tombstones the key entry.
// Content blobs remain until compaction removes the unreferenced ones.
func (c *CacheSegment) Delete(key []byte) error {
	if err := c.seg.lock.Lock(); err != nil {
		return err
	}
	defer c.seg.lock.Unlock()

	if _, err := c.seg.keyDelete(key); err != nil {
		return err
	}
	c.updateMetrics()
	return nil
}

// Touch implements spec.md §4.6's touch: refreshes a key's last_access_ns
// without re-reading or re-hashing its content, for callers that track
// recency independently of a Get (e.g. a bulk freshness sweep). A miss
// is reported as ErrKeyNotFound rather than a silent no-op.
func (c *CacheSegment) Touch(key []byte) error {
	if err := c.seg.lock.Lock(); err != nil {
		return err
	}
	defer c.seg.lock.Unlock()

	found, err := c.seg.keyTouch(key, uint64(time.Now().UnixNano()))
	if err != nil {
		return err
	}
	if !found {
		return ErrKeyNotFound
	}
	c.updateMetrics()
	return nil
}

// Compact implements spec.md §4.7/§4.8's compact(). With dryRun set, it
// reports the relocation it would perform without mutating the segment
// (grounded on database/dry_run.go's preview-without-committing shape).
func (c *CacheSegment) Compact(dryRun bool) (*CompactionReport, error) {
	if err := c.seg.lock.Lock(); err != nil {
		return nil, err
	}
	defer c.seg.lock.Unlock()

	report, err := c.seg.compact(dryRun)
	if err != nil {
		return nil, err
	}
	if !dryRun {
		c.updateMetrics()
	}
	return report, nil
}

// Stats implements spec.md §4.8's stats().
func (c *CacheSegment) Stats() (Stats, error) {
	if err := c.seg.lock.Lock(); err != nil {
		return Stats{}, err
	}
	defer c.seg.lock.Unlock()
	return c.statsLocked(), nil
}

func (c *CacheSegment) statsLocked() Stats {
	slots := c.seg.keyTableSlots()
	var tombstones uint64
	for i := uint64(0); i < slots; i++ {
		if c.seg.keySlotHash(i).isTombstone() {
			tombstones++
		}
	}
	var load float64
	if slots > 0 {
		load = float64(c.seg.itemCount()) / float64(slots)
	}
	return Stats{
		ItemCount:    c.seg.itemCount(),
		BlobUsed:     c.seg.blobUsed(),
		BlobPoolSize: c.seg.blobPoolSize(),
		TableLoad:    load,
		Tombstones:   tombstones,
	}
}

func (c *CacheSegment) updateMetrics() {
	if c.seg.metrics == nil {
		return
	}
	c.seg.metrics.update(c.statsLocked())
}
