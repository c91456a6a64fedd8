package cache

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for errors.Is comparisons, matching query/errors.go's
// style rather than the source's ad hoc error strings.
var (
	ErrLockTimeout    = errors.New("cache lock timeout")
	ErrCacheCorruption = errors.New("cache corruption")
	ErrPoolFull       = errors.New("blob pool full")
	ErrTablesFull     = errors.New("hash tables full")
	ErrKeyNotFound    = errors.New("key not found")
)

// LockTimeoutError reports that the process-wide segment lock was not
// acquired within the configured timeout (spec.md §5, §7).
type LockTimeoutError struct {
	Waited time.Duration
	Limit  time.Duration
}

func (e *LockTimeoutError) Error() string {
	return fmt.Sprintf("cache lock not acquired after %s (limit %s)", e.Waited, e.Limit)
}

func (e *LockTimeoutError) Unwrap() error { return ErrLockTimeout }

// CorruptionError reports a header magic/version mismatch, an out-of-range
// offset, or a malformed blob header (spec.md §7). Per spec.md's
// propagation policy this must always surface to the caller; callers
// should detach from the segment rather than retry.
type CorruptionError struct {
	Detail        string
	CorrelationID string
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("cache corruption (correlation %s): %s", e.CorrelationID, e.Detail)
}

func (e *CorruptionError) Unwrap() error { return ErrCacheCorruption }

// PoolFullError reports that the blob pool has no room for an append
// (spec.md §4.5, §7). CacheSegment.Put compacts once and retries before
// returning it.
type PoolFullError struct {
	Requested  uint32
	Available  uint64
}

func (e *PoolFullError) Error() string {
	return fmt.Sprintf("blob pool full: need %d bytes, %d available", e.Requested, e.Available)
}

func (e *PoolFullError) Unwrap() error { return ErrPoolFull }

// TablesFullError reports that inserting would push a hash table's load
// factor past load_factor_max (spec.md §3.2, §7). Resizing is explicitly
// out of scope; the operation fails outright.
type TablesFullError struct {
	Table       string
	ItemCount   uint64
	TableSlots  uint64
	LoadFactorMax float64
}

func (e *TablesFullError) Error() string {
	return fmt.Sprintf("%s full: %d/%d items would exceed load factor %.2f",
		e.Table, e.ItemCount, e.TableSlots, e.LoadFactorMax)
}

func (e *TablesFullError) Unwrap() error { return ErrTablesFull }
