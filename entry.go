package hotcache

import "sync/atomic"

// hardSlot is the hard tier's payload: a strong reference to a value of
// type T plus its last-refresh timestamp. Equality between cache entries is
// defined by key equality alone (enforced by the index, not by comparing
// slots), so lastRefreshMs is the only mutable field and it is written
// through an atomic so a concurrent reader on the same node sees a
// consistent value without taking C2's write lock.
type hardSlot[T any] struct {
	value         *T
	lastRefreshMs atomic.Int64
}

func newHardSlot[T any](value *T, lastRefreshMs int64) *hardSlot[T] {
	s := &hardSlot[T]{value: value}
	s.lastRefreshMs.Store(lastRefreshMs)
	return s
}

// weakSlot is the weak tier's payload: a reclaimable reference plus the
// last-refresh timestamp carried over from the hard entry it was demoted
// from (demotion preserves it; promotion back to hard does not — the spec
// has promotion reset the clock to "now").
type weakSlot[T any] struct {
	ref           reclaimable[T]
	lastRefreshMs int64
}

func newWeakSlot[T any](value *T, lastRefreshMs int64) *weakSlot[T] {
	return &weakSlot[T]{
		ref:           newReclaimable(value),
		lastRefreshMs: lastRefreshMs,
	}
}
