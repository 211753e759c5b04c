package hotcache

// Controller bundles the policy hooks a TieredCache calls out to at build
// time. All three correspond directly to the spec's external controller
// contract (§6).
type Controller[T any] interface {
	// Create constructs a new value for a previously-absent key. Called
	// from Get with the cache's own lock released — it may take its time,
	// but concurrent misses on the same key are coalesced to a single call.
	Create(key Key) *T

	// OnNeedRefresh notifies that an entry has gone unobserved past its
	// expiry window. Called on a background task, after the cache's lock
	// has been released; it must not call back into the same cache from
	// the calling goroutine's stack.
	OnNeedRefresh(key Key, value *T)

	// CanValueBeTrimmed is consulted at trim time before an entry is
	// demoted from hard to weak. Returning false keeps the entry in hard
	// across the trim pass that asked.
	CanValueBeTrimmed(key Key, value *T) bool
}

// Funcs adapts plain functions into a Controller. CreateFunc is mandatory;
// the others default to "do nothing" and "always true", matching the
// spec's stated defaults, so callers that only care about construction
// don't have to stub out the rest.
type Funcs[T any] struct {
	CreateFunc            func(Key) *T
	OnNeedRefreshFunc     func(Key, *T)
	CanValueBeTrimmedFunc func(Key, *T) bool
}

var _ Controller[struct{}] = Funcs[struct{}]{}

func (f Funcs[T]) Create(key Key) *T {
	return f.CreateFunc(key)
}

func (f Funcs[T]) OnNeedRefresh(key Key, value *T) {
	if f.OnNeedRefreshFunc != nil {
		f.OnNeedRefreshFunc(key, value)
	}
}

func (f Funcs[T]) CanValueBeTrimmed(key Key, value *T) bool {
	if f.CanValueBeTrimmedFunc == nil {
		return true
	}
	return f.CanValueBeTrimmedFunc(key, value)
}
