package hotcache

import "sync"

// releasable is the non-generic face of *TieredCache[T] that Registry needs
// in order to tear caches down without itself being generic over every T
// its callers have ever registered.
type releasable interface {
	Release()
}

// Registry is the C3 component: a process-wide directory of tiered caches,
// one per caller-chosen token, built at most once each. Most applications
// want exactly one Registry (a package-level var), the same way the spec's
// Cache Registry is described as a singleton collaborator rather than
// something constructed per call site.
type Registry struct {
	mu     sync.Mutex
	caches map[any]releasable
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{caches: make(map[any]releasable)}
}

// Build constructs a TieredCache for token and stores it in the registry.
// token is typically a small comparable value — a string name or a type
// marker — chosen by the caller to namespace independent caches sharing one
// Registry. Build returns ErrAlreadyBuilt if token is already registered;
// it never replaces an existing cache.
func Build[T any](r *Registry, token any, controller Controller[T], opts ...Option[T]) (*TieredCache[T], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.caches[token]; exists {
		return nil, ErrAlreadyBuilt
	}

	tc := New(controller, opts...)
	r.caches[token] = tc
	return tc, nil
}

// Get returns the cache registered for token, if any.
func Get[T any](r *Registry, token any) (*TieredCache[T], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.caches[token]
	if !ok {
		return nil, false
	}
	tc, ok := c.(*TieredCache[T])
	return tc, ok
}

// MustGet is like Get but panics if token has no registered cache of type
// T. Intended for call sites that know Build already ran during startup.
func MustGet[T any](r *Registry, token any) *TieredCache[T] {
	tc, ok := Get[T](r, token)
	if !ok {
		panic("hotcache: no cache registered for token")
	}
	return tc
}

// Remove releases and unregisters the cache for token, if one exists.
func Remove(r *Registry, token any) error {
	r.mu.Lock()
	c, ok := r.caches[token]
	if ok {
		delete(r.caches, token)
	}
	r.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	c.Release()
	return nil
}
