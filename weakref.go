package hotcache

import "weak"

// reclaimable wraps the standard library's weak.Pointer[T], the host
// runtime's reclaimable-reference primitive named throughout the spec: a
// handle that does not by itself keep the referent alive, and which — once
// it resolves empty — resolves empty forever, because a collected weak
// pointer can never be un-collected.
type reclaimable[T any] struct {
	ptr weak.Pointer[T]
}

// newReclaimable wraps value in a reclaimable reference. value must already
// be heap-allocated through a pointer the caller keeps a strong reference to
// elsewhere for as long as it wants the value retrievable.
func newReclaimable[T any](value *T) reclaimable[T] {
	return reclaimable[T]{ptr: weak.Make(value)}
}

// resolve returns the referent and true if it is still live, or the zero
// value and false if it has been reclaimed.
func (r reclaimable[T]) resolve() (*T, bool) {
	v := r.ptr.Value()
	return v, v != nil
}
