package hotcache

import "errors"

// ErrAlreadyBuilt is returned by Registry.Build when a cache for the given
// token already exists. Per the spec's error model (§7), a duplicate build
// is a configuration error — a programmer error the caller is expected to
// treat as fatal, but Build returns it rather than panicking so a registry
// shared across independently-initialized subsystems can decide for
// itself whether a duplicate build is actually a bug.
var ErrAlreadyBuilt = errors.New("hotcache: cache already built for this token")

// ErrNotFound is returned by Remove when no cache is registered for the
// given token.
var ErrNotFound = errors.New("hotcache: no cache registered for this token")
