package hotcache

import "strings"

// Key identifies a cache entry. It is built from an ordered sequence of
// opaque sub-identifiers; equality and hashing both derive from the
// canonical string formed by comma-joining the parts in order, so two keys
// built from the same parts in the same order always compare equal and hash
// equal, regardless of how the underlying slice was allocated.
type Key struct {
	parts []string
	canon string
	hash  uint64
}

// NewKey builds a Key from an ordered list of sub-identifiers. The Key is
// immutable after construction; callers must not retain and mutate the
// backing slice. The hash is computed eagerly, not lazily, so a Key value
// can be freely copied and its Hash() called concurrently without a data
// race — a Key is meant to be passed around like a string, not guarded.
func NewKey(parts ...string) Key {
	cp := make([]string, len(parts))
	copy(cp, parts)
	canon := strings.Join(cp, ",")
	return Key{
		parts: cp,
		canon: canon,
		hash:  xxHash(canon),
	}
}

// Part returns the i-th sub-identifier. It panics if i is out of range, the
// same as indexing the underlying slice directly — the spec asks for no
// bounds checking beyond what the sequence already gives us.
func (k Key) Part(i int) string {
	return k.parts[i]
}

// Len returns the number of sub-identifiers the key was built from.
func (k Key) Len() int {
	return len(k.parts)
}

// String returns the canonical comma-joined form used for equality/hash.
func (k Key) String() string {
	return k.canon
}

// Equal reports whether two keys have the same canonical form.
func (k Key) Equal(other Key) bool {
	return k.canon == other.canon
}

// Hash returns a stable hash of the key's canonical form. Equal keys always
// produce equal hashes because the hash is a pure function of the
// canonical string. Intended for callers that shard or partition a
// Registry's caches across multiple processes by key.
func (k Key) Hash() uint64 {
	return k.hash
}
