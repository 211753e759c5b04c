package hotcache

import "github.com/cespare/xxhash/v2"

// xxHash computes a stable 64-bit hash of s. Pulled out as its own function
// so Key.Hash and anything else that needs a fast string hash share one
// implementation and one dependency edge.
func xxHash(s string) uint64 {
	return xxhash.Sum64String(s)
}
