package hotcache

import "sync/atomic"

// Stats is a point-in-time snapshot of a TieredCache's runtime counters.
// It mirrors the teacher's Stats struct in shape — a plain value handed
// back by a Stats() accessor — but carries the counters a two-tier cache
// needs that a flat LRU does not: weak-tier recoveries, promotions,
// demotions, and created-on-miss.
type Stats struct {
	HardHits   uint64
	WeakHits   uint64
	Misses     uint64
	Created    uint64
	Promotions uint64
	Demotions  uint64
	Evictions  uint64
}

// liveStats holds the same counters as atomics so hot-path increments never
// need the cache's own lock.
type liveStats struct {
	hardHits   atomic.Uint64
	weakHits   atomic.Uint64
	misses     atomic.Uint64
	created    atomic.Uint64
	promotions atomic.Uint64
	demotions  atomic.Uint64
	evictions  atomic.Uint64
}

func (s *liveStats) snapshot() Stats {
	return Stats{
		HardHits:   s.hardHits.Load(),
		WeakHits:   s.weakHits.Load(),
		Misses:     s.misses.Load(),
		Created:    s.created.Load(),
		Promotions: s.promotions.Load(),
		Demotions:  s.demotions.Load(),
		Evictions:  s.evictions.Load(),
	}
}
