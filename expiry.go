package hotcache

import "time"

// Expiry configures how long a hard entry may go unobserved before Get
// schedules an asynchronous refresh. The zero value is not valid on its
// own; use NeverExpire or ExpireAfter to build one. This resolves the
// spec's open question about an expire_time = -1 sentinel by giving "never
// expire" its own explicit, non-numeric representation instead.
type Expiry struct {
	d     time.Duration
	never bool
}

// NeverExpire returns an Expiry under which Get never triggers a refresh.
func NeverExpire() Expiry {
	return Expiry{never: true}
}

// ExpireAfter returns an Expiry that triggers a refresh once an entry's
// last-refresh timestamp is older than d.
func ExpireAfter(d time.Duration) Expiry {
	return Expiry{d: d}
}

// due reports whether nowMs is far enough past lastRefreshMs to need a
// refresh.
func (e Expiry) due(lastRefreshMs, nowMs int64) bool {
	if e.never {
		return false
	}
	return nowMs-lastRefreshMs > e.d.Milliseconds()
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
