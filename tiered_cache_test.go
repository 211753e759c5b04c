package hotcache

import (
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, createFn func(Key) *string, opts ...Option[string]) *TieredCache[string] {
	t.Helper()
	ctrl := Funcs[string]{CreateFunc: createFn}
	base := append([]Option[string]{
		WithMinHardSize[string](2),
		WithScheduler[string](&fakeScheduler{}),
		WithExpiry[string](NeverExpire()),
	}, opts...)
	return New(ctrl, base...)
}

func TestTieredCacheGetCreatesOnMiss(t *testing.T) {
	var calls int32
	tc := newTestCache(t, func(k Key) *string {
		atomic.AddInt32(&calls, 1)
		v := "created:" + k.String()
		return &v
	})

	v, existed := tc.Get(NewKey("a"), true)
	require.True(t, existed)
	assert.Equal(t, "created:a", *v)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	v2, existed2 := tc.Get(NewKey("a"), true)
	assert.True(t, existed2)
	assert.Same(t, v, v2)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second Get must not re-create")
}

func TestTieredCacheGetWithoutAutoCreateMisses(t *testing.T) {
	tc := newTestCache(t, func(Key) *string { t.Fatal("create should not be called"); return nil })
	v, ok := tc.Get(NewKey("missing"), false)
	assert.False(t, ok)
	assert.Nil(t, v)
	assert.Equal(t, uint64(1), tc.Stats().Misses)
}

func TestTieredCachePutIfAbsentKeepsExisting(t *testing.T) {
	tc := newTestCache(t, nil)

	first := "first"
	v, existed := tc.PutIfAbsent(NewKey("a"), &first)
	assert.False(t, existed)
	assert.Same(t, &first, v)

	second := "second"
	v, existed = tc.PutIfAbsent(NewKey("a"), &second)
	assert.True(t, existed)
	assert.Same(t, &first, v)
}

func TestTieredCacheDemotionAndPromotion(t *testing.T) {
	tc := newTestCache(t, func(Key) *string { return nil })

	val := "persisted"
	tc.PutIfAbsent(NewKey("a"), &val)
	require.Equal(t, 1, tc.HardLen())

	// Force a hard->weak demotion directly, bypassing the timer. Growing past
	// h0 avoids trimHard's h0 guard; a 0.25 hot percent makes maxHotSize 1,
	// so the trim threshold is 0 and the single entry is a trim candidate.
	tc.hard.Resize(tc.hard.MaxSize()*2, 0.25)
	tc.trimHard()
	require.Equal(t, 0, tc.HardLen())
	require.Equal(t, 1, tc.WeakLen())

	// Get recovers the still-live value from weak and promotes it to hard.
	v, ok := tc.Get(NewKey("a"), false)
	require.True(t, ok)
	assert.Equal(t, "persisted", *v)
	assert.Same(t, &val, v)
	assert.Equal(t, 1, tc.HardLen())
	assert.Equal(t, 0, tc.WeakLen())
}

func TestTieredCacheWeakRecoveryPromotesBackToHard(t *testing.T) {
	tc := newTestCache(t, func(Key) *string { return nil })

	val := "value"
	tc.mu.Lock()
	tc.putToWeak(NewKey("a"), newWeakSlot(&val, nowMillis()))
	tc.mu.Unlock()
	require.Equal(t, 0, tc.HardLen())
	require.Equal(t, 1, tc.WeakLen())

	v, ok := tc.Get(NewKey("a"), false)
	require.True(t, ok)
	assert.Equal(t, "value", *v)
	assert.Equal(t, 1, tc.HardLen())
	assert.Equal(t, 0, tc.WeakLen())
	assert.Equal(t, uint64(1), tc.Stats().WeakHits)
	assert.Equal(t, uint64(1), tc.Stats().Promotions)
}

func TestTieredCacheTrimWeakDropsDeadReferences(t *testing.T) {
	tc := newTestCache(t, func(Key) *string { return nil })

	func() {
		val := "ephemeral"
		tc.mu.Lock()
		tc.putToWeak(NewKey("a"), newWeakSlot(&val, nowMillis()))
		tc.mu.Unlock()
	}()

	tc.mu.Lock()
	tc.weak.Resize(tc.weak.MaxSize()*2, weakGrowHotPercent)
	tc.mu.Unlock()

	for i := 0; i < 20 && tc.WeakLen() > 0; i++ {
		runtime.GC()
		tc.trimWeak()
	}

	// Either the reference was reclaimed and trimmed, or GC never ran it
	// down within the retry budget — both are acceptable outcomes here;
	// the assertion that matters is that trimWeak never panics and never
	// reports a live value once the entry is gone.
	if tc.WeakLen() == 0 {
		_, ok := tc.Get(NewKey("a"), false)
		assert.False(t, ok)
	}
}

func TestTieredCacheExpiryTriggersRefresh(t *testing.T) {
	refreshed := make(chan Key, 1)
	ctrl := Funcs[string]{
		CreateFunc: func(Key) *string { return nil },
		OnNeedRefreshFunc: func(k Key, _ *string) {
			refreshed <- k
		},
	}
	sched := &fakeScheduler{}
	tc := New(ctrl,
		WithMinHardSize[string](2),
		WithScheduler[string](sched),
		WithExpiry[string](ExpireAfter(0)),
	)

	val := "stale"
	tc.PutIfAbsent(NewKey("a"), &val)
	time.Sleep(time.Millisecond)

	before := len(sched.posted)
	tc.Get(NewKey("a"), false)

	require.Len(t, sched.posted, before+1, "Get should have posted exactly one refresh task")
	sched.posted[before]()

	select {
	case k := <-refreshed:
		assert.Equal(t, "a", k.String())
	default:
		t.Fatal("expected OnNeedRefresh to have been posted")
	}
}

func TestTieredCacheReleaseCancelsScheduledTasks(t *testing.T) {
	tc := newTestCache(t, nil)
	tc.Release()
	assert.Nil(t, tc.hardTask)
	assert.Nil(t, tc.weakTask)
}
