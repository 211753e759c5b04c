package hotcache

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// TieredCache is the C2 component: two hotEndLRUs — a hard tier of strong
// references and a weak tier of reclaimable references — plus the periodic
// trimmer that migrates entries hard→weak, drops dead weak entries, and
// resizes each tier. It is the cache applications actually talk to; the
// Registry (C3) just hands out one of these per type-token.
type TieredCache[T any] struct {
	mu sync.RWMutex

	hard *hotEndLRU[*hardSlot[T]]
	weak *hotEndLRU[*weakSlot[T]]

	h0, w0      int
	maxHardSize int

	expiry     Expiry
	controller Controller[T]
	sizeOf     func(*T) int

	lastWeakTrimMs atomic.Int64

	sched              Scheduler
	schedMu            sync.Mutex
	hardTask, weakTask SchedHandle
	released           atomic.Bool

	logger  *zap.Logger
	stats   liveStats
	metrics *PrometheusRecorder
	sf      singleflight.Group
}

// New builds a standalone TieredCache for controller, without going through
// a Registry. Most applications should prefer Registry.Build so that at
// most one cache exists per type-token process-wide; New exists for
// callers that manage their own cache lifetime directly.
func New[T any](controller Controller[T], opts ...Option[T]) *TieredCache[T] {
	cfg := defaultConfig[T]()
	for _, o := range opts {
		o(&cfg)
	}

	h0 := cfg.minHardSize
	if h0 < 2 {
		h0 = 2
	}
	w0 := h0 * weakSizeMultiplier

	valueSizeOf := cfg.sizeOf
	if valueSizeOf == nil {
		valueSizeOf = func(*T) int { return 1 }
	}

	tc := &TieredCache[T]{
		maxHardSize: cfg.maxHardSize,
		h0:          h0,
		w0:          w0,
		expiry:      cfg.expiry,
		controller:  controller,
		sizeOf:      valueSizeOf,
		sched:       cfg.scheduler,
		logger:      cfg.logger,
		metrics:     cfg.metrics,
	}
	tc.hard = newHotEndLRU(h0, hardGrowHotPercent, func(s *hardSlot[T]) int { return tc.sizeOf(s.value) })
	tc.weak = newHotEndLRU(w0, weakGrowHotPercent, func(s *weakSlot[T]) int {
		if v, ok := s.ref.resolve(); ok {
			return tc.sizeOf(v)
		}
		return 1
	})
	tc.lastWeakTrimMs.Store(nowMillis())
	tc.scheduleTrims()
	return tc
}

// PutIfAbsent installs value under key unless a value is already cached —
// either strongly in the hard tier, or recoverable from the weak tier. It
// returns the value that ends up current for key and whether that value was
// already present (true) rather than just installed (false).
func (tc *TieredCache[T]) PutIfAbsent(key Key, value *T) (current *T, existed bool) {
	tc.mu.RLock()
	if slot, ok := tc.hard.Get(key); ok {
		tc.mu.RUnlock()
		tc.stats.hardHits.Add(1)
		tc.recordHardHit()
		return slot.value, true
	}
	tc.mu.RUnlock()

	tc.mu.Lock()
	defer tc.mu.Unlock()

	if slot, ok := tc.hard.Get(key); ok {
		tc.stats.hardHits.Add(1)
		tc.recordHardHit()
		return slot.value, true
	}

	if wslot, ok := tc.weak.Remove(key); ok {
		if v, live := wslot.ref.resolve(); live {
			tc.putToHard(key, v, nowMillis())
			tc.stats.promotions.Add(1)
			tc.recordPromotion()
			return v, true
		}
		tc.stats.evictions.Add(1)
		tc.recordEviction()
	}

	tc.putToHard(key, value, nowMillis())
	return value, false
}

// Get looks up key. On a hard-tier hit it never blocks on anything but the
// read lock. On a miss it checks the weak tier under the write lock,
// promoting a still-live recovery back to hard; if nothing is recoverable
// and autoCreate is true, it calls the controller's Create hook (outside
// the cache lock, coalesced per-key via singleflight so concurrent misses
// on the same key only construct once) and installs the result.
func (tc *TieredCache[T]) Get(key Key, autoCreate bool) (*T, bool) {
	if slot, due, ok := tc.hardLookup(key); ok {
		tc.stats.hardHits.Add(1)
		tc.recordHardHit()
		if due {
			tc.triggerRefresh(key, slot)
		}
		return slot.value, true
	}

	tc.mu.Lock()

	if slot, ok := tc.hard.Get(key); ok {
		due := tc.expiry.due(slot.lastRefreshMs.Load(), nowMillis())
		tc.mu.Unlock()
		tc.stats.hardHits.Add(1)
		tc.recordHardHit()
		if due {
			tc.triggerRefresh(key, slot)
		}
		return slot.value, true
	}

	if wslot, ok := tc.weak.Remove(key); ok {
		if v, live := wslot.ref.resolve(); live {
			tc.putToHard(key, v, nowMillis())
			tc.mu.Unlock()
			tc.stats.weakHits.Add(1)
			tc.recordWeakHit()
			tc.stats.promotions.Add(1)
			tc.recordPromotion()
			return v, true
		}
		tc.stats.evictions.Add(1)
		tc.recordEviction()
	}

	if !autoCreate {
		tc.mu.Unlock()
		tc.stats.misses.Add(1)
		tc.recordMiss()
		return nil, false
	}
	tc.mu.Unlock()

	result, _, _ := tc.sf.Do(key.String(), func() (any, error) {
		// Re-check once more: another PutIfAbsent/Get may have installed a
		// value while we were waiting to enter this singleflight call.
		tc.mu.Lock()
		if slot, ok := tc.hard.Get(key); ok {
			v := slot.value
			tc.mu.Unlock()
			return v, nil
		}
		tc.mu.Unlock()

		created := tc.controller.Create(key)
		tc.mu.Lock()
		// A concurrent PutIfAbsent may have raced ahead of us while Create
		// was running unlocked; don't clobber it.
		if slot, ok := tc.hard.Get(key); ok {
			tc.mu.Unlock()
			return slot.value, nil
		}
		tc.putToHard(key, created, nowMillis())
		tc.mu.Unlock()
		return created, nil
	})

	tc.stats.created.Add(1)
	tc.recordCreated()
	return result.(*T), true
}

// hardLookup is Get's fast path: a read-locked hit against the hard tier,
// reporting whether the entry is due for an asynchronous refresh.
func (tc *TieredCache[T]) hardLookup(key Key) (slot *hardSlot[T], due bool, ok bool) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	slot, ok = tc.hard.Get(key)
	if !ok {
		return nil, false, false
	}
	due = tc.expiry.due(slot.lastRefreshMs.Load(), nowMillis())
	return slot, due, true
}

// triggerRefresh bumps last_refresh_time before handing the entry to the
// scheduler, so a second Get arriving before the async task runs doesn't
// also queue a refresh — matching the spec's "update last_refresh_time
// before posting" ordering.
func (tc *TieredCache[T]) triggerRefresh(key Key, slot *hardSlot[T]) {
	slot.lastRefreshMs.Store(nowMillis())
	value := slot.value
	tc.sched.PostDelayed(0, func() {
		defer func() {
			if r := recover(); r != nil {
				tc.logger.Error("hotcache: on_need_refresh hook panicked", zap.Any("recover", r))
			}
		}()
		tc.controller.OnNeedRefresh(key, value)
	})
}

// Clear empties both tiers.
func (tc *TieredCache[T]) Clear() {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.hard.Clear()
	tc.weak.Clear()
}

// Release clears the cache and cancels its scheduled trim tasks. Live
// references callers already hold to values remain valid; only the cache's
// own bookkeeping is torn down.
func (tc *TieredCache[T]) Release() {
	tc.released.Store(true)
	tc.Clear()

	tc.schedMu.Lock()
	defer tc.schedMu.Unlock()
	if tc.hardTask != nil {
		tc.sched.Cancel(tc.hardTask)
		tc.hardTask = nil
	}
	if tc.weakTask != nil {
		tc.sched.Cancel(tc.weakTask)
		tc.weakTask = nil
	}
}

// Stats returns a snapshot of the cache's runtime counters.
func (tc *TieredCache[T]) Stats() Stats {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.stats.snapshot()
}

// HardLen and WeakLen report the current entry count of each tier, for
// introspection and tests.
func (tc *TieredCache[T]) HardLen() int { return tc.hard.Len() }
func (tc *TieredCache[T]) WeakLen() int { return tc.weak.Len() }

// putToHard installs value into the hard tier, enlarging it first if the
// insert would not otherwise fit. Callers must hold tc.mu.
func (tc *TieredCache[T]) putToHard(key Key, value *T, lastRefreshMs int64) {
	size := tc.sizeOf(value)
	if tc.hard.CurSize()+size > tc.hard.MaxSize() {
		newMax := growTarget(tc.hard.MaxSize(), hardGrowthFactor, tc.maxHardSize)
		tc.hard.Resize(newMax, hardGrowHotPercent)
	}
	tc.hard.Put(key, newHardSlot(value, lastRefreshMs))
}

// putToWeak installs slot into the weak tier, enlarging it first if needed.
// Callers must hold tc.mu.
func (tc *TieredCache[T]) putToWeak(key Key, slot *weakSlot[T]) {
	size := 1
	if v, ok := slot.ref.resolve(); ok {
		size = tc.sizeOf(v)
	}
	if tc.weak.CurSize()+size > tc.weak.MaxSize() {
		newMax := growTarget(tc.weak.MaxSize(), weakGrowthFactor, 0)
		tc.weak.Resize(newMax, weakGrowHotPercent)
	}
	tc.weak.Put(key, slot)
}

// growTarget computes floor(cur * factor), growing by at least one unit,
// then honors an optional ceiling (0 means unbounded). It never returns less
// than cur, so once cur has reached the ceiling it returns cur unchanged.
func growTarget(cur int, factor float64, ceiling int) int {
	next := int(float64(cur) * factor)
	if next <= cur {
		next = cur + 1
	}
	if ceiling > 0 && next > ceiling {
		next = ceiling
	}
	if next < cur {
		next = cur
	}
	if next < 2 {
		next = 2
	}
	return next
}

// trimHard migrates cold hard entries into the weak tier and shrinks the
// hard tier back down if it has gone quiet. Called from the scheduled
// hard-trim task, but exported-shape so tests can drive it directly.
func (tc *TieredCache[T]) trimHard() {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if tc.hard.MaxSize() <= tc.h0 {
		return
	}

	trimThreshold := int(hardShrinkFactor * float64(tc.hard.MaxHotSize()))
	maxTrim := tc.hard.CurSize() - trimThreshold
	if maxTrim > trimHardMaxCount {
		maxTrim = trimHardMaxCount
	}
	if maxTrim <= 0 {
		return
	}

	tc.hard.traverseTrim(maxTrim, func(k Key, slot *hardSlot[T]) bool {
		// A panicking policy hook is logged and the entry kept in hard.
		trimmable := func() (ok bool) {
			defer func() {
				if r := recover(); r != nil {
					tc.logger.Error("hotcache: can_value_be_trimmed hook panicked", zap.Any("recover", r))
					ok = false
				}
			}()
			return tc.controller.CanValueBeTrimmed(k, slot.value)
		}()
		if !trimmable {
			return true
		}
		tc.putToWeak(k, newWeakSlot(slot.value, slot.lastRefreshMs.Load()))
		tc.stats.demotions.Add(1)
		tc.recordDemotion()
		return false
	})

	if tc.hard.CurSize() <= int(hardShrinkFactor*float64(tc.hard.MaxHotSize())) {
		newMax := tc.hard.MaxHotSize()
		if tc.h0 > newMax {
			newMax = tc.h0
		}
		if newMax < 2 {
			newMax = 2
		}
		tc.hard.Resize(newMax, hardGrowHotPercent)
	}
}

// trimWeak drops weak entries whose reclaimable reference has already been
// collected, and shrinks the weak tier back down if it has gone quiet. It
// forces a full sweep if TRIM_WEAK_MAX_INTERVAL has elapsed since the last
// one, even with nothing obviously due, so a weak tier that never gets
// looked at doesn't grow forever between real sweeps.
func (tc *TieredCache[T]) trimWeak() {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if tc.weak.MaxSize() <= tc.w0 {
		return
	}

	trimThreshold := int(weakShrinkFactor * float64(tc.weak.MaxHotSize()))
	maxTrim := tc.weak.CurSize() - trimThreshold
	if maxTrim > trimWeakMaxCount {
		maxTrim = trimWeakMaxCount
	}
	if maxTrim <= 0 {
		elapsed := nowMillis() - tc.lastWeakTrimMs.Load()
		if tc.weak.Len() == 0 || elapsed < trimWeakMaxInterval.Milliseconds() {
			return
		}
		maxTrim = tc.weak.MaxSize() - tc.weak.MaxHotSize()
	}
	tc.lastWeakTrimMs.Store(nowMillis())

	tc.weak.traverseTrim(maxTrim, func(_ Key, slot *weakSlot[T]) bool {
		_, live := slot.ref.resolve()
		if live {
			return true
		}
		tc.stats.evictions.Add(1)
		tc.recordEviction()
		return false
	})

	if tc.weak.CurSize() <= int(weakShrinkFactor*float64(tc.weak.MaxHotSize())) {
		newMax := tc.weak.MaxHotSize()
		if tc.w0 > newMax {
			newMax = tc.w0
		}
		if newMax < 2 {
			newMax = 2
		}
		tc.weak.Resize(newMax, weakGrowHotPercent)
	}
}

// scheduleTrims posts the two recurring trim tasks. Each reschedules
// itself only after the current run completes, so exactly one instance of
// each is ever in flight, and stops rescheduling once Release has run.
func (tc *TieredCache[T]) scheduleTrims() {
	var hardTick func()
	hardTick = func() {
		if tc.released.Load() {
			return
		}
		tc.trimHard()
		if tc.released.Load() {
			return
		}
		tc.schedMu.Lock()
		tc.hardTask = tc.sched.PostDelayed(trimHardInterval, hardTick)
		tc.schedMu.Unlock()
	}

	var weakTick func()
	weakTick = func() {
		if tc.released.Load() {
			return
		}
		tc.trimWeak()
		if tc.released.Load() {
			return
		}
		tc.schedMu.Lock()
		tc.weakTask = tc.sched.PostDelayed(trimWeakInterval, weakTick)
		tc.schedMu.Unlock()
	}

	tc.schedMu.Lock()
	tc.hardTask = tc.sched.PostDelayed(trimHardInterval, hardTick)
	tc.weakTask = tc.sched.PostDelayed(trimWeakInterval, weakTick)
	tc.schedMu.Unlock()
}

func (tc *TieredCache[T]) recordHardHit() {
	if tc.metrics != nil {
		tc.metrics.recordHardHit()
	}
}

func (tc *TieredCache[T]) recordWeakHit() {
	if tc.metrics != nil {
		tc.metrics.recordWeakHit()
	}
}

func (tc *TieredCache[T]) recordMiss() {
	if tc.metrics != nil {
		tc.metrics.recordMiss()
	}
}

func (tc *TieredCache[T]) recordCreated() {
	if tc.metrics != nil {
		tc.metrics.recordCreated()
	}
}

func (tc *TieredCache[T]) recordPromotion() {
	if tc.metrics != nil {
		tc.metrics.recordPromotion()
	}
}

func (tc *TieredCache[T]) recordDemotion() {
	if tc.metrics != nil {
		tc.metrics.recordDemotion()
	}
}

func (tc *TieredCache[T]) recordEviction() {
	if tc.metrics != nil {
		tc.metrics.recordEviction()
	}
}
