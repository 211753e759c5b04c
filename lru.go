package hotcache

import "sync"

// hotEndLRU is the C1 component: an ordered associative container that
// approximates LRU eviction but resists cache pollution from one-shot scans.
// A freshly inserted item enters the cold region; only items visited again
// are promoted to hot, where they survive a pass of evictions that would
// otherwise remove cold items of equivalent recency.
//
// The ring is a circular doubly linked list. Walking forward (via node.next)
// from hotHead passes through the rest of the hot region, crosses into
// coldHead, continues through the cold region, and arrives back at
// hotHead.prev — the cold-tail, the least-recently-touched node and the
// eviction candidate. Every mutation recomputes the cold-tail as
// hotHead.prev rather than tracking it separately, since it shifts on every
// promotion or eviction.
//
// Generic over the stored value type V so the same ring backs both the
// tiered cache's hard tier (strong references) and its weak tier
// (reclaimable references).
type hotEndLRU[V any] struct {
	mu sync.RWMutex

	index map[string]*node[V]

	hotHead, coldHead *node[V]

	curSize, maxSize, hotSize, maxHotSize int

	// sizeOf returns the unit size of a value. Defaults to "always 1" when
	// nil, matching the spec's size-hook default.
	sizeOf func(V) int
}

func newHotEndLRU[V any](maxSize int, hotPercent float64, sizeOf func(V) int) *hotEndLRU[V] {
	if maxSize < 2 {
		panic("hotcache: max_size must be >= 2")
	}
	if hotPercent < 0 || hotPercent >= 1 {
		panic("hotcache: hot_percent must be in [0, 1)")
	}
	if sizeOf == nil {
		sizeOf = func(V) int { return 1 }
	}
	return &hotEndLRU[V]{
		index:      make(map[string]*node[V]),
		maxSize:    maxSize,
		maxHotSize: clampHotSize(maxSize, hotPercent),
		sizeOf:     sizeOf,
	}
}

func clampHotSize(maxSize int, hotPercent float64) int {
	h := int(float64(maxSize) * hotPercent)
	if h < 1 {
		h = 1
	}
	if h > maxSize-1 {
		h = maxSize - 1
	}
	return h
}

// Get looks up key under the read lock and bumps its visit count without
// moving it in the ring. It never promotes by itself — promotion only
// happens during a trim pass, driven by the visit count this call raises.
func (l *hotEndLRU[V]) Get(key Key) (V, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n, ok := l.index[key.String()]
	if !ok {
		var zero V
		return zero, false
	}
	n.bumpVisit()
	return n.value, true
}

// Put inserts or replaces key's value. It returns false — "not accepted" —
// iff the value's size exceeds maxSize; that is the only failure mode.
func (l *hotEndLRU[V]) Put(key Key, value V) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	size := l.sizeOf(value)
	if size > l.maxSize {
		return false
	}

	headsNonNilOnEntry := l.hotHead != nil && l.coldHead != nil

	canon := key.String()
	visits := int64(1)
	if old, ok := l.index[canon]; ok {
		visits = old.visits() + 1
		l.removeLinked(old)
	}

	trimmedAny := l.trimTo(l.maxSize - size)

	n := newNode(key, value, size)
	n.visitCount = visits

	if trimmedAny && headsNonNilOnEntry {
		l.insertBeforeColdHead(n)
	} else {
		l.insertBeforeHotHead(n)
		for l.hotSize > l.maxHotSize {
			if !l.stepColdHeadBack() {
				break
			}
		}
	}

	l.index[canon] = n
	return true
}

// Remove unlinks key's node if present, poisons its visit count so a
// dangling reference can never resurrect it, and returns the removed value.
func (l *hotEndLRU[V]) Remove(key Key) (V, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n, ok := l.index[key.String()]
	if !ok {
		var zero V
		return zero, false
	}
	l.removeLinked(n)
	return n.value, true
}

// Resize changes capacity and the hot/cold split, trimming immediately if
// the new maxSize is smaller than the current size. Invalid parameters are
// a programmer error and panic, per the spec's fatal configuration-error
// class.
func (l *hotEndLRU[V]) Resize(maxSize int, hotPercent float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if maxSize < 2 {
		panic("hotcache: max_size must be >= 2")
	}
	if hotPercent < 0 || hotPercent >= 1 {
		panic("hotcache: hot_percent must be in [0, 1)")
	}

	l.maxSize = maxSize
	l.maxHotSize = clampHotSize(maxSize, hotPercent)
	if l.curSize > l.maxSize {
		l.trimTo(l.maxSize)
	}
}

// traverseTrim walks the cold-tail up to maxCount times, offering each
// candidate to callback. Returning true retains the node: it is promoted to
// hot exactly like a trim-time survivor. Returning false removes it from
// the ring and index — any migration the caller wants (e.g. demoting into
// a weak tier) must already have happened inside callback, since once this
// call returns the node is gone. Stops early if a retained singleton node
// would be revisited.
func (l *hotEndLRU[V]) traverseTrim(maxCount int, callback func(Key, V) bool) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	visited := 0
	var seen *node[V]
	for visited < maxCount {
		if l.hotHead == nil {
			break
		}
		cand := l.hotHead.prev
		if cand == seen {
			break
		}
		visited++
		seen = cand

		if callback(cand.key, cand.value) {
			cand.resetVisit()
			l.setNewHotHead(cand)
			for l.hotSize > l.maxHotSize {
				if !l.stepColdHeadBack() {
					break
				}
			}
		} else {
			l.removeLinked(cand)
		}
	}
	return visited
}

// trimTo repeatedly inspects the cold-tail, promoting survivors (visit
// count already at the promotion threshold) and evicting the rest, until
// curSize <= target or the ring is empty. Returns whether anything was
// evicted, which Put uses to decide where a fresh node lands.
func (l *hotEndLRU[V]) trimTo(target int) bool {
	evictedAny := false
	for l.curSize > target && l.hotHead != nil {
		cand := l.hotHead.prev
		if cand.visits() >= hotHeadPromoteCount {
			cand.resetVisit()
			l.setNewHotHead(cand)
			for l.hotSize > l.maxHotSize {
				if !l.stepColdHeadBack() {
					break
				}
			}
			continue
		}
		l.removeLinked(cand)
		evictedAny = true
	}
	return evictedAny
}

// removeLinked unlinks n from the ring, updates head pointers and size
// totals, drops it from the index, and poisons its visit count. Callers
// must hold the write lock.
func (l *hotEndLRU[V]) removeLinked(n *node[V]) {
	if n.next == n {
		l.hotHead = nil
		l.coldHead = nil
	} else {
		if n == l.hotHead {
			l.hotHead = n.next
		}
		if n == l.coldHead {
			l.coldHead = n.next
		}
		n.prev.next = n.next
		n.next.prev = n.prev
	}
	l.curSize -= n.size
	if !n.isCold {
		l.hotSize -= n.size
	}
	n.prev, n.next = nil, nil
	delete(l.index, n.canon)
	n.poison()
}

// insertBeforeHotHead links n immediately before hotHead (or makes it the
// sole node) and makes it the new hot-head.
func (l *hotEndLRU[V]) insertBeforeHotHead(n *node[V]) {
	if l.hotHead == nil {
		n.next, n.prev = n, n
		l.curSize += n.size
		l.hotSize += n.size
		n.isCold = false
		l.hotHead = n
		l.coldHead = n
		return
	}
	wasAllHot := l.coldHead == l.hotHead
	linkBefore(n, l.hotHead)
	l.curSize += n.size
	l.hotSize += n.size
	l.hotHead = n
	if wasAllHot {
		// coldHead coincided with the old hot-head, meaning there was no
		// real cold region; it must track the new hot-head too, or the
		// next stepColdHeadBack computes its candidate from a stale node.
		l.coldHead = n
	}
}

// insertBeforeColdHead links n immediately before coldHead and makes it the
// new cold-head. If the trim that preceded this call evicted every other
// node, there is no cold-head left to insert before, and n becomes the sole
// node instead (both heads point to it, per the single-node invariant).
func (l *hotEndLRU[V]) insertBeforeColdHead(n *node[V]) {
	if l.coldHead == nil {
		n.next, n.prev = n, n
		n.isCold = false
		l.curSize += n.size
		l.hotSize += n.size
		l.hotHead = n
		l.coldHead = n
		return
	}
	linkBefore(n, l.coldHead)
	l.curSize += n.size
	n.isCold = true
	l.coldHead = n
}

// linkBefore inserts n immediately before at in the ring.
func linkBefore[V any](n, at *node[V]) {
	n.prev = at.prev
	n.next = at
	at.prev.next = n
	at.prev = n
}

// setNewHotHead reassigns hotHead to n, folding n out of the cold region
// (and into the hot-size total) if it was cold.
func (l *hotEndLRU[V]) setNewHotHead(n *node[V]) {
	if n.isCold {
		l.hotSize += n.size
		n.isCold = false
	}
	l.hotHead = n
}

// setNewColdHead reassigns coldHead to n. Returns false if n is nil or
// coincides with hotHead — there is no cold region left to shrink into, and
// callers use the false return to stop stepping further.
func (l *hotEndLRU[V]) setNewColdHead(n *node[V]) bool {
	l.coldHead = n
	if n == nil || n == l.hotHead {
		return false
	}
	if !n.isCold {
		l.hotSize -= n.size
		n.isCold = true
	}
	return true
}

// stepColdHeadBack shrinks the hot region by one node, converting the node
// just before the current cold-head into the new cold-head.
func (l *hotEndLRU[V]) stepColdHeadBack() bool {
	if l.coldHead == nil {
		return false
	}
	return l.setNewColdHead(l.coldHead.prev)
}

func (l *hotEndLRU[V]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.index)
}

func (l *hotEndLRU[V]) CurSize() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.curSize
}

func (l *hotEndLRU[V]) MaxSize() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.maxSize
}

func (l *hotEndLRU[V]) HotSize() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.hotSize
}

func (l *hotEndLRU[V]) MaxHotSize() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.maxHotSize
}

// Clear empties the ring entirely, poisoning every node it drops.
func (l *hotEndLRU[V]) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, n := range l.index {
		n.poison()
	}
	l.index = make(map[string]*node[V])
	l.hotHead, l.coldHead = nil, nil
	l.curSize, l.hotSize = 0, 0
}
