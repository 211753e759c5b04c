package hotcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitSize(int) int { return 1 }

func TestHotEndLRUGetMissAndHit(t *testing.T) {
	l := newHotEndLRU(4, 0.5, unitSize)

	_, ok := l.Get(NewKey("a"))
	assert.False(t, ok)

	l.Put(NewKey("a"), 1)
	v, ok := l.Get(NewKey("a"))
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestHotEndLRUColdEntryEvictedBeforeHot(t *testing.T) {
	l := newHotEndLRU(2, 0.5, unitSize)

	l.Put(NewKey("a"), 1)
	// Touch "a" twice so it crosses the promotion threshold on the next trim.
	l.Get(NewKey("a"))
	l.Get(NewKey("a"))

	l.Put(NewKey("b"), 2)
	// The third insert forces a trim to fit: "a", at the cold tail, has enough
	// visits to be promoted rather than evicted, which pushes "b" (never
	// touched) into the cold region, and "b" is evicted instead.
	l.Put(NewKey("c"), 3)

	_, aOK := l.Get(NewKey("a"))
	assert.True(t, aOK, "promoted hot entry should survive the trim")

	assert.Equal(t, 2, l.Len())
}

func TestHotEndLRUPutRejectsOversizedValue(t *testing.T) {
	l := newHotEndLRU(2, 0.5, func(int) int { return 10 })
	accepted := l.Put(NewKey("huge"), 999)
	assert.False(t, accepted)
	assert.Equal(t, 0, l.Len())
}

func TestHotEndLRURemove(t *testing.T) {
	l := newHotEndLRU(4, 0.5, unitSize)
	l.Put(NewKey("a"), 1)
	l.Put(NewKey("b"), 2)

	v, ok := l.Remove(NewKey("a"))
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = l.Get(NewKey("a"))
	assert.False(t, ok)
	assert.Equal(t, 1, l.Len())

	_, ok = l.Remove(NewKey("nope"))
	assert.False(t, ok)
}

func TestHotEndLRUResizeTrimsImmediately(t *testing.T) {
	l := newHotEndLRU(4, 0.5, unitSize)
	l.Put(NewKey("a"), 1)
	l.Put(NewKey("b"), 2)
	l.Put(NewKey("c"), 3)
	require.Equal(t, 3, l.Len())

	l.Resize(2, 0.5)
	assert.Equal(t, 2, l.Len())
	assert.Equal(t, 2, l.MaxSize())
}

func TestHotEndLRUResizeRejectsInvalidParams(t *testing.T) {
	l := newHotEndLRU(4, 0.5, unitSize)
	assert.Panics(t, func() { l.Resize(1, 0.5) })
	assert.Panics(t, func() { l.Resize(4, 1.0) })
	assert.Panics(t, func() { l.Resize(4, -0.1) })
}

func TestHotEndLRUTraverseTrimRetainsAndEvicts(t *testing.T) {
	l := newHotEndLRU(8, 0.5, unitSize)
	for _, k := range []string{"a", "b", "c"} {
		l.Put(NewKey(k), 1)
	}

	var seenKeys []string
	visited := l.traverseTrim(3, func(k Key, _ int) bool {
		seenKeys = append(seenKeys, k.String())
		return k.String() != "b" // evict "b", retain the rest
	})

	assert.Equal(t, 3, visited)
	_, ok := l.Get(NewKey("b"))
	assert.False(t, ok)
	_, ok = l.Get(NewKey("a"))
	assert.True(t, ok)
}

func TestHotEndLRUSingleNodeInsertAfterFullEviction(t *testing.T) {
	l := newHotEndLRU(2, 0.5, func(v int) int { return v })
	l.Put(NewKey("a"), 1)
	l.Put(NewKey("b"), 1)
	// An insert as large as maxSize forces both existing entries out, leaving
	// the ring momentarily empty before the new node lands — must not panic.
	l.Put(NewKey("c"), 2)
}

func TestHotEndLRUConstructorPanicsOnInvalidParams(t *testing.T) {
	assert.Panics(t, func() { newHotEndLRU(1, 0.5, unitSize) })
	assert.Panics(t, func() { newHotEndLRU(4, 1.0, unitSize) })
}
