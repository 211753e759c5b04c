package hotcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct{ Name string }

func TestRegistryBuildGetRemove(t *testing.T) {
	r := NewRegistry()
	ctrl := Funcs[widget]{CreateFunc: func(k Key) *widget { return &widget{Name: k.String()} }}

	tc, err := Build[widget](r, "widgets", ctrl, WithScheduler[widget](&fakeScheduler{}))
	require.NoError(t, err)
	require.NotNil(t, tc)

	got, ok := Get[widget](r, "widgets")
	assert.True(t, ok)
	assert.Same(t, tc, got)

	_, err = Build[widget](r, "widgets", ctrl, WithScheduler[widget](&fakeScheduler{}))
	assert.ErrorIs(t, err, ErrAlreadyBuilt)

	require.NoError(t, Remove(r, "widgets"))
	_, ok = Get[widget](r, "widgets")
	assert.False(t, ok)

	assert.ErrorIs(t, Remove(r, "widgets"), ErrNotFound)
}

func TestRegistryGetMissingToken(t *testing.T) {
	r := NewRegistry()
	_, ok := Get[widget](r, "missing")
	assert.False(t, ok)
}

func TestRegistryMustGetPanicsWhenMissing(t *testing.T) {
	r := NewRegistry()
	assert.Panics(t, func() {
		MustGet[widget](r, "missing")
	})
}

func TestRegistrySupportsMultipleTypesByToken(t *testing.T) {
	r := NewRegistry()
	type gadget struct{ ID int }

	_, err := Build[widget](r, "w", Funcs[widget]{CreateFunc: func(Key) *widget { return &widget{} }}, WithScheduler[widget](&fakeScheduler{}))
	require.NoError(t, err)
	_, err = Build[gadget](r, "g", Funcs[gadget]{CreateFunc: func(Key) *gadget { return &gadget{} }}, WithScheduler[gadget](&fakeScheduler{}))
	require.NoError(t, err)

	_, ok := Get[widget](r, "w")
	assert.True(t, ok)
	_, ok = Get[gadget](r, "g")
	assert.True(t, ok)
}
