package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hp struct{ value float64 }

func TestArenaStaleHandleResolvesAbsent(t *testing.T) {
	a := NewArena[hp](4)
	h := a.Insert(hp{100})

	v, ok := a.Get(h)
	require.True(t, ok)
	assert.Equal(t, 100.0, v.value)

	require.True(t, a.Remove(h))
	_, ok = a.Get(h)
	assert.False(t, ok, "removed handle must not resolve")
	assert.False(t, a.Remove(h), "double remove is a no-op")

	// slot reuse must not revive the old handle
	h2 := a.Insert(hp{50})
	assert.Equal(t, h.Index, h2.Index)
	assert.NotEqual(t, h.Generation, h2.Generation)
	_, ok = a.Get(h)
	assert.False(t, ok)
	v, ok = a.Get(h2)
	require.True(t, ok)
	assert.Equal(t, 50.0, v.value)
}

func TestArenaNilHandle(t *testing.T) {
	a := NewArena[hp](0)
	_, ok := a.Get(NilHandle)
	assert.False(t, ok)
	assert.True(t, NilHandle.IsNil())

	h := a.Insert(hp{})
	assert.False(t, h.IsNil())
	_, ok = a.Get(Handle{Index: 7, Generation: 1})
	assert.False(t, ok, "out of range index")
}

func TestArenaRemoveFuncAndIteration(t *testing.T) {
	a := NewArena[hp](8)
	for i := 0; i < 6; i++ {
		a.Insert(hp{float64(i)})
	}
	removed := a.RemoveFunc(func(_ Handle, v *hp) bool { return int(v.value)%2 == 0 })
	assert.Len(t, removed, 3)
	assert.Equal(t, 3, a.Len())

	var seen []float64
	for _, v := range a.All() {
		seen = append(seen, v.value)
	}
	assert.Equal(t, []float64{1, 3, 5}, seen)

	a.Clear()
	assert.Equal(t, 0, a.Len())
}
