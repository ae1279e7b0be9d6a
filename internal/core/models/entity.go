package models

import (
	"fmt"
	"iter"
)

// Handle identifies an entity stored in an Arena. A handle stays valid until
// the entity is removed; afterwards lookups report the entity as absent even
// when the underlying slot has been reused.
type Handle struct {
	Index      uint32 `json:"index"`
	Generation uint32 `json:"generation"`
}

// NilHandle never resolves to an entity.
var NilHandle = Handle{}

// IsNil reports whether h is the zero handle.
func (h Handle) IsNil() bool { return h.Generation == 0 }

func (h Handle) String() string { return fmt.Sprintf("%d@%d", h.Index, h.Generation) }

type slot[T any] struct {
	value      T
	generation uint32
	alive      bool
}

// Arena is a generation-checked slot store. It is not safe for concurrent use.
type Arena[T any] struct {
	slots []slot[T]
	free  []uint32
	live  int
}

// NewArena returns an empty arena with room for capacity entities.
func NewArena[T any](capacity int) *Arena[T] {
	return &Arena[T]{slots: make([]slot[T], 0, capacity)}
}

// Insert stores value and returns its handle.
func (a *Arena[T]) Insert(value T) Handle {
	a.live++
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.value = value
		s.alive = true
		return Handle{Index: idx, Generation: s.generation}
	}
	a.slots = append(a.slots, slot[T]{value: value, generation: 1, alive: true})
	return Handle{Index: uint32(len(a.slots) - 1), Generation: 1}
}

// Get resolves h. Stale or nil handles return (nil, false).
func (a *Arena[T]) Get(h Handle) (*T, bool) {
	if h.IsNil() || int(h.Index) >= len(a.slots) {
		return nil, false
	}
	s := &a.slots[h.Index]
	if !s.alive || s.generation != h.Generation {
		return nil, false
	}
	return &s.value, true
}

// Contains reports whether h refers to a live entity.
func (a *Arena[T]) Contains(h Handle) bool {
	_, ok := a.Get(h)
	return ok
}

// Remove destroys the entity behind h. Removing a stale handle is a no-op.
func (a *Arena[T]) Remove(h Handle) bool {
	if _, ok := a.Get(h); !ok {
		return false
	}
	s := &a.slots[h.Index]
	var zero T
	s.value = zero
	s.alive = false
	s.generation++
	if s.generation == 0 {
		// wrapped: skip the nil generation
		s.generation = 1
	}
	a.free = append(a.free, h.Index)
	a.live--
	return true
}

// RemoveFunc removes every live entity for which fn returns true and returns
// the removed handles in slot order.
func (a *Arena[T]) RemoveFunc(fn func(Handle, *T) bool) []Handle {
	var removed []Handle
	for h, v := range a.All() {
		if fn(h, v) {
			removed = append(removed, h)
		}
	}
	for _, h := range removed {
		a.Remove(h)
	}
	return removed
}

// Len returns the number of live entities.
func (a *Arena[T]) Len() int { return a.live }

// All iterates live entities in slot order. Remove is allowed while
// iterating; Insert is not.
func (a *Arena[T]) All() iter.Seq2[Handle, *T] {
	return func(yield func(Handle, *T) bool) {
		for i := range a.slots {
			s := &a.slots[i]
			if !s.alive {
				continue
			}
			if !yield(Handle{Index: uint32(i), Generation: s.generation}, &s.value) {
				return
			}
		}
	}
}

// Clear removes every entity. Outstanding handles become stale.
func (a *Arena[T]) Clear() {
	for h := range a.All() {
		a.Remove(h)
	}
}
