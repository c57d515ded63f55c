// Package slot provides a generational slot map.
//
// Keys stay valid until their value is removed. A removed slot is reused
// with a bumped generation, so a stale key never resolves to the value
// that replaced it.
package slot

import (
	"fmt"
	"iter"
)

// Key identifies a value in a Map. The zero Key never resolves.
type Key struct {
	index uint32
	gen   uint32
}

// IsZero reports whether k is the zero key.
func (k Key) IsZero() bool { return k.gen == 0 }

// String returns a debug representation such as "3v2".
func (k Key) String() string {
	return fmt.Sprintf("%dv%d", k.index, k.gen)
}

type entry[T any] struct {
	value T
	gen   uint32
	live  bool
}

// Map stores values addressed by generation-checked keys.
// The zero value is an empty map ready to use.
type Map[T any] struct {
	entries []entry[T]
	free    []uint32
	n       int
}

// Insert stores v and returns its key.
func (m *Map[T]) Insert(v T) Key {
	m.n++
	if n := len(m.free); n > 0 {
		idx := m.free[n-1]
		m.free = m.free[:n-1]
		e := &m.entries[idx]
		e.value = v
		e.live = true
		return Key{index: idx, gen: e.gen}
	}
	m.entries = append(m.entries, entry[T]{value: v, gen: 1, live: true})
	return Key{index: uint32(len(m.entries) - 1), gen: 1}
}

func (m *Map[T]) lookup(k Key) *entry[T] {
	if k.gen == 0 || int(k.index) >= len(m.entries) {
		return nil
	}
	e := &m.entries[k.index]
	if !e.live || e.gen != k.gen {
		return nil
	}
	return e
}

// Get returns the value stored under k.
func (m *Map[T]) Get(k Key) (T, bool) {
	if e := m.lookup(k); e != nil {
		return e.value, true
	}
	var zero T
	return zero, false
}

// Ptr returns a pointer to the value stored under k, or nil if k is stale.
// The pointer is invalidated by the next Insert.
func (m *Map[T]) Ptr(k Key) *T {
	if e := m.lookup(k); e != nil {
		return &e.value
	}
	return nil
}

// Contains reports whether k resolves to a live value.
func (m *Map[T]) Contains(k Key) bool { return m.lookup(k) != nil }

// Remove deletes the value stored under k and returns it.
func (m *Map[T]) Remove(k Key) (T, bool) {
	var zero T
	e := m.lookup(k)
	if e == nil {
		return zero, false
	}
	v := e.value
	e.value = zero
	e.live = false
	e.gen++
	if e.gen == 0 {
		e.gen = 1
	}
	m.free = append(m.free, k.index)
	m.n--
	return v, true
}

// Len returns the number of live values.
func (m *Map[T]) Len() int { return m.n }

// All iterates over live values in slot order.
func (m *Map[T]) All() iter.Seq2[Key, T] {
	return func(yield func(Key, T) bool) {
		for i := range m.entries {
			e := &m.entries[i]
			if !e.live {
				continue
			}
			if !yield(Key{index: uint32(i), gen: e.gen}, e.value) {
				return
			}
		}
	}
}
