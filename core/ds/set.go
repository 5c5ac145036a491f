// Package ds provides small generic data structures used by the runtime.
package ds

import (
	"encoding/json"
	"fmt"
)

// Set is an insertion-ordered set: O(1) membership and deterministic
// iteration. Actor wait lists are held in a Set so barriers are awaited in
// the order the topics were declared.
//
// Set is not safe for concurrent mutation.
type Set[T comparable] struct {
	items map[T]struct{}
	order []T
}

func (s *Set[T]) String() string {
	return fmt.Sprintf("%v", s.order)
}

// Add adds v to the set. No-op if already present. (mutates)
func (s *Set[T]) Add(v T) {
	if s.Contains(v) {
		return
	}
	s.items[v] = struct{}{}
	s.order = append(s.order, v)
}

// Extend adds all given values and returns how many were actually added. (mutates)
func (s *Set[T]) Extend(vs ...T) int {
	n := 0
	for _, v := range vs {
		if !s.Contains(v) {
			s.Add(v)
			n++
		}
	}
	return n
}

// Remove removes the given values. O(n) in the set size. (mutates)
func (s *Set[T]) Remove(vs ...T) {
	removed := false
	for _, v := range vs {
		if _, ok := s.items[v]; ok {
			delete(s.items, v)
			removed = true
		}
	}
	if !removed {
		return
	}

	order := make([]T, 0, len(s.items))
	for _, v := range s.order {
		if _, ok := s.items[v]; ok {
			order = append(order, v)
		}
	}
	s.order = order
}

// Contains reports whether v is in the set.
func (s *Set[T]) Contains(v T) bool {
	_, ok := s.items[v]
	return ok
}

func (s *Set[T]) Len() int { return len(s.items) }

func (s *Set[T]) IsEmpty() bool { return len(s.items) == 0 }

// ForEach calls fn for every element in insertion order.
func (s *Set[T]) ForEach(fn func(T)) {
	for _, v := range s.order {
		fn(v)
	}
}

// Filter returns a new set with the elements for which fn returns true.
func (s *Set[T]) Filter(fn func(T) bool) *Set[T] {
	out := NewSet[T]()
	for _, v := range s.order {
		if fn(v) {
			out.Add(v)
		}
	}
	return out
}

// Values returns a copy of the elements in insertion order.
func (s *Set[T]) Values() []T {
	out := make([]T, len(s.order))
	copy(out, s.order)
	return out
}

// Copy returns a new set with the same elements and order.
func (s *Set[T]) Copy() *Set[T] {
	return NewSet(s.order...)
}

// MarshalJSON serializes the set as an ordered JSON array.
func (s Set[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

// UnmarshalJSON replaces the contents of the set with a JSON array.
func (s *Set[T]) UnmarshalJSON(data []byte) error {
	var vs []T
	if err := json.Unmarshal(data, &vs); err != nil {
		return err
	}
	s.items = make(map[T]struct{}, len(vs))
	s.order = nil
	s.Extend(vs...)
	return nil
}

// NewSet creates a set holding the given items.
func NewSet[T comparable](items ...T) *Set[T] {
	s := &Set[T]{items: make(map[T]struct{}, len(items)), order: make([]T, 0, len(items))}
	s.Extend(items...)
	return s
}
