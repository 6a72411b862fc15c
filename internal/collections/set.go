package collections

import (
	"fmt"
	"sort"
	"strings"
)

// Set is a generic set data structure using a map with zero-size values
type Set[T comparable] map[T]struct{}

// NewSet creates a new Set with the given initial values
func NewSet[T comparable](vs ...T) Set[T] {
	s := Set[T]{}
	s.Add(vs...)
	return s
}

// Add adds one or more values to the set
func (s Set[T]) Add(vs ...T) {
	for _, v := range vs {
		s[v] = struct{}{}
	}
}

// Remove deletes values from the set
func (s Set[T]) Remove(vs ...T) {
	for _, v := range vs {
		delete(s, v)
	}
}

// Has checks if the set contains the given value
func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

// Members returns all values in the set as a slice, in no particular order
func (s Set[T]) Members() []T {
	r := make([]T, 0, len(s))
	for v := range s {
		r = append(r, v)
	}
	return r
}

// String returns a string representation of the set with members sorted
// by their formatted value
func (s Set[T]) String() string {
	parts := make([]string, 0, len(s))
	for v := range s {
		parts = append(parts, fmt.Sprintf("%v", v))
	}
	sort.Strings(parts)
	return "[" + strings.Join(parts, " ") + "]"
}

// OrderedSet remembers insertion order. The zero value is ready to use.
type OrderedSet[T comparable] struct {
	index map[T]int
	items []T
}

// NewOrderedSet creates an OrderedSet holding vs in order
func NewOrderedSet[T comparable](vs ...T) *OrderedSet[T] {
	s := &OrderedSet[T]{}
	for _, v := range vs {
		s.Add(v)
	}
	return s
}

// Add appends v unless it is already present. It reports whether v was new.
func (s *OrderedSet[T]) Add(v T) bool {
	if s.index == nil {
		s.index = map[T]int{}
	}
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = len(s.items)
	s.items = append(s.items, v)
	return true
}

// Has checks if the set contains v
func (s *OrderedSet[T]) Has(v T) bool {
	_, ok := s.index[v]
	return ok
}

// Len returns the number of members
func (s *OrderedSet[T]) Len() int {
	return len(s.items)
}

// Members returns a copy of the members in insertion order
func (s *OrderedSet[T]) Members() []T {
	return append([]T(nil), s.items...)
}
