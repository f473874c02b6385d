// Package bookmark holds the persisted set of bookmarked identity keys and
// the manager that serializes access to it.
package bookmark

import (
	"context"
	"slices"
)

// Set is a set of entry identity keys. The zero value is an empty set.
type Set struct {
	keys map[string]struct{}
}

// NewSet returns a set holding keys.
func NewSet(keys ...string) Set {
	s := Set{keys: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		s.keys[k] = struct{}{}
	}
	return s
}

// Has reports whether key is bookmarked.
func (s Set) Has(key string) bool {
	_, ok := s.keys[key]
	return ok
}

// Len returns the number of keys.
func (s Set) Len() int { return len(s.keys) }

// Keys returns the keys in ascending order.
func (s Set) Keys() []string {
	out := make([]string, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	return NewSet(s.Keys()...)
}

// Add inserts key.
func (s *Set) Add(key string) {
	if s.keys == nil {
		s.keys = make(map[string]struct{})
	}
	s.keys[key] = struct{}{}
}

// Remove deletes key.
func (s *Set) Remove(key string) {
	delete(s.keys, key)
}

// Store persists a bookmark set. Implementations replace the stored set
// wholesale on Save.
type Store interface {
	Load(ctx context.Context) (Set, error)
	Save(ctx context.Context, s Set) error
}
