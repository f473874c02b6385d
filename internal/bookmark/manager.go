package bookmark

import (
	"context"
	"sync"

	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/logger"
)

// Manager owns the in-memory bookmark set for one session and writes every
// change through to its Store before returning. All access goes through a
// single mutex.
type Manager struct {
	mu    sync.Mutex
	set   Set
	store Store
	log   *logger.Logger
}

// NewManager loads the set from store. A load failure is logged and the
// manager starts with an empty set; it is never returned to the caller.
func NewManager(ctx context.Context, store Store, log *logger.Logger) *Manager {
	if log == nil {
		log = logger.Nop()
	}
	m := &Manager{store: store, log: log, set: NewSet()}

	s, err := store.Load(ctx)
	if err != nil {
		log.Warn("bookmarks unavailable, starting empty", "error", err)
		return m
	}
	m.set = s
	return m
}

// Has reports whether key is bookmarked.
func (m *Manager) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set.Has(key)
}

// Len returns the number of bookmarks.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set.Len()
}

// Snapshot returns a copy of the current set.
func (m *Manager) Snapshot() Set {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set.Clone()
}

// Toggle flips key's membership and persists the result. It returns the new
// membership. If the save fails the change is undone and a
// STORAGE_UNAVAILABLE error is returned.
func (m *Manager) Toggle(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.set.Clone()
	on := !next.Has(key)
	if on {
		next.Add(key)
	} else {
		next.Remove(key)
	}

	if err := m.store.Save(ctx, next); err != nil {
		m.log.Error("bookmark save failed", "key", key, "error", err)
		return !on, errors.NewStorageUnavailable(err)
	}
	m.set = next
	return on, nil
}

// Merge adds keys to the set and persists it. It returns how many keys were new.
func (m *Manager) Merge(ctx context.Context, keys []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.set.Clone()
	added := 0
	for _, k := range keys {
		if !next.Has(k) {
			next.Add(k)
			added++
		}
	}
	if added == 0 {
		return 0, nil
	}
	if err := m.store.Save(ctx, next); err != nil {
		m.log.Error("bookmark save failed", "op", "merge", "error", err)
		return 0, errors.NewStorageUnavailable(err)
	}
	m.set = next
	return added, nil
}

// Replace swaps the whole set for keys and persists it.
func (m *Manager) Replace(ctx context.Context, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := NewSet(keys...)
	if err := m.store.Save(ctx, next); err != nil {
		m.log.Error("bookmark save failed", "op", "replace", "error", err)
		return errors.NewStorageUnavailable(err)
	}
	m.set = next
	return nil
}
