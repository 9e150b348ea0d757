package prefs

import (
	"context"
	"strings"
	"sync"
	"time"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	profiles  map[string]Profile
	watchlist []WatchItem
	now       func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		profiles: make(map[string]Profile),
		now:      time.Now,
	}
}

func (m *Memory) GetProfile(_ context.Context, address string) (*Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[strings.ToLower(address)]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *Memory) SaveProfile(_ context.Context, p Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p.Address = strings.ToLower(p.Address)
	p.UpdatedAt = m.now().UTC()
	m.profiles[p.Address] = p
	return nil
}

func (m *Memory) ListWatchlist(_ context.Context) ([]WatchItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]WatchItem, len(m.watchlist))
	copy(out, m.watchlist)
	return out, nil
}

func (m *Memory) AddWatch(_ context.Context, item WatchItem) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item.Address = strings.ToLower(item.Address)
	if m.indexLocked(item.Address) >= 0 {
		return false, nil
	}
	item.AddedAt = m.now().UTC()
	m.watchlist = append(m.watchlist, item)
	return true, nil
}

func (m *Memory) RemoveWatch(_ context.Context, address string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexLocked(strings.ToLower(address))
	if i < 0 {
		return ErrNotFound
	}
	m.watchlist = append(m.watchlist[:i], m.watchlist[i+1:]...)
	return nil
}

func (m *Memory) IsWatched(_ context.Context, address string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.indexLocked(strings.ToLower(address)) >= 0, nil
}

func (m *Memory) indexLocked(address string) int {
	for i, w := range m.watchlist {
		if w.Address == address {
			return i
		}
	}
	return -1
}
