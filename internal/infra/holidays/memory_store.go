// internal/infra/holidays/memory_store.go
package holidays

import (
	"context"
	"sync"
	"time"

	"isitpayday/internal/domain/payday"
)

type memoryEntry struct {
	set       payday.HolidaySet
	expiresAt time.Time
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (payday.HolidaySet, bool) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || !s.now().Before(entry.expiresAt) {
		return payday.HolidaySet{}, false
	}
	return entry.set, true
}

func (s *MemoryStore) Set(_ context.Context, key string, set payday.HolidaySet, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{set: set, expiresAt: expiresAt}
}

func (s *MemoryStore) Purge(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]memoryEntry)
	return nil
}
