// Package memory holds process-local implementations of the storage ports,
// used when no database is configured and in tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/idealservice/waste-pickup/internal/core/domain"
	"github.com/idealservice/waste-pickup/internal/core/ports"
)

// EntryRepository keeps calendar entries in a map. Entries are lost on restart.
type EntryRepository struct {
	mu      sync.RWMutex
	entries map[domain.CalendarKey]domain.CalendarEntry
}

func NewEntryRepository() *EntryRepository {
	return &EntryRepository{entries: make(map[domain.CalendarKey]domain.CalendarEntry)}
}

var _ ports.EntryRepository = (*EntryRepository)(nil)

func (r *EntryRepository) Create(_ context.Context, entry domain.CalendarEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[entry.Key]; exists {
		return domain.ErrAlreadyConfigured
	}
	r.entries[entry.Key] = entry
	return nil
}

func (r *EntryRepository) Delete(_ context.Context, key domain.CalendarKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[key]; !exists {
		return domain.ErrCalendarNotFound
	}
	delete(r.entries, key)
	return nil
}

// List returns entries oldest first.
func (r *EntryRepository) List(_ context.Context) ([]domain.CalendarEntry, error) {
	r.mu.RLock()
	out := make([]domain.CalendarEntry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Key.String() < out[j].Key.String()
	})
	return out, nil
}
