package ports

import (
	"context"

	"github.com/idealservice/waste-pickup/internal/core/domain"
)

// EntryRepository persists the configured identifier pairs.
// Create returns domain.ErrAlreadyConfigured for a duplicate key and Delete
// returns domain.ErrCalendarNotFound for an unknown one.
type EntryRepository interface {
	Create(ctx context.Context, entry domain.CalendarEntry) error
	Delete(ctx context.Context, key domain.CalendarKey) error
	List(ctx context.Context) ([]domain.CalendarEntry, error)
}
