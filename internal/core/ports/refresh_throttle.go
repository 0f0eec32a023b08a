package ports

import (
	"context"

	"github.com/idealservice/waste-pickup/internal/core/domain"
)

// RefreshThrottle remembers recent manual refreshes so that on-demand
// triggers cannot hammer the vendor API.
type RefreshThrottle interface {
	IsThrottled(ctx context.Context, key domain.CalendarKey) (bool, error)
	Mark(ctx context.Context, key domain.CalendarKey) error
}
