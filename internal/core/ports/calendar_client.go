package ports

import (
	"context"

	"github.com/idealservice/waste-pickup/internal/core/domain"
)

// FetchOptions narrows the date range requested from the calendar API.
// Both fields must be non-zero for either to be sent; otherwise the API
// returns its default range.
type FetchOptions struct {
	Days   int
	Offset int
}

// CalendarClient fetches and parses pickup events for one identifier pair.
type CalendarClient interface {
	// FetchEvents returns the pickup events in ascending date order.
	FetchEvents(ctx context.Context, opts FetchOptions) ([]domain.PickupEvent, error)
	// NextEvent returns the first pickup dated today or later.
	NextEvent(ctx context.Context) (domain.PickupEvent, error)
}

// CalendarClientFactory builds the client for an identifier pair.
type CalendarClientFactory func(key domain.CalendarKey) CalendarClient
