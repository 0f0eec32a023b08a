package ports

import (
	"context"
	"time"

	"github.com/idealservice/waste-pickup/internal/core/domain"
)

const (
	PhaseLoaded     = "loaded"
	PhaseSetupRetry = "setup_retry"
)

// CalendarStatus is the read model of one configured calendar.
type CalendarStatus struct {
	Key         domain.CalendarKey
	Title       string
	Phase       string // PhaseLoaded or PhaseSetupRetry
	LastSuccess bool
	LastError   string
	LastAttempt time.Time
	LastUpdated time.Time
	EventCount  int
	NextPickup  *domain.PickupEvent
}

// CalendarService manages the lifecycle of configured calendars.
type CalendarService interface {
	Validate(ctx context.Context, key domain.CalendarKey) domain.ValidationResult
	// Create validates and activates a new pair. When the first refresh fails
	// the entry is kept, setup is retried in the background, and the returned
	// error wraps domain.ErrNotReady alongside a non-nil status.
	Create(ctx context.Context, key domain.CalendarKey) (*CalendarStatus, error)
	Delete(ctx context.Context, key domain.CalendarKey) error
	Refresh(ctx context.Context, key domain.CalendarKey) (*CalendarStatus, error)

	List() []CalendarStatus
	Get(key domain.CalendarKey) (*CalendarStatus, error)
	Events(key domain.CalendarKey) ([]domain.PickupEvent, error)
	Sensor(key domain.CalendarKey) (domain.SensorState, error)
}
