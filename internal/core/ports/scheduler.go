package ports

import (
	"context"
	"time"

	"github.com/idealservice/waste-pickup/internal/core/domain"
)

// Task is a unit of scheduled work. Returned errors are reported, never fatal.
type Task func(ctx context.Context) error

// Scheduler runs a task for a calendar every interval until cancelled.
// The returned cancel func is idempotent and safe to call from inside task.
type Scheduler interface {
	Every(key domain.CalendarKey, name string, interval time.Duration, task Task) (cancel func())
}
