package memory

import (
	"context"
	"sync"
	"time"

	"github.com/idealservice/waste-pickup/internal/core/domain"
	"github.com/idealservice/waste-pickup/internal/core/ports"
)

// RefreshThrottle remembers when each calendar was last refreshed by hand.
// A zero cooldown disables throttling.
type RefreshThrottle struct {
	cooldown time.Duration
	now      func() time.Time

	mu     sync.Mutex
	marked map[domain.CalendarKey]time.Time
}

func NewRefreshThrottle(cooldown time.Duration) *RefreshThrottle {
	return &RefreshThrottle{
		cooldown: cooldown,
		now:      time.Now,
		marked:   make(map[domain.CalendarKey]time.Time),
	}
}

var _ ports.RefreshThrottle = (*RefreshThrottle)(nil)

func (t *RefreshThrottle) IsThrottled(_ context.Context, key domain.CalendarKey) (bool, error) {
	if t.cooldown <= 0 {
		return false, nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	at, ok := t.marked[key]
	if !ok {
		return false, nil
	}
	if t.now().Sub(at) >= t.cooldown {
		delete(t.marked, key)
		return false, nil
	}
	return true, nil
}

func (t *RefreshThrottle) Mark(_ context.Context, key domain.CalendarKey) error {
	if t.cooldown <= 0 {
		return nil
	}
	t.mu.Lock()
	t.marked[key] = t.now()
	t.mu.Unlock()
	return nil
}
