package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/idealservice/waste-pickup/internal/core/domain"
	"github.com/idealservice/waste-pickup/internal/core/ports"
)

// RefreshThrottle shares the manual-refresh cooldown across replicas.
// Key format: refresh:<place_id>:<calendar_id>
type RefreshThrottle struct {
	client   *redis.Client
	cooldown time.Duration
}

// NewRefreshThrottle creates a RefreshThrottle wrapping the given Redis client.
func NewRefreshThrottle(client *redis.Client, cooldown time.Duration) *RefreshThrottle {
	return &RefreshThrottle{client: client, cooldown: cooldown}
}

var _ ports.RefreshThrottle = (*RefreshThrottle)(nil)

// IsThrottled reports whether key was refreshed by hand within the cooldown.
func (t *RefreshThrottle) IsThrottled(ctx context.Context, key domain.CalendarKey) (bool, error) {
	if t.cooldown <= 0 {
		return false, nil
	}
	n, err := t.client.Exists(ctx, t.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("throttle check: %w", err)
	}
	return n > 0, nil
}

// Mark starts the cooldown for key (expires after the cooldown).
func (t *RefreshThrottle) Mark(ctx context.Context, key domain.CalendarKey) error {
	if t.cooldown <= 0 {
		return nil
	}
	return t.client.Set(ctx, t.key(key), time.Now().UTC().Format(time.RFC3339), t.cooldown).Err()
}

func (t *RefreshThrottle) key(key domain.CalendarKey) string {
	return fmt.Sprintf("refresh:%s:%s", key.PlaceID, key.CalendarID)
}
