package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/idealservice/waste-pickup/internal/core/domain"
)

var (
	keyA = domain.CalendarKey{PlaceID: "93", CalendarID: "12"}
	keyB = domain.CalendarKey{PlaceID: "93", CalendarID: "13"}
)

func TestEntryRepository_CreateListDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewEntryRepository()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	if err := repo.Create(ctx, domain.NewCalendarEntry(keyB, base.Add(time.Hour))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Create(ctx, domain.NewCalendarEntry(keyA, base)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Create(ctx, domain.NewCalendarEntry(keyA, base)); !errors.Is(err, domain.ErrAlreadyConfigured) {
		t.Fatalf("expected ErrAlreadyConfigured, got: %v", err)
	}

	entries, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 || entries[0].Key != keyA || entries[1].Key != keyB {
		t.Fatalf("expected entries oldest first, got %+v", entries)
	}

	if err := repo.Delete(ctx, keyA); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Delete(ctx, keyA); !errors.Is(err, domain.ErrCalendarNotFound) {
		t.Fatalf("expected ErrCalendarNotFound, got: %v", err)
	}
}

func TestRefreshThrottle_Cooldown(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	th := NewRefreshThrottle(time.Minute)
	th.now = func() time.Time { return now }

	if throttled, _ := th.IsThrottled(ctx, keyA); throttled {
		t.Fatal("expected no throttle before any mark")
	}

	_ = th.Mark(ctx, keyA)
	if throttled, _ := th.IsThrottled(ctx, keyA); !throttled {
		t.Error("expected throttle right after mark")
	}
	if throttled, _ := th.IsThrottled(ctx, keyB); throttled {
		t.Error("expected other calendars unaffected")
	}

	now = now.Add(time.Minute)
	if throttled, _ := th.IsThrottled(ctx, keyA); throttled {
		t.Error("expected throttle lifted after cooldown")
	}
}

func TestRefreshThrottle_Disabled(t *testing.T) {
	ctx := context.Background()
	th := NewRefreshThrottle(0)

	_ = th.Mark(ctx, keyA)
	if throttled, _ := th.IsThrottled(ctx, keyA); throttled {
		t.Error("expected zero cooldown to disable throttling")
	}
}
