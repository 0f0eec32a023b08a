package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNextPickup_EarliestNotBeforeToday(t *testing.T) {
	events := []PickupEvent{
		{Date: day("2024-03-10")},
		{Date: day("2024-03-05")},
		{Date: day("2024-03-01")},
		{Date: day("2024-03-07")},
	}
	today := time.Date(2024, 3, 5, 21, 30, 0, 0, time.UTC)

	next, ok := NextPickup(events, today)
	if !ok {
		t.Fatal("expected an upcoming pickup")
	}
	if !next.Date.Equal(day("2024-03-05")) {
		t.Errorf("expected 2024-03-05 (today counts), got %s", next.Date.Format(time.DateOnly))
	}
}

func TestNextPickup_AllPast(t *testing.T) {
	events := []PickupEvent{{Date: day("2024-01-01")}, {Date: day("2024-01-02")}}
	if _, ok := NextPickup(events, day("2024-01-03")); ok {
		t.Error("expected no upcoming pickup")
	}
}

func TestDateOf_UsesLocalCalendarDay(t *testing.T) {
	rome := time.FixedZone("CET", 60*60)
	// 23:30 UTC on the 4th is already the 5th in Rome.
	ts := time.Date(2024, 3, 4, 23, 30, 0, 0, time.UTC).In(rome)
	if got := DateOf(ts); !got.Equal(day("2024-03-05")) {
		t.Errorf("unexpected date: %s", got)
	}
}

func TestCalendarKey_Validate(t *testing.T) {
	cases := []struct {
		key   CalendarKey
		valid bool
	}{
		{CalendarKey{PlaceID: "93", CalendarID: "12"}, true},
		{CalendarKey{PlaceID: "", CalendarID: "12"}, false},
		{CalendarKey{PlaceID: "93", CalendarID: "  "}, false},
		{CalendarKey{PlaceID: "9/3", CalendarID: "12"}, false},
	}
	for _, tc := range cases {
		err := tc.key.Validate()
		if tc.valid && err != nil {
			t.Errorf("%v: unexpected error %v", tc.key, err)
		}
		if !tc.valid && !errors.Is(err, ErrInvalidKey) {
			t.Errorf("%v: expected ErrInvalidKey, got %v", tc.key, err)
		}
	}
}

func TestErrorKind(t *testing.T) {
	if k := ErrorKind(fmt.Errorf("get: %w", ErrRequest)); k != KindRequest {
		t.Errorf("expected request, got %s", k)
	}
	if k := ErrorKind(fmt.Errorf("%w: %w", ErrData, ErrNoUpcomingPickup)); k != KindData {
		t.Errorf("expected data, got %s", k)
	}
	if k := ErrorKind(errors.New("boom")); k != KindUnknown {
		t.Errorf("expected unknown, got %s", k)
	}
}
