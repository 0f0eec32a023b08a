package domain

import (
	"fmt"
	"strings"
	"time"
)

const maxIdentifierLen = 64

// CalendarKey identifies one municipality calendar: the place (comune) and the
// collection calendar within it. Each key owns exactly one refresh cycle.
type CalendarKey struct {
	PlaceID    string `json:"place_id"`
	CalendarID string `json:"calendar_id"`
}

// String renders the key the way entries are titled: "<place>, <calendar>".
func (k CalendarKey) String() string {
	return k.PlaceID + ", " + k.CalendarID
}

// Validate reports whether both identifiers are usable in a request path.
func (k CalendarKey) Validate() error {
	fields := [...]struct{ name, value string }{
		{"place_id", k.PlaceID},
		{"calendar_id", k.CalendarID},
	}
	for _, f := range fields {
		name, v := f.name, f.value
		switch {
		case strings.TrimSpace(v) == "":
			return fmt.Errorf("%w: %s is required", ErrInvalidKey, name)
		case len(v) > maxIdentifierLen:
			return fmt.Errorf("%w: %s is too long", ErrInvalidKey, name)
		case strings.ContainsAny(v, "/?#% "):
			return fmt.Errorf("%w: %s contains reserved characters", ErrInvalidKey, name)
		}
	}
	return nil
}

// CalendarEntry is a configured identifier pair, as persisted by the host.
type CalendarEntry struct {
	Key       CalendarKey `json:"key"`
	Title     string      `json:"title"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewCalendarEntry builds an entry titled after its key.
func NewCalendarEntry(key CalendarKey, now time.Time) CalendarEntry {
	return CalendarEntry{Key: key, Title: key.String(), CreatedAt: now.UTC()}
}

// RefreshState is a point-in-time copy of a coordinator's data.
type RefreshState struct {
	Key         CalendarKey
	Events      []PickupEvent
	HasData     bool // false until the first successful refresh
	LastSuccess bool
	LastError   error
	LastAttempt time.Time
	LastUpdated time.Time
}

// ValidationResult is the outcome of checking an identifier pair against the
// remote API before it is accepted.
type ValidationResult struct {
	OK      bool
	Message string
	Next    *PickupEvent
}
