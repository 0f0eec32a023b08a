package domain

import "time"

// PickupType describes one kind of waste collected on a pickup day.
type PickupType struct {
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// PickupEvent is a single collection day. Date carries no time component
// (UTC midnight) and PickupTypes is never empty.
type PickupEvent struct {
	Date        time.Time    `json:"date"`
	PickupTypes []PickupType `json:"pickup_types"`
}

// TypeTitles returns the short labels of the event's pickup types, in order.
func (e PickupEvent) TypeTitles() []string {
	titles := make([]string, 0, len(e.PickupTypes))
	for _, t := range e.PickupTypes {
		titles = append(titles, t.Title)
	}
	return titles
}

// DateOf returns the calendar date of t (in t's own location) as UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NextPickup returns the earliest event dated today or later.
// events does not need to be sorted.
func NextPickup(events []PickupEvent, today time.Time) (PickupEvent, bool) {
	day := DateOf(today)

	var (
		next  PickupEvent
		found bool
	)
	for _, e := range events {
		if e.Date.Before(day) {
			continue
		}
		if !found || e.Date.Before(next.Date) {
			next = e
			found = true
		}
	}
	return next, found
}
