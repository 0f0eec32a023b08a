// Package ical renders cached pickup events as an iCalendar feed.
package ical

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/idealservice/waste-pickup/internal/core/domain"
)

const productID = "-//idealservice-waste//pickup calendar//IT"

// Encode writes one all-day VEVENT per pickup day. stamp becomes the DTSTAMP
// of every event.
func Encode(w io.Writer, key domain.CalendarKey, events []domain.PickupEvent, stamp time.Time) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText("X-WR-CALNAME", "Waste pickup "+key.String())

	for _, e := range events {
		cal.Children = append(cal.Children, newEvent(key, e, stamp).Component)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encode calendar %s: %w", key, err)
	}
	return nil
}

func newEvent(key domain.CalendarKey, e domain.PickupEvent, stamp time.Time) *ical.Event {
	day := e.Date.Format("20060102")

	descriptions := make([]string, 0, len(e.PickupTypes))
	for _, t := range e.PickupTypes {
		if t.Description != "" {
			descriptions = append(descriptions, t.Description)
		}
	}

	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropUID, fmt.Sprintf("%s-%s-%s@idealservice-waste", key.PlaceID, key.CalendarID, day))
	ev.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	ev.Props.SetDate(ical.PropDateTimeStart, e.Date)
	ev.Props.SetDate(ical.PropDateTimeEnd, e.Date.AddDate(0, 0, 1))
	ev.Props.SetText(ical.PropSummary, strings.Join(e.TypeTitles(), ", "))
	if len(descriptions) > 0 {
		ev.Props.SetText(ical.PropDescription, strings.Join(descriptions, "\n"))
	}
	ev.Props.SetText("TRANSP", "TRANSPARENT")
	return ev
}
