package handler

import (
	"time"

	"github.com/idealservice/waste-pickup/internal/core/domain"
	"github.com/idealservice/waste-pickup/internal/core/ports"
)

// --- Service output → Response ---

func calendarPath(key domain.CalendarKey) string {
	return "/v1/calendars/" + key.PlaceID + "/" + key.CalendarID
}

func toCalendarResponse(s ports.CalendarStatus) calendarResponse {
	self := calendarPath(s.Key)
	resp := calendarResponse{
		PlaceID:     s.Key.PlaceID,
		CalendarID:  s.Key.CalendarID,
		Title:       s.Title,
		Phase:       s.Phase,
		LastSuccess: s.LastSuccess,
		LastError:   s.LastError,
		LastAttempt: optionalTime(s.LastAttempt),
		LastUpdated: optionalTime(s.LastUpdated),
		EventCount:  s.EventCount,
		Links: calendarLinks{
			Self:     self,
			Events:   self + "/events",
			Sensor:   self + "/sensor",
			Calendar: self + "/calendar.ics",
			Refresh:  self + "/refresh",
		},
	}
	if s.NextPickup != nil {
		p := toPickupResponse(*s.NextPickup)
		resp.NextPickup = &p
	}
	return resp
}

func toPickupResponse(e domain.PickupEvent) pickupResponse {
	types := make([]pickupTypeResponse, 0, len(e.PickupTypes))
	for _, t := range e.PickupTypes {
		types = append(types, pickupTypeResponse{Icon: t.Icon, Title: t.Title, Description: t.Description})
	}
	return pickupResponse{Date: e.Date.Format(time.DateOnly), Types: types}
}

func toEventsResponse(key domain.CalendarKey, events []domain.PickupEvent) eventsResponse {
	out := make([]pickupResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toPickupResponse(e))
	}
	return eventsResponse{PlaceID: key.PlaceID, CalendarID: key.CalendarID, Events: out}
}

func toSensorResponse(s domain.SensorState) sensorResponse {
	return sensorResponse{
		UniqueID:   s.UniqueID,
		Name:       s.Name,
		Icon:       s.Icon,
		Available:  s.Available,
		State:      s.State,
		Attributes: s.Attributes,
	}
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	utc := t.UTC()
	return &utc
}
