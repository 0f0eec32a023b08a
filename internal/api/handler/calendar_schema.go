package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type createCalendarRequest struct {
	PlaceID    string `json:"place_id"    validate:"required,max=64"`
	CalendarID string `json:"calendar_id" validate:"required,max=64"`
}

type pickupTypeResponse struct {
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type pickupResponse struct {
	Date  string               `json:"date"`
	Types []pickupTypeResponse `json:"types"`
}

type calendarLinks struct {
	Self     string `json:"self"`
	Events   string `json:"events"`
	Sensor   string `json:"sensor"`
	Calendar string `json:"calendar"`
	Refresh  string `json:"refresh"`
}

type calendarResponse struct {
	PlaceID     string          `json:"place_id"`
	CalendarID  string          `json:"calendar_id"`
	Title       string          `json:"title"`
	Phase       string          `json:"phase"`
	LastSuccess bool            `json:"last_success"`
	LastError   string          `json:"last_error,omitempty"`
	LastAttempt *time.Time      `json:"last_attempt,omitempty"`
	LastUpdated *time.Time      `json:"last_updated,omitempty"`
	EventCount  int             `json:"event_count"`
	NextPickup  *pickupResponse `json:"next_pickup,omitempty"`
	Links       calendarLinks   `json:"_links"`
}

type listCalendarsResponse struct {
	Calendars []calendarResponse `json:"calendars"`
}

type eventsResponse struct {
	PlaceID    string           `json:"place_id"`
	CalendarID string           `json:"calendar_id"`
	Events     []pickupResponse `json:"events"`
}

type validateResponse struct {
	Valid      bool            `json:"valid"`
	Error      string          `json:"error,omitempty"`
	NextPickup *pickupResponse `json:"next_pickup,omitempty"`
}

type sensorResponse struct {
	UniqueID   string         `json:"unique_id"`
	Name       string         `json:"name"`
	Icon       string         `json:"icon"`
	Available  bool           `json:"available"`
	State      string         `json:"state"`
	Attributes map[string]any `json:"attributes"`
}
