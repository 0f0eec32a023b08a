package domain

import "errors"

// Client failure kinds.
var (
	ErrRequest          = errors.New("request error")
	ErrData             = errors.New("data error")
	ErrNoUpcomingPickup = errors.New("no pickup events found after today")
)

// Lifecycle and coordination errors.
var (
	ErrUpdateFailed      = errors.New("update failed")
	ErrNotReady          = errors.New("calendar not ready")
	ErrInvalidCalendar   = errors.New("invalid place id or calendar id")
	ErrInvalidKey        = errors.New("invalid calendar key")
	ErrAlreadyConfigured = errors.New("calendar already configured")
	ErrCalendarNotFound  = errors.New("calendar not found")
	ErrRefreshThrottled  = errors.New("refresh requested too soon")
)

// CodeInvalidCalendar is reported to users when IdealService rejects a pair.
const CodeInvalidCalendar = "invalid_place_id_or_calendar_id"

const (
	KindRequest = "request"
	KindData    = "data"
	KindUnknown = "unknown"
)

// ErrorKind classifies a client error for logs and metrics.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrRequest):
		return KindRequest
	case errors.Is(err, ErrData):
		return KindData
	default:
		return KindUnknown
	}
}
