package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/idealservice/waste-pickup/internal/api/middleware"
	"github.com/idealservice/waste-pickup/internal/core/domain"
)

// actor returns the token subject injected by the Auth middleware, or
// "anonymous" when the API runs without authentication.
func actor(c echo.Context) string {
	if sub, _ := c.Get(middleware.ContextKeySubject).(string); sub != "" {
		return sub
	}
	return "anonymous"
}

// keyParam reads the identifier pair from the route and rejects values that
// cannot address a calendar.
func keyParam(c echo.Context) (domain.CalendarKey, error) {
	key := domain.CalendarKey{PlaceID: c.Param("place_id"), CalendarID: c.Param("calendar_id")}
	if err := key.Validate(); err != nil {
		return domain.CalendarKey{}, err
	}
	return key, nil
}
