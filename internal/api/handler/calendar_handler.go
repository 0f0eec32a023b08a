package handler

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/idealservice/waste-pickup/internal/core/domain"
	"github.com/idealservice/waste-pickup/internal/core/ports"
	"github.com/idealservice/waste-pickup/internal/infrastructure/ical"
)

const mimeCalendar = "text/calendar; charset=utf-8"

// CalendarHandler handles HTTP requests for configured calendars.
type CalendarHandler struct {
	service ports.CalendarService
	log     zerolog.Logger
	now     func() time.Time
}

func NewCalendarHandler(service ports.CalendarService, log zerolog.Logger) *CalendarHandler {
	return &CalendarHandler{service: service, log: log, now: time.Now}
}

// List handles GET /v1/calendars.
//
// @Summary      List configured calendars
// @Tags         calendars
// @Produce      json
// @Success      200  {object}  listCalendarsResponse
// @Router       /v1/calendars [get]
func (h *CalendarHandler) List(c echo.Context) error {
	statuses := h.service.List()
	resp := listCalendarsResponse{Calendars: make([]calendarResponse, 0, len(statuses))}
	for _, s := range statuses {
		resp.Calendars = append(resp.Calendars, toCalendarResponse(s))
	}
	return c.JSON(http.StatusOK, resp)
}

// Validate handles POST /v1/calendars/validate.
//
// @Summary      Check an identifier pair against IdealService without adding it
// @Tags         calendars
// @Accept       json
// @Produce      json
// @Param        body  body      createCalendarRequest  true  "Identifier pair"
// @Success      200   {object}  validateResponse
// @Failure      400   {object}  errorResponse
// @Router       /v1/calendars/validate [post]
func (h *CalendarHandler) Validate(c echo.Context) error {
	key, err := h.bindKey(c)
	if err != nil {
		return err
	}

	res := h.service.Validate(c.Request().Context(), key)
	resp := validateResponse{Valid: res.OK}
	if !res.OK {
		resp.Error = domain.CodeInvalidCalendar
	}
	if res.Next != nil {
		p := toPickupResponse(*res.Next)
		resp.NextPickup = &p
	}
	return c.JSON(http.StatusOK, resp)
}

// Create handles POST /v1/calendars.
//
// @Summary      Add a calendar
// @Description  Validates the pair against IdealService, persists it and runs the first refresh.
// @Description  202 means the pair was accepted but the first refresh failed; setup is retried in the background.
// @Tags         calendars
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createCalendarRequest  true  "Identifier pair"
// @Success      201   {object}  calendarResponse
// @Success      202   {object}  calendarResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/calendars [post]
func (h *CalendarHandler) Create(c echo.Context) error {
	key, err := h.bindKey(c)
	if err != nil {
		return err
	}

	status, err := h.service.Create(c.Request().Context(), key)
	switch {
	case err == nil:
		h.log.Info().Str("calendar", key.String()).Str("actor", actor(c)).Msg("calendar added")
		return c.JSON(http.StatusCreated, toCalendarResponse(*status))
	case errors.Is(err, domain.ErrNotReady) && status != nil:
		h.log.Info().Str("calendar", key.String()).Str("actor", actor(c)).Msg("calendar added, setup pending")
		return c.JSON(http.StatusAccepted, toCalendarResponse(*status))
	default:
		return err
	}
}

// Get handles GET /v1/calendars/:place_id/:calendar_id.
//
// @Summary      Get the status of a calendar
// @Tags         calendars
// @Produce      json
// @Param        place_id     path      string  true  "Place (comune) id"
// @Param        calendar_id  path      string  true  "Calendar id"
// @Success      200          {object}  calendarResponse
// @Failure      404          {object}  errorResponse
// @Router       /v1/calendars/{place_id}/{calendar_id} [get]
func (h *CalendarHandler) Get(c echo.Context) error {
	key, err := keyParam(c)
	if err != nil {
		return err
	}
	status, err := h.service.Get(key)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCalendarResponse(*status))
}

// Events handles GET /v1/calendars/:place_id/:calendar_id/events.
//
// @Summary      List the cached pickup events of a calendar
// @Tags         calendars
// @Produce      json
// @Param        place_id     path      string  true  "Place (comune) id"
// @Param        calendar_id  path      string  true  "Calendar id"
// @Success      200          {object}  eventsResponse
// @Failure      404          {object}  errorResponse
// @Failure      503          {object}  errorResponse
// @Router       /v1/calendars/{place_id}/{calendar_id}/events [get]
func (h *CalendarHandler) Events(c echo.Context) error {
	key, err := keyParam(c)
	if err != nil {
		return err
	}
	events, err := h.service.Events(key)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEventsResponse(key, events))
}

// Sensor handles GET /v1/calendars/:place_id/:calendar_id/sensor.
//
// @Summary      Get the next-pickup sensor of a calendar
// @Tags         calendars
// @Produce      json
// @Param        place_id     path      string  true  "Place (comune) id"
// @Param        calendar_id  path      string  true  "Calendar id"
// @Success      200          {object}  sensorResponse
// @Failure      404          {object}  errorResponse
// @Failure      503          {object}  errorResponse
// @Router       /v1/calendars/{place_id}/{calendar_id}/sensor [get]
func (h *CalendarHandler) Sensor(c echo.Context) error {
	key, err := keyParam(c)
	if err != nil {
		return err
	}
	state, err := h.service.Sensor(key)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSensorResponse(state))
}

// ICS handles GET /v1/calendars/:place_id/:calendar_id/calendar.ics.
//
// @Summary      Export the cached pickups as an iCalendar feed
// @Tags         calendars
// @Produce      text/calendar
// @Param        place_id     path      string  true  "Place (comune) id"
// @Param        calendar_id  path      string  true  "Calendar id"
// @Success      200          {string}  string
// @Failure      404          {object}  errorResponse
// @Failure      503          {object}  errorResponse
// @Router       /v1/calendars/{place_id}/{calendar_id}/calendar.ics [get]
func (h *CalendarHandler) ICS(c echo.Context) error {
	key, err := keyParam(c)
	if err != nil {
		return err
	}
	events, err := h.service.Events(key)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := ical.Encode(&buf, key, events, h.now()); err != nil {
		return err
	}
	return c.Blob(http.StatusOK, mimeCalendar, buf.Bytes())
}

// Refresh handles POST /v1/calendars/:place_id/:calendar_id/refresh.
//
// @Summary      Refresh a calendar now
// @Tags         calendars
// @Produce      json
// @Security     BearerAuth
// @Param        place_id     path      string  true  "Place (comune) id"
// @Param        calendar_id  path      string  true  "Calendar id"
// @Success      200          {object}  calendarResponse
// @Failure      404          {object}  errorResponse
// @Failure      429          {object}  errorResponse
// @Failure      502          {object}  errorResponse
// @Failure      503          {object}  errorResponse
// @Router       /v1/calendars/{place_id}/{calendar_id}/refresh [post]
func (h *CalendarHandler) Refresh(c echo.Context) error {
	key, err := keyParam(c)
	if err != nil {
		return err
	}

	status, err := h.service.Refresh(c.Request().Context(), key)
	if err != nil {
		return err
	}
	h.log.Info().Str("calendar", key.String()).Str("actor", actor(c)).Msg("calendar refreshed on demand")
	return c.JSON(http.StatusOK, toCalendarResponse(*status))
}

// Delete handles DELETE /v1/calendars/:place_id/:calendar_id.
//
// @Summary      Remove a calendar
// @Tags         calendars
// @Security     BearerAuth
// @Param        place_id     path  string  true  "Place (comune) id"
// @Param        calendar_id  path  string  true  "Calendar id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /v1/calendars/{place_id}/{calendar_id} [delete]
func (h *CalendarHandler) Delete(c echo.Context) error {
	key, err := keyParam(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), key); err != nil {
		return err
	}
	h.log.Info().Str("calendar", key.String()).Str("actor", actor(c)).Msg("calendar removed")
	return c.NoContent(http.StatusNoContent)
}

func (h *CalendarHandler) bindKey(c echo.Context) (domain.CalendarKey, error) {
	var req createCalendarRequest
	if err := c.Bind(&req); err != nil {
		return domain.CalendarKey{}, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return domain.CalendarKey{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return domain.CalendarKey{PlaceID: req.PlaceID, CalendarID: req.CalendarID}, nil
}
