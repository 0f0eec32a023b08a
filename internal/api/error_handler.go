package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/idealservice/waste-pickup/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrInvalidKey):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrCalendarNotFound):
		return http.StatusNotFound, "calendar not found"
	case errors.Is(err, domain.ErrAlreadyConfigured):
		return http.StatusConflict, "calendar already configured"
	case errors.Is(err, domain.ErrInvalidCalendar):
		return http.StatusUnprocessableEntity, domain.CodeInvalidCalendar
	case errors.Is(err, domain.ErrRefreshThrottled):
		return http.StatusTooManyRequests, "refresh requested too soon"
	case errors.Is(err, domain.ErrNotReady):
		return http.StatusServiceUnavailable, "calendar not ready"
	case errors.Is(err, domain.ErrUpdateFailed),
		errors.Is(err, domain.ErrRequest),
		errors.Is(err, domain.ErrData):
		log.Warn().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("upstream failure")
		return http.StatusBadGateway, "error while requesting data from IdealService"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
