package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/idealservice/waste-pickup/docs"
	"github.com/idealservice/waste-pickup/internal/api/handler"
	"github.com/idealservice/waste-pickup/internal/api/middleware"
	"github.com/idealservice/waste-pickup/internal/core/ports"
)

// Dependencies are the collaborators the router wires into handlers.
// Mongo and Redis are optional and only feed the readiness probe.
type Dependencies struct {
	Service   ports.CalendarService
	Log       zerolog.Logger
	JWTSecret string

	Mongo *mongo.Database
	Redis *redis.Client

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "idealservice_waste",
		Subsystem:  "http",
		Registerer: deps.Registerer,
	}))

	// --- Health probes and tooling (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Calendars ---
	calendarHandler := handler.NewCalendarHandler(deps.Service, deps.Log)

	// Reads are public; mutations need an admin token when a secret is set.
	guard := []echo.MiddlewareFunc{}
	if deps.JWTSecret != "" {
		guard = append(guard, middleware.Auth(deps.JWTSecret), middleware.RequireRole(middleware.RoleAdmin))
	} else {
		deps.Log.Warn().Msg("JWT_SECRET is empty, mutating routes are unauthenticated")
	}

	v1 := e.Group("/v1/calendars")
	v1.GET("", calendarHandler.List)
	v1.POST("", calendarHandler.Create, guard...)
	v1.POST("/validate", calendarHandler.Validate)
	v1.GET("/:place_id/:calendar_id", calendarHandler.Get)
	v1.DELETE("/:place_id/:calendar_id", calendarHandler.Delete, guard...)
	v1.GET("/:place_id/:calendar_id/events", calendarHandler.Events)
	v1.GET("/:place_id/:calendar_id/sensor", calendarHandler.Sensor)
	v1.GET("/:place_id/:calendar_id/calendar.ics", calendarHandler.ICS)
	v1.POST("/:place_id/:calendar_id/refresh", calendarHandler.Refresh, guard...)

	return e
}

// requestLogger logs one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
