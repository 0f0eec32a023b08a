package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/idealservice/waste-pickup/internal/api/metrics"
	"github.com/idealservice/waste-pickup/internal/core/domain"
	"github.com/idealservice/waste-pickup/internal/core/ports"
)

const (
	DefaultRefreshInterval    = 24 * time.Hour
	DefaultSetupRetryInterval = time.Minute

	jobRefresh    = "refresh"
	jobSetupRetry = "setup_retry"
)

// Config tunes the calendar lifecycle.
type Config struct {
	RefreshInterval    time.Duration
	SetupRetryInterval time.Duration
	Fetch              ports.FetchOptions
}

// CalendarService owns the configured calendars: validation, setup with
// retry, scheduled refresh, manual refresh and teardown.
type CalendarService struct {
	repo      ports.EntryRepository
	newClient ports.CalendarClientFactory
	scheduler ports.Scheduler
	throttle  ports.RefreshThrottle
	registry  *Registry
	cfg       Config
	log       zerolog.Logger
	now       func() time.Time
}

// NewCalendarService returns a CalendarService. Zero intervals in cfg fall
// back to the defaults.
func NewCalendarService(
	repo ports.EntryRepository,
	newClient ports.CalendarClientFactory,
	scheduler ports.Scheduler,
	throttle ports.RefreshThrottle,
	cfg Config,
	log zerolog.Logger,
) *CalendarService {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = DefaultRefreshInterval
	}
	if cfg.SetupRetryInterval <= 0 {
		cfg.SetupRetryInterval = DefaultSetupRetryInterval
	}
	return &CalendarService{
		repo:      repo,
		newClient: newClient,
		scheduler: scheduler,
		throttle:  throttle,
		registry:  NewRegistry(),
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

var _ ports.CalendarService = (*CalendarService)(nil)

// Validate checks that the API knows the pair and has an upcoming pickup.
func (s *CalendarService) Validate(ctx context.Context, key domain.CalendarKey) domain.ValidationResult {
	if err := key.Validate(); err != nil {
		return domain.ValidationResult{Message: err.Error()}
	}

	next, err := s.newClient(key).NextEvent(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("calendar", key.String()).Msg("error during setup of calendar")
		return domain.ValidationResult{Message: err.Error()}
	}
	return domain.ValidationResult{OK: true, Next: &next}
}

// Create validates, persists and activates a new pair.
func (s *CalendarService) Create(ctx context.Context, key domain.CalendarKey) (*ports.CalendarStatus, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	if _, exists := s.registry.Get(key); exists {
		return nil, fmt.Errorf("create %s: %w", key, domain.ErrAlreadyConfigured)
	}

	if res := s.Validate(ctx, key); !res.OK {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidCalendar, res.Message)
	}

	entry := domain.NewCalendarEntry(key, s.now())
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("create %s: %w", key, err)
	}

	s.log.Info().Str("calendar", key.String()).Msg("calendar configured")

	rt, err := s.activate(ctx, entry)
	if rt == nil {
		return nil, err
	}
	status := s.statusOf(rt)
	return &status, err
}

// Import runs each pair through Create, skipping pairs already configured.
// Failures are logged and do not stop the import.
func (s *CalendarService) Import(ctx context.Context, keys []domain.CalendarKey) {
	for _, key := range keys {
		_, err := s.Create(ctx, key)
		switch {
		case err == nil:
			s.log.Info().Str("calendar", key.String()).Msg("calendar imported")
		case errors.Is(err, domain.ErrAlreadyConfigured):
			s.log.Debug().Str("calendar", key.String()).Msg("calendar already configured, import skipped")
		case errors.Is(err, domain.ErrNotReady):
			s.log.Warn().Err(err).Str("calendar", key.String()).Msg("calendar imported, setup will be retried")
		default:
			s.log.Error().Err(err).Str("calendar", key.String()).Msg("calendar import failed")
		}
	}
}

// Start activates every persisted entry. Entries whose first refresh fails
// are retried in the background.
func (s *CalendarService) Start(ctx context.Context) error {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("list calendar entries: %w", err)
	}

	for _, entry := range entries {
		if _, err := s.activate(ctx, entry); err != nil && !errors.Is(err, domain.ErrNotReady) {
			s.log.Error().Err(err).Str("calendar", entry.Key.String()).Msg("calendar activation failed")
		}
	}
	s.log.Info().Int("calendars", len(entries)).Msg("calendars started")
	return nil
}

// Shutdown tears down every runtime. Persisted entries are kept.
func (s *CalendarService) Shutdown() {
	for _, rt := range s.registry.List() {
		if removed, ok := s.registry.Remove(rt.entry.Key); ok {
			removed.stop()
		}
	}
	s.updatePhaseGauge()
}

// Delete tears down a pair and forgets its entry.
func (s *CalendarService) Delete(ctx context.Context, key domain.CalendarKey) error {
	rt, inMemory := s.registry.Remove(key)
	if inMemory {
		rt.stop()
		s.updatePhaseGauge()
	}

	err := s.repo.Delete(ctx, key)
	if errors.Is(err, domain.ErrCalendarNotFound) && inMemory {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}

	s.log.Info().Str("calendar", key.String()).Msg("calendar removed")
	return nil
}

// Refresh triggers an on-demand refresh of a loaded pair.
func (s *CalendarService) Refresh(ctx context.Context, key domain.CalendarKey) (*ports.CalendarStatus, error) {
	rt, ok := s.registry.Get(key)
	if !ok {
		return nil, domain.ErrCalendarNotFound
	}
	if !rt.loaded() {
		status := s.statusOf(rt)
		return &status, fmt.Errorf("refresh %s: %w", key, domain.ErrNotReady)
	}

	throttled, err := s.throttle.IsThrottled(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("calendar", key.String()).Msg("throttle check failed, refreshing anyway")
	} else if throttled {
		metrics.ManualRefreshThrottledTotal.Inc()
		return nil, fmt.Errorf("refresh %s: %w", key, domain.ErrRefreshThrottled)
	}

	refreshErr := rt.coordinator.Refresh(ctx)
	if refreshErr == nil {
		if markErr := s.throttle.Mark(ctx, key); markErr != nil {
			s.log.Warn().Err(markErr).Str("calendar", key.String()).Msg("failed to record manual refresh")
		}
	}

	status := s.statusOf(rt)
	return &status, refreshErr
}

// List returns the status of every configured pair.
func (s *CalendarService) List() []ports.CalendarStatus {
	runtimes := s.registry.List()
	out := make([]ports.CalendarStatus, 0, len(runtimes))
	for _, rt := range runtimes {
		out = append(out, s.statusOf(rt))
	}
	return out
}

// Get returns the status of one pair.
func (s *CalendarService) Get(key domain.CalendarKey) (*ports.CalendarStatus, error) {
	rt, ok := s.registry.Get(key)
	if !ok {
		return nil, domain.ErrCalendarNotFound
	}
	status := s.statusOf(rt)
	return &status, nil
}

// Events returns the cached events of a loaded pair.
func (s *CalendarService) Events(key domain.CalendarKey) ([]domain.PickupEvent, error) {
	rt, err := s.loadedRuntime(key)
	if err != nil {
		return nil, err
	}
	return rt.coordinator.State().Events, nil
}

// Sensor returns the display state of a loaded pair.
func (s *CalendarService) Sensor(key domain.CalendarKey) (domain.SensorState, error) {
	rt, err := s.loadedRuntime(key)
	if err != nil {
		return domain.SensorState{}, err
	}
	return rt.sensor.State(), nil
}

func (s *CalendarService) loadedRuntime(key domain.CalendarKey) (*calendarRuntime, error) {
	rt, ok := s.registry.Get(key)
	if !ok {
		return nil, domain.ErrCalendarNotFound
	}
	if !rt.loaded() {
		return nil, fmt.Errorf("%s: %w", key, domain.ErrNotReady)
	}
	return rt, nil
}

// --- Setup ---

// activate sets the entry up and registers it. When the first refresh fails
// the entry is registered without a coordinator and retried on a schedule;
// the returned error then wraps domain.ErrNotReady.
func (s *CalendarService) activate(ctx context.Context, entry domain.CalendarEntry) (*calendarRuntime, error) {
	rt, err := s.setup(ctx, entry)
	if err == nil {
		if !s.registry.Add(rt) {
			rt.stop()
			return nil, fmt.Errorf("activate %s: %w", entry.Key, domain.ErrAlreadyConfigured)
		}
		s.startRefreshing(rt)
		s.updatePhaseGauge()
		return rt, nil
	}

	pending := &calendarRuntime{entry: entry, setupErr: err}
	if !s.registry.Add(pending) {
		return nil, fmt.Errorf("activate %s: %w", entry.Key, domain.ErrAlreadyConfigured)
	}

	cancel := s.scheduler.Every(entry.Key, jobSetupRetry, s.cfg.SetupRetryInterval, func(ctx context.Context) error {
		return s.retrySetup(ctx, pending)
	})
	pending.hold(&pending.cancelRetry, cancel)

	s.updatePhaseGauge()
	s.log.Warn().Err(err).
		Str("calendar", entry.Key.String()).
		Dur("retry_in", s.cfg.SetupRetryInterval).
		Msg("calendar not ready, setup will be retried")
	return pending, err
}

// setup builds the coordinator and runs its first refresh synchronously.
func (s *CalendarService) setup(ctx context.Context, entry domain.CalendarEntry) (*calendarRuntime, error) {
	coord := NewCoordinator(entry.Key, s.newClient(entry.Key), s.log, WithFetchOptions(s.cfg.Fetch))
	if err := coord.Refresh(ctx); err != nil {
		coord.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrNotReady, err)
	}

	sensor := NewSensor(entry.Key, s.now)
	rt := &calendarRuntime{entry: entry, coordinator: coord, sensor: sensor}
	rt.unsubscribe = coord.Subscribe(sensor)
	sensor.OnRefresh(coord.State())
	return rt, nil
}

func (s *CalendarService) startRefreshing(rt *calendarRuntime) {
	coord := rt.coordinator
	cancel := s.scheduler.Every(rt.entry.Key, jobRefresh, s.cfg.RefreshInterval, coord.Refresh)
	rt.hold(&rt.cancelSchedule, cancel)
}

func (s *CalendarService) retrySetup(ctx context.Context, pending *calendarRuntime) error {
	if current, ok := s.registry.Get(pending.entry.Key); !ok || current != pending {
		return nil
	}

	rt, err := s.setup(ctx, pending.entry)
	if err != nil {
		pending.setSetupError(err)
		return err
	}

	if !s.registry.Swap(pending, rt) {
		// Deleted while the retry was running.
		rt.stop()
		return nil
	}
	pending.stop()
	s.startRefreshing(rt)
	s.updatePhaseGauge()

	s.log.Info().Str("calendar", rt.entry.Key.String()).Msg("calendar setup succeeded after retry")
	return nil
}

func (s *CalendarService) updatePhaseGauge() {
	var loaded, retrying int
	for _, rt := range s.registry.List() {
		if rt.loaded() {
			loaded++
		} else {
			retrying++
		}
	}
	metrics.CalendarsConfigured.WithLabelValues(ports.PhaseLoaded).Set(float64(loaded))
	metrics.CalendarsConfigured.WithLabelValues(ports.PhaseSetupRetry).Set(float64(retrying))
}

func (s *CalendarService) statusOf(rt *calendarRuntime) ports.CalendarStatus {
	status := ports.CalendarStatus{
		Key:   rt.entry.Key,
		Title: rt.entry.Title,
		Phase: ports.PhaseSetupRetry,
	}

	if !rt.loaded() {
		if err := rt.setupError(); err != nil {
			status.LastError = err.Error()
		}
		return status
	}

	st := rt.coordinator.State()
	status.Phase = ports.PhaseLoaded
	status.LastSuccess = st.LastSuccess
	status.LastAttempt = st.LastAttempt
	status.LastUpdated = st.LastUpdated
	status.EventCount = len(st.Events)
	if st.LastError != nil {
		status.LastError = st.LastError.Error()
	}
	if next, ok := domain.NextPickup(st.Events, s.now()); ok {
		status.NextPickup = &next
	}
	return status
}
