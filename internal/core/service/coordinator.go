package service

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/idealservice/waste-pickup/internal/api/metrics"
	"github.com/idealservice/waste-pickup/internal/core/domain"
	"github.com/idealservice/waste-pickup/internal/core/ports"
)

const (
	DefaultRefreshDays   = 28
	DefaultRefreshOffset = 0

	refreshFlightKey = "refresh"
)

// Coordinator keeps the last known pickup events of one calendar and refreshes
// them on demand. At most one fetch per coordinator is in flight at any time;
// callers arriving during a fetch share its outcome.
type Coordinator struct {
	key    domain.CalendarKey
	client ports.CalendarClient
	fetch  ports.FetchOptions
	log    zerolog.Logger
	now    func() time.Time

	// ctx bounds in-flight fetches; cancelled by Close.
	ctx    context.Context
	cancel context.CancelFunc

	flight singleflight.Group

	mu          sync.RWMutex
	data        []domain.PickupEvent
	hasData     bool
	lastSuccess bool
	lastError   error
	lastAttempt time.Time
	lastUpdated time.Time

	obsMu     sync.Mutex
	observers map[uint64]ports.Observer
	nextObsID uint64
}

// CoordinatorOption customises a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithFetchOptions overrides the days/offset sent on every refresh.
func WithFetchOptions(opts ports.FetchOptions) CoordinatorOption {
	return func(c *Coordinator) { c.fetch = opts }
}

// WithCoordinatorClock sets the clock used for refresh timestamps.
func WithCoordinatorClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) { c.now = now }
}

// NewCoordinator returns an idle coordinator with no data.
func NewCoordinator(key domain.CalendarKey, client ports.CalendarClient, log zerolog.Logger, opts ...CoordinatorOption) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		key:       key,
		client:    client,
		fetch:     ports.FetchOptions{Days: DefaultRefreshDays, Offset: DefaultRefreshOffset},
		log:       log.With().Str("place_id", key.PlaceID).Str("calendar_id", key.CalendarID).Logger(),
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
		observers: make(map[uint64]ports.Observer),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key returns the identifier pair this coordinator is bound to.
func (c *Coordinator) Key() domain.CalendarKey { return c.key }

// Refresh fetches the calendar and updates the cached state. A failure keeps
// the previous data and is returned wrapped in domain.ErrUpdateFailed.
//
// If ctx ends while waiting, Refresh returns ctx.Err() but the shared fetch
// keeps running for the other waiters.
func (c *Coordinator) Refresh(ctx context.Context) error {
	// Written only by the call that runs the fetch, before its result is sent.
	var leader bool
	ch := c.flight.DoChan(refreshFlightKey, func() (any, error) {
		leader = true
		return nil, c.refresh()
	})

	select {
	case res := <-ch:
		if res.Shared && !leader {
			metrics.RefreshCoalescedTotal.Inc()
		}
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) refresh() error {
	start := time.Now()
	events, err := c.fetchEvents()
	elapsed := time.Since(start)

	c.mu.Lock()
	c.lastAttempt = c.now()
	if err != nil {
		c.lastSuccess = false
		c.lastError = err
	} else {
		c.data = events
		c.hasData = true
		c.lastSuccess = true
		c.lastError = nil
		c.lastUpdated = c.lastAttempt
	}
	state := c.stateLocked()
	c.mu.Unlock()

	if err != nil {
		metrics.RefreshTotal.WithLabelValues("failure").Inc()
		metrics.RefreshErrorsTotal.WithLabelValues(domain.ErrorKind(err)).Inc()
		metrics.RefreshDuration.WithLabelValues("failure").Observe(elapsed.Seconds())
	} else {
		metrics.RefreshTotal.WithLabelValues("success").Inc()
		metrics.RefreshDuration.WithLabelValues("success").Observe(elapsed.Seconds())
		metrics.PickupEvents.WithLabelValues(c.key.PlaceID, c.key.CalendarID).Set(float64(len(events)))
		metrics.LastSuccessTimestamp.WithLabelValues(c.key.PlaceID, c.key.CalendarID).Set(float64(state.LastUpdated.Unix()))
	}

	c.notify(state)

	if err != nil {
		c.log.Warn().Err(err).Str("kind", domain.ErrorKind(err)).Dur("elapsed", elapsed).Msg("calendar refresh failed")
		return fmt.Errorf("%w: error while requesting data from IdealService: %w", domain.ErrUpdateFailed, err)
	}

	c.log.Debug().Int("events", len(events)).Dur("elapsed", elapsed).Msg("calendar refreshed")
	return nil
}

// fetchEvents calls the client, turning a panic into a failed attempt. A panic
// inside singleflight would be re-raised on a fresh goroutine where no caller
// can recover it.
func (c *Coordinator) fetchEvents() (events []domain.PickupEvent, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("calendar client panicked")
			events, err = nil, fmt.Errorf("calendar client panic: %v", r)
		}
	}()
	return c.client.FetchEvents(c.ctx, c.fetch)
}

// State returns a copy of the current state.
func (c *Coordinator) State() domain.RefreshState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stateLocked()
}

func (c *Coordinator) stateLocked() domain.RefreshState {
	var events []domain.PickupEvent
	if c.hasData {
		events = make([]domain.PickupEvent, len(c.data))
		copy(events, c.data)
	}
	return domain.RefreshState{
		Key:         c.key,
		Events:      events,
		HasData:     c.hasData,
		LastSuccess: c.lastSuccess,
		LastError:   c.lastError,
		LastAttempt: c.lastAttempt,
		LastUpdated: c.lastUpdated,
	}
}

// Subscribe registers o for refresh notifications and returns a func that
// removes it again.
func (c *Coordinator) Subscribe(o ports.Observer) (unsubscribe func()) {
	c.obsMu.Lock()
	id := c.nextObsID
	c.nextObsID++
	c.observers[id] = o
	c.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.obsMu.Lock()
			delete(c.observers, id)
			c.obsMu.Unlock()
		})
	}
}

func (c *Coordinator) notify(state domain.RefreshState) {
	c.obsMu.Lock()
	observers := make([]ports.Observer, 0, len(c.observers))
	for _, o := range c.observers {
		observers = append(observers, o)
	}
	c.obsMu.Unlock()

	for _, o := range observers {
		c.notifyOne(o, state)
	}
}

func (c *Coordinator) notifyOne(o ports.Observer, state domain.RefreshState) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("refresh observer panicked")
		}
	}()
	o.OnRefresh(state)
}

// Close cancels any in-flight fetch. The coordinator must not be refreshed
// afterwards.
func (c *Coordinator) Close() {
	c.cancel()
	metrics.PickupEvents.DeleteLabelValues(c.key.PlaceID, c.key.CalendarID)
	metrics.LastSuccessTimestamp.DeleteLabelValues(c.key.PlaceID, c.key.CalendarID)
}
