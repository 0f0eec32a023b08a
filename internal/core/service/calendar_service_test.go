package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/idealservice/waste-pickup/internal/core/domain"
	"github.com/idealservice/waste-pickup/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubEntryRepo struct {
	mu        sync.Mutex
	entries   map[domain.CalendarKey]domain.CalendarEntry
	createErr error
	listErr   error
}

func newStubEntryRepo(entries ...domain.CalendarEntry) *stubEntryRepo {
	r := &stubEntryRepo{entries: make(map[domain.CalendarKey]domain.CalendarEntry)}
	for _, e := range entries {
		r.entries[e.Key] = e
	}
	return r
}

func (r *stubEntryRepo) Create(_ context.Context, e domain.CalendarEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if _, exists := r.entries[e.Key]; exists {
		return domain.ErrAlreadyConfigured
	}
	r.entries[e.Key] = e
	return nil
}

func (r *stubEntryRepo) Delete(_ context.Context, key domain.CalendarKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[key]; !exists {
		return domain.ErrCalendarNotFound
	}
	delete(r.entries, key)
	return nil
}

func (r *stubEntryRepo) List(_ context.Context) ([]domain.CalendarEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]domain.CalendarEntry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	return out, nil
}

func (r *stubEntryRepo) has(key domain.CalendarKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[key]
	return ok
}

type scheduledJob struct {
	key       domain.CalendarKey
	name      string
	interval  time.Duration
	task      ports.Task
	cancelled bool
}

// stubScheduler records jobs; tests fire them by hand.
type stubScheduler struct {
	mu   sync.Mutex
	jobs []*scheduledJob

	// onEvery runs after a job is recorded and before Every returns.
	onEvery func(name string)
}

func (s *stubScheduler) Every(key domain.CalendarKey, name string, interval time.Duration, task ports.Task) func() {
	s.mu.Lock()
	job := &scheduledJob{key: key, name: name, interval: interval, task: task}
	s.jobs = append(s.jobs, job)
	hook := s.onEvery
	s.mu.Unlock()

	if hook != nil {
		hook(name)
	}
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		job.cancelled = true
	}
}

func (s *stubScheduler) active(name string) []*scheduledJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*scheduledJob
	for _, j := range s.jobs {
		if j.name == name && !j.cancelled {
			out = append(out, j)
		}
	}
	return out
}

// fire runs every active job with the given name once.
func (s *stubScheduler) fire(t *testing.T, name string) []error {
	t.Helper()
	var errs []error
	for _, j := range s.active(name) {
		errs = append(errs, j.task(context.Background()))
	}
	return errs
}

type stubThrottle struct {
	throttled bool
	checkErr  error
	marked    []domain.CalendarKey
}

func (t *stubThrottle) IsThrottled(_ context.Context, _ domain.CalendarKey) (bool, error) {
	return t.throttled, t.checkErr
}

func (t *stubThrottle) Mark(_ context.Context, key domain.CalendarKey) error {
	t.marked = append(t.marked, key)
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type serviceFixture struct {
	svc       *CalendarService
	client    *stubClient
	repo      *stubEntryRepo
	scheduler *stubScheduler
	throttle  *stubThrottle
}

func newServiceFixture(entries ...domain.CalendarEntry) *serviceFixture {
	f := &serviceFixture{
		client: &stubClient{events: []domain.PickupEvent{
			pickup("2024-01-29", "Secco"),
			pickup("2024-01-31", "Carta"),
		}},
		repo:      newStubEntryRepo(entries...),
		scheduler: &stubScheduler{},
		throttle:  &stubThrottle{},
	}
	factory := func(domain.CalendarKey) ports.CalendarClient { return f.client }
	f.svc = NewCalendarService(f.repo, factory, f.scheduler, f.throttle, Config{}, zerolog.Nop())
	f.svc.now = func() time.Time { return mustDate("2024-01-30") }
	return f
}

// ---------------------------------------------------------------------------
// Validate / Create
// ---------------------------------------------------------------------------

func TestCalendarService_Validate(t *testing.T) {
	f := newServiceFixture()

	res := f.svc.Validate(context.Background(), testKey)
	if !res.OK || res.Next == nil {
		t.Fatalf("expected a valid result, got %+v", res)
	}

	f.client.nextErr = errors.Join(domain.ErrData, domain.ErrNoUpcomingPickup)
	res = f.svc.Validate(context.Background(), testKey)
	if res.OK || res.Message == "" {
		t.Errorf("expected a failed result with a message, got %+v", res)
	}
}

func TestCalendarService_Create_HappyPath(t *testing.T) {
	f := newServiceFixture()
	defer f.svc.Shutdown()

	status, err := f.svc.Create(context.Background(), testKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Phase != ports.PhaseLoaded || !status.LastSuccess || status.EventCount != 2 {
		t.Errorf("unexpected status: %+v", status)
	}
	if status.Title != "93, 12" {
		t.Errorf("unexpected title: %q", status.Title)
	}
	if status.NextPickup == nil || status.NextPickup.Date.Format(time.DateOnly) != "2024-01-31" {
		t.Errorf("unexpected next pickup: %+v", status.NextPickup)
	}
	if !f.repo.has(testKey) {
		t.Error("expected entry persisted")
	}

	jobs := f.scheduler.active(jobRefresh)
	if len(jobs) != 1 || jobs[0].interval != DefaultRefreshInterval {
		t.Fatalf("expected one daily refresh job, got %+v", jobs)
	}

	sensor, err := f.svc.Sensor(testKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sensor.State != "2024-01-31" {
		t.Errorf("expected sensor primed after setup, got %q", sensor.State)
	}
}

func TestCalendarService_Create_Duplicate(t *testing.T) {
	f := newServiceFixture()
	defer f.svc.Shutdown()

	if _, err := f.svc.Create(context.Background(), testKey); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	calls := f.client.callCount()

	_, err := f.svc.Create(context.Background(), testKey)
	if !errors.Is(err, domain.ErrAlreadyConfigured) {
		t.Fatalf("expected ErrAlreadyConfigured, got: %v", err)
	}
	if f.client.callCount() != calls {
		t.Error("expected the duplicate check to happen before any request")
	}
}

func TestCalendarService_Create_ValidationFailure(t *testing.T) {
	f := newServiceFixture()
	f.client.nextErr = errors.Join(domain.ErrRequest, errors.New("404"))

	_, err := f.svc.Create(context.Background(), testKey)
	if !errors.Is(err, domain.ErrInvalidCalendar) {
		t.Fatalf("expected ErrInvalidCalendar, got: %v", err)
	}
	if f.repo.has(testKey) {
		t.Error("expected no entry for an invalid calendar")
	}
	if len(f.svc.List()) != 0 {
		t.Error("expected nothing registered")
	}
}

func TestCalendarService_Create_InvalidKey(t *testing.T) {
	f := newServiceFixture()

	_, err := f.svc.Create(context.Background(), domain.CalendarKey{PlaceID: "93"})
	if !errors.Is(err, domain.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Setup retry
// ---------------------------------------------------------------------------

func TestCalendarService_Create_NotReadyThenRetry(t *testing.T) {
	f := newServiceFixture()
	defer f.svc.Shutdown()

	// Validation passes, the first refresh fails.
	f.client.set(nil, errors.Join(domain.ErrRequest, errors.New("timeout")))
	f.svc.newClient = func(domain.CalendarKey) ports.CalendarClient {
		return &validatingClient{stubClient: f.client}
	}

	status, err := f.svc.Create(context.Background(), testKey)
	if !errors.Is(err, domain.ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got: %v", err)
	}
	if status == nil || status.Phase != ports.PhaseSetupRetry || status.LastError == "" {
		t.Fatalf("unexpected status: %+v", status)
	}
	if !f.repo.has(testKey) {
		t.Error("expected the entry to be kept for retry")
	}
	if len(f.scheduler.active(jobRefresh)) != 0 {
		t.Error("expected no refresh schedule before setup succeeds")
	}
	if _, err := f.svc.Events(testKey); !errors.Is(err, domain.ErrNotReady) {
		t.Errorf("expected ErrNotReady for events, got: %v", err)
	}

	// Retry still failing.
	if errs := f.scheduler.fire(t, jobSetupRetry); len(errs) != 1 || errs[0] == nil {
		t.Fatalf("expected a failing retry, got %v", errs)
	}

	// API recovers.
	f.client.set([]domain.PickupEvent{pickup("2024-01-31", "Carta")}, nil)
	if errs := f.scheduler.fire(t, jobSetupRetry); len(errs) != 1 || errs[0] != nil {
		t.Fatalf("expected a successful retry, got %v", errs)
	}

	got, err := f.svc.Get(testKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Phase != ports.PhaseLoaded || !got.LastSuccess {
		t.Errorf("expected loaded after retry, got %+v", got)
	}
	if len(f.scheduler.active(jobSetupRetry)) != 0 {
		t.Error("expected the retry schedule to be cancelled")
	}
	if len(f.scheduler.active(jobRefresh)) != 1 {
		t.Error("expected the refresh schedule to start")
	}
}

func TestCalendarService_DeleteDuringRetryScheduling(t *testing.T) {
	f := newServiceFixture()
	defer f.svc.Shutdown()

	f.client.set(nil, errors.Join(domain.ErrRequest, errors.New("timeout")))
	f.svc.newClient = func(domain.CalendarKey) ports.CalendarClient {
		return &validatingClient{stubClient: f.client}
	}

	// The entry is already registered when the retry job is scheduled; remove
	// it before Every hands back the cancel func.
	var deleteErr error
	f.scheduler.onEvery = func(name string) {
		if name == jobSetupRetry {
			deleteErr = f.svc.Delete(context.Background(), testKey)
		}
	}

	if _, err := f.svc.Create(context.Background(), testKey); !errors.Is(err, domain.ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got: %v", err)
	}
	if deleteErr != nil {
		t.Fatalf("unexpected delete error: %v", deleteErr)
	}
	if n := len(f.scheduler.active(jobSetupRetry)); n != 0 {
		t.Errorf("expected the retry schedule to be cancelled, %d still active", n)
	}
	if _, err := f.svc.Get(testKey); !errors.Is(err, domain.ErrCalendarNotFound) {
		t.Errorf("expected ErrCalendarNotFound, got: %v", err)
	}
}

func TestCalendarService_DeleteDuringRefreshScheduling(t *testing.T) {
	f := newServiceFixture()
	defer f.svc.Shutdown()

	f.scheduler.onEvery = func(name string) {
		if name == jobRefresh {
			_ = f.svc.Delete(context.Background(), testKey)
		}
	}

	if _, err := f.svc.Create(context.Background(), testKey); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(f.scheduler.active(jobRefresh)); n != 0 {
		t.Errorf("expected the refresh schedule to be cancelled, %d still active", n)
	}
}

// validatingClient passes validation regardless of the fetch outcome.
type validatingClient struct {
	*stubClient
}

func (c *validatingClient) NextEvent(context.Context) (domain.PickupEvent, error) {
	return pickup("2024-01-31", "Carta"), nil
}

func TestCalendarService_Start_ActivatesPersistedEntries(t *testing.T) {
	entry := domain.NewCalendarEntry(testKey, mustDate("2024-01-01"))
	f := newServiceFixture(entry)
	defer f.svc.Shutdown()

	if err := f.svc.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	list := f.svc.List()
	if len(list) != 1 || list[0].Phase != ports.PhaseLoaded {
		t.Fatalf("unexpected calendars: %+v", list)
	}
}

func TestCalendarService_Start_ListError(t *testing.T) {
	f := newServiceFixture()
	f.repo.listErr = errors.New("mongo unavailable")

	if err := f.svc.Start(context.Background()); err == nil {
		t.Fatal("expected an error")
	}
}

// ---------------------------------------------------------------------------
// Scheduled and manual refresh
// ---------------------------------------------------------------------------

func TestCalendarService_ScheduledRefreshFailureIsContained(t *testing.T) {
	f := newServiceFixture()
	defer f.svc.Shutdown()
	if _, err := f.svc.Create(context.Background(), testKey); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f.client.set(nil, errors.Join(domain.ErrData, errors.New("bad json")))
	errs := f.scheduler.fire(t, jobRefresh)
	if len(errs) != 1 || !errors.Is(errs[0], domain.ErrUpdateFailed) {
		t.Fatalf("expected ErrUpdateFailed from the job, got %v", errs)
	}

	status, _ := f.svc.Get(testKey)
	if status.LastSuccess || status.EventCount != 2 || status.LastError == "" {
		t.Errorf("expected stale data with failure flag, got %+v", status)
	}
	sensor, _ := f.svc.Sensor(testKey)
	if sensor.Available {
		t.Error("expected sensor unavailable after failed refresh")
	}
}

func TestCalendarService_Refresh_Manual(t *testing.T) {
	f := newServiceFixture()
	defer f.svc.Shutdown()
	if _, err := f.svc.Create(context.Background(), testKey); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	calls := f.client.callCount()

	status, err := f.svc.Refresh(context.Background(), testKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !status.LastSuccess {
		t.Errorf("unexpected status: %+v", status)
	}
	if f.client.callCount() != calls+1 {
		t.Error("expected one more fetch")
	}
	if len(f.throttle.marked) != 1 {
		t.Error("expected the manual refresh to be recorded")
	}
}

func TestCalendarService_Refresh_Throttled(t *testing.T) {
	f := newServiceFixture()
	defer f.svc.Shutdown()
	if _, err := f.svc.Create(context.Background(), testKey); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	calls := f.client.callCount()
	f.throttle.throttled = true

	_, err := f.svc.Refresh(context.Background(), testKey)
	if !errors.Is(err, domain.ErrRefreshThrottled) {
		t.Fatalf("expected ErrRefreshThrottled, got: %v", err)
	}
	if f.client.callCount() != calls {
		t.Error("expected no fetch while throttled")
	}
}

func TestCalendarService_Refresh_ThrottleErrorRefreshesAnyway(t *testing.T) {
	f := newServiceFixture()
	defer f.svc.Shutdown()
	if _, err := f.svc.Create(context.Background(), testKey); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.throttle.checkErr = errors.New("redis timeout")

	if _, err := f.svc.Refresh(context.Background(), testKey); err != nil {
		t.Fatalf("expected refresh to proceed, got: %v", err)
	}
}

func TestCalendarService_Refresh_Unknown(t *testing.T) {
	f := newServiceFixture()

	if _, err := f.svc.Refresh(context.Background(), testKey); !errors.Is(err, domain.ErrCalendarNotFound) {
		t.Fatalf("expected ErrCalendarNotFound, got: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Teardown / import
// ---------------------------------------------------------------------------

func TestCalendarService_Delete(t *testing.T) {
	f := newServiceFixture()
	if _, err := f.svc.Create(context.Background(), testKey); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := f.svc.Delete(context.Background(), testKey); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.repo.has(testKey) {
		t.Error("expected entry deleted")
	}
	if len(f.scheduler.active(jobRefresh)) != 0 {
		t.Error("expected refresh schedule cancelled")
	}
	if _, err := f.svc.Get(testKey); !errors.Is(err, domain.ErrCalendarNotFound) {
		t.Errorf("expected ErrCalendarNotFound, got: %v", err)
	}

	if err := f.svc.Delete(context.Background(), testKey); !errors.Is(err, domain.ErrCalendarNotFound) {
		t.Errorf("expected ErrCalendarNotFound on second delete, got: %v", err)
	}
}

func TestCalendarService_Import_SkipsConfigured(t *testing.T) {
	f := newServiceFixture()
	defer f.svc.Shutdown()
	other := domain.CalendarKey{PlaceID: "93", CalendarID: "13"}

	if _, err := f.svc.Create(context.Background(), testKey); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f.svc.Import(context.Background(), []domain.CalendarKey{testKey, other})

	if len(f.svc.List()) != 2 {
		t.Errorf("expected 2 calendars, got %d", len(f.svc.List()))
	}
	if !f.repo.has(other) {
		t.Error("expected imported calendar persisted")
	}
}
