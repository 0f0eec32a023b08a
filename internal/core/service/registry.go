package service

import (
	"sort"
	"sync"

	"github.com/idealservice/waste-pickup/internal/core/domain"
)

// calendarRuntime is everything the service holds in memory for one entry.
// A runtime without a coordinator is waiting for a setup retry.
type calendarRuntime struct {
	entry       domain.CalendarEntry
	coordinator *Coordinator
	sensor      *Sensor

	mu             sync.Mutex
	stopped        bool
	setupErr       error
	cancelSchedule func()
	cancelRetry    func()
	unsubscribe    func()
}

func (rt *calendarRuntime) loaded() bool { return rt.coordinator != nil }

func (rt *calendarRuntime) setupError() error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.setupErr
}

func (rt *calendarRuntime) setSetupError(err error) {
	rt.mu.Lock()
	rt.setupErr = err
	rt.mu.Unlock()
}

// hold stores cancel in slot. A runtime that was already stopped cancels it
// right away instead, so a schedule attached after teardown never outlives it.
func (rt *calendarRuntime) hold(slot *func(), cancel func()) {
	rt.mu.Lock()
	if rt.stopped {
		rt.mu.Unlock()
		cancel()
		return
	}
	*slot = cancel
	rt.mu.Unlock()
}

// stop releases the schedules, the observer and the coordinator.
func (rt *calendarRuntime) stop() {
	rt.mu.Lock()
	rt.stopped = true
	cancels := []func(){rt.cancelRetry, rt.cancelSchedule, rt.unsubscribe}
	rt.cancelRetry, rt.cancelSchedule, rt.unsubscribe = nil, nil, nil
	rt.mu.Unlock()

	for _, cancel := range cancels {
		if cancel != nil {
			cancel()
		}
	}
	if rt.coordinator != nil {
		rt.coordinator.Close()
	}
}

// Registry maps identifier pairs to their runtime. Entries are added on setup
// and removed on teardown.
type Registry struct {
	mu       sync.RWMutex
	runtimes map[domain.CalendarKey]*calendarRuntime
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{runtimes: make(map[domain.CalendarKey]*calendarRuntime)}
}

// Add registers rt. It reports false when the key is already present.
func (r *Registry) Add(rt *calendarRuntime) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.runtimes[rt.entry.Key]; exists {
		return false
	}
	r.runtimes[rt.entry.Key] = rt
	return true
}

// Swap replaces old with next, unless old was removed or replaced meanwhile.
func (r *Registry) Swap(old, next *calendarRuntime) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.runtimes[old.entry.Key] != old {
		return false
	}
	r.runtimes[old.entry.Key] = next
	return true
}

// Get retrieves the runtime of key.
func (r *Registry) Get(key domain.CalendarKey) (*calendarRuntime, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rt, ok := r.runtimes[key]
	return rt, ok
}

// Remove unregisters key and returns its runtime.
func (r *Registry) Remove(key domain.CalendarKey) (*calendarRuntime, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.runtimes[key]
	if ok {
		delete(r.runtimes, key)
	}
	return rt, ok
}

// List returns all runtimes ordered by creation time, then key.
func (r *Registry) List() []*calendarRuntime {
	r.mu.RLock()
	out := make([]*calendarRuntime, 0, len(r.runtimes))
	for _, rt := range r.runtimes {
		out = append(out, rt)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].entry, out[j].entry
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.Key.String() < b.Key.String()
	})
	return out
}
