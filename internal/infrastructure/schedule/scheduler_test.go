package schedule

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/idealservice/waste-pickup/internal/core/domain"
	"github.com/idealservice/waste-pickup/internal/infrastructure/queue"
)

// inlineEnqueuer runs jobs synchronously on the ticker goroutine.
type inlineEnqueuer struct {
	mu    sync.Mutex
	names []string
}

func (e *inlineEnqueuer) Enqueue(ctx context.Context, job queue.Job) error {
	e.mu.Lock()
	e.names = append(e.names, job.Name)
	e.mu.Unlock()
	return job.Run(ctx)
}

var testKey = domain.CalendarKey{PlaceID: "93", CalendarID: "12"}

func TestScheduler_Every_RunsRepeatedly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New(ctx, &inlineEnqueuer{}, zerolog.Nop())

	var runs atomic.Int32
	stop := s.Every(testKey, "refresh", 5*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	})
	defer stop()

	deadline := time.After(2 * time.Second)
	for runs.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 3 runs, got %d", runs.Load())
		case <-time.After(time.Millisecond):
		}
	}
}

func TestScheduler_Cancel_StopsTicker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New(ctx, &inlineEnqueuer{}, zerolog.Nop())

	var runs atomic.Int32
	handoff := make(chan func(), 1)
	stop := s.Every(testKey, "setup_retry", 5*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		(<-handoff)() // cancelling from inside the task must not deadlock
		return nil
	})
	handoff <- stop

	waitFor(t, func() bool { return runs.Load() >= 1 })
	stop() // idempotent
	s.Wait()

	if n := runs.Load(); n != 1 {
		t.Errorf("expected exactly one run, got %d", n)
	}
}

func TestScheduler_ContextCancelStopsAll(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New(ctx, &inlineEnqueuer{}, zerolog.Nop())

	s.Every(testKey, "refresh", time.Hour, func(context.Context) error { return nil })
	s.Every(domain.CalendarKey{PlaceID: "1", CalendarID: "2"}, "refresh", time.Hour, func(context.Context) error { return nil })

	cancel()

	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler goroutines did not exit")
	}
}

func TestScheduler_WithDispatcher(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := queue.NewDispatcher(2, zerolog.Nop())
	d.Start(ctx)
	s := New(ctx, d, zerolog.Nop())

	ran := make(chan struct{}, 1)
	stop := s.Every(testKey, "refresh", 5*time.Millisecond, func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})
	defer stop()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("task never ran through the dispatcher")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}
