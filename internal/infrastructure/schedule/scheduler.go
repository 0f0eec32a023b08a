// Package schedule runs periodic calendar jobs on top of the queue dispatcher.
package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/idealservice/waste-pickup/internal/core/domain"
	"github.com/idealservice/waste-pickup/internal/core/ports"
	"github.com/idealservice/waste-pickup/internal/infrastructure/queue"
)

// Enqueuer accepts jobs for execution. *queue.Dispatcher satisfies it.
type Enqueuer interface {
	Enqueue(ctx context.Context, job queue.Job) error
}

// Scheduler fires each registered task on its own ticker and hands the run to
// the dispatcher. Everything stops when the context given to New is done.
type Scheduler struct {
	ctx     context.Context
	enqueue Enqueuer
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// New returns a Scheduler bound to ctx.
func New(ctx context.Context, enqueue Enqueuer, log zerolog.Logger) *Scheduler {
	return &Scheduler{ctx: ctx, enqueue: enqueue, log: log}
}

var _ ports.Scheduler = (*Scheduler)(nil)

// Every enqueues task every interval until the returned cancel is called.
// A tick that fires after cancel never runs the task.
func (s *Scheduler) Every(key domain.CalendarKey, name string, interval time.Duration, task ports.Task) func() {
	done := make(chan struct{})
	var once sync.Once
	cancel := func() { once.Do(func() { close(done) }) }

	job := queue.Job{
		Key:  key,
		Name: name,
		Run: func(ctx context.Context) error {
			select {
			case <-done:
				return nil
			default:
			}
			return task(ctx)
		},
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				if err := s.enqueue.Enqueue(s.ctx, job); err != nil && s.ctx.Err() == nil {
					s.log.Warn().Err(err).
						Str("calendar", key.String()).
						Str("job", name).
						Msg("failed to enqueue scheduled job")
				}
			}
		}
	}()

	s.log.Debug().
		Str("calendar", key.String()).
		Str("job", name).
		Dur("interval", interval).
		Msg("job scheduled")
	return cancel
}

// Wait blocks until every ticker goroutine has exited.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
