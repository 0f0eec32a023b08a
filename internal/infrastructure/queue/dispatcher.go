package queue

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/idealservice/waste-pickup/internal/api/metrics"
	"github.com/idealservice/waste-pickup/internal/core/domain"
	"github.com/idealservice/waste-pickup/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
)

// Job is one unit of calendar work: a scheduled refresh or a setup retry.
type Job struct {
	Key  domain.CalendarKey
	Name string
	Run  ports.Task
}

// Dispatcher routes jobs to a fixed set of workers using consistent hashing on
// the calendar key, so jobs of the same calendar never run concurrently.
type Dispatcher struct {
	workers []chan Job
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan Job, numWorkers),
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan Job, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands job to the worker responsible for its calendar. It blocks
// while that worker's buffer is full, until ctx is done.
func (d *Dispatcher) Enqueue(ctx context.Context, job Job) error {
	idx := d.shardIndex(job.Key)
	select {
	case d.workers[idx] <- job:
		metrics.JobsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps a calendar key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key domain.CalendarKey) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key.String()))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan Job) {
	workerID := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			metrics.JobsQueueDepth.WithLabelValues(workerID).Set(float64(len(ch)))
			if err := d.run(ctx, job); err != nil {
				metrics.JobsFailedTotal.WithLabelValues(job.Name).Inc()
				d.log.Error().Err(err).
					Str("calendar", job.Key.String()).
					Str("job", job.Name).
					Int("worker_id", id).
					Msg("job failed")
			}
		}
	}
}

// run executes job, turning a panic into an error so one bad job cannot take
// the worker down.
func (d *Dispatcher) run(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return job.Run(ctx)
}
