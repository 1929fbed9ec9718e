// Package dispatch runs post-commit side effects (ledger writes, audit
// records) off the admission path. Jobs run one at a time in submission order
// so a start is always written before the end that closes it.
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Config controls queue sizing and per-job timeouts.
type Config struct {
	Size    int
	Timeout time.Duration
}

// DefaultConfig returns the default queue configuration.
func DefaultConfig() Config {
	return Config{
		Size:    256,
		Timeout: 5 * time.Second,
	}
}

// Job is one side effect.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Observer is told about jobs that failed or were dropped.
type Observer interface {
	JobFailed(name string)
	JobDropped(name string)
}

// Queue is a bounded FIFO of jobs drained by a single worker. Submit never
// blocks; when the buffer is full the job is dropped and logged.
type Queue struct {
	config   Config
	jobs     chan Job
	logger   *zap.Logger
	observer Observer

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.RWMutex
	running bool
	stopped bool
}

// New creates a queue. logger and observer may be nil.
func New(cfg Config, logger *zap.Logger, observer Observer) *Queue {
	if cfg.Size <= 0 {
		cfg.Size = DefaultConfig().Size
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{
		config:   cfg,
		jobs:     make(chan Job, cfg.Size),
		logger:   logger,
		observer: observer,
	}
}

// Start launches the worker.
func (q *Queue) Start() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return fmt.Errorf("dispatch queue already running")
	}
	if q.stopped {
		return fmt.Errorf("dispatch queue stopped")
	}
	q.running = true
	q.ctx, q.cancel = context.WithCancel(context.Background())

	q.wg.Add(1)
	go q.loop()

	q.logger.Info("Dispatch queue started", zap.Int("size", q.config.Size))
	return nil
}

// Stop stops accepting jobs, runs whatever is still buffered and waits for
// the worker to exit.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.stopped = true
		q.mu.Unlock()
		return
	}
	q.running = false
	q.stopped = true
	q.mu.Unlock()

	q.cancel()
	q.wg.Wait()
	q.logger.Info("Dispatch queue stopped")
}

// Submit enqueues job and reports whether it was accepted.
func (q *Queue) Submit(job Job) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.stopped {
		q.drop(job, "queue stopped")
		return false
	}

	select {
	case q.jobs <- job:
		return true
	default:
		q.drop(job, "queue full")
		return false
	}
}

// Len returns the number of buffered jobs.
func (q *Queue) Len() int {
	return len(q.jobs)
}

func (q *Queue) drop(job Job, reason string) {
	q.logger.Warn("Dropping side effect", zap.String("job", job.Name), zap.String("reason", reason))
	if q.observer != nil {
		q.observer.JobDropped(job.Name)
	}
}

func (q *Queue) loop() {
	defer q.wg.Done()

	for {
		select {
		case <-q.ctx.Done():
			q.drain()
			return
		case job := <-q.jobs:
			q.run(job)
		}
	}
}

// drain runs buffered jobs without waiting for new ones.
func (q *Queue) drain() {
	for {
		select {
		case job := <-q.jobs:
			q.run(job)
		default:
			return
		}
	}
}

func (q *Queue) run(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.config.Timeout)
	defer cancel()

	if err := job.Run(ctx); err != nil {
		q.logger.Warn("Side effect failed",
			zap.String("job", job.Name),
			zap.Error(err))
		if q.observer != nil {
			q.observer.JobFailed(job.Name)
		}
	}
}
