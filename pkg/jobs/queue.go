package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// maxRetryBackoff caps the exponential retry delay.
const maxRetryBackoff = time.Minute

// Job is a unit of background work, typically one export rendering request.
// Payload is opaque to the queue; handlers look jobs up by ID.
type Job struct {
	ID       string
	Type     string
	Payload  interface{}
	Attempt  int
	Enqueued time.Time
}

// Handler processes a single job. A returned error triggers a retry until the
// attempt budget is spent.
type Handler func(context.Context, Job) error

// QueueConfig tunes the worker pool.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// Queue is an in-process worker pool with bounded buffering and exponential
// retry backoff. Stop drains jobs already accepted before returning, so a
// shutdown does not silently drop exports that were acknowledged to callers.
type Queue struct {
	name    string
	handler Handler

	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
	workers    int

	tasks  chan Job
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	started  bool
	stopped  bool
	workerWG sync.WaitGroup
	retryWG  sync.WaitGroup
}

// NewQueue builds a queue that feeds jobs to handler. Zero config fields get
// conservative defaults sized for export rendering.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Queue{
		name:       name,
		handler:    handler,
		workers:    cfg.Workers,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
		tasks:      make(chan Job, cfg.BufferSize),
	}
}

// Start launches the worker pool. Subsequent calls are no-ops.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.workerWG.Add(1)
		go q.work()
	}
	q.started = true
	q.logger.Sugar().Infow("worker pool started", "queue", q.name, "workers", q.workers)
}

// Stop closes intake, lets workers drain the buffered jobs, then cancels any
// pending retries. Safe to call more than once.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started || q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	close(q.tasks)
	q.mu.Unlock()

	q.workerWG.Wait()
	q.cancel()
	q.retryWG.Wait()
	q.logger.Sugar().Infow("worker pool stopped", "queue", q.name)
}

// Enqueue hands a job to the pool. It fails when the queue is not running or
// the buffer stays full until the pool shuts down.
func (q *Queue) Enqueue(job Job) error {
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}

	// The mutex is held across the send so Stop cannot close the channel
	// between the state check and the send. Workers drain without taking the
	// mutex, so a full buffer still makes progress.
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.started || q.stopped {
		return fmt.Errorf("queue %s is not accepting jobs", q.name)
	}
	select {
	case q.tasks <- job:
		return nil
	case <-q.ctx.Done():
		return fmt.Errorf("queue %s shut down: %w", q.name, q.ctx.Err())
	}
}

func (q *Queue) work() {
	defer q.workerWG.Done()
	for job := range q.tasks {
		if err := q.handler(q.ctx, job); err != nil {
			q.retryLater(job, err)
		}
	}
}

func (q *Queue) retryLater(job Job, cause error) {
	job.Attempt++
	log := q.logger.Sugar()
	if job.Attempt > q.maxRetries {
		log.Errorw("job abandoned after retries",
			"queue", q.name, "job_id", job.ID, "type", job.Type, "attempts", job.Attempt, "error", cause)
		return
	}

	delay := q.retryDelay << (job.Attempt - 1)
	if delay > maxRetryBackoff {
		delay = maxRetryBackoff
	}
	log.Warnw("job failed, scheduling retry",
		"queue", q.name, "job_id", job.ID, "type", job.Type, "attempt", job.Attempt, "delay", delay, "error", cause)

	q.retryWG.Add(1)
	go func(j Job) {
		defer q.retryWG.Done()
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
		case <-timer.C:
			if err := q.Enqueue(j); err != nil {
				log.Errorw("retry dropped, queue unavailable", "queue", q.name, "job_id", j.ID, "error", err)
			}
		}
	}(job)
}
