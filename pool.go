package qbench

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Q is the trial pool: a hybrid worker pool/message queue that runs
// independent scheme batches in parallel and correlates their results
// through the quantum space.
type Q struct {
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	workers    chan chan Job
	jobs       chan Job
	space      *QuantumSpace
	metrics    *Metrics
	workerMu   sync.Mutex
	workerList []*Worker
	config     *Config
}

// NewQ creates a new trial pool with a fixed worker count. Batches are
// few and known ahead of time, so the pool does not scale dynamically.
func NewQ(ctx context.Context, workers int, config *Config) *Q {
	ctx, cancel := context.WithCancel(ctx)
	q := &Q{
		ctx:        ctx,
		cancel:     cancel,
		workerList: make([]*Worker, 0),
		jobs:       make(chan Job, workers*10),
		workers:    make(chan chan Job, workers),
		space:      newQuantumSpace(),
		metrics:    NewMetrics(),
		config:     config,
	}

	for i := 0; i < workers; i++ {
		q.startWorker()
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.manage()
	}()

	return q
}

// manage moves queued jobs onto whichever worker frees up first. Once a
// job is enqueued it is never dropped: the batch is finite and known ahead
// of time, so a busy pool means waiting, not failing. Only enqueueing is
// bounded, in Schedule.
func (q *Q) manage() {
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			select {
			case <-q.ctx.Done():
				return
			case workerChan := <-q.workers:
				select {
				case workerChan <- job:
				case <-q.ctx.Done():
					return
				}
			}
		}
	}
}

// Schedule queues fn under id and returns the channel its result will
// arrive on.
func (q *Q) Schedule(id string, fn func() (any, error), opts ...JobOption) chan QuantumValue {
	ctx, cancel := context.WithTimeout(q.ctx, q.getSchedulingTimeout())
	defer cancel()

	job := Job{
		ID:        id,
		Fn:        fn,
		StartTime: time.Now(),
	}
	for _, opt := range opts {
		opt(&job)
	}

	select {
	case q.jobs <- job:
		return q.space.Await(id)
	case <-ctx.Done():
		ch := make(chan QuantumValue, 1)
		ch <- QuantumValue{
			Error:     fmt.Errorf("job scheduling timeout: %w", ctx.Err()),
			CreatedAt: time.Now(),
		}
		close(ch)

		q.metrics.mu.Lock()
		q.metrics.SchedulingFailures++
		q.metrics.mu.Unlock()

		return ch
	}
}

func (q *Q) startWorker() {
	worker := &Worker{
		pool: q,
		jobs: make(chan Job),
	}
	q.workerMu.Lock()
	q.workerList = append(q.workerList, worker)
	q.workerMu.Unlock()

	q.metrics.mu.Lock()
	q.metrics.WorkerCount++
	q.metrics.mu.Unlock()

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		worker.run(q.ctx)
	}()
}

func (q *Q) getSchedulingTimeout() time.Duration {
	if q.config != nil && q.config.SchedulingTimeout > 0 {
		return q.config.SchedulingTimeout
	}
	return 5 * time.Second
}

// Close cancels all workers and waits for them to drain.
func (q *Q) Close() {
	if q == nil {
		return
	}

	if q.cancel != nil {
		q.cancel()
	}
	q.wg.Wait()

	q.workerMu.Lock()
	for _, worker := range q.workerList {
		close(worker.jobs)
	}
	q.workerList = nil
	q.workerMu.Unlock()

	q.space.Close()
}
