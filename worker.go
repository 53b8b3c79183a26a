package qbench

import (
	"context"
	"fmt"
	"time"
)

// Worker processes pool jobs one at a time.
type Worker struct {
	pool *Q
	jobs chan Job
}

func (w *Worker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case w.pool.workers <- w.jobs:
			select {
			case <-ctx.Done():
				return
			case job, ok := <-w.jobs:
				if !ok {
					return
				}
				result, err := w.processJob(job)
				w.pool.space.Store(job.ID, result, err, job.TTL)
			}
		}
	}
}

func (w *Worker) processJob(job Job) (any, error) {
	result, err := w.executeWithRetries(job)
	w.pool.metrics.recordJobExecution(job.StartTime, err == nil)
	return result, err
}

func (w *Worker) executeWithRetries(job Job) (any, error) {
	if job.RetryPolicy == nil {
		return job.Fn()
	}

	for job.Attempt = 0; job.Attempt < job.RetryPolicy.MaxAttempts; job.Attempt++ {
		if job.Attempt > 0 {
			delay := job.RetryPolicy.Strategy.NextDelay(job.Attempt)
			time.Sleep(delay)
		}

		result, err := job.Fn()
		if err == nil {
			return result, nil
		}

		job.LastError = err
		if job.RetryPolicy.Filter != nil && !job.RetryPolicy.Filter(err) {
			break
		}
	}
	return nil, fmt.Errorf("all retries failed for job %s: %w", job.ID, job.LastError)
}
