package qbench

import (
	"sync"
	"time"
)

// Metrics tracks the health of the trial pool: how many workers exist,
// how deep the queue is and how long scheme batches take.
type Metrics struct {
	mu                 sync.RWMutex
	WorkerCount        int
	JobQueueSize       int
	ActiveWorkers      int
	SchedulingFailures int64
	TotalJobTime       time.Duration
	JobCount           int64
	FailedJobs         int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

// recordJobExecution accounts one finished pool job.
func (m *Metrics) recordJobExecution(startTime time.Time, success bool) {
	duration := time.Since(startTime)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalJobTime += duration
	m.JobCount++
	if !success {
		m.FailedJobs++
	}
}

// ExportMetrics snapshots the pool metrics for logging or inspection.
func (m *Metrics) ExportMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	avg := time.Duration(0)
	if m.JobCount > 0 {
		avg = m.TotalJobTime / time.Duration(m.JobCount)
	}
	return map[string]interface{}{
		"worker_count":        m.WorkerCount,
		"queue_size":          m.JobQueueSize,
		"job_count":           m.JobCount,
		"failed_jobs":         m.FailedJobs,
		"avg_job_time_ms":     avg.Milliseconds(),
		"scheduling_failures": m.SchedulingFailures,
	}
}
