package qbench

import "time"

// Job represents one unit of pool work, typically a full scheme batch.
type Job struct {
	ID          string
	Fn          func() (any, error)
	RetryPolicy *RetryPolicy
	TTL         time.Duration
	Attempt     int
	LastError   error
	StartTime   time.Time
}

// JobOption is a function type for configuring jobs.
type JobOption func(*Job)

// WithTTL configures how long the job's result is retained in the space.
func WithTTL(ttl time.Duration) JobOption {
	return func(j *Job) {
		j.TTL = ttl
	}
}
