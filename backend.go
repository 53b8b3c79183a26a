package qbench

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"
)

// SyncBackend executes a compiled circuit and returns the frequency counts
// in the same call.
type SyncBackend interface {
	Name() string
	Run(cc *CompiledCircuit, shots int) (FrequencyCounts, error)
}

// AsyncBackend is the two-phase execution surface: Submit hands the circuit
// off and returns an opaque handle, Poll later exchanges the handle for
// counts. Poll returns ErrNotReady while the job is still queued. Handles
// stay valid across process restarts.
type AsyncBackend interface {
	Name() string
	Submit(cc *CompiledCircuit, shots int) (string, error)
	Poll(handle string) (FrequencyCounts, error)
}

// LocalBackend samples circuits in-process. The noise probability selects
// between the pure and noisy profiles; two instances with different noise
// settings cover both sides of every trial.
type LocalBackend struct {
	name    string
	sampler *Sampler
}

func NewLocalBackend(name string, seed int64, noise float64) *LocalBackend {
	return &LocalBackend{
		name:    name,
		sampler: NewSampler(seed, noise),
	}
}

func (b *LocalBackend) Name() string { return b.name }

func (b *LocalBackend) Run(cc *CompiledCircuit, shots int) (FrequencyCounts, error) {
	counts, err := b.sampler.Run(cc, shots)
	if err != nil {
		return nil, &ExecutionError{Backend: b.name, Err: err}
	}
	if total := counts.Total(); total < shots {
		log.Warn().
			Str("backend", b.name).
			Int("requested", shots).
			Int("observed", total).
			Msg("shots dropped during execution")
	}
	return counts, nil
}

// remoteJobSpec is the durable form of a submitted job. Everything needed
// to produce counts later, in any process, is in the file.
type remoteJobSpec struct {
	Width   int       `msgpack:"width"`
	Gates   []Gate    `msgpack:"gates"`
	Shots   int       `msgpack:"shots"`
	Noise   float64   `msgpack:"noise"`
	ReadyAt time.Time `msgpack:"ready_at"`
}

/*
RemoteBackend stands in for a queued hardware execution service. Submit
persists the job spec under a fresh handle and returns immediately; the
result only becomes available after the configured queue delay, modelling
the wait for a device slot. Polls before that point return ErrNotReady.

Submissions pass through a rate limiter and a circuit breaker, and are
retried with exponential backoff, because a real submission endpoint is
the flakiest part of the pipeline.
*/
type RemoteBackend struct {
	name    string
	dir     string
	delay   time.Duration
	noise   float64
	limiter *RateLimiter
	breaker *CircuitBreaker
	retry   *RetryPolicy
	refill  time.Duration
}

func NewRemoteBackend(cfg *Config) *RemoteBackend {
	return &RemoteBackend{
		name:    "remote",
		dir:     filepath.Join(cfg.DataDir, "jobs"),
		delay:   cfg.RemoteQueueDelay,
		noise:   cfg.NoiseProbability,
		limiter: NewRateLimiter(cfg.RemoteBurst, cfg.RemoteRefill),
		breaker: NewCircuitBreaker(3, 10*time.Second, 2),
		retry: &RetryPolicy{
			MaxAttempts: 3,
			Strategy:    &ExponentialBackoff{Initial: 100 * time.Millisecond},
		},
		refill: cfg.RemoteRefill,
	}
}

func (b *RemoteBackend) Name() string { return b.name }

// Submit persists the job and returns its handle. The caller must record
// the handle durably before relying on it; the backend itself only keeps
// the job file.
func (b *RemoteBackend) Submit(cc *CompiledCircuit, shots int) (string, error) {
	if !b.breaker.Allow() {
		return "", &ExecutionError{Backend: b.name, Err: fmt.Errorf("circuit breaker open")}
	}

	for b.limiter.Limit() {
		time.Sleep(b.refill)
	}

	handle := uuid.NewString()
	spec := remoteJobSpec{
		Width:   cc.Width(),
		Gates:   cc.Gates(),
		Shots:   shots,
		Noise:   b.noise,
		ReadyAt: time.Now().Add(b.delay),
	}

	var lastErr error
	for attempt := 0; attempt < b.retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(b.retry.Strategy.NextDelay(attempt))
		}
		lastErr = b.writeSpec(handle, spec)
		if lastErr == nil {
			b.breaker.RecordSuccess()
			log.Info().
				Str("backend", b.name).
				Str("handle", handle).
				Time("ready_at", spec.ReadyAt).
				Msg("job submitted")
			return handle, nil
		}
	}

	b.breaker.RecordFailure()
	return "", &ExecutionError{Backend: b.name, Err: lastErr}
}

func (b *RemoteBackend) writeSpec(handle string, spec remoteJobSpec) error {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return fmt.Errorf("create job dir: %w", err)
	}
	data, err := msgpack.Marshal(&spec)
	if err != nil {
		return fmt.Errorf("marshal job spec: %w", err)
	}
	return os.WriteFile(b.jobPath(handle), data, 0o644)
}

// Poll exchanges a handle for counts. Before the queue delay elapses it
// returns ErrNotReady; a missing or unreadable job file is a permanent
// failure for that handle.
func (b *RemoteBackend) Poll(handle string) (FrequencyCounts, error) {
	data, err := os.ReadFile(b.jobPath(handle))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ExecutionError{Backend: b.name, Err: fmt.Errorf("unknown handle %s", handle)}
		}
		return nil, &ExecutionError{Backend: b.name, Err: err}
	}

	var spec remoteJobSpec
	if err := msgpack.Unmarshal(data, &spec); err != nil {
		return nil, &ExecutionError{Backend: b.name, Err: fmt.Errorf("corrupt job spec: %w", err)}
	}

	if time.Now().Before(spec.ReadyAt) {
		return nil, fmt.Errorf("handle %s: %w", handle, ErrNotReady)
	}

	circuit := NewCircuitFromGates(spec.Width, spec.Gates)
	compiled, err := NewCompiler(0).Compile(circuit, ProfileHardware)
	if err != nil {
		return nil, &ExecutionError{Backend: b.name, Err: err}
	}

	sampler := NewSampler(0, spec.Noise)
	counts, err := sampler.Run(compiled, spec.Shots)
	if err != nil {
		return nil, &ExecutionError{Backend: b.name, Err: err}
	}
	return counts, nil
}

func (b *RemoteBackend) jobPath(handle string) string {
	return filepath.Join(b.dir, handle+".mpk")
}
