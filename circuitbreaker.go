package qbench

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// CircuitState tracks the operational mode of the breaker guarding the
// remote execution service.
type CircuitState int

const (
	CircuitClosed   CircuitState = iota // submissions flow normally
	CircuitOpen                         // service unhealthy, submissions rejected
	CircuitHalfOpen                     // probing whether the service recovered
)

/*
CircuitBreaker protects the remote execution service from submission
storms while it is failing. Remote capacity is queued and paid for, so
hammering a failing endpoint both wastes budget and delays recovery.

States:
  - Closed: every submission is allowed.
  - Open: the failure threshold was exceeded; submissions are rejected
    until the reset timeout elapses.
  - Half-Open: a bounded number of probe submissions test recovery.
*/
type CircuitBreaker struct {
	mu               sync.RWMutex
	maxFailures      int
	resetTimeout     time.Duration
	halfOpenMax      int
	failureCount     int
	state            CircuitState
	openTime         time.Time
	halfOpenAttempts int
}

func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration, halfOpenMax int) *CircuitBreaker {
	return &CircuitBreaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		halfOpenMax:  halfOpenMax,
		state:        CircuitClosed,
	}
}

// Observe implements the Regulator interface. The breaker keys off its own
// failure bookkeeping, not pool metrics, so this is a no-op hook.
func (cb *CircuitBreaker) Observe(metrics *Metrics) {}

// Limit implements the Regulator interface.
func (cb *CircuitBreaker) Limit() bool {
	return !cb.Allow()
}

// Renormalize moves an expired open circuit into half-open probing.
func (cb *CircuitBreaker) Renormalize() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitOpen && time.Since(cb.openTime) > cb.resetTimeout {
		cb.state = CircuitHalfOpen
		cb.halfOpenAttempts = 0
		log.Debug().Msg("remote circuit breaker half-open")
	}
}

// RecordFailure counts a failed submission and opens the circuit at the
// threshold. A failure during half-open probing reopens immediately.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++
	if cb.failureCount >= cb.maxFailures {
		switch cb.state {
		case CircuitHalfOpen:
			cb.state = CircuitOpen
			cb.openTime = time.Now()
			log.Warn().Msg("remote circuit breaker reopened from half-open")
		case CircuitClosed:
			cb.state = CircuitOpen
			cb.openTime = time.Now()
			log.Warn().Int("failures", cb.failureCount).Msg("remote circuit breaker opened")
		}
	}
}

// RecordSuccess resets the failure count and, after enough half-open
// probes succeed, closes the circuit.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitHalfOpen {
		cb.halfOpenAttempts++
		if cb.halfOpenAttempts >= cb.halfOpenMax {
			cb.state = CircuitClosed
			cb.failureCount = 0
			cb.halfOpenAttempts = 0
			log.Info().Msg("remote circuit breaker closed")
		}
	} else if cb.state == CircuitClosed {
		cb.failureCount = 0
	}
}

// Allow reports whether a submission may proceed right now.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return true
	case CircuitOpen:
		if time.Since(cb.openTime) > cb.resetTimeout {
			cb.state = CircuitHalfOpen
			cb.halfOpenAttempts = 0
			return true
		}
		return false
	case CircuitHalfOpen:
		return cb.halfOpenAttempts < cb.halfOpenMax
	default:
		return false
	}
}
