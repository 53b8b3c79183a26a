package qbench

import (
	"sync"
	"time"
)

/*
RateLimiter throttles remote job submissions with a token bucket. The
remote execution service meters queue slots, so submissions happen at a
sustainable rate with a small burst allowance instead of flooding the
queue at batch start.

Key features:
  - Smooth rate limiting with burst capacity
  - Configurable token replenishment rate
  - Thread-safe operation
*/
type RateLimiter struct {
	tokens     int           // Current number of available tokens
	maxTokens  int           // Maximum token capacity
	refillRate time.Duration // Time between token replenishments
	lastRefill time.Time     // Last time tokens were added
	mu         sync.Mutex
}

// NewRateLimiter creates a rate limit regulator with the given burst
// capacity and refill interval.
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now().Add(-refillRate),
	}
}

// Observe implements the Regulator interface. Submission throttling is
// time-based only, so pool metrics are not consulted.
func (rl *RateLimiter) Observe(metrics *Metrics) {}

// Limit consumes a token if one is available. It returns true when the
// submission should be held back.
func (rl *RateLimiter) Limit() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()
	if rl.tokens > 0 {
		rl.tokens--
		return false
	}
	return true
}

// Renormalize triggers a refill, potentially releasing held submissions.
func (rl *RateLimiter) Renormalize() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill()
}

// refill adds tokens proportional to the time elapsed since the last
// refill, capped at the bucket size. Caller holds the mutex.
func (rl *RateLimiter) refill() {
	elapsedNs := time.Since(rl.lastRefill).Nanoseconds()
	refillRateNs := rl.refillRate.Nanoseconds()

	tokensToAdd := (elapsedNs + refillRateNs/2) / refillRateNs
	if tokensToAdd > 0 {
		rl.tokens += int(tokensToAdd)
		if rl.tokens > rl.maxTokens {
			rl.tokens = rl.maxTokens
		}
		rl.lastRefill = rl.lastRefill.Add(time.Duration(tokensToAdd) * rl.refillRate)
	}
}
