package qbench

/*
Regulator is the common shape of the mechanisms that regulate traffic
toward the remote execution service. Each regulator monitors conditions
and decides whether an operation should be held back, the way a pressure
regulator keeps a physical system inside its operating envelope.

Implementations:
  - CircuitBreaker: stops submissions while the remote service is failing
  - RateLimiter: paces submissions to the service's queue
*/
type Regulator interface {
	// Observe lets the regulator monitor pool metrics and state.
	Observe(metrics *Metrics)

	// Limit reports whether the regulated action should be restricted
	// right now.
	Limit() bool

	// Renormalize attempts to return the regulator to normal operation,
	// releasing restrictions that have expired.
	Renormalize()
}
