package qbench

import "time"

// Config carries every knob a benchmark run needs. It is built once in main
// and passed down explicitly; nothing in this package keeps process-wide
// backend state.
type Config struct {
	// Shots is the sampling budget per execution.
	Shots int

	// Distribution selects the input pattern: linear, random or reversing.
	Distribution string

	// Seed drives input generation, compilation and local sampling.
	// Zero means derive from the wall clock, which keeps the random
	// distribution non-reproducible unless a seed is given explicitly.
	Seed int64

	// DataDir is where records, artifacts and the job ledger live.
	DataDir string

	// Workers bounds the trial pool. One scheme batch runs per job.
	Workers int

	// SchedulingTimeout bounds how long Schedule waits for pool capacity.
	SchedulingTimeout time.Duration

	// NoiseProbability is the per-bit readout flip chance on the noisy
	// simulation profile.
	NoiseProbability float64

	// RemoteQueueDelay models the queue wait of the remote execution
	// service: polls before submission+delay report not-ready.
	RemoteQueueDelay time.Duration

	// RemoteBurst and RemoteRefill shape the token bucket throttling
	// remote submissions.
	RemoteBurst  int
	RemoteRefill time.Duration
}

func NewConfig() *Config {
	return &Config{
		Shots:             50000,
		Distribution:      DistReversing,
		DataDir:           "experiment_data",
		Workers:           3,
		SchedulingTimeout: 10 * time.Second,
		NoiseProbability:  0.01,
		RemoteQueueDelay:  30 * time.Second,
		RemoteBurst:       5,
		RemoteRefill:      time.Second,
	}
}
