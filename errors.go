package qbench

import (
	"errors"
	"fmt"
)

// Sentinel errors for the pipeline. Invalid-input errors abort a single
// trial; ErrDimensionMismatch indicates a wiring bug between stages and is
// never recovered; ErrNotReady is a normal transient state on the async
// path; ErrLedgerCorrupt is fatal for a resolving invocation.
var (
	ErrInvalidSize         = errors.New("input size must be a positive integer")
	ErrInvalidDistribution = errors.New("unknown input distribution")
	ErrDimensionMismatch   = errors.New("vector dimension mismatch")
	ErrNotReady            = errors.New("job result not ready")
	ErrLedgerCorrupt       = errors.New("job ledger corrupt")
)

// CompileError wraps a failure reported by the compiler for one profile.
type CompileError struct {
	Profile Profile
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile failed for profile %q: %v", e.Profile, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// ExecutionError wraps a backend failure, sync or async.
type ExecutionError struct {
	Backend string
	Err     error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution failed on backend %q: %v", e.Backend, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }
