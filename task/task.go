// Package task implements the engine's task state machine: every mutating
// wallet operation (create, update, settle a match, pay or redeem a fee,
// reblind) runs as one of the typed tasks below, each stepping through the
// same Pending -> Proving -> Submitting -> FindingOpening ->
// UpdatingValidityProofs -> Completed shape. The Task interface
// (Step/State/Completed/Name) lets the driver run heterogeneous tasks off a
// single queue.
package task

import (
	"context"
	"fmt"
)

// State is a task's position in its state machine.
type State int

const (
	StatePending State = iota
	StateProving
	StateSubmitting
	StateFindingOpening
	StateUpdatingValidityProofs
	StateCompleted
)

// CommitPoint is the state at which a task's effects become visible to the
// rest of the system (the transaction is submitted): before this point a
// crashed task can simply be discarded and retried from scratch; at or after
// this point, re-running the task from its persisted state must continue
// rather than redo the submission.
const CommitPoint = StateSubmitting

func (s State) String() string {
	switch s {
	case StatePending:
		return "Pending"
	case StateProving:
		return "Proving"
	case StateSubmitting:
		return "Submitting"
	case StateFindingOpening:
		return "FindingOpening"
	case StateUpdatingValidityProofs:
		return "UpdatingValidityProofs"
	case StateCompleted:
		return "Completed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Task is a single step-driven unit of work over a wallet. The driver calls
// Step repeatedly until Completed reports true or Step returns a
// non-retryable error.
type Task interface {
	// Step advances the task by exactly one state transition.
	Step(ctx context.Context) error
	// State returns the task's current position in its state machine.
	State() State
	// Completed reports whether the task has finished all of its work.
	Completed() bool
	// Name identifies the task's kind for logging and metrics, e.g. "PayOfflineFeeTask".
	Name() string
}

// Error is implemented by every error a task step can return. Retryable
// reports whether the driver should re-run the failed step (true) or
// abandon the task outright (false).
type Error interface {
	error
	Retryable() bool
}

// IsRetryable reports whether err should be retried, per the taxonomy in
// the engine's error model: an error implementing Error is retried exactly
// when Retryable() returns true; any other error (one that did not come
// from a task step's own typed error set) is treated as non-retryable,
// since it signals a programming error rather than a known-transient
// condition.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if taskErr, ok := err.(Error); ok {
		return taskErr.Retryable()
	}
	return false
}
