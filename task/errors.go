package task

import "fmt"

// ProofGenerationError wraps a failure returned by the proof generation
// service (a timed-out or failed ProofJob). It is retryable: a dropped proof
// job is usually a capacity or transient RPC problem, not evidence the
// underlying statement is unprovable.
type ProofGenerationError struct {
	msg string
}

func (e *ProofGenerationError) Error() string { return e.msg }
func (e *ProofGenerationError) Retryable() bool { return true }

func newProofGenerationError(format string, args ...interface{}) error {
	return &ProofGenerationError{msg: fmt.Sprintf(format, args...)}
}

// UpdateValidityProofsError wraps a failure refreshing the validity proofs of
// a wallet's open orders after a state-changing settlement. It is retryable:
// the wallet's new state is already durable, only the dependent proof refresh
// failed.
type UpdateValidityProofsError struct {
	msg string
}

func (e *UpdateValidityProofsError) Error() string { return e.msg }
func (e *UpdateValidityProofsError) Retryable() bool { return true }

func newUpdateValidityProofsError(format string, args ...interface{}) error {
	return &UpdateValidityProofsError{msg: fmt.Sprintf(format, args...)}
}

// InvalidFeeAmountError reports that a fee-payment task's descriptor names an
// amount that does not match the balance's currently accrued fee. It is
// fatal: the task was constructed against stale state and must be
// re-derived from scratch, not retried as-is.
type InvalidFeeAmountError struct {
	msg string
}

func (e *InvalidFeeAmountError) Error() string { return e.msg }
func (e *InvalidFeeAmountError) Retryable() bool { return false }

func newInvalidFeeAmountError(format string, args ...interface{}) error {
	return &InvalidFeeAmountError{msg: fmt.Sprintf(format, args...)}
}

// StateMissingError reports that a task's constructor could not find the
// wallet, balance, or order it needs in the state store. It is retryable:
// the expected state may simply not have propagated yet.
type StateMissingError struct {
	msg string
}

func (e *StateMissingError) Error() string { return e.msg }
func (e *StateMissingError) Retryable() bool { return true }

func newStateMissingError(format string, args ...interface{}) error {
	return &StateMissingError{msg: fmt.Sprintf(format, args...)}
}

var (
	_ Error = (*ProofGenerationError)(nil)
	_ Error = (*UpdateValidityProofsError)(nil)
	_ Error = (*InvalidFeeAmountError)(nil)
	_ Error = (*StateMissingError)(nil)
)
