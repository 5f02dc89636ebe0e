package task

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(newProofGenerationError("timed out")))
	assert.True(t, IsRetryable(newStateMissingError("no wallet")))
	assert.False(t, IsRetryable(newInvalidFeeAmountError("mismatch")))
	assert.False(t, IsRetryable(errors.New("plain error, not part of the task taxonomy")))
	assert.False(t, IsRetryable(nil))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "Pending", StatePending.String())
	assert.Equal(t, "Completed", StateCompleted.String())
	assert.Equal(t, "State(99)", State(99).String())
}
