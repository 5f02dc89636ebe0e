package task

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingTask completes after a fixed number of retryable failures, letting
// tests observe the Driver's retry loop without a real backing service.
type countingTask struct {
	failuresLeft int32
	steps        int32
	state        State
}

func (t *countingTask) Name() string    { return "countingTask" }
func (t *countingTask) State() State    { return t.state }
func (t *countingTask) Completed() bool { return t.state == StateCompleted }

func (t *countingTask) Step(context.Context) error {
	atomic.AddInt32(&t.steps, 1)
	if atomic.AddInt32(&t.failuresLeft, -1) >= 0 {
		return newStateMissingError("not ready yet")
	}
	t.state = StateCompleted
	return nil
}

var _ Task = (*countingTask)(nil)

func TestDriverRetriesRetryableErrors(t *testing.T) {
	tsk := &countingTask{failuresLeft: 1}
	driver := NewDriver(4)

	require.NoError(t, driver.Run(context.Background(), tsk))
	assert.True(t, tsk.Completed())
	assert.EqualValues(t, 2, tsk.steps, "one retried failure plus the final successful step")
}

// walletLockedTask blocks mid-flight so concurrent Driver.Run calls touching
// the same wallet can be observed serializing.
type walletLockedTask struct {
	walletID uuid.UUID
	state    State
	proceed  <-chan struct{}
	entered  chan<- struct{}
}

func (t *walletLockedTask) Name() string           { return "walletLockedTask" }
func (t *walletLockedTask) State() State           { return t.state }
func (t *walletLockedTask) Completed() bool        { return t.state == StateCompleted }
func (t *walletLockedTask) walletIDs() []uuid.UUID { return []uuid.UUID{t.walletID} }

func (t *walletLockedTask) Step(context.Context) error {
	if t.entered != nil {
		close(t.entered)
		t.entered = nil
	}
	if t.proceed != nil {
		<-t.proceed
	}
	t.state = StateCompleted
	return nil
}

var _ Task = (*walletLockedTask)(nil)
var _ walletScoped = (*walletLockedTask)(nil)

func TestDriverSerializesSameWalletTasks(t *testing.T) {
	walletID := uuid.New()
	entered := make(chan struct{})
	proceed := make(chan struct{})

	first := &walletLockedTask{walletID: walletID, proceed: proceed, entered: entered}
	second := &walletLockedTask{walletID: walletID}

	driver := NewDriver(4)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		require.NoError(t, driver.Run(context.Background(), first))
	}()

	<-entered // first has taken the wallet lock and is blocked in Step

	secondDone := make(chan struct{})
	go func() {
		defer close(secondDone)
		require.NoError(t, driver.Run(context.Background(), second))
	}()

	select {
	case <-secondDone:
		t.Fatal("second task completed before first released the wallet lock")
	default:
	}

	close(proceed)
	wg.Wait()
	<-secondDone

	assert.True(t, first.Completed())
	assert.True(t, second.Completed())
}
