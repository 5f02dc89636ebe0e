package task

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/renegade-fi/wallet-engine/statestore"
)

// retryBackoff is the delay between retryable step failures. Fixed rather
// than exponential: every retryable error in this package (a dropped proof
// job, a failed submission, missing state) is expected to clear within a
// few seconds, not the minutes exponential backoff is built for.
const retryBackoff = 2 * time.Second

// walletScoped is implemented by every task whose steps mutate a single
// wallet, letting the Driver serialize conflicting tasks without each task
// type having to know about locking itself.
type walletScoped interface {
	walletIDs() []uuid.UUID
}

func (t *PayOfflineFeeTask) walletIDs() []uuid.UUID              { return []uuid.UUID{t.WalletID} }
func (t *RedeemFeeTask) walletIDs() []uuid.UUID                  { return []uuid.UUID{t.WalletID} }
func (t *NewWalletTask) walletIDs() []uuid.UUID                  { return []uuid.UUID{t.Wallet.Id} }
func (t *UpdateWalletTask) walletIDs() []uuid.UUID               { return []uuid.UUID{t.WalletID} }
func (t *SettleMatchTask) walletIDs() []uuid.UUID                { return []uuid.UUID{t.WalletID} }
func (t *SettleAtomicMatchTask) walletIDs() []uuid.UUID          { return []uuid.UUID{t.WalletID} }
func (t *SettleMalleableAtomicMatchTask) walletIDs() []uuid.UUID { return []uuid.UUID{t.WalletID} }
func (t *PayRelayerFeeTask) walletIDs() []uuid.UUID              { return []uuid.UUID{t.SenderID, t.RecipientID} }

// followOnTask is implemented by tasks that may enqueue a dependent task once
// they complete (currently only PayOfflineFeeTask, whose offline note the
// recipient relayer may redeem automatically).
type followOnTask interface {
	FollowOnTask() Task
}

var _ followOnTask = (*PayOfflineFeeTask)(nil)

// Driver runs a bounded number of tasks concurrently, enforcing the
// concurrency model's one constraint beyond raw parallelism: at most one
// task touching a given wallet may be in Submitting-or-later state at a
// time, so that two tasks can never race to land conflicting nullify-and-
// insert transactions against the same wallet. Independent wallets' tasks
// run fully in parallel.
type Driver struct {
	sem *semaphore.Weighted

	// store, when non-nil, receives a task record checkpoint after every
	// successful step so that a crash mid-task can be resumed via
	// ResumeUnfinished rather than replayed from scratch.
	store statestore.Store

	mu          sync.Mutex
	walletLocks map[uuid.UUID]*sync.Mutex
}

// NewDriver constructs a Driver that runs at most maxConcurrent tasks at once.
func NewDriver(maxConcurrent int64) *Driver {
	return &Driver{
		sem:         semaphore.NewWeighted(maxConcurrent),
		walletLocks: make(map[uuid.UUID]*sync.Mutex),
	}
}

// NewPersistentDriver constructs a Driver that checkpoints every task's state
// to store after each step, enabling crash-restart resumption.
func NewPersistentDriver(maxConcurrent int64, store statestore.Store) *Driver {
	d := NewDriver(maxConcurrent)
	d.store = store
	return d
}

func (d *Driver) lockFor(id uuid.UUID) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()

	lock, ok := d.walletLocks[id]
	if !ok {
		lock = &sync.Mutex{}
		d.walletLocks[id] = lock
	}
	return lock
}

// Run drives t to completion, stepping it until Completed() or a
// non-retryable error, retrying retryable errors. It acquires the driver's
// concurrency semaphore for its whole lifetime and, for wallet-scoped tasks,
// the lock of every wallet it touches, held across every step so no other
// task can submit a conflicting update concurrently.
func (d *Driver) Run(ctx context.Context, t Task) error {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer d.sem.Release(1)

	if scoped, ok := t.(walletScoped); ok {
		locks := make([]*sync.Mutex, 0, len(scoped.walletIDs()))
		for _, id := range scoped.walletIDs() {
			lock := d.lockFor(id)
			lock.Lock()
			locks = append(locks, lock)
		}
		defer func() {
			for _, lock := range locks {
				lock.Unlock()
			}
		}()
	}

	if err := d.runSteps(ctx, t); err != nil {
		return err
	}

	if withFollowOn, ok := t.(followOnTask); ok {
		if next := withFollowOn.FollowOnTask(); next != nil {
			return d.Run(ctx, next)
		}
	}
	return nil
}

// runSteps steps t until it completes or fails with a non-retryable error,
// waiting retryBackoff between attempts after a retryable error.
func (d *Driver) runSteps(ctx context.Context, t Task) error {
	for !t.Completed() {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := t.Step(ctx)
		if err == nil {
			d.checkpoint(ctx, t)
			continue
		}
		if IsRetryable(err) {
			log.Printf("task %s: retrying after retryable error in state %v: %v", t.Name(), t.State(), err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryBackoff):
			}
			continue
		}
		return fmt.Errorf("task %s failed in state %v: %w", t.Name(), t.State(), err)
	}
	return nil
}

// checkpoint persists t's position after a successful step, and clears the
// record once the task completes. Checkpoint failures are logged rather than
// surfaced: the task itself succeeded, and losing a checkpoint only degrades
// a future crash-restart back to the record's previous state.
func (d *Driver) checkpoint(ctx context.Context, t Task) {
	if d.store == nil {
		return
	}
	ident, ok := t.(identifiable)
	if !ok {
		return
	}

	if t.Completed() {
		if err := d.store.DeleteTaskRecord(ctx, ident.TaskID()); err != nil {
			log.Printf("task %s: failed to delete completed task record: %v", t.Name(), err)
		}
		return
	}

	rec, err := snapshotTask(t, ident.TaskID())
	if err != nil {
		log.Printf("task %s: failed to snapshot task state: %v", t.Name(), err)
		return
	}
	if err := d.store.PutTaskRecord(ctx, rec); err != nil {
		log.Printf("task %s: failed to persist task record: %v", t.Name(), err)
	}
}
