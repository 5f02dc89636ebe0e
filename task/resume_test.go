package task

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renegade-fi/wallet-engine/config"
	"github.com/renegade-fi/wallet-engine/contractclient"
	"github.com/renegade-fi/wallet-engine/proofclient"
	"github.com/renegade-fi/wallet-engine/statestore"
	"github.com/renegade-fi/wallet-engine/wallet"
)

// countingContract wraps the fake contract client to count submissions, so a
// resumption test can prove the resumed task did not re-submit.
type countingContract struct {
	*contractclient.FakeClient
	updateWalletCalls int
}

func (c *countingContract) UpdateWallet(ctx context.Context, calldata []byte) (contractclient.TxReceipt, error) {
	c.updateWalletCalls++
	return c.FakeClient.UpdateWallet(ctx, calldata)
}

// TestTaskResumesAfterCrash simulates a crash between Submitting and
// FindingOpening: the task's persisted record is rehydrated in a fresh
// process (fresh task value, fresh collaborators), picks up at
// FindingOpening with the already-landed receipt, and completes without a
// second submission.
func TestTaskResumesAfterCrash(t *testing.T) {
	ctx := context.Background()
	store := statestore.NewInMemoryStore(false, config.FeeKeyPair{})

	w := newTestWallet(t)
	_, err := store.UpdateWallet(ctx, w)
	require.NoError(t, err)
	require.NoError(t, store.PutMerkleOpening(ctx, w.Id, wallet.MerkleOpening{}))

	proofs := &proofclient.FakeClient{}
	contract := &countingContract{FakeClient: contractclient.NewFakeClient()}
	queue := &fakeQueue{}

	tsk, err := NewUpdateWalletTask(ctx, w.Id, nil /* reblind only */, store, proofs, contract, queue)
	require.NoError(t, err)

	// Drive through proving and submission, checkpointing the way the
	// persistent driver does after each step.
	require.NoError(t, tsk.Step(ctx)) // Pending -> Proving -> Submitting
	require.NoError(t, tsk.Step(ctx)) // Submitting -> FindingOpening
	require.Equal(t, StateFindingOpening, tsk.State())
	require.NotNil(t, tsk.Receipt)
	require.Equal(t, 1, contract.updateWalletCalls)

	rec, err := snapshotTask(tsk, tsk.ID)
	require.NoError(t, err)
	require.NoError(t, store.PutTaskRecord(ctx, rec))

	// "Crash": rehydrate from the persisted record with fresh collaborators.
	freshContract := &countingContract{FakeClient: contractclient.NewFakeClient()}
	deps := Deps{
		Cfg:      testConfig(),
		Store:    store,
		Proofs:   proofs,
		Contract: freshContract,
		Network:  queue,
	}
	resumed, err := ResumeUnfinished(ctx, store, deps)
	require.NoError(t, err)
	require.Len(t, resumed, 1)

	resumedTask, ok := resumed[0].(*UpdateWalletTask)
	require.True(t, ok)
	assert.Equal(t, StateFindingOpening, resumedTask.State())
	require.NotNil(t, resumedTask.Receipt)
	assert.Equal(t, tsk.Receipt.TxHash, resumedTask.Receipt.TxHash)

	driver := NewPersistentDriver(1, store)
	require.NoError(t, driver.Run(ctx, resumedTask))
	assert.True(t, resumedTask.Completed())

	// The resumed task must not have re-submitted or re-proven.
	assert.Equal(t, 0, freshContract.updateWalletCalls)
	assert.Len(t, proofs.Jobs, 1)

	// The wallet visible in state is the reblinded one the original task derived.
	stored, err := store.GetWallet(ctx, w.Id)
	require.NoError(t, err)
	assert.True(t, stored.Blinder.Equal(&tsk.NewWallet.Blinder))

	// Completion clears the persisted record.
	records, err := store.ListTaskRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

// TestResumeUnfinishedDiscardsPreCommitTasks checks the cancellation model:
// a record checkpointed before the commit point is deleted on restart, not
// resumed, since its task had no on-chain effect.
func TestResumeUnfinishedDiscardsPreCommitTasks(t *testing.T) {
	ctx := context.Background()
	store := statestore.NewInMemoryStore(false, config.FeeKeyPair{})

	w := newTestWallet(t)
	_, err := store.UpdateWallet(ctx, w)
	require.NoError(t, err)
	require.NoError(t, store.PutMerkleOpening(ctx, w.Id, wallet.MerkleOpening{}))

	proofs := &proofclient.FakeClient{}
	contract := contractclient.NewFakeClient()
	queue := &fakeQueue{}

	tsk, err := NewUpdateWalletTask(ctx, w.Id, nil, store, proofs, contract, queue)
	require.NoError(t, err)

	rec, err := snapshotTask(tsk, tsk.ID)
	require.NoError(t, err)
	require.NoError(t, store.PutTaskRecord(ctx, rec))

	deps := Deps{Store: store, Proofs: proofs, Contract: contract, Network: queue}
	resumed, err := ResumeUnfinished(ctx, store, deps)
	require.NoError(t, err)
	assert.Empty(t, resumed)

	records, err := store.ListTaskRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, records, "pre-commit records are discarded on restart")
}
