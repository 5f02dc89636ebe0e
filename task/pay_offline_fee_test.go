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

// TestNewPayOfflineFeeTaskMismatchedAmount covers the stale-descriptor case: a
// caller names an accrued fee amount that no longer matches the balance in
// the store. Construction must fail with a non-retryable InvalidFeeAmount
// before any proof job is ever enqueued.
func TestNewPayOfflineFeeTaskMismatchedAmount(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	store := statestore.NewInMemoryStore(false, config.FeeKeyPair{})

	w := newTestWallet(t)
	mint := testMint(1)
	balance, err := w.GetOrCreateBalance(mint)
	require.NoError(t, err)
	balance.RelayerFeeBalance = wallet.NewAmountFromUint64(10).ToScalar()
	_, err = store.UpdateWallet(ctx, w)
	require.NoError(t, err)

	proofs := &proofclient.FakeClient{}
	contract := contractclient.NewFakeClient()
	queue := &fakeQueue{}

	_, err = NewPayOfflineFeeTask(
		ctx, w.Id, mint, false /* isProtocolFee */, wallet.NewAmountFromUint64(999),
		cfg, store, proofs, contract, queue,
	)

	require.Error(t, err)
	taskErr, ok := err.(Error)
	require.True(t, ok, "expected a task.Error, got %T", err)
	assert.False(t, taskErr.Retryable())
	assert.Empty(t, proofs.Jobs, "construction must fail before any proof job is enqueued")
}

// TestPayOfflineFeeTaskEndToEnd drives a PayOfflineFeeTask to completion
// through the Driver against an in-memory store and fake contract/proof
// clients.
func TestPayOfflineFeeTaskEndToEnd(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	store := statestore.NewInMemoryStore(false, config.FeeKeyPair{})

	w := newTestWallet(t)
	mint := testMint(2)
	balance, err := w.GetOrCreateBalance(mint)
	require.NoError(t, err)
	balance.RelayerFeeBalance = wallet.NewAmountFromUint64(42).ToScalar()
	_, err = store.UpdateWallet(ctx, w)
	require.NoError(t, err)
	require.NoError(t, store.PutMerkleOpening(ctx, w.Id, wallet.MerkleOpening{}))

	proofs := &proofclient.FakeClient{}
	contract := contractclient.NewFakeClient()
	queue := &fakeQueue{}

	tsk, err := NewPayOfflineFeeTask(
		ctx, w.Id, mint, false /* isProtocolFee */, wallet.NewAmountFromUint64(42),
		cfg, store, proofs, contract, queue,
	)
	require.NoError(t, err)

	driver := NewDriver(4)
	require.NoError(t, driver.Run(ctx, tsk))

	assert.True(t, tsk.Completed())
	assert.Len(t, proofs.Jobs, 1)
	assert.NotEmpty(t, queue.messages)

	stored, err := store.GetWallet(ctx, w.Id)
	require.NoError(t, err)
	newBalance, _ := stored.GetBalance(mint)
	require.NotNil(t, newBalance)
	assert.True(t, newBalance.RelayerFeeBalance.IsZero(), "accrued relayer fee must be zeroed once paid out")
}
