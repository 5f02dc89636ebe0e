package task

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renegade-fi/wallet-engine/config"
	"github.com/renegade-fi/wallet-engine/contractclient"
	"github.com/renegade-fi/wallet-engine/networkqueue"
	"github.com/renegade-fi/wallet-engine/proofclient"
	"github.com/renegade-fi/wallet-engine/statestore"
)

// TestNewWalletTaskEndToEnd drives a NewWalletTask for a fresh empty wallet to
// completion: a wallet-create proof is enqueued, the newWallet submission
// lands, a merkle opening is recorded, and the wallet becomes visible in state.
func TestNewWalletTaskEndToEnd(t *testing.T) {
	ctx := context.Background()
	store := statestore.NewInMemoryStore(false, config.FeeKeyPair{})

	w := newTestWallet(t)
	proofs := &proofclient.FakeClient{}
	contract := contractclient.NewFakeClient()
	queue := &fakeQueue{}

	tsk := NewNewWalletTask(w, store, proofs, contract, queue)

	driver := NewDriver(1)
	require.NoError(t, driver.Run(ctx, tsk))
	assert.True(t, tsk.Completed())

	require.Len(t, proofs.Jobs, 1)
	_, ok := proofs.Jobs[0].Payload.(proofclient.ValidWalletCreatePayload)
	assert.True(t, ok, "expected a wallet create proof job, got %T", proofs.Jobs[0].Payload)

	stored, err := store.GetWallet(ctx, w.Id)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.Blinder.Equal(&w.Blinder))

	_, err = store.GetMerkleOpening(ctx, w.Id)
	require.NoError(t, err)

	require.NotEmpty(t, queue.messages)
	assert.Equal(t, networkqueue.MessageKindWalletUpdate, queue.messages[0].Kind)
	assert.Equal(t, w.Id, queue.messages[0].WalletID)
}
