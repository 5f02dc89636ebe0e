package statestore

import (
	"context"
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/crypto/secp256k1"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renegade-fi/wallet-engine/config"
	"github.com/renegade-fi/wallet-engine/matchresult"
	"github.com/renegade-fi/wallet-engine/wallet"
)

func newTestStore() *InMemoryStore {
	return NewInMemoryStore(false, config.FeeKeyPair{})
}

func newTestWallet(t *testing.T) *wallet.Wallet {
	t.Helper()

	key, err := ecdsa.GenerateKey(secp256k1.S256(), rand.Reader)
	require.NoError(t, err)

	w, err := wallet.NewEmptyWallet(key, 1 /* chainId */)
	require.NoError(t, err)
	return w
}

func TestGetWalletAbsent(t *testing.T) {
	store := newTestStore()

	w, err := store.GetWallet(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, w)
}

// TestGetWalletReturnsCopy checks that mutating a wallet read from the store
// does not affect the store's own copy, the isolation every task relies on
// when deriving a new wallet from the stored one.
func TestGetWalletReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	w := newTestWallet(t)
	waiter, err := store.UpdateWallet(ctx, w)
	require.NoError(t, err)
	require.NoError(t, <-waiter)

	read, err := store.GetWallet(ctx, w.Id)
	require.NoError(t, err)
	require.NotNil(t, read)

	originalBlinder := read.Blinder
	require.NoError(t, read.Reblind())

	again, err := store.GetWallet(ctx, w.Id)
	require.NoError(t, err)
	assert.True(t, again.Blinder.Equal(&originalBlinder), "store's copy must not observe the caller's mutation")
}

func TestMerkleOpeningRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	walletID := uuid.New()

	_, err := store.GetMerkleOpening(ctx, walletID)
	require.Error(t, err)
	var missing *StateMissingError
	require.ErrorAs(t, err, &missing)
	assert.True(t, missing.Retryable())

	sibling, err := wallet.RandomScalar()
	require.NoError(t, err)
	opening := wallet.MerkleOpening{Siblings: []wallet.Scalar{sibling}, Indices: []bool{true}}
	require.NoError(t, store.PutMerkleOpening(ctx, walletID, opening))

	read, err := store.GetMerkleOpening(ctx, walletID)
	require.NoError(t, err)
	assert.Equal(t, opening, read)
}

func TestOrderValidityProofs(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	orderID := uuid.New()

	_, err := store.GetOrderValidityProofs(ctx, orderID)
	require.Error(t, err)

	bundle := ValidityProofBundle{
		OrderID: orderID,
		Indices: matchresult.OrderSettlementIndices{BalanceSend: 1, BalanceReceive: 2, Order: 0},
	}
	store.PutOrderValidityProofs(bundle)

	read, err := store.GetOrderValidityProofs(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, bundle, read)
}

func TestTaskRecordLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	rec := TaskRecord{
		ID:         uuid.New(),
		Name:       "UpdateWalletTask",
		State:      3,
		Descriptor: json.RawMessage(`{"WalletID":"00000000-0000-0000-0000-000000000000"}`),
	}
	require.NoError(t, store.PutTaskRecord(ctx, rec))

	records, err := store.ListTaskRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec, records[0])

	// Upsert under the same id replaces, never duplicates.
	rec.State = 4
	require.NoError(t, store.PutTaskRecord(ctx, rec))
	records, err = store.ListTaskRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 4, records[0].State)

	require.NoError(t, store.DeleteTaskRecord(ctx, rec.ID))
	records, err = store.ListTaskRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}
