package task

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renegade-fi/wallet-engine/wallet"
)

func TestShareFromWalletRoundTrip(t *testing.T) {
	w := newTestWallet(t)

	mint := testMint(3)
	balance, err := w.GetOrCreateBalance(mint)
	require.NoError(t, err)
	balance.Amount = wallet.NewAmountFromUint64(100).ToScalar()

	order := wallet.NewOrder(mint.ToScalar(), testMint(4).ToScalar(), wallet.Buy, wallet.NewAmountFromUint64(5).ToScalar(), wallet.ZeroFixedPoint())
	require.NoError(t, w.NewOrder(order))

	share := shareFromWallet(w)
	assert.Equal(t, w.Balances[0].Amount, share.Balances[0].Amount)
	assert.Equal(t, w.Orders[0].Id, share.Orders[0].Id)
	assert.Equal(t, w.Blinder, share.Blinder)

	share.Balances[0].Amount = wallet.NewAmountFromUint64(55).ToScalar()
	applyShareToWallet(w, share)

	updated, err := wallet.AmountFromScalar(w.Balances[0].Amount)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Cmp(wallet.NewAmountFromUint64(55)))
}

func TestFindOrderIndex(t *testing.T) {
	w := newTestWallet(t)
	order := wallet.NewOrder(testMint(1).ToScalar(), testMint(2).ToScalar(), wallet.Sell, wallet.NewAmountFromUint64(1).ToScalar(), wallet.ZeroFixedPoint())
	require.NoError(t, w.NewOrder(order))

	assert.Equal(t, 0, findOrderIndex(w, order.Id))
	assert.Equal(t, -1, findOrderIndex(w, uuid.New()))
}

func TestPartySide(t *testing.T) {
	// Direction == false: party 0 buys base/sells quote.
	assert.Equal(t, wallet.Buy, partySide(false, true))
	assert.Equal(t, wallet.Sell, partySide(false, false))

	// Direction == true: party 0 sells base/buys quote.
	assert.Equal(t, wallet.Sell, partySide(true, true))
	assert.Equal(t, wallet.Buy, partySide(true, false))
}
