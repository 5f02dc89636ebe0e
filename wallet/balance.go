package wallet

import "fmt"

// Balance is a balance in the Renegade system
type Balance struct {
	// Mint is the erc20 address of the balance's asset
	Mint Scalar
	// Amount is the amount of the balance
	Amount Scalar
	// RelayerFeeBalance is the balance due to the relayer in fees
	RelayerFeeBalance Scalar
	// ProtocolFeeBalance is the balance due to the protocol in fees
	ProtocolFeeBalance Scalar
}

// NewEmptyBalance creates a new balance with all zero values
func NewEmptyBalance() Balance {
	return Balance{
		Mint:               Scalar{},
		Amount:             Scalar{},
		RelayerFeeBalance:  Scalar{},
		ProtocolFeeBalance: Scalar{},
	}
}

// IsZero returns whether a balance holds no funds and no accrued fees
func (b *Balance) IsZero() bool {
	return b.Amount.IsZero() && b.RelayerFeeBalance.IsZero() && b.ProtocolFeeBalance.IsZero()
}

// GetBalance returns a pointer to the wallet's balance for the given mint and its
// index, or (nil, -1) if the wallet holds no balance in that mint.
func (w *Wallet) GetBalance(mint Address) (*Balance, int) {
	mintScalar := mint.ToScalar()
	for i := range w.Balances {
		if w.Balances[i].Mint.Equal(&mintScalar) {
			return &w.Balances[i], i
		}
	}

	return nil, -1
}

// findReplaceableBalance finds the first balance slot that may be overwritten by a
// new balance: either a zero balance, or -1 if none exists
func (w *Wallet) findReplaceableBalance() int {
	for i := range w.Balances {
		if w.Balances[i].IsZero() {
			return i
		}
	}

	return -1
}

// GetOrCreateBalance returns the wallet's existing balance for mint, or allocates a
// new zero balance slot for it if one does not exist
func (w *Wallet) GetOrCreateBalance(mint Address) (*Balance, error) {
	if balance, idx := w.GetBalance(mint); idx != -1 {
		return balance, nil
	}

	newBalance := NewEmptyBalance()
	newBalance.Mint = mint.ToScalar()

	if idx := w.findReplaceableBalance(); idx != -1 {
		w.Balances[idx] = newBalance
		return &w.Balances[idx], nil
	}

	if len(w.Balances) >= MaxBalances {
		return nil, fmt.Errorf("wallet already has the maximum number of balances")
	}

	w.Balances = append(w.Balances, newBalance)
	return &w.Balances[len(w.Balances)-1], nil
}
