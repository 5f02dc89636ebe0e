package task

import (
	"github.com/google/uuid"

	"github.com/renegade-fi/wallet-engine/fees"
	"github.com/renegade-fi/wallet-engine/matchresult"
	"github.com/renegade-fi/wallet-engine/wallet"
)

// shareFromWallet copies w's balances, orders and fixed fields into the
// fixed-size WalletShare layout the matchresult package's apply functions
// operate on, mirroring the wallet package's own getExistingWalletShare.
func shareFromWallet(w *wallet.Wallet) wallet.WalletShare {
	share := wallet.WalletShare{
		MatchFee:        w.MatchFee,
		ManagingCluster: w.ManagingCluster,
		Blinder:         w.Blinder,
	}
	if w.Keychain != nil {
		share.Keys = w.Keychain.PublicKeys
	}
	copy(share.Balances[:], w.Balances)
	copy(share.Orders[:], w.Orders)
	return share
}

// applyShareToWallet writes a WalletShare's balances and orders back into w's
// slices, truncated to w's existing length.
func applyShareToWallet(w *wallet.Wallet, share wallet.WalletShare) {
	copy(w.Balances, share.Balances[:len(w.Balances)])
	copy(w.Orders, share.Orders[:len(w.Orders)])
}

// partySide returns the OrderSide of whichever party isParty0 identifies,
// given match's Direction (which is always expressed from party 0's side).
func partySide(direction bool, isParty0 bool) wallet.OrderSide {
	party0Side := wallet.Buy
	if direction {
		party0Side = wallet.Sell
	}
	if isParty0 {
		return party0Side
	}
	if party0Side == wallet.Buy {
		return wallet.Sell
	}
	return wallet.Buy
}

// findOrderIndex returns the index of orderID in w.Orders, or -1.
func findOrderIndex(w *wallet.Wallet, orderID uuid.UUID) int {
	for i, o := range w.Orders {
		if o.Id == orderID {
			return i
		}
	}
	return -1
}

// applyMatchToWallet applies a settled two-party or external match's effects
// to w's balances and orders in place.
func applyMatchToWallet(
	w *wallet.Wallet,
	indices matchresult.OrderSettlementIndices,
	feeTake fees.FeeTake,
	match matchresult.MatchResult,
	side wallet.OrderSide,
) error {
	share := shareFromWallet(w)
	if err := matchresult.ApplyMatchToShare(&share, indices, feeTake, match, side); err != nil {
		return err
	}
	applyShareToWallet(w, share)
	return nil
}

// applyMalleableMatchToWallet applies a malleable atomic match, fixed at
// baseAmount, to w's balances and orders in place.
func applyMalleableMatchToWallet(
	w *wallet.Wallet,
	baseAmount wallet.Amount,
	indices matchresult.OrderSettlementIndices,
	bounded matchresult.BoundedMatchResult,
	feeRates fees.FeeTakeRate,
) error {
	share := shareFromWallet(w)
	if err := matchresult.ApplyMalleableMatchResultToShare(&share, baseAmount, indices, bounded, feeRates); err != nil {
		return err
	}
	applyShareToWallet(w, share)
	return nil
}
