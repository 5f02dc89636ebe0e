package statement

import (
	"github.com/renegade-fi/wallet-engine/matchresult"
	"github.com/renegade-fi/wallet-engine/wallet"
)

// MatchSettleAtomicStatement is the public-input side of a processAtomicMatchSettle
// (and ...WithReceiver) call: a single internal party matched against an external
// party who supplies their side directly in calldata, with no validity proof of
// their own.
type MatchSettleAtomicStatement struct {
	InternalPartyModifiedShares wallet.WalletShare
	Match                       matchresult.ExternalMatchResult
	Receiver                    *wallet.Address
}

// MatchSettleAtomicWitness is the internal party's private side of an atomic match.
type MatchSettleAtomicWitness struct {
	Indices              matchresult.OrderSettlementIndices
	OriginalPublicShares wallet.WalletShare
	UpdatedPrivateShares wallet.WalletShare
}

// BuildMatchSettleAtomic assembles the (statement, witness) pair for an atomic match
// against an external (non-relayer-managed) counterparty. receiver is nil unless the
// external party routed proceeds to a third-party address.
func BuildMatchSettleAtomic(
	originalShare wallet.WalletShare,
	updatedWallet *wallet.Wallet,
	match matchresult.ExternalMatchResult,
	indices matchresult.OrderSettlementIndices,
	receiver *wallet.Address,
) (MatchSettleAtomicStatement, MatchSettleAtomicWitness) {
	statement := MatchSettleAtomicStatement{
		InternalPartyModifiedShares: updatedWallet.BlindedPublicShares,
		Match:                       match,
		Receiver:                    receiver,
	}
	witness := MatchSettleAtomicWitness{
		Indices:              indices,
		OriginalPublicShares: originalShare,
		UpdatedPrivateShares: updatedWallet.PrivateShares,
	}

	return statement, witness
}
