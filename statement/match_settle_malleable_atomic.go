package statement

import (
	"github.com/renegade-fi/wallet-engine/fees"
	"github.com/renegade-fi/wallet-engine/matchresult"
	"github.com/renegade-fi/wallet-engine/wallet"
)

// MatchSettleMalleableAtomicStatement is the public-input side of a
// processMalleableAtomicMatchSettle (and ...WithReceiver) call. Unlike
// MatchSettleAtomicStatement's fixed-size match, the statement here commits to a
// BoundedMatchResult the external party fixes a concrete base amount against only
// at submission time, so the internal party's share update is parameterized by
// that as-yet-unknown amount rather than baked into the proof.
type MatchSettleMalleableAtomicStatement struct {
	InternalPartyOriginalShares wallet.WalletShare
	Match                       matchresult.BoundedMatchResult
	FeeRates                    fees.FeeTakeRate
	Receiver                    *wallet.Address
}

// MatchSettleMalleableAtomicWitness is the internal party's private side of a
// malleable atomic match.
type MatchSettleMalleableAtomicWitness struct {
	Indices                     matchresult.OrderSettlementIndices
	InternalPartyPrivateShares  wallet.WalletShare
}

// BuildMatchSettleMalleableAtomic assembles the (statement, witness) pair for a
// malleable atomic match against an external counterparty who has not yet
// committed to a concrete base amount. Unlike the fixed atomic variant, the
// internal party's updated share is not computed here: the contract (and the
// caller tracking its own wallet) derive it once the external party chooses an
// amount in [bounded.MinBaseAmount, bounded.MaxBaseAmount], via
// matchresult.ApplyMalleableMatchResultToShare.
func BuildMatchSettleMalleableAtomic(
	internalShare wallet.WalletShare,
	internalPrivateShares wallet.WalletShare,
	bounded matchresult.BoundedMatchResult,
	feeRates fees.FeeTakeRate,
	indices matchresult.OrderSettlementIndices,
	receiver *wallet.Address,
) (MatchSettleMalleableAtomicStatement, MatchSettleMalleableAtomicWitness) {
	statement := MatchSettleMalleableAtomicStatement{
		InternalPartyOriginalShares: internalShare,
		Match:                       bounded,
		FeeRates:                    feeRates,
		Receiver:                    receiver,
	}
	witness := MatchSettleMalleableAtomicWitness{
		Indices:                    indices,
		InternalPartyPrivateShares: internalPrivateShares,
	}

	return statement, witness
}
