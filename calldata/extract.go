package calldata

import (
	"github.com/holiman/uint256"

	"github.com/renegade-fi/wallet-engine/fees"
	"github.com/renegade-fi/wallet-engine/matchresult"
	"github.com/renegade-fi/wallet-engine/wallet"
)

// BlinderNotFoundError is returned when neither candidate share in a two-party
// settlement carries the blinder the caller expects, meaning the caller does
// not hold either party's wallet and has no share to extract.
type BlinderNotFoundError struct {
	expected wallet.Scalar
}

func (e *BlinderNotFoundError) Error() string {
	return "blinder not found among candidate shares: " + e.expected.ToBigInt().String()
}

// Retryable reports that a missing blinder is fatal: if the caller does not hold
// either party's wallet now, a later attempt at the same call data will not change
// that.
func (e *BlinderNotFoundError) Retryable() bool {
	return false
}

func newBlinderNotFoundError(expected wallet.Scalar) error {
	return &BlinderNotFoundError{expected: expected}
}

// pickShareByBlinder disambiguates between two candidate public shares attached
// to a two-party settlement by comparing each candidate's trailing blinder share
// against the blinder the caller already holds for its own wallet.
func pickShareByBlinder(candidates []wallet.WalletShare, expectedBlinder wallet.Scalar) (wallet.WalletShare, error) {
	for _, c := range candidates {
		if c.Blinder.Equal(&expectedBlinder) {
			return c, nil
		}
	}
	return wallet.WalletShare{}, newBlinderNotFoundError(expectedBlinder)
}

// ParseSharesFromNewWallet extracts the public wallet share committed by a newWallet call.
func ParseSharesFromNewWallet(call NewWalletCall) (wallet.WalletShare, error) {
	return sharesFromLimbs(call.ValidWalletCreateStatement.PublicWalletShares)
}

// ParseSharesFromUpdateWallet extracts the new public wallet share committed by an updateWallet call.
func ParseSharesFromUpdateWallet(call UpdateWalletCall) (wallet.WalletShare, error) {
	return sharesFromLimbs(call.ValidWalletUpdateStatement.NewPublicShares)
}

// ParseSharesFromProcessMatchSettle extracts the caller's own updated public share from a
// two-party processMatchSettle call, disambiguating between the two parties' modified
// shares by comparing against the blinder already held for the caller's wallet.
func ParseSharesFromProcessMatchSettle(
	call ProcessMatchSettleCall,
	expectedBlinder wallet.Scalar,
) (wallet.WalletShare, error) {
	party0, err := sharesFromLimbs(call.ValidMatchSettleStatement.Party0ModifiedShares)
	if err != nil {
		return wallet.WalletShare{}, err
	}
	party1, err := sharesFromLimbs(call.ValidMatchSettleStatement.Party1ModifiedShares)
	if err != nil {
		return wallet.WalletShare{}, err
	}

	return pickShareByBlinder([]wallet.WalletShare{party0, party1}, expectedBlinder)
}

// ParseSharesFromProcessAtomicMatchSettle extracts the internal party's updated public
// share from a processAtomicMatchSettle call. There is only ever one internal party in
// an atomic match, so no blinder disambiguation is required.
func ParseSharesFromProcessAtomicMatchSettle(call ProcessAtomicMatchSettleCall) (wallet.WalletShare, error) {
	return sharesFromLimbs(call.ValidMatchSettleAtomicStatement.InternalPartyModifiedShares)
}

// ParseSharesFromProcessAtomicMatchSettleWithReceiver is the receiver-routed variant of
// ParseSharesFromProcessAtomicMatchSettle; the receiver address does not affect share
// extraction, only where the external party's proceeds are delivered on-chain.
func ParseSharesFromProcessAtomicMatchSettleWithReceiver(
	call ProcessAtomicMatchSettleWithReceiverCall,
) (wallet.WalletShare, error) {
	return sharesFromLimbs(call.ValidMatchSettleAtomicStatement.InternalPartyModifiedShares)
}

// ParseSharesFromProcessMalleableAtomicMatchSettle extracts the internal party's updated
// public share from a malleable atomic match once the external party's chosen base
// amount is known, applying the match's effects to the internal party's public share in
// the process (the share attached to the call is the pre-match share; the contract
// derives the post-match share itself, and the caller must do the same to track its
// own wallet state).
func ParseSharesFromProcessMalleableAtomicMatchSettle(
	call ProcessMalleableAtomicMatchSettleCall,
) (wallet.WalletShare, error) {
	return applyMalleableMatchToCall(
		call.ValidMatchSettleStatement,
		call.BaseAmount,
		call.InternalPartyMatchPayload,
	)
}

// ParseSharesFromProcessMalleableAtomicMatchSettleWithReceiver is the receiver-routed
// variant of ParseSharesFromProcessMalleableAtomicMatchSettle.
func ParseSharesFromProcessMalleableAtomicMatchSettleWithReceiver(
	call ProcessMalleableAtomicMatchSettleWithReceiverCall,
) (wallet.WalletShare, error) {
	return applyMalleableMatchToCall(
		call.ValidMatchSettleStatement,
		call.BaseAmount,
		call.InternalPartyMatchPayload,
	)
}

func applyMalleableMatchToCall(
	statement ValidMalleableMatchSettleAtomicStatement,
	baseAmountWire uint256.Int,
	payload MatchPayload,
) (wallet.WalletShare, error) {
	share, err := sharesFromLimbs(statement.InternalPartyPublicShares)
	if err != nil {
		return wallet.WalletShare{}, err
	}

	baseAmount, err := Uint256ToAmount(&baseAmountWire)
	if err != nil {
		return wallet.WalletShare{}, err
	}

	bounded, err := boundedMatchResultFromWire(statement.MatchResult)
	if err != nil {
		return wallet.WalletShare{}, err
	}
	feeRates := feeTakeRateFromWire(statement.InternalFeeRates)
	indices := orderSettlementIndicesFromWire(payload.ValidCommitmentsStatement.Indices)

	if err := matchresult.ApplyMalleableMatchResultToShare(&share, baseAmount, indices, bounded, feeRates); err != nil {
		return wallet.WalletShare{}, err
	}

	return share, nil
}

func boundedMatchResultFromWire(w BoundedMatchResultWire) (matchresult.BoundedMatchResult, error) {
	minAmt, err := Uint256ToAmount(&w.MinBaseAmount)
	if err != nil {
		return matchresult.BoundedMatchResult{}, err
	}
	maxAmt, err := Uint256ToAmount(&w.MaxBaseAmount)
	if err != nil {
		return matchresult.BoundedMatchResult{}, err
	}

	return matchresult.BoundedMatchResult{
		QuoteMint:     w.QuoteMint,
		BaseMint:      w.BaseMint,
		Price:         w.Price,
		MinBaseAmount: minAmt,
		MaxBaseAmount: maxAmt,
		Direction:     w.Direction,
	}, nil
}

func feeTakeRateFromWire(w FeeTakeRateWire) fees.FeeTakeRate {
	return fees.FeeTakeRate{
		RelayerFeeRate:  w.RelayerFeeRate,
		ProtocolFeeRate: w.ProtocolFeeRate,
	}
}

func orderSettlementIndicesFromWire(w OrderSettlementIndicesWire) matchresult.OrderSettlementIndices {
	return matchresult.OrderSettlementIndices{
		BalanceSend:    int(w.BalanceSend),
		BalanceReceive: int(w.BalanceReceive),
		Order:          int(w.Order),
	}
}

// ParseSharesFromSettleOnlineRelayerFee extracts the caller's own updated public share
// from a settleOnlineRelayerFee call, disambiguating between the fee payer's
// (sender's) and the relayer's (recipient's) updated shares.
func ParseSharesFromSettleOnlineRelayerFee(
	call SettleOnlineRelayerFeeCall,
	expectedBlinder wallet.Scalar,
) (wallet.WalletShare, error) {
	sender, err := sharesFromLimbs(call.ValidRelayerFeeSettlementStatement.SenderUpdatedPublicShares)
	if err != nil {
		return wallet.WalletShare{}, err
	}
	recipient, err := sharesFromLimbs(call.ValidRelayerFeeSettlementStatement.RecipientUpdatedPublicShares)
	if err != nil {
		return wallet.WalletShare{}, err
	}

	return pickShareByBlinder([]wallet.WalletShare{sender, recipient}, expectedBlinder)
}

// ParseSharesFromSettleOfflineFee extracts the updated public wallet share from a
// settleOfflineFee call.
func ParseSharesFromSettleOfflineFee(call SettleOfflineFeeCall) (wallet.WalletShare, error) {
	return sharesFromLimbs(call.ValidOfflineFeeSettlementStatement.UpdatedWalletPublicShares)
}

// ParseSharesFromRedeemFee extracts the updated public wallet share from a redeemFee call.
func ParseSharesFromRedeemFee(call RedeemFeeCall) (wallet.WalletShare, error) {
	return sharesFromLimbs(call.ValidFeeRedemptionStatement.NewWalletPublicShares)
}
