package calldata

import (
	"github.com/holiman/uint256"

	"github.com/renegade-fi/wallet-engine/wallet"
)

// shareLimbs is the wire representation of a single scalar within a statement's
// share vector: secretShareLimbCount little-endian uint32 limbs.
type shareLimbs = [secretShareLimbCount]uint32

// ValidWalletCreateStatement is the statement attached to a newWallet call
type ValidWalletCreateStatement struct {
	PublicWalletShares []shareLimbs
}

// ValidWalletUpdateStatement is the statement attached to an updateWallet call
type ValidWalletUpdateStatement struct {
	NewPublicShares []shareLimbs
}

// ValidMatchSettleStatement is the statement attached to a processMatchSettle call
type ValidMatchSettleStatement struct {
	Party0ModifiedShares []shareLimbs
	Party1ModifiedShares []shareLimbs
}

// ValidMatchSettleAtomicStatement is the statement attached to a
// processAtomicMatchSettle / processAtomicMatchSettleWithReceiver call
type ValidMatchSettleAtomicStatement struct {
	InternalPartyModifiedShares []shareLimbs
}

// OrderSettlementIndicesWire is the wire form of matchresult.OrderSettlementIndices
type OrderSettlementIndicesWire struct {
	BalanceSend    uint64
	BalanceReceive uint64
	Order          uint64
}

// BoundedMatchResultWire is the wire form of a bounded match result
type BoundedMatchResultWire struct {
	QuoteMint     wallet.Address
	BaseMint      wallet.Address
	Price         wallet.FixedPoint
	MinBaseAmount uint256.Int
	MaxBaseAmount uint256.Int
	Direction     bool
}

// FeeTakeRateWire is the wire form of a fee take rate
type FeeTakeRateWire struct {
	RelayerFeeRate  wallet.FixedPoint
	ProtocolFeeRate wallet.FixedPoint
}

// ValidMalleableMatchSettleAtomicStatement is the statement attached to a
// processMalleableAtomicMatchSettle / ...WithReceiver call
type ValidMalleableMatchSettleAtomicStatement struct {
	InternalPartyPublicShares []shareLimbs
	MatchResult               BoundedMatchResultWire
	InternalFeeRates          FeeTakeRateWire
}

// ValidCommitmentsStatement carries the settlement indices a validity proof attests to
type ValidCommitmentsStatement struct {
	Indices OrderSettlementIndicesWire
}

// MatchPayload bundles the validity proof statement accompanying a match
type MatchPayload struct {
	ValidCommitmentsStatement ValidCommitmentsStatement
}

// ValidRelayerFeeSettlementStatement is the statement attached to a
// settleOnlineRelayerFee call
type ValidRelayerFeeSettlementStatement struct {
	SenderUpdatedPublicShares    []shareLimbs
	RecipientUpdatedPublicShares []shareLimbs
}

// ValidOfflineFeeSettlementStatement is the statement attached to a settleOfflineFee call
type ValidOfflineFeeSettlementStatement struct {
	UpdatedWalletPublicShares []shareLimbs
}

// ValidFeeRedemptionStatement is the statement attached to a redeemFee call
type ValidFeeRedemptionStatement struct {
	NewWalletPublicShares []shareLimbs
}

// NewWalletCall is the abi-decoded form of a newWallet contract call
type NewWalletCall struct {
	ValidWalletCreateStatement ValidWalletCreateStatement
}

// UpdateWalletCall is the abi-decoded form of an updateWallet contract call
type UpdateWalletCall struct {
	ValidWalletUpdateStatement ValidWalletUpdateStatement
}

// ProcessMatchSettleCall is the abi-decoded form of a processMatchSettle contract call
type ProcessMatchSettleCall struct {
	ValidMatchSettleStatement ValidMatchSettleStatement
}

// ProcessAtomicMatchSettleCall is the abi-decoded form of a processAtomicMatchSettle contract call
type ProcessAtomicMatchSettleCall struct {
	ValidMatchSettleAtomicStatement ValidMatchSettleAtomicStatement
}

// ProcessAtomicMatchSettleWithReceiverCall is the abi-decoded form of a
// processAtomicMatchSettleWithReceiver contract call
type ProcessAtomicMatchSettleWithReceiverCall struct {
	ValidMatchSettleAtomicStatement ValidMatchSettleAtomicStatement
	Receiver                        wallet.Address
}

// ProcessMalleableAtomicMatchSettleCall is the abi-decoded form of a
// processMalleableAtomicMatchSettle contract call
type ProcessMalleableAtomicMatchSettleCall struct {
	ValidMatchSettleStatement    ValidMalleableMatchSettleAtomicStatement
	BaseAmount                   uint256.Int
	InternalPartyMatchPayload    MatchPayload
}

// ProcessMalleableAtomicMatchSettleWithReceiverCall is the abi-decoded form of a
// processMalleableAtomicMatchSettleWithReceiver contract call
type ProcessMalleableAtomicMatchSettleWithReceiverCall struct {
	ValidMatchSettleStatement ValidMalleableMatchSettleAtomicStatement
	BaseAmount                uint256.Int
	InternalPartyMatchPayload MatchPayload
	Receiver                  wallet.Address
}

// SettleOnlineRelayerFeeCall is the abi-decoded form of a settleOnlineRelayerFee contract call
type SettleOnlineRelayerFeeCall struct {
	ValidRelayerFeeSettlementStatement ValidRelayerFeeSettlementStatement
}

// SettleOfflineFeeCall is the abi-decoded form of a settleOfflineFee contract call
type SettleOfflineFeeCall struct {
	ValidOfflineFeeSettlementStatement ValidOfflineFeeSettlementStatement
}

// RedeemFeeCall is the abi-decoded form of a redeemFee contract call
type RedeemFeeCall struct {
	ValidFeeRedemptionStatement ValidFeeRedemptionStatement
}

// sharesFromLimbs deserializes a vector of wire-limb scalars into a WalletShare
func sharesFromLimbs(limbs []shareLimbs) (wallet.WalletShare, error) {
	scalars := make([]wallet.Scalar, len(limbs))
	for i, l := range limbs {
		scalars[i] = ScalarFromUintLimbs(l)
	}

	share := wallet.WalletShare{}
	if err := wallet.FromScalarsRecursive(&share, wallet.NewScalarIterator(scalars)); err != nil {
		return wallet.WalletShare{}, err
	}

	return share, nil
}
