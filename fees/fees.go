// Package fees implements the fee-take algebra and fee-note primitives that the
// match settlement and offline/online fee settlement tasks operate on.
package fees

import (
	"github.com/renegade-fi/wallet-engine/wallet"
)

// FeeTake represents the concrete fee amounts paid to the relayer and the
// protocol on a single match.
type FeeTake struct {
	RelayerFee  wallet.Amount
	ProtocolFee wallet.Amount
}

// Total returns the sum of the relayer and protocol fees
func (f *FeeTake) Total() wallet.Amount {
	return f.RelayerFee.Add(f.ProtocolFee)
}

// FeeTakeRate represents the fee rates charged to the relayer and the protocol on a
// match, expressed as fixed point fractions of the receive amount.
type FeeTakeRate struct {
	RelayerFeeRate  wallet.FixedPoint
	ProtocolFeeRate wallet.FixedPoint
}

// Total returns the combined fee rate
func (f *FeeTakeRate) Total() wallet.FixedPoint {
	return f.RelayerFeeRate.Add(f.ProtocolFeeRate)
}

// ComputeFeeTake computes the concrete fee amounts due on a receive amount at this rate
func (f *FeeTakeRate) ComputeFeeTake(receiveAmount wallet.Amount) FeeTake {
	return FeeTake{
		RelayerFee:  f.RelayerFeeRate.MulAmountFloor(receiveAmount),
		ProtocolFee: f.ProtocolFeeRate.MulAmountFloor(receiveAmount),
	}
}
