package calldata

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/renegade-fi/wallet-engine/wallet"
)

// ConversionError reports a failure converting between the engine's domain types
// and their on-chain wire representation, mirroring the Rust ConversionError enum
// that guards the same boundary in the darkpool client's contract type layer.
type ConversionError struct {
	msg string
}

func (e *ConversionError) Error() string {
	return e.msg
}

// Retryable reports that a type conversion failure is fatal: the wire value is
// malformed or out of range, and retrying the same conversion produces the same
// result.
func (e *ConversionError) Retryable() bool {
	return false
}

func newConversionError(format string, args ...interface{}) error {
	return &ConversionError{msg: fmt.Sprintf(format, args...)}
}

// AmountToUint256 converts an Amount to its on-chain uint256 representation. This
// is the one boundary in the engine that must be bit-exact with the EVM's 256-bit
// integer type, which is exactly why it goes through uint256.Int rather than a
// hand-rolled big.Int shim.
func AmountToUint256(a wallet.Amount) (uint256.Int, error) {
	var out uint256.Int
	overflow := out.SetFromBig(a.BigInt())
	if overflow {
		return uint256.Int{}, newConversionError("amount %s overflows uint256", a.String())
	}

	return out, nil
}

// Uint256ToAmount converts an on-chain uint256 back to an Amount, bounds-checked to
// the engine's 128-bit Amount representation.
func Uint256ToAmount(u *uint256.Int) (wallet.Amount, error) {
	big := u.ToBig()
	amount, err := wallet.AmountFromBigInt(big)
	if err != nil {
		return wallet.Amount{}, newConversionError("uint256 %s does not fit in a 128-bit amount", big.String())
	}

	return amount, nil
}

// OrderSideFromBit converts the contract's boolean match-direction encoding to an OrderSide
func OrderSideFromBit(bit bool) wallet.OrderSide {
	if bit {
		return wallet.Sell
	}
	return wallet.Buy
}

// OrderSideToBit converts an OrderSide to the contract's boolean match-direction encoding
func OrderSideToBit(side wallet.OrderSide) bool {
	return side == wallet.Sell
}
