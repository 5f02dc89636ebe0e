package wallet

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Address is an ERC-20 token address. It is kept distinct from a bare Scalar so that
// mint comparisons and calldata serialization cannot be confused with amounts or
// other scalar-valued wallet fields, even though on the wire an address is carried
// as a single field element.
type Address [20]byte

// AddressFromScalar recovers an Address from its scalar representation
func AddressFromScalar(s Scalar) Address {
	bigint := s.ToBigInt()
	bytes := common.LeftPadBytes(bigint.Bytes(), 20)

	var addr Address
	copy(addr[:], bytes[len(bytes)-20:])
	return addr
}

// ToScalar converts an Address to its scalar representation
func (a Address) ToScalar() Scalar {
	bigint := new(big.Int).SetBytes(a[:])
	return new(Scalar).FromBigInt(bigint)
}

// ToHexString returns the 0x-prefixed hex representation of the address
func (a Address) ToHexString() string {
	return common.BytesToAddress(a[:]).Hex()
}

// AddressFromHexString parses an Address from a hex string
func AddressFromHexString(s string) (Address, error) {
	if !common.IsHexAddress(s) {
		return Address{}, errInvalidAddress(s)
	}

	var addr Address
	copy(addr[:], common.HexToAddress(s).Bytes())
	return addr, nil
}

// Equal returns whether two addresses are the same mint
func (a Address) Equal(other Address) bool {
	return a == other
}

func errInvalidAddress(s string) error {
	return &typeConversionError{msg: "invalid address: " + s}
}

type typeConversionError struct {
	msg string
}

func (e *typeConversionError) Error() string {
	return e.msg
}

// Amount is a nonnegative token quantity, bounded to 128 bits to match the
// on-chain representation. It is kept distinct from Scalar so that arithmetic on
// balances and match sizes cannot silently wrap around the scalar field's much
// larger modulus.
type Amount struct {
	val big.Int
}

// maxAmountBits is the bit width of the on-chain Amount representation
const maxAmountBits = 128

// NewAmountFromUint64 constructs an Amount from a uint64
func NewAmountFromUint64(v uint64) Amount {
	var a Amount
	a.val.SetUint64(v)
	return a
}

// AmountFromBigInt constructs an Amount from a big.Int, erroring if it does not fit in 128 bits
func AmountFromBigInt(v *big.Int) (Amount, error) {
	if v.Sign() < 0 || v.BitLen() > maxAmountBits {
		return Amount{}, &typeConversionError{msg: "amount out of range: " + v.String()}
	}

	var a Amount
	a.val.Set(v)
	return a, nil
}

// AmountFromScalar recovers an Amount from its scalar representation, erroring if
// the scalar does not represent a value that fits in 128 bits
func AmountFromScalar(s Scalar) (Amount, error) {
	return AmountFromBigInt(s.ToBigInt())
}

// ToScalar converts an Amount to its scalar representation
func (a Amount) ToScalar() Scalar {
	return new(Scalar).FromBigInt(&a.val)
}

// BigInt returns the Amount's value as a big.Int
func (a Amount) BigInt() *big.Int {
	return new(big.Int).Set(&a.val)
}

// Uint64 returns the Amount truncated to a uint64; callers that know the amount
// fits (e.g. after a prior bounds check) may use this for arithmetic convenience
func (a Amount) Uint64() uint64 {
	return a.val.Uint64()
}

// IsZero returns whether the amount is zero
func (a Amount) IsZero() bool {
	return a.val.Sign() == 0
}

// Add adds two amounts
func (a Amount) Add(b Amount) Amount {
	var out Amount
	out.val.Add(&a.val, &b.val)
	return out
}

// Sub subtracts b from a; the caller must ensure a >= b as Amount does not represent negatives
func (a Amount) Sub(b Amount) Amount {
	var out Amount
	out.val.Sub(&a.val, &b.val)
	return out
}

// Cmp compares two amounts the way big.Int.Cmp does
func (a Amount) Cmp(b Amount) int {
	return a.val.Cmp(&b.val)
}

// String returns the base-10 string representation of the amount
func (a Amount) String() string {
	return a.val.String()
}

// Commitment is a Poseidon hash commitment to a wallet's secret shares
type Commitment Scalar

// Nullifier is the Poseidon hash commitment to a wallet's private secret shares.
// Revealing a wallet's nullifier when updating it prevents the prior wallet state
// from being reused in a subsequent settlement.
type Nullifier Scalar

// Nullifier computes the wallet's current nullifier from its full share commitment
// and blinder: H(wallet_commitment, blinder)
func (w *Wallet) Nullifier() (Nullifier, error) {
	c, err := w.GetShareCommitment()
	if err != nil {
		return Nullifier{}, err
	}

	return Nullifier(HashScalars([]Scalar{c, w.Blinder})), nil
}

// ShareCommitment computes the wallet's full share commitment
func (w *Wallet) ShareCommitment() (Commitment, error) {
	c, err := w.GetShareCommitment()
	if err != nil {
		return Commitment{}, err
	}

	return Commitment(c), nil
}

// MerkleOpening is an authentication path from a leaf commitment up to a Merkle root.
// Indices[i] is true when the leaf subtree is the right-hand sibling at level i.
type MerkleOpening struct {
	Siblings []Scalar
	Indices  []bool
}

// ComputeRoot recomputes the Merkle root implied by this opening for the given leaf
func (o *MerkleOpening) ComputeRoot(leaf Scalar) Scalar {
	current := leaf
	for i, sibling := range o.Siblings {
		if o.Indices[i] {
			current = HashScalars([]Scalar{sibling, current})
		} else {
			current = HashScalars([]Scalar{current, sibling})
		}
	}

	return current
}

// VerifyAgainstRoot returns whether this opening authenticates leaf under root
func (o *MerkleOpening) VerifyAgainstRoot(leaf Scalar, root Scalar) bool {
	computed := o.ComputeRoot(leaf)
	return (&computed).Equal(&root)
}

// Equal returns whether two scalars represent the same field element
func (s *Scalar) Equal(other *Scalar) bool {
	return s.ToBigInt().Cmp(other.ToBigInt()) == 0
}
