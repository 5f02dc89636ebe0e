package wallet

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto/secp256k1"
)

// The types in this file carry state that encoding/json cannot round-trip on
// its own: Amount keeps its value unexported to force bounds-checked
// construction, and the signing keys embed an elliptic.Curve interface that
// has no JSON form. Each gets an explicit codec so that wallets and task
// records survive the store's JSON (de)serialization intact.

// MarshalJSON encodes the amount as its base-10 string form.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.val.String())
}

// UnmarshalJSON decodes a base-10 string, enforcing the 128-bit amount bound.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return &typeConversionError{msg: "invalid amount: " + s}
	}

	parsed, err := AmountFromBigInt(v)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalJSON encodes the public key as its uncompressed hex form.
func (pk PublicSigningKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(pk.ToHexString())
}

// UnmarshalJSON decodes a public key from its uncompressed hex form.
func (pk *PublicSigningKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	_, err := pk.FromHexString(s)
	return err
}

// MarshalJSON encodes the private key as the hex form of its scalar value.
func (pk PrivateSigningKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(pk.ToHexString())
}

// UnmarshalJSON decodes a private key from its scalar hex form, re-deriving
// the public half so the key is immediately usable for signing.
func (pk *PrivateSigningKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	if _, err := pk.FromHexString(s); err != nil {
		return err
	}

	curve := secp256k1.S256()
	pk.PublicKey.Curve = curve
	pk.PublicKey.X, pk.PublicKey.Y = curve.ScalarBaseMult(pk.D.Bytes())
	return nil
}
