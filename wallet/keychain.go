package wallet

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/crypto/secp256k1"
)

// HmacKey is a symmetric key used to authenticate requests against the wallet's
// managing cluster.
type HmacKey [32]byte

// ToHexString converts the HMAC key to a hex string
func (k *HmacKey) ToHexString() string {
	return hex.EncodeToString(k[:])
}

// FromHexString converts a hex string to an HMAC key
func (k *HmacKey) FromHexString(hexString string) (HmacKey, error) {
	bytes, err := decodeFixedHex(hexString, 32)
	if err != nil {
		return HmacKey{}, err
	}

	copy(k[:], bytes)
	return *k, nil
}

// decodeFixedHex decodes a (possibly 0x-prefixed) hex string, erroring unless it
// decodes to exactly n bytes.
func decodeFixedHex(hexString string, n int) ([]byte, error) {
	bytes, err := hex.DecodeString(preprocessHexString(hexString))
	if err != nil {
		return nil, err
	}

	if len(bytes) != n {
		return nil, fmt.Errorf("expected exactly %d bytes, got %d", n, len(bytes))
	}

	return bytes, nil
}

// PublicSigningKey is a secp256k1 verification key, used to authenticate wallet
// state transitions submitted on the owner's behalf.
type PublicSigningKey ecdsa.PublicKey

// scalarLimbsForCoord splits a single secp256k1 coordinate into at most two
// field-element limbs, since a 256-bit coordinate does not fit in a single
// bn254 scalar.
func scalarLimbsForCoord(coord *big.Int) ([2]Scalar, error) {
	limbs := bigIntToScalarLimbs(*coord)
	if len(limbs) > 2 {
		return [2]Scalar{}, errors.New("coordinate does not fit in two scalar limbs")
	}

	var padded [2]Scalar
	copy(padded[:], limbs)
	return padded, nil
}

// ToScalars serializes the key's X and Y coordinates as four scalar limbs.
func (pk *PublicSigningKey) ToScalars() ([]Scalar, error) {
	x, err := scalarLimbsForCoord(pk.X)
	if err != nil {
		return nil, errors.New("public key is not on the curve: " + err.Error())
	}

	y, err := scalarLimbsForCoord(pk.Y)
	if err != nil {
		return nil, errors.New("public key is not on the curve: " + err.Error())
	}

	return []Scalar{x[0], x[1], y[0], y[1]}, nil
}

// FromScalars deserializes a public signing key from four scalar limbs.
func (pk *PublicSigningKey) FromScalars(scalars *ScalarIterator) error {
	limbs := make([]Scalar, 4)
	for i := range limbs {
		next, err := scalars.Next()
		if err != nil {
			return err
		}
		limbs[i] = next
	}

	pk.X = scalarLimbsToBigInt(limbs[:2])
	pk.Y = scalarLimbsToBigInt(limbs[2:])
	pk.Curve = secp256k1.S256()
	return nil
}

// NumScalars returns the number of scalars a PublicSigningKey serializes to.
func (pk *PublicSigningKey) NumScalars() int {
	return 4
}

// ToHexString converts the public key to a hex string
func (pk *PublicSigningKey) ToHexString() string {
	return hex.EncodeToString(secp256k1.S256().Marshal(pk.X, pk.Y))
}

// FromHexString converts a hex string to a public key
func (pk *PublicSigningKey) FromHexString(hexString string) (PublicSigningKey, error) {
	bytes, err := hex.DecodeString(preprocessHexString(hexString))
	if err != nil {
		return PublicSigningKey{}, err
	}

	pk.X, pk.Y = secp256k1.S256().Unmarshal(bytes)
	pk.Curve = secp256k1.S256()
	return *pk, nil
}

// PrivateSigningKey is the secp256k1 signing key (sk_root) used to authorize
// wallet updates.
type PrivateSigningKey ecdsa.PrivateKey

// ToScalars serializes the key's scalar value into field-element limbs.
func (pk *PrivateSigningKey) ToScalars() ([]Scalar, error) {
	limbs, err := scalarLimbsForCoord(pk.D)
	if err != nil {
		return nil, err
	}
	return limbs[:], nil
}

// FromScalars deserializes a private signing key from two scalar limbs.
func (pk *PrivateSigningKey) FromScalars(scalars *ScalarIterator) error {
	limbs := make([]Scalar, 2)
	for i := range limbs {
		next, err := scalars.Next()
		if err != nil {
			return err
		}
		limbs[i] = next
	}

	pk.D = scalarLimbsToBigInt(limbs)
	return nil
}

// NumScalars returns the number of scalars a PrivateSigningKey serializes to.
func (pk *PrivateSigningKey) NumScalars() int {
	return 2
}

// ToHexString converts the private key to a hex string
func (pk *PrivateSigningKey) ToHexString() string {
	return hex.EncodeToString(pk.D.Bytes())
}

// FromHexString converts a hex string to a private key
func (pk *PrivateSigningKey) FromHexString(hexString string) (PrivateSigningKey, error) {
	bytes, err := hex.DecodeString(preprocessHexString(hexString))
	if err != nil {
		return PrivateSigningKey{}, err
	}

	pk.D = new(big.Int).SetBytes(bytes)
	return *pk, nil
}

// bigIntToScalarLimbs decomposes a big.Int into little-endian base-`fr.Modulus()`
// limbs, each representable as a single bn254 scalar.
func bigIntToScalarLimbs(v big.Int) []Scalar {
	remaining := new(big.Int).Set(&v)
	modulus := fr.Modulus()

	var limbs []Scalar
	for remaining.Sign() != 0 {
		limb := new(big.Int).Mod(remaining, modulus)

		var elt fr.Element
		elt.SetBigInt(limb)
		limbs = append(limbs, Scalar(elt))

		remaining.Div(remaining, modulus)
	}

	return limbs
}

// scalarLimbsToBigInt recombines little-endian base-`fr.Modulus()` scalar limbs
// into the big.Int they encode.
func scalarLimbsToBigInt(limbs []Scalar) *big.Int {
	modulus := fr.Modulus()

	total := new(big.Int)
	for i := len(limbs) - 1; i >= 0; i-- {
		elt := fr.Element(limbs[i])

		var limbValue big.Int
		elt.BigInt(&limbValue)
		total.Add(total, &limbValue)

		if i > 0 {
			total.Mul(total, modulus)
		}
	}

	return total
}

// PrivateKeychain holds the wallet owner's private keys: the signing key that
// authorizes state transitions, the match key used by the MPC matching engine,
// and the symmetric key used to authenticate requests to the managing cluster.
type PrivateKeychain struct {
	SkRoot       *PrivateSigningKey
	SkMatch      Scalar
	SymmetricKey HmacKey
}

// PublicKeychain holds the public counterparts of a wallet's private keychain,
// plus a nonce reserved for future key-rotation schemes.
type PublicKeychain struct {
	PkRoot  PublicSigningKey
	PkMatch Scalar
	Nonce   Scalar
}

// Keychain bundles a wallet's public and private key material.
type Keychain struct {
	PublicKeys  PublicKeychain
	PrivateKeys PrivateKeychain
}

// SkRoot returns the private root signing key.
func (k *Keychain) SkRoot() *PrivateSigningKey {
	return k.PrivateKeys.SkRoot
}

// FeeEncryptionKey is a public encryption key on the Baby Jubjub curve, held in
// affine coordinate form over the bn254 scalar field so it serializes alongside
// the rest of a wallet's scalar-valued state.
type FeeEncryptionKey struct {
	X Scalar
	Y Scalar
}

// ToBytes converts the fee encryption key to a byte slice
func (pk *FeeEncryptionKey) ToBytes() []byte {
	x, y := pk.X.LittleEndianBytes(), pk.Y.LittleEndianBytes()
	return append(x[:], y[:]...)
}

// FromBytes converts a byte slice to a fee encryption key
func (pk *FeeEncryptionKey) FromBytes(bytes []byte) error {
	if len(bytes) != 2*fr.Bytes {
		return errors.New("fee encryption key must be 64 bytes")
	}

	var x, y [fr.Bytes]byte
	copy(x[:], bytes[:fr.Bytes])
	copy(y[:], bytes[fr.Bytes:])
	pk.X.FromLittleEndianBytes(x)
	pk.Y.FromLittleEndianBytes(y)
	return nil
}

// ToHexString converts the fee encryption key to a hex string
func (pk *FeeEncryptionKey) ToHexString() string {
	return hex.EncodeToString(pk.ToBytes())
}

// FromHexString converts a hex string to a fee encryption key
func (pk *FeeEncryptionKey) FromHexString(hexString string) error {
	bytes, err := hex.DecodeString(preprocessHexString(hexString))
	if err != nil {
		return err
	}

	return pk.FromBytes(bytes)
}
