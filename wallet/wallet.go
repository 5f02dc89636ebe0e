package wallet

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"

	chaincrypto "github.com/renegade-fi/wallet-engine/crypto"
)

const (
	// numScalarsWalletShare is the number of scalars in a wallet share
	numScalarsWalletShare = 70
	// MaxBalances is the maximum number of balances in a wallet
	MaxBalances = 10
	// MaxOrders is the maximum number of orders in a wallet
	MaxOrders = 4
)

// preprocessHexString removes the 0x prefix from a hex string if it exists
// and pads the string to even length if necessary
func preprocessHexString(hexString string) string {
	if len(hexString) >= 2 && hexString[:2] == "0x" {
		hexString = hexString[2:]
	}

	if len(hexString)%2 != 0 {
		hexString = "0" + hexString
	}

	return hexString
}

// Scalar is a field element from the bn254 scalar field, the arithmetic domain
// every wallet value, share and commitment in the engine lives in.
type Scalar fr.Element

// RandomScalar samples a uniformly random field element.
func RandomScalar() (Scalar, error) {
	var elt fr.Element
	if _, err := elt.SetRandom(); err != nil {
		return Scalar{}, err
	}

	return Scalar(elt), nil
}

// IsZero returns whether the scalar is zero
func (s *Scalar) IsZero() bool {
	return (*fr.Element)(s).IsZero()
}

// IsOne returns whether the scalar is one
func (s *Scalar) IsOne() bool {
	return (*fr.Element)(s).IsOne()
}

// Uint64 returns the scalar as a uint64
func (s *Scalar) Uint64() uint64 {
	return (*fr.Element)(s).Uint64()
}

// SetUint64 sets the scalar from a uint64
func (s *Scalar) SetUint64(val uint64) *Scalar {
	(*fr.Element)(s).SetUint64(val)
	return s
}

// Add adds two scalars
func (s *Scalar) Add(other Scalar) Scalar {
	a, b := fr.Element(*s), fr.Element(other)

	var result fr.Element
	result.Add(&a, &b)
	return Scalar(result)
}

// Sub subtracts two scalars
func (s *Scalar) Sub(other Scalar) Scalar {
	a, b := fr.Element(*s), fr.Element(other)

	var result fr.Element
	result.Sub(&a, &b)
	return Scalar(result)
}

// Bytes returns the big-endian byte representation of the scalar
func (s *Scalar) Bytes() [fr.Bytes]byte {
	return (*fr.Element)(s).Bytes()
}

// LittleEndianBytes returns the little-endian byte representation of the scalar
func (s *Scalar) LittleEndianBytes() [fr.Bytes]byte {
	var out [fr.Bytes]byte
	fr.LittleEndian.PutElement(&out, fr.Element(*s))
	return out
}

// FromBytes sets the scalar from a big-endian byte slice
func (s *Scalar) FromBytes(bytes [fr.Bytes]byte) {
	(*fr.Element)(s).SetBytes(bytes[:])
}

// FromLittleEndianBytes sets the scalar from a little-endian byte slice
func (s *Scalar) FromLittleEndianBytes(bytes [fr.Bytes]byte) (*Scalar, error) {
	elt, err := fr.LittleEndian.Element(&bytes)
	if err != nil {
		return nil, err
	}

	*s = Scalar(elt)
	return s, nil
}

// ToHexString returns the hex string representation of the scalar
func (s *Scalar) ToHexString() string {
	bytes := s.ToBigInt().Bytes()
	return hex.EncodeToString(bytes)
}

// FromHexString sets the scalar from a hex string
func (s *Scalar) FromHexString(hexString string) (Scalar, error) {
	bytes, err := hex.DecodeString(preprocessHexString(hexString))
	if err != nil {
		return Scalar{}, err
	}

	var fixed [fr.Bytes]byte
	copy(fixed[fr.Bytes-len(bytes):], bytes)
	s.FromBytes(fixed)

	return *s, nil
}

// ToBigInt converts the scalar to a big.Int
func (s *Scalar) ToBigInt() *big.Int {
	var out big.Int
	(*fr.Element)(s).BigInt(&out)
	return &out
}

// FromBigInt sets the scalar from a big.Int
func (s *Scalar) FromBigInt(i *big.Int) Scalar {
	(*fr.Element)(s).SetBigInt(i)
	return *s
}

// WalletSecrets holds everything required to recover a wallet deterministically
// from its owning Ethereum key: its id, keychain, and the two CSPRNG seeds used
// to sample its first blinder and share vector.
type WalletSecrets struct { //nolint:revive
	Id          uuid.UUID //nolint:revive
	Address     string
	Keychain    *Keychain
	BlinderSeed Scalar
	ShareSeed   Scalar
}

// DeriveWalletSecrets derives every secret needed to recover a wallet from the
// given Ethereum private key, scoped to a chain ID.
func DeriveWalletSecrets(ethKey *ecdsa.PrivateKey, chainID uint64) (*WalletSecrets, error) { //nolint:revive
	walletID, err := DeriveWalletID(ethKey, chainID)
	if err != nil {
		return nil, fmt.Errorf("deriving wallet id: %w", err)
	}

	keychain, err := DeriveKeychain(ethKey, chainID)
	if err != nil {
		return nil, fmt.Errorf("deriving keychain: %w", err)
	}

	blinderSeed, shareSeed, err := DeriveWalletSeeds(ethKey, chainID)
	if err != nil {
		return nil, fmt.Errorf("deriving wallet seeds: %w", err)
	}

	return &WalletSecrets{
		Id:          walletID,
		Address:     crypto.PubkeyToAddress(ethKey.PublicKey).Hex(),
		Keychain:    keychain,
		BlinderSeed: blinderSeed,
		ShareSeed:   shareSeed,
	}, nil
}

// WalletShare is a secret share of the on-chain portion of a wallet: balances,
// orders, keys, fee configuration and a share of the blinder.
type WalletShare struct { //nolint:revive
	Balances        [MaxBalances]Balance
	Orders          [MaxOrders]Order
	Keys            PublicKeychain
	MatchFee        FixedPoint
	ManagingCluster FeeEncryptionKey
	// Blinder is this share's contribution to the wallet's additive blinder
	Blinder Scalar
}

// EmptyWalletShare builds an all-zero wallet share carrying the given public
// keys, used as the cleartext template that NewEmptyWalletFromSecrets and
// Reblind split into private/public shares.
func EmptyWalletShare(publicKeys PublicKeychain) (WalletShare, error) {
	zeros := make([]Scalar, numScalarsWalletShare)

	share := WalletShare{}
	if err := FromScalarsRecursive(&share, NewScalarIterator(zeros)); err != nil {
		return WalletShare{}, err
	}

	share.Keys = publicKeys
	return share, nil
}

// SplitPublicPrivate splits ws into a private share (privateShares, verbatim)
// and a public share, such that for every slot, public = cleartext - private +
// blinder. The blinder term masks the public share so that it alone reveals
// nothing about the cleartext.
func (ws *WalletShare) SplitPublicPrivate(privateShares []Scalar, blinder Scalar) (WalletShare, WalletShare, error) {
	cleartext, err := ToScalarsRecursive(ws)
	if err != nil {
		return WalletShare{}, WalletShare{}, err
	}

	if len(privateShares) != len(cleartext) {
		return WalletShare{}, WalletShare{}, fmt.Errorf(
			"SplitPublicPrivate: got %d private shares, expected %d", len(privateShares), len(cleartext),
		)
	}

	publicScalars := make([]Scalar, len(cleartext))
	for i := range privateShares {
		diff := cleartext[i].Sub(privateShares[i])
		publicScalars[i] = diff.Add(blinder)
	}

	var privateShare, publicShare WalletShare
	if err := FromScalarsRecursive(&privateShare, NewScalarIterator(privateShares)); err != nil {
		return WalletShare{}, WalletShare{}, err
	}
	if err := FromScalarsRecursive(&publicShare, NewScalarIterator(publicScalars)); err != nil {
		return WalletShare{}, WalletShare{}, err
	}

	return privateShare, publicShare, nil
}

// CombineShares reconstructs the wallet share whose public/private split
// produced publicShare and privateShare under the given blinder.
func CombineShares(publicShare, privateShare WalletShare, blinder Scalar) (WalletShare, error) {
	publicScalars, err := ToScalarsRecursive(&publicShare)
	if err != nil {
		return WalletShare{}, err
	}

	privateScalars, err := ToScalarsRecursive(&privateShare)
	if err != nil {
		return WalletShare{}, err
	}

	combined := make([]Scalar, len(publicScalars))
	for i := range publicScalars {
		sum := publicScalars[i].Add(privateScalars[i])
		combined[i] = sum.Sub(blinder)
	}

	var out WalletShare
	if err := FromScalarsRecursive(&out, NewScalarIterator(combined)); err != nil {
		return WalletShare{}, err
	}

	return out, nil
}

// Wallet is the engine's in-memory view of a wallet: its cleartext metadata
// (orders, balances, keychain) alongside the secret-share pair and blinder that
// back its on-chain commitment.
type Wallet struct {
	Id                  uuid.UUID //nolint:revive
	Orders              []Order
	Balances            []Balance
	Keychain            *Keychain
	ManagingCluster     FeeEncryptionKey
	MatchFee            FixedPoint
	BlindedPublicShares WalletShare
	PrivateShares       WalletShare
	Blinder             Scalar
}

// NewEmptyWallet derives a wallet's secrets from an Ethereum key and constructs
// its initial, balance- and order-free state.
func NewEmptyWallet(ethKey *ecdsa.PrivateKey, chainID uint64) (*Wallet, error) {
	secrets, err := DeriveWalletSecrets(ethKey, chainID)
	if err != nil {
		return nil, err
	}

	return NewEmptyWalletFromSecrets(secrets)
}

// NewEmptyWalletFromSecrets constructs a fresh, empty wallet from previously
// derived secrets, sampling its first share set and blinder from the seeds.
func NewEmptyWalletFromSecrets(secrets *WalletSecrets) (*Wallet, error) {
	cleartext, err := EmptyWalletShare(secrets.Keychain.PublicKeys)
	if err != nil {
		return nil, err
	}

	privateShare, publicShare, blinder, err := deriveNextShareSet(cleartext, secrets.ShareSeed, secrets.BlinderSeed)
	if err != nil {
		return nil, err
	}

	return &Wallet{
		Id:       secrets.Id,
		Orders:   make([]Order, 0),
		Balances: make([]Balance, 0),
		Keychain: secrets.Keychain,
		// The managing relayer sets these once the wallet is placed under management.
		ManagingCluster:     cleartext.ManagingCluster,
		MatchFee:            cleartext.MatchFee,
		BlindedPublicShares: publicShare,
		PrivateShares:       privateShare,
		Blinder:             blinder,
	}, nil
}

// deriveNextShareSet evaluates the protocol's share-derivation hash chain to
// produce the next (private share, public share, blinder) triple for existing:
// the bulk of the new private shares comes from a chain seeded by
// shareStreamSeed, and the new blinder pair from an independent chain seeded
// by blinderSeed. This partition is protocol-observable; both chains must
// match the contract's derivation exactly.
func deriveNextShareSet(existing WalletShare, shareStreamSeed, blinderSeed Scalar) (
	privateShare, publicShare WalletShare, blinder Scalar, err error,
) {
	newBlinder, newBlinderPrivateShare := nextBlinderPair(blinderSeed)
	newPrivateScalars := nextShareScalars(shareStreamSeed)

	privateShare, publicShare, err = existing.SplitPublicPrivate(newPrivateScalars, newBlinder)
	if err != nil {
		return WalletShare{}, WalletShare{}, Scalar{}, err
	}

	privateShare.Blinder = newBlinderPrivateShare
	publicShare.Blinder = newBlinder.Sub(newBlinderPrivateShare)
	return privateShare, publicShare, newBlinder, nil
}

// nextShareScalars evaluates the wallet's private-share hash chain, seeded by
// the previous private share stream, yielding one fresh scalar per slot of a
// WalletShare.
func nextShareScalars(seed Scalar) []Scalar {
	elts := chaincrypto.EvaluateHashChain(fr.Element(seed), numScalarsWalletShare)

	scalars := make([]Scalar, len(elts))
	for i, elt := range elts {
		scalars[i] = Scalar(elt)
	}
	return scalars
}

// nextBlinderPair evaluates the two-element blinder hash chain seeded by the
// previous blinder private share, yielding (new_blinder, new_blinder_private_share).
func nextBlinderPair(seed Scalar) (blinder, blinderPrivateShare Scalar) {
	elts := chaincrypto.EvaluateHashChain(fr.Element(seed), 2)
	return Scalar(elts[0]), Scalar(elts[1])
}

// GetShareCommitment computes the wallet's full commitment: the private-share
// commitment hashed together with the blinded public shares.
func (w *Wallet) GetShareCommitment() (Scalar, error) {
	privateCommitment, err := w.GetPrivateShareCommitment()
	if err != nil {
		return Scalar{}, err
	}

	publicShares, err := ToScalarsRecursive(&w.BlindedPublicShares)
	if err != nil {
		return Scalar{}, err
	}

	return HashScalars(append([]Scalar{privateCommitment}, publicShares...)), nil
}

// GetPrivateShareCommitment computes a commitment to the wallet's private shares
// alone.
func (w *Wallet) GetPrivateShareCommitment() (Scalar, error) {
	privateShares, err := ToScalarsRecursive(&w.PrivateShares)
	if err != nil {
		return Scalar{}, err
	}

	return HashScalars(privateShares), nil
}

// SignCommitment signs a commitment scalar with the wallet's root signing key,
// authorizing the state transition that produced it.
func (w *Wallet) SignCommitment(commitment Scalar) ([]byte, error) {
	signingKey := ecdsa.PrivateKey(*w.Keychain.SkRoot())
	digest := crypto.Keccak256(commitment.ToBigInt().Bytes())
	return crypto.Sign(digest, &signingKey)
}

// Reblind advances the wallet to its next share set and blinder, deterministically
// derived from the current private shares via the share-derivation hash chain. The
// wallet's cleartext contents (orders, balances, keys) are unchanged; only the
// secret-share pair and blinder move forward.
func (w *Wallet) Reblind() error {
	currentPrivateScalars, err := ToScalarsRecursive(&w.PrivateShares)
	if err != nil {
		return err
	}

	// The bulk of the new private shares is seeded by the second-to-last slot
	// of the current private shares, and the new blinder pair by the current
	// blinder's private share - not the bulk seed.
	shareStreamSeed := currentPrivateScalars[len(currentPrivateScalars)-2]

	cleartext := w.currentCleartextShare()

	privateShare, publicShare, blinder, err := deriveNextShareSet(cleartext, shareStreamSeed, w.PrivateShares.Blinder)
	if err != nil {
		return err
	}

	w.PrivateShares = privateShare
	w.BlindedPublicShares = publicShare
	w.Blinder = blinder
	return nil
}

// currentCleartextShare reassembles the wallet's current on-chain-visible
// contents (balances, orders, keys, fee config and blinder) as a WalletShare,
// the cleartext template Reblind re-splits into the next share pair.
func (w *Wallet) currentCleartextShare() WalletShare {
	var share WalletShare

	for i, balance := range w.Balances {
		if i >= MaxBalances {
			break
		}
		share.Balances[i] = balance
	}

	for i, order := range w.Orders {
		if i >= MaxOrders {
			break
		}
		share.Orders[i] = order
	}

	share.Keys = w.Keychain.PublicKeys
	share.MatchFee = w.MatchFee
	share.ManagingCluster = w.ManagingCluster
	share.Blinder = w.Blinder

	return share
}
