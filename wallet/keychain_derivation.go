package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/crypto/secp256k1"
	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"
)

// Every key, seed and identifier the engine needs for a wallet is derived from a
// deterministic Ethereum signature, under the owning Ethereum key, over a fixed,
// chain-scoped, purpose-specific message, so that two independent derivations from
// the same Ethereum key on the same chain always agree, without the wallet owner
// storing more than one secret.
const (
	rootDerivationMessage    = "derive wallet-engine root key"
	walletIDMessage          = "derive wallet id"
	matchKeyDerivationMsg    = "derive wallet-engine match key"
	symmetricKeyDerivation   = "derive wallet-engine symmetric key"
	blinderSeedDerivationMsg = "derive wallet-engine blinder seed"
	shareSeedDerivationMsg   = "derive wallet-engine share seed"
)

// DeriveKeychain derives a wallet's full keychain (signing, match and symmetric
// keys, public and private) from an Ethereum private key, scoped to a chain ID so
// the same Ethereum key yields independent keychains per chain.
func DeriveKeychain(ethKey *ecdsa.PrivateKey, chainID uint64) (*Keychain, error) {
	rootKey, err := deriveRootSigningKey(ethKey, chainID)
	if err != nil {
		return nil, fmt.Errorf("deriving root signing key: %w", err)
	}

	matchKey, err := deriveDomainScalar(ethKey, chainID, matchKeyDerivationMsg)
	if err != nil {
		return nil, fmt.Errorf("deriving match key: %w", err)
	}

	symmetricKeyBytes, err := signDomainMessage(ethKey, chainID, symmetricKeyDerivation)
	if err != nil {
		return nil, fmt.Errorf("deriving symmetric key: %w", err)
	}

	var symmetricKey HmacKey
	copy(symmetricKey[:], symmetricKeyBytes)

	pkRoot := PublicSigningKey(rootKey.PublicKey)
	privSkRoot := PrivateSigningKey(*rootKey)

	return &Keychain{
		PublicKeys: PublicKeychain{
			PkRoot: pkRoot,
			// The real protocol derives PkMatch as a Baby Jubjub scalar multiple of
			// SkMatch inside the proof system; that curve arithmetic is out of scope
			// here, so the engine stands in a Poseidon commitment to the match key as
			// its deterministic public counterpart.
			PkMatch: HashScalars([]Scalar{matchKey}),
		},
		PrivateKeys: PrivateKeychain{
			SkRoot:       &privSkRoot,
			SkMatch:      matchKey,
			SymmetricKey: symmetricKey,
		},
	}, nil
}

// DeriveWalletID derives a wallet's UUID deterministically from its owning
// Ethereum key and chain ID.
func DeriveWalletID(ethKey *ecdsa.PrivateKey, chainID uint64) (uuid.UUID, error) {
	digest, err := signDomainMessage(ethKey, chainID, walletIDMessage)
	if err != nil {
		return uuid.UUID{}, err
	}

	return uuid.FromBytes(digest[:16])
}

// DeriveWalletSeeds derives the two CSPRNG seeds a freshly created wallet uses to
// sample its initial blinder and private secret shares.
func DeriveWalletSeeds(ethKey *ecdsa.PrivateKey, chainID uint64) (blinderSeed, shareSeed Scalar, err error) {
	blinderSeed, err = deriveDomainScalar(ethKey, chainID, blinderSeedDerivationMsg)
	if err != nil {
		return Scalar{}, Scalar{}, fmt.Errorf("deriving blinder seed: %w", err)
	}

	shareSeed, err = deriveDomainScalar(ethKey, chainID, shareSeedDerivationMsg)
	if err != nil {
		return Scalar{}, Scalar{}, fmt.Errorf("deriving share seed: %w", err)
	}

	return blinderSeed, shareSeed, nil
}

// deriveRootSigningKey signs the chain-scoped root derivation message and reduces
// the resulting signature into a secp256k1 scalar, yielding the wallet's signing
// key (sk_root).
func deriveRootSigningKey(ethKey *ecdsa.PrivateKey, chainID uint64) (*ecdsa.PrivateKey, error) {
	extended, err := extendedSignatureBytes(ethKey, []byte(fmt.Sprintf("%s on chain %d", rootDerivationMessage, chainID)))
	if err != nil {
		return nil, err
	}

	return secp256k1KeyFromExtendedBytes(extended)
}

// deriveDomainScalar signs a chain-scoped domain message under ethKey and reduces
// the signature into a bn254 scalar.
func deriveDomainScalar(ethKey *ecdsa.PrivateKey, chainID uint64, domain string) (Scalar, error) {
	extended, err := extendedSignatureBytes(ethKey, []byte(fmt.Sprintf("%s on chain %d", domain, chainID)))
	if err != nil {
		return Scalar{}, err
	}

	var elt fr.Element
	elt.SetBytes(extended)
	return Scalar(elt), nil
}

// signDomainMessage signs a chain-scoped domain message and returns the
// keccak256 digest of the signature.
func signDomainMessage(ethKey *ecdsa.PrivateKey, chainID uint64, domain string) ([]byte, error) {
	message := []byte(fmt.Sprintf("%s on chain %d", domain, chainID))
	signature, err := gethcrypto.Sign(keccak256(message), ethKey)
	if err != nil {
		return nil, err
	}

	return keccak256(signature), nil
}

// extendedSignatureBytes signs message under ethKey and extends the resulting
// keccak256 digest to 64 bytes, giving enough entropy to reduce uniformly into a
// 256-bit scalar field.
func extendedSignatureBytes(ethKey *ecdsa.PrivateKey, message []byte) ([]byte, error) {
	signature, err := gethcrypto.Sign(keccak256(message), ethKey)
	if err != nil {
		return nil, err
	}

	digest := keccak256(signature)

	extended := make([]byte, 64)
	copy(extended[:32], digest)
	copy(extended[32:], keccak256(digest))
	return extended, nil
}

// secp256k1KeyFromExtendedBytes reduces a 64-byte buffer modulo the secp256k1
// group order to construct a private key.
func secp256k1KeyFromExtendedBytes(extended []byte) (*ecdsa.PrivateKey, error) {
	if len(extended) != 64 {
		return nil, fmt.Errorf("secp256k1KeyFromExtendedBytes: expected 64 bytes, got %d", len(extended))
	}

	curve := secp256k1.S256()
	reduced := new(big.Int).SetBytes(extended)
	reduced.Mod(reduced, curve.Params().N)

	key := new(ecdsa.PrivateKey)
	key.PublicKey.Curve = curve
	key.D = reduced
	key.PublicKey.X, key.PublicKey.Y = curve.ScalarBaseMult(reduced.Bytes())
	return key, nil
}

// keccak256 hashes data with Keccak-256.
func keccak256(data []byte) []byte {
	hash := sha3.NewLegacyKeccak256()
	hash.Write(data)
	return hash.Sum(nil)
}
