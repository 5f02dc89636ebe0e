package wallet

import (
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/crypto/secp256k1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountJSONRoundTrip(t *testing.T) {
	original := NewAmountFromUint64(123456789)

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Amount
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 0, original.Cmp(decoded))
}

func TestAmountJSONRejectsOutOfRange(t *testing.T) {
	// 2^128 exceeds the amount bound
	var decoded Amount
	err := json.Unmarshal([]byte(`"340282366920938463463374607431768211456"`), &decoded)
	require.Error(t, err)
}

func TestKeychainJSONRoundTrip(t *testing.T) {
	privateKey, err := ecdsa.GenerateKey(secp256k1.S256(), rand.Reader)
	require.NoError(t, err)

	keychain, err := DeriveKeychain(privateKey, 1 /* chainId */)
	require.NoError(t, err)

	data, err := json.Marshal(keychain)
	require.NoError(t, err)

	var decoded Keychain
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, 0, keychain.PublicKeys.PkRoot.X.Cmp(decoded.PublicKeys.PkRoot.X))
	assert.Equal(t, 0, keychain.PublicKeys.PkRoot.Y.Cmp(decoded.PublicKeys.PkRoot.Y))
	assert.Equal(t, 0, keychain.PrivateKeys.SkRoot.D.Cmp(decoded.PrivateKeys.SkRoot.D))
	require.NotNil(t, decoded.PrivateKeys.SkRoot.Curve, "decoded private key must be usable for signing")
	assert.True(t, keychain.PrivateKeys.SkMatch.Equal(&decoded.PrivateKeys.SkMatch))
}

// TestWalletJSONRoundTrip checks that a wallet survives the store's JSON
// encoding with its commitment intact, the property the persistence layer
// depends on.
func TestWalletJSONRoundTrip(t *testing.T) {
	privateKey, err := ecdsa.GenerateKey(secp256k1.S256(), rand.Reader)
	require.NoError(t, err)

	w, err := NewEmptyWallet(privateKey, 1 /* chainId */)
	require.NoError(t, err)

	originalCommitment, err := w.GetShareCommitment()
	require.NoError(t, err)

	data, err := json.Marshal(w)
	require.NoError(t, err)

	var decoded Wallet
	require.NoError(t, json.Unmarshal(data, &decoded))

	decodedCommitment, err := decoded.GetShareCommitment()
	require.NoError(t, err)
	assert.True(t, originalCommitment.Equal(&decodedCommitment))
	assert.True(t, w.Blinder.Equal(&decoded.Blinder))

	// The decoded wallet must still be able to sign and reblind.
	_, err = decoded.SignCommitment(decodedCommitment)
	require.NoError(t, err)
	require.NoError(t, decoded.Reblind())
}
