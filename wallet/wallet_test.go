package wallet

import (
	"crypto/ecdsa"
	"crypto/rand"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/crypto/secp256k1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chaincrypto "github.com/renegade-fi/wallet-engine/crypto"
)

func randomEthKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(secp256k1.S256(), rand.Reader)
	require.NoError(t, err)
	return key
}

func TestScalarHexRoundTrip(t *testing.T) {
	original, err := RandomScalar()
	require.NoError(t, err)

	var recovered Scalar
	_, err = recovered.FromHexString(original.ToHexString())
	assert.NoError(t, err)
	assert.Equal(t, original, recovered)
}

func TestScalarBigIntRoundTrip(t *testing.T) {
	original, err := RandomScalar()
	require.NoError(t, err)

	var recovered Scalar
	recovered.FromBigInt(original.ToBigInt())
	assert.Equal(t, original, recovered)
}

func TestNewEmptyWalletFromEthKey(t *testing.T) {
	wallet, err := NewEmptyWallet(randomEthKey(t), 1 /* chainID */)
	require.NoError(t, err)

	assert.Empty(t, wallet.Orders)
	assert.Empty(t, wallet.Balances)
}

func TestNewEmptyWalletDeterministic(t *testing.T) {
	key := randomEthKey(t)

	w1, err := NewEmptyWallet(key, 42)
	require.NoError(t, err)
	w2, err := NewEmptyWallet(key, 42)
	require.NoError(t, err)

	assert.Equal(t, w1.Id, w2.Id)
	assert.Equal(t, w1.Blinder, w2.Blinder)
	assert.Equal(t, w1.PrivateShares, w2.PrivateShares)
}

func TestReblindChangesSharesNotContents(t *testing.T) {
	w, err := NewEmptyWallet(randomEthKey(t), 1)
	require.NoError(t, err)

	oldBlinder := w.Blinder
	oldPrivate := w.PrivateShares
	oldNullifier, err := w.Nullifier()
	require.NoError(t, err)

	require.NoError(t, w.Reblind())

	assert.NotEqual(t, oldBlinder, w.Blinder)
	assert.NotEqual(t, oldPrivate, w.PrivateShares)
	assert.Empty(t, w.Orders)
	assert.Empty(t, w.Balances)

	newNullifier, err := w.Nullifier()
	require.NoError(t, err)
	assert.NotEqual(t, oldNullifier, newNullifier)
}

// TestReblindFollowsHashChainPartition pins the protocol-observable hash
// chain layout: the bulk of the new private shares comes from a chain seeded
// by the second-to-last slot of the old private shares, and the new blinder
// pair from an independent chain seeded by the old blinder private share.
// Any deviation here breaks proof compatibility with the contract.
func TestReblindFollowsHashChainPartition(t *testing.T) {
	w, err := NewEmptyWallet(randomEthKey(t), 1)
	require.NoError(t, err)

	oldPrivate, err := ToScalarsRecursive(&w.PrivateShares)
	require.NoError(t, err)
	shareSeed := oldPrivate[len(oldPrivate)-2]
	blinderSeed := oldPrivate[len(oldPrivate)-1]

	require.NoError(t, w.Reblind())

	newPrivate, err := ToScalarsRecursive(&w.PrivateShares)
	require.NoError(t, err)
	_, err = ToScalarsRecursive(&w.BlindedPublicShares)
	require.NoError(t, err)

	shareChain := chaincrypto.EvaluateHashChain(fr.Element(shareSeed), numScalarsWalletShare)
	for i := 0; i < len(newPrivate)-1; i++ {
		expected := Scalar(shareChain[i])
		assert.True(t, newPrivate[i].Equal(&expected), "private share %d does not follow the share chain", i)
	}

	blinderChain := chaincrypto.EvaluateHashChain(fr.Element(blinderSeed), 2)
	newBlinder := Scalar(blinderChain[0])
	newBlinderPrivateShare := Scalar(blinderChain[1])
	assert.True(t, w.Blinder.Equal(&newBlinder))
	assert.True(t, w.PrivateShares.Blinder.Equal(&newBlinderPrivateShare))

	expectedPublicBlinder := newBlinder.Sub(newBlinderPrivateShare)
	assert.True(t, w.BlindedPublicShares.Blinder.Equal(&expectedPublicBlinder))

	// Reconstruction: for every non-blinder slot, public = cleartext - private
	// + blinder; an empty wallet's cleartext is zero outside the key slots.
	cleartext, err := CombineShares(w.BlindedPublicShares, w.PrivateShares, w.Blinder)
	require.NoError(t, err)
	assert.Equal(t, w.Keychain.PublicKeys, cleartext.Keys)
	for i := range cleartext.Balances {
		assert.True(t, cleartext.Balances[i].Amount.IsZero())
	}
}

// TestReblindDeterministic checks that two independent evaluations of the
// same reblind produce identical shares and blinder.
func TestReblindDeterministic(t *testing.T) {
	key := randomEthKey(t)

	w1, err := NewEmptyWallet(key, 7)
	require.NoError(t, err)
	w2, err := NewEmptyWallet(key, 7)
	require.NoError(t, err)

	require.NoError(t, w1.Reblind())
	require.NoError(t, w2.Reblind())

	assert.Equal(t, w1.Blinder, w2.Blinder)
	assert.Equal(t, w1.PrivateShares, w2.PrivateShares)
	assert.Equal(t, w1.BlindedPublicShares, w2.BlindedPublicShares)
}
