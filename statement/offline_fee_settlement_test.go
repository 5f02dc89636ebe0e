package statement

import (
	"crypto/ecdsa"
	"crypto/rand"
	"testing"

	"github.com/ethereum/go-ethereum/crypto/secp256k1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renegade-fi/wallet-engine/fees"
	"github.com/renegade-fi/wallet-engine/wallet"
)

func testWalletPair(t *testing.T) (*wallet.Wallet, *wallet.Wallet) {
	t.Helper()

	key, err := ecdsa.GenerateKey(secp256k1.S256(), rand.Reader)
	require.NoError(t, err)

	oldWallet, err := wallet.NewEmptyWallet(key, 1 /* chainId */)
	require.NoError(t, err)

	newWallet, err := wallet.NewEmptyWallet(key, 1 /* chainId */)
	require.NoError(t, err)
	require.NoError(t, newWallet.Reblind())

	return oldWallet, newWallet
}

// TestBuildOfflineFeeSettlementConsistency checks the statement presents
// exactly the public inputs the circuit will verify against the witness: the
// old wallet's nullifier, the new wallet's commitment and public shares, and
// a merkle root recomputed from the opening over the old commitment.
func TestBuildOfflineFeeSettlementConsistency(t *testing.T) {
	oldWallet, newWallet := testWalletPair(t)

	var mint wallet.Address
	mint[19] = 3
	note, err := fees.NewNote(mint, wallet.NewAmountFromUint64(25), wallet.FeeEncryptionKey{})
	require.NoError(t, err)
	encrypted, err := fees.EncryptNote(&note)
	require.NoError(t, err)

	opening := wallet.MerkleOpening{}
	protocolKey := wallet.FeeEncryptionKey{}

	stmt, witness, err := BuildOfflineFeeSettlement(
		oldWallet, newWallet, note, encrypted, encrypted.EncryptionRandomness,
		opening, protocolKey, true /* isProtocolFee */, 0, /* sendIndex */
	)
	require.NoError(t, err)

	expectedNullifier, err := oldWallet.Nullifier()
	require.NoError(t, err)
	assert.Equal(t, expectedNullifier, stmt.Nullifier)

	expectedNewCommitment, err := newWallet.ShareCommitment()
	require.NoError(t, err)
	assert.Equal(t, expectedNewCommitment, stmt.NewWalletCommitment)

	// An empty opening's root is the leaf itself: the old wallet's commitment.
	oldCommitment, err := oldWallet.ShareCommitment()
	require.NoError(t, err)
	expectedRoot := wallet.Scalar(oldCommitment)
	assert.True(t, stmt.MerkleRoot.Equal(&expectedRoot))

	expectedNoteCommitment := note.Commitment()
	assert.True(t, stmt.NoteCommitment.Equal(&expectedNoteCommitment))
	assert.Equal(t, newWallet.BlindedPublicShares, stmt.UpdatedWalletPublicShares)
	assert.True(t, stmt.IsProtocolFee)

	assert.Equal(t, oldWallet.PrivateShares, witness.OriginalWalletPrivateShares)
	assert.Equal(t, newWallet.PrivateShares, witness.UpdatedWalletPrivateShares)
	assert.Equal(t, note, witness.Note)
	assert.Equal(t, 0, witness.SendIndex)
}
