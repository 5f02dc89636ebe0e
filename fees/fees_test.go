package fees

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renegade-fi/wallet-engine/crypto"
	"github.com/renegade-fi/wallet-engine/wallet"
)

func testMint() wallet.Address {
	var mint wallet.Address
	mint[19] = 7
	return mint
}

func TestComputeFeeTake(t *testing.T) {
	rates := FeeTakeRate{
		RelayerFeeRate:  wallet.FixedPointFromFloat(0.05),
		ProtocolFeeRate: wallet.FixedPointFromFloat(0.02),
	}

	take := rates.ComputeFeeTake(wallet.NewAmountFromUint64(100))
	assert.Equal(t, 0, take.RelayerFee.Cmp(wallet.NewAmountFromUint64(5)))
	assert.Equal(t, 0, take.ProtocolFee.Cmp(wallet.NewAmountFromUint64(2)))
	assert.Equal(t, 0, take.Total().Cmp(wallet.NewAmountFromUint64(7)))
}

func TestComputeFeeTakeFloors(t *testing.T) {
	rates := FeeTakeRate{
		RelayerFeeRate: wallet.FixedPointFromFloat(0.05),
	}

	// 5% of 19 is 0.95, floored to zero
	take := rates.ComputeFeeTake(wallet.NewAmountFromUint64(19))
	assert.True(t, take.RelayerFee.IsZero())
	assert.True(t, take.ProtocolFee.IsZero())
}

func TestNoteCommitmentDeterministic(t *testing.T) {
	note, err := NewNote(testMint(), wallet.NewAmountFromUint64(42), wallet.FeeEncryptionKey{})
	require.NoError(t, err)

	c1 := note.Commitment()
	c2 := note.Commitment()
	assert.True(t, c1.Equal(&c2))

	// A different blinder yields a different commitment
	other, err := NewNote(testMint(), wallet.NewAmountFromUint64(42), wallet.FeeEncryptionKey{})
	require.NoError(t, err)
	otherCommitment := other.Commitment()
	assert.False(t, c1.Equal(&otherCommitment))
}

func TestNoteNullifierBindsCommitmentAndBlinder(t *testing.T) {
	note, err := NewNote(testMint(), wallet.NewAmountFromUint64(10), wallet.FeeEncryptionKey{})
	require.NoError(t, err)

	n1 := NoteNullifier(note)
	n2 := NoteNullifier(note)
	assert.Equal(t, n1, n2)

	other := note
	blinder, err := wallet.RandomScalar()
	require.NoError(t, err)
	other.Blinder = blinder
	assert.NotEqual(t, n1, NoteNullifier(other))
}

func TestEncryptNote(t *testing.T) {
	note, err := NewNote(testMint(), wallet.NewAmountFromUint64(42), wallet.FeeEncryptionKey{})
	require.NoError(t, err)

	encrypted, err := EncryptNote(&note)
	require.NoError(t, err)
	require.Len(t, encrypted.Ciphertext, 3)
	assert.False(t, encrypted.EncryptionRandomness.IsZero())

	// Fresh randomness per encryption: two ciphertexts of the same note differ
	again, err := EncryptNote(&note)
	require.NoError(t, err)
	assert.NotEqual(t, encrypted.Ciphertext, again.Ciphertext)

	// The ciphertext is the plaintext plus the keystream: re-deriving the
	// keystream from the key and randomness strips the mask exactly.
	keystreamSeed := wallet.HashScalars([]wallet.Scalar{
		note.Receiver.X,
		note.Receiver.Y,
		encrypted.EncryptionRandomness,
	})
	keystream := crypto.EvaluateHashChain(fr.Element(keystreamSeed), 3)

	plaintext := []wallet.Scalar{note.Mint.ToScalar(), note.Amount.ToScalar(), note.Blinder}
	for i, expected := range plaintext {
		mask := wallet.Scalar(keystream[i])
		recovered := encrypted.Ciphertext[i].Sub(mask)
		assert.True(t, recovered.Equal(&expected), "slot %d did not decrypt", i)
	}

	mintScalar := note.Mint.ToScalar()
	assert.False(t, encrypted.Ciphertext[0].Equal(&mintScalar), "ciphertext must not leak the plaintext mint")
}
