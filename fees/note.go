package fees

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/renegade-fi/wallet-engine/crypto"
	"github.com/renegade-fi/wallet-engine/wallet"
)

// Note is a fee payment note: a commitment to a fee amount owed to either the
// protocol or a wallet's managing relayer cluster, encrypted under that party's fee
// encryption key so that only the fee recipient can later redeem it.
type Note struct {
	// Mint is the token the fee is denominated in
	Mint wallet.Address
	// Amount is the fee amount accrued
	Amount wallet.Amount
	// Receiver is the fee encryption key of the note's recipient
	Receiver wallet.FeeEncryptionKey
	// Blinder blinds the note's commitment, sampled fresh per note
	Blinder wallet.Scalar
}

// NewNote constructs a note for the given mint, amount and recipient, sampling a
// fresh blinder.
func NewNote(mint wallet.Address, amount wallet.Amount, receiver wallet.FeeEncryptionKey) (Note, error) {
	blinder, err := wallet.RandomScalar()
	if err != nil {
		return Note{}, err
	}

	return Note{
		Mint:     mint,
		Amount:   amount,
		Receiver: receiver,
		Blinder:  blinder,
	}, nil
}

// Commitment computes a Poseidon hash commitment to the note. The field
// order matches the fee settlement circuits' note hashing exactly.
func (n *Note) Commitment() wallet.Scalar {
	scalars := []wallet.Scalar{
		n.Mint.ToScalar(),
		n.Amount.ToScalar(),
		n.Receiver.X,
		n.Receiver.Y,
		n.Blinder,
	}

	return wallet.HashScalars(scalars)
}

// NoteNullifier computes the nullifier that a fee redemption proof spends,
// preventing the same note from being redeemed twice: the same
// commit-then-nullify pattern the wallet package uses for wallet shares, with
// the note's own blinder standing in for the wallet's private share.
func NoteNullifier(n Note) wallet.Nullifier {
	return wallet.Nullifier(wallet.HashScalars([]wallet.Scalar{n.Commitment(), n.Blinder}))
}

// EncryptedNote is a note's ciphertext along with the randomness used to encrypt it
type EncryptedNote struct {
	Ciphertext          []wallet.Scalar
	EncryptionRandomness wallet.Scalar
}

// EncryptNote encrypts a note under its receiver's fee encryption key. The engine
// does not implement the El Gamal-style encryption the real protocol performs over
// the Baby Jubjub curve (that lives in the proof system, out of scope per the
// engine's non-goals); instead it derives a keystream from a fresh randomness
// scalar hashed together with the receiver's public key, the same "hash then
// additively mask" shape the wallet package already uses for reblinding.
func EncryptNote(note *Note) (EncryptedNote, error) {
	randomness, err := wallet.RandomScalar()
	if err != nil {
		return EncryptedNote{}, err
	}

	keystreamSeed := wallet.HashScalars([]wallet.Scalar{
		note.Receiver.X,
		note.Receiver.Y,
		randomness,
	})
	keystream := crypto.EvaluateHashChain(fr.Element(keystreamSeed), 3)

	plaintext := []wallet.Scalar{
		note.Mint.ToScalar(),
		note.Amount.ToScalar(),
		note.Blinder,
	}

	ciphertext := make([]wallet.Scalar, len(plaintext))
	for i, p := range plaintext {
		mask := wallet.Scalar(keystream[i])
		ciphertext[i] = p.Add(mask)
	}

	return EncryptedNote{
		Ciphertext:           ciphertext,
		EncryptionRandomness: randomness,
	}, nil
}
