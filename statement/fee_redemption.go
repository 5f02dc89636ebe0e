package statement

import (
	"github.com/renegade-fi/wallet-engine/fees"
	"github.com/renegade-fi/wallet-engine/wallet"
)

// FeeRedemptionStatement is the public-input side of a redeemFee call: proof that
// a previously paid offline fee note decrypts under the caller's fee key and that
// its value has been credited into the caller's wallet as spendable balance.
type FeeRedemptionStatement struct {
	MerkleRoot            wallet.Scalar
	WalletNullifier       wallet.Nullifier
	NoteCommitment        wallet.Scalar
	NoteNullifier         wallet.Nullifier
	NewWalletCommitment   wallet.Commitment
	NewWalletPublicShares wallet.WalletShare
	RecipientKey          wallet.FeeEncryptionKey
}

// FeeRedemptionWitness is the private side of a redeemFee call.
type FeeRedemptionWitness struct {
	Note                        fees.Note
	NoteCiphertext              fees.EncryptedNote
	EncryptionRandomness        wallet.Scalar
	RecipientSecretKey          wallet.Scalar
	OriginalWalletPublicShares  wallet.WalletShare
	OriginalWalletPrivateShares wallet.WalletShare
	NewWalletPrivateShares      wallet.WalletShare
	MerkleOpening               wallet.MerkleOpening
	ReceiveIndex                int
}

// BuildFeeRedemption assembles the (statement, witness) pair for redeeming an
// offline fee note into newWallet, the redeemer's wallet with the note's value
// already credited to the matching balance. opening is oldWallet's existing
// merkle opening, authorizing the wallet update the same way a plain wallet
// update does.
func BuildFeeRedemption(
	note fees.Note,
	noteCiphertext fees.EncryptedNote,
	encryptionRandomness wallet.Scalar,
	noteNullifier wallet.Nullifier,
	recipientSecretKey wallet.Scalar,
	oldWallet *wallet.Wallet,
	newWallet *wallet.Wallet,
	opening wallet.MerkleOpening,
	receiveIndex int,
) (FeeRedemptionStatement, FeeRedemptionWitness, error) {
	walletNullifier, err := oldWallet.Nullifier()
	if err != nil {
		return FeeRedemptionStatement{}, FeeRedemptionWitness{}, err
	}

	oldCommitment, err := oldWallet.ShareCommitment()
	if err != nil {
		return FeeRedemptionStatement{}, FeeRedemptionWitness{}, err
	}

	newCommitment, err := newWallet.ShareCommitment()
	if err != nil {
		return FeeRedemptionStatement{}, FeeRedemptionWitness{}, err
	}

	statement := FeeRedemptionStatement{
		MerkleRoot:            opening.ComputeRoot(wallet.Scalar(oldCommitment)),
		WalletNullifier:       walletNullifier,
		NoteCommitment:        note.Commitment(),
		NoteNullifier:         noteNullifier,
		NewWalletCommitment:   wallet.Commitment(newCommitment),
		NewWalletPublicShares: newWallet.BlindedPublicShares,
		RecipientKey:          note.Receiver,
	}

	witness := FeeRedemptionWitness{
		Note:                        note,
		NoteCiphertext:              noteCiphertext,
		EncryptionRandomness:        encryptionRandomness,
		RecipientSecretKey:          recipientSecretKey,
		OriginalWalletPublicShares:  oldWallet.BlindedPublicShares,
		OriginalWalletPrivateShares: oldWallet.PrivateShares,
		NewWalletPrivateShares:      newWallet.PrivateShares,
		MerkleOpening:               opening,
		ReceiveIndex:                receiveIndex,
	}

	return statement, witness, nil
}
