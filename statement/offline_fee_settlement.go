// Package statement defines the (statement, witness) pairs the engine assembles
// for each settlement circuit. Statements carry the public inputs a proof
// generator and the darkpool contract verify; witnesses carry the prover's
// private data and never leave the engine.
package statement

import (
	"github.com/renegade-fi/wallet-engine/fees"
	"github.com/renegade-fi/wallet-engine/wallet"
)

// OfflineFeeSettlementStatement is the public-input side of a settleOfflineFee
// call. Field order matches VALID OFFLINE FEE SETTLEMENT's public inputs.
type OfflineFeeSettlementStatement struct {
	MerkleRoot                wallet.Scalar
	Nullifier                 wallet.Nullifier
	NewWalletCommitment       wallet.Commitment
	UpdatedWalletPublicShares wallet.WalletShare
	NoteCiphertext            fees.EncryptedNote
	NoteCommitment            wallet.Scalar
	ProtocolKey               wallet.FeeEncryptionKey
	IsProtocolFee             bool
}

// OfflineFeeSettlementWitness is the private side of a settleOfflineFee call.
type OfflineFeeSettlementWitness struct {
	OriginalWalletPublicShares  wallet.WalletShare
	OriginalWalletPrivateShares wallet.WalletShare
	UpdatedWalletPrivateShares  wallet.WalletShare
	MerkleOpening               wallet.MerkleOpening
	Note                        fees.Note
	EncryptionRandomness        wallet.Scalar
	SendIndex                   int
}

// BuildOfflineFeeSettlement assembles the (statement, witness) pair for paying a fee
// balance off-chain to its owner's encryption key. oldWallet is the wallet as it sits
// in the tree; newWallet is oldWallet reblinded with the fee balance already zeroed.
func BuildOfflineFeeSettlement(
	oldWallet *wallet.Wallet,
	newWallet *wallet.Wallet,
	note fees.Note,
	noteCiphertext fees.EncryptedNote,
	encryptionRandomness wallet.Scalar,
	opening wallet.MerkleOpening,
	protocolKey wallet.FeeEncryptionKey,
	isProtocolFee bool,
	sendIndex int,
) (OfflineFeeSettlementStatement, OfflineFeeSettlementWitness, error) {
	nullifier, err := oldWallet.Nullifier()
	if err != nil {
		return OfflineFeeSettlementStatement{}, OfflineFeeSettlementWitness{}, err
	}

	oldCommitment, err := oldWallet.ShareCommitment()
	if err != nil {
		return OfflineFeeSettlementStatement{}, OfflineFeeSettlementWitness{}, err
	}

	newCommitment, err := newWallet.ShareCommitment()
	if err != nil {
		return OfflineFeeSettlementStatement{}, OfflineFeeSettlementWitness{}, err
	}

	merkleRoot := opening.ComputeRoot(wallet.Scalar(oldCommitment))

	statement := OfflineFeeSettlementStatement{
		MerkleRoot:                merkleRoot,
		Nullifier:                 nullifier,
		NewWalletCommitment:       wallet.Commitment(newCommitment),
		UpdatedWalletPublicShares: newWallet.BlindedPublicShares,
		NoteCiphertext:            noteCiphertext,
		NoteCommitment:            note.Commitment(),
		ProtocolKey:               protocolKey,
		IsProtocolFee:             isProtocolFee,
	}

	witness := OfflineFeeSettlementWitness{
		OriginalWalletPublicShares:  oldWallet.BlindedPublicShares,
		OriginalWalletPrivateShares: oldWallet.PrivateShares,
		UpdatedWalletPrivateShares:  newWallet.PrivateShares,
		MerkleOpening:               opening,
		Note:                        note,
		EncryptionRandomness:        encryptionRandomness,
		SendIndex:                   sendIndex,
	}

	return statement, witness, nil
}
