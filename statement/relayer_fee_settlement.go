package statement

import (
	"github.com/renegade-fi/wallet-engine/wallet"
)

// RelayerFeeSettlementStatement is the public-input side of a
// settleOnlineRelayerFee call: a two-party transfer of an accrued relayer fee
// balance from a managed wallet directly into its managing relayer's wallet,
// settled on-chain rather than via an offline note (hence "online").
type RelayerFeeSettlementStatement struct {
	MerkleRoot                   wallet.Scalar
	SenderNullifier              wallet.Nullifier
	SenderWalletCommitment       wallet.Commitment
	SenderUpdatedPublicShares    wallet.WalletShare
	RecipientNullifier           wallet.Nullifier
	RecipientWalletCommitment    wallet.Commitment
	RecipientUpdatedPublicShares wallet.WalletShare
}

// RelayerFeeSettlementWitness is the private side of a settleOnlineRelayerFee call.
type RelayerFeeSettlementWitness struct {
	SenderOriginalPublicShares  wallet.WalletShare
	SenderOriginalPrivateShares wallet.WalletShare
	SenderUpdatedPrivateShares  wallet.WalletShare
	SenderMerkleOpening         wallet.MerkleOpening

	RecipientOriginalPublicShares  wallet.WalletShare
	RecipientOriginalPrivateShares wallet.WalletShare
	RecipientUpdatedPrivateShares  wallet.WalletShare
	RecipientMerkleOpening         wallet.MerkleOpening

	SendIndex int
}

// BuildRelayerFeeSettlement assembles the (statement, witness) pair for paying an
// accrued relayer fee balance directly into the managing relayer's own wallet.
// senderOld/senderNew are the fee-paying wallet before and after the balance is
// zeroed; recipientOld/recipientNew are the relayer's wallet before and after the
// balance is credited.
func BuildRelayerFeeSettlement(
	senderOld *wallet.Wallet,
	senderNew *wallet.Wallet,
	senderOpening wallet.MerkleOpening,
	recipientOld *wallet.Wallet,
	recipientNew *wallet.Wallet,
	recipientOpening wallet.MerkleOpening,
	sendIndex int,
) (RelayerFeeSettlementStatement, RelayerFeeSettlementWitness, error) {
	senderNullifier, err := senderOld.Nullifier()
	if err != nil {
		return RelayerFeeSettlementStatement{}, RelayerFeeSettlementWitness{}, err
	}
	senderOldCommitment, err := senderOld.ShareCommitment()
	if err != nil {
		return RelayerFeeSettlementStatement{}, RelayerFeeSettlementWitness{}, err
	}
	senderNewCommitment, err := senderNew.ShareCommitment()
	if err != nil {
		return RelayerFeeSettlementStatement{}, RelayerFeeSettlementWitness{}, err
	}

	recipientNullifier, err := recipientOld.Nullifier()
	if err != nil {
		return RelayerFeeSettlementStatement{}, RelayerFeeSettlementWitness{}, err
	}
	recipientNewCommitment, err := recipientNew.ShareCommitment()
	if err != nil {
		return RelayerFeeSettlementStatement{}, RelayerFeeSettlementWitness{}, err
	}

	merkleRoot := senderOpening.ComputeRoot(wallet.Scalar(senderOldCommitment))

	statement := RelayerFeeSettlementStatement{
		MerkleRoot:                   merkleRoot,
		SenderNullifier:              senderNullifier,
		SenderWalletCommitment:       wallet.Commitment(senderNewCommitment),
		SenderUpdatedPublicShares:    senderNew.BlindedPublicShares,
		RecipientNullifier:           recipientNullifier,
		RecipientWalletCommitment:    wallet.Commitment(recipientNewCommitment),
		RecipientUpdatedPublicShares: recipientNew.BlindedPublicShares,
	}

	witness := RelayerFeeSettlementWitness{
		SenderOriginalPublicShares:     senderOld.BlindedPublicShares,
		SenderOriginalPrivateShares:    senderOld.PrivateShares,
		SenderUpdatedPrivateShares:     senderNew.PrivateShares,
		SenderMerkleOpening:            senderOpening,
		RecipientOriginalPublicShares:  recipientOld.BlindedPublicShares,
		RecipientOriginalPrivateShares: recipientOld.PrivateShares,
		RecipientUpdatedPrivateShares:  recipientNew.PrivateShares,
		RecipientMerkleOpening:         recipientOpening,
		SendIndex:                      sendIndex,
	}

	return statement, witness, nil
}
