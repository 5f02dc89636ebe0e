package statement

import "github.com/renegade-fi/wallet-engine/wallet"

// WalletUpdateStatement is the public-input side of an updateWallet call.
type WalletUpdateStatement struct {
	OldWalletNullifier    wallet.Nullifier
	MerkleRoot            wallet.Scalar
	NewWalletCommitment   wallet.Commitment
	NewPublicShares       wallet.WalletShare
	WalletUpdateSignature []byte
}

// WalletUpdateWitness is the private side of an updateWallet call.
type WalletUpdateWitness struct {
	OldWalletPublicShares  wallet.WalletShare
	OldWalletPrivateShares wallet.WalletShare
	NewWalletPrivateShares wallet.WalletShare
	MerkleOpening          wallet.MerkleOpening
}

// BuildWalletUpdate assembles the (statement, witness) pair for an arbitrary wallet
// update (balance/order/key change) between oldWallet (as committed in the tree) and
// newWallet (the desired post-state, already reblinded by the caller).
func BuildWalletUpdate(
	oldWallet *wallet.Wallet,
	newWallet *wallet.Wallet,
	opening wallet.MerkleOpening,
) (WalletUpdateStatement, WalletUpdateWitness, error) {
	nullifier, err := oldWallet.Nullifier()
	if err != nil {
		return WalletUpdateStatement{}, WalletUpdateWitness{}, err
	}

	oldCommitment, err := oldWallet.ShareCommitment()
	if err != nil {
		return WalletUpdateStatement{}, WalletUpdateWitness{}, err
	}

	newCommitment, err := newWallet.ShareCommitment()
	if err != nil {
		return WalletUpdateStatement{}, WalletUpdateWitness{}, err
	}

	sig, err := newWallet.SignCommitment(wallet.Scalar(newCommitment))
	if err != nil {
		return WalletUpdateStatement{}, WalletUpdateWitness{}, err
	}

	statement := WalletUpdateStatement{
		OldWalletNullifier:    nullifier,
		MerkleRoot:            opening.ComputeRoot(wallet.Scalar(oldCommitment)),
		NewWalletCommitment:   newCommitment,
		NewPublicShares:       newWallet.BlindedPublicShares,
		WalletUpdateSignature: sig,
	}

	witness := WalletUpdateWitness{
		OldWalletPublicShares:  oldWallet.BlindedPublicShares,
		OldWalletPrivateShares: oldWallet.PrivateShares,
		NewWalletPrivateShares: newWallet.PrivateShares,
		MerkleOpening:          opening,
	}

	return statement, witness, nil
}
