package statement

import "github.com/renegade-fi/wallet-engine/wallet"

// WalletCreateStatement is the public-input side of a newWallet call.
type WalletCreateStatement struct {
	WalletShareCommitment wallet.Commitment
	PublicWalletShares    wallet.WalletShare
}

// WalletCreateWitness is the private side of a newWallet call.
type WalletCreateWitness struct {
	PrivateWalletShares wallet.WalletShare
}

// BuildWalletCreate assembles the (statement, witness) pair for inserting a brand new
// wallet into the tree.
func BuildWalletCreate(w *wallet.Wallet) (WalletCreateStatement, WalletCreateWitness, error) {
	commitment, err := w.ShareCommitment()
	if err != nil {
		return WalletCreateStatement{}, WalletCreateWitness{}, err
	}

	statement := WalletCreateStatement{
		WalletShareCommitment: commitment,
		PublicWalletShares:    w.BlindedPublicShares,
	}
	witness := WalletCreateWitness{PrivateWalletShares: w.PrivateShares}

	return statement, witness, nil
}
