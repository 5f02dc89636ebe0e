package fees

import "github.com/renegade-fi/wallet-engine/wallet"

// CreateProtocolNote debits a balance's accrued protocol fee, zeroing it, and
// returns a note payable to the protocol for that amount. The helper lives
// here rather than on wallet.Balance directly because a Note is a
// fee-settlement concept the wallet package itself has no need to know about.
func CreateProtocolNote(balance *wallet.Balance, protocolKey wallet.FeeEncryptionKey) (Note, error) {
	amount, err := wallet.AmountFromScalar(balance.ProtocolFeeBalance)
	if err != nil {
		return Note{}, err
	}

	note, err := NewNote(wallet.AddressFromScalar(balance.Mint), amount, protocolKey)
	if err != nil {
		return Note{}, err
	}

	balance.ProtocolFeeBalance = wallet.Scalar{}
	return note, nil
}

// CreateRelayerNote debits a balance's accrued relayer fee, zeroing it, and returns
// a note payable to the wallet's managing cluster for that amount.
func CreateRelayerNote(balance *wallet.Balance, managingCluster wallet.FeeEncryptionKey) (Note, error) {
	amount, err := wallet.AmountFromScalar(balance.RelayerFeeBalance)
	if err != nil {
		return Note{}, err
	}

	note, err := NewNote(wallet.AddressFromScalar(balance.Mint), amount, managingCluster)
	if err != nil {
		return Note{}, err
	}

	balance.RelayerFeeBalance = wallet.Scalar{}
	return note, nil
}
