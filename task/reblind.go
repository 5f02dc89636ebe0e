package task

import (
	"context"

	"github.com/google/uuid"

	"github.com/renegade-fi/wallet-engine/contractclient"
	"github.com/renegade-fi/wallet-engine/networkqueue"
	"github.com/renegade-fi/wallet-engine/proofclient"
	"github.com/renegade-fi/wallet-engine/statestore"
)

// NewReblindTask constructs a task that rotates a wallet's secret shares and
// blinder without otherwise changing its contents, landing the resulting
// nullify-and-insert on-chain like any other wallet update. It is an
// UpdateWalletTask with a nil mutation, not a distinct state machine: a
// reblind's on-chain footprint is identical to an update's once the mutation
// step is a no-op.
func NewReblindTask(
	ctx context.Context,
	walletID uuid.UUID,
	store statestore.Store,
	proofs proofclient.Enqueuer,
	contract contractclient.Client,
	network networkqueue.Queue,
) (*UpdateWalletTask, error) {
	return NewUpdateWalletTask(ctx, walletID, nil, store, proofs, contract, network)
}
