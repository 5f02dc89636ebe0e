package task

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/renegade-fi/wallet-engine/contractclient"
	"github.com/renegade-fi/wallet-engine/networkqueue"
	"github.com/renegade-fi/wallet-engine/proofclient"
	"github.com/renegade-fi/wallet-engine/statement"
	"github.com/renegade-fi/wallet-engine/statestore"
	"github.com/renegade-fi/wallet-engine/wallet"
)

// UpdateWalletTask applies an arbitrary, already-decided mutation (a deposit,
// withdrawal, order placement or cancellation, keychain rotation, or a bare
// reblind) to a wallet and lands the resulting nullify-and-insert on-chain.
type UpdateWalletTask struct {
	ID       uuid.UUID
	WalletID uuid.UUID

	OldWallet *wallet.Wallet
	NewWallet *wallet.Wallet

	Proof   *proofclient.ProofBundle
	Receipt *contractclient.TxReceipt

	state    State
	store    statestore.Store
	proofs   proofclient.Enqueuer
	contract contractclient.Client
	network  networkqueue.Queue
}

// NewUpdateWalletTask constructs an UpdateWalletTask for walletID, applying
// mutate to a clone of its currently stored wallet before reblinding it.
// mutate may be nil, in which case the task only reblinds the wallet.
func NewUpdateWalletTask(
	ctx context.Context,
	walletID uuid.UUID,
	mutate func(*wallet.Wallet) error,
	store statestore.Store,
	proofs proofclient.Enqueuer,
	contract contractclient.Client,
	network networkqueue.Queue,
) (*UpdateWalletTask, error) {
	oldWallet, err := store.GetWallet(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if oldWallet == nil {
		return nil, newStateMissingError("no wallet found for id %s", walletID)
	}

	newWallet := cloneWallet(oldWallet)
	if mutate != nil {
		if err := mutate(newWallet); err != nil {
			return nil, err
		}
	}
	if err := newWallet.Reblind(); err != nil {
		return nil, err
	}

	return &UpdateWalletTask{
		ID:        uuid.New(),
		WalletID:  walletID,
		OldWallet: oldWallet,
		NewWallet: newWallet,
		state:     StatePending,
		store:     store,
		proofs:    proofs,
		contract:  contract,
		network:   network,
	}, nil
}

func (t *UpdateWalletTask) Name() string    { return "UpdateWalletTask" }
func (t *UpdateWalletTask) State() State    { return t.state }
func (t *UpdateWalletTask) Completed() bool { return t.state == StateCompleted }

func (t *UpdateWalletTask) Step(ctx context.Context) error {
	switch t.state {
	case StatePending, StateProving:
		t.state = StateProving
		if err := t.generateProof(ctx); err != nil {
			return err
		}
		t.state = StateSubmitting
		return nil
	case StateSubmitting:
		receipt, err := t.contract.UpdateWallet(ctx, t.Proof.Proof)
		if err != nil {
			return err
		}
		t.Receipt = &receipt
		t.state = StateFindingOpening
		return nil
	case StateFindingOpening:
		commitment, err := t.NewWallet.ShareCommitment()
		if err != nil {
			return err
		}
		opening, err := t.contract.FindMerklePath(ctx, commitment, *t.Receipt)
		if err != nil {
			return err
		}
		if _, err := t.store.UpdateWallet(ctx, t.NewWallet); err != nil {
			return err
		}
		if err := t.store.PutMerkleOpening(ctx, t.WalletID, opening); err != nil {
			return err
		}
		t.network.Publish(networkqueue.Message{Kind: networkqueue.MessageKindWalletUpdate, WalletID: t.WalletID})
		t.state = StateUpdatingValidityProofs
		return nil
	case StateUpdatingValidityProofs:
		if err := refreshValidityProofs(ctx, t.NewWallet); err != nil {
			return newUpdateValidityProofsError("%v", err)
		}
		t.state = StateCompleted
		return nil
	default:
		panic(fmt.Sprintf("Step called on UpdateWalletTask in state %v", t.state))
	}
}

func (t *UpdateWalletTask) generateProof(ctx context.Context) error {
	opening, err := t.store.GetMerkleOpening(ctx, t.WalletID)
	if err != nil {
		return err
	}

	stmt, witness, err := statement.BuildWalletUpdate(t.OldWallet, t.NewWallet, opening)
	if err != nil {
		return err
	}

	job := proofclient.ProofJob{
		ID: uuid.New(),
		Payload: proofclient.ValidWalletUpdatePayload{
			Statement: stmt,
			Witness:   witness,
		},
	}
	resultCh, err := t.proofs.Enqueue(job)
	if err != nil {
		return newProofGenerationError("failed to enqueue wallet update proof: %v", err)
	}
	result := <-resultCh
	if result.Err != nil {
		return newProofGenerationError("wallet update proof failed: %v", result.Err)
	}

	bundle := result.Bundle
	t.Proof = &bundle
	return nil
}

var _ Task = (*UpdateWalletTask)(nil)
