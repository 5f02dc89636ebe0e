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

// NewWalletTask inserts a brand new wallet into the darkpool's commitment tree.
type NewWalletTask struct {
	ID     uuid.UUID
	Wallet *wallet.Wallet

	Proof   *proofclient.ProofBundle
	Receipt *contractclient.TxReceipt

	state    State
	store    statestore.Store
	proofs   proofclient.Enqueuer
	contract contractclient.Client
	network  networkqueue.Queue
}

// NewNewWalletTask constructs a NewWalletTask for inserting w, a wallet not yet
// known to the state store.
func NewNewWalletTask(
	w *wallet.Wallet,
	store statestore.Store,
	proofs proofclient.Enqueuer,
	contract contractclient.Client,
	network networkqueue.Queue,
) *NewWalletTask {
	return &NewWalletTask{
		ID:       uuid.New(),
		Wallet:   w,
		state:    StatePending,
		store:    store,
		proofs:   proofs,
		contract: contract,
		network:  network,
	}
}

func (t *NewWalletTask) Name() string    { return "NewWalletTask" }
func (t *NewWalletTask) State() State    { return t.state }
func (t *NewWalletTask) Completed() bool { return t.state == StateCompleted }

func (t *NewWalletTask) Step(ctx context.Context) error {
	switch t.state {
	case StatePending, StateProving:
		t.state = StateProving
		stmt, witness, err := statement.BuildWalletCreate(t.Wallet)
		if err != nil {
			return err
		}

		job := proofclient.ProofJob{
			ID: uuid.New(),
			Payload: proofclient.ValidWalletCreatePayload{
				Statement: stmt,
				Witness:   witness,
			},
		}
		resultCh, err := t.proofs.Enqueue(job)
		if err != nil {
			return newProofGenerationError("failed to enqueue wallet create proof: %v", err)
		}
		result := <-resultCh
		if result.Err != nil {
			return newProofGenerationError("wallet create proof failed: %v", result.Err)
		}
		bundle := result.Bundle
		t.Proof = &bundle
		t.state = StateSubmitting
		return nil
	case StateSubmitting:
		receipt, err := t.contract.NewWallet(ctx, t.Proof.Proof)
		if err != nil {
			return err
		}
		t.Receipt = &receipt
		t.state = StateFindingOpening
		return nil
	case StateFindingOpening:
		commitment, err := t.Wallet.ShareCommitment()
		if err != nil {
			return err
		}
		opening, err := t.contract.FindMerklePath(ctx, wallet.Commitment(commitment), *t.Receipt)
		if err != nil {
			return err
		}
		if _, err := t.store.UpdateWallet(ctx, t.Wallet); err != nil {
			return err
		}
		if err := t.store.PutMerkleOpening(ctx, t.Wallet.Id, opening); err != nil {
			return err
		}
		t.network.Publish(networkqueue.Message{Kind: networkqueue.MessageKindWalletUpdate, WalletID: t.Wallet.Id})
		t.state = StateUpdatingValidityProofs
		return nil
	case StateUpdatingValidityProofs:
		if err := refreshValidityProofs(ctx, t.Wallet); err != nil {
			return newUpdateValidityProofsError("%v", err)
		}
		t.state = StateCompleted
		return nil
	default:
		panic(fmt.Sprintf("Step called on NewWalletTask in state %v", t.state))
	}
}

var _ Task = (*NewWalletTask)(nil)
