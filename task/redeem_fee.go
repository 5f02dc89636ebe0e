package task

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/renegade-fi/wallet-engine/config"
	"github.com/renegade-fi/wallet-engine/contractclient"
	"github.com/renegade-fi/wallet-engine/fees"
	"github.com/renegade-fi/wallet-engine/networkqueue"
	"github.com/renegade-fi/wallet-engine/proofclient"
	"github.com/renegade-fi/wallet-engine/statement"
	"github.com/renegade-fi/wallet-engine/statestore"
	"github.com/renegade-fi/wallet-engine/wallet"
)

// RedeemFeeTask credits a previously paid offline fee note's value into its
// recipient's wallet as spendable balance, nullifying the note so it cannot
// be redeemed twice.
type RedeemFeeTask struct {
	ID                   uuid.UUID
	WalletID             uuid.UUID
	Note                 fees.Note
	NoteCiphertext       fees.EncryptedNote
	EncryptionRandomness wallet.Scalar
	RecipientSecretKey   wallet.Scalar

	OldWallet *wallet.Wallet
	NewWallet *wallet.Wallet
	ReceiveIndex int

	Proof   *proofclient.ProofBundle
	Receipt *contractclient.TxReceipt

	state    State
	cfg      *config.ProtocolConfig
	store    statestore.Store
	proofs   proofclient.Enqueuer
	contract contractclient.Client
	network  networkqueue.Queue
}

// NewRedeemFeeTask constructs a RedeemFeeTask crediting note's value into
// walletID's balance for note.Mint.
func NewRedeemFeeTask(
	ctx context.Context,
	walletID uuid.UUID,
	note fees.Note,
	noteCiphertext fees.EncryptedNote,
	encryptionRandomness wallet.Scalar,
	recipientSecretKey wallet.Scalar,
	cfg *config.ProtocolConfig,
	store statestore.Store,
	proofs proofclient.Enqueuer,
	contract contractclient.Client,
	network networkqueue.Queue,
) (*RedeemFeeTask, error) {
	oldWallet, err := store.GetWallet(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if oldWallet == nil {
		return nil, newStateMissingError("no wallet found for id %s", walletID)
	}

	newWallet := cloneWallet(oldWallet)
	balance, err := newWallet.GetOrCreateBalance(note.Mint)
	if err != nil {
		return nil, err
	}

	creditedAmount := balance.Amount
	newAmount, err := wallet.AmountFromScalar(creditedAmount)
	if err != nil {
		return nil, err
	}
	newAmount = newAmount.Add(note.Amount)
	balance.Amount = newAmount.ToScalar()

	if err := newWallet.Reblind(); err != nil {
		return nil, err
	}

	_, receiveIndex := newWallet.GetBalance(note.Mint)

	return &RedeemFeeTask{
		ID:                   uuid.New(),
		WalletID:             walletID,
		Note:                 note,
		NoteCiphertext:       noteCiphertext,
		EncryptionRandomness: encryptionRandomness,
		RecipientSecretKey:   recipientSecretKey,
		OldWallet:            oldWallet,
		NewWallet:            newWallet,
		ReceiveIndex:         receiveIndex,
		state:                StatePending,
		cfg:                  cfg,
		store:                store,
		proofs:               proofs,
		contract:             contract,
		network:              network,
	}, nil
}

func (t *RedeemFeeTask) Name() string    { return "RedeemFeeTask" }
func (t *RedeemFeeTask) State() State    { return t.state }
func (t *RedeemFeeTask) Completed() bool { return t.state == StateCompleted }

func (t *RedeemFeeTask) Step(ctx context.Context) error {
	switch t.state {
	case StatePending, StateProving:
		t.state = StateProving
		if err := t.generateProof(ctx); err != nil {
			return err
		}
		t.state = StateSubmitting
		return nil
	case StateSubmitting:
		receipt, err := t.contract.RedeemFee(ctx, t.Proof.Proof)
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
		opening, err := t.contract.FindMerklePath(ctx, wallet.Commitment(commitment), *t.Receipt)
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
		panic(fmt.Sprintf("Step called on RedeemFeeTask in state %v", t.state))
	}
}

func (t *RedeemFeeTask) generateProof(ctx context.Context) error {
	opening, err := t.store.GetMerkleOpening(ctx, t.WalletID)
	if err != nil {
		return err
	}

	noteNullifier := fees.NoteNullifier(t.Note)
	stmt, witness, err := statement.BuildFeeRedemption(
		t.Note, t.NoteCiphertext, t.EncryptionRandomness, noteNullifier, t.RecipientSecretKey,
		t.OldWallet, t.NewWallet, opening, t.ReceiveIndex,
	)
	if err != nil {
		return err
	}

	job := proofclient.ProofJob{
		ID: uuid.New(),
		Payload: proofclient.ValidFeeRedemptionPayload{
			Statement: stmt,
			Witness:   witness,
		},
	}
	resultCh, err := t.proofs.Enqueue(job)
	if err != nil {
		return newProofGenerationError("failed to enqueue fee redemption proof: %v", err)
	}
	result := <-resultCh
	if result.Err != nil {
		return newProofGenerationError("fee redemption proof failed: %v", result.Err)
	}

	bundle := result.Bundle
	t.Proof = &bundle
	return nil
}

var _ Task = (*RedeemFeeTask)(nil)
