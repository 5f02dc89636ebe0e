package task

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/renegade-fi/wallet-engine/config"
	"github.com/renegade-fi/wallet-engine/contractclient"
	"github.com/renegade-fi/wallet-engine/networkqueue"
	"github.com/renegade-fi/wallet-engine/proofclient"
	"github.com/renegade-fi/wallet-engine/statement"
	"github.com/renegade-fi/wallet-engine/statestore"
	"github.com/renegade-fi/wallet-engine/wallet"
)

// PayRelayerFeeTask pays an accrued relayer fee balance directly into the
// managing relayer's own wallet in a single on-chain transaction, the
// "online" counterpart to PayOfflineFeeTask's note-based settlement.
type PayRelayerFeeTask struct {
	ID          uuid.UUID
	Mint        wallet.Address
	SenderID    uuid.UUID
	RecipientID uuid.UUID
	SendIndex   int

	SenderOld    *wallet.Wallet
	SenderNew    *wallet.Wallet
	RecipientOld *wallet.Wallet
	RecipientNew *wallet.Wallet

	Proof   *proofclient.ProofBundle
	Receipt *contractclient.TxReceipt

	state    State
	cfg      *config.ProtocolConfig
	store    statestore.Store
	proofs   proofclient.Enqueuer
	contract contractclient.Client
	network  networkqueue.Queue
}

// NewPayRelayerFeeTask constructs a PayRelayerFeeTask moving senderID's
// accrued relayer fee on mint into recipientID's wallet (the managing
// relayer's own wallet). amount must equal the balance's currently accrued
// relayer fee.
func NewPayRelayerFeeTask(
	ctx context.Context,
	senderID uuid.UUID,
	recipientID uuid.UUID,
	mint wallet.Address,
	amount wallet.Amount,
	cfg *config.ProtocolConfig,
	store statestore.Store,
	proofs proofclient.Enqueuer,
	contract contractclient.Client,
	network networkqueue.Queue,
) (*PayRelayerFeeTask, error) {
	senderOld, err := store.GetWallet(ctx, senderID)
	if err != nil {
		return nil, err
	}
	if senderOld == nil {
		return nil, newStateMissingError("no wallet found for id %s", senderID)
	}
	recipientOld, err := store.GetWallet(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	if recipientOld == nil {
		return nil, newStateMissingError("no wallet found for id %s", recipientID)
	}

	senderNew := cloneWallet(senderOld)
	senderBalance, sendIndex := senderNew.GetBalance(mint)
	if senderBalance == nil {
		return nil, newStateMissingError("wallet %s has no balance for mint %s", senderID, mint.ToHexString())
	}

	accrued, err := wallet.AmountFromScalar(senderBalance.RelayerFeeBalance)
	if err != nil {
		return nil, err
	}
	if accrued.Cmp(amount) != 0 {
		return nil, newInvalidFeeAmountError(
			"expected accrued relayer fee %s for mint %s, got descriptor amount %s",
			accrued.String(), mint.ToHexString(), amount.String(),
		)
	}
	senderBalance.RelayerFeeBalance = wallet.Scalar{}

	recipientNew := cloneWallet(recipientOld)
	recipientBalance, err := recipientNew.GetOrCreateBalance(mint)
	if err != nil {
		return nil, err
	}
	recipientAmount, err := wallet.AmountFromScalar(recipientBalance.Amount)
	if err != nil {
		return nil, err
	}
	recipientBalance.Amount = recipientAmount.Add(amount).ToScalar()

	if err := senderNew.Reblind(); err != nil {
		return nil, err
	}
	if err := recipientNew.Reblind(); err != nil {
		return nil, err
	}

	return &PayRelayerFeeTask{
		ID:           uuid.New(),
		Mint:         mint,
		SenderID:     senderID,
		RecipientID:  recipientID,
		SendIndex:    sendIndex,
		SenderOld:    senderOld,
		SenderNew:    senderNew,
		RecipientOld: recipientOld,
		RecipientNew: recipientNew,
		state:        StatePending,
		cfg:          cfg,
		store:        store,
		proofs:       proofs,
		contract:     contract,
		network:      network,
	}, nil
}

func (t *PayRelayerFeeTask) Name() string    { return "PayRelayerFeeTask" }
func (t *PayRelayerFeeTask) State() State    { return t.state }
func (t *PayRelayerFeeTask) Completed() bool { return t.state == StateCompleted }

func (t *PayRelayerFeeTask) Step(ctx context.Context) error {
	switch t.state {
	case StatePending, StateProving:
		t.state = StateProving
		if err := t.generateProof(ctx); err != nil {
			return err
		}
		t.state = StateSubmitting
		return nil
	case StateSubmitting:
		receipt, err := t.contract.SettleOnlineRelayerFee(ctx, t.Proof.Proof)
		if err != nil {
			return err
		}
		t.Receipt = &receipt
		t.state = StateFindingOpening
		return nil
	case StateFindingOpening:
		senderCommitment, err := t.SenderNew.ShareCommitment()
		if err != nil {
			return err
		}
		senderOpening, err := t.contract.FindMerklePath(ctx, senderCommitment, *t.Receipt)
		if err != nil {
			return err
		}

		recipientCommitment, err := t.RecipientNew.ShareCommitment()
		if err != nil {
			return err
		}
		recipientOpening, err := t.contract.FindMerklePath(ctx, recipientCommitment, *t.Receipt)
		if err != nil {
			return err
		}

		if _, err := t.store.UpdateWallet(ctx, t.SenderNew); err != nil {
			return err
		}
		if err := t.store.PutMerkleOpening(ctx, t.SenderID, senderOpening); err != nil {
			return err
		}
		if _, err := t.store.UpdateWallet(ctx, t.RecipientNew); err != nil {
			return err
		}
		if err := t.store.PutMerkleOpening(ctx, t.RecipientID, recipientOpening); err != nil {
			return err
		}

		t.network.Publish(networkqueue.Message{Kind: networkqueue.MessageKindWalletUpdate, WalletID: t.SenderID})
		t.network.Publish(networkqueue.Message{Kind: networkqueue.MessageKindWalletUpdate, WalletID: t.RecipientID})
		t.state = StateUpdatingValidityProofs
		return nil
	case StateUpdatingValidityProofs:
		if err := refreshValidityProofs(ctx, t.SenderNew); err != nil {
			return newUpdateValidityProofsError("%v", err)
		}
		if err := refreshValidityProofs(ctx, t.RecipientNew); err != nil {
			return newUpdateValidityProofsError("%v", err)
		}
		t.state = StateCompleted
		return nil
	default:
		panic(fmt.Sprintf("Step called on PayRelayerFeeTask in state %v", t.state))
	}
}

func (t *PayRelayerFeeTask) generateProof(ctx context.Context) error {
	senderOpening, err := t.store.GetMerkleOpening(ctx, t.SenderID)
	if err != nil {
		return err
	}
	recipientOpening, err := t.store.GetMerkleOpening(ctx, t.RecipientID)
	if err != nil {
		return err
	}

	stmt, witness, err := statement.BuildRelayerFeeSettlement(
		t.SenderOld, t.SenderNew, senderOpening, t.RecipientOld, t.RecipientNew, recipientOpening, t.SendIndex,
	)
	if err != nil {
		return err
	}

	job := proofclient.ProofJob{
		ID: uuid.New(),
		Payload: proofclient.ValidRelayerFeeSettlementPayload{
			Statement: stmt,
			Witness:   witness,
		},
	}
	resultCh, err := t.proofs.Enqueue(job)
	if err != nil {
		return newProofGenerationError("failed to enqueue relayer fee settlement proof: %v", err)
	}
	result := <-resultCh
	if result.Err != nil {
		return newProofGenerationError("relayer fee settlement proof failed: %v", result.Err)
	}

	bundle := result.Bundle
	t.Proof = &bundle
	return nil
}

var _ Task = (*PayRelayerFeeTask)(nil)
