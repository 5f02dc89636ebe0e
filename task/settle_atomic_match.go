package task

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/renegade-fi/wallet-engine/config"
	"github.com/renegade-fi/wallet-engine/contractclient"
	"github.com/renegade-fi/wallet-engine/fees"
	"github.com/renegade-fi/wallet-engine/matchresult"
	"github.com/renegade-fi/wallet-engine/networkqueue"
	"github.com/renegade-fi/wallet-engine/proofclient"
	"github.com/renegade-fi/wallet-engine/statement"
	"github.com/renegade-fi/wallet-engine/statestore"
	"github.com/renegade-fi/wallet-engine/wallet"
)

// SettleAtomicMatchTask settles a fixed-size match between a local order and
// an external counterparty who supplies their side directly in calldata and
// holds no validity proof of their own.
type SettleAtomicMatchTask struct {
	ID       uuid.UUID
	WalletID uuid.UUID
	OrderID  uuid.UUID
	Match    matchresult.ExternalMatchResult
	Indices  matchresult.OrderSettlementIndices
	Receiver *wallet.Address

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

// NewSettleAtomicMatchTask constructs a SettleAtomicMatchTask settling match
// against walletID's order orderID. receiver, if non-nil, routes the external
// party's proceeds to a third-party address rather than back to the caller.
func NewSettleAtomicMatchTask(
	ctx context.Context,
	walletID uuid.UUID,
	orderID uuid.UUID,
	match matchresult.ExternalMatchResult,
	receiver *wallet.Address,
	cfg *config.ProtocolConfig,
	store statestore.Store,
	proofs proofclient.Enqueuer,
	contract contractclient.Client,
	network networkqueue.Queue,
) (*SettleAtomicMatchTask, error) {
	oldWallet, err := store.GetWallet(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if oldWallet == nil {
		return nil, newStateMissingError("no wallet found for id %s", walletID)
	}

	newWallet := cloneWallet(oldWallet)
	orderIdx := findOrderIndex(newWallet, orderID)
	if orderIdx < 0 {
		return nil, newStateMissingError("wallet %s has no order %s", walletID, orderID)
	}

	side := match.InternalPartySide()
	matchResult := match.ToMatchResult()

	sendMint, _ := matchResult.SendMintAmount(side)
	recvMint, recvAmount := matchResult.ReceiveMintAmount(side)

	sendBalance, sendIdx := newWallet.GetBalance(sendMint)
	if sendBalance == nil {
		return nil, newStateMissingError("wallet %s has no balance for send mint %s", walletID, sendMint.ToHexString())
	}
	recvBalance, recvIdx := newWallet.GetBalance(recvMint)
	if recvBalance == nil {
		return nil, newStateMissingError("wallet %s has no balance for receive mint %s", walletID, recvMint.ToHexString())
	}

	indices := matchresult.OrderSettlementIndices{
		BalanceSend:    sendIdx,
		BalanceReceive: recvIdx,
		Order:          orderIdx,
	}

	feeRates := fees.FeeTakeRate{
		RelayerFeeRate:  cfg.DefaultRelayerFeeRate,
		ProtocolFeeRate: cfg.ProtocolFeeRate,
	}
	feeTake := feeRates.ComputeFeeTake(recvAmount)

	if err := applyMatchToWallet(newWallet, indices, feeTake, matchResult, side); err != nil {
		return nil, err
	}
	if err := newWallet.Reblind(); err != nil {
		return nil, err
	}

	return &SettleAtomicMatchTask{
		ID:        uuid.New(),
		WalletID:  walletID,
		OrderID:   orderID,
		Match:     match,
		Indices:   indices,
		Receiver:  receiver,
		OldWallet: oldWallet,
		NewWallet: newWallet,
		state:     StatePending,
		store:     store,
		proofs:    proofs,
		contract:  contract,
		network:   network,
	}, nil
}

func (t *SettleAtomicMatchTask) Name() string    { return "SettleAtomicMatchTask" }
func (t *SettleAtomicMatchTask) State() State    { return t.state }
func (t *SettleAtomicMatchTask) Completed() bool { return t.state == StateCompleted }

func (t *SettleAtomicMatchTask) Step(ctx context.Context) error {
	switch t.state {
	case StatePending, StateProving:
		t.state = StateProving
		if err := t.generateProof(); err != nil {
			return err
		}
		t.state = StateSubmitting
		return nil
	case StateSubmitting:
		var receipt contractclient.TxReceipt
		var err error
		if t.Receiver != nil {
			receipt, err = t.contract.ProcessAtomicMatchSettleWithReceiver(ctx, t.Proof.Proof)
		} else {
			receipt, err = t.contract.ProcessAtomicMatchSettle(ctx, t.Proof.Proof)
		}
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
		panic(fmt.Sprintf("Step called on SettleAtomicMatchTask in state %v", t.state))
	}
}

func (t *SettleAtomicMatchTask) generateProof() error {
	stmt, witness := statement.BuildMatchSettleAtomic(
		t.OldWallet.BlindedPublicShares, t.NewWallet, t.Match, t.Indices, t.Receiver,
	)

	job := proofclient.ProofJob{
		ID: uuid.New(),
		Payload: proofclient.ValidMatchSettleAtomicPayload{
			Statement: stmt,
			Witness:   witness,
		},
	}
	resultCh, err := t.proofs.Enqueue(job)
	if err != nil {
		return newProofGenerationError("failed to enqueue atomic match settle proof: %v", err)
	}
	result := <-resultCh
	if result.Err != nil {
		return newProofGenerationError("atomic match settle proof failed: %v", result.Err)
	}

	bundle := result.Bundle
	t.Proof = &bundle
	return nil
}

var _ Task = (*SettleAtomicMatchTask)(nil)
