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

// SettleMalleableAtomicMatchTask settles an atomic match against an external
// counterparty whose exact traded size is only bounded at proof time.
// BaseAmount is the size the relayer has already committed to quoting the
// external party out of band; the contract itself re-derives the same
// post-match share from the bounded match and this amount, so the task's own
// wallet bookkeeping must match that derivation exactly.
type SettleMalleableAtomicMatchTask struct {
	ID         uuid.UUID
	WalletID   uuid.UUID
	OrderID    uuid.UUID
	Bounded    matchresult.BoundedMatchResult
	BaseAmount wallet.Amount
	Indices    matchresult.OrderSettlementIndices
	FeeRates   fees.FeeTakeRate
	Receiver   *wallet.Address

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

// NewSettleMalleableAtomicMatchTask constructs a
// SettleMalleableAtomicMatchTask settling bounded against walletID's order
// orderID, fixed at baseAmount.
func NewSettleMalleableAtomicMatchTask(
	ctx context.Context,
	walletID uuid.UUID,
	orderID uuid.UUID,
	bounded matchresult.BoundedMatchResult,
	baseAmount wallet.Amount,
	receiver *wallet.Address,
	cfg *config.ProtocolConfig,
	store statestore.Store,
	proofs proofclient.Enqueuer,
	contract contractclient.Client,
	network networkqueue.Queue,
) (*SettleMalleableAtomicMatchTask, error) {
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

	externalMatch := bounded.ToExternalMatchResult(baseAmount)
	side := externalMatch.InternalPartySide()
	matchResult := externalMatch.ToMatchResult()

	sendMint, _ := matchResult.SendMintAmount(side)
	recvMint, _ := matchResult.ReceiveMintAmount(side)

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

	if err := applyMalleableMatchToWallet(newWallet, baseAmount, indices, bounded, feeRates); err != nil {
		return nil, err
	}
	if err := newWallet.Reblind(); err != nil {
		return nil, err
	}

	return &SettleMalleableAtomicMatchTask{
		ID:         uuid.New(),
		WalletID:   walletID,
		OrderID:    orderID,
		Bounded:    bounded,
		BaseAmount: baseAmount,
		Indices:    indices,
		FeeRates:   feeRates,
		Receiver:   receiver,
		OldWallet:  oldWallet,
		NewWallet:  newWallet,
		state:      StatePending,
		store:      store,
		proofs:     proofs,
		contract:   contract,
		network:    network,
	}, nil
}

func (t *SettleMalleableAtomicMatchTask) Name() string    { return "SettleMalleableAtomicMatchTask" }
func (t *SettleMalleableAtomicMatchTask) State() State    { return t.state }
func (t *SettleMalleableAtomicMatchTask) Completed() bool { return t.state == StateCompleted }

func (t *SettleMalleableAtomicMatchTask) Step(ctx context.Context) error {
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
			receipt, err = t.contract.ProcessMalleableAtomicMatchSettleWithReceiver(ctx, t.Proof.Proof)
		} else {
			receipt, err = t.contract.ProcessMalleableAtomicMatchSettle(ctx, t.Proof.Proof)
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
		panic(fmt.Sprintf("Step called on SettleMalleableAtomicMatchTask in state %v", t.state))
	}
}

func (t *SettleMalleableAtomicMatchTask) generateProof() error {
	stmt, witness := statement.BuildMatchSettleMalleableAtomic(
		t.OldWallet.BlindedPublicShares, t.OldWallet.PrivateShares, t.Bounded, t.FeeRates, t.Indices, t.Receiver,
	)

	job := proofclient.ProofJob{
		ID: uuid.New(),
		Payload: proofclient.ValidMalleableMatchSettleAtomicPayload{
			Statement: stmt,
			Witness:   witness,
		},
	}
	resultCh, err := t.proofs.Enqueue(job)
	if err != nil {
		return newProofGenerationError("failed to enqueue malleable atomic match settle proof: %v", err)
	}
	result := <-resultCh
	if result.Err != nil {
		return newProofGenerationError("malleable atomic match settle proof failed: %v", result.Err)
	}

	bundle := result.Bundle
	t.Proof = &bundle
	return nil
}

var _ Task = (*SettleMalleableAtomicMatchTask)(nil)
