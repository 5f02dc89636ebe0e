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

// SettleMatchTask settles a two-party match between a local order and a
// counterparty order, both managed by relayers that each run their own
// instance of this task against their own wallet. The counterparty's
// modified public shares are supplied at construction, already received over
// the network queue from its validity proof.
type SettleMatchTask struct {
	ID         uuid.UUID
	WalletID   uuid.UUID
	OrderID    uuid.UUID
	IsParty0   bool
	Match      matchresult.MatchResult
	Indices    matchresult.OrderSettlementIndices
	Counterparty wallet.WalletShare

	OldWallet *wallet.Wallet
	NewWallet *wallet.Wallet

	Proof   *proofclient.ProofBundle
	Receipt *contractclient.TxReceipt

	state    State
	cfg      *config.ProtocolConfig
	store    statestore.Store
	proofs   proofclient.Enqueuer
	contract contractclient.Client
	network  networkqueue.Queue
}

// NewSettleMatchTask constructs a SettleMatchTask settling match against
// walletID's order orderID, with walletID playing party 0 iff isParty0.
// counterpartyModifiedShares is the counterparty's post-match public share,
// as received over the network queue from its own validity proof.
func NewSettleMatchTask(
	ctx context.Context,
	walletID uuid.UUID,
	orderID uuid.UUID,
	isParty0 bool,
	match matchresult.MatchResult,
	counterpartyModifiedShares wallet.WalletShare,
	cfg *config.ProtocolConfig,
	store statestore.Store,
	proofs proofclient.Enqueuer,
	contract contractclient.Client,
	network networkqueue.Queue,
) (*SettleMatchTask, error) {
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

	side := partySide(match.Direction, isParty0)
	sendMint, _ := match.SendMintAmount(side)
	_, recvAmount := match.ReceiveMintAmount(side)
	recvMint, _ := match.ReceiveMintAmount(side)

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

	if err := applyMatchToWallet(newWallet, indices, feeTake, match, side); err != nil {
		return nil, err
	}
	if err := newWallet.Reblind(); err != nil {
		return nil, err
	}

	return &SettleMatchTask{
		ID:           uuid.New(),
		WalletID:     walletID,
		OrderID:      orderID,
		IsParty0:     isParty0,
		Match:        match,
		Indices:      indices,
		Counterparty: counterpartyModifiedShares,
		OldWallet:    oldWallet,
		NewWallet:    newWallet,
		state:        StatePending,
		cfg:          cfg,
		store:        store,
		proofs:       proofs,
		contract:     contract,
		network:      network,
	}, nil
}

func (t *SettleMatchTask) Name() string    { return "SettleMatchTask" }
func (t *SettleMatchTask) State() State    { return t.state }
func (t *SettleMatchTask) Completed() bool { return t.state == StateCompleted }

func (t *SettleMatchTask) Step(ctx context.Context) error {
	switch t.state {
	case StatePending, StateProving:
		t.state = StateProving
		if err := t.generateProof(ctx); err != nil {
			return err
		}
		t.state = StateSubmitting
		return nil
	case StateSubmitting:
		receipt, err := t.contract.ProcessMatchSettle(ctx, t.Proof.Proof)
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
		panic(fmt.Sprintf("Step called on SettleMatchTask in state %v", t.state))
	}
}

func (t *SettleMatchTask) generateProof(_ context.Context) error {
	stmt, witness := statement.BuildMatchSettle(
		t.OldWallet.BlindedPublicShares, t.NewWallet, t.Counterparty, t.IsParty0, t.Match, t.Indices,
	)

	job := proofclient.ProofJob{
		ID: uuid.New(),
		Payload: proofclient.ValidMatchSettlePayload{
			Statement: stmt,
			Witness:   witness,
		},
	}
	resultCh, err := t.proofs.Enqueue(job)
	if err != nil {
		return newProofGenerationError("failed to enqueue match settle proof: %v", err)
	}
	result := <-resultCh
	if result.Err != nil {
		return newProofGenerationError("match settle proof failed: %v", result.Err)
	}

	bundle := result.Bundle
	t.Proof = &bundle
	return nil
}

var _ Task = (*SettleMatchTask)(nil)
