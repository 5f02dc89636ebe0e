package task

import (
	"context"
	"fmt"
	"log"

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

// PayOfflineFeeTask pays an accrued fee balance (protocol or relayer) out of a
// wallet as an offline note: the balance is zeroed, a note is minted in its
// place, and the note is later redeemed independently by its recipient.
type PayOfflineFeeTask struct {
	ID            uuid.UUID
	IsProtocolFee bool
	Mint          wallet.Address
	WalletID      uuid.UUID

	OldWallet *wallet.Wallet
	NewWallet *wallet.Wallet

	Note                 fees.Note
	NoteCiphertext       fees.EncryptedNote
	EncryptionRandomness wallet.Scalar
	SendIndex            int

	Proof   *proofclient.ProofBundle
	Receipt *contractclient.TxReceipt

	state    State
	cfg      *config.ProtocolConfig
	store    statestore.Store
	proofs   proofclient.Enqueuer
	contract contractclient.Client
	network  networkqueue.Queue

	// followOn is populated during the FindingOpening step, if the
	// recipient relayer auto-redeems and already holds a decryption key.
	followOn *RedeemFeeTask
}

// NewPayOfflineFeeTask constructs a PayOfflineFeeTask for paying out the
// accrued fee on mint in walletID's balance. amount must equal the balance's
// currently accrued fee (protocol or relayer, per isProtocolFee); a mismatch
// means the caller was constructed against stale state and is fatal, not
// retryable, since re-running the same task would fail identically.
func NewPayOfflineFeeTask(
	ctx context.Context,
	walletID uuid.UUID,
	mint wallet.Address,
	isProtocolFee bool,
	amount wallet.Amount,
	cfg *config.ProtocolConfig,
	store statestore.Store,
	proofs proofclient.Enqueuer,
	contract contractclient.Client,
	network networkqueue.Queue,
) (*PayOfflineFeeTask, error) {
	oldWallet, err := store.GetWallet(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if oldWallet == nil {
		return nil, newStateMissingError("no wallet found for id %s", walletID)
	}

	newWallet := cloneWallet(oldWallet)
	balance, sendIndex := newWallet.GetBalance(mint)
	if balance == nil {
		return nil, newStateMissingError("wallet %s has no balance for mint %s", walletID, mint.ToHexString())
	}

	accrued := balance.ProtocolFeeBalance
	if !isProtocolFee {
		accrued = balance.RelayerFeeBalance
	}
	accruedAmount, err := wallet.AmountFromScalar(accrued)
	if err != nil {
		return nil, err
	}
	if accruedAmount.Cmp(amount) != 0 {
		return nil, newInvalidFeeAmountError(
			"expected accrued fee %s for mint %s, got descriptor amount %s",
			accruedAmount.String(), mint.ToHexString(), amount.String(),
		)
	}

	var note fees.Note
	if isProtocolFee {
		note, err = fees.CreateProtocolNote(balance, cfg.ProtocolKey)
	} else {
		note, err = fees.CreateRelayerNote(balance, newWallet.ManagingCluster)
	}
	if err != nil {
		return nil, err
	}

	if err := newWallet.Reblind(); err != nil {
		return nil, err
	}

	ciphertext, err := fees.EncryptNote(&note)
	if err != nil {
		return nil, err
	}

	return &PayOfflineFeeTask{
		ID:                   uuid.New(),
		IsProtocolFee:        isProtocolFee,
		Mint:                 mint,
		WalletID:             walletID,
		OldWallet:            oldWallet,
		NewWallet:            newWallet,
		Note:                 note,
		NoteCiphertext:       ciphertext,
		EncryptionRandomness: ciphertext.EncryptionRandomness,
		SendIndex:            sendIndex,
		state:                StatePending,
		cfg:                  cfg,
		store:                store,
		proofs:               proofs,
		contract:             contract,
		network:              network,
	}, nil
}

func (t *PayOfflineFeeTask) Name() string { return "PayOfflineFeeTask" }
func (t *PayOfflineFeeTask) State() State { return t.state }
func (t *PayOfflineFeeTask) Completed() bool { return t.state == StateCompleted }

// Step advances the task by one state transition.
func (t *PayOfflineFeeTask) Step(ctx context.Context) error {
	switch t.state {
	case StatePending, StateProving:
		t.state = StateProving
		if err := t.generateProof(ctx); err != nil {
			return err
		}
		t.state = StateSubmitting
		return nil
	case StateSubmitting:
		if err := t.submitPayment(ctx); err != nil {
			return err
		}
		t.state = StateFindingOpening
		return nil
	case StateFindingOpening:
		if err := t.findMerkleOpening(ctx); err != nil {
			return err
		}
		t.state = StateUpdatingValidityProofs
		return nil
	case StateUpdatingValidityProofs:
		if err := t.updateValidityProofs(ctx); err != nil {
			return err
		}
		t.state = StateCompleted
		return nil
	default:
		panic(fmt.Sprintf("Step called on PayOfflineFeeTask in state %v", t.state))
	}
}

// FollowOnTask returns the task that should run next once this one completes
// (a RedeemFeeTask, if the recipient relayer auto-redeems and already holds
// a decryption key), or nil.
func (t *PayOfflineFeeTask) FollowOnTask() Task {
	if t.followOn == nil {
		return nil
	}
	return t.followOn
}

func (t *PayOfflineFeeTask) generateProof(ctx context.Context) error {
	opening, err := t.store.GetMerkleOpening(ctx, t.WalletID)
	if err != nil {
		return err
	}

	stmt, witness, err := statement.BuildOfflineFeeSettlement(
		t.OldWallet, t.NewWallet, t.Note, t.NoteCiphertext, t.EncryptionRandomness,
		opening, t.cfg.ProtocolKey, t.IsProtocolFee, t.SendIndex,
	)
	if err != nil {
		return err
	}

	job := proofclient.ProofJob{
		ID: uuid.New(),
		Payload: proofclient.ValidOfflineFeeSettlementPayload{
			Statement: stmt,
			Witness:   witness,
		},
	}

	resultCh, err := t.proofs.Enqueue(job)
	if err != nil {
		return newProofGenerationError("failed to enqueue offline fee settlement proof: %v", err)
	}

	result := <-resultCh
	if result.Err != nil {
		return newProofGenerationError("offline fee settlement proof failed: %v", result.Err)
	}

	bundle := result.Bundle
	t.Proof = &bundle
	return nil
}

func (t *PayOfflineFeeTask) submitPayment(ctx context.Context) error {
	receipt, err := t.contract.SettleOfflineFee(ctx, t.Proof.Proof)
	if err != nil {
		return err
	}
	t.Receipt = &receipt
	return nil
}

func (t *PayOfflineFeeTask) findMerkleOpening(ctx context.Context) error {
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

	t.network.Publish(networkqueue.Message{
		Kind:     networkqueue.MessageKindWalletUpdate,
		WalletID: t.WalletID,
	})

	autoRedeem, err := t.store.GetAutoRedeemFees(ctx)
	if err != nil {
		return err
	}
	if autoRedeem && !t.IsProtocolFee {
		feeKey, err := t.store.GetFeeKey(ctx)
		if err != nil {
			return err
		}
		if feeKey.HasSecretKey() {
			redeemTask, err := NewRedeemFeeTask(
				ctx, t.WalletID, t.Note, t.NoteCiphertext, t.EncryptionRandomness, *feeKey.SecretKey,
				t.cfg, t.store, t.proofs, t.contract, t.network,
			)
			if err != nil {
				log.Printf("pay_offline_fee: failed to construct follow-on redeem task: %v", err)
			} else {
				t.followOn = redeemTask
			}
		}
	}

	return nil
}

func (t *PayOfflineFeeTask) updateValidityProofs(ctx context.Context) error {
	if err := refreshValidityProofs(ctx, t.NewWallet); err != nil {
		return newUpdateValidityProofsError("%v", err)
	}
	return nil
}

// cloneWallet deep-copies the parts of a wallet a task mutates, leaving the
// original (as committed in the tree) untouched.
func cloneWallet(w *wallet.Wallet) *wallet.Wallet {
	cp := *w
	cp.Orders = append([]wallet.Order(nil), w.Orders...)
	cp.Balances = append([]wallet.Balance(nil), w.Balances...)
	if w.Keychain != nil {
		kc := *w.Keychain
		cp.Keychain = &kc
	}
	return &cp
}

// refreshValidityProofs checks that each of a wallet's open orders still has a
// balance for its base mint in the new balances/orders layout, and returns an
// error for the first one that does not. It generates no validity proofs and
// records nothing.
func refreshValidityProofs(_ context.Context, w *wallet.Wallet) error {
	for _, order := range w.GetNonzeroOrders() {
		_, idx := w.GetBalance(wallet.AddressFromScalar(order.BaseMint))
		if idx < 0 {
			return fmt.Errorf("no balance for order %s base mint", order.Id)
		}
	}
	return nil
}

var _ Task = (*PayOfflineFeeTask)(nil)
