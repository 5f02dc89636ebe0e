// Package statestore implements the engine's view of the global state store: the
// sole shared mutable resource per the concurrency model, exposing an atomic
// get/update interface over wallet records and the process-wide settings tasks
// consult (auto-redeem policy, the fee decryption key, outstanding validity proof
// bundles for open orders).
package statestore

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/renegade-fi/wallet-engine/config"
	"github.com/renegade-fi/wallet-engine/matchresult"
	"github.com/renegade-fi/wallet-engine/wallet"
)

// Waiter resolves (by closing, with at most one error sent first) once a wallet
// write is durable. Tasks await a Waiter after calling UpdateWallet so that a
// crash between the write call and its persistence is never mistaken for success.
type Waiter <-chan error

// closedWaiter returns a Waiter that has already resolved with the given error
// (nil on success), used by in-memory stores whose writes are synchronous.
func closedWaiter(err error) Waiter {
	ch := make(chan error, 1)
	if err != nil {
		ch <- err
	}
	close(ch)
	return ch
}

// ValidityProofBundle is the set of validity proofs backing an order's ability to
// be matched: a MatchResult-producing settlement reads these to know which
// balance/order slots a match may touch without re-deriving them from the wallet.
type ValidityProofBundle struct {
	OrderID uuid.UUID
	Indices matchresult.OrderSettlementIndices
}

// TaskRecord is the persisted form of a running task: its position in the
// state machine as a stable ordinal, plus the task's own serialized fields
// (descriptor, derived wallets, proof, receipt). A task that has passed its
// commit point is re-entered from this record on restart; one that has not is
// simply discarded and re-derived from scratch.
type TaskRecord struct {
	ID         uuid.UUID
	Name       string
	State      int
	Descriptor json.RawMessage
}

// Store is the engine's view of the global state store. Implementations must
// serialize mutating writes per wallet (at most one of Submitting-or-later task
// per wallet, per the concurrency model). InMemoryStore serializes all writes to
// a given wallet ID through a per-wallet lock; PostgresStore takes no lock of its
// own and relies on callers (task.Driver's per-wallet locks) for that ordering.
type Store interface {
	// GetWallet returns the wallet for the given id, or (nil, nil) if absent.
	GetWallet(ctx context.Context, id uuid.UUID) (*wallet.Wallet, error)
	// UpdateWallet durably persists w, returning a Waiter that resolves once the
	// write is committed.
	UpdateWallet(ctx context.Context, w *wallet.Wallet) (Waiter, error)
	// GetAutoRedeemFees returns whether the relayer automatically redeems fee
	// notes once it holds a decryption key for them.
	GetAutoRedeemFees(ctx context.Context) (bool, error)
	// GetFeeKey returns the relayer's fee keypair.
	GetFeeKey(ctx context.Context) (config.FeeKeyPair, error)
	// GetOrderValidityProofs returns the validity proof bundle backing the given
	// order, or an error if the order has none outstanding.
	GetOrderValidityProofs(ctx context.Context, orderID uuid.UUID) (ValidityProofBundle, error)
	// GetMerkleOpening returns the merkle opening most recently recorded for the
	// given wallet's current on-chain commitment.
	GetMerkleOpening(ctx context.Context, walletID uuid.UUID) (wallet.MerkleOpening, error)
	// PutMerkleOpening records the merkle opening for the given wallet's current
	// on-chain commitment, replacing whatever was recorded before.
	PutMerkleOpening(ctx context.Context, walletID uuid.UUID, opening wallet.MerkleOpening) error
	// PutTaskRecord durably records a task's current position, replacing any
	// prior record under the same task id.
	PutTaskRecord(ctx context.Context, rec TaskRecord) error
	// ListTaskRecords returns every task record currently persisted.
	ListTaskRecords(ctx context.Context) ([]TaskRecord, error)
	// DeleteTaskRecord removes the record for the given task id, if present.
	DeleteTaskRecord(ctx context.Context, taskID uuid.UUID) error
}

// InMemoryStore is a Store backed by an in-process map, guarded by a per-wallet
// mutex so that concurrent tasks touching different wallets never block one
// another while same-wallet writes still serialize.
type InMemoryStore struct {
	mu             sync.Mutex
	wallets        map[uuid.UUID]*wallet.Wallet
	walletLocks    map[uuid.UUID]*sync.Mutex
	autoRedeemFees bool
	feeKey         config.FeeKeyPair
	validityProofs map[uuid.UUID]ValidityProofBundle
	merkleOpenings map[uuid.UUID]wallet.MerkleOpening
	taskRecords    map[uuid.UUID]TaskRecord
}

// NewInMemoryStore constructs an empty in-memory store.
func NewInMemoryStore(autoRedeemFees bool, feeKey config.FeeKeyPair) *InMemoryStore {
	return &InMemoryStore{
		wallets:        make(map[uuid.UUID]*wallet.Wallet),
		walletLocks:    make(map[uuid.UUID]*sync.Mutex),
		autoRedeemFees: autoRedeemFees,
		feeKey:         feeKey,
		validityProofs: make(map[uuid.UUID]ValidityProofBundle),
		merkleOpenings: make(map[uuid.UUID]wallet.MerkleOpening),
		taskRecords:    make(map[uuid.UUID]TaskRecord),
	}
}

// lockFor returns (creating if necessary) the per-wallet mutex serializing writes
// to the given wallet id.
func (s *InMemoryStore) lockFor(id uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.walletLocks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.walletLocks[id] = lock
	}
	return lock
}

// GetWallet returns a copy of the stored wallet so that callers mutating it (as
// every task does when deriving a new wallet) never race the store's own copy.
func (s *InMemoryStore) GetWallet(_ context.Context, id uuid.UUID) (*wallet.Wallet, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	w, ok := s.wallets[id]
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}

	cp := *w
	cp.Orders = append([]wallet.Order(nil), w.Orders...)
	cp.Balances = append([]wallet.Balance(nil), w.Balances...)
	if w.Keychain != nil {
		kc := *w.Keychain
		cp.Keychain = &kc
	}
	return &cp, nil
}

// UpdateWallet stores w, serialized against any other write to the same wallet id.
func (s *InMemoryStore) UpdateWallet(_ context.Context, w *wallet.Wallet) (Waiter, error) {
	lock := s.lockFor(w.Id)
	lock.Lock()
	defer lock.Unlock()

	cp := *w
	s.mu.Lock()
	s.wallets[w.Id] = &cp
	s.mu.Unlock()

	return closedWaiter(nil), nil
}

// GetAutoRedeemFees returns the configured auto-redeem policy.
func (s *InMemoryStore) GetAutoRedeemFees(_ context.Context) (bool, error) {
	return s.autoRedeemFees, nil
}

// GetFeeKey returns the relayer's fee keypair.
func (s *InMemoryStore) GetFeeKey(_ context.Context) (config.FeeKeyPair, error) {
	return s.feeKey, nil
}

// PutOrderValidityProofs registers a validity proof bundle for an order, used by
// tests and by the validity-proof-refresh path to seed the store.
func (s *InMemoryStore) PutOrderValidityProofs(bundle ValidityProofBundle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.validityProofs[bundle.OrderID] = bundle
}

// GetOrderValidityProofs returns the bundle previously registered for orderID.
func (s *InMemoryStore) GetOrderValidityProofs(_ context.Context, orderID uuid.UUID) (ValidityProofBundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bundle, ok := s.validityProofs[orderID]
	if !ok {
		return ValidityProofBundle{}, newStateMissingError("no validity proofs for order " + orderID.String())
	}
	return bundle, nil
}

// GetMerkleOpening returns the opening previously recorded for walletID, or an
// error if none has been recorded yet.
func (s *InMemoryStore) GetMerkleOpening(_ context.Context, walletID uuid.UUID) (wallet.MerkleOpening, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	opening, ok := s.merkleOpenings[walletID]
	if !ok {
		return wallet.MerkleOpening{}, newStateMissingError("no merkle opening recorded for wallet " + walletID.String())
	}
	return opening, nil
}

// PutMerkleOpening records opening as the current merkle opening for walletID.
func (s *InMemoryStore) PutMerkleOpening(_ context.Context, walletID uuid.UUID, opening wallet.MerkleOpening) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.merkleOpenings[walletID] = opening
	return nil
}

// PutTaskRecord records rec, replacing any prior record for the same task id.
func (s *InMemoryStore) PutTaskRecord(_ context.Context, rec TaskRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.taskRecords[rec.ID] = rec
	return nil
}

// ListTaskRecords returns every persisted task record.
func (s *InMemoryStore) ListTaskRecords(_ context.Context) ([]TaskRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]TaskRecord, 0, len(s.taskRecords))
	for _, rec := range s.taskRecords {
		records = append(records, rec)
	}
	return records, nil
}

// DeleteTaskRecord removes the record for taskID, a no-op if absent.
func (s *InMemoryStore) DeleteTaskRecord(_ context.Context, taskID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.taskRecords, taskID)
	return nil
}

// StateMissingError reports that a wallet, balance, or validity proof the caller
// expected to find in the store is absent. It is retryable: the missing state may
// simply not have propagated yet.
type StateMissingError struct {
	msg string
}

func (e *StateMissingError) Error() string {
	return e.msg
}

// Retryable reports that missing state may become available on a later attempt.
func (e *StateMissingError) Retryable() bool {
	return true
}

func newStateMissingError(msg string) error {
	return &StateMissingError{msg: msg}
}

var _ Store = (*InMemoryStore)(nil)
