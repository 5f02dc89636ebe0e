package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/renegade-fi/wallet-engine/config"
	"github.com/renegade-fi/wallet-engine/contractclient"
	"github.com/renegade-fi/wallet-engine/networkqueue"
	"github.com/renegade-fi/wallet-engine/proofclient"
	"github.com/renegade-fi/wallet-engine/statestore"
)

// Deps bundles the collaborators every task is constructed with, so a task
// rehydrated from a persisted record can be re-attached to live clients
// without each call site threading five arguments through.
type Deps struct {
	Cfg      *config.ProtocolConfig
	Store    statestore.Store
	Proofs   proofclient.Enqueuer
	Contract contractclient.Client
	Network  networkqueue.Queue
}

// identifiable is implemented by every task that persists a record under a
// stable task id.
type identifiable interface {
	TaskID() uuid.UUID
}

func (t *NewWalletTask) TaskID() uuid.UUID                  { return t.ID }
func (t *UpdateWalletTask) TaskID() uuid.UUID               { return t.ID }
func (t *PayOfflineFeeTask) TaskID() uuid.UUID              { return t.ID }
func (t *PayRelayerFeeTask) TaskID() uuid.UUID              { return t.ID }
func (t *RedeemFeeTask) TaskID() uuid.UUID                  { return t.ID }
func (t *SettleMatchTask) TaskID() uuid.UUID                { return t.ID }
func (t *SettleAtomicMatchTask) TaskID() uuid.UUID          { return t.ID }
func (t *SettleMalleableAtomicMatchTask) TaskID() uuid.UUID { return t.ID }

// attach re-binds a rehydrated task to live collaborators and restores its
// state machine position. Only the exported descriptor fields travel through
// the persisted record; everything unexported is re-injected here.
func (t *NewWalletTask) attach(deps Deps, s State) {
	t.state = s
	t.store, t.proofs, t.contract, t.network = deps.Store, deps.Proofs, deps.Contract, deps.Network
}

func (t *UpdateWalletTask) attach(deps Deps, s State) {
	t.state = s
	t.store, t.proofs, t.contract, t.network = deps.Store, deps.Proofs, deps.Contract, deps.Network
}

func (t *PayOfflineFeeTask) attach(deps Deps, s State) {
	t.state = s
	t.cfg = deps.Cfg
	t.store, t.proofs, t.contract, t.network = deps.Store, deps.Proofs, deps.Contract, deps.Network
}

func (t *PayRelayerFeeTask) attach(deps Deps, s State) {
	t.state = s
	t.cfg = deps.Cfg
	t.store, t.proofs, t.contract, t.network = deps.Store, deps.Proofs, deps.Contract, deps.Network
}

func (t *RedeemFeeTask) attach(deps Deps, s State) {
	t.state = s
	t.cfg = deps.Cfg
	t.store, t.proofs, t.contract, t.network = deps.Store, deps.Proofs, deps.Contract, deps.Network
}

func (t *SettleMatchTask) attach(deps Deps, s State) {
	t.state = s
	t.cfg = deps.Cfg
	t.store, t.proofs, t.contract, t.network = deps.Store, deps.Proofs, deps.Contract, deps.Network
}

func (t *SettleAtomicMatchTask) attach(deps Deps, s State) {
	t.state = s
	t.store, t.proofs, t.contract, t.network = deps.Store, deps.Proofs, deps.Contract, deps.Network
}

func (t *SettleMalleableAtomicMatchTask) attach(deps Deps, s State) {
	t.state = s
	t.store, t.proofs, t.contract, t.network = deps.Store, deps.Proofs, deps.Contract, deps.Network
}

// resumable is the contract a task must satisfy to be rehydrated from a
// persisted record.
type resumable interface {
	Task
	identifiable
	attach(deps Deps, s State)
}

// resumeConstructors maps a persisted record's task name to an empty instance
// for the descriptor to be unmarshaled into. A reblind resumes as the
// UpdateWalletTask it runs as.
var resumeConstructors = map[string]func() resumable{
	"NewWalletTask":                  func() resumable { return &NewWalletTask{} },
	"UpdateWalletTask":               func() resumable { return &UpdateWalletTask{} },
	"PayOfflineFeeTask":              func() resumable { return &PayOfflineFeeTask{} },
	"PayRelayerFeeTask":              func() resumable { return &PayRelayerFeeTask{} },
	"RedeemFeeTask":                  func() resumable { return &RedeemFeeTask{} },
	"SettleMatchTask":                func() resumable { return &SettleMatchTask{} },
	"SettleAtomicMatchTask":          func() resumable { return &SettleAtomicMatchTask{} },
	"SettleMalleableAtomicMatchTask": func() resumable { return &SettleMalleableAtomicMatchTask{} },
}

// snapshotTask serializes t's descriptor fields and state machine position
// into a persistable record.
func snapshotTask(t Task, id uuid.UUID) (statestore.TaskRecord, error) {
	descriptor, err := json.Marshal(t)
	if err != nil {
		return statestore.TaskRecord{}, fmt.Errorf("failed to serialize task %s: %w", t.Name(), err)
	}

	return statestore.TaskRecord{
		ID:         id,
		Name:       t.Name(),
		State:      int(t.State()),
		Descriptor: descriptor,
	}, nil
}

// ResumeTask rehydrates a task from its persisted record, re-attaching it to
// the given collaborators at the state it was last checkpointed in.
func ResumeTask(rec statestore.TaskRecord, deps Deps) (Task, error) {
	construct, ok := resumeConstructors[rec.Name]
	if !ok {
		return nil, fmt.Errorf("unknown task kind in persisted record: %q", rec.Name)
	}

	t := construct()
	if err := json.Unmarshal(rec.Descriptor, t); err != nil {
		return nil, fmt.Errorf("failed to deserialize task %s record %s: %w", rec.Name, rec.ID, err)
	}

	t.attach(deps, State(rec.State))
	return t, nil
}

// ResumeUnfinished loads every persisted task record and rehydrates the tasks
// that must be driven to completion: those at or past their commit point,
// whose on-chain effects are already in flight. Pre-commit records are
// discarded (their tasks had no on-chain effect and are re-derived from
// scratch by whoever requested them), matching the cancellation model.
func ResumeUnfinished(ctx context.Context, store statestore.Store, deps Deps) ([]Task, error) {
	records, err := store.ListTaskRecords(ctx)
	if err != nil {
		return nil, err
	}

	var tasks []Task
	for _, rec := range records {
		if State(rec.State) < CommitPoint {
			if err := store.DeleteTaskRecord(ctx, rec.ID); err != nil {
				return nil, err
			}
			continue
		}

		t, err := ResumeTask(rec, deps)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	return tasks, nil
}
