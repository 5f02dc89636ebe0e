package statestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/renegade-fi/wallet-engine/config"
	"github.com/renegade-fi/wallet-engine/wallet"
)

// PostgresStore is a Store backed by Postgres, giving the engine the durable
// crash-resumption guarantee the in-memory store cannot: a task's Submitting-
// or-later state must survive a process restart.
//
// Wallet and opening records are stored as a single jsonb column rather than
// a normalized relational schema: nothing downstream of this store ever
// queries into a wallet's balances or orders by SQL, only by id, so a
// normalized schema would buy nothing but migration churn.
type PostgresStore struct {
	pool *pgxpool.Pool

	autoRedeemFees bool
	feeKey         config.FeeKeyPair
}

// ConnectPostgres opens a connection pool to connStr and verifies it with a
// ping before handing the store to the caller.
func ConnectPostgres(ctx context.Context, connStr string, autoRedeemFees bool, feeKey config.FeeKeyPair) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping failed: %w", err)
	}

	return &PostgresStore{pool: pool, autoRedeemFees: autoRedeemFees, feeKey: feeKey}, nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// schema is the store's table layout, executed once at startup by InitSchema.
const schema = `
CREATE TABLE IF NOT EXISTS wallets (
	id         UUID PRIMARY KEY,
	wallet     JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS merkle_openings (
	wallet_id UUID PRIMARY KEY,
	opening   JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS order_validity_proofs (
	order_id UUID PRIMARY KEY,
	indices  JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL,
	state      INT NOT NULL,
	descriptor JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// InitSchema creates the store's tables if they do not already exist.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// GetWallet returns the wallet stored under id, or (nil, nil) if absent.
func (s *PostgresStore) GetWallet(ctx context.Context, id uuid.UUID) (*wallet.Wallet, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT wallet FROM wallets WHERE id = $1`, id).Scan(&raw)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}

	var w wallet.Wallet
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("failed to decode wallet %s: %w", id, err)
	}
	return &w, nil
}

// UpdateWallet durably upserts w, returning a Waiter that resolves once the
// INSERT ... ON CONFLICT commits (synchronously, since pgx's Exec already
// waits for the server's acknowledgment).
func (s *PostgresStore) UpdateWallet(ctx context.Context, w *wallet.Wallet) (Waiter, error) {
	raw, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("failed to encode wallet %s: %w", w.Id, err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO wallets (id, wallet, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET wallet = EXCLUDED.wallet, updated_at = NOW()
	`, w.Id, raw)

	return closedWaiter(err), err
}

// GetAutoRedeemFees returns the process-wide auto-redeem policy.
func (s *PostgresStore) GetAutoRedeemFees(context.Context) (bool, error) {
	return s.autoRedeemFees, nil
}

// GetFeeKey returns the relayer's fee keypair.
func (s *PostgresStore) GetFeeKey(context.Context) (config.FeeKeyPair, error) {
	return s.feeKey, nil
}

// PutOrderValidityProofs registers a validity proof bundle for an order,
// the Postgres-backed counterpart to InMemoryStore's method of the same name.
func (s *PostgresStore) PutOrderValidityProofs(ctx context.Context, bundle ValidityProofBundle) error {
	raw, err := json.Marshal(bundle.Indices)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO order_validity_proofs (order_id, indices) VALUES ($1, $2)
		ON CONFLICT (order_id) DO UPDATE SET indices = EXCLUDED.indices
	`, bundle.OrderID, raw)
	return err
}

// GetOrderValidityProofs returns the bundle previously registered for orderID.
func (s *PostgresStore) GetOrderValidityProofs(ctx context.Context, orderID uuid.UUID) (ValidityProofBundle, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT indices FROM order_validity_proofs WHERE order_id = $1`, orderID).Scan(&raw)
	if err != nil {
		if isNoRows(err) {
			return ValidityProofBundle{}, newStateMissingError("no validity proofs for order " + orderID.String())
		}
		return ValidityProofBundle{}, err
	}

	var bundle ValidityProofBundle
	bundle.OrderID = orderID
	if err := json.Unmarshal(raw, &bundle.Indices); err != nil {
		return ValidityProofBundle{}, err
	}
	return bundle, nil
}

// GetMerkleOpening returns the opening previously recorded for walletID.
func (s *PostgresStore) GetMerkleOpening(ctx context.Context, walletID uuid.UUID) (wallet.MerkleOpening, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT opening FROM merkle_openings WHERE wallet_id = $1`, walletID).Scan(&raw)
	if err != nil {
		if isNoRows(err) {
			return wallet.MerkleOpening{}, newStateMissingError("no merkle opening recorded for wallet " + walletID.String())
		}
		return wallet.MerkleOpening{}, err
	}

	var opening wallet.MerkleOpening
	if err := json.Unmarshal(raw, &opening); err != nil {
		return wallet.MerkleOpening{}, err
	}
	return opening, nil
}

// PutMerkleOpening records opening as the current merkle opening for walletID.
func (s *PostgresStore) PutMerkleOpening(ctx context.Context, walletID uuid.UUID, opening wallet.MerkleOpening) error {
	raw, err := json.Marshal(opening)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO merkle_openings (wallet_id, opening) VALUES ($1, $2)
		ON CONFLICT (wallet_id) DO UPDATE SET opening = EXCLUDED.opening
	`, walletID, raw)
	return err
}

// PutTaskRecord upserts rec under its task id.
func (s *PostgresStore) PutTaskRecord(ctx context.Context, rec TaskRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tasks (id, name, state, descriptor, updated_at) VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, state = EXCLUDED.state,
			descriptor = EXCLUDED.descriptor, updated_at = NOW()
	`, rec.ID, rec.Name, rec.State, []byte(rec.Descriptor))
	return err
}

// ListTaskRecords returns every persisted task record.
func (s *PostgresStore) ListTaskRecords(ctx context.Context) ([]TaskRecord, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, state, descriptor FROM tasks`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []TaskRecord
	for rows.Next() {
		var rec TaskRecord
		var descriptor []byte
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.State, &descriptor); err != nil {
			return nil, err
		}
		rec.Descriptor = json.RawMessage(descriptor)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteTaskRecord removes the record for taskID, a no-op if absent.
func (s *PostgresStore) DeleteTaskRecord(ctx context.Context, taskID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, taskID)
	return err
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

var _ Store = (*PostgresStore)(nil)
