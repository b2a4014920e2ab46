package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/AlexZinkM/bundlr-wallet/internal/log"
)

const uniqueViolation = pq.ErrorCode("23505")

const schema = `
CREATE TABLE IF NOT EXISTS wallets (
  id                    TEXT PRIMARY KEY,
  name                  TEXT NOT NULL,
  encrypted_private_key TEXT NOT NULL,
  public_key_string     TEXT NOT NULL UNIQUE,
  created_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS launched_tokens (
  token_address TEXT PRIMARY KEY,
  token_account TEXT NOT NULL,
  creator       TEXT NOT NULL,
  name          TEXT NOT NULL,
  symbol        TEXT NOT NULL,
  decimals      SMALLINT NOT NULL,
  total_supply  TEXT NOT NULL,
  description   TEXT NOT NULL DEFAULT '',
  image_url     TEXT NOT NULL DEFAULT '',
  tx_id         TEXT NOT NULL,
  seed_batch_id TEXT NOT NULL DEFAULT '',
  seed_buys     INTEGER NOT NULL DEFAULT 0,
  seed_failures INTEGER NOT NULL DEFAULT 0,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// PostgresStore implements Store on a Postgres `wallets` table.
// The sealed key is stored as its JSON encoding in encrypted_private_key.
type PostgresStore struct {
	DB     *sql.DB
	logger zerolog.Logger
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{DB: db, logger: log.Store}
}

// OpenPostgres connects to dsn, pings it and creates the tables if missing.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	s := NewPostgresStore(db)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the tables used by the store.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveWalletRecord upserts a wallet record by id.
func (s *PostgresStore) SaveWalletRecord(ctx context.Context, rec WalletRecord) (string, error) {
	if err := validateWallet(rec); err != nil {
		return "", err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	sealed, err := json.Marshal(rec.EncryptedKey)
	if err != nil {
		return "", fmt.Errorf("failed to marshal sealed key: %w", err)
	}

	const q = `
INSERT INTO wallets (id, name, encrypted_private_key, public_key_string, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET
  name = EXCLUDED.name,
  encrypted_private_key = EXCLUDED.encrypted_private_key,
  public_key_string = EXCLUDED.public_key_string`
	_, err = s.DB.ExecContext(ctx, q, rec.ID, rec.Name, string(sealed), rec.Address, rec.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return "", ErrDuplicate
		}
		return "", fmt.Errorf("failed to save wallet record: %w", err)
	}

	s.logger.Debug().Str("id", rec.ID).Str("address", rec.Address).Msg("Wallet record saved")
	return rec.ID, nil
}

// LoadAllWalletRecords returns every wallet record ordered by creation time.
func (s *PostgresStore) LoadAllWalletRecords(ctx context.Context) ([]WalletRecord, error) {
	const q = `
SELECT id, name, encrypted_private_key, public_key_string, created_at
FROM wallets
ORDER BY created_at ASC, id ASC`
	rows, err := s.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallet records: %w", err)
	}
	defer rows.Close()

	var records []WalletRecord
	for rows.Next() {
		var (
			rec    WalletRecord
			sealed string
		)
		if err := rows.Scan(&rec.ID, &rec.Name, &sealed, &rec.Address, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wallet record: %w", err)
		}
		if err := json.Unmarshal([]byte(sealed), &rec.EncryptedKey); err != nil {
			s.logger.Warn().Str("id", rec.ID).Err(err).Msg("Skipping corrupt wallet record")
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read wallet records: %w", err)
	}
	return records, nil
}

// DeleteWalletRecord removes the record with id, reporting whether it existed.
func (s *PostgresStore) DeleteWalletRecord(ctx context.Context, id string) (bool, error) {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM wallets WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete wallet record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete wallet record: %w", err)
	}
	return n > 0, nil
}

// SaveLaunch upserts a launch record by mint address.
func (s *PostgresStore) SaveLaunch(ctx context.Context, rec LaunchRecord) error {
	if err := validateLaunch(rec); err != nil {
		return err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	const q = `
INSERT INTO launched_tokens (
  token_address, token_account, creator, name, symbol, decimals, total_supply,
  description, image_url, tx_id, seed_batch_id, seed_buys, seed_failures, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (token_address) DO UPDATE SET
  seed_batch_id = EXCLUDED.seed_batch_id,
  seed_buys = EXCLUDED.seed_buys,
  seed_failures = EXCLUDED.seed_failures`
	_, err := s.DB.ExecContext(ctx, q,
		rec.TokenAddress, rec.TokenAccount, rec.Creator, rec.Name, rec.Symbol, int16(rec.Decimals), rec.TotalSupply,
		rec.Description, rec.ImageURL, rec.TxID, rec.SeedBatchID, rec.SeedBuys, rec.SeedFailures, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save launch record: %w", err)
	}
	return nil
}

// ListLaunches returns launched tokens newest first.
func (s *PostgresStore) ListLaunches(ctx context.Context) ([]LaunchRecord, error) {
	const q = `
SELECT
  token_address, token_account, creator, name, symbol, decimals, total_supply,
  description, image_url, tx_id, seed_batch_id, seed_buys, seed_failures, created_at
FROM launched_tokens
ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query launch records: %w", err)
	}
	defer rows.Close()

	var records []LaunchRecord
	for rows.Next() {
		var (
			rec      LaunchRecord
			decimals int16
		)
		err := rows.Scan(
			&rec.TokenAddress, &rec.TokenAccount, &rec.Creator, &rec.Name, &rec.Symbol, &decimals, &rec.TotalSupply,
			&rec.Description, &rec.ImageURL, &rec.TxID, &rec.SeedBatchID, &rec.SeedBuys, &rec.SeedFailures, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan launch record: %w", err)
		}
		rec.Decimals = uint8(decimals)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read launch records: %w", err)
	}
	return records, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	return s.DB.Close()
}
