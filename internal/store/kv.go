package store

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/AlexZinkM/bundlr-wallet/internal/log"
)

var (
	walletPrefix = []byte("wallet/")
	launchPrefix = []byte("token/")
)

// KVStore implements Store over a key-value DB. Values are JSON.
type KVStore struct {
	db     DB
	logger zerolog.Logger
}

// NewKVStore wraps db. The store owns db and closes it on Close.
func NewKVStore(db DB) *KVStore {
	return &KVStore{db: db, logger: log.Store}
}

func walletKey(id string) []byte {
	return append(slices.Clone(walletPrefix), id...)
}

func launchKey(mint string) []byte {
	return append(slices.Clone(launchPrefix), mint...)
}

// SaveWalletRecord inserts or replaces a wallet record.
func (s *KVStore) SaveWalletRecord(ctx context.Context, rec WalletRecord) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := validateWallet(rec); err != nil {
		return "", err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	created, err := s.createdAt(rec.ID)
	if err != nil {
		return "", err
	}
	switch {
	case !created.IsZero():
		rec.CreatedAt = created
	case rec.CreatedAt.IsZero():
		rec.CreatedAt = time.Now().UTC()
	}
	if err := s.checkAddress(rec); err != nil {
		return "", err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal wallet record: %w", err)
	}
	if err := s.db.Put(walletKey(rec.ID), data); err != nil {
		return "", fmt.Errorf("failed to save wallet record: %w", err)
	}

	s.logger.Debug().Str("id", rec.ID).Str("address", rec.Address).Msg("Wallet record saved")
	return rec.ID, nil
}

// createdAt returns the creation time of the stored record with id, or zero
// when there is none. A replaced record keeps its original creation time.
func (s *KVStore) createdAt(id string) (time.Time, error) {
	data, err := s.db.Get(walletKey(id))
	if errors.Is(err, ErrNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read wallet record: %w", err)
	}
	var existing WalletRecord
	if json.Unmarshal(data, &existing) != nil {
		return time.Time{}, nil
	}
	return existing.CreatedAt, nil
}

func (s *KVStore) checkAddress(rec WalletRecord) error {
	err := s.db.ForEach(walletPrefix, func(_, value []byte) error {
		var other WalletRecord
		if json.Unmarshal(value, &other) != nil {
			return nil
		}
		if other.Address == rec.Address && other.ID != rec.ID {
			return ErrDuplicate
		}
		return nil
	})
	if errors.Is(err, ErrDuplicate) {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to scan wallet records: %w", err)
	}
	return nil
}

// LoadAllWalletRecords returns every wallet record ordered by creation time.
func (s *KVStore) LoadAllWalletRecords(ctx context.Context) ([]WalletRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var records []WalletRecord
	err := s.db.ForEach(walletPrefix, func(key, value []byte) error {
		var rec WalletRecord
		if err := json.Unmarshal(value, &rec); err != nil {
			s.logger.Warn().Str("key", string(key)).Err(err).Msg("Skipping corrupt wallet record")
			return nil
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet records: %w", err)
	}

	slices.SortStableFunc(records, func(a, b WalletRecord) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return records, nil
}

// DeleteWalletRecord removes the record with id, reporting whether it existed.
func (s *KVStore) DeleteWalletRecord(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	key := walletKey(id)
	exists, err := s.db.Has(key)
	if err != nil {
		return false, fmt.Errorf("failed to check wallet record: %w", err)
	}
	if !exists {
		return false, nil
	}
	if err := s.db.Delete(key); err != nil {
		return false, fmt.Errorf("failed to delete wallet record: %w", err)
	}

	s.logger.Debug().Str("id", id).Msg("Wallet record deleted")
	return true, nil
}

// SaveLaunch records a launched token, keyed by mint address.
func (s *KVStore) SaveLaunch(ctx context.Context, rec LaunchRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateLaunch(rec); err != nil {
		return err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal launch record: %w", err)
	}
	if err := s.db.Put(launchKey(rec.TokenAddress), data); err != nil {
		return fmt.Errorf("failed to save launch record: %w", err)
	}
	return nil
}

// ListLaunches returns launched tokens newest first.
func (s *KVStore) ListLaunches(ctx context.Context) ([]LaunchRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var records []LaunchRecord
	err := s.db.ForEach(launchPrefix, func(key, value []byte) error {
		var rec LaunchRecord
		if err := json.Unmarshal(value, &rec); err != nil {
			s.logger.Warn().Str("key", string(key)).Err(err).Msg("Skipping corrupt launch record")
			return nil
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load launch records: %w", err)
	}

	slices.SortStableFunc(records, func(a, b LaunchRecord) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return records, nil
}

// Close closes the underlying database.
func (s *KVStore) Close() error {
	return s.db.Close()
}
