// Package store persists sealed wallet records and launched tokens.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/AlexZinkM/bundlr-wallet/internal/crypto"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrInvalidRecord = errors.New("invalid record")
	ErrDuplicate     = errors.New("a record with this address already exists")
)

// WalletRecord is a stored wallet. The signing key is always sealed.
type WalletRecord struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	EncryptedKey crypto.Sealed `json:"encryptedPrivateKey"`
	Address      string        `json:"publicKey"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// LaunchRecord describes a token minted through the service.
type LaunchRecord struct {
	TokenAddress string    `json:"tokenAddress"`
	TokenAccount string    `json:"tokenAccount"`
	Creator      string    `json:"creator"`
	Name         string    `json:"name"`
	Symbol       string    `json:"symbol"`
	Decimals     uint8     `json:"decimals"`
	TotalSupply  string    `json:"totalSupply"`
	Description  string    `json:"description,omitempty"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	TxID         string    `json:"txId"`
	SeedBatchID  string    `json:"seedBatchId,omitempty"`
	SeedBuys     int       `json:"seedBuys"`
	SeedFailures int       `json:"seedFailures"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Store is the persistence boundary used by the session and the launch flow.
type Store interface {
	// SaveWalletRecord inserts or replaces a record and returns its id.
	// An empty id is assigned a new uuid. A second record for the same
	// address fails with ErrDuplicate.
	SaveWalletRecord(ctx context.Context, rec WalletRecord) (string, error)
	// LoadAllWalletRecords returns every record ordered by creation time.
	LoadAllWalletRecords(ctx context.Context) ([]WalletRecord, error)
	// DeleteWalletRecord reports whether a record was removed.
	DeleteWalletRecord(ctx context.Context, id string) (bool, error)
	SaveLaunch(ctx context.Context, rec LaunchRecord) error
	// ListLaunches returns launches newest first.
	ListLaunches(ctx context.Context) ([]LaunchRecord, error)
	Close() error
}

func validateWallet(rec WalletRecord) error {
	switch {
	case rec.Address == "":
		return errors.Join(ErrInvalidRecord, errors.New("address is required"))
	case rec.EncryptedKey.CipherText == "":
		return errors.Join(ErrInvalidRecord, errors.New("encrypted key is required"))
	}
	return nil
}

func validateLaunch(rec LaunchRecord) error {
	if rec.TokenAddress == "" {
		return errors.Join(ErrInvalidRecord, errors.New("token address is required"))
	}
	return nil
}
