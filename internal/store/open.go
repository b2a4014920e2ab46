package store

import (
	"context"
	"fmt"
	"os"
)

// Backend names accepted by Open.
const (
	BackendBadger   = "badger"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Options selects and configures a store backend.
type Options struct {
	Backend     string
	Path        string // badger directory
	PostgresDSN string
}

// Open returns the Store for opts.Backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendBadger:
		if err := os.MkdirAll(opts.Path, 0700); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
		db, err := NewBadger(opts.Path)
		if err != nil {
			return nil, err
		}
		return NewKVStore(db), nil
	case BackendPostgres:
		return OpenPostgres(ctx, opts.PostgresDSN)
	case BackendMemory:
		return NewKVStore(NewMemory()), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
