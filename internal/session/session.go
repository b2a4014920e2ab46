// Package session holds the unlocked wallets of the running service.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"github.com/AlexZinkM/bundlr-wallet/internal/crypto"
	"github.com/AlexZinkM/bundlr-wallet/internal/log"
	"github.com/AlexZinkM/bundlr-wallet/internal/store"
	"github.com/AlexZinkM/bundlr-wallet/internal/wallet"
)

var (
	ErrNotLoggedIn     = errors.New("not logged in")
	ErrAlreadyLoggedIn = errors.New("already logged in")
)

// Skipped describes a stored record that could not be restored.
type Skipped struct {
	ID      string `json:"id"`
	Address string `json:"address"`
	Reason  string `json:"reason"`
}

// RestoreReport is the outcome of Login.
type RestoreReport struct {
	Restored int       `json:"restored"`
	Skipped  []Skipped `json:"skipped"`
}

// Guard keeps new batches from starting while keys are wiped.
type Guard interface {
	Hold() (release func(), err error)
}

// Session owns the password, the wallet registry and the link to the store.
type Session struct {
	store    store.Store
	registry *wallet.Registry
	params   crypto.Params
	guard    Guard
	logger   zerolog.Logger

	mu        sync.RWMutex
	password  []byte
	persisted map[string]bool
}

// New creates a logged-out session. params are the scrypt costs used for newly sealed keys.
func New(st store.Store, params crypto.Params) *Session {
	return &Session{
		store:     st,
		registry:  wallet.NewRegistry(),
		params:    params,
		logger:    log.Session,
		persisted: make(map[string]bool),
	}
}

// SetGuard makes Logout refuse to run while g reports work in progress.
func (s *Session) SetGuard(g Guard) {
	s.mu.Lock()
	s.guard = g
	s.mu.Unlock()
}

// Registry returns the session wallets. It is empty while logged out.
func (s *Session) Registry() *wallet.Registry {
	return s.registry
}

// LoggedIn reports whether Login succeeded and Logout has not been called since.
func (s *Session) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.password != nil
}

// Persisted reports whether the wallet with id is saved in the store.
func (s *Session) Persisted(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persisted[id]
}

// Login keeps a copy of password and restores every stored wallet it can decrypt.
// Records that fail to decrypt or parse are skipped and reported.
func (s *Session) Login(ctx context.Context, password []byte) (*RestoreReport, error) {
	if len(password) == 0 {
		return nil, errors.New("password cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.password != nil {
		return nil, ErrAlreadyLoggedIn
	}

	records, err := s.store.LoadAllWalletRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load wallets: %w", err)
	}

	pw := make([]byte, len(password))
	copy(pw, password)

	report := &RestoreReport{Skipped: []Skipped{}}
	for _, rec := range records {
		w, err := restore(rec, pw)
		if err == nil {
			err = s.registry.Add(w)
			if err != nil {
				w.Wipe()
			}
		}
		if err != nil {
			s.logger.Warn().Str("id", rec.ID).Str("address", rec.Address).Err(err).Msg("Skipping stored wallet")
			report.Skipped = append(report.Skipped, Skipped{ID: rec.ID, Address: rec.Address, Reason: err.Error()})
			continue
		}
		s.persisted[rec.ID] = true
		report.Restored++
	}

	s.password = pw
	s.logger.Info().Int("restored", report.Restored).Int("skipped", len(report.Skipped)).Msg("Session unlocked")
	return report, nil
}

// restore turns a stored record back into a wallet.
func restore(rec store.WalletRecord, password []byte) (*wallet.KeyedWallet, error) {
	secret, err := crypto.Open(&rec.EncryptedKey, password)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}

	w, err := wallet.NewKeyedWallet(rec.ID, solana.PrivateKey(secret), rec.Name)
	if err != nil {
		clear(secret)
		return nil, err
	}
	if rec.Address != "" && w.Address().String() != rec.Address {
		w.Wipe()
		return nil, fmt.Errorf("decrypted key does not match stored address %s", rec.Address)
	}
	return w, nil
}

// Logout wipes every key and the password and empties the registry.
// It fails while the guard reports a batch in progress.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.guard != nil {
		release, err := s.guard.Hold()
		if err != nil {
			return fmt.Errorf("failed to log out: %w", err)
		}
		defer release()
	}

	for _, w := range s.registry.Snapshot() {
		w.Wipe()
	}
	s.registry.Clear()
	clear(s.password)
	s.password = nil
	clear(s.persisted)
	s.logger.Info().Msg("Session locked")
	return nil
}

// ImportWallet parses raw key material and adds the wallet to the session.
// When remember is set the key is sealed with the session password and saved.
func (s *Session) ImportWallet(ctx context.Context, raw, name string, remember bool) (*wallet.KeyedWallet, error) {
	w, err := wallet.Create(raw, name)
	if err != nil {
		return nil, err
	}
	if err := s.add(ctx, w, remember); err != nil {
		w.Wipe()
		return nil, err
	}
	return w, nil
}

// GenerateWallet creates a fresh keypair and adds it to the session.
func (s *Session) GenerateWallet(ctx context.Context, name string, remember bool) (*wallet.KeyedWallet, error) {
	w, err := wallet.Generate(name)
	if err != nil {
		return nil, err
	}
	if err := s.add(ctx, w, remember); err != nil {
		w.Wipe()
		return nil, err
	}
	return w, nil
}

func (s *Session) add(ctx context.Context, w *wallet.KeyedWallet, remember bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.password == nil {
		return ErrNotLoggedIn
	}

	if err := s.registry.Add(w); err != nil {
		return err
	}
	if !remember {
		return nil
	}

	if err := s.save(ctx, w); err != nil {
		// keep registry and store consistent
		if _, rmErr := s.registry.Remove(w.ID()); rmErr != nil {
			s.logger.Error().Str("id", w.ID()).Err(rmErr).Msg("Failed to roll back wallet add")
		}
		return err
	}
	return nil
}

func (s *Session) save(ctx context.Context, w *wallet.KeyedWallet) error {
	sealed, err := crypto.Seal(w.PrivateKey(), s.password, s.params)
	if err != nil {
		return fmt.Errorf("failed to encrypt private key: %w", err)
	}

	rec := store.WalletRecord{
		ID:           w.ID(),
		Name:         w.Name(),
		EncryptedKey: *sealed,
		Address:      w.Address().String(),
	}
	if _, err := s.store.SaveWalletRecord(ctx, rec); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return fmt.Errorf("%w: address %s", wallet.ErrDuplicateWallet, rec.Address)
		}
		return fmt.Errorf("failed to save wallet: %w", err)
	}
	s.persisted[w.ID()] = true
	return nil
}

// RememberWallet seals and saves a wallet that was imported without remember.
func (s *Session) RememberWallet(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.password == nil {
		return ErrNotLoggedIn
	}

	w, ok := s.registry.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", wallet.ErrWalletNotFound, id)
	}
	if s.persisted[id] {
		return nil
	}
	return s.save(ctx, w)
}

// RemoveWallet removes the wallet from the session and deletes its stored record.
func (s *Session) RemoveWallet(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.password == nil {
		return ErrNotLoggedIn
	}

	w, err := s.registry.Remove(id)
	if err != nil {
		return err
	}
	defer w.Wipe()

	if !s.persisted[id] {
		return nil
	}
	if _, err := s.store.DeleteWalletRecord(ctx, id); err != nil {
		return fmt.Errorf("wallet removed from session but not from store: %w", err)
	}
	delete(s.persisted, id)
	return nil
}
