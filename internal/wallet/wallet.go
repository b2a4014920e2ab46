package wallet

import (
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
)

// BalanceFetcher reads an account's lamport balance.
type BalanceFetcher interface {
	GetBalance(ctx context.Context, address solana.PublicKey) (uint64, error)
}

// KeyedWallet is one imported signing key with its cached balance.
type KeyedWallet struct {
	id      string
	key     solana.PrivateKey
	address solana.PublicKey

	mu      sync.RWMutex
	name    string
	balance uint64 // lamports
	wiped   bool
}

// Create parses raw key material and builds a wallet with a fresh id.
func Create(raw, name string) (*KeyedWallet, error) {
	key, err := ParsePrivateKey(raw)
	if err != nil {
		return nil, err
	}
	return NewKeyedWallet(uuid.NewString(), key, name)
}

// NewKeyedWallet wraps an already decoded key. The wallet takes ownership of key.
func NewKeyedWallet(id string, key solana.PrivateKey, name string) (*KeyedWallet, error) {
	if id == "" {
		return nil, fmt.Errorf("wallet id cannot be empty")
	}
	if len(key) != keyLen {
		return nil, fmt.Errorf("%w: key is %d bytes, want %d", ErrInvalidKeyFormat, len(key), keyLen)
	}
	if err := checkKeypair(key); err != nil {
		return nil, err
	}
	return &KeyedWallet{
		id:      id,
		key:     key,
		address: key.PublicKey(),
		name:    name,
	}, nil
}

// Generate creates a wallet from a new random keypair.
func Generate(name string) (*KeyedWallet, error) {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate keypair: %w", err)
	}
	return NewKeyedWallet(uuid.NewString(), key, name)
}

func (w *KeyedWallet) ID() string { return w.id }

func (w *KeyedWallet) Address() solana.PublicKey { return w.address }

// PrivateKey returns the signing key. Callers must not retain or mutate it.
func (w *KeyedWallet) PrivateKey() solana.PrivateKey { return w.key }

func (w *KeyedWallet) Name() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.name
}

func (w *KeyedWallet) setName(name string) {
	w.mu.Lock()
	w.name = name
	w.mu.Unlock()
}

// Balance returns the last fetched balance in lamports.
func (w *KeyedWallet) Balance() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.balance
}

// RefreshBalance fetches the on-chain balance. On failure the cached value is kept.
func (w *KeyedWallet) RefreshBalance(ctx context.Context, f BalanceFetcher) (uint64, error) {
	lamports, err := f.GetBalance(ctx, w.address)
	if err != nil {
		return w.Balance(), fmt.Errorf("failed to refresh balance for %s: %w", w.address, err)
	}
	w.mu.Lock()
	w.balance = lamports
	w.mu.Unlock()
	return lamports, nil
}

// Wipe zeroes the signing key. The wallet is unusable afterwards.
func (w *KeyedWallet) Wipe() {
	w.mu.Lock()
	defer w.mu.Unlock()
	clear(w.key)
	w.wiped = true
}

// Wiped reports whether Wipe has been called.
func (w *KeyedWallet) Wiped() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.wiped
}

// Info is a point-in-time view of a wallet without key material.
type Info struct {
	ID      string
	Name    string
	Address solana.PublicKey
	Balance uint64
}

func (w *KeyedWallet) Info() Info {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return Info{ID: w.id, Name: w.name, Address: w.address, Balance: w.balance}
}
