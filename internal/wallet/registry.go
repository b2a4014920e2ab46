package wallet

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/AlexZinkM/bundlr-wallet/internal/log"
)

// NoActive is the active index of a registry with no selected wallet.
const NoActive = -1

// Registry is the ordered set of session wallets and the active selection.
type Registry struct {
	mu      sync.RWMutex
	wallets []*KeyedWallet
	active  int
	logger  zerolog.Logger
}

// NewRegistry creates an empty registry with no active wallet.
func NewRegistry() *Registry {
	return &Registry{active: NoActive, logger: log.Wallet}
}

// Add appends w. The active selection is never changed.
func (r *Registry) Add(w *KeyedWallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.wallets {
		if existing.id == w.id {
			return fmt.Errorf("%w: id %s", ErrDuplicateWallet, w.id)
		}
		if existing.address.Equals(w.address) {
			return fmt.Errorf("%w: address %s", ErrDuplicateWallet, w.address)
		}
	}

	if w.Name() == "" {
		w.setName(fmt.Sprintf("Wallet %d", len(r.wallets)+1))
	}
	r.wallets = append(r.wallets, w)
	r.logger.Info().Str("id", w.id).Str("address", w.address.String()).Msg("Wallet added")
	return nil
}

// Remove deletes the wallet with id and reconciles the active index.
func (r *Registry) Remove(id string) (*KeyedWallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrWalletNotFound, id)
	}
	removed := r.wallets[idx]
	r.wallets = append(r.wallets[:idx], r.wallets[idx+1:]...)

	n := len(r.wallets)
	switch {
	case idx == r.active:
		if n > 0 {
			r.active = 0
		} else {
			r.active = NoActive
		}
	case r.active >= n:
		r.active = n - 1 // NoActive when empty
	}

	r.logger.Info().Str("id", id).Int("active", r.active).Msg("Wallet removed")
	return removed, nil
}

// SwitchActive selects the wallet at index i.
func (r *Registry) SwitchActive(i int) (*KeyedWallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i < 0 || i >= len(r.wallets) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(r.wallets))
	}
	r.active = i
	return r.wallets[i], nil
}

// Active returns the selected wallet, if any.
func (r *Registry) Active() (*KeyedWallet, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.active == NoActive {
		return nil, false
	}
	return r.wallets[r.active], true
}

// ActiveIndex returns the selected index or NoActive.
func (r *Registry) ActiveIndex() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Get returns the wallet with id.
func (r *Registry) Get(id string) (*KeyedWallet, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return nil, false
	}
	return r.wallets[idx], true
}

// Snapshot returns the wallets in insertion order. The slice is a copy.
func (r *Registry) Snapshot() []*KeyedWallet {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*KeyedWallet, len(r.wallets))
	copy(out, r.wallets)
	return out
}

// Except returns the wallets other than id, in order.
func (r *Registry) Except(id string) []*KeyedWallet {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*KeyedWallet, 0, len(r.wallets))
	for _, w := range r.wallets {
		if w.id != id {
			out = append(out, w)
		}
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.wallets)
}

// RefreshOne refreshes the balance of wallet id. Unknown ids are ignored.
func (r *Registry) RefreshOne(ctx context.Context, id string, f BalanceFetcher) error {
	w, ok := r.Get(id)
	if !ok {
		return nil
	}
	if _, err := w.RefreshBalance(ctx, f); err != nil {
		r.logger.Warn().Err(err).Str("id", id).Msg("Balance refresh failed")
		return err
	}
	return nil
}

// RefreshAll refreshes every wallet and returns the number of failures.
func (r *Registry) RefreshAll(ctx context.Context, f BalanceFetcher) int {
	failed := 0
	for _, w := range r.Snapshot() {
		if _, err := w.RefreshBalance(ctx, f); err != nil {
			r.logger.Warn().Err(err).Str("id", w.id).Msg("Balance refresh failed")
			failed++
		}
	}
	return failed
}

// TotalBalance sums the cached balances in lamports.
func (r *Registry) TotalBalance() uint64 {
	var total uint64
	for _, w := range r.Snapshot() {
		total += w.Balance()
	}
	return total
}

// Clear wipes every key and empties the registry.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, w := range r.wallets {
		w.Wipe()
	}
	r.wallets = nil
	r.active = NoActive
}

func (r *Registry) indexOf(id string) int {
	for i, w := range r.wallets {
		if w.id == id {
			return i
		}
	}
	return -1
}
