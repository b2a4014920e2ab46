package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	balances map[solana.PublicKey]uint64
	err      error
	calls    int
}

func (f *fakeFetcher) GetBalance(_ context.Context, addr solana.PublicKey) (uint64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.balances[addr], nil
}

func newTestWallet(t *testing.T, seed byte, name string) *KeyedWallet {
	t.Helper()
	w, err := Create(base58.Encode(testKey(seed)), name)
	require.NoError(t, err)
	return w
}

func TestCreate_Deterministic(t *testing.T) {
	raw := base58.Encode(testKey(7))
	a, err := Create(raw, "a")
	require.NoError(t, err)
	b, err := Create(raw, "b")
	require.NoError(t, err)

	assert.Equal(t, a.Address(), b.Address())
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, uint64(0), a.Balance())
}

func TestCreate_InvalidKey(t *testing.T) {
	_, err := Create("nope", "x")
	assert.ErrorIs(t, err, ErrInvalidKeyFormat)
}

func TestGenerate(t *testing.T) {
	w, err := Generate("fresh")
	require.NoError(t, err)
	assert.Equal(t, "fresh", w.Name())
	assert.Equal(t, w.PrivateKey().PublicKey(), w.Address())
}

func TestRefreshBalance(t *testing.T) {
	w := newTestWallet(t, 1, "")
	f := &fakeFetcher{balances: map[solana.PublicKey]uint64{w.Address(): 42}}

	got, err := w.RefreshBalance(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), got)
	assert.Equal(t, uint64(42), w.Balance())

	f.err = errors.New("rpc down")
	got, err = w.RefreshBalance(context.Background(), f)
	assert.Error(t, err)
	assert.Equal(t, uint64(42), got)
	assert.Equal(t, uint64(42), w.Balance())
}

func TestRefreshBalance_Idempotent(t *testing.T) {
	w := newTestWallet(t, 1, "")
	f := &fakeFetcher{balances: map[solana.PublicKey]uint64{w.Address(): 7_500}}

	first, err := w.RefreshBalance(context.Background(), f)
	require.NoError(t, err)
	second, err := w.RefreshBalance(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, uint64(7_500), w.Balance())
	assert.Equal(t, 2, f.calls)
}

func TestWipe(t *testing.T) {
	w := newTestWallet(t, 1, "")
	assert.False(t, w.Wiped())
	w.Wipe()
	assert.True(t, w.Wiped())
	for _, b := range w.PrivateKey() {
		assert.Zero(t, b)
	}
}
