package wallet

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filledRegistry(t *testing.T, n int) (*Registry, []*KeyedWallet) {
	t.Helper()
	r := NewRegistry()
	ws := make([]*KeyedWallet, n)
	for i := range ws {
		ws[i] = newTestWallet(t, byte(10*i+1), "")
		require.NoError(t, r.Add(ws[i]))
	}
	return r, ws
}

func TestRegistry_AddDoesNotActivate(t *testing.T) {
	r, ws := filledRegistry(t, 3)
	assert.Equal(t, NoActive, r.ActiveIndex())
	_, ok := r.Active()
	assert.False(t, ok)
	assert.Equal(t, 3, r.Len())

	assert.Equal(t, "Wallet 1", ws[0].Name())
	assert.Equal(t, "Wallet 3", ws[2].Name())
}

func TestRegistry_AddKeepsGivenName(t *testing.T) {
	r := NewRegistry()
	w := newTestWallet(t, 1, "main")
	require.NoError(t, r.Add(w))
	assert.Equal(t, "main", w.Name())
}

func TestRegistry_AddDuplicate(t *testing.T) {
	r, ws := filledRegistry(t, 1)

	assert.ErrorIs(t, r.Add(ws[0]), ErrDuplicateWallet)

	sameKey := newTestWallet(t, 1, "again")
	assert.ErrorIs(t, r.Add(sameKey), ErrDuplicateWallet)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_SwitchActive(t *testing.T) {
	r, ws := filledRegistry(t, 3)

	selected, err := r.SwitchActive(1)
	require.NoError(t, err)
	assert.Equal(t, ws[1].ID(), selected.ID())
	w, ok := r.Active()
	require.True(t, ok)
	assert.Equal(t, ws[1].ID(), w.ID())

	for _, bad := range []int{-1, 3, 100} {
		_, err := r.SwitchActive(bad)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
		assert.Equal(t, 1, r.ActiveIndex())
	}
}

func TestRegistry_SwitchActiveEmpty(t *testing.T) {
	r := NewRegistry()
	_, err := r.SwitchActive(0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.Equal(t, NoActive, r.ActiveIndex())
}

func TestRegistry_Remove(t *testing.T) {
	tests := []struct {
		name       string
		n          int
		active     int
		remove     int
		wantActive int
	}{
		{"active removed, others remain", 3, 1, 1, 0},
		{"active removed, last one", 1, 0, 0, NoActive},
		{"active last, earlier removed", 3, 2, 0, 1},
		{"active before removed", 3, 0, 2, 0},
		{"no active", 2, NoActive, 0, NoActive},
		{"active middle, earlier removed", 3, 1, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ws := filledRegistry(t, tt.n)
			if tt.active != NoActive {
				_, err := r.SwitchActive(tt.active)
				require.NoError(t, err)
			}

			removed, err := r.Remove(ws[tt.remove].ID())
			require.NoError(t, err)
			assert.Equal(t, ws[tt.remove].ID(), removed.ID())
			assert.Equal(t, tt.n-1, r.Len())
			assert.Equal(t, tt.wantActive, r.ActiveIndex())
			_, ok := r.Get(ws[tt.remove].ID())
			assert.False(t, ok)
		})
	}
}

func TestRegistry_RemoveUnknown(t *testing.T) {
	r, _ := filledRegistry(t, 2)
	_, err := r.SwitchActive(1)
	require.NoError(t, err)

	_, err = r.Remove("missing")
	assert.ErrorIs(t, err, ErrWalletNotFound)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, 1, r.ActiveIndex())
}

func TestRegistry_SnapshotOrderAndExcept(t *testing.T) {
	r, ws := filledRegistry(t, 3)

	snap := r.Snapshot()
	require.Len(t, snap, 3)
	for i := range ws {
		assert.Equal(t, ws[i].ID(), snap[i].ID())
	}

	rest := r.Except(ws[1].ID())
	require.Len(t, rest, 2)
	assert.Equal(t, ws[0].ID(), rest[0].ID())
	assert.Equal(t, ws[2].ID(), rest[1].ID())
}

func TestRegistry_RefreshOne(t *testing.T) {
	r, ws := filledRegistry(t, 2)
	f := &fakeFetcher{balances: map[solana.PublicKey]uint64{
		ws[0].Address(): 100,
		ws[1].Address(): 200,
	}}

	require.NoError(t, r.RefreshOne(context.Background(), ws[1].ID(), f))
	assert.Equal(t, uint64(0), ws[0].Balance())
	assert.Equal(t, uint64(200), ws[1].Balance())
	assert.Equal(t, 1, f.calls)

	require.NoError(t, r.RefreshOne(context.Background(), "missing", f))
	assert.Equal(t, 1, f.calls)
}

func TestRegistry_RefreshAllAndTotal(t *testing.T) {
	r, ws := filledRegistry(t, 2)
	f := &fakeFetcher{balances: map[solana.PublicKey]uint64{
		ws[0].Address(): 1_000_000_000,
		ws[1].Address(): 500_000_000,
	}}

	assert.Zero(t, r.RefreshAll(context.Background(), f))
	assert.Equal(t, uint64(1_500_000_000), r.TotalBalance())

	f.err = errors.New("down")
	assert.Equal(t, 2, r.RefreshAll(context.Background(), f))
	assert.Equal(t, uint64(1_500_000_000), r.TotalBalance())
}

func TestRegistry_Clear(t *testing.T) {
	r, ws := filledRegistry(t, 2)
	_, err := r.SwitchActive(0)
	require.NoError(t, err)

	r.Clear()
	assert.Zero(t, r.Len())
	assert.Equal(t, NoActive, r.ActiveIndex())
	for _, b := range ws[0].PrivateKey() {
		assert.Zero(t, b)
	}
}

func TestRegistry_ConcurrentMutations(t *testing.T) {
	r := NewRegistry()
	const workers = 8
	const rounds = 50

	var wg sync.WaitGroup
	for g := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range rounds {
				w, err := Generate("")
				if !assert.NoError(t, err) {
					return
				}
				assert.NoError(t, r.Add(w))
				_, _ = r.SwitchActive((g + i) % (r.Len() + 1))
				if i%3 == 0 {
					_, _ = r.Remove(w.ID())
				}
				if w, ok := r.Active(); ok {
					assert.NotNil(t, w)
				}
				_ = r.Snapshot()
			}
		}()
	}
	wg.Wait()

	active := r.ActiveIndex()
	assert.GreaterOrEqual(t, active, NoActive)
	assert.Less(t, active, r.Len())
	assert.Len(t, r.Snapshot(), r.Len())
}
