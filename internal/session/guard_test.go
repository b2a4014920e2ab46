package session

import (
	"context"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/bundlr-wallet/internal/batch"
	"github.com/AlexZinkM/bundlr-wallet/internal/client"
	"github.com/AlexZinkM/bundlr-wallet/internal/store"
	"github.com/AlexZinkM/bundlr-wallet/internal/wallet"
)

// blockingBuyer holds the first call until release is closed and records
// the public key of every key it was asked to sign with.
type blockingBuyer struct {
	entered chan struct{}
	release chan struct{}

	mu      sync.Mutex
	signers []solana.PublicKey
}

func newBlockingBuyer() *blockingBuyer {
	return &blockingBuyer{entered: make(chan struct{}, 1), release: make(chan struct{})}
}

func (b *blockingBuyer) SimulatedBuy(_ context.Context, key solana.PrivateKey, _ string, amount decimal.Decimal, _ client.FeeSpec) (*client.BuyResult, error) {
	b.mu.Lock()
	first := len(b.signers) == 0
	b.signers = append(b.signers, key.PublicKey())
	b.mu.Unlock()

	if first {
		b.entered <- struct{}{}
		<-b.release
	}
	return &client.BuyResult{TxID: "tx", TokenAmount: amount, Simulated: true}, nil
}

func testOperation() batch.Operation {
	return batch.Operation{
		Kind:       batch.MultiWalletBuy,
		Target:     solana.NewWallet().PublicKey().String(),
		BaseAmount: decimal.RequireFromString("0.1"),
		Jitter:     batch.NoJitter,
	}
}

func TestLogout_RefusedDuringBatch(t *testing.T) {
	ctx := context.Background()
	s := newLoggedIn(t, store.NewKVStore(store.NewMemory()))
	a, err := s.GenerateWallet(ctx, "a", false)
	require.NoError(t, err)
	b, err := s.GenerateWallet(ctx, "b", false)
	require.NoError(t, err)

	buyer := newBlockingBuyer()
	exec := batch.NewExecutor(buyer, batch.Config{Delay: -1})
	s.SetGuard(exec)

	done := make(chan *batch.Result, 1)
	go func() {
		res, err := exec.Run(ctx, s.Registry().Snapshot(), testOperation())
		assert.NoError(t, err)
		done <- res
	}()
	<-buyer.entered

	err = s.Logout()
	require.ErrorIs(t, err, batch.ErrBatchInProgress)
	assert.True(t, s.LoggedIn())
	assert.False(t, b.Wiped())

	close(buyer.release)
	res := <-done
	assert.Equal(t, 2, res.SuccessCount)
	assert.Equal(t, []solana.PublicKey{a.Address(), b.Address()}, buyer.signers)

	require.NoError(t, s.Logout())
	assert.True(t, a.Wiped())
	assert.True(t, b.Wiped())
}

func TestLogout_StaleSnapshotNotSigned(t *testing.T) {
	ctx := context.Background()
	s := newLoggedIn(t, store.NewKVStore(store.NewMemory()))
	_, err := s.GenerateWallet(ctx, "", false)
	require.NoError(t, err)

	buyer := newBlockingBuyer()
	close(buyer.release)
	exec := batch.NewExecutor(buyer, batch.Config{Delay: -1})
	s.SetGuard(exec)

	snap := s.Registry().Snapshot()
	require.NoError(t, s.Logout())

	res, err := exec.Run(ctx, snap, testOperation())
	require.NoError(t, err)
	assert.Equal(t, 0, res.SuccessCount)
	require.Len(t, res.Outcomes, 1)
	assert.ErrorIs(t, res.Outcomes[0].Err, wallet.ErrWalletWiped)
	assert.Empty(t, buyer.signers)
}
