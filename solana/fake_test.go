package solana

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/bundlr-wallet/internal/batch"
	"github.com/AlexZinkM/bundlr-wallet/internal/client"
	"github.com/AlexZinkM/bundlr-wallet/internal/crypto"
	"github.com/AlexZinkM/bundlr-wallet/internal/notify"
	"github.com/AlexZinkM/bundlr-wallet/internal/session"
	"github.com/AlexZinkM/bundlr-wallet/internal/store"
	"github.com/AlexZinkM/bundlr-wallet/internal/wallet"
)

type fakeBuy struct {
	owner  solana.PublicKey
	mint   string
	amount decimal.Decimal
	fees   client.FeeSpec
}

type fakeTransfer struct {
	owner    solana.PublicKey
	mint     string
	dest     string
	amount   decimal.Decimal
	decimals uint8
}

type fakeGateway struct {
	mu sync.Mutex

	balances     map[solana.PublicKey]uint64
	balanceErr   error
	balanceCalls int

	buyErr map[solana.PublicKey]error
	buys   []fakeBuy

	holdings    map[solana.PublicKey][]client.TokenHolding
	decimals    uint8
	transferErr error
	transfers   []fakeTransfer

	mintErr error
	mints   []client.TokenSpec
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		balances: make(map[solana.PublicKey]uint64),
		buyErr:   make(map[solana.PublicKey]error),
		holdings: make(map[solana.PublicKey][]client.TokenHolding),
	}
}

func (f *fakeGateway) GetBalance(_ context.Context, address solana.PublicKey) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balanceCalls++
	if f.balanceErr != nil {
		return 0, f.balanceErr
	}
	return f.balances[address], nil
}

func (f *fakeGateway) CreateAndMintToken(_ context.Context, key solana.PrivateKey, spec client.TokenSpec, _ client.FeeSpec) (*client.MintResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mintErr != nil {
		return nil, f.mintErr
	}
	f.mints = append(f.mints, spec)
	return &client.MintResult{
		TokenAddress: solana.NewWallet().PublicKey(),
		TokenAccount: solana.NewWallet().PublicKey(),
		TxID:         fmt.Sprintf("mint-%d", len(f.mints)),
	}, nil
}

func (f *fakeGateway) TransferToken(_ context.Context, key solana.PrivateKey, mint, destination string, amount decimal.Decimal, decimals uint8, _ client.FeeSpec) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.transferErr != nil {
		return "", f.transferErr
	}
	f.transfers = append(f.transfers, fakeTransfer{owner: key.PublicKey(), mint: mint, dest: destination, amount: amount, decimals: decimals})
	return fmt.Sprintf("transfer-%d", len(f.transfers)), nil
}

func (f *fakeGateway) SimulatedBuy(_ context.Context, key solana.PrivateKey, mint string, solAmount decimal.Decimal, fees client.FeeSpec) (*client.BuyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	owner := key.PublicKey()
	if err := f.buyErr[owner]; err != nil {
		return nil, err
	}
	f.buys = append(f.buys, fakeBuy{owner: owner, mint: mint, amount: solAmount, fees: fees})
	return &client.BuyResult{
		TxID:        fmt.Sprintf("buy-%d", len(f.buys)),
		TokenAmount: solAmount.Mul(decimal.NewFromInt(100)),
		Simulated:   true,
	}, nil
}

func (f *fakeGateway) GetTokenHoldings(_ context.Context, owner solana.PublicKey) ([]client.TokenHolding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.holdings[owner], nil
}

func (f *fakeGateway) MintDecimals(context.Context, solana.PublicKey) (uint8, error) {
	return f.decimals, nil
}

type fakePrices struct {
	rate decimal.Decimal
	err  error
}

func (p fakePrices) GetSOLUSDPrice(context.Context) (decimal.Decimal, error) {
	return p.rate, p.err
}

type harness struct {
	svc  *Service
	sess *session.Session
	gw   *fakeGateway
	st   store.Store
}

var testPassword = []byte("test password")

func testDefaults() Defaults {
	return Defaults{
		PriorityFee:    decimal.RequireFromString("0.001"),
		MultiBuyJitter: batch.Jitter{Min: 0.8, Max: 1.2},
		SeedBuyJitter:  batch.Jitter{Min: 0.5, Max: 1.5},
	}
}

// newHarness builds a logged-in service over fakes.
func newHarness(t *testing.T) *harness {
	t.Helper()
	h := newLoggedOutHarness(t)
	_, err := h.sess.Login(context.Background(), testPassword)
	require.NoError(t, err)
	return h
}

func newLoggedOutHarness(t *testing.T) *harness {
	t.Helper()
	st := store.NewKVStore(store.NewMemory())
	sess := session.New(st, crypto.Params{N: 1 << 10, R: 8, P: 1})
	gw := newFakeGateway()

	exec := batch.NewExecutor(gw, batch.Config{Delay: -1})
	feed := notify.NewFeed(100)
	exec.SetNotifier(feed)

	svc := NewService(sess, gw, exec, st, fakePrices{rate: decimal.NewFromInt(150)}, feed, testDefaults())
	return &harness{svc: svc, sess: sess, gw: gw, st: st}
}

// addWallets imports n fresh session-only wallets.
func (h *harness) addWallets(t *testing.T, n int) []*wallet.KeyedWallet {
	t.Helper()
	out := make([]*wallet.KeyedWallet, 0, n)
	for range n {
		w, err := h.sess.ImportWallet(context.Background(), solana.NewWallet().PrivateKey.String(), "", false)
		require.NoError(t, err)
		out = append(out, w)
	}
	return out
}

var errRPC = errors.New("rpc down")
