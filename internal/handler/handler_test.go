package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/bundlr-wallet/internal/api"
	"github.com/AlexZinkM/bundlr-wallet/internal/batch"
	"github.com/AlexZinkM/bundlr-wallet/internal/client"
	"github.com/AlexZinkM/bundlr-wallet/internal/crypto"
	"github.com/AlexZinkM/bundlr-wallet/internal/handler"
	"github.com/AlexZinkM/bundlr-wallet/internal/model"
	"github.com/AlexZinkM/bundlr-wallet/internal/notify"
	"github.com/AlexZinkM/bundlr-wallet/internal/session"
	"github.com/AlexZinkM/bundlr-wallet/internal/store"
	"github.com/AlexZinkM/bundlr-wallet/solana"
)

// stubGateway succeeds for every call except where an error is set.
type stubGateway struct {
	buyErr  error
	buys    int
	network bool
}

func (g *stubGateway) GetBalance(context.Context, solanago.PublicKey) (uint64, error) {
	if g.network {
		return 0, fmt.Errorf("%w: connection refused", client.ErrNetwork)
	}
	return 1_000_000_000, nil
}

func (g *stubGateway) CreateAndMintToken(context.Context, solanago.PrivateKey, client.TokenSpec, client.FeeSpec) (*client.MintResult, error) {
	return &client.MintResult{TokenAddress: solanago.NewWallet().PublicKey(), TokenAccount: solanago.NewWallet().PublicKey(), TxID: "mint-tx"}, nil
}

func (g *stubGateway) TransferToken(context.Context, solanago.PrivateKey, string, string, decimal.Decimal, uint8, client.FeeSpec) (string, error) {
	return "transfer-tx", nil
}

func (g *stubGateway) SimulatedBuy(_ context.Context, _ solanago.PrivateKey, _ string, amount decimal.Decimal, _ client.FeeSpec) (*client.BuyResult, error) {
	if g.buyErr != nil {
		return nil, g.buyErr
	}
	g.buys++
	return &client.BuyResult{TxID: fmt.Sprintf("buy-%d", g.buys), TokenAmount: amount, Simulated: true}, nil
}

func (g *stubGateway) GetTokenHoldings(context.Context, solanago.PublicKey) ([]client.TokenHolding, error) {
	return nil, nil
}

func (g *stubGateway) MintDecimals(context.Context, solanago.PublicKey) (uint8, error) {
	return 6, nil
}

type testServer struct {
	*httptest.Server
	gw *stubGateway
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	st := store.NewKVStore(store.NewMemory())
	sess := session.New(st, crypto.Params{N: 1 << 10, R: 8, P: 1})
	gw := &stubGateway{}
	exec := batch.NewExecutor(gw, batch.Config{Delay: -1})
	feed := notify.NewFeed(20)
	exec.SetNotifier(feed)

	svc := solana.NewService(sess, gw, exec, st, nil, feed, solana.Defaults{
		PriorityFee:    decimal.Zero,
		MultiBuyJitter: batch.Jitter{Min: 0.8, Max: 1.2},
		SeedBuyJitter:  batch.Jitter{Min: 0.5, Max: 1.5},
	})
	srv := httptest.NewServer(api.SetupRouter(handler.NewSolanaHandler(svc)))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, gw: gw}
}

func (s *testServer) do(t *testing.T, method, path string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (s *testServer) login(t *testing.T) {
	t.Helper()
	var resp model.LoginResponse
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/session/login", model.LoginRequest{Password: "pw"}, &resp))
}

func (s *testServer) importWallet(t *testing.T) model.WalletView {
	t.Helper()
	var resp model.WalletResponse
	req := model.ImportWalletRequest{PrivateKey: solanago.NewWallet().PrivateKey.String()}
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/wallets", req, &resp))
	return resp.Wallet
}

func TestRequiresLogin(t *testing.T) {
	s := newTestServer(t)

	var errResp model.ErrorResponse
	status := s.do(t, http.MethodGet, "/wallets", nil, &errResp)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, model.CodeNotLoggedIn, errResp.Code)
}

func TestLogin_Twice(t *testing.T) {
	s := newTestServer(t)
	s.login(t)

	var errResp model.ErrorResponse
	status := s.do(t, http.MethodPost, "/session/login", model.LoginRequest{Password: "pw"}, &errResp)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, model.CodeAlreadyLoggedIn, errResp.Code)
}

func TestLogin_NoStartupPassword(t *testing.T) {
	s := newTestServer(t)
	status := s.do(t, http.MethodPost, "/session/login", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestWalletLifecycle(t *testing.T) {
	s := newTestServer(t)
	s.login(t)

	first := s.importWallet(t)
	assert.Equal(t, "Wallet 1", first.Name)
	assert.Equal(t, "1.000000000", first.SOL)
	assert.True(t, first.Persisted)
	second := s.importWallet(t)

	var list model.WalletsResponse
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/wallets", nil, &list))
	assert.Len(t, list.Wallets, 2)
	assert.Equal(t, -1, list.ActiveIndex)
	assert.Equal(t, "2.000000000", list.Portfolio.TotalSOL)

	var switched model.WalletResponse
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/wallets/active", model.SwitchActiveRequest{Index: 1}, &switched))
	assert.Equal(t, second.ID, switched.Wallet.ID)
	assert.True(t, switched.Wallet.Active)

	var detail model.WalletResponse
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/wallets/"+first.ID, nil, &detail))
	assert.NotEmpty(t, detail.QR)

	var removed model.RemoveWalletResponse
	require.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/wallets/"+second.ID, nil, &removed))
	assert.Equal(t, 0, removed.ActiveIndex)

	var errResp model.ErrorResponse
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/wallets/"+second.ID, nil, &errResp))
	assert.Equal(t, model.CodeNotFound, errResp.Code)
}

func TestImportWallet_Errors(t *testing.T) {
	s := newTestServer(t)
	s.login(t)

	var errResp model.ErrorResponse
	status := s.do(t, http.MethodPost, "/wallets", model.ImportWalletRequest{PrivateKey: "nope"}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, model.CodeInvalidKey, errResp.Code)

	key := solanago.NewWallet().PrivateKey.String()
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/wallets", model.ImportWalletRequest{PrivateKey: key}, nil))
	status = s.do(t, http.MethodPost, "/wallets", model.ImportWalletRequest{PrivateKey: key}, &errResp)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, model.CodeDuplicate, errResp.Code)

	status = s.do(t, http.MethodPost, "/wallets", map[string]string{"bogus": "x"}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, model.CodeBadRequest, errResp.Code)
}

func TestSwitchActive_OutOfRange(t *testing.T) {
	s := newTestServer(t)
	s.login(t)

	var errResp model.ErrorResponse
	status := s.do(t, http.MethodPost, "/wallets/active", model.SwitchActiveRequest{Index: 3}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, model.CodeIndexOutOfRange, errResp.Code)
}

func TestBuyAll_AndEvents(t *testing.T) {
	s := newTestServer(t)
	s.login(t)
	s.importWallet(t)
	s.importWallet(t)

	var resp model.BatchResponse
	req := model.BuyRequest{TokenAddress: solanago.NewWallet().PublicKey().String(), Amount: "0.1"}
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/trade/buy-all", req, &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.SuccessCount)
	assert.Len(t, resp.Outcomes, 2)

	var events model.EventsResponse
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/events?limit=2", nil, &events))
	require.Len(t, events.Events, 2)
	assert.Equal(t, string(batch.EventBatchFinished), events.Events[0].Type)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/events?limit=-1", nil, nil))
}

func TestBuy_ErrorMapping(t *testing.T) {
	s := newTestServer(t)
	s.login(t)
	s.importWallet(t)
	req := model.BuyRequest{TokenAddress: solanago.NewWallet().PublicKey().String(), Amount: "0.1"}

	var errResp model.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/trade/buy", req, &errResp))
	assert.Equal(t, model.CodeNoActiveWallet, errResp.Code)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/wallets/active", model.SwitchActiveRequest{Index: 0}, nil))

	s.gw.buyErr = fmt.Errorf("%w: need 0.1 SOL", client.ErrInsufficientBalance)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/trade/buy", req, &errResp))
	assert.Equal(t, model.CodeInsufficientBalance, errResp.Code)

	s.gw.buyErr = fmt.Errorf("%w: blockhash not found", client.ErrTransaction)
	assert.Equal(t, http.StatusBadGateway, s.do(t, http.MethodPost, "/trade/buy", req, &errResp))
	assert.Equal(t, model.CodeTransaction, errResp.Code)

	s.gw.buyErr = errors.New("boom")
	assert.Equal(t, http.StatusInternalServerError, s.do(t, http.MethodPost, "/trade/buy", req, &errResp))
	assert.Equal(t, model.CodeInternal, errResp.Code)
}

func TestRefreshWallet_NetworkError(t *testing.T) {
	s := newTestServer(t)
	s.login(t)
	w := s.importWallet(t)
	s.gw.network = true

	var errResp model.ErrorResponse
	assert.Equal(t, http.StatusBadGateway, s.do(t, http.MethodPost, "/wallets/"+w.ID+"/refresh", nil, &errResp))
	assert.Equal(t, model.CodeNetwork, errResp.Code)
}

func TestLaunchToken(t *testing.T) {
	s := newTestServer(t)
	s.login(t)
	s.importWallet(t)
	s.importWallet(t)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/wallets/active", model.SwitchActiveRequest{Index: 0}, nil))

	var resp model.LaunchResponse
	req := model.LaunchRequest{Name: "Test", Symbol: "TST", Decimals: 6, TotalSupply: 1000, SeedAmount: "0.05"}
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/tokens/launch", req, &resp))
	assert.Equal(t, "mint-tx", resp.TxID)
	require.NotNil(t, resp.SeedBuy)
	assert.Equal(t, 1, resp.SeedBuy.SuccessCount)

	var launched model.LaunchedTokensResponse
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/tokens/launched", nil, &launched))
	require.Len(t, launched.Tokens, 1)
	assert.Equal(t, "TST", launched.Tokens[0].Symbol)

	var errResp model.ErrorResponse
	req.Symbol = "WAYTOOLONGSYMBOL"
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/tokens/launch", req, &errResp))
	assert.Equal(t, model.CodeInvalidToken, errResp.Code)
}

func TestLogout(t *testing.T) {
	s := newTestServer(t)
	s.login(t)
	s.importWallet(t)

	var resp model.StatusResponse
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/session/logout", nil, &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/wallets", nil, nil))

	s.login(t)
	var list model.WalletsResponse
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/wallets", nil, &list))
	assert.Len(t, list.Wallets, 1)
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusMethodNotAllowed, s.do(t, http.MethodPut, "/trade/buy", nil, nil))
}
