package solana

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/bundlr-wallet/internal/common"
	"github.com/AlexZinkM/bundlr-wallet/internal/model"
)

// ListWallets returns the session wallets with cached balances and the
// portfolio value. A failed price quote is reported in the portfolio, not as an error.
func (s *Service) ListWallets(ctx context.Context) (*model.WalletsResponse, error) {
	reg, err := s.registry()
	if err != nil {
		return nil, err
	}

	return &model.WalletsResponse{
		Wallets:     s.walletViews(reg),
		ActiveIndex: reg.ActiveIndex(),
		Portfolio:   s.portfolio(ctx, reg.TotalBalance()),
	}, nil
}

// portfolio prices total lamports in USD (use decimal only, no float)
func (s *Service) portfolio(ctx context.Context, lamports uint64) model.PortfolioView {
	total := common.LamportsToSOLDecimal(lamports)
	view := model.PortfolioView{TotalSOL: total.StringFixed(common.SOLDecimals)}
	if s.prices == nil {
		return view
	}

	rate, err := s.prices.GetSOLUSDPrice(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to get SOL/USD rate")
		view.Error = fmt.Sprintf("failed to get rate: %v", err)
		return view
	}
	view.Rate = rate.String()
	view.USD = total.Mul(rate).StringFixed(2)
	return view
}

// RefreshWallet fetches the on-chain balance of one wallet.
func (s *Service) RefreshWallet(ctx context.Context, id string) (*model.WalletResponse, error) {
	w, err := s.walletByID(id)
	if err != nil {
		return nil, err
	}
	reg := s.session.Registry()
	if err := reg.RefreshOne(ctx, id, s.gateway); err != nil {
		return nil, err
	}
	return &model.WalletResponse{Wallet: s.walletView(w, activeID(reg))}, nil
}

// RefreshAll fetches the balance of every wallet. Individual failures keep
// the cached balance and are counted.
func (s *Service) RefreshAll(ctx context.Context) (*model.RefreshResponse, error) {
	reg, err := s.registry()
	if err != nil {
		return nil, err
	}
	failed := reg.RefreshAll(ctx, s.gateway)
	return &model.RefreshResponse{Wallets: s.walletViews(reg), Failures: failed}, nil
}

// TokenHoldings lists the SPL token accounts owned by a wallet.
func (s *Service) TokenHoldings(ctx context.Context, id string) (*model.HoldingsResponse, error) {
	w, err := s.walletByID(id)
	if err != nil {
		return nil, err
	}

	holdings, err := s.gateway.GetTokenHoldings(ctx, w.Address())
	if err != nil {
		return nil, fmt.Errorf("failed to get token holdings: %w", err)
	}

	resp := &model.HoldingsResponse{
		Address:  w.Address().String(),
		Holdings: make([]model.TokenHoldingView, 0, len(holdings)),
	}
	for _, h := range holdings {
		resp.Holdings = append(resp.Holdings, model.TokenHoldingView{
			Mint:     h.Mint.String(),
			Account:  h.Account.String(),
			Amount:   h.UIAmount(),
			Raw:      h.Amount,
			Decimals: h.Decimals,
		})
	}
	return resp, nil
}
