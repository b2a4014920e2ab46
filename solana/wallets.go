package solana

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/bundlr-wallet/internal/model"
)

// ImportWallet adds a wallet from raw key material and fetches its balance.
// A failed balance fetch is logged and leaves the balance at zero.
func (s *Service) ImportWallet(ctx context.Context, raw, name string, remember bool) (*model.WalletResponse, error) {
	reg, err := s.registry()
	if err != nil {
		return nil, err
	}

	w, err := s.session.ImportWallet(ctx, raw, name, remember)
	if err != nil {
		return nil, err
	}
	if _, err := w.RefreshBalance(ctx, s.gateway); err != nil {
		s.logger.Warn().Err(err).Str("address", w.Address().String()).Msg("Initial balance fetch failed")
	}

	return &model.WalletResponse{Wallet: s.walletView(w, activeID(reg))}, nil
}

// GetWallet returns one wallet with a QR code of its address.
func (s *Service) GetWallet(id string) (*model.WalletResponse, error) {
	w, err := s.walletByID(id)
	if err != nil {
		return nil, err
	}
	qrCode, err := generateQRCode(w.Address().String())
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	return &model.WalletResponse{
		Wallet: s.walletView(w, activeID(s.session.Registry())),
		QR:     qrCode,
	}, nil
}

// RemoveWallet drops a wallet from the session and the store.
func (s *Service) RemoveWallet(ctx context.Context, id string) (*model.RemoveWalletResponse, error) {
	reg, err := s.registry()
	if err != nil {
		return nil, err
	}
	if err := s.session.RemoveWallet(ctx, id); err != nil {
		return nil, err
	}
	return &model.RemoveWalletResponse{Success: true, ActiveIndex: reg.ActiveIndex()}, nil
}

// SwitchActive selects the wallet at index.
func (s *Service) SwitchActive(index int) (*model.WalletResponse, error) {
	reg, err := s.registry()
	if err != nil {
		return nil, err
	}
	w, err := reg.SwitchActive(index)
	if err != nil {
		return nil, err
	}
	return &model.WalletResponse{Wallet: s.walletView(w, w.ID())}, nil
}

// RememberWallet saves a session-only wallet to the store.
func (s *Service) RememberWallet(ctx context.Context, id string) (*model.WalletResponse, error) {
	w, err := s.walletByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.session.RememberWallet(ctx, id); err != nil {
		return nil, err
	}
	return &model.WalletResponse{Wallet: s.walletView(w, activeID(s.session.Registry()))}, nil
}
