package solana

import (
	"context"

	"github.com/AlexZinkM/bundlr-wallet/internal/model"
)

// Login unlocks the session, restores stored wallets and fetches their balances.
// password must be []byte for security (caller should zero it after use)
func (s *Service) Login(ctx context.Context, password []byte) (*model.LoginResponse, error) {
	report, err := s.session.Login(ctx, password)
	if err != nil {
		return nil, err
	}

	if failed := s.session.Registry().RefreshAll(ctx, s.gateway); failed > 0 {
		s.logger.Warn().Int("failed", failed).Msg("Some balances could not be fetched after login")
	}

	resp := &model.LoginResponse{
		Restored: report.Restored,
		Skipped:  make([]model.SkippedWallet, 0, len(report.Skipped)),
	}
	for _, sk := range report.Skipped {
		resp.Skipped = append(resp.Skipped, model.SkippedWallet{ID: sk.ID, Address: sk.Address, Reason: sk.Reason})
	}
	if report.Restored == 0 && len(report.Skipped) > 0 {
		resp.Warning = "no stored wallet could be decrypted: the password is probably wrong, and wallets saved now will use it"
		s.logger.Warn().Int("skipped", len(report.Skipped)).Msg("Login restored no wallets")
	}
	return resp, nil
}

// Logout wipes every key held by the session.
func (s *Service) Logout() (*model.StatusResponse, error) {
	if err := s.session.Logout(); err != nil {
		return nil, err
	}
	return &model.StatusResponse{Success: true, Message: "Logged out"}, nil
}
