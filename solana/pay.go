package solana

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/AlexZinkM/bundlr-wallet/internal/client"
	"github.com/AlexZinkM/bundlr-wallet/internal/common"
	"github.com/AlexZinkM/bundlr-wallet/internal/model"
)

// Sell transfers SPL tokens from the active wallet to another address.
// The destination, amount and holdings are checked before anything is sent.
func (s *Service) Sell(ctx context.Context, req model.SellRequest) (*model.SellResponse, error) {
	// Validate recipient address
	dest, err := parseAddress("destination", req.ToAddress)
	if err != nil {
		return nil, err
	}
	mint, err := parseAddress("token", req.TokenAddress)
	if err != nil {
		return nil, err
	}
	amount, err := positiveAmount("amount", req.Amount)
	if err != nil {
		return nil, err
	}
	fees, err := s.feeSpec(req.Fees)
	if err != nil {
		return nil, err
	}

	w, err := s.activeWallet()
	if err != nil {
		return nil, err
	}

	decimals, err := s.gateway.MintDecimals(ctx, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to read token mint: %w", err)
	}
	raw, err := common.ToBaseUnits(amount, decimals)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", client.ErrInvalidAmount, err)
	}
	if raw == 0 {
		return nil, fmt.Errorf("%w: amount is below the token's smallest unit", client.ErrInvalidAmount)
	}

	// Check token sufficiency (raw units)
	held, err := s.heldAmount(ctx, w.Address(), mint)
	if err != nil {
		return nil, err
	}
	if held < raw {
		return nil, fmt.Errorf("%w: have %s, want %s", client.ErrInsufficientTokenBalance,
			common.FromBaseUnits(held, decimals), common.FromBaseUnits(raw, decimals))
	}

	txID, err := s.gateway.TransferToken(ctx, w.PrivateKey(), mint.String(), dest.String(), amount, decimals, fees)
	if err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}
	s.logger.Info().Str("from", w.Address().String()).Str("to", dest.String()).Str("mint", mint.String()).
		Str("amount", amount.String()).Str("tx", txID).Msg("Tokens transferred")

	if _, err := w.RefreshBalance(ctx, s.gateway); err != nil {
		s.logger.Warn().Err(err).Msg("Balance refresh after sell failed")
	}
	return &model.SellResponse{TxID: txID}, nil
}

// heldAmount sums every token account of owner for mint.
func (s *Service) heldAmount(ctx context.Context, owner, mint solana.PublicKey) (uint64, error) {
	holdings, err := s.gateway.GetTokenHoldings(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("failed to check token balance: %w", err)
	}
	var held uint64
	for _, h := range holdings {
		if h.Mint.Equals(mint) {
			held += h.Amount
		}
	}
	return held, nil
}

// parseAddress validates a base58 Solana address.
func parseAddress(field, s string) (solana.PublicKey, error) {
	pk, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %s %q", client.ErrInvalidAddress, field, s)
	}
	return pk, nil
}
