package solana

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/bundlr-wallet/internal/batch"
	"github.com/AlexZinkM/bundlr-wallet/internal/model"
	"github.com/AlexZinkM/bundlr-wallet/internal/wallet"
)

// Buy runs a single-wallet buy with the active wallet. Unlike a multi-wallet
// batch it fails fast: a failed buy is returned as an error.
func (s *Service) Buy(ctx context.Context, req model.BuyRequest) (*model.BatchResponse, error) {
	op, err := s.buyOperation(batch.SingleWalletBuy, req, batch.NoJitter)
	if err != nil {
		return nil, err
	}
	w, err := s.activeWallet()
	if err != nil {
		return nil, err
	}

	res, err := s.executor.Run(ctx, []*wallet.KeyedWallet{w}, op)
	if err != nil {
		return nil, err
	}
	if !res.Succeeded() {
		if len(res.Outcomes) == 0 {
			return nil, fmt.Errorf("buy cancelled: %w", context.Cause(ctx))
		}
		return nil, fmt.Errorf("buy failed: %w", res.Outcomes[0].Err)
	}

	if _, err := w.RefreshBalance(ctx, s.gateway); err != nil {
		s.logger.Warn().Err(err).Msg("Balance refresh after buy failed")
	}
	return batchResponse(res), nil
}

// BuyAll runs a multi-wallet buy across every session wallet in order.
// Per-wallet failures are reported in the response; balances are refreshed
// when at least one wallet succeeded.
func (s *Service) BuyAll(ctx context.Context, req model.BuyRequest) (*model.BatchResponse, error) {
	j, err := jitter(s.defaults.MultiBuyJitter, req.JitterMin, req.JitterMax)
	if err != nil {
		return nil, err
	}
	op, err := s.buyOperation(batch.MultiWalletBuy, req, j)
	if err != nil {
		return nil, err
	}
	reg, err := s.registry()
	if err != nil {
		return nil, err
	}

	res, err := s.executor.Run(ctx, reg.Snapshot(), op)
	if err != nil {
		return nil, err
	}
	s.refreshAfterBatch(ctx, reg, res)
	return batchResponse(res), nil
}

func (s *Service) buyOperation(kind batch.Kind, req model.BuyRequest, j batch.Jitter) (batch.Operation, error) {
	if _, err := parseAddress("token", req.TokenAddress); err != nil {
		return batch.Operation{}, err
	}
	amount, err := positiveAmount("amount", req.Amount)
	if err != nil {
		return batch.Operation{}, err
	}
	fees, err := s.feeSpec(req.Fees)
	if err != nil {
		return batch.Operation{}, err
	}
	op := batch.Operation{
		Kind:       kind,
		Target:     req.TokenAddress,
		BaseAmount: amount,
		Fees:       fees,
		Jitter:     j,
	}
	return op, op.Validate()
}
