package solana

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/AlexZinkM/bundlr-wallet/internal/batch"
	"github.com/AlexZinkM/bundlr-wallet/internal/client"
	"github.com/AlexZinkM/bundlr-wallet/internal/model"
	"github.com/AlexZinkM/bundlr-wallet/internal/store"
)

var errNoSeedWallets = errors.New("no other wallets to seed buy with")

// LaunchToken mints a new token with the active wallet and, when a seed
// amount is given, seed buys it from every other wallet. The mint is kept
// even if the seed buy fails; that failure is reported in the response.
func (s *Service) LaunchToken(ctx context.Context, req model.LaunchRequest) (*model.LaunchResponse, error) {
	spec := client.TokenSpec{
		Name:        req.Name,
		Symbol:      req.Symbol,
		Decimals:    req.Decimals,
		TotalSupply: req.TotalSupply,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	fees, err := s.feeSpec(req.Fees)
	if err != nil {
		return nil, err
	}

	// seed parameters are checked before anything is minted
	var (
		seed       bool
		seedAmount decimal.Decimal
		seedJitter batch.Jitter
	)
	if req.SeedAmount != "" {
		seed = true
		if seedAmount, err = positiveAmount("seed amount", req.SeedAmount); err != nil {
			return nil, err
		}
		if seedJitter, err = jitter(s.defaults.SeedBuyJitter, req.SeedJitterMin, req.SeedJitterMax); err != nil {
			return nil, err
		}
	}

	creator, err := s.activeWallet()
	if err != nil {
		return nil, err
	}

	minted, err := s.gateway.CreateAndMintToken(ctx, creator.PrivateKey(), spec, fees)
	if err != nil {
		return nil, fmt.Errorf("failed to launch token: %w", err)
	}
	s.logger.Info().Str("mint", minted.TokenAddress.String()).Str("symbol", spec.Symbol).
		Str("creator", creator.Address().String()).Str("tx", minted.TxID).Msg("Token launched")

	rec := store.LaunchRecord{
		TokenAddress: minted.TokenAddress.String(),
		TokenAccount: minted.TokenAccount.String(),
		Creator:      creator.Address().String(),
		Name:         spec.Name,
		Symbol:       spec.Symbol,
		Decimals:     spec.Decimals,
		TotalSupply:  strconv.FormatUint(spec.TotalSupply, 10),
		Description:  spec.Description,
		ImageURL:     spec.ImageURL,
		TxID:         minted.TxID,
	}
	s.saveLaunch(ctx, rec)

	resp := &model.LaunchResponse{
		TokenAddress: rec.TokenAddress,
		TokenAccount: rec.TokenAccount,
		TxID:         rec.TxID,
	}

	if seed {
		res, err := s.seedBuy(ctx, creator.ID(), batch.Operation{
			Kind:       batch.SeedBuyAfterLaunch,
			Target:     rec.TokenAddress,
			BaseAmount: seedAmount,
			Fees:       fees,
			Jitter:     seedJitter,
		})
		if err != nil {
			s.logger.Warn().Err(err).Str("mint", rec.TokenAddress).Msg("Seed buy not run")
			resp.SeedError = err.Error()
		} else {
			resp.SeedBuy = batchResponse(res)
			rec.SeedBatchID = res.ID
			rec.SeedBuys = res.SuccessCount
			rec.SeedFailures = res.FailureCount
			s.saveLaunch(ctx, rec)
		}
	}

	if _, err := creator.RefreshBalance(ctx, s.gateway); err != nil {
		s.logger.Warn().Err(err).Msg("Balance refresh after launch failed")
	}
	return resp, nil
}

func (s *Service) seedBuy(ctx context.Context, creatorID string, op batch.Operation) (*batch.Result, error) {
	reg, err := s.registry()
	if err != nil {
		return nil, err
	}
	others := reg.Except(creatorID)
	if len(others) == 0 {
		return nil, errNoSeedWallets
	}
	res, err := s.executor.Run(ctx, others, op)
	if err != nil {
		return nil, err
	}
	s.refreshAfterBatch(ctx, reg, res)
	return res, nil
}

// saveLaunch records a launch. The token already exists on chain, so a store
// failure is logged rather than returned.
func (s *Service) saveLaunch(ctx context.Context, rec store.LaunchRecord) {
	if err := s.store.SaveLaunch(ctx, rec); err != nil {
		s.logger.Error().Err(err).Str("mint", rec.TokenAddress).Msg("Failed to save launch record")
	}
}

// LaunchedTokens lists tokens launched through the service, newest first.
func (s *Service) LaunchedTokens(ctx context.Context) (*model.LaunchedTokensResponse, error) {
	records, err := s.store.ListLaunches(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list launched tokens: %w", err)
	}

	resp := &model.LaunchedTokensResponse{Tokens: make([]model.LaunchedToken, 0, len(records))}
	for _, r := range records {
		resp.Tokens = append(resp.Tokens, model.LaunchedToken{
			TokenAddress: r.TokenAddress,
			Creator:      r.Creator,
			Name:         r.Name,
			Symbol:       r.Symbol,
			Decimals:     r.Decimals,
			TotalSupply:  r.TotalSupply,
			Description:  r.Description,
			ImageURL:     r.ImageURL,
			TxID:         r.TxID,
			SeedBuys:     r.SeedBuys,
			SeedFailures: r.SeedFailures,
			CreatedAt:    r.CreatedAt,
		})
	}
	return resp, nil
}
