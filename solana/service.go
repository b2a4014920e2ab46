// Package solana implements the wallet, trading and launch use cases.
package solana

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/AlexZinkM/bundlr-wallet/internal/batch"
	"github.com/AlexZinkM/bundlr-wallet/internal/client"
	"github.com/AlexZinkM/bundlr-wallet/internal/common"
	"github.com/AlexZinkM/bundlr-wallet/internal/log"
	"github.com/AlexZinkM/bundlr-wallet/internal/model"
	"github.com/AlexZinkM/bundlr-wallet/internal/session"
	"github.com/AlexZinkM/bundlr-wallet/internal/store"
	"github.com/AlexZinkM/bundlr-wallet/internal/wallet"
)

// PriceSource quotes SOL in USD.
type PriceSource interface {
	GetSOLUSDPrice(ctx context.Context) (decimal.Decimal, error)
}

// EventSource exposes recent batch notifications.
type EventSource interface {
	Recent(limit int) []batch.Event
	Total() uint64
}

// Defaults are applied when a request leaves a field out.
type Defaults struct {
	PriorityFee    decimal.Decimal // SOL
	MultiBuyJitter batch.Jitter
	SeedBuyJitter  batch.Jitter
}

// Service wires the session wallets to the chain gateway and the batch executor.
type Service struct {
	session  *session.Session
	gateway  client.Gateway
	executor *batch.Executor
	store    store.Store
	prices   PriceSource
	events   EventSource
	defaults Defaults
	logger   zerolog.Logger
}

// NewService creates the use case layer. prices and events may be nil.
// The session is guarded by exec so it cannot be locked mid-batch.
func NewService(sess *session.Session, gw client.Gateway, exec *batch.Executor, st store.Store, prices PriceSource, events EventSource, d Defaults) *Service {
	sess.SetGuard(exec)
	return &Service{
		session:  sess,
		gateway:  gw,
		executor: exec,
		store:    st,
		prices:   prices,
		events:   events,
		defaults: d,
		logger:   log.WithComponent("service"),
	}
}

func (s *Service) registry() (*wallet.Registry, error) {
	if !s.session.LoggedIn() {
		return nil, session.ErrNotLoggedIn
	}
	return s.session.Registry(), nil
}

func (s *Service) activeWallet() (*wallet.KeyedWallet, error) {
	reg, err := s.registry()
	if err != nil {
		return nil, err
	}
	w, ok := reg.Active()
	if !ok {
		return nil, wallet.ErrNoActiveWallet
	}
	return w, nil
}

func (s *Service) walletByID(id string) (*wallet.KeyedWallet, error) {
	reg, err := s.registry()
	if err != nil {
		return nil, err
	}
	w, ok := reg.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", wallet.ErrWalletNotFound, id)
	}
	return w, nil
}

// feeSpec resolves request fees against the defaults.
func (s *Service) feeSpec(req model.FeeRequest) (client.FeeSpec, error) {
	fees := client.FeeSpec{PriorityFee: s.defaults.PriorityFee, Tip: decimal.Zero}
	if req.PriorityFee != nil {
		p, err := common.ParseAmount(*req.PriorityFee)
		if err != nil {
			return client.FeeSpec{}, fmt.Errorf("%w: priority fee: %v", client.ErrInvalidAmount, err)
		}
		fees.PriorityFee = p
	}
	if req.Tip != "" {
		t, err := common.ParseAmount(req.Tip)
		if err != nil {
			return client.FeeSpec{}, fmt.Errorf("%w: tip: %v", client.ErrInvalidAmount, err)
		}
		fees.Tip = t
	}
	return fees, fees.Validate()
}

// positiveAmount parses a strictly positive decimal amount.
func positiveAmount(field, s string) (decimal.Decimal, error) {
	d, err := common.ParseAmount(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %v", client.ErrInvalidAmount, field, err)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s must be positive", client.ErrInvalidAmount, field)
	}
	return d, nil
}

// jitter overrides def with whichever request bounds are set.
func jitter(def batch.Jitter, lo, hi *float64) (batch.Jitter, error) {
	j := def
	if lo != nil {
		j.Min = *lo
	}
	if hi != nil {
		j.Max = *hi
	}
	return j, j.Validate()
}

func (s *Service) walletView(w *wallet.KeyedWallet, activeID string) model.WalletView {
	info := w.Info()
	return model.WalletView{
		ID:        info.ID,
		Name:      info.Name,
		Address:   info.Address.String(),
		SOL:       common.LamportsToSOL(info.Balance),
		Lamports:  info.Balance,
		Active:    info.ID == activeID,
		Persisted: s.session.Persisted(info.ID),
	}
}

func activeID(reg *wallet.Registry) string {
	if w, ok := reg.Active(); ok {
		return w.ID()
	}
	return ""
}

func (s *Service) walletViews(reg *wallet.Registry) []model.WalletView {
	id := activeID(reg)
	wallets := reg.Snapshot()
	views := make([]model.WalletView, 0, len(wallets))
	for _, w := range wallets {
		views = append(views, s.walletView(w, id))
	}
	return views
}

func batchResponse(res *batch.Result) *model.BatchResponse {
	out := &model.BatchResponse{
		BatchID:      res.ID,
		Kind:         string(res.Kind),
		Status:       string(res.Status),
		Success:      res.Succeeded(),
		Summary:      res.Summary(),
		SuccessCount: res.SuccessCount,
		FailureCount: res.FailureCount,
		Cancelled:    res.Cancelled,
		Outcomes:     make([]model.OutcomeView, 0, len(res.Outcomes)),
	}
	for _, o := range res.Outcomes {
		v := model.OutcomeView{
			WalletID:   o.WalletID,
			WalletName: o.WalletName,
			Address:    o.Address,
			Amount:     o.Amount.String(),
			Succeeded:  o.Succeeded,
			TxID:       o.TxID,
		}
		if o.Succeeded {
			v.TokenAmount = o.TokenAmount.String()
		}
		if o.Err != nil {
			v.Error = o.Err.Error()
		}
		out.Outcomes = append(out.Outcomes, v)
	}
	return out
}

// refreshAfterBatch refreshes every wallet once a batch had at least one success.
func (s *Service) refreshAfterBatch(ctx context.Context, reg *wallet.Registry, res *batch.Result) {
	if !res.Succeeded() {
		return
	}
	if failed := reg.RefreshAll(ctx, s.gateway); failed > 0 {
		s.logger.Warn().Int("failed", failed).Str("batch", res.ID).Msg("Balance refresh after batch incomplete")
	}
}
