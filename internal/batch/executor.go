// Package batch runs one buy across many wallets, one wallet at a time.
package batch

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/AlexZinkM/bundlr-wallet/internal/client"
	"github.com/AlexZinkM/bundlr-wallet/internal/log"
	"github.com/AlexZinkM/bundlr-wallet/internal/wallet"
)

const (
	DefaultDelay       = time.Second
	DefaultCallTimeout = 30 * time.Second
)

var (
	ErrNoWallets       = errors.New("no wallets to run batch on")
	ErrBatchInProgress = errors.New("another batch is already running")
)

// Buyer is the gateway primitive a batch calls once per wallet.
type Buyer interface {
	SimulatedBuy(ctx context.Context, key solana.PrivateKey, mint string, solAmount decimal.Decimal, fees client.FeeSpec) (*client.BuyResult, error)
}

// Status is the executor lifecycle state.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "success"
	StatusAllFailed Status = "all_failed"
)

// Outcome is the result of one wallet's attempt.
type Outcome struct {
	WalletID    string          `json:"walletId"`
	WalletName  string          `json:"walletName"`
	Address     string          `json:"address"`
	Amount      decimal.Decimal `json:"amount"`
	Succeeded   bool            `json:"succeeded"`
	TxID        string          `json:"txId,omitempty"`
	TokenAmount decimal.Decimal `json:"tokenAmount"`
	Err         error           `json:"-"`
}

// Result summarizes a finished batch.
type Result struct {
	ID           string
	Kind         Kind
	Outcomes     []Outcome
	SuccessCount int
	FailureCount int
	Status       Status
	Cancelled    bool
}

// Succeeded reports whether at least one wallet succeeded.
func (r *Result) Succeeded() bool {
	return r.SuccessCount > 0
}

// Summary is a one-line human readable description of the result.
func (r *Result) Summary() string {
	s := fmt.Sprintf("%s: %d succeeded, %d failed", r.Kind, r.SuccessCount, r.FailureCount)
	if r.Cancelled {
		s += " (cancelled)"
	}
	return s
}

// Config holds executor timing.
type Config struct {
	Delay       time.Duration // pause between wallets
	CallTimeout time.Duration // bound on each gateway call, 0 disables
}

// Executor runs batch operations sequentially.
type Executor struct {
	buyer    Buyer
	delay    time.Duration
	timeout  time.Duration
	notifier Notifier
	random   func() float64
	wait     func(ctx context.Context, d time.Duration) bool
	logger   zerolog.Logger

	mu     sync.Mutex
	status Status
	held   bool
}

// NewExecutor creates an executor. Zero config values are replaced by defaults;
// use a negative Delay for no pause.
func NewExecutor(buyer Buyer, cfg Config) *Executor {
	if cfg.Delay == 0 {
		cfg.Delay = DefaultDelay
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}
	if cfg.CallTimeout == 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	return &Executor{
		buyer:    buyer,
		delay:    cfg.Delay,
		timeout:  cfg.CallTimeout,
		notifier: nopNotifier{},
		random:   rand.Float64,
		wait:     sleepCtx,
		logger:   log.Batch,
		status:   StatusIdle,
	}
}

// SetNotifier sets the progress sink.
func (e *Executor) SetNotifier(n Notifier) {
	if n == nil {
		n = nopNotifier{}
	}
	e.notifier = n
}

// SetRandom replaces the [0,1) source used for jitter.
func (e *Executor) SetRandom(fn func() float64) {
	e.random = fn
}

// Status returns the state of the last or current batch.
func (e *Executor) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Hold keeps new batches from starting until release is called. It fails
// with ErrBatchInProgress while a batch is running or another hold is active.
func (e *Executor) Hold() (release func(), err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status == StatusRunning || e.held {
		return nil, ErrBatchInProgress
	}
	e.held = true
	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			e.held = false
			e.mu.Unlock()
		})
	}, nil
}

func (e *Executor) begin() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status == StatusRunning || e.held {
		return ErrBatchInProgress
	}
	e.status = StatusRunning
	return nil
}

func (e *Executor) finish(s Status) {
	e.mu.Lock()
	e.status = s
	e.mu.Unlock()
}

// Run executes op for each wallet in order. Per-wallet failures are recorded
// in the result and never stop the loop. Cancelling ctx stops the batch
// between wallets; a call already in flight runs to completion or timeout.
func (e *Executor) Run(ctx context.Context, wallets []*wallet.KeyedWallet, op Operation) (*Result, error) {
	if err := op.Validate(); err != nil {
		return nil, err
	}
	if len(wallets) == 0 {
		return nil, ErrNoWallets
	}
	if err := e.begin(); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			e.finish(StatusAllFailed)
			panic(r)
		}
	}()

	res := &Result{
		ID:       uuid.NewString(),
		Kind:     op.Kind,
		Outcomes: make([]Outcome, 0, len(wallets)),
	}
	logger := e.logger.With().Str("batch", res.ID).Str("kind", string(op.Kind)).Str("target", op.Target).Logger()
	base := Event{BatchID: res.ID, Kind: op.Kind, Target: op.Target, Total: len(wallets)}

	logger.Info().Int("wallets", len(wallets)).Str("base_amount", op.BaseAmount.String()).Msg("Batch started")
	e.emit(base, EventBatchStarted, nil)

	for i, w := range wallets {
		if ctx.Err() != nil {
			res.Cancelled = true
			break
		}

		out := e.runOne(ctx, base, w, op)
		res.Outcomes = append(res.Outcomes, out)
		if out.Succeeded {
			res.SuccessCount++
			logger.Info().Str("wallet", out.Address).Str("amount", out.Amount.String()).Str("tx", out.TxID).Msg("Buy succeeded")
		} else {
			res.FailureCount++
			logger.Warn().Err(out.Err).Str("wallet", out.Address).Str("amount", out.Amount.String()).Msg("Buy failed")
		}
		e.emit(withCounts(base, res), eventFor(out), &out)

		if i < len(wallets)-1 && e.delay > 0 {
			if !e.wait(ctx, e.delay) {
				res.Cancelled = true
				break
			}
		}
	}

	if res.Succeeded() {
		res.Status = StatusSucceeded
	} else {
		res.Status = StatusAllFailed
	}
	e.finish(res.Status)

	logger.Info().Int("succeeded", res.SuccessCount).Int("failed", res.FailureCount).Bool("cancelled", res.Cancelled).Msg("Batch finished")
	done := withCounts(base, res)
	done.Cancelled = res.Cancelled
	e.emit(done, EventBatchFinished, nil)

	return res, nil
}

func (e *Executor) runOne(ctx context.Context, base Event, w *wallet.KeyedWallet, op Operation) Outcome {
	out := Outcome{
		WalletID:   w.ID(),
		WalletName: w.Name(),
		Address:    w.Address().String(),
		Amount:     op.amountFor(e.random()),
	}
	e.emit(base, EventWalletStarted, &out)

	if w.Wiped() {
		out.Err = fmt.Errorf("%w: %s", wallet.ErrWalletWiped, out.Address)
		return out
	}

	callCtx := context.WithoutCancel(ctx)
	if e.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(callCtx, e.timeout)
		defer cancel()
	}

	buy, err := e.buyer.SimulatedBuy(callCtx, w.PrivateKey(), op.Target, out.Amount, op.Fees)
	if err != nil {
		out.Err = err
		return out
	}
	out.Succeeded = true
	out.TxID = buy.TxID
	out.TokenAmount = buy.TokenAmount
	return out
}

func (e *Executor) emit(ev Event, t EventType, out *Outcome) {
	ev.Type = t
	ev.Time = time.Now()
	if out != nil {
		ev.WalletID = out.WalletID
		ev.WalletName = out.WalletName
		ev.Amount = out.Amount
		ev.TxID = out.TxID
		if out.Err != nil {
			ev.Error = out.Err.Error()
		}
	}
	e.notifier.Notify(ev)
}

func withCounts(ev Event, r *Result) Event {
	ev.Successes = r.SuccessCount
	ev.Failures = r.FailureCount
	return ev
}

func eventFor(out Outcome) EventType {
	if out.Succeeded {
		return EventWalletSucceeded
	}
	return EventWalletFailed
}

// sleepCtx waits for d and reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
