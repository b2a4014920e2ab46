package batch

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/AlexZinkM/bundlr-wallet/internal/client"
	"github.com/AlexZinkM/bundlr-wallet/internal/common"
)

// Kind identifies what a batch is doing.
type Kind string

const (
	SingleWalletBuy    Kind = "single-wallet-buy"
	MultiWalletBuy     Kind = "multi-wallet-buy"
	SeedBuyAfterLaunch Kind = "seed-buy-after-launch"
)

var ErrInvalidOperation = errors.New("invalid batch operation")

// Jitter is the closed range a per-wallet amount multiplier is drawn from.
type Jitter struct {
	Min float64
	Max float64
}

// NoJitter keeps every amount equal to the base amount.
var NoJitter = Jitter{Min: 1, Max: 1}

func (j Jitter) Validate() error {
	if !finite(j.Min) || !finite(j.Max) {
		return fmt.Errorf("%w: jitter bounds must be finite, got [%v, %v]", ErrInvalidOperation, j.Min, j.Max)
	}
	if j.Min <= 0 || j.Max <= 0 {
		return fmt.Errorf("%w: jitter bounds must be positive, got [%v, %v]", ErrInvalidOperation, j.Min, j.Max)
	}
	if j.Min > j.Max {
		return fmt.Errorf("%w: jitter min %v exceeds max %v", ErrInvalidOperation, j.Min, j.Max)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// factor maps r in [0,1) onto [Min,Max].
func (j Jitter) factor(r float64) decimal.Decimal {
	return decimal.NewFromFloat(j.Min + r*(j.Max-j.Min))
}

// Operation is one buy fanned out over a set of wallets.
type Operation struct {
	Kind       Kind
	Target     string          // token mint address
	BaseAmount decimal.Decimal // SOL per wallet before jitter
	Fees       client.FeeSpec
	Jitter     Jitter
}

func (op Operation) Validate() error {
	switch op.Kind {
	case SingleWalletBuy, MultiWalletBuy, SeedBuyAfterLaunch:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidOperation, op.Kind)
	}
	if op.Target == "" {
		return fmt.Errorf("%w: target token is required", ErrInvalidOperation)
	}
	if !op.BaseAmount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidOperation)
	}
	if err := op.Fees.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOperation, err)
	}
	return op.Jitter.Validate()
}

// amountFor applies the jitter factor and rounds to lamport precision.
func (op Operation) amountFor(r float64) decimal.Decimal {
	return common.RoundToLamports(op.BaseAmount.Mul(op.Jitter.factor(r)))
}
