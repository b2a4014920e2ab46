package client

import (
	"fmt"
	"math/rand/v2"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/shopspring/decimal"

	"github.com/AlexZinkM/bundlr-wallet/internal/common"
)

// FeeSpec is the extra SOL a transaction pays on top of the base fee.
type FeeSpec struct {
	PriorityFee decimal.Decimal // SOL, spread over the compute unit limit
	Tip         decimal.Decimal // SOL, paid to a Jito tip account
}

// Validate rejects negative fees.
func (f FeeSpec) Validate() error {
	if f.PriorityFee.IsNegative() {
		return fmt.Errorf("%w: priority fee cannot be negative", ErrInvalidAmount)
	}
	if f.Tip.IsNegative() {
		return fmt.Errorf("%w: tip cannot be negative", ErrInvalidAmount)
	}
	return nil
}

// Total is PriorityFee + Tip in SOL.
func (f FeeSpec) Total() decimal.Decimal {
	return f.PriorityFee.Add(f.Tip)
}

// TotalLamports is PriorityFee + Tip in lamports.
func (f FeeSpec) TotalLamports() (uint64, error) {
	return common.SOLDecimalToLamports(f.Total())
}

// feeBuilder turns a FeeSpec into compute budget and tip instructions.
type feeBuilder struct {
	computeUnitLimit uint32
	tipAccounts      []solana.PublicKey
	pick             func(n int) int
}

func newFeeBuilder(limit uint32, tipAccounts []solana.PublicKey) *feeBuilder {
	return &feeBuilder{computeUnitLimit: limit, tipAccounts: tipAccounts, pick: rand.IntN}
}

// unitPrice converts a priority fee in lamports to micro-lamports per compute unit.
func (b *feeBuilder) unitPrice(priorityLamports uint64) uint64 {
	if b.computeUnitLimit == 0 {
		return 0
	}
	return decimal.NewFromUint64(priorityLamports).
		Mul(decimal.NewFromInt(1_000_000)).
		Div(decimal.NewFromInt(int64(b.computeUnitLimit))).
		Floor().
		BigInt().
		Uint64()
}

func (b *feeBuilder) instructions(payer solana.PublicKey, fees FeeSpec) ([]solana.Instruction, error) {
	if err := fees.Validate(); err != nil {
		return nil, err
	}

	var ixs []solana.Instruction

	priority, err := common.SOLDecimalToLamports(fees.PriorityFee)
	if err != nil {
		return nil, fmt.Errorf("%w: priority fee: %v", ErrInvalidAmount, err)
	}
	if priority > 0 {
		limitIx, err := computebudget.NewSetComputeUnitLimitInstruction(b.computeUnitLimit).ValidateAndBuild()
		if err != nil {
			return nil, fmt.Errorf("failed to build compute unit limit instruction: %w", err)
		}
		priceIx, err := computebudget.NewSetComputeUnitPriceInstruction(b.unitPrice(priority)).ValidateAndBuild()
		if err != nil {
			return nil, fmt.Errorf("failed to build compute unit price instruction: %w", err)
		}
		ixs = append(ixs, limitIx, priceIx)
	}

	tip, err := common.SOLDecimalToLamports(fees.Tip)
	if err != nil {
		return nil, fmt.Errorf("%w: tip: %v", ErrInvalidAmount, err)
	}
	if tip > 0 {
		if len(b.tipAccounts) == 0 {
			return nil, fmt.Errorf("%w: tip requested but no tip accounts configured", ErrInvalidAmount)
		}
		tipAccount := b.tipAccounts[b.pick(len(b.tipAccounts))]
		ixs = append(ixs, system.NewTransferInstruction(tip, payer, tipAccount).Build())
	}

	return ixs, nil
}
