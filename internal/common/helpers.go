package common

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	SOLDecimals      = 9 // SOL has 9 decimals (lamports)
	MaxTokenDecimals = 9 // SPL mints created here allow at most 9 decimals
)

var (
	ErrEmptyAmount    = errors.New("empty amount")
	ErrNegativeAmount = errors.New("amount cannot be negative")
	ErrAmountOverflow = errors.New("amount overflows uint64")
)

var maxUint64 = decimal.NewFromUint64(math.MaxUint64)

// ParseAmount parses a decimal string amount (e.g. "0.25") without float precision loss
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrEmptyAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return decimal.Zero, ErrNegativeAmount
	}
	return d, nil
}

// LamportsToSOL converts lamports to SOL string
func LamportsToSOL(lamports uint64) string {
	return FromBaseUnits(lamports, SOLDecimals)
}

// LamportsToSOLDecimal converts lamports to a SOL decimal
func LamportsToSOLDecimal(lamports uint64) decimal.Decimal {
	return decimal.NewFromUint64(lamports).Shift(-SOLDecimals)
}

// SOLToLamports converts SOL string to lamports. Digits past the 9th decimal are truncated.
func SOLToLamports(sol string) (uint64, error) {
	d, err := ParseAmount(sol)
	if err != nil {
		return 0, err
	}
	return ToBaseUnits(d, SOLDecimals)
}

// SOLDecimalToLamports converts a SOL decimal to lamports
func SOLDecimalToLamports(sol decimal.Decimal) (uint64, error) {
	return ToBaseUnits(sol, SOLDecimals)
}

// ToBaseUnits converts a UI amount to raw base units for the given decimals.
// Example: ToBaseUnits(1.5, 6) = 1500000
func ToBaseUnits(amount decimal.Decimal, decimals uint8) (uint64, error) {
	if amount.IsNegative() {
		return 0, ErrNegativeAmount
	}
	raw := amount.Shift(int32(decimals)).Truncate(0)
	if raw.GreaterThan(maxUint64) {
		return 0, ErrAmountOverflow
	}
	return raw.BigInt().Uint64(), nil
}

// FromBaseUnits converts raw base units to a fixed-point decimal string.
// Example: FromBaseUnits(24981836, 9) = "0.024981836"
func FromBaseUnits(raw uint64, decimals uint8) string {
	return decimal.NewFromUint64(raw).Shift(-int32(decimals)).StringFixed(int32(decimals))
}

// RoundToLamports rounds a SOL amount to lamport precision
func RoundToLamports(sol decimal.Decimal) decimal.Decimal {
	return sol.Round(SOLDecimals)
}
