package common

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLamportsToSOL(t *testing.T) {
	assert.Equal(t, "0.024981836", LamportsToSOL(24981836))
	assert.Equal(t, "1.000000000", LamportsToSOL(1_000_000_000))
	assert.Equal(t, "0.000000000", LamportsToSOL(0))
}

func TestSOLToLamports(t *testing.T) {
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"1", 1_000_000_000, false},
		{"0.024981836", 24981836, false},
		{" 0.5 ", 500_000_000, false},
		{"0.0000000019", 1, false},
		{"", 0, true},
		{"-1", 0, true},
		{"abc", 0, true},
		{"99999999999999999999", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := SOLToLamports(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToBaseUnits(t *testing.T) {
	got, err := ToBaseUnits(decimal.RequireFromString("1.5"), 6)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_500_000), got)

	got, err = ToBaseUnits(decimal.NewFromInt(1_000_000), 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), got)

	_, err = ToBaseUnits(decimal.NewFromUint64(math.MaxUint64), 1)
	assert.ErrorIs(t, err, ErrAmountOverflow)
}

func TestFromBaseUnits(t *testing.T) {
	assert.Equal(t, "1.500000", FromBaseUnits(1_500_000, 6))
	assert.Equal(t, "42", FromBaseUnits(42, 0))
}

func TestRoundToLamports(t *testing.T) {
	d := RoundToLamports(decimal.RequireFromString("0.1234567894"))
	assert.Equal(t, "0.123456789", d.String())
}
