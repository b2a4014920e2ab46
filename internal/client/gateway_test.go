package client

import (
	"errors"
	"math"
	"testing"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/stretchr/testify/assert"
)

func TestTokenSpec_Validate(t *testing.T) {
	valid := TokenSpec{Name: "Bundle", Symbol: "BNDL", Decimals: 6, TotalSupply: 1_000_000}

	tests := []struct {
		name    string
		mutate  func(s *TokenSpec)
		wantErr bool
	}{
		{"valid", func(s *TokenSpec) {}, false},
		{"zero decimals", func(s *TokenSpec) { s.Decimals = 0 }, false},
		{"nine decimals", func(s *TokenSpec) { s.Decimals = 9 }, false},
		{"missing name", func(s *TokenSpec) { s.Name = "" }, true},
		{"missing symbol", func(s *TokenSpec) { s.Symbol = "" }, true},
		{"symbol too long", func(s *TokenSpec) { s.Symbol = "ABCDEFGHIJK" }, true},
		{"symbol at limit", func(s *TokenSpec) { s.Symbol = "ABCDEFGHIJ" }, false},
		{"ten decimals", func(s *TokenSpec) { s.Decimals = 10 }, true},
		{"zero supply", func(s *TokenSpec) { s.TotalSupply = 0 }, true},
		{"supply overflow", func(s *TokenSpec) { s.TotalSupply = math.MaxUint64 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidToken)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTokenHolding_UIAmount(t *testing.T) {
	h := TokenHolding{Amount: 1_500_000, Decimals: 6}
	assert.Equal(t, "1.500000", h.UIAmount())
}

func TestClassifyRPCError(t *testing.T) {
	rpcErr := &jsonrpc.RPCError{Code: -32002, Message: "Transaction simulation failed"}
	err := classifyRPCError("send", rpcErr)
	assert.ErrorIs(t, err, ErrTransaction)
	assert.NotErrorIs(t, err, ErrNetwork)

	err = classifyRPCError("send", errors.New("connection refused"))
	assert.ErrorIs(t, err, ErrNetwork)
	assert.NotErrorIs(t, err, ErrTransaction)
}

func TestParseAddress(t *testing.T) {
	_, err := parseAddress("destination", "not-an-address")
	assert.ErrorIs(t, err, ErrInvalidAddress)

	pk, err := parseAddress("mint", "So11111111111111111111111111111111111111112")
	assert.NoError(t, err)
	assert.Equal(t, "So11111111111111111111111111111111111111112", pk.String())
}
