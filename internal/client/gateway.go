package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/shopspring/decimal"

	"github.com/AlexZinkM/bundlr-wallet/internal/common"
)

var (
	ErrInsufficientBalance      = errors.New("insufficient SOL balance")
	ErrInsufficientTokenBalance = errors.New("insufficient token balance")
	ErrInvalidAddress           = errors.New("invalid address")
	ErrInvalidAmount            = errors.New("invalid amount")
	ErrInvalidToken             = errors.New("invalid token details")
	ErrNetwork                  = errors.New("network error")
	ErrTransaction              = errors.New("transaction failed")
)

// Gateway is the chain boundary used by wallets and batch operations.
type Gateway interface {
	GetBalance(ctx context.Context, address solana.PublicKey) (uint64, error)
	CreateAndMintToken(ctx context.Context, key solana.PrivateKey, spec TokenSpec, fees FeeSpec) (*MintResult, error)
	TransferToken(ctx context.Context, key solana.PrivateKey, mint, destination string, amount decimal.Decimal, decimals uint8, fees FeeSpec) (string, error)
	SimulatedBuy(ctx context.Context, key solana.PrivateKey, mint string, solAmount decimal.Decimal, fees FeeSpec) (*BuyResult, error)
	GetTokenHoldings(ctx context.Context, owner solana.PublicKey) ([]TokenHolding, error)
	MintDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error)
}

// TokenSpec describes a new SPL mint.
type TokenSpec struct {
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply uint64 // whole tokens
	Description string
	ImageURL    string
}

const maxSymbolLen = 10

// Validate checks the token details before anything is sent.
func (s TokenSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidToken)
	}
	if s.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidToken)
	}
	if len(s.Symbol) > maxSymbolLen {
		return fmt.Errorf("%w: symbol must be at most %d characters", ErrInvalidToken, maxSymbolLen)
	}
	if s.Decimals > common.MaxTokenDecimals {
		return fmt.Errorf("%w: decimals must be between 0 and %d", ErrInvalidToken, common.MaxTokenDecimals)
	}
	if s.TotalSupply == 0 {
		return fmt.Errorf("%w: total supply must be positive", ErrInvalidToken)
	}
	if _, err := s.RawSupply(); err != nil {
		return fmt.Errorf("%w: total supply too large for %d decimals", ErrInvalidToken, s.Decimals)
	}
	return nil
}

// RawSupply is the total supply in base units.
func (s TokenSpec) RawSupply() (uint64, error) {
	return common.ToBaseUnits(decimal.NewFromUint64(s.TotalSupply), s.Decimals)
}

// MintResult is the outcome of CreateAndMintToken.
type MintResult struct {
	TokenAddress solana.PublicKey
	TokenAccount solana.PublicKey // creator's associated token account
	TxID         string
}

// BuyResult is the outcome of SimulatedBuy.
type BuyResult struct {
	TxID        string
	TokenAmount decimal.Decimal
	Simulated   bool
}

// TokenHolding is one SPL token account owned by a wallet.
type TokenHolding struct {
	Mint     solana.PublicKey
	Account  solana.PublicKey
	Amount   uint64 // base units
	Decimals uint8
}

// UIAmount formats Amount with the mint's decimals.
func (h TokenHolding) UIAmount() string {
	return common.FromBaseUnits(h.Amount, h.Decimals)
}

func parseAddress(field, s string) (solana.PublicKey, error) {
	pk, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %s %q: %v", ErrInvalidAddress, field, s, err)
	}
	return pk, nil
}

// classifyRPCError maps a node error to ErrTransaction and anything else to ErrNetwork.
func classifyRPCError(op string, err error) error {
	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) {
		return fmt.Errorf("failed to %s: %w: %w", op, ErrTransaction, err)
	}
	return fmt.Errorf("failed to %s: %w: %w", op, ErrNetwork, err)
}
