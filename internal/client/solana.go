package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	confirm "github.com/gagliardetto/solana-go/rpc/sendAndConfirmTransaction"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/AlexZinkM/bundlr-wallet/internal/common"
	"github.com/AlexZinkM/bundlr-wallet/internal/log"
)

// rpcAPI is the subset of *rpc.Client the gateway uses.
type rpcAPI interface {
	GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64, commitment rpc.CommitmentType) (uint64, error)
	GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error)
	GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey, conf *rpc.GetTokenAccountsConfig, opts *rpc.GetTokenAccountsOpts) (*rpc.GetTokenAccountsResult, error)
	SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*rpc.SimulateTransactionResponse, error)
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
}

// GatewayConfig holds chain parameters for SolanaGateway.
type GatewayConfig struct {
	ComputeUnitLimit uint32
	TipAccounts      []solana.PublicKey
	Treasury         solana.PublicKey // simulated buy counter-party; zero means self
	TokensPerSOL     decimal.Decimal
	MinLaunchBalance uint64 // lamports
	ConfirmTimeout   time.Duration
}

var sendOpts = rpc.TransactionOpts{
	SkipPreflight:       false, // Transaction validation before node
	PreflightCommitment: rpc.CommitmentFinalized,
}

// SolanaGateway implements Gateway over Solana JSON-RPC.
type SolanaGateway struct {
	rpc    rpcAPI
	send   func(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	closer func()
	fees   *feeBuilder
	cfg    GatewayConfig
	logger zerolog.Logger

	decimalsMu sync.RWMutex
	decimals   map[solana.PublicKey]uint8
}

// NewSolanaGateway creates a gateway for rpcURL. When wsURL is set, sends wait
// for finalized confirmation over a websocket subscription.
func NewSolanaGateway(ctx context.Context, rpcURL, wsURL string, cfg GatewayConfig) (*SolanaGateway, error) {
	rpcClient := rpc.New(rpcURL)
	g := newGateway(rpcClient, cfg)
	g.closer = func() { _ = rpcClient.Close() }

	if wsURL != "" {
		wsClient, err := ws.Connect(ctx, wsURL)
		if err != nil {
			_ = rpcClient.Close()
			return nil, fmt.Errorf("failed to connect websocket: %w", err)
		}
		timeout := cfg.ConfirmTimeout
		g.send = func(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
			return confirm.SendAndConfirmTransactionWithOpts(ctx, rpcClient, wsClient, tx, sendOpts, &timeout)
		}
		g.closer = func() {
			wsClient.Close()
			_ = rpcClient.Close()
		}
	}
	return g, nil
}

func newGateway(api rpcAPI, cfg GatewayConfig) *SolanaGateway {
	g := &SolanaGateway{
		rpc:      api,
		fees:     newFeeBuilder(cfg.ComputeUnitLimit, cfg.TipAccounts),
		cfg:      cfg,
		logger:   log.Gateway,
		decimals: make(map[solana.PublicKey]uint8),
	}
	g.send = func(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
		return api.SendTransactionWithOpts(ctx, tx, sendOpts)
	}
	return g
}

// Close releases the RPC and websocket connections.
func (g *SolanaGateway) Close() {
	if g.closer != nil {
		g.closer()
	}
}

// GetBalance gets SOL balance in lamports
func (g *SolanaGateway) GetBalance(ctx context.Context, address solana.PublicKey) (uint64, error) {
	balance, err := g.rpc.GetBalance(ctx, address, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w: %w", ErrNetwork, err)
	}
	return balance.Value, nil
}

func (g *SolanaGateway) requireBalance(ctx context.Context, payer solana.PublicKey, need uint64) error {
	have, err := g.GetBalance(ctx, payer)
	if err != nil {
		return err
	}
	if have < need {
		return fmt.Errorf("%w: have %s SOL, need %s SOL", ErrInsufficientBalance,
			common.LamportsToSOL(have), common.LamportsToSOL(need))
	}
	return nil
}

// CreateAndMintToken creates a new SPL mint owned by key and mints the whole
// supply into key's associated token account.
func (g *SolanaGateway) CreateAndMintToken(ctx context.Context, key solana.PrivateKey, spec TokenSpec, fees FeeSpec) (*MintResult, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	feeLamports, err := fees.TotalLamports()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}

	payer := key.PublicKey()
	if err := g.requireBalance(ctx, payer, g.cfg.MinLaunchBalance+feeLamports); err != nil {
		return nil, err
	}

	mintKey, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate mint keypair: %w", err)
	}
	defer clear(mintKey)
	mint := mintKey.PublicKey()

	rent, err := g.rpc.GetMinimumBalanceForRentExemption(ctx, token.MINT_SIZE, rpc.CommitmentFinalized)
	if err != nil {
		return nil, classifyRPCError("get mint rent exemption", err)
	}

	ata, _, err := solana.FindAssociatedTokenAddress(payer, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to find associated token account address: %w", err)
	}

	supply, err := spec.RawSupply()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	ixs, err := g.fees.instructions(payer, fees)
	if err != nil {
		return nil, err
	}
	ixs = append(ixs,
		system.NewCreateAccountInstruction(rent, token.MINT_SIZE, solana.TokenProgramID, payer, mint).Build(),
		token.NewInitializeMint2Instruction(spec.Decimals, payer, payer, mint).Build(),
		associatedtokenaccount.NewCreateInstruction(payer, payer, mint).Build(),
		token.NewMintToCheckedInstruction(supply, spec.Decimals, mint, ata, payer, []solana.PublicKey{}).Build(),
	)

	sig, err := g.signAndSend(ctx, "mint token", ixs, payer, key, mintKey)
	if err != nil {
		return nil, err
	}

	g.decimalsMu.Lock()
	g.decimals[mint] = spec.Decimals
	g.decimalsMu.Unlock()

	g.logger.Info().
		Str("mint", mint.String()).
		Str("creator", payer.String()).
		Str("symbol", spec.Symbol).
		Str("tx", sig.String()).
		Msg("Token minted")

	return &MintResult{TokenAddress: mint, TokenAccount: ata, TxID: sig.String()}, nil
}

// TransferToken sends amount (UI units) of mint from key's token account to destination.
func (g *SolanaGateway) TransferToken(ctx context.Context, key solana.PrivateKey, mint, destination string, amount decimal.Decimal, decimals uint8, fees FeeSpec) (string, error) {
	mintPK, err := parseAddress("mint", mint)
	if err != nil {
		return "", err
	}
	destPK, err := parseAddress("destination", destination)
	if err != nil {
		return "", err
	}
	if !amount.IsPositive() {
		return "", fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}
	raw, err := common.ToBaseUnits(amount, decimals)
	if err != nil || raw == 0 {
		return "", fmt.Errorf("%w: %s with %d decimals", ErrInvalidAmount, amount, decimals)
	}

	owner := key.PublicKey()
	source, _, err := solana.FindAssociatedTokenAddress(owner, mintPK)
	if err != nil {
		return "", fmt.Errorf("failed to find source token account address: %w", err)
	}

	held, err := g.tokenAccountAmount(ctx, source)
	if err != nil {
		return "", err
	}
	if held < raw {
		return "", fmt.Errorf("%w: have %s, need %s", ErrInsufficientTokenBalance,
			common.FromBaseUnits(held, decimals), common.FromBaseUnits(raw, decimals))
	}

	destATA, _, err := solana.FindAssociatedTokenAddress(destPK, mintPK)
	if err != nil {
		return "", fmt.Errorf("failed to find destination token account: %w", err)
	}
	exists, err := g.accountExists(ctx, destATA)
	if err != nil {
		return "", err
	}

	ixs, err := g.fees.instructions(owner, fees)
	if err != nil {
		return "", err
	}
	if !exists {
		ixs = append(ixs, associatedtokenaccount.NewCreateInstruction(owner, destPK, mintPK).Build())
	}
	ixs = append(ixs, token.NewTransferCheckedInstruction(
		raw, decimals, source, mintPK, destATA, owner, []solana.PublicKey{},
	).Build())

	sig, err := g.signAndSend(ctx, "transfer token", ixs, owner, key)
	if err != nil {
		return "", err
	}

	g.logger.Info().
		Str("mint", mintPK.String()).
		Str("from", owner.String()).
		Str("to", destPK.String()).
		Str("amount", amount.String()).
		Str("tx", sig.String()).
		Msg("Token transferred")
	return sig.String(), nil
}

// SimulatedBuy builds a signed SOL transfer to the treasury for solAmount and
// runs it through simulateTransaction. Nothing is broadcast; the token amount
// is derived from the configured exchange rate.
func (g *SolanaGateway) SimulatedBuy(ctx context.Context, key solana.PrivateKey, mint string, solAmount decimal.Decimal, fees FeeSpec) (*BuyResult, error) {
	if _, err := parseAddress("mint", mint); err != nil {
		return nil, err
	}
	lamports, err := common.SOLDecimalToLamports(solAmount)
	if err != nil || lamports == 0 {
		return nil, fmt.Errorf("%w: buy amount must be positive", ErrInvalidAmount)
	}
	feeLamports, err := fees.TotalLamports()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}

	payer := key.PublicKey()
	if err := g.requireBalance(ctx, payer, lamports+feeLamports); err != nil {
		return nil, err
	}

	treasury := g.cfg.Treasury
	if treasury.IsZero() {
		treasury = payer
	}

	ixs, err := g.fees.instructions(payer, fees)
	if err != nil {
		return nil, err
	}
	ixs = append(ixs, system.NewTransferInstruction(lamports, payer, treasury).Build())

	tx, err := g.buildSigned(ctx, ixs, payer, key)
	if err != nil {
		return nil, err
	}

	sim, err := g.rpc.SimulateTransaction(ctx, tx)
	if err != nil {
		return nil, classifyRPCError("simulate buy", err)
	}
	if sim == nil || sim.Value == nil {
		return nil, fmt.Errorf("failed to simulate buy: %w: empty simulation result", ErrNetwork)
	}
	if sim.Value.Err != nil {
		return nil, fmt.Errorf("%w: simulation error %v: %s", ErrTransaction, sim.Value.Err, strings.Join(sim.Value.Logs, "; "))
	}

	return &BuyResult{
		TxID:        tx.Signatures[0].String(),
		TokenAmount: solAmount.Mul(g.cfg.TokensPerSOL),
		Simulated:   true,
	}, nil
}

// GetTokenHoldings lists the SPL token accounts owned by owner.
func (g *SolanaGateway) GetTokenHoldings(ctx context.Context, owner solana.PublicKey) ([]TokenHolding, error) {
	out, err := g.rpc.GetTokenAccountsByOwner(ctx, owner,
		&rpc.GetTokenAccountsConfig{ProgramId: &solana.TokenProgramID},
		&rpc.GetTokenAccountsOpts{Encoding: solana.EncodingBase64},
	)
	if err != nil {
		return nil, classifyRPCError("get token accounts", err)
	}

	holdings := make([]TokenHolding, 0, len(out.Value))
	for _, raw := range out.Value {
		if raw == nil {
			continue
		}
		var acc token.Account
		if err := bin.NewBinDecoder(raw.Account.Data.GetBinary()).Decode(&acc); err != nil {
			g.logger.Warn().Err(err).Str("account", raw.Pubkey.String()).Msg("Skipping undecodable token account")
			continue
		}
		decimals, err := g.MintDecimals(ctx, acc.Mint)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, TokenHolding{
			Mint:     acc.Mint,
			Account:  raw.Pubkey,
			Amount:   acc.Amount,
			Decimals: decimals,
		})
	}
	return holdings, nil
}

// MintDecimals reads the decimals of mint. Results are cached.
func (g *SolanaGateway) MintDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error) {
	g.decimalsMu.RLock()
	d, ok := g.decimals[mint]
	g.decimalsMu.RUnlock()
	if ok {
		return d, nil
	}

	info, err := g.rpc.GetAccountInfo(ctx, mint)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return 0, fmt.Errorf("%w: mint %s not found", ErrInvalidAddress, mint)
		}
		return 0, classifyRPCError("get mint account", err)
	}
	var m token.Mint
	if err := bin.NewBinDecoder(info.GetBinary()).Decode(&m); err != nil {
		return 0, fmt.Errorf("%w: %s is not a token mint: %v", ErrInvalidAddress, mint, err)
	}

	g.decimalsMu.Lock()
	g.decimals[mint] = m.Decimals
	g.decimalsMu.Unlock()
	return m.Decimals, nil
}

// tokenAccountAmount returns the balance of a token account, 0 if it does not exist.
func (g *SolanaGateway) tokenAccountAmount(ctx context.Context, account solana.PublicKey) (uint64, error) {
	info, err := g.rpc.GetAccountInfo(ctx, account)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return 0, nil
		}
		return 0, classifyRPCError("get token account", err)
	}
	var acc token.Account
	if err := bin.NewBinDecoder(info.GetBinary()).Decode(&acc); err != nil {
		return 0, fmt.Errorf("failed to decode token account %s: %w", account, err)
	}
	return acc.Amount, nil
}

func (g *SolanaGateway) accountExists(ctx context.Context, account solana.PublicKey) (bool, error) {
	info, err := g.rpc.GetAccountInfo(ctx, account)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return false, nil
		}
		return false, classifyRPCError("get account info", err)
	}
	return info != nil && info.Value != nil, nil
}

func (g *SolanaGateway) buildSigned(ctx context.Context, ixs []solana.Instruction, payer solana.PublicKey, signers ...solana.PrivateKey) (*solana.Transaction, error) {
	recent, err := g.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return nil, classifyRPCError("get recent blockhash", err)
	}

	tx, err := solana.NewTransaction(ixs, recent.Value.Blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	_, err = tx.Sign(func(pk solana.PublicKey) *solana.PrivateKey {
		for i := range signers {
			if signers[i].PublicKey().Equals(pk) {
				return &signers[i]
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return tx, nil
}

func (g *SolanaGateway) signAndSend(ctx context.Context, op string, ixs []solana.Instruction, payer solana.PublicKey, signers ...solana.PrivateKey) (solana.Signature, error) {
	tx, err := g.buildSigned(ctx, ixs, payer, signers...)
	if err != nil {
		return solana.Signature{}, err
	}

	sig, err := g.send(ctx, tx)
	if err != nil {
		if errors.Is(err, confirm.ErrTimeout) {
			return sig, fmt.Errorf("failed to %s: %w: confirmation timed out for %s", op, ErrNetwork, sig)
		}
		return sig, classifyRPCError(op, err)
	}
	return sig, nil
}
