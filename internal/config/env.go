package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// Store backends supported by STORE_BACKEND.
const (
	StoreBadger   = "badger"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config contains all configuration parameters for the application.
// Note: Password is prompted at runtime and stored in memory - use GetPasswordBytes()
type Config struct {
	Port string `envconfig:"PORT" default:"8080"`

	SolanaRPCURL string `envconfig:"SOLANA_RPC_URL" default:"https://api.mainnet-beta.solana.com"`
	SolanaWSURL  string `envconfig:"SOLANA_WS_URL"`

	StoreBackend string `envconfig:"STORE_BACKEND" default:"badger"`
	StorePath    string `envconfig:"STORE_PATH" default:"./data/wallets"`
	PostgresDSN  string `envconfig:"POSTGRES_DSN"`

	BatchDelay     time.Duration `envconfig:"BATCH_DELAY" default:"1s"`
	GatewayTimeout time.Duration `envconfig:"GATEWAY_TIMEOUT" default:"30s"`

	MultiBuyJitterMin float64 `envconfig:"MULTI_BUY_JITTER_MIN" default:"0.8"`
	MultiBuyJitterMax float64 `envconfig:"MULTI_BUY_JITTER_MAX" default:"1.2"`
	SeedBuyJitterMin  float64 `envconfig:"SEED_BUY_JITTER_MIN" default:"0.5"`
	SeedBuyJitterMax  float64 `envconfig:"SEED_BUY_JITTER_MAX" default:"1.5"`

	DefaultPriorityFee string   `envconfig:"DEFAULT_PRIORITY_FEE" default:"0.001"` // SOL
	ComputeUnitLimit   uint32   `envconfig:"COMPUTE_UNIT_LIMIT" default:"200000"`
	JitoTipAccounts    []string `envconfig:"JITO_TIP_ACCOUNTS" default:"96gYZGLnJYVFmbjzopPSU6QiEV5fGqZNyN9nmNhvrZU5,HFqU5x63VTqvQss8hp11i4wVV8bD44PvwucfZ2bU7gRe,Cw8CFyM9FkoMi7K7Crf6HNQqf4uEMzpKw6QNghXLvLkY,ADaUMid9yfUytqMBgopwjb2DTLSokTSzL1zt6iGPaS49,DfXygSm4jCyNCybVYYK6DwvWqjKee8pbDmJGcLWNDXjh,ADuUkR4vqLUMWXxW9gh6D6L8pMSawimctcNZ5pGwDcEt,DttWaMuVvTiduZRnguLF7jNxTgiMBZ1hyAumKUiL2KRL,3AVi9Tg9Uo68tJfuvoKvqKNWKkC5wPdSSdeBnizKZ6jT"`
	BuyTreasury        string   `envconfig:"BUY_TREASURY"`
	TokensPerSOL       string   `envconfig:"TOKENS_PER_SOL" default:"100"`
	MinLaunchBalance   string   `envconfig:"MIN_LAUNCH_BALANCE" default:"0.05"` // SOL

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogJSON  bool   `envconfig:"LOG_JSON" default:"false"`
	LogFile  string `envconfig:"LOG_FILE"`

	PriceAPIURL string `envconfig:"PRICE_API_URL" default:"https://api.coingecko.com/api/v3"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
func Init() error {
	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return fmt.Errorf("failed to process config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c
	return nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreBadger, StoreMemory:
	case StorePostgres:
		if c.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required when STORE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	for _, f := range []float64{c.MultiBuyJitterMin, c.MultiBuyJitterMax, c.SeedBuyJitterMin, c.SeedBuyJitterMax} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("jitter bounds must be finite, got %v", f)
		}
	}
	if c.MultiBuyJitterMin <= 0 || c.MultiBuyJitterMin > c.MultiBuyJitterMax {
		return fmt.Errorf("invalid multi-buy jitter range [%v, %v]", c.MultiBuyJitterMin, c.MultiBuyJitterMax)
	}
	if c.SeedBuyJitterMin <= 0 || c.SeedBuyJitterMin > c.SeedBuyJitterMax {
		return fmt.Errorf("invalid seed-buy jitter range [%v, %v]", c.SeedBuyJitterMin, c.SeedBuyJitterMax)
	}
	if c.BatchDelay < 0 {
		return errors.New("BATCH_DELAY cannot be negative")
	}
	if c.ComputeUnitLimit == 0 {
		return errors.New("COMPUTE_UNIT_LIMIT must be positive")
	}
	return nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// GetPort returns port from configuration
func GetPort() string {
	return Get().Port
}

// GetSolanaRPCURL returns Solana RPC URL from configuration
func GetSolanaRPCURL() string {
	return Get().SolanaRPCURL
}

// GetSolanaWSURL returns the optional Solana websocket URL
func GetSolanaWSURL() string {
	return Get().SolanaWSURL
}

var passwordBytes []byte

// PromptForPassword prompts the user for the store password in the terminal.
// The password is read without echoing (hidden input) and stored in memory.
// Call this at startup before the server begins handling requests.
func PromptForPassword() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("stdin is not a terminal: run the app interactively to enter password")
	}
	fmt.Fprint(os.Stderr, "Enter wallet store password: ")
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return errors.New("password cannot be empty")
	}

	passwordBytes = make([]byte, len(raw))
	copy(passwordBytes, raw)
	clear(raw)
	return nil
}

// GetPasswordBytes returns the password stored in memory (from PromptForPassword).
// Returns an error if the password was not set.
// Caller must zero the returned slice after use for security.
func GetPasswordBytes() ([]byte, error) {
	if len(passwordBytes) == 0 {
		return nil, errors.New("password not set: call PromptForPassword at startup")
	}
	out := make([]byte, len(passwordBytes))
	copy(out, passwordBytes)
	return out, nil
}

// ClearPassword wipes the prompted password from memory.
func ClearPassword() {
	clear(passwordBytes)
	passwordBytes = nil
}
