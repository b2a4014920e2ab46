package model

// WalletView is one wallet as shown by the API. Key material is never included.
type WalletView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	SOL       string `json:"sol"`
	Lamports  uint64 `json:"lamports"`
	Active    bool   `json:"active"`
	Persisted bool   `json:"persisted"`
}

// PortfolioView is the sum of cached balances priced in USD.
type PortfolioView struct {
	TotalSOL string `json:"totalSol"`
	Rate     string `json:"solUsdRate,omitempty"`
	USD      string `json:"usd,omitempty"`
	Error    string `json:"rateError,omitempty"`
}

// WalletsResponse represents response for GET /wallets
type WalletsResponse struct {
	Wallets     []WalletView  `json:"wallets"`
	ActiveIndex int           `json:"activeIndex"`
	Portfolio   PortfolioView `json:"portfolio"`
}

// RefreshResponse represents response for POST /wallets/refresh
type RefreshResponse struct {
	Wallets  []WalletView `json:"wallets"`
	Failures int          `json:"failures"`
}

// TokenHoldingView is one SPL token balance.
type TokenHoldingView struct {
	Mint     string `json:"mint"`
	Account  string `json:"account"`
	Amount   string `json:"amount"`
	Raw      uint64 `json:"raw"`
	Decimals uint8  `json:"decimals"`
}

// HoldingsResponse represents response for GET /wallets/{id}/tokens
type HoldingsResponse struct {
	Address  string             `json:"address"`
	Holdings []TokenHoldingView `json:"holdings"`
}
