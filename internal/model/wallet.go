package model

// ImportWalletRequest represents request for POST /wallets
type ImportWalletRequest struct {
	PrivateKey string `json:"privateKey" binding:"required"` // base58, JSON array or delimited bytes
	Name       string `json:"name"`
	Remember   *bool  `json:"remember,omitempty"` // default true
}

// SwitchActiveRequest represents request for POST /wallets/active
type SwitchActiveRequest struct {
	Index int `json:"index"`
}

// WalletResponse represents a single wallet with its address QR code
type WalletResponse struct {
	Wallet WalletView `json:"wallet"`
	QR     string     `json:"qr,omitempty"`
}

// RemoveWalletResponse represents response for DELETE /wallets/{id}
type RemoveWalletResponse struct {
	Success     bool `json:"success"`
	ActiveIndex int  `json:"activeIndex"`
}
