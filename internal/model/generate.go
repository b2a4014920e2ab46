package model

// GenerateRequest represents request for POST /wallets/generate
type GenerateRequest struct {
	Name     string `json:"name"`
	Remember *bool  `json:"remember,omitempty"` // default true
}

// GenerateResponse represents response for POST /wallets/generate
type GenerateResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Wallet  WalletView `json:"wallet"`
	QR      string     `json:"qr"` // base64 PNG of the address
}
