package model

// FeeRequest is the optional fee part of a trade request. Amounts are SOL.
type FeeRequest struct {
	PriorityFee *string `json:"priorityFee,omitempty"` // default DEFAULT_PRIORITY_FEE
	Tip         string  `json:"tip,omitempty"`
}

// BuyRequest represents request for POST /trade/buy and POST /trade/buy-all
type BuyRequest struct {
	TokenAddress string     `json:"tokenAddress" binding:"required"`
	Amount       string     `json:"amount" binding:"required"` // SOL per wallet
	Fees         FeeRequest `json:"fees"`
	JitterMin    *float64   `json:"jitterMin,omitempty"` // buy-all only
	JitterMax    *float64   `json:"jitterMax,omitempty"`
}

// SellRequest represents request for POST /trade/sell
type SellRequest struct {
	TokenAddress string     `json:"tokenAddress" binding:"required"`
	ToAddress    string     `json:"toAddress" binding:"required"`
	Amount       string     `json:"amount" binding:"required"` // UI token amount
	Fees         FeeRequest `json:"fees"`
}

// SellResponse represents response for POST /trade/sell
type SellResponse struct {
	TxID string `json:"txId"`
}
