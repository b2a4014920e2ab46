package model

import "time"

// LaunchRequest represents request for POST /tokens/launch
type LaunchRequest struct {
	Name        string     `json:"name" binding:"required"`
	Symbol      string     `json:"symbol" binding:"required"`
	Decimals    uint8      `json:"decimals"`
	TotalSupply uint64     `json:"totalSupply" binding:"required"`
	Description string     `json:"description,omitempty"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	Fees        FeeRequest `json:"fees"`
	// SeedAmount enables a seed buy from every other wallet when non-empty (SOL per wallet).
	SeedAmount    string   `json:"seedAmount,omitempty"`
	SeedJitterMin *float64 `json:"seedJitterMin,omitempty"`
	SeedJitterMax *float64 `json:"seedJitterMax,omitempty"`
}

// LaunchResponse represents response for POST /tokens/launch
type LaunchResponse struct {
	TokenAddress string         `json:"tokenAddress"`
	TokenAccount string         `json:"tokenAccount"`
	TxID         string         `json:"txId"`
	SeedBuy      *BatchResponse `json:"seedBuy,omitempty"`
	SeedError    string         `json:"seedError,omitempty"`
}

// LaunchedToken is one entry of GET /tokens/launched
type LaunchedToken struct {
	TokenAddress string    `json:"tokenAddress"`
	Creator      string    `json:"creator"`
	Name         string    `json:"name"`
	Symbol       string    `json:"symbol"`
	Decimals     uint8     `json:"decimals"`
	TotalSupply  string    `json:"totalSupply"`
	Description  string    `json:"description,omitempty"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	TxID         string    `json:"txId"`
	SeedBuys     int       `json:"seedBuys"`
	SeedFailures int       `json:"seedFailures"`
	CreatedAt    time.Time `json:"createdAt"`
}

// LaunchedTokensResponse represents response for GET /tokens/launched
type LaunchedTokensResponse struct {
	Tokens []LaunchedToken `json:"tokens"`
}
