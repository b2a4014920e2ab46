package model

import "time"

// OutcomeView is one wallet's attempt in a batch.
type OutcomeView struct {
	WalletID    string `json:"walletId"`
	WalletName  string `json:"walletName"`
	Address     string `json:"address"`
	Amount      string `json:"amount"`
	Succeeded   bool   `json:"succeeded"`
	TxID        string `json:"txId,omitempty"`
	TokenAmount string `json:"tokenAmount,omitempty"`
	Error       string `json:"error,omitempty"`
}

// BatchResponse represents the result of a buy batch
type BatchResponse struct {
	BatchID      string        `json:"batchId"`
	Kind         string        `json:"kind"`
	Status       string        `json:"status"`
	Success      bool          `json:"success"`
	Summary      string        `json:"summary"`
	SuccessCount int           `json:"successCount"`
	FailureCount int           `json:"failureCount"`
	Cancelled    bool          `json:"cancelled"`
	Outcomes     []OutcomeView `json:"outcomes"`
}

// EventView is one batch notification.
type EventView struct {
	Type       string    `json:"type"`
	BatchID    string    `json:"batchId"`
	Kind       string    `json:"kind"`
	Target     string    `json:"target,omitempty"`
	WalletID   string    `json:"walletId,omitempty"`
	WalletName string    `json:"walletName,omitempty"`
	Amount     string    `json:"amount,omitempty"`
	TxID       string    `json:"txId,omitempty"`
	Error      string    `json:"error,omitempty"`
	Total      int       `json:"total"`
	Successes  int       `json:"successes"`
	Failures   int       `json:"failures"`
	Cancelled  bool      `json:"cancelled,omitempty"`
	Time       time.Time `json:"time"`
}

// EventsResponse represents response for GET /events
type EventsResponse struct {
	Events []EventView `json:"events"`
	Total  uint64      `json:"total"`
}
