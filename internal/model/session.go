package model

// LoginRequest represents request for POST /session/login.
// An empty password falls back to the one entered at startup.
type LoginRequest struct {
	Password string `json:"password"`
}

// SkippedWallet is a stored wallet that could not be restored.
type SkippedWallet struct {
	ID      string `json:"id"`
	Address string `json:"address"`
	Reason  string `json:"reason"`
}

// LoginResponse represents response for POST /session/login
type LoginResponse struct {
	Restored int             `json:"restored"`
	Skipped  []SkippedWallet `json:"skipped"`
	Warning  string          `json:"warning,omitempty"`
}

// StatusResponse is a generic acknowledgement.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
