package model

// ErrorResponse is the consistent JSON structure for all API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest          = "bad_request"
	CodeInvalidKey          = "invalid_key_format"
	CodeInvalidAddress      = "invalid_address"
	CodeInvalidAmount       = "invalid_amount"
	CodeInvalidToken        = "invalid_token"
	CodeIndexOutOfRange     = "index_out_of_range"
	CodeNotFound            = "not_found"
	CodeDuplicate           = "duplicate_wallet"
	CodeNoActiveWallet      = "no_active_wallet"
	CodeNotLoggedIn         = "not_logged_in"
	CodeAlreadyLoggedIn     = "already_logged_in"
	CodeInsufficientBalance = "insufficient_balance"
	CodeInsufficientTokens  = "insufficient_token_balance"
	CodeBatchInProgress     = "batch_in_progress"
	CodeNetwork             = "network_error"
	CodeTransaction         = "transaction_failed"
	CodeInternal            = "internal_error"
)
