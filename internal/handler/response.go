package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/AlexZinkM/bundlr-wallet/internal/batch"
	"github.com/AlexZinkM/bundlr-wallet/internal/client"
	"github.com/AlexZinkM/bundlr-wallet/internal/log"
	"github.com/AlexZinkM/bundlr-wallet/internal/model"
	"github.com/AlexZinkM/bundlr-wallet/internal/session"
	"github.com/AlexZinkM/bundlr-wallet/internal/wallet"
)

// errorStatus maps a sentinel error to its HTTP status and API code.
var errorStatus = []struct {
	err    error
	status int
	code   string
}{
	{session.ErrNotLoggedIn, http.StatusUnauthorized, model.CodeNotLoggedIn},
	{session.ErrAlreadyLoggedIn, http.StatusConflict, model.CodeAlreadyLoggedIn},
	{wallet.ErrInvalidKeyFormat, http.StatusBadRequest, model.CodeInvalidKey},
	{wallet.ErrIndexOutOfRange, http.StatusBadRequest, model.CodeIndexOutOfRange},
	{wallet.ErrWalletNotFound, http.StatusNotFound, model.CodeNotFound},
	{wallet.ErrDuplicateWallet, http.StatusConflict, model.CodeDuplicate},
	{wallet.ErrNoActiveWallet, http.StatusBadRequest, model.CodeNoActiveWallet},
	{client.ErrInvalidAddress, http.StatusBadRequest, model.CodeInvalidAddress},
	{client.ErrInvalidAmount, http.StatusBadRequest, model.CodeInvalidAmount},
	{client.ErrInvalidToken, http.StatusBadRequest, model.CodeInvalidToken},
	{client.ErrInsufficientBalance, http.StatusBadRequest, model.CodeInsufficientBalance},
	{client.ErrInsufficientTokenBalance, http.StatusBadRequest, model.CodeInsufficientTokens},
	{batch.ErrInvalidOperation, http.StatusBadRequest, model.CodeBadRequest},
	{batch.ErrNoWallets, http.StatusBadRequest, model.CodeBadRequest},
	{batch.ErrBatchInProgress, http.StatusConflict, model.CodeBatchInProgress},
	{client.ErrNetwork, http.StatusBadGateway, model.CodeNetwork},
	{client.ErrTransaction, http.StatusBadGateway, model.CodeTransaction},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.API.Debug().Err(err).Msg("Failed to write response")
	}
}

// writeError writes err as an ErrorResponse with the status of the first matching sentinel.
func writeError(w http.ResponseWriter, err error) {
	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			writeJSON(w, m.status, model.ErrorResponse{Error: err.Error(), Code: m.code})
			return
		}
	}
	log.API.Error().Err(err).Msg("Request failed")
	writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: err.Error(), Code: model.CodeInternal})
}

func writeBadRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error(), Code: model.CodeBadRequest})
}

// decode reads a JSON body into v. An empty body leaves v unchanged.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
