package handler

import (
	"net/http"

	"github.com/AlexZinkM/bundlr-wallet/internal/model"
)

// LaunchToken handles POST /tokens/launch
// @Summary      Launch token
// @Description  Creates a mint with the active wallet, mints the total supply and optionally seed buys from the other wallets
// @Tags         tokens
// @Accept       json
// @Produce      json
// @Param        request  body      model.LaunchRequest  true  "Token details"
// @Success      201      {object}  model.LaunchResponse
// @Failure      400      {object}  model.ErrorResponse
// @Router       /tokens/launch [post]
func (h *SolanaHandler) LaunchToken(w http.ResponseWriter, r *http.Request) {
	var req model.LaunchRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	resp, err := h.svc.LaunchToken(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// LaunchedTokens handles GET /tokens/launched
// @Summary      Launched tokens
// @Tags         tokens
// @Produce      json
// @Success      200  {object}  model.LaunchedTokensResponse
// @Router       /tokens/launched [get]
func (h *SolanaHandler) LaunchedTokens(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.LaunchedTokens(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
