package handler

import (
	"net/http"

	"github.com/AlexZinkM/bundlr-wallet/internal/model"
)

// Buy handles POST /trade/buy
// @Summary      Buy with the active wallet
// @Description  Runs a single-wallet buy of the given SOL amount. Fails if the buy fails.
// @Tags         trade
// @Accept       json
// @Produce      json
// @Param        request  body      model.BuyRequest  true  "Token and SOL amount"
// @Success      200      {object}  model.BatchResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      409      {object}  model.ErrorResponse
// @Router       /trade/buy [post]
func (h *SolanaHandler) Buy(w http.ResponseWriter, r *http.Request) {
	var req model.BuyRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	resp, err := h.svc.Buy(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// BuyAll handles POST /trade/buy-all
// @Summary      Buy with all wallets
// @Description  Runs the buy sequentially for every wallet with a jittered amount per wallet.
// @Description  Per-wallet failures are reported in outcomes; success is true if any wallet succeeded.
// @Tags         trade
// @Accept       json
// @Produce      json
// @Param        request  body      model.BuyRequest  true  "Token, base SOL amount and optional jitter"
// @Success      200      {object}  model.BatchResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      409      {object}  model.ErrorResponse
// @Router       /trade/buy-all [post]
func (h *SolanaHandler) BuyAll(w http.ResponseWriter, r *http.Request) {
	var req model.BuyRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	resp, err := h.svc.BuyAll(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Sell handles POST /trade/sell
// @Summary      Send tokens
// @Description  Transfers SPL tokens from the active wallet to the specified address
// @Tags         trade
// @Accept       json
// @Produce      json
// @Param        request  body      model.SellRequest  true  "Transfer data"
// @Success      200      {object}  model.SellResponse
// @Failure      400      {object}  model.ErrorResponse
// @Router       /trade/sell [post]
func (h *SolanaHandler) Sell(w http.ResponseWriter, r *http.Request) {
	var req model.SellRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	resp, err := h.svc.Sell(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
