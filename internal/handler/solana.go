package handler

import (
	"net/http"

	"github.com/AlexZinkM/bundlr-wallet/internal/model"
	"github.com/AlexZinkM/bundlr-wallet/solana"
)

// SolanaHandler serves the wallet, trading and launch endpoints.
type SolanaHandler struct {
	svc *solana.Service
}

// NewSolanaHandler creates a SolanaHandler over svc
func NewSolanaHandler(svc *solana.Service) *SolanaHandler {
	return &SolanaHandler{svc: svc}
}

func remember(v *bool) bool {
	return v == nil || *v
}

// ListWallets handles GET /wallets
// @Summary      List wallets
// @Description  Lists session wallets with cached balances, the active index and portfolio value in USD
// @Tags         wallets
// @Produce      json
// @Success      200  {object}  model.WalletsResponse
// @Failure      401  {object}  model.ErrorResponse
// @Router       /wallets [get]
func (h *SolanaHandler) ListWallets(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.ListWallets(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ImportWallet handles POST /wallets
// @Summary      Import wallet
// @Description  Imports a private key (base58, JSON byte array or delimited bytes). The key is saved encrypted unless remember is false.
// @Tags         wallets
// @Accept       json
// @Produce      json
// @Param        request  body      model.ImportWalletRequest  true  "Private key"
// @Success      201      {object}  model.WalletResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      409      {object}  model.ErrorResponse
// @Router       /wallets [post]
func (h *SolanaHandler) ImportWallet(w http.ResponseWriter, r *http.Request) {
	var req model.ImportWalletRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	resp, err := h.svc.ImportWallet(r.Context(), req.PrivateKey, req.Name, remember(req.Remember))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Generate handles POST /wallets/generate
// @Summary      Generate new wallet
// @Description  Generates a new Solana keypair and adds it to the session
// @Tags         wallets
// @Accept       json
// @Produce      json
// @Param        request  body      model.GenerateRequest  false  "Wallet name"
// @Success      201      {object}  model.GenerateResponse
// @Router       /wallets/generate [post]
func (h *SolanaHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req model.GenerateRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	resp, err := h.svc.GenerateWallet(r.Context(), req.Name, remember(req.Remember))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// GetWallet handles GET /wallets/{id}
// @Summary      Get wallet
// @Description  Returns one wallet with a QR code of its address
// @Tags         wallets
// @Produce      json
// @Param        id   path      string  true  "Wallet ID"
// @Success      200  {object}  model.WalletResponse
// @Failure      404  {object}  model.ErrorResponse
// @Router       /wallets/{id} [get]
func (h *SolanaHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.GetWallet(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// RemoveWallet handles DELETE /wallets/{id}
// @Summary      Remove wallet
// @Description  Removes a wallet from the session and the store
// @Tags         wallets
// @Produce      json
// @Param        id   path      string  true  "Wallet ID"
// @Success      200  {object}  model.RemoveWalletResponse
// @Failure      404  {object}  model.ErrorResponse
// @Router       /wallets/{id} [delete]
func (h *SolanaHandler) RemoveWallet(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.RemoveWallet(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// RememberWallet handles POST /wallets/{id}/remember
// @Summary      Save wallet
// @Description  Saves a session-only wallet to the encrypted store
// @Tags         wallets
// @Produce      json
// @Param        id   path      string  true  "Wallet ID"
// @Success      200  {object}  model.WalletResponse
// @Router       /wallets/{id}/remember [post]
func (h *SolanaHandler) RememberWallet(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.RememberWallet(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// SwitchActive handles POST /wallets/active
// @Summary      Switch active wallet
// @Tags         wallets
// @Accept       json
// @Produce      json
// @Param        request  body      model.SwitchActiveRequest  true  "Wallet index"
// @Success      200      {object}  model.WalletResponse
// @Failure      400      {object}  model.ErrorResponse
// @Router       /wallets/active [post]
func (h *SolanaHandler) SwitchActive(w http.ResponseWriter, r *http.Request) {
	var req model.SwitchActiveRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	resp, err := h.svc.SwitchActive(req.Index)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// RefreshWallet handles POST /wallets/{id}/refresh
// @Summary      Refresh wallet balance
// @Tags         wallets
// @Produce      json
// @Param        id   path      string  true  "Wallet ID"
// @Success      200  {object}  model.WalletResponse
// @Failure      502  {object}  model.ErrorResponse
// @Router       /wallets/{id}/refresh [post]
func (h *SolanaHandler) RefreshWallet(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.RefreshWallet(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// RefreshAll handles POST /wallets/refresh
// @Summary      Refresh all balances
// @Tags         wallets
// @Produce      json
// @Success      200  {object}  model.RefreshResponse
// @Router       /wallets/refresh [post]
func (h *SolanaHandler) RefreshAll(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.RefreshAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// TokenHoldings handles GET /wallets/{id}/tokens
// @Summary      Token holdings
// @Description  Lists the SPL token accounts owned by a wallet
// @Tags         wallets
// @Produce      json
// @Param        id   path      string  true  "Wallet ID"
// @Success      200  {object}  model.HoldingsResponse
// @Router       /wallets/{id}/tokens [get]
func (h *SolanaHandler) TokenHoldings(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.TokenHoldings(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
