package handler

import (
	"net/http"
	"strconv"

	"github.com/AlexZinkM/bundlr-wallet/internal/config"
	"github.com/AlexZinkM/bundlr-wallet/internal/model"
)

const defaultEventLimit = 50

// Login handles POST /session/login
// @Summary      Unlock session
// @Description  Restores stored wallets with the password. An empty password uses the one entered at startup.
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        request  body      model.LoginRequest  false  "Password"
// @Success      200      {object}  model.LoginResponse
// @Failure      409      {object}  model.ErrorResponse
// @Router       /session/login [post]
func (h *SolanaHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	var passwordBytes []byte
	if req.Password != "" {
		passwordBytes = []byte(req.Password)
	} else {
		var err error
		passwordBytes, err = config.GetPasswordBytes()
		if err != nil {
			writeBadRequest(w, err)
			return
		}
	}
	defer clear(passwordBytes) // Always clear password from memory

	resp, err := h.svc.Login(r.Context(), passwordBytes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Logout handles POST /session/logout
// @Summary      Lock session
// @Description  Wipes every key held in memory
// @Tags         session
// @Produce      json
// @Success      200  {object}  model.StatusResponse
// @Failure      409  {object}  model.ErrorResponse
// @Router       /session/logout [post]
func (h *SolanaHandler) Logout(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.Logout()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Events handles GET /events
// @Summary      Recent batch events
// @Description  Returns recent batch notifications, newest first
// @Tags         events
// @Produce      json
// @Param        limit  query     int  false  "Maximum number of events"  default(50)
// @Success      200    {object}  model.EventsResponse
// @Router       /events [get]
func (h *SolanaHandler) Events(w http.ResponseWriter, r *http.Request) {
	limit := defaultEventLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "limit must be a positive integer", Code: model.CodeBadRequest})
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, h.svc.Events(limit))
}
