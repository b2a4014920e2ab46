package api

import (
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/AlexZinkM/bundlr-wallet/internal/handler"
	"github.com/AlexZinkM/bundlr-wallet/internal/log"
)

// SetupRouter sets up router with handlers
func SetupRouter(h *handler.SolanaHandler) http.Handler {
	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Session
	mux.HandleFunc("POST /session/login", h.Login)
	mux.HandleFunc("POST /session/logout", h.Logout)

	// Wallets
	mux.HandleFunc("GET /wallets", h.ListWallets)
	mux.HandleFunc("POST /wallets", h.ImportWallet)
	mux.HandleFunc("POST /wallets/generate", h.Generate)
	mux.HandleFunc("POST /wallets/active", h.SwitchActive)
	mux.HandleFunc("POST /wallets/refresh", h.RefreshAll)
	mux.HandleFunc("GET /wallets/{id}", h.GetWallet)
	mux.HandleFunc("DELETE /wallets/{id}", h.RemoveWallet)
	mux.HandleFunc("POST /wallets/{id}/refresh", h.RefreshWallet)
	mux.HandleFunc("POST /wallets/{id}/remember", h.RememberWallet)
	mux.HandleFunc("GET /wallets/{id}/tokens", h.TokenHoldings)

	// Trading
	mux.HandleFunc("POST /trade/buy", h.Buy)
	mux.HandleFunc("POST /trade/buy-all", h.BuyAll)
	mux.HandleFunc("POST /trade/sell", h.Sell)

	// Tokens
	mux.HandleFunc("POST /tokens/launch", h.LaunchToken)
	mux.HandleFunc("GET /tokens/launched", h.LaunchedTokens)

	mux.HandleFunc("GET /events", h.Events)

	return accessLog(mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// accessLog logs one line per request. Bodies are never logged.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		ev := log.API.Info()
		if rec.status >= http.StatusInternalServerError {
			ev = log.API.Error()
		}
		ev.Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("Request")
	})
}
