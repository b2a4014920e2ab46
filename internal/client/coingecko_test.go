package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSOLUSDPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "solana", r.URL.Query().Get("ids"))
		w.Write([]byte(`{"solana":{"usd":142.37}}`))
	}))
	defer srv.Close()

	rate, err := NewCoinGeckoClient(srv.URL).GetSOLUSDPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "142.37", rate.String())
}

func TestGetSOLUSDPrice_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewCoinGeckoClient(srv.URL).GetSOLUSDPrice(context.Background())
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestGetSOLUSDPrice_MissingQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := NewCoinGeckoClient(srv.URL).GetSOLUSDPrice(context.Background())
	assert.Error(t, err)
}
