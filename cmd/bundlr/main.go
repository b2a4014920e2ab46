// Command bundlr serves the local multi-wallet API.
//
// @title        Bundlr Wallet API
// @version      1.0
// @description  Local multi-wallet Solana service: session unlock, wallet registry, multi-wallet buys and token launches.
// @host         localhost:8080
// @BasePath     /
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	_ "github.com/AlexZinkM/bundlr-wallet/docs"
	"github.com/AlexZinkM/bundlr-wallet/internal/api"
	"github.com/AlexZinkM/bundlr-wallet/internal/batch"
	"github.com/AlexZinkM/bundlr-wallet/internal/client"
	"github.com/AlexZinkM/bundlr-wallet/internal/common"
	"github.com/AlexZinkM/bundlr-wallet/internal/config"
	"github.com/AlexZinkM/bundlr-wallet/internal/crypto"
	"github.com/AlexZinkM/bundlr-wallet/internal/handler"
	"github.com/AlexZinkM/bundlr-wallet/internal/log"
	"github.com/AlexZinkM/bundlr-wallet/internal/notify"
	"github.com/AlexZinkM/bundlr-wallet/internal/session"
	"github.com/AlexZinkM/bundlr-wallet/internal/store"
	usecase "github.com/AlexZinkM/bundlr-wallet/solana"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Logger.Fatal().Err(err).Msg("Service stopped")
	}
}

func run() error {
	// .env is optional
	_ = godotenv.Load()

	if err := config.Init(); err != nil {
		return err
	}
	cfg := config.Get()
	if err := log.Init(cfg.LogLevel, cfg.LogJSON, cfg.LogFile); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}

	if err := config.PromptForPassword(); err != nil {
		return err
	}
	defer config.ClearPassword()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gwCfg, err := gatewayConfig(cfg)
	if err != nil {
		return err
	}
	gw, err := client.NewSolanaGateway(ctx, cfg.SolanaRPCURL, cfg.SolanaWSURL, gwCfg)
	if err != nil {
		return err
	}
	defer gw.Close()

	st, err := store.Open(ctx, store.Options{
		Backend:     cfg.StoreBackend,
		Path:        cfg.StorePath,
		PostgresDSN: cfg.PostgresDSN,
	})
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	sess := session.New(st, crypto.DefaultParams())

	delay := cfg.BatchDelay
	if delay == 0 {
		delay = -1 // no pause between wallets
	}
	exec := batch.NewExecutor(gw, batch.Config{Delay: delay, CallTimeout: cfg.GatewayTimeout})
	feed := notify.NewFeed(notify.DefaultCapacity)
	exec.SetNotifier(feed)

	priorityFee, err := common.ParseAmount(cfg.DefaultPriorityFee)
	if err != nil {
		return fmt.Errorf("invalid DEFAULT_PRIORITY_FEE: %w", err)
	}
	svc := usecase.NewService(sess, gw, exec, st, client.NewCoinGeckoClient(cfg.PriceAPIURL), feed, usecase.Defaults{
		PriorityFee:    priorityFee,
		MultiBuyJitter: batch.Jitter{Min: cfg.MultiBuyJitterMin, Max: cfg.MultiBuyJitterMax},
		SeedBuyJitter:  batch.Jitter{Min: cfg.SeedBuyJitterMin, Max: cfg.SeedBuyJitterMax},
	})

	password, err := config.GetPasswordBytes()
	if err != nil {
		return err
	}
	login, err := svc.Login(ctx, password)
	clear(password)
	if err != nil {
		return fmt.Errorf("failed to unlock store: %w", err)
	}
	log.Logger.Info().Int("restored", login.Restored).Int("skipped", len(login.Skipped)).Msg("Session unlocked")

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.SetupRouter(handler.NewSolanaHandler(svc)),
		ReadHeaderTimeout: 10 * time.Second,
		// a signal cancels running batches between wallets
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Logger.Info().Str("addr", srv.Addr).Msg("Listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		lockSession(context.Background(), sess)
		return err
	case <-ctx.Done():
	}

	log.Logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)

	// a cancelled batch stops after its in-flight call
	lockCtx, cancelLock := context.WithTimeout(context.Background(), cfg.GatewayTimeout+shutdownTimeout)
	defer cancelLock()
	lockSession(lockCtx, sess)
	return err
}

// lockSession wipes the session keys once no batch is running.
func lockSession(ctx context.Context, sess *session.Session) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		err := sess.Logout()
		if err == nil {
			return
		}
		if !errors.Is(err, batch.ErrBatchInProgress) {
			log.Logger.Error().Err(err).Msg("Failed to lock session")
			return
		}
		select {
		case <-ctx.Done():
			log.Logger.Warn().Msg("Batch still running at exit, session not locked")
			return
		case <-ticker.C:
		}
	}
}

func gatewayConfig(cfg *config.Config) (client.GatewayConfig, error) {
	gc := client.GatewayConfig{
		ComputeUnitLimit: cfg.ComputeUnitLimit,
		ConfirmTimeout:   cfg.GatewayTimeout,
	}
	for _, s := range cfg.JitoTipAccounts {
		pk, err := solana.PublicKeyFromBase58(s)
		if err != nil {
			return gc, fmt.Errorf("invalid JITO_TIP_ACCOUNTS entry %q: %w", s, err)
		}
		gc.TipAccounts = append(gc.TipAccounts, pk)
	}
	if cfg.BuyTreasury != "" {
		pk, err := solana.PublicKeyFromBase58(cfg.BuyTreasury)
		if err != nil {
			return gc, fmt.Errorf("invalid BUY_TREASURY: %w", err)
		}
		gc.Treasury = pk
	}

	var err error
	if gc.TokensPerSOL, err = decimal.NewFromString(cfg.TokensPerSOL); err != nil {
		return gc, fmt.Errorf("invalid TOKENS_PER_SOL: %w", err)
	}
	if gc.MinLaunchBalance, err = common.SOLToLamports(cfg.MinLaunchBalance); err != nil {
		return gc, fmt.Errorf("invalid MIN_LAUNCH_BALANCE: %w", err)
	}
	return gc, nil
}
