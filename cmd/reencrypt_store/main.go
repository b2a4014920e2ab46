// One-off: re-encrypt every stored wallet key under a new password. Salt and nonce are regenerated.
// Usage: go run ./cmd/reencrypt_store (reads STORE_BACKEND, STORE_PATH, POSTGRES_DSN)
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/AlexZinkM/bundlr-wallet/internal/config"
	"github.com/AlexZinkM/bundlr-wallet/internal/crypto"
	"github.com/AlexZinkM/bundlr-wallet/internal/store"
)

func main() {
	_ = godotenv.Load()
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if err := config.Init(); err != nil {
		return err
	}
	cfg := config.Get()

	oldPassword, err := prompt("Current password: ")
	if err != nil {
		return err
	}
	defer clear(oldPassword)
	newPassword, err := prompt("New password: ")
	if err != nil {
		return err
	}
	defer clear(newPassword)
	confirm, err := prompt("Repeat new password: ")
	if err != nil {
		return err
	}
	match := string(confirm) == string(newPassword)
	clear(confirm)
	if !match {
		return errors.New("new passwords do not match")
	}

	st, err := store.Open(ctx, store.Options{
		Backend:     cfg.StoreBackend,
		Path:        cfg.StorePath,
		PostgresDSN: cfg.PostgresDSN,
	})
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	records, err := st.LoadAllWalletRecords(ctx)
	if err != nil {
		return err
	}

	// decrypt everything first so a wrong password changes nothing
	resealed := make([]store.WalletRecord, 0, len(records))
	for _, rec := range records {
		sealed, err := crypto.Reseal(&rec.EncryptedKey, oldPassword, newPassword, crypto.DefaultParams())
		if err != nil {
			return fmt.Errorf("wallet %s (%s): %w", rec.ID, rec.Address, err)
		}
		rec.EncryptedKey = *sealed
		resealed = append(resealed, rec)
	}

	for _, rec := range resealed {
		if _, err := st.SaveWalletRecord(ctx, rec); err != nil {
			return fmt.Errorf("failed to save wallet %s: %w", rec.ID, err)
		}
	}
	fmt.Printf("re-encrypted %d wallet(s)\n", len(resealed))
	return nil
}

func prompt(label string) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.New("stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, label)
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("password cannot be empty")
	}
	return raw, nil
}
