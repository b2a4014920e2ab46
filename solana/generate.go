package solana

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"

	"github.com/AlexZinkM/bundlr-wallet/internal/model"
)

// GenerateWallet creates a new keypair in the session and, when remember is
// set, saves it sealed with the session password.
func (s *Service) GenerateWallet(ctx context.Context, name string, remember bool) (*model.GenerateResponse, error) {
	reg, err := s.registry()
	if err != nil {
		return nil, err
	}

	w, err := s.session.GenerateWallet(ctx, name, remember)
	if err != nil {
		return nil, err
	}

	address := w.Address().String()
	qrCode, err := generateQRCode(address)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	return &model.GenerateResponse{
		Success: true,
		Message: "Wallet generated successfully",
		Wallet:  s.walletView(w, activeID(reg)),
		QR:      qrCode,
	}, nil
}

// generateQRCode generates QR code of address in base64
func generateQRCode(address string) (string, error) {
	qr, err := qrcode.New(address, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}

	// Get PNG image
	png, err := qr.PNG(256)
	if err != nil {
		return "", fmt.Errorf("failed to generate PNG: %w", err)
	}

	return base64.StdEncoding.EncodeToString(png), nil
}
