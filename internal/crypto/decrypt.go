package crypto

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrInvalidPassword is returned when the ciphertext does not authenticate
var ErrInvalidPassword = errors.New("invalid password")

// Open decrypts a sealed secret.
// Caller owns the returned slice and should zero it after use.
func Open(sealed *Sealed, password []byte) ([]byte, error) {
	if sealed == nil {
		return nil, errors.New("sealed secret is nil")
	}

	salt, err := base64.StdEncoding.DecodeString(sealed.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}

	nonce, err := base64.StdEncoding.DecodeString(sealed.Nonce)
	if err != nil {
		return nil, fmt.Errorf("failed to decode nonce: %w", err)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(sealed.CipherText)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	params := sealed.Params
	if params.N == 0 {
		params = DefaultParams()
	}

	aesGCM, err := newGCM(password, salt, params)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aesGCM.NonceSize() {
		return nil, fmt.Errorf("invalid nonce length %d", len(nonce))
	}

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrInvalidPassword
	}
	return plaintext, nil
}

// Reseal decrypts with oldPassword and encrypts again with newPassword.
func Reseal(sealed *Sealed, oldPassword, newPassword []byte, params Params) (*Sealed, error) {
	plaintext, err := Open(sealed, oldPassword)
	if err != nil {
		return nil, err
	}
	defer clear(plaintext)

	return Seal(plaintext, newPassword, params)
}
