package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

const (
	// scrypt parameters for stored signing keys.
	// N=2^18 needs ~256MB RAM and 0.5-2s per derivation.
	scryptN      = 1 << 18
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
	saltLen      = 32
	nonceLen     = 12
)

// Params are the scrypt cost parameters used to derive the AES key.
type Params struct {
	N int `json:"n"`
	R int `json:"r"`
	P int `json:"p"`
}

// DefaultParams returns the production scrypt parameters
func DefaultParams() Params {
	return Params{N: scryptN, R: scryptR, P: scryptP}
}

// Sealed is an AES-256-GCM encrypted secret. All byte fields are base64.
type Sealed struct {
	Params     Params `json:"kdf"`
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	CipherText string `json:"cipherText"`
}

// Seal encrypts secret with a key derived from password.
// password must be []byte for security (caller should zero it after use)
func Seal(secret, password []byte, params Params) (*Sealed, error) {
	if len(password) == 0 {
		return nil, errors.New("password cannot be empty")
	}

	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	aesGCM, err := newGCM(password, salt, params)
	if err != nil {
		return nil, err
	}

	ciphertext := aesGCM.Seal(nil, nonce, secret, nil)

	return &Sealed{
		Params:     params,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		CipherText: base64.StdEncoding.EncodeToString(ciphertext),
	}, nil
}

func newGCM(password, salt []byte, params Params) (cipher.AEAD, error) {
	key, err := scrypt.Key(password, salt, params.N, params.R, params.P, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}
