package wallet

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

const keyLen = ed25519.PrivateKeySize // 64 bytes: 32-byte seed + 32-byte public key

var (
	base58Shape    = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{43,88}$`)
	listDelimiters = regexp.MustCompile(`[\[\],\s]+`)
)

// keyParser tries one encoding. matched reports whether the input belongs to
// this encoding; once matched, err is final and later parsers are not tried.
type keyParser func(raw string) (key []byte, matched bool, err error)

var keyParsers = []keyParser{
	parseBase58Key,
	parseJSONKey,
	parseDelimitedKey,
}

// ParsePrivateKey decodes a 64-byte signing key from base58, a JSON byte array,
// or a whitespace/comma separated byte list, and checks the keypair is consistent.
func ParsePrivateKey(raw string) (solana.PrivateKey, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidKeyFormat)
	}

	for _, parse := range keyParsers {
		key, matched, err := parse(s)
		if !matched {
			continue
		}
		if err != nil {
			return nil, err
		}
		if err := checkKeypair(key); err != nil {
			clear(key)
			return nil, err
		}
		return solana.PrivateKey(key), nil
	}
	return nil, fmt.Errorf("%w: expected base58 string or array of %d numbers", ErrInvalidKeyFormat, keyLen)
}

func parseBase58Key(s string) ([]byte, bool, error) {
	if !base58Shape.MatchString(s) {
		return nil, false, nil
	}
	b, err := base58.Decode(s)
	if err != nil {
		return nil, true, fmt.Errorf("%w: bad base58", ErrInvalidKeyFormat)
	}
	if len(b) != keyLen {
		clear(b)
		return nil, true, fmt.Errorf("%w: base58 key decodes to %d bytes, want %d", ErrInvalidKeyFormat, len(b), keyLen)
	}
	return b, true, nil
}

func parseJSONKey(s string) ([]byte, bool, error) {
	if !strings.HasPrefix(s, "[") {
		return nil, false, nil
	}
	var nums []int
	if err := json.Unmarshal([]byte(s), &nums); err != nil {
		return nil, false, nil
	}
	if len(nums) != keyLen {
		return nil, false, nil
	}
	b := make([]byte, keyLen)
	for i, n := range nums {
		if n < 0 || n > 255 {
			clear(b)
			return nil, false, nil
		}
		b[i] = byte(n)
	}
	clear(nums)
	return b, true, nil
}

func parseDelimitedKey(s string) ([]byte, bool, error) {
	fields := strings.Fields(listDelimiters.ReplaceAllString(s, " "))
	if len(fields) != keyLen {
		return nil, false, nil
	}
	b := make([]byte, keyLen)
	for i, f := range fields {
		n, err := strconv.ParseUint(f, 10, 8)
		if err != nil {
			clear(b)
			return nil, true, fmt.Errorf("%w: element %d is not a byte", ErrInvalidKeyFormat, i)
		}
		b[i] = byte(n)
	}
	return b, true, nil
}

func checkKeypair(b []byte) error {
	derived := ed25519.NewKeyFromSeed(b[:ed25519.SeedSize])
	defer clear(derived)
	if !bytes.Equal(derived[ed25519.SeedSize:], b[ed25519.SeedSize:]) {
		return fmt.Errorf("%w: public key half does not match seed", ErrInvalidKeyFormat)
	}
	return nil
}
