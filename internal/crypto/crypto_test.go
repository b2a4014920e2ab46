package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastParams keeps scrypt cheap in tests.
func fastParams() Params {
	return Params{N: 1 << 10, R: 8, P: 1}
}

func TestSealOpen_RoundTrip(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")
	sealed, err := Seal(secret, []byte("hunter2"), fastParams())
	require.NoError(t, err)
	assert.NotEmpty(t, sealed.Salt)
	assert.NotEmpty(t, sealed.Nonce)
	assert.NotContains(t, sealed.CipherText, string(secret))

	plain, err := Open(sealed, []byte("hunter2"))
	require.NoError(t, err)
	assert.Equal(t, secret, plain)
}

func TestOpen_WrongPassword(t *testing.T) {
	sealed, err := Seal([]byte("secret"), []byte("right"), fastParams())
	require.NoError(t, err)

	_, err = Open(sealed, []byte("wrong"))
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestSeal_FreshSaltAndNonce(t *testing.T) {
	a, err := Seal([]byte("secret"), []byte("pw"), fastParams())
	require.NoError(t, err)
	b, err := Seal([]byte("secret"), []byte("pw"), fastParams())
	require.NoError(t, err)

	assert.NotEqual(t, a.Salt, b.Salt)
	assert.NotEqual(t, a.Nonce, b.Nonce)
	assert.NotEqual(t, a.CipherText, b.CipherText)
}

func TestSeal_EmptyPassword(t *testing.T) {
	_, err := Seal([]byte("secret"), nil, fastParams())
	assert.Error(t, err)
}

func TestOpen_Corrupted(t *testing.T) {
	sealed, err := Seal([]byte("secret"), []byte("pw"), fastParams())
	require.NoError(t, err)

	bad := *sealed
	bad.Salt = "%%%"
	_, err = Open(&bad, []byte("pw"))
	assert.Error(t, err)

	_, err = Open(nil, []byte("pw"))
	assert.Error(t, err)
}

func TestReseal(t *testing.T) {
	sealed, err := Seal([]byte("secret"), []byte("old"), fastParams())
	require.NoError(t, err)

	resealed, err := Reseal(sealed, []byte("old"), []byte("new"), fastParams())
	require.NoError(t, err)

	_, err = Open(resealed, []byte("old"))
	assert.ErrorIs(t, err, ErrInvalidPassword)

	plain, err := Open(resealed, []byte("new"))
	require.NoError(t, err)
	assert.Equal(t, []byte("secret"), plain)
}
