package session

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/bundlr-wallet/internal/crypto"
	"github.com/AlexZinkM/bundlr-wallet/internal/store"
	"github.com/AlexZinkM/bundlr-wallet/internal/wallet"
)

func fastParams() crypto.Params {
	return crypto.Params{N: 1 << 10, R: 8, P: 1}
}

var password = []byte("correct horse")

func newLoggedIn(t *testing.T, st store.Store) *Session {
	t.Helper()
	s := New(st, fastParams())
	_, err := s.Login(context.Background(), password)
	require.NoError(t, err)
	return s
}

func rawKey() (string, solana.PublicKey) {
	k := solana.NewWallet().PrivateKey
	return k.String(), k.PublicKey()
}

type failingStore struct {
	store.Store
	saveErr   error
	deleteErr error
}

func (f *failingStore) SaveWalletRecord(ctx context.Context, rec store.WalletRecord) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	return f.Store.SaveWalletRecord(ctx, rec)
}

func (f *failingStore) DeleteWalletRecord(ctx context.Context, id string) (bool, error) {
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	return f.Store.DeleteWalletRecord(ctx, id)
}

func TestImportRequiresLogin(t *testing.T) {
	s := New(store.NewKVStore(store.NewMemory()), fastParams())
	raw, _ := rawKey()

	_, err := s.ImportWallet(context.Background(), raw, "", true)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.Equal(t, 0, s.Registry().Len())
}

func TestLogin_Twice(t *testing.T) {
	s := newLoggedIn(t, store.NewKVStore(store.NewMemory()))
	_, err := s.Login(context.Background(), password)
	assert.ErrorIs(t, err, ErrAlreadyLoggedIn)
}

func TestLogin_EmptyPassword(t *testing.T) {
	s := New(store.NewKVStore(store.NewMemory()), fastParams())
	_, err := s.Login(context.Background(), nil)
	assert.Error(t, err)
	assert.False(t, s.LoggedIn())
}

func TestImportRememberAndRestore(t *testing.T) {
	ctx := context.Background()
	st := store.NewKVStore(store.NewMemory())
	s := newLoggedIn(t, st)

	raw1, addr1 := rawKey()
	raw2, _ := rawKey()
	w1, err := s.ImportWallet(ctx, raw1, "main", true)
	require.NoError(t, err)
	_, err = s.ImportWallet(ctx, raw2, "", false)
	require.NoError(t, err)

	assert.True(t, s.Persisted(w1.ID()))
	assert.Equal(t, 2, s.Registry().Len())

	recs, err := st.LoadAllWalletRecords(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, addr1.String(), recs[0].Address)
	assert.NotContains(t, recs[0].EncryptedKey.CipherText, raw1)

	require.NoError(t, s.Logout())
	assert.False(t, s.LoggedIn())
	assert.Equal(t, 0, s.Registry().Len())

	report, err := s.Login(ctx, password)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Restored)
	assert.Empty(t, report.Skipped)

	restored, ok := s.Registry().Get(w1.ID())
	require.True(t, ok)
	assert.Equal(t, addr1, restored.Address())
	assert.Equal(t, "main", restored.Name())
	assert.Equal(t, wallet.NoActive, s.Registry().ActiveIndex())
}

func TestLogin_SkipsUndecryptable(t *testing.T) {
	ctx := context.Background()
	st := store.NewKVStore(store.NewMemory())

	s := newLoggedIn(t, st)
	raw, _ := rawKey()
	_, err := s.ImportWallet(ctx, raw, "", true)
	require.NoError(t, err)
	require.NoError(t, s.Logout())

	// a record sealed under another password
	other := New(st, fastParams())
	_, err = other.Login(ctx, []byte("other password"))
	require.NoError(t, err)
	raw2, _ := rawKey()
	_, err = other.ImportWallet(ctx, raw2, "", true)
	require.NoError(t, err)
	require.NoError(t, other.Logout())

	report, err := s.Login(ctx, password)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Restored)
	require.Len(t, report.Skipped, 1)
	assert.Contains(t, report.Skipped[0].Reason, "decrypt")
	assert.Equal(t, 1, s.Registry().Len())
}

func TestImport_DuplicateAddress(t *testing.T) {
	ctx := context.Background()
	s := newLoggedIn(t, store.NewKVStore(store.NewMemory()))
	raw, _ := rawKey()

	_, err := s.ImportWallet(ctx, raw, "", true)
	require.NoError(t, err)
	_, err = s.ImportWallet(ctx, raw, "", true)
	assert.ErrorIs(t, err, wallet.ErrDuplicateWallet)
	assert.Equal(t, 1, s.Registry().Len())
}

func TestImport_InvalidKey(t *testing.T) {
	s := newLoggedIn(t, store.NewKVStore(store.NewMemory()))
	_, err := s.ImportWallet(context.Background(), "not a key", "", true)
	assert.ErrorIs(t, err, wallet.ErrInvalidKeyFormat)
}

func TestImport_SaveFailureRollsBack(t *testing.T) {
	st := &failingStore{Store: store.NewKVStore(store.NewMemory()), saveErr: errors.New("disk full")}
	s := newLoggedIn(t, st)
	raw, _ := rawKey()

	_, err := s.ImportWallet(context.Background(), raw, "", true)
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, 0, s.Registry().Len())
}

func TestGenerateWallet(t *testing.T) {
	ctx := context.Background()
	st := store.NewKVStore(store.NewMemory())
	s := newLoggedIn(t, st)

	w, err := s.GenerateWallet(ctx, "fresh", true)
	require.NoError(t, err)
	assert.Equal(t, "fresh", w.Name())

	recs, err := st.LoadAllWalletRecords(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, w.Address().String(), recs[0].Address)
}

func TestRememberWallet(t *testing.T) {
	ctx := context.Background()
	st := store.NewKVStore(store.NewMemory())
	s := newLoggedIn(t, st)
	raw, _ := rawKey()

	w, err := s.ImportWallet(ctx, raw, "", false)
	require.NoError(t, err)
	assert.False(t, s.Persisted(w.ID()))

	require.NoError(t, s.RememberWallet(ctx, w.ID()))
	assert.True(t, s.Persisted(w.ID()))
	require.NoError(t, s.RememberWallet(ctx, w.ID()))

	recs, err := st.LoadAllWalletRecords(ctx)
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	assert.ErrorIs(t, s.RememberWallet(ctx, "missing"), wallet.ErrWalletNotFound)
}

func TestRemoveWallet(t *testing.T) {
	ctx := context.Background()
	st := store.NewKVStore(store.NewMemory())
	s := newLoggedIn(t, st)

	raw1, _ := rawKey()
	raw2, _ := rawKey()
	w1, err := s.ImportWallet(ctx, raw1, "", true)
	require.NoError(t, err)
	w2, err := s.ImportWallet(ctx, raw2, "", false)
	require.NoError(t, err)
	_, err = s.Registry().SwitchActive(0)
	require.NoError(t, err)

	require.NoError(t, s.RemoveWallet(ctx, w1.ID()))
	assert.Equal(t, 0, s.Registry().ActiveIndex())
	active, ok := s.Registry().Active()
	require.True(t, ok)
	assert.Equal(t, w2.ID(), active.ID())

	recs, err := st.LoadAllWalletRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, recs)

	require.NoError(t, s.RemoveWallet(ctx, w2.ID()))
	assert.Equal(t, wallet.NoActive, s.Registry().ActiveIndex())

	assert.ErrorIs(t, s.RemoveWallet(ctx, "missing"), wallet.ErrWalletNotFound)
}

func TestRemoveWallet_StoreFailure(t *testing.T) {
	ctx := context.Background()
	st := &failingStore{Store: store.NewKVStore(store.NewMemory())}
	s := newLoggedIn(t, st)
	raw, _ := rawKey()

	w, err := s.ImportWallet(ctx, raw, "", true)
	require.NoError(t, err)

	st.deleteErr = errors.New("connection reset")
	err = s.RemoveWallet(ctx, w.ID())
	assert.ErrorContains(t, err, "connection reset")
	assert.Equal(t, 0, s.Registry().Len())
}

func TestLogout_WipesKeys(t *testing.T) {
	s := newLoggedIn(t, store.NewKVStore(store.NewMemory()))
	raw, _ := rawKey()
	w, err := s.ImportWallet(context.Background(), raw, "", false)
	require.NoError(t, err)

	require.NoError(t, s.Logout())
	assert.Equal(t, make(solana.PrivateKey, 64), w.PrivateKey())
}
