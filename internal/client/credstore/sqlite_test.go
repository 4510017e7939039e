package credstore

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupStore(t *testing.T) (*SQLiteStore, *sql.DB) {
	t.Helper()
	db, err := InitDatabase(context.Background(), "file:credstore?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`DELETE FROM credentials`)
	require.NoError(t, err)

	return NewSQLiteStore(db, []byte("device-secret")), db
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	s, _ := setupStore(t)

	v, err := s.Get(context.Background(), "auth_tokens")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestSQLiteStore_SetGetRoundTrip(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	payload := []byte(`{"access_token":"a","refresh_token":"r","expires_in":900}`)
	require.NoError(t, s.Set(ctx, "auth_tokens", payload))

	got, err := s.Get(ctx, "auth_tokens")
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestSQLiteStore_SetOverwrites(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("one")))
	require.NoError(t, s.Set(ctx, "k", []byte("two")))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("two"), got)
}

func TestSQLiteStore_Delete(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v")))
	require.NoError(t, s.Delete(ctx, "k"))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Nil(t, got)

	// deleting an absent key is not an error
	require.NoError(t, s.Delete(ctx, "k"))
}

func TestSQLiteStore_ValuesAreEncryptedAtRest(t *testing.T) {
	s, db := setupStore(t)
	ctx := context.Background()

	plain := []byte("super-secret-refresh-token")
	require.NoError(t, s.Set(ctx, "k", plain))

	var raw []byte
	require.NoError(t, db.QueryRow(`SELECT value FROM credentials WHERE key='k'`).Scan(&raw))
	require.NotContains(t, string(raw), string(plain))
}

func TestSQLiteStore_WrongSecretCannotRead(t *testing.T) {
	s, db := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v")))

	other := NewSQLiteStore(db, []byte("different-secret"))
	_, err := other.Get(ctx, "k")
	require.Error(t, err)
}
