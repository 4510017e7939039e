package credstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vahire/vahire/internal/cryptox"
	"github.com/vahire/vahire/internal/dbx"
)

// storageSalt is mixed into the key derivation so two installs with the same
// device secret still derive distinct keys per salt rotation.
var storageSalt = []byte("vahire-credstore-v1")

// SQLiteStore is a Store backed by a local sqlite database. Each value is
// JSON-wrapped and AES-GCM sealed before it touches the disk.
type SQLiteStore struct {
	db  dbx.DBTX
	key []byte
}

// NewSQLiteStore derives the storage key from the device secret and binds the
// store to db. The credentials table must exist (see InitDatabase).
func NewSQLiteStore(db dbx.DBTX, deviceSecret []byte) *SQLiteStore {
	return &SQLiteStore{db: db, key: cryptox.DeriveStorageKey(deviceSecret, storageSalt)}
}

// InitDatabase opens (creating if needed) the client database at path and
// ensures the credentials schema exists.
func InitDatabase(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open client db: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS credentials (
			key   TEXT PRIMARY KEY,
			nonce BLOB NOT NULL,
			value BLOB NOT NULL
		)`)
	if err != nil {
		return nil, fmt.Errorf("failed to init credentials schema: %w", err)
	}

	return db, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var nonce, sealed []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT nonce, value FROM credentials WHERE key = ?`, key).Scan(&nonce, &sealed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credentials[%s]: %w", key, err)
	}

	var value []byte
	if err := cryptox.Open(sealed, nonce, s.key, &value); err != nil {
		return nil, fmt.Errorf("failed to unseal credentials[%s]: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	sealed, nonce, err := cryptox.Seal(value, s.key)
	if err != nil {
		return fmt.Errorf("failed to seal credentials[%s]: %w", key, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO credentials (key, nonce, value) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET nonce = excluded.nonce, value = excluded.value
	`, key, nonce, sealed)
	if err != nil {
		return fmt.Errorf("failed to set credentials[%s]: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM credentials WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete credentials[%s]: %w", key, err)
	}
	return nil
}
