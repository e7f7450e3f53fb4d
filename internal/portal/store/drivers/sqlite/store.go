package sqlite

import (
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/estudiopampa/portal/internal/portal/store"
	"github.com/estudiopampa/portal/pkg/cryptox"

	_ "modernc.org/sqlite"
)

// Store persists session state in a single-file SQLite database. The
// refresh token is sealed at rest when a Sealer is supplied; the access
// token and cached user profile are stored in the clear (short-lived,
// non-secret).
type Store struct {
	db     *sql.DB
	sealer *cryptox.Sealer
}

func NewStore(path string, sealer *cryptox.Sealer) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("sqlite: create state directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// The CLI is the only writer; a single connection avoids SQLITE_BUSY
	// between the session manager and the transport's refresh path.
	db.SetMaxOpenConns(1)

	return &Store{db: db, sealer: sealer}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM session_kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", err
	}

	if key == store.KeyRefreshToken && s.sealer != nil {
		return s.unseal(value)
	}
	return value, nil
}

func (s *Store) Set(key, value string) error {
	if key == store.KeyRefreshToken && s.sealer != nil {
		sealed, err := s.seal(value)
		if err != nil {
			return err
		}
		value = sealed
	}

	_, err := s.db.Exec(`
		INSERT INTO session_kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value)
	return err
}

func (s *Store) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM session_kv WHERE key = ?`, key)
	return err
}

func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM session_kv`)
	return err
}

func (s *Store) seal(value string) (string, error) {
	sealed, err := s.sealer.Seal([]byte(value))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (s *Store) unseal(value string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return "", fmt.Errorf("sqlite: decode sealed value: %w", err)
	}
	plain, err := s.sealer.Open(sealed)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
