package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// schema holds the single-row session table. The id=1 check makes the
// row a key-value slot: Save is always a full replacement of that slot.
const schema = `
CREATE TABLE IF NOT EXISTS session (
	id            INTEGER PRIMARY KEY CHECK (id = 1),
	access_token  TEXT NOT NULL,
	refresh_token TEXT NOT NULL,
	principal     TEXT NOT NULL,
	expires_at    TEXT NOT NULL,
	entitlements  TEXT NOT NULL
);`

type sessionRow struct {
	AccessToken  string `db:"access_token"`
	RefreshToken string `db:"refresh_token"`
	Principal    string `db:"principal"`
	ExpiresAt    string `db:"expires_at"`
	Entitlements string `db:"entitlements"`
}

// SQLiteStore persists the session in a local SQLite database, the
// durable key-value storage of the client host.
type SQLiteStore struct {
	db      *sqlx.DB
	mu      sync.Mutex
	onClear SignOutFunc
}

// NewSQLiteStore opens (creating if needed) the session database at the
// given file path and ensures the schema exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sqlx.Connect("sqlite", fmt.Sprintf("%s?_journal=WAL&_timeout=5000", path))
	if err != nil {
		return nil, fmt.Errorf("connecting to session db: %w", err)
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating session table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close terminates the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing session store: %w", err)
	}
	return nil
}

// OnSignOut registers the hook fired by Clear. Passing nil removes it.
func (s *SQLiteStore) OnSignOut(fn SignOutFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClear = fn
}

// Load implements Store. Missing or malformed rows yield the zero
// session so a corrupted file never locks the user out of signing in.
func (s *SQLiteStore) Load(ctx context.Context) (Session, error) {
	var row sessionRow
	query := `SELECT access_token, refresh_token, principal, expires_at, entitlements FROM session WHERE id = 1`
	if err := s.db.GetContext(ctx, &row, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, nil
		}
		return Session{}, fmt.Errorf("loading session: %w", err)
	}

	sess := Session{
		AccessToken:  row.AccessToken,
		RefreshToken: row.RefreshToken,
	}

	if err := json.Unmarshal([]byte(row.Principal), &sess.Principal); err != nil {
		return Session{}, nil
	}
	if row.Entitlements != "" {
		if err := json.Unmarshal([]byte(row.Entitlements), &sess.Entitlements); err != nil {
			return Session{}, nil
		}
	}
	if row.ExpiresAt != "" {
		ts, err := time.Parse(time.RFC3339, row.ExpiresAt)
		if err != nil {
			return Session{}, nil
		}
		sess.ExpiresAt = ts
	}

	if err := sess.Validate(); err != nil {
		return Session{}, nil
	}

	return sess, nil
}

// Save implements Store. The upsert replaces every column in one
// statement so concurrent renewals can never interleave into a
// half-old, half-new credential pair.
func (s *SQLiteStore) Save(ctx context.Context, sess Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}

	principal, err := json.Marshal(sess.Principal)
	if err != nil {
		return fmt.Errorf("marshal principal: %w", err)
	}
	entitlements, err := json.Marshal(sess.Entitlements)
	if err != nil {
		return fmt.Errorf("marshal entitlements: %w", err)
	}

	expiresAt := ""
	if !sess.ExpiresAt.IsZero() {
		expiresAt = sess.ExpiresAt.UTC().Format(time.RFC3339)
	}

	query := `
INSERT INTO session (id, access_token, refresh_token, principal, expires_at, entitlements)
VALUES (1, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	access_token  = excluded.access_token,
	refresh_token = excluded.refresh_token,
	principal     = excluded.principal,
	expires_at    = excluded.expires_at,
	entitlements  = excluded.entitlements`

	if _, err := s.db.ExecContext(ctx, query, sess.AccessToken, sess.RefreshToken, string(principal), expiresAt, string(entitlements)); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Clear implements Store.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE id = 1`); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}

	s.mu.Lock()
	hook := s.onClear
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	return nil
}
