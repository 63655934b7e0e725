// Package sqlite persists the durable session mirror so a login survives
// across runs. It uses the pure-Go sqlite driver so the client binary needs
// no cgo.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/tradebridge/rfq-marketplace/internal/core/domain"
	"github.com/tradebridge/rfq-marketplace/internal/core/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS session (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	auth_token TEXT NOT NULL,
	full_name  TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	last_role  TEXT NOT NULL
)`

// SessionStore mirrors the in-memory session into a single-row sqlite table.
type SessionStore struct {
	db *sql.DB
}

var _ ports.SessionStore = (*SessionStore)(nil)

// Open creates (or opens) the mirror database at path and ensures its schema.
func Open(path string) (*SessionStore, error) {
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=10000")
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	// Single caller, single row; one connection avoids writer contention.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate session store: %w", err)
	}
	return &SessionStore{db: db}, nil
}

// Save writes the session through to the mirror, replacing any previous row.
func (s *SessionStore) Save(ctx context.Context, sess domain.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session (id, auth_token, full_name, user_id, last_role)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			auth_token = excluded.auth_token,
			full_name  = excluded.full_name,
			user_id    = excluded.user_id,
			last_role  = excluded.last_role`,
		sess.AuthToken, sess.DisplayName, sess.UserID, string(sess.ActiveRole))
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load returns the mirrored session, or a zero session when nothing is
// stored. Partiality is the caller's concern; the store reports what it has.
func (s *SessionStore) Load(ctx context.Context) (domain.Session, error) {
	var sess domain.Session
	var role string
	err := s.db.QueryRowContext(ctx,
		`SELECT auth_token, full_name, user_id, last_role FROM session WHERE id = 1`).
		Scan(&sess.AuthToken, &sess.DisplayName, &sess.UserID, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, nil
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session: %w", err)
	}
	sess.ActiveRole = domain.Role(role)
	return sess, nil
}

// Clear removes the mirrored session.
func (s *SessionStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE id = 1`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SessionStore) Close() error {
	return s.db.Close()
}
