package quillpress

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// adminSecret is the single credential accepted by Authenticate.
type adminSecret struct {
	password string
	hash     []byte
}

func newAdminSecret(password, hash string) adminSecret {
	s := adminSecret{password: password}
	if hash != "" {
		s.hash = []byte(hash)
	}
	return s
}

func (a adminSecret) match(password string) bool {
	if len(a.hash) > 0 {
		return bcrypt.CompareHashAndPassword(a.hash, []byte(password)) == nil
	}
	if a.password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
}

// Authenticate checks password against the admin secret. On success it purges
// expired sessions, stores a new one expiring after timeout and returns its
// id. A mismatch returns ErrAuthFailed without touching the database.
func (s *Store) Authenticate(ctx context.Context, password string, timeout time.Duration) (string, error) {
	if !s.secret.match(password) {
		return "", ErrAuthFailed
	}
	now := s.clock()
	if _, err := s.sweepSessions(ctx, now); err != nil {
		return "", err
	}
	id := NewID()
	if _, err := s.db.ExecContext(ctx, s.bind(`INSERT INTO sessions (session_id, expires) VALUES (?, ?)`),
		id, formatTime(now.Add(timeout))); err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return id, nil
}

// SweepSessions deletes every expired session and returns how many went.
func (s *Store) SweepSessions(ctx context.Context) (int64, error) {
	return s.sweepSessions(ctx, s.clock())
}

func (s *Store) sweepSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.bind(`DELETE FROM sessions WHERE expires < ?`), formatTime(now))
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return n, nil
}

// DestroySession deletes the session with the given id, if any.
func (s *Store) DestroySession(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, s.bind(`DELETE FROM sessions WHERE session_id = ?`), sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// CurrentUser resolves a session id to the admin identity, or nil when no
// unexpired session with that id exists.
func (s *Store) CurrentUser(ctx context.Context, sessionID string) (*User, error) {
	if sessionID == "" {
		return nil, nil
	}
	var found string
	err := s.db.QueryRowContext(ctx, s.bind(`SELECT session_id FROM sessions WHERE session_id = ? AND expires > ? LIMIT 1`),
		sessionID, formatTime(s.clock())).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	u := adminUser
	return &u, nil
}
