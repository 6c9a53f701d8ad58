package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/anisa/notekeeper/internal/apperror"
	"github.com/anisa/notekeeper/internal/model"
	"github.com/anisa/notekeeper/internal/repository"
)

// compile-time check that *DB implements repository.SessionRepository
var _ repository.SessionRepository = (*DB)(nil)

// CreateSession stores a new session row. The token is generated by the
// session manager (crypto/rand), not here — the repository only persists it.
func (db *DB) CreateSession(ctx context.Context, session *model.Session) error {
	session.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, created_at, expires_at)
		 VALUES (?, ?, ?, ?)`,
		session.Token,
		session.UserID,
		session.CreatedAt,
		session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting session: %w", err)
	}

	return nil
}

// GetSession retrieves a session by token. Expiry is the session manager's
// concern; this returns whatever row exists.
func (db *DB) GetSession(ctx context.Context, token string) (*model.Session, error) {
	var s model.Session

	err := db.conn.QueryRowContext(ctx,
		`SELECT token, user_id, created_at, expires_at
		 FROM sessions WHERE token = ?`,
		token,
	).Scan(&s.Token, &s.UserID, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("session", token)
		}
		return nil, fmt.Errorf("sqlite: getting session: %w", err)
	}

	return &s, nil
}

// DeleteSession invalidates one session. Deleting a token that does not
// exist is not an error — logout must always succeed from the caller's view.
func (db *DB) DeleteSession(ctx context.Context, token string) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE token = ?`,
		token,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting session: %w", err)
	}

	return nil
}

// DeleteExpiredSessions garbage-collects sessions past their expiry.
func (db *DB) DeleteExpiredSessions(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < ?`,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting expired sessions: %w", err)
	}

	return nil
}
