package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/anisa/notekeeper/internal/model"
	"github.com/anisa/notekeeper/internal/repository"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "session"

// DefaultSessionTTL is how long a session stays valid without re-login.
const DefaultSessionTTL = 24 * time.Hour

// SessionManager issues, validates, and destroys server-side sessions.
//
// The browser only ever holds an opaque random token in an HttpOnly cookie;
// the binding from token to user lives in the sessions table. That makes
// logout real: deleting the row invalidates the cookie immediately, with
// nothing to wait out client-side.
type SessionManager struct {
	sessions repository.SessionRepository
	ttl      time.Duration
	logger   *slog.Logger
}

// NewSessionManager creates a SessionManager. A non-positive ttl falls back
// to DefaultSessionTTL.
func NewSessionManager(sessions repository.SessionRepository, ttl time.Duration, logger *slog.Logger) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionManager{
		sessions: sessions,
		ttl:      ttl,
		logger:   logger,
	}
}

// Issue creates a session for the user and returns its token.
//
// Tokens are 32 bytes from crypto/rand, hex-encoded. They carry no
// structure — all meaning lives server-side in the session row.
func (m *SessionManager) Issue(ctx context.Context, userID string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: generating session token: %w", err)
	}
	token := hex.EncodeToString(buf)

	session := &model.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().Add(m.ttl),
	}
	if err := m.sessions.CreateSession(ctx, session); err != nil {
		return "", fmt.Errorf("auth: persisting session: %w", err)
	}

	return token, nil
}

// Validate resolves a token to the user id it is bound to.
// Expired sessions are deleted on sight and reported as invalid.
func (m *SessionManager) Validate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("auth: empty session token")
	}

	session, err := m.sessions.GetSession(ctx, token)
	if err != nil {
		return "", fmt.Errorf("auth: looking up session: %w", err)
	}

	if session.Expired(time.Now()) {
		// Best-effort cleanup; the session is invalid either way.
		if err := m.sessions.DeleteSession(ctx, token); err != nil {
			m.logger.Warn("failed to delete expired session", slog.String("error", err.Error()))
		}
		return "", fmt.Errorf("auth: session expired")
	}

	return session.UserID, nil
}

// Destroy invalidates a session. Failures are logged, never surfaced —
// logout must always look successful to the user.
func (m *SessionManager) Destroy(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := m.sessions.DeleteSession(ctx, token); err != nil {
		m.logger.Error("failed to destroy session", slog.String("error", err.Error()))
	}
}

// PurgeExpired deletes every expired session row in one pass. Failures are
// logged — a missed sweep just leaves garbage for the next one.
func (m *SessionManager) PurgeExpired(ctx context.Context) {
	if err := m.sessions.DeleteExpiredSessions(ctx); err != nil {
		m.logger.Warn("failed to purge expired sessions", slog.String("error", err.Error()))
	}
}

// Sweep runs PurgeExpired every interval until ctx is cancelled. Validation
// already deletes expired rows it encounters, but only when their token is
// presented again; the sweep collects the rest.
func (m *SessionManager) Sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.PurgeExpired(ctx)
		}
	}
}

// SetCookie writes the session cookie on the response.
//
// HttpOnly keeps the token out of reach of page JavaScript; SameSite=Lax
// stops the cookie riding along on cross-site form posts.
func (m *SessionManager) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie removes the session cookie from the browser.
func (m *SessionManager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
