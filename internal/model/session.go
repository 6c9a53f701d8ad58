package model

import "time"

// Session binds a browser to an authenticated user.
//
// The token is a random 256-bit value sent to the browser in an HttpOnly
// cookie. The row lives server-side so that logout (and account deletion)
// can truly invalidate a session rather than waiting for a cookie to expire.
type Session struct {
	Token     string    `db:"token"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
