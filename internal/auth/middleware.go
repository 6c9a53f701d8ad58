package auth

import (
	"context"
	"net/http"
)

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the values stored under them.
type contextKey string

const (
	userIDKey       contextKey = "userID"
	sessionTokenKey contextKey = "sessionToken"
)

// RequireAuth guards authenticated pages.
//
// A request with no valid session is redirected to /login — this is a
// browser-facing app, so a redirect beats a bare 401. On success, the user
// id and session token go into the request context for the handlers.
func RequireAuth(sessions *SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, userID, err := resolveSession(r, sessions)
			if err != nil {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = context.WithValue(ctx, sessionTokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RedirectIfAuthenticated sends already-logged-in users from the login and
// registration pages straight to their notes.
func RedirectIfAuthenticated(sessions *SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, _, err := resolveSession(r, sessions); err == nil {
				http.Redirect(w, r, "/main", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// OptionalAuth resolves the session if one is present but never blocks.
// Used on public pages (landing, logout) that vary slightly when a user is
// logged in.
func OptionalAuth(sessions *SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, userID, err := resolveSession(r, sessions); err == nil {
				ctx := context.WithValue(r.Context(), userIDKey, userID)
				ctx = context.WithValue(ctx, sessionTokenKey, token)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserIDFromContext retrieves the authenticated user's id.
// Returns ("", false) for anonymous requests.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// SessionTokenFromContext retrieves the current session token. Handlers use
// it to destroy the session on logout and account deletion.
func SessionTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(sessionTokenKey).(string)
	return token, ok && token != ""
}

// resolveSession reads the session cookie and validates it against the
// session store. Shared by all three guards.
func resolveSession(r *http.Request, sessions *SessionManager) (token, userID string, err error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		// http.ErrNoCookie — the request is simply anonymous.
		return "", "", err
	}

	userID, err = sessions.Validate(r.Context(), cookie.Value)
	if err != nil {
		return "", "", err
	}

	return cookie.Value, userID, nil
}
