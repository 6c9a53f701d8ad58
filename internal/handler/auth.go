package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/anisa/notekeeper/internal/apperror"
	"github.com/anisa/notekeeper/internal/auth"
	"github.com/anisa/notekeeper/internal/service"
)

// AuthHandler serves the landing, registration, login, logout, and
// account-deletion routes.
type AuthHandler struct {
	auths    *service.AuthService
	sessions *auth.SessionManager
	render   *Renderer
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(
	auths *service.AuthService,
	sessions *auth.SessionManager,
	render *Renderer,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		auths:    auths,
		sessions: sessions,
		render:   render,
		logger:   logger,
	}
}

// Landing serves the public index page. Logged-in visitors see who they are
// signed in as; a stale session (user row gone) falls back to the anonymous
// view rather than erroring a public page.
//
// HTTP: GET /
func (h *AuthHandler) Landing(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Year":          time.Now().Year(),
		"Authenticated": false,
		"Email":         "",
		"Flash":         takeFlash(w, r),
	}

	if userID, ok := auth.UserIDFromContext(r.Context()); ok {
		user, err := h.auths.CurrentUser(r.Context(), userID)
		if err != nil {
			h.logger.Warn("failed to load current user",
				slog.String("userID", userID),
				slog.String("error", err.Error()),
			)
		} else {
			data["Authenticated"] = true
			data["Email"] = user.Email
		}
	}

	h.render.Render(w, http.StatusOK, "index", data)
}

// ShowRegister serves the registration form. The router wraps this with
// RedirectIfAuthenticated, so logged-in users land on /main instead.
//
// HTTP: GET /register
func (h *AuthHandler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "register", map[string]any{
		"Year":   time.Now().Year(),
		"Flash":  takeFlash(w, r),
		"Errors": []string{},
		"Email":  "",
	})
}

// ShowLogin serves the login form.
//
// HTTP: GET /login
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "login", map[string]any{
		"Year":  time.Now().Year(),
		"Flash": takeFlash(w, r),
	})
}

// Register processes the registration form.
//
// HTTP: POST /register — fields: username (the email), password, password2.
//
// Validation failures re-render the form with the full message list and the
// email field preserved; nothing is persisted. Success flashes a notice and
// redirects to the login form.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render.renderError(w, apperror.ValidationFailed("form", "could not parse form"))
		return
	}

	email := r.PostFormValue("username")
	password := r.PostFormValue("password")
	confirm := r.PostFormValue("password2")

	_, messages, err := h.auths.Register(r.Context(), email, password, confirm)
	if err != nil {
		h.render.renderError(w, err)
		return
	}
	if len(messages) > 0 {
		h.render.Render(w, http.StatusOK, "register", map[string]any{
			"Year":   time.Now().Year(),
			"Errors": messages,
			"Email":  email,
		})
		return
	}

	setFlash(w, "You are now registered, please login")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Login processes the login form.
//
// HTTP: POST /login — fields: username, password.
//
// Bad credentials flash the failure and bounce back to the login form; a
// success creates a session, sets the cookie, and lands on /main.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render.renderError(w, apperror.ValidationFailed("form", "could not parse form"))
		return
	}

	email := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, err := h.auths.Login(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, apperror.ErrUnauthorized) {
			setFlash(w, "Incorrect email or password")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		h.render.renderError(w, err)
		return
	}

	token, err := h.sessions.Issue(r.Context(), user.ID)
	if err != nil {
		h.render.renderError(w, err)
		return
	}
	h.sessions.SetCookie(w, token)

	http.Redirect(w, r, "/main", http.StatusSeeOther)
}

// Logout destroys the session and clears the cookie. Destroy failures are
// logged inside the session manager; the user is redirected regardless.
//
// HTTP: GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token, ok := auth.SessionTokenFromContext(r.Context()); ok {
		h.sessions.Destroy(r.Context(), token)
	}
	h.sessions.ClearCookie(w)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// DeleteAccount cascade-deletes the account when the confirmation checkbox
// was ticked ("on"); otherwise it is a no-op back to /main.
//
// HTTP: POST /deleteAccount — field: deleteAccount.
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.render.renderError(w, apperror.ValidationFailed("form", "could not parse form"))
		return
	}
	if r.PostFormValue("deleteAccount") != "on" {
		http.Redirect(w, r, "/main", http.StatusSeeOther)
		return
	}

	if err := h.auths.DeleteAccount(r.Context(), userID); err != nil {
		h.render.renderError(w, err)
		return
	}

	// The cascade removed the session rows; the cookie is now dangling.
	h.sessions.ClearCookie(w)
	setFlash(w, "Account deleted")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
