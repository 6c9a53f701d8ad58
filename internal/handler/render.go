// Package handler contains the HTTP request handlers. Handlers parse form
// input, call the service layer, and pick a page to render or a redirect —
// no business rule lives here beyond input coercion.
package handler

import (
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/anisa/notekeeper/internal/apperror"
)

// pages are the top-level templates. Each is parsed together with base.html
// so it can fill the base layout's content block.
var pages = []string{
	"index",
	"register",
	"login",
	"main",
	"note",
	"voicenote",
	"shownote",
	"example",
	"error",
}

// Renderer holds the parsed template set, one *template.Template per page.
// Templates are parsed once at startup, not per request.
type Renderer struct {
	templates map[string]*template.Template
	logger    *slog.Logger
}

// NewRenderer parses every page template against the base layout.
func NewRenderer(templateDir string, logger *slog.Logger) (*Renderer, error) {
	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.ParseFiles(
			filepath.Join(templateDir, "base.html"),
			filepath.Join(templateDir, page+".html"),
		)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}
		templates[page] = tmpl
	}

	return &Renderer{
		templates: templates,
		logger:    logger,
	}, nil
}

// Render executes the named page with the given data.
//
// Headers and status must go out before the body, so template execution
// failure after WriteHeader can only be logged.
func (rd *Renderer) Render(w http.ResponseWriter, status int, page string, data map[string]any) {
	tmpl, ok := rd.templates[page]
	if !ok {
		rd.logger.Error("unknown template", slog.String("page", page))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if data == nil {
		data = map[string]any{}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		rd.logger.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
	}
}

// renderError maps a domain error onto a status code and the error page.
//
// The service layer returns apperror sentinels; this is the one place they
// become HTTP. Unknown errors render a generic 500 — raw error text never
// reaches the browser.
func (rd *Renderer) renderError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "Something went wrong"

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
		default:
			message = "Something went wrong"
		}
	}

	if status == http.StatusInternalServerError {
		rd.logger.Error("request failed", slog.String("error", err.Error()))
	}

	rd.Render(w, status, "error", map[string]any{
		"Year":    time.Now().Year(),
		"Status":  status,
		"Message": message,
	})
}

// flashCookieName carries a one-time notice to the next rendered page.
// A cookie (not the session row) so the notice survives flows where no
// session exists: right after registration, or after account deletion.
const flashCookieName = "flash"

// setFlash queues a one-time notice for the next page render.
// Cookie values can't contain spaces, so the message is base64-encoded.
func setFlash(w http.ResponseWriter, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.URLEncoding.EncodeToString([]byte(message)),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// takeFlash returns the pending notice, if any, and clears the cookie.
func takeFlash(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return ""
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	decoded, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return ""
	}
	return string(decoded)
}
