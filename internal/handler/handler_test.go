package handler_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/anisa/notekeeper/internal/auth"
	"github.com/anisa/notekeeper/internal/handler"
	"github.com/anisa/notekeeper/internal/repository/sqlite"
	"github.com/anisa/notekeeper/internal/service"
)

// testApp wires the full stack — in-memory sqlite, services, handlers, and
// the same route groups the server uses — so handler tests exercise the real
// templates and the real auth guards.
type testApp struct {
	router http.Handler
	db     *sqlite.DB
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	render, err := handler.NewRenderer("../../web/templates", logger)
	if err != nil {
		t.Fatalf("creating renderer: %v", err)
	}

	sessions := auth.NewSessionManager(db, time.Hour, logger)
	// bcrypt cost 4 keeps register/login tests fast
	passwords := auth.NewPasswordServiceForTest(4)

	authService := service.NewAuthService(db, passwords, logger)
	noteService := service.NewNoteService(db, db, logger)

	authHandler := handler.NewAuthHandler(authService, sessions, render, logger)
	noteHandler := handler.NewNoteHandler(noteService, render, logger)

	router := chi.NewRouter()

	router.Group(func(r chi.Router) {
		r.Use(auth.OptionalAuth(sessions))
		r.Get("/", authHandler.Landing)
		r.Get("/logout", authHandler.Logout)
	})

	router.Group(func(r chi.Router) {
		r.Use(auth.RedirectIfAuthenticated(sessions))
		r.Get("/register", authHandler.ShowRegister)
		r.Post("/register", authHandler.Register)
		r.Get("/login", authHandler.ShowLogin)
		r.Post("/login", authHandler.Login)
	})

	router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(sessions))
		r.Get("/main", noteHandler.Main)
		r.Get("/note", noteHandler.ShowNoteForm)
		r.Get("/voiceNote", noteHandler.ShowVoiceNoteForm)
		r.Get("/exampleNote", noteHandler.ShowExampleNote)
		r.Post("/showNote", noteHandler.ShowNote)
		r.Post("/note", noteHandler.CreateNote)
		r.Post("/voiceNote", noteHandler.CreateVoiceNote)
		r.Post("/add", noteHandler.AddItem)
		r.Post("/edit", noteHandler.EditItem)
		r.Post("/editTitle", noteHandler.EditTitle)
		r.Post("/checkOff", noteHandler.CheckOff)
		r.Post("/delete", noteHandler.DeleteItem)
		r.Post("/delete-note", noteHandler.DeleteNote)
		r.Post("/deleteCheckedItems", noteHandler.DeleteCheckedItems)
		r.Post("/search", noteHandler.Search)
		r.Post("/deleteAccount", authHandler.DeleteAccount)
	})

	return &testApp{router: router, db: db}
}

// get performs a GET request, optionally carrying a session cookie.
func (a *testApp) get(t *testing.T, path string, session *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if session != nil {
		req.AddCookie(session)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

// postForm performs a form POST, optionally carrying a session cookie.
func (a *testApp) postForm(t *testing.T, path string, form url.Values, session *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if session != nil {
		req.AddCookie(session)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

// register creates an account through the real registration route.
func (a *testApp) register(t *testing.T, email, password string) {
	t.Helper()
	rr := a.postForm(t, "/register", url.Values{
		"username":  {email},
		"password":  {password},
		"password2": {password},
	}, nil)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("register: status = %d, body: %s", rr.Code, rr.Body.String())
	}
}

// login authenticates and returns the session cookie.
func (a *testApp) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	rr := a.postForm(t, "/login", url.Values{
		"username": {email},
		"password": {password},
	}, nil)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("login: status = %d", rr.Code)
	}
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.SessionCookieName && c.Value != "" {
			return c
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}

// signup registers and logs in a fresh account in one step.
func (a *testApp) signup(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	a.register(t, email, password)
	return a.login(t, email, password)
}
