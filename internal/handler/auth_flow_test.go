package handler_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLanding(t *testing.T) {
	app := newTestApp(t)

	rr := app.get(t, "/", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Notekeeper")
}

func TestLanding_ShowsSignedInUser(t *testing.T) {
	app := newTestApp(t)
	session := app.signup(t, "alice@example.com", "secret123")

	rr := app.get(t, "/", session)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "alice@example.com")

	// anonymous visitors see no email
	rr = app.get(t, "/", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "alice@example.com")
}

func TestRegisterFlow(t *testing.T) {
	app := newTestApp(t)

	rr := app.get(t, "/register", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = app.postForm(t, "/register", url.Values{
		"username":  {"alice@example.com"},
		"password":  {"secret123"},
		"password2": {"secret123"},
	}, nil)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
}

func TestRegister_ValidationErrorsRerenderForm(t *testing.T) {
	app := newTestApp(t)

	rr := app.postForm(t, "/register", url.Values{
		"username":  {"alice@example.com"},
		"password":  {"secret123"},
		"password2": {"different"},
	}, nil)

	// Failed validation re-renders the form, no redirect.
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Passwords do not match")
	// the email survives the round-trip so the user doesn't retype it
	assert.Contains(t, rr.Body.String(), "alice@example.com")
}

func TestRegister_AllProblemsReportedAtOnce(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "taken@example.com", "secret123")

	rr := app.postForm(t, "/register", url.Values{
		"username":  {"taken@example.com"},
		"password":  {"abc"},
		"password2": {"abcd"},
	}, nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Email is already registered")
	assert.Contains(t, body, "Password should be at least 6 characters")
	assert.Contains(t, body, "Passwords do not match")
}

func TestLoginFlow(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice@example.com", "secret123")

	session := app.login(t, "alice@example.com", "secret123")

	rr := app.get(t, "/main", session)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestLogin_WrongPasswordBouncesBack(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice@example.com", "secret123")

	rr := app.postForm(t, "/login", url.Values{
		"username": {"alice@example.com"},
		"password": {"wrong"},
	}, nil)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
	// no session cookie on a failed login
	for _, c := range rr.Result().Cookies() {
		assert.NotEqual(t, "session", c.Name)
	}
}

func TestRequireAuth_AnonymousRedirectedToLogin(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/main", "/note", "/voiceNote", "/exampleNote"} {
		rr := app.get(t, path, nil)
		assert.Equal(t, http.StatusSeeOther, rr.Code, path)
		assert.Equal(t, "/login", rr.Header().Get("Location"), path)
	}
}

func TestRedirectIfAuthenticated(t *testing.T) {
	app := newTestApp(t)
	session := app.signup(t, "alice@example.com", "secret123")

	for _, path := range []string{"/login", "/register"} {
		rr := app.get(t, path, session)
		assert.Equal(t, http.StatusSeeOther, rr.Code, path)
		assert.Equal(t, "/main", rr.Header().Get("Location"), path)
	}
}

func TestLogout_InvalidatesSession(t *testing.T) {
	app := newTestApp(t)
	session := app.signup(t, "alice@example.com", "secret123")

	rr := app.get(t, "/logout", session)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	// The old token must be dead server-side, not just cleared in the
	// browser: replaying the cookie bounces to /login.
	rr = app.get(t, "/main", session)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
}

func TestDeleteAccount(t *testing.T) {
	app := newTestApp(t)
	session := app.signup(t, "alice@example.com", "secret123")

	rr := app.postForm(t, "/deleteAccount", url.Values{
		"deleteAccount": {"on"},
	}, session)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	// The session died with the account.
	rr = app.get(t, "/main", session)
	assert.Equal(t, http.StatusSeeOther, rr.Code)

	// And the credentials no longer work.
	rr = app.postForm(t, "/login", url.Values{
		"username": {"alice@example.com"},
		"password": {"secret123"},
	}, nil)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
}

// Without the confirmation checkbox the account survives.
func TestDeleteAccount_UncheckedIsNoOp(t *testing.T) {
	app := newTestApp(t)
	session := app.signup(t, "alice@example.com", "secret123")

	rr := app.postForm(t, "/deleteAccount", url.Values{}, session)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/main", rr.Header().Get("Location"))

	rr = app.get(t, "/main", session)
	assert.Equal(t, http.StatusOK, rr.Code)
}
