// Package service contains the business logic layer: validation, ownership
// enforcement, and orchestration between handlers and repositories.
//
// Handlers parse forms and render pages; services enforce the rules;
// repositories talk to the store. Services accept plain values and a
// context, never *http.Request, so the same rules hold for any caller.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anisa/notekeeper/internal/apperror"
	"github.com/anisa/notekeeper/internal/auth"
	"github.com/anisa/notekeeper/internal/model"
	"github.com/anisa/notekeeper/internal/repository"
)

// MinPasswordLength is the registration minimum.
const MinPasswordLength = 6

// AuthService handles registration, login, and account deletion.
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		passwords: passwords,
		logger:    logger,
	}
}

// Register validates and creates a new account.
//
// The four rules are evaluated independently and ALL collected, so the user
// sees every problem at once, not one per round-trip:
//
//  1. all fields present
//  2. email not already registered (case-sensitive exact match)
//  3. password at least 6 characters
//  4. password matches confirmation
//
// A non-empty message slice means validation failed and nothing was
// persisted; the handler re-renders the form with the full list. A non-nil
// error means the store itself failed.
func (s *AuthService) Register(ctx context.Context, email, password, confirm string) (*model.User, []string, error) {
	email = strings.TrimSpace(email)

	var messages []string

	if email == "" || password == "" || confirm == "" {
		messages = append(messages, "Please enter all fields")
	}

	if email != "" {
		_, err := s.users.GetUserByEmail(ctx, email)
		switch {
		case err == nil:
			messages = append(messages, "Email is already registered")
		case !errors.Is(err, apperror.ErrNotFound):
			return nil, nil, fmt.Errorf("checking email availability: %w", err)
		}
	}

	if len(password) < MinPasswordLength {
		messages = append(messages, "Password should be at least 6 characters")
	}

	if password != confirm {
		messages = append(messages, "Passwords do not match")
	}

	if len(messages) > 0 {
		return nil, messages, nil
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		// Two registrations can race past the availability check above;
		// the UNIQUE index turns the loser into a validation message.
		if errors.Is(err, apperror.ErrConflict) {
			return nil, []string{"Email is already registered"}, nil
		}
		return nil, nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user registered", slog.String("userID", user.ID))

	return user, nil, nil
}

// Login verifies credentials and returns the user on success.
//
// A missing user and a wrong password both come back as the same
// apperror.ErrUnauthorized — the response must not reveal which half of the
// credential pair was wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperror.Unauthorized("Incorrect email or password")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("Incorrect email or password")
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized("Incorrect email or password")
	}

	return user, nil
}

// CurrentUser returns the full user record for a session's user id.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("no authenticated user")
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetching user %s: %w", userID, err)
	}
	return user, nil
}

// DeleteAccount removes the user and everything they own: items, notes,
// sessions, then the user row, in one transaction.
func (s *AuthService) DeleteAccount(ctx context.Context, userID string) error {
	if userID == "" {
		return apperror.Unauthorized("no authenticated user")
	}
	if err := s.users.DeleteUserCascade(ctx, userID); err != nil {
		s.logger.Error("failed to delete account",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting account %s: %w", userID, err)
	}

	s.logger.Info("account deleted", slog.String("userID", userID))
	return nil
}
