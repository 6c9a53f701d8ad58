// Package repository declares the storage interfaces the service layer
// depends on. The sqlite subpackage provides the concrete implementation;
// tests substitute in-memory fakes.
package repository

import (
	"context"

	"github.com/anisa/notekeeper/internal/model"
)

type UserRepository interface {
	// CreateUser inserts a new user. The email UNIQUE constraint makes the
	// insert atomic: a duplicate email fails with apperror.ErrConflict even
	// when two registrations race.
	CreateUser(ctx context.Context, user *model.User) error
	// GetUserByEmail does a case-sensitive exact match.
	// Returns apperror.ErrNotFound if no such user exists.
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	// DeleteUserCascade removes the user's items, notes, sessions, and the
	// user row itself in a single transaction, in that order.
	DeleteUserCascade(ctx context.Context, userID string) error
}

type NoteRepository interface {
	// CreateNote inserts the note and all item contents in one transaction.
	// Blank contents must be filtered by the caller; duplicate contents
	// within the batch are rejected by the UNIQUE(note_id, content) index,
	// rolling back the whole creation.
	CreateNote(ctx context.Context, note *model.Note, contents []string) error
	// ListNotes returns the user's notes ordered ascending by id.
	ListNotes(ctx context.Context, userID string) ([]model.Note, error)
	GetNote(ctx context.Context, noteID string) (*model.Note, error)
	// GetNoteItems returns the note's items ordered ascending by id.
	GetNoteItems(ctx context.Context, noteID string) ([]model.Item, error)
	RenameNote(ctx context.Context, noteID, newTitle string) error
	// DeleteNote removes the note's items and then the note, transactionally.
	DeleteNote(ctx context.Context, noteID string) error
	// FindNoteByTitle does an exact, case-sensitive title lookup.
	// Returns apperror.ErrNotFound on a miss.
	FindNoteByTitle(ctx context.Context, title string) (*model.Note, error)
}

type ItemRepository interface {
	// AddItem inserts one item. Duplicate content within the same note
	// fails with apperror.ErrConflict via the unique index.
	AddItem(ctx context.Context, item *model.Item) error
	GetItem(ctx context.Context, itemID string) (*model.Item, error)
	EditItem(ctx context.Context, itemID, newContent string) error
	// ToggleItemDone flips the done flag of the identified item and
	// returns the new state.
	ToggleItemDone(ctx context.Context, itemID string) (bool, error)
	// DeleteItem removes one item and returns its parent note id so the
	// caller can re-render that note.
	DeleteItem(ctx context.Context, itemID string) (noteID string, err error)
	// DeleteDoneItems removes every done item in the note, leaving pending
	// items untouched.
	DeleteDoneItems(ctx context.Context, noteID string) error
}

type SessionRepository interface {
	CreateSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, token string) (*model.Session, error)
	DeleteSession(ctx context.Context, token string) error
	// DeleteExpiredSessions removes sessions past their expiry.
	DeleteExpiredSessions(ctx context.Context) error
}
