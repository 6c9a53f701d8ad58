package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anisa/notekeeper/internal/apperror"
	"github.com/anisa/notekeeper/internal/model"
	"github.com/anisa/notekeeper/internal/repository"
)

// Validation limits for note titles and item text.
const (
	MaxTitleLength = 200
	MaxItemLength  = 2000
)

// NoteService handles the note and item business rules.
//
// Every mutating operation takes the acting user's id and verifies ownership
// of the target note or item before touching it. Bare ids off the wire are
// never trusted.
type NoteService struct {
	notes  repository.NoteRepository
	items  repository.ItemRepository
	logger *slog.Logger
}

// NewNoteService creates a NoteService.
func NewNoteService(
	notes repository.NoteRepository,
	items repository.ItemRepository,
	logger *slog.Logger,
) *NoteService {
	return &NoteService{
		notes:  notes,
		items:  items,
		logger: logger,
	}
}

// CreateNote creates a titled list with its initial items, atomically.
//
// Blank entries are dropped; duplicate texts within the batch are collapsed
// to their first occurrence, so the per-note uniqueness rule holds on this
// path the same as on AddItem. The note and all surviving items commit
// together — the response never claims success for items that were not
// written.
func (s *NoteService) CreateNote(ctx context.Context, userID, title string, itemTexts []string) (*model.Note, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "note title is required")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("note title must be %d characters or less", MaxTitleLength))
	}

	contents := make([]string, 0, len(itemTexts))
	seen := make(map[string]bool, len(itemTexts))
	for _, text := range itemTexts {
		text = strings.TrimSpace(text)
		if text == "" || seen[text] {
			continue
		}
		if len(text) > MaxItemLength {
			return nil, apperror.ValidationFailed("item",
				fmt.Sprintf("item text must be %d characters or less", MaxItemLength))
		}
		seen[text] = true
		contents = append(contents, text)
	}

	note := &model.Note{
		Title:  title,
		UserID: userID,
	}
	if err := s.notes.CreateNote(ctx, note, contents); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to create note",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating note: %w", err)
	}

	s.logger.Info("note created",
		slog.String("noteID", note.ID),
		slog.String("userID", userID),
		slog.Int("items", len(contents)),
	)

	return note, nil
}

// CreateVoiceNote creates a note whose single item is the transcribed body.
// A blank body is dropped like any other blank entry, leaving an empty note.
func (s *NoteService) CreateVoiceNote(ctx context.Context, userID, title, body string) (*model.Note, error) {
	return s.CreateNote(ctx, userID, title, []string{body})
}

// ListNotes returns the user's notes in creation order.
func (s *NoteService) ListNotes(ctx context.Context, userID string) ([]model.Note, error) {
	notes, err := s.notes.ListNotes(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list notes",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	return notes, nil
}

// GetNoteWithItems fetches a note and its items, in item-id order.
// Fails NotFound for a missing note and Forbidden for someone else's.
func (s *NoteService) GetNoteWithItems(ctx context.Context, userID, noteID string) (*model.Note, []model.Item, error) {
	note, err := s.ownedNote(ctx, userID, noteID)
	if err != nil {
		return nil, nil, err
	}

	items, err := s.notes.GetNoteItems(ctx, noteID)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching items for note %s: %w", noteID, err)
	}

	return note, items, nil
}

// AddItem appends one item to an existing note.
// Blank text is rejected; duplicate text within the note comes back Conflict.
func (s *NoteService) AddItem(ctx context.Context, userID, noteID, text string) (*model.Item, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.ValidationFailed("item", "item text is required")
	}
	if len(text) > MaxItemLength {
		return nil, apperror.ValidationFailed("item",
			fmt.Sprintf("item text must be %d characters or less", MaxItemLength))
	}

	if _, err := s.ownedNote(ctx, userID, noteID); err != nil {
		return nil, err
	}

	item := &model.Item{
		Content: text,
		NoteID:  noteID,
		UserID:  userID,
	}
	if err := s.items.AddItem(ctx, item); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("adding item to note %s: %w", noteID, err)
	}

	return item, nil
}

// EditItem replaces an item's text.
func (s *NoteService) EditItem(ctx context.Context, userID, itemID, newText string) error {
	newText = strings.TrimSpace(newText)
	if newText == "" {
		return apperror.ValidationFailed("item", "item text is required")
	}
	if len(newText) > MaxItemLength {
		return apperror.ValidationFailed("item",
			fmt.Sprintf("item text must be %d characters or less", MaxItemLength))
	}

	if _, err := s.ownedItem(ctx, userID, itemID); err != nil {
		return err
	}

	if err := s.items.EditItem(ctx, itemID, newText); err != nil {
		if errors.Is(err, apperror.ErrConflict) || errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		return fmt.Errorf("editing item %s: %w", itemID, err)
	}

	return nil
}

// RenameNote changes a note's title, keeping global title uniqueness.
func (s *NoteService) RenameNote(ctx context.Context, userID, noteID, newTitle string) error {
	newTitle = strings.TrimSpace(newTitle)
	if newTitle == "" {
		return apperror.ValidationFailed("title", "note title is required")
	}
	if len(newTitle) > MaxTitleLength {
		return apperror.ValidationFailed("title",
			fmt.Sprintf("note title must be %d characters or less", MaxTitleLength))
	}

	if _, err := s.ownedNote(ctx, userID, noteID); err != nil {
		return err
	}

	if err := s.notes.RenameNote(ctx, noteID, newTitle); err != nil {
		if errors.Is(err, apperror.ErrConflict) || errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		return fmt.Errorf("renaming note %s: %w", noteID, err)
	}

	s.logger.Info("note renamed", slog.String("noteID", noteID))
	return nil
}

// ToggleItemDone flips one item's done flag by id and returns the new state.
// Toggling twice restores the original value.
func (s *NoteService) ToggleItemDone(ctx context.Context, userID, itemID string) (bool, error) {
	if _, err := s.ownedItem(ctx, userID, itemID); err != nil {
		return false, err
	}

	done, err := s.items.ToggleItemDone(ctx, itemID)
	if err != nil {
		return false, fmt.Errorf("toggling item %s: %w", itemID, err)
	}

	return done, nil
}

// DeleteItem removes one item and returns its parent note id so the caller
// can re-render that note's page.
func (s *NoteService) DeleteItem(ctx context.Context, userID, itemID string) (string, error) {
	if _, err := s.ownedItem(ctx, userID, itemID); err != nil {
		return "", err
	}

	noteID, err := s.items.DeleteItem(ctx, itemID)
	if err != nil {
		return "", fmt.Errorf("deleting item %s: %w", itemID, err)
	}

	return noteID, nil
}

// DeleteDoneItems clears every checked-off item in the note.
func (s *NoteService) DeleteDoneItems(ctx context.Context, userID, noteID string) error {
	if _, err := s.ownedNote(ctx, userID, noteID); err != nil {
		return err
	}

	if err := s.items.DeleteDoneItems(ctx, noteID); err != nil {
		return fmt.Errorf("deleting done items for note %s: %w", noteID, err)
	}

	return nil
}

// DeleteNote removes the note and all its items.
func (s *NoteService) DeleteNote(ctx context.Context, userID, noteID string) error {
	if _, err := s.ownedNote(ctx, userID, noteID); err != nil {
		return err
	}

	if err := s.notes.DeleteNote(ctx, noteID); err != nil {
		return fmt.Errorf("deleting note %s: %w", noteID, err)
	}

	s.logger.Info("note deleted", slog.String("noteID", noteID), slog.String("userID", userID))
	return nil
}

// SearchByTitle looks a note up by exact, case-sensitive title. Titles are
// globally unique, so at most one note matches. A match owned by a
// different user is reported as NotFound — search must not leak other
// users' note ids.
func (s *NoteService) SearchByTitle(ctx context.Context, userID, title string) (*model.Note, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("searchTitle", "search title is required")
	}

	note, err := s.notes.FindNoteByTitle(ctx, title)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("searching notes: %w", err)
	}

	if note.UserID != userID {
		return nil, apperror.NotFound("note", title)
	}

	return note, nil
}

// ownedNote fetches a note and verifies the acting user owns it.
func (s *NoteService) ownedNote(ctx context.Context, userID, noteID string) (*model.Note, error) {
	if noteID == "" {
		return nil, apperror.ValidationFailed("noteId", "note id is required")
	}

	note, err := s.notes.GetNote(ctx, noteID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("fetching note %s: %w", noteID, err)
	}

	if note.UserID != userID {
		return nil, apperror.Forbidden("you do not own that note")
	}

	return note, nil
}

// ownedItem fetches an item and verifies the acting user owns it.
func (s *NoteService) ownedItem(ctx context.Context, userID, itemID string) (*model.Item, error) {
	if itemID == "" {
		return nil, apperror.ValidationFailed("itemId", "item id is required")
	}

	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("fetching item %s: %w", itemID, err)
	}

	if item.UserID != userID {
		return nil, apperror.Forbidden("you do not own that item")
	}

	return item, nil
}
