package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/anisa/notekeeper/internal/apperror"
	"github.com/anisa/notekeeper/internal/model"
	"github.com/anisa/notekeeper/internal/repository"
)

// compile-time check that *DB implements repository.NoteRepository
var _ repository.NoteRepository = (*DB)(nil)

// CreateNote inserts the note and its initial items in one transaction.
//
// The original behaviour this replaces fired each item insert without
// awaiting it, so a "created" response gave no guarantee the items existed.
// Here the whole creation commits or rolls back as a unit: a duplicate
// title, a duplicate item content, or any store failure leaves nothing
// behind.
func (db *DB) CreateNote(ctx context.Context, note *model.Note, contents []string) error {
	note.ID = xid.New().String()
	now := time.Now()
	note.CreatedAt = now
	note.UpdatedAt = now

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning note create: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO notes (id, title, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		note.ID,
		note.Title,
		note.UserID,
		note.CreatedAt,
		note.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("a note with that title already exists")
		}
		return fmt.Errorf("sqlite: inserting note: %w", err)
	}

	for _, content := range contents {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO items (id, content, note_id, user_id, done, created_at)
			 VALUES (?, ?, ?, ?, 0, ?)`,
			xid.New().String(),
			content,
			note.ID,
			note.UserID,
			time.Now(),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return apperror.Conflict("duplicate item in new note")
			}
			return fmt.Errorf("sqlite: inserting item for note %s: %w", note.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing note create: %w", err)
	}

	return nil
}

// ListNotes returns the user's notes ordered ascending by id — xid values
// sort by creation time, so this is creation order.
func (db *DB) ListNotes(ctx context.Context, userID string) ([]model.Note, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, title, user_id, created_at, updated_at
		 FROM notes
		 WHERE user_id = ?
		 ORDER BY id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing notes: %w", err)
	}
	defer rows.Close()

	notes := []model.Note{}
	for rows.Next() {
		var n model.Note
		if err := rows.Scan(&n.ID, &n.Title, &n.UserID, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning note row: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating notes: %w", err)
	}

	return notes, nil
}

// GetNote retrieves a single note by id.
// A missing note is an explicit apperror.ErrNotFound, never a crash path.
func (db *DB) GetNote(ctx context.Context, noteID string) (*model.Note, error) {
	var n model.Note

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, title, user_id, created_at, updated_at
		 FROM notes WHERE id = ?`,
		noteID,
	).Scan(&n.ID, &n.Title, &n.UserID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("note", noteID)
		}
		return nil, fmt.Errorf("sqlite: getting note %s: %w", noteID, err)
	}

	return &n, nil
}

// GetNoteItems returns the note's items in insertion order (id ascending).
func (db *DB) GetNoteItems(ctx context.Context, noteID string) ([]model.Item, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, content, note_id, user_id, done, created_at
		 FROM items
		 WHERE note_id = ?
		 ORDER BY id ASC`,
		noteID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing items for note %s: %w", noteID, err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		var it model.Item
		if err := rows.Scan(&it.ID, &it.Content, &it.NoteID, &it.UserID, &it.Done, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning item row: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating items: %w", err)
	}

	return items, nil
}

// RenameNote updates a note's title. The UNIQUE index rejects a rename onto
// an existing title; RowsAffected detects a missing note.
func (db *DB) RenameNote(ctx context.Context, noteID, newTitle string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE notes SET title = ?, updated_at = ? WHERE id = ?`,
		newTitle,
		time.Now(),
		noteID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("a note with that title already exists")
		}
		return fmt.Errorf("sqlite: renaming note %s: %w", noteID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("note", noteID)
	}

	return nil
}

// DeleteNote removes the note's items and then the note, transactionally.
func (db *DB) DeleteNote(ctx context.Context, noteID string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning note delete: %w", err)
	}
	defer tx.Rollback()

	// Items first — they reference the note.
	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE note_id = ?`, noteID); err != nil {
		return fmt.Errorf("sqlite: deleting items for note %s: %w", noteID, err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, noteID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting note %s: %w", noteID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("note", noteID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing note delete: %w", err)
	}

	return nil
}

// FindNoteByTitle does an exact-match, case-sensitive title lookup. Titles
// are globally unique, so at most one note can match.
func (db *DB) FindNoteByTitle(ctx context.Context, title string) (*model.Note, error) {
	var n model.Note

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, title, user_id, created_at, updated_at
		 FROM notes WHERE title = ?`,
		title,
	).Scan(&n.ID, &n.Title, &n.UserID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("note", title)
		}
		return nil, fmt.Errorf("sqlite: finding note by title: %w", err)
	}

	return &n, nil
}
