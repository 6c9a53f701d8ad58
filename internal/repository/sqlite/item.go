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

// compile-time check that *DB implements repository.ItemRepository
var _ repository.ItemRepository = (*DB)(nil)

// AddItem inserts a single item into an existing note.
// The UNIQUE(note_id, content) index rejects duplicate text within the note.
func (db *DB) AddItem(ctx context.Context, item *model.Item) error {
	item.ID = xid.New().String()
	item.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO items (id, content, note_id, user_id, done, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.Content,
		item.NoteID,
		item.UserID,
		item.Done,
		item.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("that item is already on the list")
		}
		return fmt.Errorf("sqlite: inserting item: %w", err)
	}

	return nil
}

// GetItem retrieves a single item by id.
func (db *DB) GetItem(ctx context.Context, itemID string) (*model.Item, error) {
	var it model.Item

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, content, note_id, user_id, done, created_at
		 FROM items WHERE id = ?`,
		itemID,
	).Scan(&it.ID, &it.Content, &it.NoteID, &it.UserID, &it.Done, &it.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("item", itemID)
		}
		return nil, fmt.Errorf("sqlite: getting item %s: %w", itemID, err)
	}

	return &it, nil
}

// EditItem replaces an item's text. Editing onto text that already exists in
// the same note trips the unique index, same as adding it would.
func (db *DB) EditItem(ctx context.Context, itemID, newContent string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE items SET content = ? WHERE id = ?`,
		newContent,
		itemID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("that item is already on the list")
		}
		return fmt.Errorf("sqlite: editing item %s: %w", itemID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("item", itemID)
	}

	return nil
}

// ToggleItemDone flips the done flag of exactly one item, identified by id,
// and returns the new state. Matching by id (not by content) means duplicate
// text across different notes can never toggle the wrong row.
func (db *DB) ToggleItemDone(ctx context.Context, itemID string) (bool, error) {
	var done bool

	err := db.conn.QueryRowContext(ctx,
		`UPDATE items SET done = NOT done WHERE id = ? RETURNING done`,
		itemID,
	).Scan(&done)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, apperror.NotFound("item", itemID)
		}
		return false, fmt.Errorf("sqlite: toggling item %s: %w", itemID, err)
	}

	return done, nil
}

// DeleteItem removes one item and returns the id of the note it belonged to.
func (db *DB) DeleteItem(ctx context.Context, itemID string) (string, error) {
	var noteID string

	err := db.conn.QueryRowContext(ctx,
		`DELETE FROM items WHERE id = ? RETURNING note_id`,
		itemID,
	).Scan(&noteID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", apperror.NotFound("item", itemID)
		}
		return "", fmt.Errorf("sqlite: deleting item %s: %w", itemID, err)
	}

	return noteID, nil
}

// DeleteDoneItems removes every checked-off item in the note. Items still
// pending are untouched. Zero done items is not an error.
func (db *DB) DeleteDoneItems(ctx context.Context, noteID string) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM items WHERE note_id = ? AND done = 1`,
		noteID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting done items for note %s: %w", noteID, err)
	}

	return nil
}
