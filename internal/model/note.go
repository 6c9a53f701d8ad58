package model

import "time"

// Note is a titled container owned by exactly one user.
//
// Titles are unique across the whole system, not just per user. The
// uniqueness lives in a UNIQUE index on notes(title), so a duplicate title
// surfaces as a constraint violation on insert rather than racing a
// check-then-write in application code.
type Note struct {
	ID        string    `json:"id"        db:"id"`
	Title     string    `json:"title"     db:"title"`
	UserID    string    `json:"userId"    db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Item is a single list entry (or a voice-note body) belonging to one note.
//
// UserID is a denormalized copy of the owning note's user id — it lets
// account-cascade deletes and ownership checks run without a join.
// Content is unique within its note (UNIQUE(note_id, content)).
//
// Items display in id-ascending order. IDs are xid values, which sort by
// creation time, so id order is insertion order.
type Item struct {
	ID        string    `json:"id"        db:"id"`
	Content   string    `json:"content"   db:"content"`
	NoteID    string    `json:"noteId"    db:"note_id"`
	UserID    string    `json:"userId"    db:"user_id"`
	Done      bool      `json:"done"      db:"done"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
