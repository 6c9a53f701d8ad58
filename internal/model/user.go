// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Email is the login identifier and is unique, compared exactly as stored
// (case-sensitive). PasswordHash holds the bcrypt output — the salt and cost
// are embedded in the hash string itself, so no separate salt column exists.
//
// A user record is created once at registration and never updated in place.
// Deleting an account cascades to the user's notes, items, and sessions.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Email        string    `json:"email"     db:"email"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
