// Package models defines server-side data models persisted in the database.
package models

import "time"

// Account is the single administrator identity. PasswordHash is an opaque
// bcrypt string and never holds plaintext.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	CreatedAt    time.Time
}
