package models

import "time"

// Session is the server-side record behind an issued session token. Its ID is
// the token's jti; deleting the row revokes the token.
type Session struct {
	ID        string
	AccountID string
	ExpiresAt time.Time
	CreatedAt time.Time
}
