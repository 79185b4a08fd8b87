// Package sessions declares the server-side store of issued session tokens.
// A token is only honoured while its row exists.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/portfolio/internal/server/models"
)

// Repository defines operations for recording, looking up, and revoking sessions.
type Repository interface {
	// Create stores s. The caller chooses the ID (the token's jti).
	Create(ctx context.Context, s *models.Session) error

	// Find returns the session with the given id, expired or not.
	// Implementations return common.ErrorNotFound when it is absent.
	Find(ctx context.Context, id string) (*models.Session, error)

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteByAccount removes every session of the account and reports how
	// many were removed.
	DeleteByAccount(ctx context.Context, accountID string) (int64, error)

	// DeleteExpired removes every session whose expiry is before now and
	// reports how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
