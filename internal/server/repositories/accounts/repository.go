// Package accounts declares the credential store: the persisted mapping of
// account email to password hash.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/portfolio/internal/server/models"
)

// Repository defines operations on admin accounts.
type Repository interface {
	// Create inserts a new account and fills in its ID and CreatedAt.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)

	// GetByEmail looks an account up by its exact (case-sensitive) email.
	// Implementations return common.ErrorNotFound when it is absent.
	GetByEmail(ctx context.Context, email string) (*models.Account, error)

	// GetByID returns common.ErrorNotFound when the account is absent.
	GetByID(ctx context.Context, id string) (*models.Account, error)

	// UpdatePassword replaces the stored hash.
	UpdatePassword(ctx context.Context, id string, passwordHash string) error

	// DeleteByEmail removes the account if it exists. Deleting a missing
	// account is not an error.
	DeleteByEmail(ctx context.Context, email string) error
}
