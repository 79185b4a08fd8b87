// Package projects persists portfolio projects.
package projects

import (
	"context"

	"github.com/dmitrijs2005/portfolio/internal/server/models"
)

type Repository interface {
	// Create stores p. An empty ID is replaced by a freshly generated UUID.
	// CreatedAt and UpdatedAt are taken from the database.
	Create(ctx context.Context, p *models.Project) (*models.Project, error)

	// Get returns common.ErrorNotFound for unknown or malformed ids.
	Get(ctx context.Context, id string) (*models.Project, error)

	// List returns projects newest first. The result is never nil.
	List(ctx context.Context, filter models.ProjectFilter) ([]*models.Project, error)

	// Update replaces every editable field of the project with p's values
	// and refreshes UpdatedAt.
	Update(ctx context.Context, p *models.Project) (*models.Project, error)

	Delete(ctx context.Context, id string) error
}
