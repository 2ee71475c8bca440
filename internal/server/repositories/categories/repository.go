// Package categories declares the repository contract for forum categories.
package categories

import (
	"context"

	"github.com/devquest/codenexus/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]*models.Category, error)
	Get(ctx context.Context, id int64) (*models.Category, error)
	// Create returns common.ErrorAlreadyExists for a duplicate name.
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
}
