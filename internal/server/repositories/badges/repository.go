// Package badges declares the repository contract for the badge catalog.
package badges

import (
	"context"

	"github.com/devquest/codenexus/internal/server/models"
)

type Repository interface {
	// List orders by ascending level.
	List(ctx context.Context, filter models.BadgeFilter) ([]*models.Badge, error)
	Get(ctx context.Context, id int64) (*models.Badge, error)
	// GetByName matches case-insensitively.
	GetByName(ctx context.Context, name string) (*models.Badge, error)
	Create(ctx context.Context, b *models.Badge) (*models.Badge, error)
	Update(ctx context.Context, id int64, upd models.BadgeUpdate) (*models.Badge, error)
}
