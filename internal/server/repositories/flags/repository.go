// Package flags declares the repository contract for moderation reports.
package flags

import (
	"context"

	"github.com/devquest/codenexus/internal/server/models"
)

type Repository interface {
	// List orders newest first; an empty status matches all.
	List(ctx context.Context, status string, limit, offset int) ([]*models.Flag, error)
	// Create always stores the flag as pending.
	Create(ctx context.Context, f *models.Flag) (*models.Flag, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*models.Flag, error)
}
