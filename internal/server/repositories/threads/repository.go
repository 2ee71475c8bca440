// Package threads declares the repository contract for discussion threads.
package threads

import (
	"context"
	"time"

	"github.com/devquest/codenexus/internal/server/models"
)

// Filter selects threads for List. Zero fields match everything.
type Filter struct {
	CategoryID int64
	UserID     int64
	// Query is a case-insensitive substring of the title.
	Query string
	// Popular orders by view count instead of creation time.
	Popular bool
}

type Repository interface {
	// List orders newest first unless the filter asks for popular threads.
	List(ctx context.Context, f Filter, limit, offset int) ([]*models.Thread, error)
	Get(ctx context.Context, id int64) (*models.Thread, error)
	Create(ctx context.Context, t *models.Thread) (*models.Thread, error)
	Update(ctx context.Context, id int64, upd models.ThreadUpdate) (*models.Thread, error)
	IncrementViewCount(ctx context.Context, id int64) error
	Touch(ctx context.Context, id int64, at time.Time) error
	CountByUser(ctx context.Context, userID int64) (int, error)
}
