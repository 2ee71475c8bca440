// Package posts declares the repository contract for thread replies.
// Soft-deleted rows are excluded from every read except Owner.
package posts

import (
	"context"

	"github.com/devquest/codenexus/internal/server/models"
)

type Repository interface {
	// ListByThread orders oldest first.
	ListByThread(ctx context.Context, threadID int64, limit, offset int) ([]*models.Post, error)
	// ListByUser orders newest first.
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*models.Post, error)
	// Search matches a case-insensitive substring of the content, newest first.
	Search(ctx context.Context, query string, limit, offset int) ([]*models.Post, error)
	Get(ctx context.Context, id int64) (*models.Post, error)
	// Owner returns the author id even for a soft-deleted post.
	Owner(ctx context.Context, id int64) (int64, error)
	Create(ctx context.Context, p *models.Post) (*models.Post, error)
	Update(ctx context.Context, id int64, upd models.PostUpdate) (*models.Post, error)
	CountByThread(ctx context.Context, threadID int64) (int, error)
	CountByUser(ctx context.Context, userID int64) (int, error)
}
