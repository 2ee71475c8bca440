// Package notifications declares the repository contract for in-platform
// notifications.
package notifications

import (
	"context"

	"github.com/devquest/codenexus/internal/server/models"
)

type Repository interface {
	// ListByUser orders newest first.
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*models.Notification, error)
	CountUnread(ctx context.Context, userID int64) (int, error)
	// Create always stores the notification unread.
	Create(ctx context.Context, n *models.Notification) (*models.Notification, error)
	MarkRead(ctx context.Context, id int64) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID int64) error
}
