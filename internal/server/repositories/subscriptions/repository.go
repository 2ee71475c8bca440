// Package subscriptions declares the repository contract for thread and
// category subscriptions.
package subscriptions

import (
	"context"

	"github.com/devquest/codenexus/internal/server/models"
)

type Repository interface {
	ListByUser(ctx context.Context, userID int64) ([]*models.Subscription, error)
	// Find returns the user's first subscription matching the thread or the category.
	Find(ctx context.Context, userID int64, threadID, categoryID *int64) (*models.Subscription, error)
	Get(ctx context.Context, id int64) (*models.Subscription, error)
	// ListSubscribers returns every subscription on the thread or the category.
	ListSubscribers(ctx context.Context, threadID, categoryID int64) ([]*models.Subscription, error)
	Create(ctx context.Context, s *models.Subscription) (*models.Subscription, error)
	Update(ctx context.Context, id int64, upd models.SubscriptionUpdate) (*models.Subscription, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
