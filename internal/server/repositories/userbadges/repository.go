// Package userbadges declares the repository contract for badges earned by
// users, one row per (user, badge) pair.
package userbadges

import (
	"context"

	"github.com/devquest/codenexus/internal/server/models"
)

type Repository interface {
	// ListByUser joins the badge and orders displayed badges first, then by
	// level descending, then most recently earned.
	ListByUser(ctx context.Context, userID int64) ([]*models.UserBadgeWithBadge, error)
	Get(ctx context.Context, userID, badgeID int64) (*models.UserBadge, error)
	// Insert reports false, without error, when the pair already exists.
	Insert(ctx context.Context, userID, badgeID int64) (*models.UserBadge, bool, error)
	UpdateDisplay(ctx context.Context, userID, badgeID int64, display bool) (*models.UserBadge, error)
}
