// Package votes declares the repository contract for post votes, one per
// (user, post) pair.
package votes

import (
	"context"

	"github.com/devquest/codenexus/internal/server/models"
)

type Repository interface {
	ListByPost(ctx context.Context, postID int64) ([]*models.Vote, error)
	Get(ctx context.Context, userID, postID int64) (*models.Vote, error)
	// Upsert overwrites the value and timestamp of an existing vote.
	Upsert(ctx context.Context, v *models.Vote) (*models.Vote, error)
}
