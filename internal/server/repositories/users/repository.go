// Package users declares the repository contract for forum members.
package users

import (
	"context"

	"github.com/devquest/codenexus/internal/server/models"
)

type Repository interface {
	Get(ctx context.Context, id int64) (*models.User, error)
	// GetByEmail matches case-insensitively.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Create returns common.ErrorAlreadyExists when the email is taken.
	Create(ctx context.Context, u *models.User) (*models.User, error)
	Update(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error)
	// AddReputation adds delta and returns the new total.
	AddReputation(ctx context.Context, id int64, delta int) (int, error)
	// Top orders by reputation, ties by ascending id.
	Top(ctx context.Context, limit int) ([]*models.User, error)
}
