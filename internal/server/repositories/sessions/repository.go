// Package sessions declares the repository contract for login sessions.
package sessions

import (
	"context"
	"time"

	"github.com/devquest/codenexus/internal/server/models"
)

type Repository interface {
	// Create stores an opaque session token for userID valid until expires.
	Create(ctx context.Context, token string, userID int64, expires time.Time) error

	// Find returns common.ErrorNotFound when the token is absent.
	Find(ctx context.Context, token string) (*models.Session, error)

	// Delete removes a session. Deleting a missing token is not an error.
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes sessions that expired at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
