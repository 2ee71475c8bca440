// Package storage defines the forum data store contract shared by the
// in-memory and PostgreSQL backends.
//
// Get and Update operations return a wrapped common.ErrorNotFound for
// missing ids. List operations return an empty slice, never an error, when
// nothing matches. Soft-deleted posts are invisible to every read.
package storage

import (
	"context"
	"time"

	"github.com/devquest/codenexus/internal/server/models"
)

type UserStore interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	// GetUserByEmail matches case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error)
}

type CategoryStore interface {
	GetCategories(ctx context.Context) ([]*models.Category, error)
	GetCategory(ctx context.Context, id int64) (*models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) (*models.Category, error)
}

type ThreadStore interface {
	// Thread lists are newest first.
	GetThreads(ctx context.Context, page Page) ([]*models.Thread, error)
	GetThreadsByCategory(ctx context.Context, categoryID int64, page Page) ([]*models.Thread, error)
	GetThreadsByUser(ctx context.Context, userID int64, page Page) ([]*models.Thread, error)
	// GetPopularThreads orders by view count, highest first.
	GetPopularThreads(ctx context.Context, page Page) ([]*models.Thread, error)
	GetThread(ctx context.Context, id int64) (*models.Thread, error)
	CreateThread(ctx context.Context, t *models.Thread) (*models.Thread, error)
	UpdateThread(ctx context.Context, id int64, upd models.ThreadUpdate) (*models.Thread, error)
	IncrementThreadViewCount(ctx context.Context, id int64) error
	CountThreadsByUser(ctx context.Context, userID int64) (int, error)
}

type PostStore interface {
	// GetPosts lists a thread's replies oldest first, 100 per page by default.
	GetPosts(ctx context.Context, threadID int64, page Page) ([]*models.Post, error)
	GetPostsByUser(ctx context.Context, userID int64, page Page) ([]*models.Post, error)
	GetPost(ctx context.Context, id int64) (*models.Post, error)
	// CreatePost also bumps the parent thread's UpdatedAt.
	CreatePost(ctx context.Context, p *models.Post) (*models.Post, error)
	UpdatePost(ctx context.Context, id int64, upd models.PostUpdate) (*models.Post, error)
	CountPostsByThread(ctx context.Context, threadID int64) (int, error)
	CountPostsByUser(ctx context.Context, userID int64) (int, error)
}

type VoteStore interface {
	GetVotes(ctx context.Context, postID int64) ([]*models.Vote, error)
	GetUserVote(ctx context.Context, userID, postID int64) (*models.Vote, error)
	// CreateOrUpdateVote overwrites any earlier vote of the same user on the
	// post and credits the raw value to the post owner's reputation. The
	// earlier value is not subtracted.
	CreateOrUpdateVote(ctx context.Context, v *models.Vote) (*models.Vote, error)
}

type SubscriptionStore interface {
	GetSubscriptions(ctx context.Context, userID int64) ([]*models.Subscription, error)
	// GetSubscription returns the user's first subscription matching the
	// thread or the category.
	GetSubscription(ctx context.Context, userID int64, threadID, categoryID *int64) (*models.Subscription, error)
	GetSubscriptionByID(ctx context.Context, id int64) (*models.Subscription, error)
	GetSubscribers(ctx context.Context, threadID, categoryID int64) ([]*models.Subscription, error)
	CreateSubscription(ctx context.Context, s *models.Subscription) (*models.Subscription, error)
	UpdateSubscription(ctx context.Context, id int64, upd models.SubscriptionUpdate) (*models.Subscription, error)
	DeleteSubscription(ctx context.Context, id int64) (bool, error)
}

type NotificationStore interface {
	GetNotifications(ctx context.Context, userID int64, page Page) ([]*models.Notification, error)
	GetUnreadNotificationCount(ctx context.Context, userID int64) (int, error)
	CreateNotification(ctx context.Context, n *models.Notification) (*models.Notification, error)
	MarkNotificationAsRead(ctx context.Context, id int64) (*models.Notification, error)
	MarkAllNotificationsAsRead(ctx context.Context, userID int64) error
}

type FlagStore interface {
	GetFlags(ctx context.Context, status string, page Page) ([]*models.Flag, error)
	CreateFlag(ctx context.Context, f *models.Flag) (*models.Flag, error)
	UpdateFlagStatus(ctx context.Context, id int64, status string) (*models.Flag, error)
}

type BadgeStore interface {
	// GetBadges lists the catalog by ascending level.
	GetBadges(ctx context.Context, filter models.BadgeFilter) ([]*models.Badge, error)
	GetBadge(ctx context.Context, id int64) (*models.Badge, error)
	// GetBadgeByName matches case-insensitively.
	GetBadgeByName(ctx context.Context, name string) (*models.Badge, error)
	CreateBadge(ctx context.Context, b *models.Badge) (*models.Badge, error)
	UpdateBadge(ctx context.Context, id int64, upd models.BadgeUpdate) (*models.Badge, error)

	// GetUserBadges puts displayed badges first, then higher levels, then
	// the most recently earned.
	GetUserBadges(ctx context.Context, userID int64) ([]*models.UserBadgeWithBadge, error)
	GetUserBadge(ctx context.Context, userID, badgeID int64) (*models.UserBadge, error)
	// AwardBadge is idempotent. A fresh award notifies the user and credits
	// the badge's reputation points; an existing award is returned as is.
	AwardBadge(ctx context.Context, userID, badgeID int64) (*models.UserBadge, error)
	UpdateUserBadgeDisplay(ctx context.Context, userID, badgeID int64, display bool) (*models.UserBadge, error)
}

type ReputationStore interface {
	GetUserReputation(ctx context.Context, userID int64) (int, error)
	UpdateUserReputation(ctx context.Context, userID int64, delta int) (*models.User, error)
	// GetTopUsers orders by reputation, ties by ascending id. Default limit 10.
	GetTopUsers(ctx context.Context, limit int) ([]*models.User, error)
}

type SearchStore interface {
	SearchThreads(ctx context.Context, query string, page Page) ([]*models.Thread, error)
	SearchPosts(ctx context.Context, query string, page Page) ([]*models.Post, error)
}

// SessionStore keeps login sessions for the auth layer.
type SessionStore interface {
	CreateSession(ctx context.Context, token string, userID int64, expires time.Time) error
	FindSession(ctx context.Context, token string) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error)
}

// Storage is the complete forum store.
type Storage interface {
	UserStore
	CategoryStore
	ThreadStore
	PostStore
	VoteStore
	SubscriptionStore
	NotificationStore
	FlagStore
	BadgeStore
	ReputationStore
	SearchStore

	Sessions() SessionStore

	// WithinTx runs fn against a transactional view of the store. Writes
	// made through tx become visible together, or not at all when fn
	// returns an error. Calling WithinTx on tx joins the running transaction.
	WithinTx(ctx context.Context, fn func(tx Storage) error) error

	Ping(ctx context.Context) error
	Close() error
}
