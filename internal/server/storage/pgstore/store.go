// Package pgstore implements storage.Storage on PostgreSQL through the
// per-collection repositories.
package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/devquest/codenexus/internal/common"
	"github.com/devquest/codenexus/internal/dbx"
	"github.com/devquest/codenexus/internal/server/models"
	"github.com/devquest/codenexus/internal/server/repositories/repomanager"
	"github.com/devquest/codenexus/internal/server/repositories/threads"
	"github.com/devquest/codenexus/internal/server/storage"
)

// Store binds the repositories to either the pool or a running
// transaction. The transactional copy shares db but has inTx set.
type Store struct {
	db    *sql.DB
	q     dbx.DBTX
	inTx  bool
	repos repomanager.RepositoryManager
}

var _ storage.Storage = (*Store)(nil)

func New(db *sql.DB, repos repomanager.RepositoryManager) *Store {
	return &Store{db: db, q: db, repos: repos}
}

// Open connects with the pgx driver, applies migrations and seeds the
// catalog.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s := New(db, repos)
	if err := storage.Seed(ctx, s); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed: %w", err)
	}
	return s, nil
}

func (s *Store) bind(tx dbx.DBTX) *Store {
	return &Store{db: s.db, q: tx, inTx: true, repos: s.repos}
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx storage.Storage) error) error {
	if s.inTx {
		return fn(s)
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(s.bind(tx))
	})
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	if s.inTx {
		return nil
	}
	return s.db.Close()
}

// Users

func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.repos.Users(s.q).Get(ctx, id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repos.Users(s.q).GetByEmail(ctx, email)
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	rec := *u
	if rec.ProgrammingLanguages == nil {
		rec.ProgrammingLanguages = models.StringList{}
	}
	if rec.Expertise == nil {
		rec.Expertise = models.StringList{}
	}
	return s.repos.Users(s.q).Create(ctx, &rec)
}

func (s *Store) UpdateUser(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error) {
	return s.repos.Users(s.q).Update(ctx, id, upd)
}

// Categories

func (s *Store) GetCategories(ctx context.Context) ([]*models.Category, error) {
	return s.repos.Categories(s.q).List(ctx)
}

func (s *Store) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	return s.repos.Categories(s.q).Get(ctx, id)
}

func (s *Store) CreateCategory(ctx context.Context, c *models.Category) (*models.Category, error) {
	return s.repos.Categories(s.q).Create(ctx, c)
}

// Threads

func (s *Store) listThreads(ctx context.Context, f threads.Filter, page storage.Page) ([]*models.Thread, error) {
	page = page.Normalize(storage.DefaultPageSize)
	return s.repos.Threads(s.q).List(ctx, f, page.Limit, page.Offset)
}

func (s *Store) GetThreads(ctx context.Context, page storage.Page) ([]*models.Thread, error) {
	return s.listThreads(ctx, threads.Filter{}, page)
}

func (s *Store) GetThreadsByCategory(ctx context.Context, categoryID int64, page storage.Page) ([]*models.Thread, error) {
	return s.listThreads(ctx, threads.Filter{CategoryID: categoryID}, page)
}

func (s *Store) GetThreadsByUser(ctx context.Context, userID int64, page storage.Page) ([]*models.Thread, error) {
	return s.listThreads(ctx, threads.Filter{UserID: userID}, page)
}

func (s *Store) GetPopularThreads(ctx context.Context, page storage.Page) ([]*models.Thread, error) {
	return s.listThreads(ctx, threads.Filter{Popular: true}, page)
}

func (s *Store) GetThread(ctx context.Context, id int64) (*models.Thread, error) {
	return s.repos.Threads(s.q).Get(ctx, id)
}

func (s *Store) CreateThread(ctx context.Context, t *models.Thread) (*models.Thread, error) {
	return s.repos.Threads(s.q).Create(ctx, t)
}

func (s *Store) UpdateThread(ctx context.Context, id int64, upd models.ThreadUpdate) (*models.Thread, error) {
	return s.repos.Threads(s.q).Update(ctx, id, upd)
}

func (s *Store) IncrementThreadViewCount(ctx context.Context, id int64) error {
	return s.repos.Threads(s.q).IncrementViewCount(ctx, id)
}

func (s *Store) CountThreadsByUser(ctx context.Context, userID int64) (int, error) {
	return s.repos.Threads(s.q).CountByUser(ctx, userID)
}

// Posts

func (s *Store) GetPosts(ctx context.Context, threadID int64, page storage.Page) ([]*models.Post, error) {
	page = page.Normalize(storage.DefaultPostPageSize)
	return s.repos.Posts(s.q).ListByThread(ctx, threadID, page.Limit, page.Offset)
}

func (s *Store) GetPostsByUser(ctx context.Context, userID int64, page storage.Page) ([]*models.Post, error) {
	page = page.Normalize(storage.DefaultPageSize)
	return s.repos.Posts(s.q).ListByUser(ctx, userID, page.Limit, page.Offset)
}

func (s *Store) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	return s.repos.Posts(s.q).Get(ctx, id)
}

func (s *Store) CreatePost(ctx context.Context, p *models.Post) (*models.Post, error) {
	var created *models.Post
	err := s.WithinTx(ctx, func(tx storage.Storage) error {
		q := tx.(*Store).q
		var err error
		if created, err = s.repos.Posts(q).Create(ctx, p); err != nil {
			return err
		}
		return s.repos.Threads(q).Touch(ctx, created.ThreadID, created.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Store) UpdatePost(ctx context.Context, id int64, upd models.PostUpdate) (*models.Post, error) {
	return s.repos.Posts(s.q).Update(ctx, id, upd)
}

func (s *Store) CountPostsByThread(ctx context.Context, threadID int64) (int, error) {
	return s.repos.Posts(s.q).CountByThread(ctx, threadID)
}

func (s *Store) CountPostsByUser(ctx context.Context, userID int64) (int, error) {
	return s.repos.Posts(s.q).CountByUser(ctx, userID)
}

// Votes

func (s *Store) GetVotes(ctx context.Context, postID int64) ([]*models.Vote, error) {
	return s.repos.Votes(s.q).ListByPost(ctx, postID)
}

func (s *Store) GetUserVote(ctx context.Context, userID, postID int64) (*models.Vote, error) {
	return s.repos.Votes(s.q).Get(ctx, userID, postID)
}

func (s *Store) CreateOrUpdateVote(ctx context.Context, v *models.Vote) (*models.Vote, error) {
	var stored *models.Vote
	err := s.WithinTx(ctx, func(tx storage.Storage) error {
		q := tx.(*Store).q
		var err error
		if stored, err = s.repos.Votes(q).Upsert(ctx, v); err != nil {
			return err
		}
		// Soft-deleted posts still credit their author.
		owner, err := s.repos.Posts(q).Owner(ctx, v.PostID)
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		_, err = s.repos.Users(q).AddReputation(ctx, owner, v.Value)
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// Subscriptions

func (s *Store) GetSubscriptions(ctx context.Context, userID int64) ([]*models.Subscription, error) {
	return s.repos.Subscriptions(s.q).ListByUser(ctx, userID)
}

func (s *Store) GetSubscription(ctx context.Context, userID int64, threadID, categoryID *int64) (*models.Subscription, error) {
	return s.repos.Subscriptions(s.q).Find(ctx, userID, threadID, categoryID)
}

func (s *Store) GetSubscriptionByID(ctx context.Context, id int64) (*models.Subscription, error) {
	return s.repos.Subscriptions(s.q).Get(ctx, id)
}

func (s *Store) GetSubscribers(ctx context.Context, threadID, categoryID int64) ([]*models.Subscription, error) {
	return s.repos.Subscriptions(s.q).ListSubscribers(ctx, threadID, categoryID)
}

func (s *Store) CreateSubscription(ctx context.Context, sub *models.Subscription) (*models.Subscription, error) {
	return s.repos.Subscriptions(s.q).Create(ctx, sub)
}

func (s *Store) UpdateSubscription(ctx context.Context, id int64, upd models.SubscriptionUpdate) (*models.Subscription, error) {
	return s.repos.Subscriptions(s.q).Update(ctx, id, upd)
}

func (s *Store) DeleteSubscription(ctx context.Context, id int64) (bool, error) {
	return s.repos.Subscriptions(s.q).Delete(ctx, id)
}

// Notifications

func (s *Store) GetNotifications(ctx context.Context, userID int64, page storage.Page) ([]*models.Notification, error) {
	page = page.Normalize(storage.DefaultPageSize)
	return s.repos.Notifications(s.q).ListByUser(ctx, userID, page.Limit, page.Offset)
}

func (s *Store) GetUnreadNotificationCount(ctx context.Context, userID int64) (int, error) {
	return s.repos.Notifications(s.q).CountUnread(ctx, userID)
}

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	return s.repos.Notifications(s.q).Create(ctx, n)
}

func (s *Store) MarkNotificationAsRead(ctx context.Context, id int64) (*models.Notification, error) {
	return s.repos.Notifications(s.q).MarkRead(ctx, id)
}

func (s *Store) MarkAllNotificationsAsRead(ctx context.Context, userID int64) error {
	return s.repos.Notifications(s.q).MarkAllRead(ctx, userID)
}

// Flags

func (s *Store) GetFlags(ctx context.Context, status string, page storage.Page) ([]*models.Flag, error) {
	page = page.Normalize(storage.DefaultPageSize)
	return s.repos.Flags(s.q).List(ctx, status, page.Limit, page.Offset)
}

func (s *Store) CreateFlag(ctx context.Context, f *models.Flag) (*models.Flag, error) {
	return s.repos.Flags(s.q).Create(ctx, f)
}

func (s *Store) UpdateFlagStatus(ctx context.Context, id int64, status string) (*models.Flag, error) {
	return s.repos.Flags(s.q).UpdateStatus(ctx, id, status)
}

// Badges

func (s *Store) GetBadges(ctx context.Context, filter models.BadgeFilter) ([]*models.Badge, error) {
	return s.repos.Badges(s.q).List(ctx, filter)
}

func (s *Store) GetBadge(ctx context.Context, id int64) (*models.Badge, error) {
	return s.repos.Badges(s.q).Get(ctx, id)
}

func (s *Store) GetBadgeByName(ctx context.Context, name string) (*models.Badge, error) {
	return s.repos.Badges(s.q).GetByName(ctx, name)
}

func (s *Store) CreateBadge(ctx context.Context, b *models.Badge) (*models.Badge, error) {
	return s.repos.Badges(s.q).Create(ctx, b)
}

func (s *Store) UpdateBadge(ctx context.Context, id int64, upd models.BadgeUpdate) (*models.Badge, error) {
	return s.repos.Badges(s.q).Update(ctx, id, upd)
}

func (s *Store) GetUserBadges(ctx context.Context, userID int64) ([]*models.UserBadgeWithBadge, error) {
	return s.repos.UserBadges(s.q).ListByUser(ctx, userID)
}

func (s *Store) GetUserBadge(ctx context.Context, userID, badgeID int64) (*models.UserBadge, error) {
	return s.repos.UserBadges(s.q).Get(ctx, userID, badgeID)
}

func (s *Store) AwardBadge(ctx context.Context, userID, badgeID int64) (*models.UserBadge, error) {
	var ub *models.UserBadge
	err := s.WithinTx(ctx, func(tx storage.Storage) error {
		q := tx.(*Store).q
		badge, err := s.repos.Badges(q).Get(ctx, badgeID)
		if err != nil {
			return err
		}
		if _, err := s.repos.Users(q).Get(ctx, userID); err != nil {
			return err
		}

		var created bool
		if ub, created, err = s.repos.UserBadges(q).Insert(ctx, userID, badgeID); err != nil || !created {
			return err
		}

		if _, err := s.repos.Notifications(q).Create(ctx, &models.Notification{
			UserID:  userID,
			Type:    models.NotificationBadge,
			Content: storage.BadgeNotification(badge),
		}); err != nil {
			return err
		}
		_, err = s.repos.Users(q).AddReputation(ctx, userID, badge.ReputationPoints)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ub, nil
}

func (s *Store) UpdateUserBadgeDisplay(ctx context.Context, userID, badgeID int64, display bool) (*models.UserBadge, error) {
	return s.repos.UserBadges(s.q).UpdateDisplay(ctx, userID, badgeID, display)
}

// Reputation

func (s *Store) GetUserReputation(ctx context.Context, userID int64) (int, error) {
	u, err := s.repos.Users(s.q).Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	return u.Reputation, nil
}

func (s *Store) UpdateUserReputation(ctx context.Context, userID int64, delta int) (*models.User, error) {
	var user *models.User
	err := s.WithinTx(ctx, func(tx storage.Storage) error {
		if _, err := s.repos.Users(tx.(*Store).q).AddReputation(ctx, userID, delta); err != nil {
			return fmt.Errorf("user %d: %w", userID, err)
		}
		if _, err := storage.CheckAndAwardBadges(ctx, tx, userID); err != nil {
			return err
		}
		var err error
		user, err = tx.GetUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Store) GetTopUsers(ctx context.Context, limit int) ([]*models.User, error) {
	if limit <= 0 {
		limit = storage.DefaultTopUsers
	}
	return s.repos.Users(s.q).Top(ctx, limit)
}

// Search

func (s *Store) SearchThreads(ctx context.Context, query string, page storage.Page) ([]*models.Thread, error) {
	return s.listThreads(ctx, threads.Filter{Query: query}, page)
}

func (s *Store) SearchPosts(ctx context.Context, query string, page storage.Page) ([]*models.Post, error) {
	page = page.Normalize(storage.DefaultPageSize)
	return s.repos.Posts(s.q).Search(ctx, query, page.Limit, page.Offset)
}

// Sessions

func (s *Store) Sessions() storage.SessionStore {
	return sessionStore{s}
}

type sessionStore struct {
	s *Store
}

func (ss sessionStore) CreateSession(ctx context.Context, token string, userID int64, expires time.Time) error {
	return ss.s.repos.Sessions(ss.s.q).Create(ctx, token, userID, expires)
}

func (ss sessionStore) FindSession(ctx context.Context, token string) (*models.Session, error) {
	return ss.s.repos.Sessions(ss.s.q).Find(ctx, token)
}

func (ss sessionStore) DeleteSession(ctx context.Context, token string) error {
	return ss.s.repos.Sessions(ss.s.q).Delete(ctx, token)
}

func (ss sessionStore) DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error) {
	return ss.s.repos.Sessions(ss.s.q).DeleteExpired(ctx, now)
}
