// Package memstore is the map-backed forum store used for development and
// tests. All state lives in process memory and is lost on restart.
package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/devquest/codenexus/internal/server/models"
	"github.com/devquest/codenexus/internal/server/storage"
)

// Store guards a state with a RWMutex. Reads share the lock; writes and
// transactions hold it exclusively.
type Store struct {
	mu sync.RWMutex
	st *state
}

var _ storage.Storage = (*Store)(nil)

type Option func(*state)

// WithClock replaces time.Now for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(st *state) { st.now = now }
}

// New returns a store seeded with the default categories and badges.
func New(opts ...Option) (*Store, error) {
	st := newState(time.Now)
	for _, o := range opts {
		o(st)
	}
	s := &Store{st: st}
	if err := storage.Seed(context.Background(), s); err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	return s, nil
}

// WithinTx runs fn with the write lock held. fn must only use tx; calling
// back into s would deadlock. When fn fails or panics every collection and
// id counter is restored to its state before the call.
func (s *Store) WithinTx(ctx context.Context, fn func(tx storage.Storage) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	committed := false
	defer func() {
		if !committed {
			s.st = snapshot
		}
	}()

	if err := fn(s.st); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *Store) Sessions() storage.SessionStore { return lockedSessions{s} }

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetUser(ctx, id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetUserByEmail(ctx, email)
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.CreateUser(ctx, u)
}

func (s *Store) UpdateUser(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.UpdateUser(ctx, id, upd)
}

func (s *Store) GetCategories(ctx context.Context) ([]*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetCategories(ctx)
}

func (s *Store) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetCategory(ctx, id)
}

func (s *Store) CreateCategory(ctx context.Context, c *models.Category) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.CreateCategory(ctx, c)
}

func (s *Store) GetThreads(ctx context.Context, page storage.Page) ([]*models.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetThreads(ctx, page)
}

func (s *Store) GetThreadsByCategory(ctx context.Context, categoryID int64, page storage.Page) ([]*models.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetThreadsByCategory(ctx, categoryID, page)
}

func (s *Store) GetThreadsByUser(ctx context.Context, userID int64, page storage.Page) ([]*models.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetThreadsByUser(ctx, userID, page)
}

func (s *Store) GetPopularThreads(ctx context.Context, page storage.Page) ([]*models.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetPopularThreads(ctx, page)
}

func (s *Store) GetThread(ctx context.Context, id int64) (*models.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetThread(ctx, id)
}

func (s *Store) CreateThread(ctx context.Context, t *models.Thread) (*models.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.CreateThread(ctx, t)
}

func (s *Store) UpdateThread(ctx context.Context, id int64, upd models.ThreadUpdate) (*models.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.UpdateThread(ctx, id, upd)
}

func (s *Store) IncrementThreadViewCount(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.IncrementThreadViewCount(ctx, id)
}

func (s *Store) CountThreadsByUser(ctx context.Context, userID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.CountThreadsByUser(ctx, userID)
}

func (s *Store) GetPosts(ctx context.Context, threadID int64, page storage.Page) ([]*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetPosts(ctx, threadID, page)
}

func (s *Store) GetPostsByUser(ctx context.Context, userID int64, page storage.Page) ([]*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetPostsByUser(ctx, userID, page)
}

func (s *Store) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetPost(ctx, id)
}

func (s *Store) CreatePost(ctx context.Context, p *models.Post) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.CreatePost(ctx, p)
}

func (s *Store) UpdatePost(ctx context.Context, id int64, upd models.PostUpdate) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.UpdatePost(ctx, id, upd)
}

func (s *Store) CountPostsByThread(ctx context.Context, threadID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.CountPostsByThread(ctx, threadID)
}

func (s *Store) CountPostsByUser(ctx context.Context, userID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.CountPostsByUser(ctx, userID)
}

func (s *Store) GetVotes(ctx context.Context, postID int64) ([]*models.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetVotes(ctx, postID)
}

func (s *Store) GetUserVote(ctx context.Context, userID, postID int64) (*models.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetUserVote(ctx, userID, postID)
}

func (s *Store) CreateOrUpdateVote(ctx context.Context, v *models.Vote) (*models.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.CreateOrUpdateVote(ctx, v)
}

func (s *Store) GetSubscriptions(ctx context.Context, userID int64) ([]*models.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetSubscriptions(ctx, userID)
}

func (s *Store) GetSubscription(ctx context.Context, userID int64, threadID, categoryID *int64) (*models.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetSubscription(ctx, userID, threadID, categoryID)
}

func (s *Store) GetSubscriptionByID(ctx context.Context, id int64) (*models.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetSubscriptionByID(ctx, id)
}

func (s *Store) GetSubscribers(ctx context.Context, threadID, categoryID int64) ([]*models.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetSubscribers(ctx, threadID, categoryID)
}

func (s *Store) CreateSubscription(ctx context.Context, sub *models.Subscription) (*models.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.CreateSubscription(ctx, sub)
}

func (s *Store) UpdateSubscription(ctx context.Context, id int64, upd models.SubscriptionUpdate) (*models.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.UpdateSubscription(ctx, id, upd)
}

func (s *Store) DeleteSubscription(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.DeleteSubscription(ctx, id)
}

func (s *Store) GetNotifications(ctx context.Context, userID int64, page storage.Page) ([]*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetNotifications(ctx, userID, page)
}

func (s *Store) GetUnreadNotificationCount(ctx context.Context, userID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetUnreadNotificationCount(ctx, userID)
}

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.CreateNotification(ctx, n)
}

func (s *Store) MarkNotificationAsRead(ctx context.Context, id int64) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.MarkNotificationAsRead(ctx, id)
}

func (s *Store) MarkAllNotificationsAsRead(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.MarkAllNotificationsAsRead(ctx, userID)
}

func (s *Store) GetFlags(ctx context.Context, status string, page storage.Page) ([]*models.Flag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetFlags(ctx, status, page)
}

func (s *Store) CreateFlag(ctx context.Context, f *models.Flag) (*models.Flag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.CreateFlag(ctx, f)
}

func (s *Store) UpdateFlagStatus(ctx context.Context, id int64, status string) (*models.Flag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.UpdateFlagStatus(ctx, id, status)
}

func (s *Store) GetBadges(ctx context.Context, filter models.BadgeFilter) ([]*models.Badge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetBadges(ctx, filter)
}

func (s *Store) GetBadge(ctx context.Context, id int64) (*models.Badge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetBadge(ctx, id)
}

func (s *Store) GetBadgeByName(ctx context.Context, name string) (*models.Badge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetBadgeByName(ctx, name)
}

func (s *Store) CreateBadge(ctx context.Context, b *models.Badge) (*models.Badge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.CreateBadge(ctx, b)
}

func (s *Store) UpdateBadge(ctx context.Context, id int64, upd models.BadgeUpdate) (*models.Badge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.UpdateBadge(ctx, id, upd)
}

func (s *Store) GetUserBadges(ctx context.Context, userID int64) ([]*models.UserBadgeWithBadge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetUserBadges(ctx, userID)
}

func (s *Store) GetUserBadge(ctx context.Context, userID, badgeID int64) (*models.UserBadge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetUserBadge(ctx, userID, badgeID)
}

func (s *Store) AwardBadge(ctx context.Context, userID, badgeID int64) (*models.UserBadge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.AwardBadge(ctx, userID, badgeID)
}

func (s *Store) UpdateUserBadgeDisplay(ctx context.Context, userID, badgeID int64, display bool) (*models.UserBadge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.UpdateUserBadgeDisplay(ctx, userID, badgeID, display)
}

func (s *Store) GetUserReputation(ctx context.Context, userID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetUserReputation(ctx, userID)
}

func (s *Store) UpdateUserReputation(ctx context.Context, userID int64, delta int) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.UpdateUserReputation(ctx, userID, delta)
}

func (s *Store) GetTopUsers(ctx context.Context, limit int) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetTopUsers(ctx, limit)
}

func (s *Store) SearchThreads(ctx context.Context, query string, page storage.Page) ([]*models.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.SearchThreads(ctx, query, page)
}

func (s *Store) SearchPosts(ctx context.Context, query string, page storage.Page) ([]*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.SearchPosts(ctx, query, page)
}
