package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/devquest/codenexus/internal/common"
	"github.com/devquest/codenexus/internal/server/models"
	"github.com/devquest/codenexus/internal/server/storage"
)

const (
	minSearchQueryLen = 3
	profileItems      = 5
)

func isNotFound(err error) bool { return errors.Is(err, common.ErrorNotFound) }

// NewSubscription targets a thread or a category.
type NewSubscription struct {
	ThreadID         *int64
	CategoryID       *int64
	NotifyByEmail    bool
	NotifyInPlatform bool
}

func (s *ForumService) Subscriptions(ctx context.Context, userID int64) ([]*SubscriptionView, error) {
	subs, err := s.store.GetSubscriptions(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]*SubscriptionView, 0, len(subs))
	for _, sub := range subs {
		v := &SubscriptionView{Subscription: sub}
		if sub.ThreadID != nil {
			t, err := s.store.GetThread(ctx, *sub.ThreadID)
			if err != nil && !isNotFound(err) {
				return nil, err
			}
			v.Thread = threadRef(t)
		}
		if sub.CategoryID != nil {
			c, err := s.store.GetCategory(ctx, *sub.CategoryID)
			if err != nil && !isNotFound(err) {
				return nil, err
			}
			if c != nil {
				v.Category = &CategoryRef{ID: c.ID, Name: c.Name}
			}
		}
		views = append(views, v)
	}
	return views, nil
}

// Subscribe fails with common.ErrorAlreadyExists when the user already
// follows the thread or the category.
func (s *ForumService) Subscribe(ctx context.Context, userID int64, in NewSubscription) (*models.Subscription, error) {
	if in.ThreadID == nil && in.CategoryID == nil {
		return nil, fmt.Errorf("%w: threadId or categoryId is required", common.ErrorValidation)
	}

	var sub *models.Subscription
	err := s.store.WithinTx(ctx, func(tx storage.Storage) error {
		if in.ThreadID != nil {
			if _, err := tx.GetThread(ctx, *in.ThreadID); err != nil {
				return err
			}
		}
		if in.CategoryID != nil {
			if _, err := tx.GetCategory(ctx, *in.CategoryID); err != nil {
				return err
			}
		}

		_, err := tx.GetSubscription(ctx, userID, in.ThreadID, in.CategoryID)
		if err == nil {
			return fmt.Errorf("%w: already subscribed", common.ErrorAlreadyExists)
		}
		if !isNotFound(err) {
			return err
		}

		sub, err = tx.CreateSubscription(ctx, &models.Subscription{
			UserID:           userID,
			ThreadID:         in.ThreadID,
			CategoryID:       in.CategoryID,
			NotifyByEmail:    in.NotifyByEmail,
			NotifyInPlatform: in.NotifyInPlatform,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *ForumService) Unsubscribe(ctx context.Context, userID, subscriptionID int64) error {
	return s.store.WithinTx(ctx, func(tx storage.Storage) error {
		sub, err := tx.GetSubscriptionByID(ctx, subscriptionID)
		if err != nil {
			return err
		}
		if sub.UserID != userID {
			return common.ErrorForbidden
		}
		_, err = tx.DeleteSubscription(ctx, subscriptionID)
		return err
	})
}

func (s *ForumService) Notifications(ctx context.Context, userID int64, page storage.Page) ([]*models.Notification, error) {
	return s.store.GetNotifications(ctx, userID, page)
}

func (s *ForumService) UnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.store.GetUnreadNotificationCount(ctx, userID)
}

// MarkRead marks one of the caller's notifications as read. Marking someone
// else's notification is rolled back and reported as forbidden.
func (s *ForumService) MarkRead(ctx context.Context, userID, notificationID int64) error {
	return s.store.WithinTx(ctx, func(tx storage.Storage) error {
		n, err := tx.MarkNotificationAsRead(ctx, notificationID)
		if err != nil {
			return err
		}
		if n.UserID != userID {
			return common.ErrorForbidden
		}
		return nil
	})
}

func (s *ForumService) MarkAllRead(ctx context.Context, userID int64) error {
	return s.store.MarkAllNotificationsAsRead(ctx, userID)
}

func (s *ForumService) FlagPost(ctx context.Context, userID, postID int64, reason string) (*models.Flag, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason is required", common.ErrorValidation)
	}
	if _, err := s.store.GetPost(ctx, postID); err != nil {
		return nil, err
	}
	f, err := s.store.CreateFlag(ctx, &models.Flag{UserID: userID, PostID: postID, Reason: reason})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "post flagged", "flag_id", f.ID, "post_id", postID, "user_id", userID)
	return f, nil
}

// Flags lists moderation flags, optionally by status.
func (s *ForumService) Flags(ctx context.Context, status string, page storage.Page) ([]*models.Flag, error) {
	if status != "" && !models.ValidFlagStatus(status) {
		return nil, fmt.Errorf("%w: unknown flag status %q", common.ErrorValidation, status)
	}
	return s.store.GetFlags(ctx, status, page)
}

func (s *ForumService) ResolveFlag(ctx context.Context, flagID int64, status string) (*models.Flag, error) {
	if !models.ValidFlagStatus(status) {
		return nil, fmt.Errorf("%w: unknown flag status %q", common.ErrorValidation, status)
	}
	return s.store.UpdateFlagStatus(ctx, flagID, status)
}

// Search matches threads by title and posts by content, case-insensitively.
// The trimmed query must be at least three characters long.
func (s *ForumService) Search(ctx context.Context, query string, page storage.Page) (*SearchResult, error) {
	if len([]rune(strings.TrimSpace(query))) < minSearchQueryLen {
		return nil, fmt.Errorf("%w: search query must be at least %d characters", common.ErrorValidation, minSearchQueryLen)
	}

	threads, err := s.store.SearchThreads(ctx, query, page)
	if err != nil {
		return nil, err
	}
	posts, err := s.store.SearchPosts(ctx, query, page)
	if err != nil {
		return nil, err
	}

	res := &SearchResult{Threads: make([]*ThreadView, 0, len(threads)), Posts: make([]*PostView, 0, len(posts))}
	for _, t := range threads {
		v := &ThreadView{Thread: t}
		if u, err := s.lookupUser(ctx, t.UserID); err != nil {
			return nil, err
		} else if u != nil {
			v.User = &models.PublicUser{ID: u.ID, Name: u.Name}
		}
		c, err := s.store.GetCategory(ctx, t.CategoryID)
		if err != nil && !isNotFound(err) {
			return nil, err
		}
		if c != nil {
			v.Category = &CategoryRef{ID: c.ID, Name: c.Name}
		}
		res.Threads = append(res.Threads, v)
	}
	for _, p := range posts {
		v := &PostView{Post: p}
		if u, err := s.lookupUser(ctx, p.UserID); err != nil {
			return nil, err
		} else if u != nil {
			v.User = &models.PublicUser{ID: u.ID, Name: u.Name}
		}
		t, err := s.store.GetThread(ctx, p.ThreadID)
		if err != nil && !isNotFound(err) {
			return nil, err
		}
		v.Thread = threadRef(t)
		res.Posts = append(res.Posts, v)
	}
	return res, nil
}

// Profile returns the user with their five newest threads and posts.
func (s *ForumService) Profile(ctx context.Context, userID int64) (*Profile, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	threads, err := s.store.GetThreadsByUser(ctx, userID, storage.Page{Limit: profileItems})
	if err != nil {
		return nil, err
	}
	posts, err := s.store.GetPostsByUser(ctx, userID, storage.Page{Limit: profileItems})
	if err != nil {
		return nil, err
	}
	return &Profile{User: u, Threads: threads, Posts: posts}, nil
}

func (s *ForumService) TopUsers(ctx context.Context, limit int) ([]*models.PublicUser, error) {
	users, err := s.store.GetTopUsers(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*models.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

func (s *ForumService) Reputation(ctx context.Context, userID int64) (int, error) {
	return s.store.GetUserReputation(ctx, userID)
}

func (s *ForumService) Badges(ctx context.Context, filter models.BadgeFilter) ([]*models.Badge, error) {
	return s.store.GetBadges(ctx, filter)
}

func (s *ForumService) Badge(ctx context.Context, id int64) (*models.Badge, error) {
	return s.store.GetBadge(ctx, id)
}

func (s *ForumService) UserBadges(ctx context.Context, userID int64) ([]*models.UserBadgeWithBadge, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.GetUserBadges(ctx, userID)
}

// SetBadgeDisplay toggles whether an earned badge shows on the profile.
// Only the badge holder may change it.
func (s *ForumService) SetBadgeDisplay(ctx context.Context, callerID, userID, badgeID int64, display bool) (*models.UserBadge, error) {
	if callerID != userID {
		return nil, common.ErrorForbidden
	}
	return s.store.UpdateUserBadgeDisplay(ctx, userID, badgeID, display)
}
