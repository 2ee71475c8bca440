package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/devquest/codenexus/internal/common"
	"github.com/devquest/codenexus/internal/logging"
	"github.com/devquest/codenexus/internal/server/models"
	"github.com/devquest/codenexus/internal/server/storage"
)

// ForumService implements the forum workflows on top of storage.Storage.
// Every multi-step write runs inside a single storage transaction.
type ForumService struct {
	store storage.Storage
	log   logging.Logger
}

func NewForumService(store storage.Storage, log logging.Logger) *ForumService {
	return &ForumService{store: store, log: log.With("module", "forum")}
}

// NewThread is the input of CreateThread. Content, when present, becomes
// the thread's first post.
type NewThread struct {
	CategoryID int64
	Title      string
	Content    string
}

func (s *ForumService) Categories(ctx context.Context) ([]*models.Category, error) {
	return s.store.GetCategories(ctx)
}

func (s *ForumService) Category(ctx context.Context, id int64) (*models.Category, error) {
	return s.store.GetCategory(ctx, id)
}

// Threads lists threads newest first.
func (s *ForumService) Threads(ctx context.Context, page storage.Page) ([]*ThreadView, error) {
	threads, err := s.store.GetThreads(ctx, page)
	if err != nil {
		return nil, err
	}
	return s.threadViews(ctx, threads)
}

func (s *ForumService) PopularThreads(ctx context.Context, page storage.Page) ([]*ThreadView, error) {
	threads, err := s.store.GetPopularThreads(ctx, page)
	if err != nil {
		return nil, err
	}
	return s.threadViews(ctx, threads)
}

func (s *ForumService) CategoryThreads(ctx context.Context, categoryID int64, page storage.Page) ([]*ThreadView, error) {
	if _, err := s.store.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	threads, err := s.store.GetThreadsByCategory(ctx, categoryID, page)
	if err != nil {
		return nil, err
	}
	return s.threadViews(ctx, threads)
}

// ViewThread returns a thread and counts the view.
func (s *ForumService) ViewThread(ctx context.Context, id int64) (*ThreadView, error) {
	if _, err := s.store.GetThread(ctx, id); err != nil {
		return nil, err
	}
	if err := s.store.IncrementThreadViewCount(ctx, id); err != nil {
		return nil, err
	}
	t, err := s.store.GetThread(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.threadView(ctx, t)
}

// CreateThread opens a thread, stores its first post, subscribes the author
// and runs the badge ladder for them.
func (s *ForumService) CreateThread(ctx context.Context, userID int64, in NewThread) (*models.Thread, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", common.ErrorValidation)
	}

	var thread *models.Thread
	err := s.store.WithinTx(ctx, func(tx storage.Storage) error {
		if _, err := tx.GetCategory(ctx, in.CategoryID); err != nil {
			return err
		}

		var err error
		thread, err = tx.CreateThread(ctx, &models.Thread{Title: title, UserID: userID, CategoryID: in.CategoryID})
		if err != nil {
			return err
		}

		if in.Content != "" {
			if _, err := tx.CreatePost(ctx, &models.Post{Content: in.Content, UserID: userID, ThreadID: thread.ID}); err != nil {
				return err
			}
		}

		threadID := thread.ID
		if _, err := tx.CreateSubscription(ctx, &models.Subscription{
			UserID:           userID,
			ThreadID:         &threadID,
			NotifyByEmail:    true,
			NotifyInPlatform: true,
		}); err != nil {
			return err
		}

		_, err = storage.CheckAndAwardBadges(ctx, tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "thread created", "thread_id", thread.ID, "user_id", userID)
	return thread, nil
}

// UpdateThread lets the owner edit title, category, pinned and closed flags.
func (s *ForumService) UpdateThread(ctx context.Context, userID, threadID int64, upd models.ThreadUpdate) (*models.Thread, error) {
	var thread *models.Thread
	err := s.store.WithinTx(ctx, func(tx storage.Storage) error {
		t, err := tx.GetThread(ctx, threadID)
		if err != nil {
			return err
		}
		if t.UserID != userID {
			return common.ErrorForbidden
		}
		if upd.CategoryID != nil {
			if _, err := tx.GetCategory(ctx, *upd.CategoryID); err != nil {
				return err
			}
		}
		thread, err = tx.UpdateThread(ctx, threadID, upd)
		return err
	})
	if err != nil {
		return nil, err
	}
	return thread, nil
}

func (s *ForumService) threadViews(ctx context.Context, threads []*models.Thread) ([]*ThreadView, error) {
	views := make([]*ThreadView, 0, len(threads))
	for _, t := range threads {
		v, err := s.threadView(ctx, t)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *ForumService) threadView(ctx context.Context, t *models.Thread) (*ThreadView, error) {
	v := &ThreadView{Thread: t}

	u, err := s.lookupUser(ctx, t.UserID)
	if err != nil {
		return nil, err
	}
	if u != nil {
		v.User = u.Public()
	}

	c, err := s.store.GetCategory(ctx, t.CategoryID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}
	v.Category = categoryRef(c)

	if v.ReplyCount, err = s.store.CountPostsByThread(ctx, t.ID); err != nil {
		return nil, err
	}
	return v, nil
}

// lookupUser returns nil for an author that no longer exists.
func (s *ForumService) lookupUser(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	return u, err
}
