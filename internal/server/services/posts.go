package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/devquest/codenexus/internal/common"
	"github.com/devquest/codenexus/internal/markup"
	"github.com/devquest/codenexus/internal/server/models"
	"github.com/devquest/codenexus/internal/server/storage"
)

// NewPost is the input of CreatePost.
type NewPost struct {
	ThreadID int64
	Content  string
	ParentID *int64
}

// Posts lists a thread's replies oldest first with rendered bodies. viewerID
// is 0 for anonymous callers.
func (s *ForumService) Posts(ctx context.Context, viewerID, threadID int64, page storage.Page) ([]*PostView, error) {
	if _, err := s.store.GetThread(ctx, threadID); err != nil {
		return nil, err
	}
	posts, err := s.store.GetPosts(ctx, threadID, page)
	if err != nil {
		return nil, err
	}

	views := make([]*PostView, 0, len(posts))
	for _, p := range posts {
		v, err := s.postView(ctx, viewerID, p)
		if err != nil {
			return nil, err
		}
		p.Content = markup.HighlightCode(p.Content)
		views = append(views, v)
	}
	return views, nil
}

// CreatePost adds a reply and notifies, in order, the thread owner, the
// parent post's author and every in-platform subscriber of the thread or
// its category. Nobody is notified about their own post or twice about the
// same post.
func (s *ForumService) CreatePost(ctx context.Context, userID int64, in NewPost) (*models.Post, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", common.ErrorValidation)
	}

	var post *models.Post
	err := s.store.WithinTx(ctx, func(tx storage.Storage) error {
		author, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		thread, err := tx.GetThread(ctx, in.ThreadID)
		if err != nil {
			return err
		}
		if thread.IsClosed {
			return common.ErrorThreadClosed
		}

		var parent *models.Post
		if in.ParentID != nil {
			if parent, err = tx.GetPost(ctx, *in.ParentID); err != nil {
				return err
			}
			if parent.ThreadID != thread.ID {
				return fmt.Errorf("%w: parent post belongs to another thread", common.ErrorValidation)
			}
		}

		post, err = tx.CreatePost(ctx, &models.Post{
			Content:  in.Content,
			UserID:   userID,
			ThreadID: thread.ID,
			ParentID: in.ParentID,
		})
		if err != nil {
			return err
		}

		notified := map[int64]bool{userID: true}
		notify := func(recipient int64, kind, content string) error {
			if notified[recipient] {
				return nil
			}
			notified[recipient] = true
			postID := post.ID
			_, err := tx.CreateNotification(ctx, &models.Notification{
				UserID:    recipient,
				Type:      kind,
				Content:   content,
				RelatedID: &postID,
			})
			return err
		}

		if err := notify(thread.UserID, models.NotificationThreadReply,
			fmt.Sprintf("%s replied to your thread \"%s\"", author.Name, thread.Title)); err != nil {
			return err
		}
		if parent != nil {
			if err := notify(parent.UserID, models.NotificationPostReply,
				fmt.Sprintf("%s replied to your post", author.Name)); err != nil {
				return err
			}
		}

		subs, err := tx.GetSubscribers(ctx, thread.ID, thread.CategoryID)
		if err != nil {
			return err
		}
		for _, sub := range subs {
			if !sub.NotifyInPlatform {
				continue
			}
			if err := notify(sub.UserID, models.NotificationSubscription,
				fmt.Sprintf("New activity in subscribed thread \"%s\"", thread.Title)); err != nil {
				return err
			}
		}

		_, err = storage.CheckAndAwardBadges(ctx, tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "post created", "post_id", post.ID, "thread_id", post.ThreadID, "user_id", userID)
	return post, nil
}

func (s *ForumService) UpdatePost(ctx context.Context, userID, postID int64, content string) (*models.Post, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is required", common.ErrorValidation)
	}
	return s.editOwnPost(ctx, userID, postID, models.PostUpdate{Content: &content})
}

// DeletePost hides the post; it stays stored with IsDeleted set.
func (s *ForumService) DeletePost(ctx context.Context, userID, postID int64) error {
	deleted := true
	_, err := s.editOwnPost(ctx, userID, postID, models.PostUpdate{IsDeleted: &deleted})
	if err == nil {
		s.log.Info(ctx, "post deleted", "post_id", postID, "user_id", userID)
	}
	return err
}

func (s *ForumService) editOwnPost(ctx context.Context, userID, postID int64, upd models.PostUpdate) (*models.Post, error) {
	var post *models.Post
	err := s.store.WithinTx(ctx, func(tx storage.Storage) error {
		p, err := tx.GetPost(ctx, postID)
		if err != nil {
			return err
		}
		if p.UserID != userID {
			return common.ErrorForbidden
		}
		post, err = tx.UpdatePost(ctx, postID, upd)
		return err
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// Vote records the caller's vote on someone else's post. Any value other
// than 1 counts as a downvote. The post owner's badge ladder runs afterwards.
func (s *ForumService) Vote(ctx context.Context, userID, postID int64, value int) (*VoteResult, error) {
	if value != models.VoteUp {
		value = models.VoteDown
	}

	var res VoteResult
	err := s.store.WithinTx(ctx, func(tx storage.Storage) error {
		post, err := tx.GetPost(ctx, postID)
		if err != nil {
			return err
		}
		if post.UserID == userID {
			return common.ErrorSelfVote
		}

		if res.Vote, err = tx.CreateOrUpdateVote(ctx, &models.Vote{UserID: userID, PostID: postID, Value: value}); err != nil {
			return err
		}
		if res.Score, err = score(ctx, tx, postID); err != nil {
			return err
		}

		_, err = storage.CheckAndAwardBadges(ctx, tx, post.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *ForumService) postView(ctx context.Context, viewerID int64, p *models.Post) (*PostView, error) {
	v := &PostView{Post: p}

	u, err := s.lookupUser(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if u != nil {
		v.User = u.Public()
	}

	if v.Score, err = score(ctx, s.store, p.ID); err != nil {
		return nil, err
	}

	if viewerID != 0 {
		vote, err := s.store.GetUserVote(ctx, viewerID, p.ID)
		if err != nil && !isNotFound(err) {
			return nil, err
		}
		if vote != nil {
			v.UserVote = vote.Value
		}
	}
	return v, nil
}

func score(ctx context.Context, s storage.VoteStore, postID int64) (int, error) {
	votes, err := s.GetVotes(ctx, postID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, v := range votes {
		total += v.Value
	}
	return total, nil
}
