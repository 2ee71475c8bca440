package services

import "github.com/devquest/codenexus/internal/server/models"

// CategoryRef is the category summary embedded in thread listings.
type CategoryRef struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// ThreadRef is the thread summary embedded in search hits and subscriptions.
type ThreadRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type ThreadView struct {
	*models.Thread
	User       *models.PublicUser `json:"user"`
	Category   *CategoryRef       `json:"category"`
	ReplyCount int                `json:"replyCount"`
}

// PostView decorates a post with its author, score and the caller's own vote
// (0 when the caller has not voted or is anonymous).
type PostView struct {
	*models.Post
	User     *models.PublicUser `json:"user"`
	Thread   *ThreadRef         `json:"thread,omitempty"`
	Score    int                `json:"score"`
	UserVote int                `json:"userVote"`
}

type VoteResult struct {
	Vote  *models.Vote `json:"vote"`
	Score int          `json:"score"`
}

type SubscriptionView struct {
	*models.Subscription
	Thread   *ThreadRef   `json:"thread"`
	Category *CategoryRef `json:"category"`
}

type SearchResult struct {
	Threads []*ThreadView `json:"threads"`
	Posts   []*PostView   `json:"posts"`
}

// Profile is a user with their latest activity.
type Profile struct {
	*models.User
	Threads []*models.Thread `json:"threads"`
	Posts   []*models.Post   `json:"posts"`
}

func categoryRef(c *models.Category) *CategoryRef {
	if c == nil {
		return nil
	}
	return &CategoryRef{ID: c.ID, Name: c.Name, Color: c.Color}
}

func threadRef(t *models.Thread) *ThreadRef {
	if t == nil {
		return nil
	}
	return &ThreadRef{ID: t.ID, Title: t.Title}
}
