package models

import "time"

// Thread is a discussion topic. UpdatedAt moves whenever a post is added.
type Thread struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	UserID     int64     `json:"userId"`
	CategoryID int64     `json:"categoryId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	ViewCount  int       `json:"viewCount"`
	IsPinned   bool      `json:"isPinned"`
	IsClosed   bool      `json:"isClosed"`
}

type ThreadUpdate struct {
	Title      *string `json:"title"`
	CategoryID *int64  `json:"categoryId"`
	IsPinned   *bool   `json:"isPinned"`
	IsClosed   *bool   `json:"isClosed"`
}

func (t *Thread) Apply(upd ThreadUpdate) {
	if upd.Title != nil {
		t.Title = *upd.Title
	}
	if upd.CategoryID != nil {
		t.CategoryID = *upd.CategoryID
	}
	if upd.IsPinned != nil {
		t.IsPinned = *upd.IsPinned
	}
	if upd.IsClosed != nil {
		t.IsClosed = *upd.IsClosed
	}
}
