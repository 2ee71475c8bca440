package models

import "time"

// Post is a reply inside a thread. Deleted posts stay stored with
// IsDeleted set and are hidden from every read.
type Post struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	UserID    int64     `json:"userId"`
	ThreadID  int64     `json:"threadId"`
	ParentID  *int64    `json:"parentId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	IsDeleted bool      `json:"isDeleted"`
}

type PostUpdate struct {
	Content   *string `json:"content"`
	IsDeleted *bool   `json:"isDeleted"`
}

func (p *Post) Apply(upd PostUpdate) {
	if upd.Content != nil {
		p.Content = *upd.Content
	}
	if upd.IsDeleted != nil {
		p.IsDeleted = *upd.IsDeleted
	}
}
