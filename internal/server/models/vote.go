package models

import "time"

const (
	VoteUp   = 1
	VoteDown = -1
)

// Vote is keyed by (UserID, PostID).
type Vote struct {
	UserID    int64     `json:"userId"`
	PostID    int64     `json:"postId"`
	Value     int       `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
}
