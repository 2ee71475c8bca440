package models

import "time"

const (
	FlagPending   = "pending"
	FlagResolved  = "resolved"
	FlagDismissed = "dismissed"
)

// Flag is a moderation report against a post.
type Flag struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	PostID    int64     `json:"postId"`
	Reason    string    `json:"reason"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func ValidFlagStatus(status string) bool {
	switch status {
	case FlagPending, FlagResolved, FlagDismissed:
		return true
	}
	return false
}
