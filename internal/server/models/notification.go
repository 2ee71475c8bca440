package models

import "time"

const (
	NotificationThreadReply  = "thread_reply"
	NotificationPostReply    = "post_reply"
	NotificationSubscription = "subscription"
	NotificationBadge        = "badge"
)

type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	RelatedID *int64    `json:"relatedId"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}
