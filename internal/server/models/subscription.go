package models

import "time"

// Subscription targets either a thread or a category.
type Subscription struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"userId"`
	ThreadID         *int64    `json:"threadId"`
	CategoryID       *int64    `json:"categoryId"`
	NotifyByEmail    bool      `json:"notifyByEmail"`
	NotifyInPlatform bool      `json:"notifyInPlatform"`
	CreatedAt        time.Time `json:"createdAt"`
}

type SubscriptionUpdate struct {
	NotifyByEmail    *bool `json:"notifyByEmail"`
	NotifyInPlatform *bool `json:"notifyInPlatform"`
}

func (s *Subscription) Apply(upd SubscriptionUpdate) {
	if upd.NotifyByEmail != nil {
		s.NotifyByEmail = *upd.NotifyByEmail
	}
	if upd.NotifyInPlatform != nil {
		s.NotifyInPlatform = *upd.NotifyInPlatform
	}
}
