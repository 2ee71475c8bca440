package models

import "time"

// Session is a server-side login session addressed by an opaque token.
type Session struct {
	Token     string
	UserID    int64
	Expires   time.Time
	CreatedAt time.Time
}
