// Package common defines shared constants and sentinel errors used across
// the storage, service and transport layers of CodeNexus. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal      = errors.New("internal error")
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrorForbidden     = errors.New("forbidden")
	ErrorAlreadyExists = errors.New("already exists")
	ErrorValidation    = errors.New("validation error")
	ErrorRateLimited   = errors.New("rate limited")

	// Forum rules.
	ErrorThreadClosed = errors.New("thread is closed")
	ErrorSelfVote     = errors.New("self-vote is not allowed")

	// Auth errors (invalid, malformed or expired token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Session lifecycle errors.
	ErrSessionExpired = errors.New("session expired")
)
