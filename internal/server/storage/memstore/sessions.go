package memstore

import (
	"context"
	"time"

	"github.com/devquest/codenexus/internal/server/models"
)

type stateSessions struct {
	st *state
}

func (s stateSessions) CreateSession(_ context.Context, token string, userID int64, expires time.Time) error {
	s.st.sessions[token] = models.Session{Token: token, UserID: userID, Expires: expires, CreatedAt: s.st.now()}
	return nil
}

func (s stateSessions) FindSession(_ context.Context, token string) (*models.Session, error) {
	sess, ok := s.st.sessions[token]
	if !ok {
		return nil, notFound("session", "token")
	}
	return &sess, nil
}

func (s stateSessions) DeleteSession(_ context.Context, token string) error {
	delete(s.st.sessions, token)
	return nil
}

func (s stateSessions) DeleteExpiredSessions(_ context.Context, now time.Time) (int, error) {
	n := 0
	for token, sess := range s.st.sessions {
		if !sess.Expires.After(now) {
			delete(s.st.sessions, token)
			n++
		}
	}
	return n, nil
}

type lockedSessions struct {
	s *Store
}

func (l lockedSessions) CreateSession(ctx context.Context, token string, userID int64, expires time.Time) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.s.st.Sessions().CreateSession(ctx, token, userID, expires)
}

func (l lockedSessions) FindSession(ctx context.Context, token string) (*models.Session, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	return l.s.st.Sessions().FindSession(ctx, token)
}

func (l lockedSessions) DeleteSession(ctx context.Context, token string) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.s.st.Sessions().DeleteSession(ctx, token)
}

func (l lockedSessions) DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.s.st.Sessions().DeleteExpiredSessions(ctx, now)
}
