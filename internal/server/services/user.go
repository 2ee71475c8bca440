// Package services contains server-side business logic: forum workflows,
// registration and sessions, and avatar uploads.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/devquest/codenexus/internal/common"
	"github.com/devquest/codenexus/internal/logging"
	"github.com/devquest/codenexus/internal/server/auth"
	"github.com/devquest/codenexus/internal/server/config"
	"github.com/devquest/codenexus/internal/server/models"
	"github.com/devquest/codenexus/internal/server/storage"
)

const minPasswordLen = 6

// TokenPair bundles a short-lived access token and a long-lived session
// token used for refresh and logout.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Registration is the input of Register.
type Registration struct {
	Name     string
	Email    string
	Password string
}

// UserService handles accounts and sessions:
//   - Register: create users and award the welcome badge
//   - Login: verify credentials and mint tokens
//   - Refresh: rotate the session token and mint a new access token
//   - Logout, Me, UpdateProfile, CleanupSessions
type UserService struct {
	store                       storage.Storage
	log                         logging.Logger
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	sessionValidityDuration     time.Duration
	now                         func() time.Time
}

func NewUserService(store storage.Storage, cfg *config.Config, log logging.Logger) *UserService {
	return &UserService{
		store:                       store,
		log:                         log.With("module", "users"),
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		sessionValidityDuration:     cfg.SessionValidityDuration,
		now:                         time.Now,
	}
}

// Register creates a user with a bcrypt password hash and awards the
// Newcomer badge. Emails are unique regardless of case.
func (s *UserService) Register(ctx context.Context, in Registration) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", common.ErrorValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", common.ErrorValidation)
	}
	if len(in.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, minPasswordLen)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	var user *models.User
	err = s.store.WithinTx(ctx, func(tx storage.Storage) error {
		_, err := tx.GetUserByEmail(ctx, email)
		if err == nil {
			return fmt.Errorf("%w: email already registered", common.ErrorAlreadyExists)
		}
		if !isNotFound(err) {
			return err
		}

		created, err := tx.CreateUser(ctx, &models.User{Name: name, Email: email, Password: hash})
		if err != nil {
			return fmt.Errorf("error creating user: %w", err)
		}

		badge, err := tx.GetBadgeByName(ctx, storage.BadgeNewcomer)
		switch {
		case err == nil:
			if _, err := tx.AwardBadge(ctx, created.ID, badge.ID); err != nil {
				return err
			}
		case !isNotFound(err):
			return err
		}

		user, err = tx.GetUser(ctx, created.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login verifies the password and, on success, opens a session.
// Unknown emails and wrong passwords both yield common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (*TokenPair, *models.User, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if isNotFound(err) {
			return nil, nil, common.ErrorUnauthorized
		}
		return nil, nil, common.ErrorInternal
	}

	ok, err := auth.CheckPassword(user.Password, password)
	if err != nil {
		s.log.Error(ctx, "stored password hash unusable", "user_id", user.ID, "error", err)
		return nil, nil, common.ErrorInternal
	}
	if !ok {
		return nil, nil, common.ErrorUnauthorized
	}

	pair, err := s.generateTokenPair(ctx, user.ID, s.store.Sessions())
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// Refresh validates a session token, rotates it transactionally, and
// returns a fresh TokenPair. Expired sessions yield common.ErrSessionExpired.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var pair *TokenPair
	err := s.store.WithinTx(ctx, func(tx storage.Storage) error {
		sessions := tx.Sessions()

		session, err := sessions.FindSession(ctx, refreshToken)
		if err != nil {
			if isNotFound(err) {
				return common.ErrorUnauthorized
			}
			return fmt.Errorf("error searching session: %w", err)
		}
		if session.Expires.Before(s.now()) {
			return common.ErrSessionExpired
		}

		if err := sessions.DeleteSession(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting session: %w", err)
		}
		pair, err = s.generateTokenPair(ctx, session.UserID, sessions)
		return err
	})
	if errors.Is(err, common.ErrSessionExpired) {
		_ = s.store.Sessions().DeleteSession(ctx, refreshToken)
	}
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout ends the session. Unknown tokens are ignored.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	err := s.store.Sessions().DeleteSession(ctx, refreshToken)
	if err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

// Authenticate resolves an access token to a user id.
func (s *UserService) Authenticate(accessToken string) (int64, error) {
	return auth.GetUserIDFromToken(accessToken, s.jwtSecret)
}

func (s *UserService) Me(ctx context.Context, userID int64) (*models.User, error) {
	return s.store.GetUser(ctx, userID)
}

// UpdateProfile applies a partial profile edit. Email and password are not
// part of models.UserUpdate and cannot be changed here.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, upd models.UserUpdate) (*models.User, error) {
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", common.ErrorValidation)
	}
	return s.store.UpdateUser(ctx, userID, upd)
}

// CleanupSessions drops every expired session.
func (s *UserService) CleanupSessions(ctx context.Context) (int, error) {
	n, err := s.store.Sessions().DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Debug(ctx, "expired sessions removed", "count", n)
	}
	return n, nil
}

// --- helpers below ---

func (s *UserService) generateAccessToken(userID int64) (string, error) {
	return auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *UserService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *UserService) generateTokenPair(ctx context.Context, userID int64, sessions storage.SessionStore) (*TokenPair, error) {
	access, err := s.generateAccessToken(userID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := sessions.CreateSession(ctx, refresh, userID, s.now().Add(s.sessionValidityDuration)); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
