// Package service holds the session manager: the login/refresh/logout state
// machine operating on the single refresh-token slot of each user record.
package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/iliyamo/user-account-service/internal/config"
	"github.com/iliyamo/user-account-service/internal/model"
	"github.com/iliyamo/user-account-service/internal/repository"
	"github.com/iliyamo/user-account-service/internal/utils"
)

// CredentialStore is the persistence surface the session manager needs.
// *repository.UserRepo satisfies it; tests plug in an in-memory fake.
type CredentialStore interface {
	GetByID(ctx context.Context, id string) (model.User, error)
	GetByUsernameOrEmail(ctx context.Context, username, email string) (model.User, error)
	SetRefreshToken(ctx context.Context, id string, token *string) error
}

// TokenPair is a freshly minted access/refresh pair.  The refresh token has
// already been persisted as the user's current session slot when a pair is
// returned.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Session is the result of a successful login.
type Session struct {
	TokenPair
	User model.PublicUser
}

// SessionManager orchestrates the token lifecycle.  Each user moves through
// anonymous -> authenticated -> refreshed* -> revoked; issuing a new refresh
// token implicitly invalidates the previous one because only the stored
// instance is accepted.
type SessionManager struct {
	cfg   config.Config
	store CredentialStore
}

func NewSessionManager(cfg config.Config, store CredentialStore) *SessionManager {
	return &SessionManager{cfg: cfg, store: store}
}

// Login verifies credentials and opens a session.  At least one of username
// or email must be present.  A successful login overwrites any previously
// stored refresh token, so logging in elsewhere ends the earlier session.
func (m *SessionManager) Login(ctx context.Context, username, email, password string) (Session, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" && email == "" {
		return Session{}, BadRequest("username or email is required")
	}

	user, err := m.store.GetByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return Session{}, NotFound("user does not exist")
		}
		log.Printf("session: user lookup failed: %v", err)
		return Session{}, Internal("failed to look up user")
	}

	if !utils.VerifyPassword(user.PasswordHash, password) {
		return Session{}, Unauthorized("invalid user credentials")
	}

	pair, err := m.issuePair(ctx, user.ID)
	if err != nil {
		return Session{}, err
	}
	return Session{TokenPair: pair, User: user.Public()}, nil
}

// Logout revokes the user's session by clearing the stored refresh token.
// It is idempotent: clearing an already empty slot succeeds.
func (m *SessionManager) Logout(ctx context.Context, userID string) error {
	if err := m.store.SetRefreshToken(ctx, userID, nil); err != nil {
		log.Printf("session: clear refresh token failed: %v", err)
		return Internal("failed to log out")
	}
	return nil
}

// Refresh exchanges a valid refresh token for a new pair, rotating the
// stored token.  The incoming token must verify cryptographically AND be
// byte-for-byte equal to the stored slot; a cryptographically valid token
// that was rotated out (or cleared by logout) is rejected, which is how
// replay of stale tokens is detected.
func (m *SessionManager) Refresh(ctx context.Context, raw string) (TokenPair, error) {
	if strings.TrimSpace(raw) == "" {
		return TokenPair{}, Unauthorized("refresh token is required")
	}

	subject, err := utils.VerifySubject(raw, m.cfg.RefreshSecret)
	if err != nil {
		return TokenPair{}, BadRequest("invalid refresh token")
	}

	user, err := m.store.GetByID(ctx, subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return TokenPair{}, Unauthorized("invalid refresh token")
		}
		log.Printf("session: user lookup failed: %v", err)
		return TokenPair{}, Internal("failed to look up user")
	}

	if !user.RefreshToken.Valid || user.RefreshToken.String != raw {
		return TokenPair{}, Unauthorized("refresh token is expired or already used")
	}

	return m.issuePair(ctx, user.ID)
}

// issuePair mints both tokens and persists the refresh token as the user's
// current session slot.  The write is the rotation point: once it lands the
// previous refresh token is dead.
func (m *SessionManager) issuePair(ctx context.Context, userID string) (TokenPair, error) {
	access, err := utils.IssueAccessToken(m.cfg.AccessSecret, userID, m.cfg.AccessTTLMin)
	if err != nil {
		log.Printf("session: sign access token failed: %v", err)
		return TokenPair{}, Internal("failed to issue tokens")
	}
	refresh, err := utils.IssueRefreshToken(m.cfg.RefreshSecret, userID, m.cfg.RefreshTTLDays)
	if err != nil {
		log.Printf("session: sign refresh token failed: %v", err)
		return TokenPair{}, Internal("failed to issue tokens")
	}
	if err := m.store.SetRefreshToken(ctx, userID, &refresh); err != nil {
		log.Printf("session: persist refresh token failed: %v", err)
		return TokenPair{}, Internal("failed to persist session")
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
