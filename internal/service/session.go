package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/vidtube/account-server/internal/logger"
	"github.com/vidtube/account-server/internal/model"
)

// Session orchestrates login, logout, refresh-token rotation and password
// changes. It is the authority on whether a presented refresh token still
// matches the user's single stored slot.
type Session struct {
	userStore    model.UserStore
	tokenManager model.TokenManager
	hasher       model.Hasher
	logger       *logger.Logger
}

func NewSession(
	userStore model.UserStore,
	tokenManager model.TokenManager,
	hasher model.Hasher,
	logger *logger.Logger,
) *Session {
	return &Session{
		userStore:    userStore,
		tokenManager: tokenManager,
		hasher:       hasher,
		logger:       logger,
	}
}

// TokenPair holds a freshly minted access/refresh pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Authenticate verifies a username/password pair against the store.
// Lookup is by username only; the request surface accepts an email too but
// email login is not wired up.
func (s *Session) Authenticate(ctx context.Context, username, password string) (model.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	user, err := s.userStore.GetByUsername(ctx, username)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, model.NewNotFoundError("user does not exist")
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user by username: %w", err)
	}

	if !s.hasher.Compare(password, user.PasswordHash) {
		return model.User{}, model.NewUnauthorizedError("invalid user credentials")
	}

	return user, nil
}

// Login authenticates and issues a token pair, overwriting the user's
// refresh-token slot. Any previously issued refresh token stops working.
// The refresh token is persisted before tokens are returned so a client
// never holds a pair the server does not know about.
func (s *Session) Login(ctx context.Context, username, password string) (TokenPair, model.PublicUser, error) {
	s.logger.Debug("Session service: starting login", "username", username)

	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return TokenPair{}, model.PublicUser{}, err
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return TokenPair{}, model.PublicUser{}, err
	}

	if err := s.userStore.UpdateRefreshToken(ctx, user.ID, &pair.RefreshToken); err != nil {
		return TokenPair{}, model.PublicUser{}, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	s.logger.Info("Session service: login completed", "user_id", user.ID)

	return pair, user.Public(), nil
}

// Logout clears the stored refresh token, invalidating future refresh
// attempts regardless of what the client keeps in its cookies.
func (s *Session) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.userStore.UpdateRefreshToken(ctx, userID, nil); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewUnauthorizedError("invalid session")
		}
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}

	s.logger.Info("Session service: logout completed", "user_id", userID)

	return nil
}

// Rotate exchanges a valid refresh token for a fresh pair. The presented
// token must byte-for-byte match the stored slot; a superseded token (from
// an earlier login or rotation) is rejected, never silently accepted.
func (s *Session) Rotate(ctx context.Context, presented string) (TokenPair, error) {
	if presented == "" {
		return TokenPair{}, model.NewUnauthorizedError("refresh token missing")
	}

	userID, err := s.tokenManager.ParseRefreshToken(presented)
	if err != nil {
		s.logger.Debug("Session service: refresh token rejected", "error", err.Error())
		return TokenPair{}, model.NewUnauthorizedError("invalid refresh token")
	}

	user, err := s.userStore.GetByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return TokenPair{}, model.NewUnauthorizedError("invalid refresh token")
	}
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	if user.RefreshToken == nil || !equalTokens(*user.RefreshToken, presented) {
		s.logger.Info("Session service: superseded refresh token presented", "user_id", user.ID)
		return TokenPair{}, model.NewUnauthorizedError("refresh token is expired or already used")
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return TokenPair{}, err
	}

	// Atomic swap; a concurrent rotation that won the race leaves no row
	// matching the presented token and this attempt fails like a reuse.
	if err := s.userStore.CompareAndSwapRefreshToken(ctx, user.ID, presented, pair.RefreshToken); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return TokenPair{}, model.NewUnauthorizedError("refresh token is expired or already used")
		}
		return TokenPair{}, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	s.logger.Info("Session service: refresh token rotated", "user_id", user.ID)

	return pair, nil
}

// ChangePassword verifies the old password before storing a new hash.
// The existing refresh token stays valid; only the single stored slot
// bounds session lifetime.
func (s *Session) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	if newPassword == "" {
		return model.NewValidationError("new password is required")
	}

	user, err := s.userStore.GetByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.NewUnauthorizedError("invalid session")
	}
	if err != nil {
		return fmt.Errorf("failed to get user by id: %w", err)
	}

	if !s.hasher.Compare(oldPassword, user.PasswordHash) {
		return model.NewValidationError("invalid old password")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err := s.userStore.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("failed to update password hash: %w", err)
	}

	s.logger.Info("Session service: password changed", "user_id", userID)

	return nil
}

func (s *Session) issuePair(user model.User) (TokenPair, error) {
	access, err := s.tokenManager.GenerateAccessToken(user)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to issue access token: %w", err)
	}

	refresh, err := s.tokenManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func equalTokens(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
