package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/account-server/internal/logger"
	"github.com/vidtube/account-server/internal/model"
)

// Account handles registration, profile updates and channel queries.
type Account struct {
	userStore model.UserStore
	media     model.MediaStorage
	hasher    model.Hasher
	logger    *logger.Logger
}

func NewAccount(
	userStore model.UserStore,
	media model.MediaStorage,
	hasher model.Hasher,
	logger *logger.Logger,
) *Account {
	return &Account{
		userStore: userStore,
		media:     media,
		hasher:    hasher,
		logger:    logger,
	}
}

// RegisterInput carries the registration fields plus locally staged media
// files. The caller removes the staged files after Register returns.
type RegisterInput struct {
	FullName       string
	Email          string
	Username       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

// Register validates input, enforces username/email uniqueness, uploads
// media and creates the user with a hashed password.
func (a *Account) Register(ctx context.Context, input RegisterInput) (model.PublicUser, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	input.Email = strings.TrimSpace(input.Email)
	input.Username = strings.ToLower(strings.TrimSpace(input.Username))

	required := []struct {
		name  string
		value string
	}{
		{"fullName", input.FullName},
		{"email", input.Email},
		{"username", input.Username},
		{"password", input.Password},
	}
	for _, field := range required {
		if field.value == "" {
			return model.PublicUser{}, model.NewValidationError("%s is required", field.name)
		}
	}
	if input.AvatarPath == "" {
		return model.PublicUser{}, model.NewValidationError("avatar file is required")
	}

	if err := a.checkUnique(ctx, input.Username, input.Email); err != nil {
		return model.PublicUser{}, err
	}

	avatarURL, err := a.media.Upload(ctx, input.AvatarPath)
	if err != nil {
		a.logger.Error("Account service: avatar upload failed",
			"username", input.Username,
			"error", err.Error())
		return model.PublicUser{}, model.NewValidationError("avatar upload failed")
	}

	var coverImageURL string
	if input.CoverImagePath != "" {
		coverImageURL, err = a.media.Upload(ctx, input.CoverImagePath)
		if err != nil {
			a.logger.Error("Account service: cover image upload failed",
				"username", input.Username,
				"error", err.Error())
			return model.PublicUser{}, model.NewValidationError("cover image upload failed")
		}
	}

	hash, err := a.hasher.Hash(input.Password)
	if err != nil {
		return model.PublicUser{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := model.User{
		ID:            uuid.New(),
		Username:      input.Username,
		Email:         input.Email,
		FullName:      input.FullName,
		PasswordHash:  hash,
		AvatarURL:     avatarURL,
		CoverImageURL: coverImageURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created, err := a.userStore.Create(ctx, user)
	if err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			return model.PublicUser{}, model.NewConflictError("user with email or username already exists")
		}
		return model.PublicUser{}, fmt.Errorf("failed to create user: %w", err)
	}

	a.logger.Info("Account service: user registered",
		"user_id", created.ID,
		"username", created.Username)

	return created.Public(), nil
}

func (a *Account) checkUnique(ctx context.Context, username, email string) error {
	if _, err := a.userStore.GetByUsername(ctx, username); err == nil {
		return model.NewConflictError("user with username already exists")
	} else if !errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("failed to check username uniqueness: %w", err)
	}

	if _, err := a.userStore.GetByEmail(ctx, email); err == nil {
		return model.NewConflictError("user with email already exists")
	} else if !errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("failed to check email uniqueness: %w", err)
	}

	return nil
}

// GetByID returns the public projection for an existing user.
func (a *Account) GetByID(ctx context.Context, id uuid.UUID) (model.PublicUser, error) {
	user, err := a.userStore.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.PublicUser{}, model.NewNotFoundError("user does not exist")
	}
	if err != nil {
		return model.PublicUser{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user.Public(), nil
}

// UpdateDetails changes full name and email, both required.
func (a *Account) UpdateDetails(ctx context.Context, userID uuid.UUID, fullName, email string) (model.PublicUser, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.TrimSpace(email)
	if fullName == "" || email == "" {
		return model.PublicUser{}, model.NewValidationError("fullName and email are required")
	}

	user, err := a.userStore.UpdateDetails(ctx, userID, fullName, email)
	if err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			return model.PublicUser{}, model.NewConflictError("email already in use")
		}
		if errors.Is(err, model.ErrNotFound) {
			return model.PublicUser{}, model.NewNotFoundError("user does not exist")
		}
		return model.PublicUser{}, fmt.Errorf("failed to update account details: %w", err)
	}

	a.logger.Info("Account service: details updated", "user_id", userID)

	return user.Public(), nil
}

// UpdateAvatar uploads a new avatar and stores its URL.
func (a *Account) UpdateAvatar(ctx context.Context, userID uuid.UUID, localPath string) (model.PublicUser, error) {
	return a.updateMedia(ctx, userID, localPath, "avatar", a.userStore.UpdateAvatar)
}

// UpdateCoverImage uploads a new cover image and stores its URL.
func (a *Account) UpdateCoverImage(ctx context.Context, userID uuid.UUID, localPath string) (model.PublicUser, error) {
	return a.updateMedia(ctx, userID, localPath, "cover image", a.userStore.UpdateCoverImage)
}

func (a *Account) updateMedia(
	ctx context.Context,
	userID uuid.UUID,
	localPath, kind string,
	persist func(context.Context, uuid.UUID, string) (model.User, error),
) (model.PublicUser, error) {
	if localPath == "" {
		return model.PublicUser{}, model.NewValidationError("%s file is required", kind)
	}

	url, err := a.media.Upload(ctx, localPath)
	if err != nil {
		a.logger.Error("Account service: media upload failed",
			"user_id", userID,
			"kind", kind,
			"error", err.Error())
		return model.PublicUser{}, model.NewValidationError("%s upload failed", kind)
	}

	user, err := persist(ctx, userID, url)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.PublicUser{}, model.NewNotFoundError("user does not exist")
		}
		return model.PublicUser{}, fmt.Errorf("failed to update %s: %w", kind, err)
	}

	a.logger.Info("Account service: media updated", "user_id", userID, "kind", kind)

	return user.Public(), nil
}

// GetChannelProfile returns the aggregated channel view for a username.
// viewerID may be uuid.Nil for anonymous viewers.
func (a *Account) GetChannelProfile(ctx context.Context, username string, viewerID uuid.UUID) (model.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return model.ChannelProfile{}, model.NewValidationError("username is required")
	}

	profile, err := a.userStore.GetChannelProfile(ctx, username, viewerID)
	if errors.Is(err, model.ErrNotFound) {
		return model.ChannelProfile{}, model.NewNotFoundError("channel does not exist")
	}
	if err != nil {
		return model.ChannelProfile{}, fmt.Errorf("failed to get channel profile: %w", err)
	}
	return profile, nil
}

// RecordWatch appends a video to the viewer's watch history.
func (a *Account) RecordWatch(ctx context.Context, userID, videoID uuid.UUID) error {
	if videoID == uuid.Nil {
		return model.NewValidationError("video id is required")
	}

	if err := a.userStore.AddWatchHistory(ctx, userID, videoID); err != nil {
		return fmt.Errorf("failed to record watch history: %w", err)
	}
	return nil
}

// GetWatchHistory returns the viewer's watch history, newest first.
func (a *Account) GetWatchHistory(ctx context.Context, userID uuid.UUID) ([]model.WatchEntry, error) {
	entries, err := a.userStore.GetWatchHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get watch history: %w", err)
	}
	return entries, nil
}
