package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	Create(ctx context.Context, user User) (User, error)
	UpdateRefreshToken(ctx context.Context, id uuid.UUID, token *string) error
	// CompareAndSwapRefreshToken replaces the stored refresh token only if it
	// still equals old. Returns ErrNotFound when no row matched, which covers
	// both a missing user and a token superseded by a concurrent rotation.
	CompareAndSwapRefreshToken(ctx context.Context, id uuid.UUID, old, replacement string) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	UpdateDetails(ctx context.Context, id uuid.UUID, fullName, email string) (User, error)
	UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) (User, error)
	UpdateCoverImage(ctx context.Context, id uuid.UUID, coverImageURL string) (User, error)
	GetChannelProfile(ctx context.Context, username string, viewerID uuid.UUID) (ChannelProfile, error)
	AddWatchHistory(ctx context.Context, userID, videoID uuid.UUID) error
	GetWatchHistory(ctx context.Context, userID uuid.UUID) ([]WatchEntry, error)
}

// User represents a stored user with authentication material.
// PasswordHash and RefreshToken never leave the server; see Public.
type User struct {
	ID            uuid.UUID
	Username      string
	Email         string
	FullName      string
	PasswordHash  string
	RefreshToken  *string
	AvatarURL     string
	CoverImageURL string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PublicUser is the client-facing projection of a User.
type PublicUser struct {
	ID            uuid.UUID `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"coverImage,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Public strips credential material from the user record.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// ChannelProfile is the aggregated public view of a user's channel.
type ChannelProfile struct {
	PublicUser
	SubscriberCount   int64 `json:"subscribersCount"`
	SubscribedToCount int64 `json:"channelsSubscribedToCount"`
	IsSubscribed      bool  `json:"isSubscribed"`
}

// WatchEntry is a single watch-history item referencing an external video.
type WatchEntry struct {
	VideoID   uuid.UUID `json:"videoId"`
	WatchedAt time.Time `json:"watchedAt"`
}
