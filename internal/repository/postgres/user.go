package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vidtube/account-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

const userColumns = `id, username, email, full_name, password_hash, refresh_token, avatar_url, cover_image_url, created_at, updated_at`

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	var coverImage *string
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.FullName, &user.PasswordHash,
		&user.RefreshToken, &user.AvatarURL, &coverImage, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return model.User{}, err
	}
	if coverImage != nil {
		user.CoverImageURL = *coverImage
	}
	return user, nil
}

func mapScanErr(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrNotFound
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, username))
	if err != nil {
		return model.User{}, mapScanErr(err, "get user by username")
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		return model.User{}, mapScanErr(err, "get user by email")
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return model.User{}, mapScanErr(err, "get user by id")
	}
	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	query := `INSERT INTO users (id, username, email, full_name, password_hash, avatar_url, cover_image_url, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9)
			  RETURNING ` + userColumns

	saved, err := scanUser(r.db.QueryRow(ctx, query,
		user.ID, user.Username, user.Email, user.FullName, user.PasswordHash,
		user.AvatarURL, user.CoverImageURL, user.CreatedAt, user.UpdatedAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, model.ErrDuplicate
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return saved, nil
}

func (r *UserRepository) UpdateRefreshToken(ctx context.Context, id uuid.UUID, token *string) error {
	const query = `UPDATE users SET refresh_token = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, token)
	if err != nil {
		return fmt.Errorf("failed to update refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// CompareAndSwapRefreshToken performs token rotation as a single atomic
// update. The WHERE clause guards against a concurrent rotation having
// already replaced the slot.
func (r *UserRepository) CompareAndSwapRefreshToken(ctx context.Context, id uuid.UUID, old, replacement string) error {
	const query = `UPDATE users SET refresh_token = $3, updated_at = NOW()
				   WHERE id = $1 AND refresh_token = $2`

	tag, err := r.db.Exec(ctx, query, id, old, replacement)
	if err != nil {
		return fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	const query = `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, hash)
	if err != nil {
		return fmt.Errorf("failed to update password hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdateDetails(ctx context.Context, id uuid.UUID, fullName, email string) (model.User, error) {
	query := `UPDATE users SET full_name = $2, email = $3, updated_at = NOW()
			  WHERE id = $1
			  RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(ctx, query, id, fullName, email))
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, model.ErrDuplicate
		}
		return model.User{}, mapScanErr(err, "update account details")
	}
	return user, nil
}

func (r *UserRepository) UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) (model.User, error) {
	query := `UPDATE users SET avatar_url = $2, updated_at = NOW()
			  WHERE id = $1
			  RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(ctx, query, id, avatarURL))
	if err != nil {
		return model.User{}, mapScanErr(err, "update avatar")
	}
	return user, nil
}

func (r *UserRepository) UpdateCoverImage(ctx context.Context, id uuid.UUID, coverImageURL string) (model.User, error) {
	query := `UPDATE users SET cover_image_url = $2, updated_at = NOW()
			  WHERE id = $1
			  RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(ctx, query, id, coverImageURL))
	if err != nil {
		return model.User{}, mapScanErr(err, "update cover image")
	}
	return user, nil
}

// GetChannelProfile aggregates subscription counts for a channel and, when
// viewerID is non-nil, whether the viewer subscribes to it.
func (r *UserRepository) GetChannelProfile(ctx context.Context, username string, viewerID uuid.UUID) (model.ChannelProfile, error) {
	const query = `
		SELECT u.id, u.username, u.email, u.full_name, u.avatar_url, COALESCE(u.cover_image_url, ''),
			   u.created_at, u.updated_at,
			   (SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id)    AS subscriber_count,
			   (SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = u.id) AS subscribed_to_count,
			   EXISTS (SELECT 1 FROM subscriptions s WHERE s.channel_id = u.id AND s.subscriber_id = $2) AS is_subscribed
		FROM users u WHERE u.username = $1
	`

	var profile model.ChannelProfile
	err := r.db.QueryRow(ctx, query, username, viewerID).Scan(
		&profile.ID, &profile.Username, &profile.Email, &profile.FullName,
		&profile.AvatarURL, &profile.CoverImageURL, &profile.CreatedAt, &profile.UpdatedAt,
		&profile.SubscriberCount, &profile.SubscribedToCount, &profile.IsSubscribed,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ChannelProfile{}, model.ErrNotFound
		}
		return model.ChannelProfile{}, fmt.Errorf("failed to get channel profile: %w", err)
	}
	return profile, nil
}

func (r *UserRepository) AddWatchHistory(ctx context.Context, userID, videoID uuid.UUID) error {
	const query = `INSERT INTO watch_history (user_id, video_id, watched_at) VALUES ($1, $2, NOW())`

	if _, err := r.db.Exec(ctx, query, userID, videoID); err != nil {
		return fmt.Errorf("failed to add watch history: %w", err)
	}
	return nil
}

func (r *UserRepository) GetWatchHistory(ctx context.Context, userID uuid.UUID) ([]model.WatchEntry, error) {
	const query = `SELECT video_id, watched_at FROM watch_history WHERE user_id = $1 ORDER BY watched_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get watch history: %w", err)
	}
	defer rows.Close()

	var entries []model.WatchEntry
	for rows.Next() {
		var e model.WatchEntry
		if err := rows.Scan(&e.VideoID, &e.WatchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan watch history: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read watch history: %w", err)
	}
	return entries, nil
}
