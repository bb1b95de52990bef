package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
)

// PostgresUserRepository provides PostgreSQL-backed persistence for users,
// including the channel-profile and watch-history view builders.
type PostgresUserRepository struct {
	pool db.Pool
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userColumns = `id, username, email, full_name, password_hash, avatar_url, cover_url, refresh_token, created_at, updated_at`

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.FullName,
		&user.PasswordHash, &user.AvatarURL, &user.CoverURL,
		&user.RefreshToken, &user.CreatedAt, &user.UpdatedAt,
	)
	return user, err
}

// Create persists a new user record.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO users (id, username, email, full_name, password_hash, avatar_url, cover_url, refresh_token, created_at, updated_at)
        VALUES ($1, lower($2), lower($3), $4, $5, $6, $7, '', $8, $9)
    `, user.ID, user.Username, user.Email, user.FullName, user.PasswordHash,
		user.AvatarURL, user.CoverURL, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// FindByID fetches a user by primary key.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	user, err := scanUser(conn.QueryRow(ctx, `
        SELECT `+userColumns+`
        FROM users
        WHERE id = $1
    `, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user by id: %w", err)
	}

	return user, nil
}

// FindByUsernameOrEmail fetches a user whose username or email matches the
// provided identifier, case-normalized.
func (r *PostgresUserRepository) FindByUsernameOrEmail(ctx context.Context, identifier string) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	user, err := scanUser(conn.QueryRow(ctx, `
        SELECT `+userColumns+`
        FROM users
        WHERE username = lower($1) OR email = lower($1)
    `, identifier))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user by identifier: %w", err)
	}

	return user, nil
}

// ExistsByUsernameOrEmail reports whether either identifier is taken.
func (r *PostgresUserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var exists bool
	err = conn.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM users WHERE username = lower($1) OR email = lower($2)
        )
    `, username, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user existence: %w", err)
	}

	return exists, nil
}

// UpdateRefreshToken replaces the refresh token persisted on the user
// record. An empty token clears it (logout).
func (r *PostgresUserRepository) UpdateRefreshToken(ctx context.Context, id, token string) error {
	return r.updateColumn(ctx, id, "refresh_token", token)
}

// UpdatePassword persists a new password hash.
func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.updateColumn(ctx, id, "password_hash", passwordHash)
}

// UpdateAvatar persists a new avatar URL.
func (r *PostgresUserRepository) UpdateAvatar(ctx context.Context, id, url string) error {
	return r.updateColumn(ctx, id, "avatar_url", url)
}

// UpdateCover persists a new cover image URL.
func (r *PostgresUserRepository) UpdateCover(ctx context.Context, id, url string) error {
	return r.updateColumn(ctx, id, "cover_url", url)
}

func (r *PostgresUserRepository) updateColumn(ctx context.Context, id, column, value string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	// column is one of a fixed set of callers above, never user input.
	tag, err := conn.Exec(ctx, `
        UPDATE users
        SET `+column+` = $2, updated_at = NOW()
        WHERE id = $1
    `, id, value)
	if err != nil {
		return fmt.Errorf("update user %s: %w", column, err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ChannelProfile builds the denormalized channel view for a username. The
// subscriber counts and the caller's subscription flag are computed per
// request, never stored.
func (r *PostgresUserRepository) ChannelProfile(ctx context.Context, username, callerID string) (models.ChannelProfile, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.ChannelProfile{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT u.id, u.username, u.full_name, u.email, u.avatar_url, u.cover_url, u.created_at,
               (SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id) AS subscribers_count,
               (SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = u.id) AS channels_subscribed_to_count,
               EXISTS (
                   SELECT 1 FROM subscriptions s
                   WHERE s.channel_id = u.id AND s.subscriber_id = $2
               ) AS is_subscribed
        FROM users u
        WHERE u.username = lower($1)
    `, username, callerID)

	var profile models.ChannelProfile
	if err := row.Scan(
		&profile.ID, &profile.Username, &profile.FullName, &profile.Email,
		&profile.AvatarURL, &profile.CoverURL, &profile.CreatedAt,
		&profile.SubscribersCount, &profile.ChannelsSubscribedToCount,
		&profile.IsSubscribed,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ChannelProfile{}, ErrNotFound
		}
		return models.ChannelProfile{}, fmt.Errorf("select channel profile: %w", err)
	}

	return profile, nil
}

// WatchHistory returns the caller's watched videos joined with each video
// owner's public card, most recently watched first.
func (r *PostgresUserRepository) WatchHistory(ctx context.Context, userID string) ([]models.WatchEntry, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.owner_id, v.video_url, v.thumbnail_url, v.title, v.description,
               v.duration_seconds, v.views, v.is_published, v.created_at, v.updated_at,
               u.username, u.full_name, u.avatar_url,
               wh.watched_at
        FROM watch_history wh
        JOIN videos v ON v.id = wh.video_id
        JOIN users u ON u.id = v.owner_id
        WHERE wh.user_id = $1
        ORDER BY wh.watched_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query watch history: %w", err)
	}
	defer rows.Close()

	var entries []models.WatchEntry
	for rows.Next() {
		var entry models.WatchEntry
		if err := rows.Scan(
			&entry.Video.ID, &entry.Video.OwnerID, &entry.Video.VideoURL,
			&entry.Video.ThumbnailURL, &entry.Video.Title, &entry.Video.Description,
			&entry.Video.Duration, &entry.Video.Views, &entry.Video.IsPublished,
			&entry.Video.CreatedAt, &entry.Video.UpdatedAt,
			&entry.Owner.Username, &entry.Owner.FullName, &entry.Owner.AvatarURL,
			&entry.WatchedAt,
		); err != nil {
			return nil, fmt.Errorf("scan watch entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watch history: %w", err)
	}

	return entries, nil
}

// AddWatchHistory appends a video to the user's watch history. The primary
// key on (user_id, video_id) makes repeat views a no-op.
func (r *PostgresUserRepository) AddWatchHistory(ctx context.Context, userID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO watch_history (user_id, video_id, watched_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (user_id, video_id) DO NOTHING
    `, userID, videoID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return fmt.Errorf("insert watch history: %w", err)
	}

	return nil
}
