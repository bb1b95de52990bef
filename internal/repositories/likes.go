package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
)

// PostgresLikeRepository provides PostgreSQL-backed persistence for likes.
// Toggling is atomic: a delete-returning followed, when nothing was
// deleted, by an insert guarded by a uniqueness constraint, so two
// concurrent toggles on the same (target, user) pair cannot double-create
// or double-delete.
type PostgresLikeRepository struct {
	pool db.Pool
}

// NewPostgresLikeRepository constructs a like repository backed by PostgreSQL.
func NewPostgresLikeRepository(pool db.Pool) *PostgresLikeRepository {
	return &PostgresLikeRepository{pool: pool}
}

// ToggleVideo flips the like state for (video, user) and reports the new
// state: true means the video is now liked.
func (r *PostgresLikeRepository) ToggleVideo(ctx context.Context, videoID, userID string) (bool, error) {
	return r.toggle(ctx, "video_id", videoID, userID)
}

// ToggleComment flips the like state for (comment, user).
func (r *PostgresLikeRepository) ToggleComment(ctx context.Context, commentID, userID string) (bool, error) {
	return r.toggle(ctx, "comment_id", commentID, userID)
}

// ToggleTweet flips the like state for (tweet, user).
func (r *PostgresLikeRepository) ToggleTweet(ctx context.Context, tweetID, userID string) (bool, error) {
	return r.toggle(ctx, "tweet_id", tweetID, userID)
}

func (r *PostgresLikeRepository) toggle(ctx context.Context, column, targetID, userID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	// column is one of the three fixed target columns above, never user input.
	tag, err := conn.Exec(ctx, `
        DELETE FROM likes
        WHERE `+column+` = $1 AND liked_by = $2
    `, targetID, userID)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	tag, err = conn.Exec(ctx, `
        INSERT INTO likes (id, `+column+`, liked_by, created_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT DO NOTHING
    `, uuid.NewString(), targetID, userID, time.Now().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("insert like: %w", err)
	}

	// A lost insert race means another toggle liked it first; either way
	// the (target, user) pair holds exactly one like now.
	return true, nil
}

// LikedVideos returns the videos the user liked, each joined with its
// owner's public card, most recently liked first.
func (r *PostgresLikeRepository) LikedVideos(ctx context.Context, userID string) ([]models.LikedVideo, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.owner_id, v.video_url, v.thumbnail_url, v.title, v.description,
               v.duration_seconds, v.views, v.is_published, v.created_at, v.updated_at,
               u.username, u.full_name, u.avatar_url,
               l.created_at
        FROM likes l
        JOIN videos v ON v.id = l.video_id
        JOIN users u ON u.id = v.owner_id
        WHERE l.liked_by = $1 AND l.video_id IS NOT NULL
        ORDER BY l.created_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query liked videos: %w", err)
	}
	defer rows.Close()

	var liked []models.LikedVideo
	for rows.Next() {
		var entry models.LikedVideo
		if err := rows.Scan(
			&entry.Video.ID, &entry.Video.OwnerID, &entry.Video.VideoURL,
			&entry.Video.ThumbnailURL, &entry.Video.Title, &entry.Video.Description,
			&entry.Video.Duration, &entry.Video.Views, &entry.Video.IsPublished,
			&entry.Video.CreatedAt, &entry.Video.UpdatedAt,
			&entry.Owner.Username, &entry.Owner.FullName, &entry.Owner.AvatarURL,
			&entry.LikedAt,
		); err != nil {
			return nil, fmt.Errorf("scan liked video: %w", err)
		}
		liked = append(liked, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate liked videos: %w", err)
	}

	return liked, nil
}

// CountForVideo returns the number of likes on a video.
func (r *PostgresLikeRepository) CountForVideo(ctx context.Context, videoID string) (int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var count int64
	err = conn.QueryRow(ctx, `
        SELECT COUNT(*) FROM likes WHERE video_id = $1
    `, videoID).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("count video likes: %w", err)
	}

	return count, nil
}
