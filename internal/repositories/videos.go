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

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos
// and the single-video detail view builder.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

const videoColumns = `id, owner_id, video_url, thumbnail_url, title, description, duration_seconds, views, is_published, created_at, updated_at`

func scanVideo(row pgx.Row) (models.Video, error) {
	var v models.Video
	err := row.Scan(
		&v.ID, &v.OwnerID, &v.VideoURL, &v.ThumbnailURL, &v.Title,
		&v.Description, &v.Duration, &v.Views, &v.IsPublished,
		&v.CreatedAt, &v.UpdatedAt,
	)
	return v, err
}

// Create stores a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, owner_id, video_url, thumbnail_url, title, description, duration_seconds, views, is_published, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8, $9, $10)
    `, video.ID, video.OwnerID, video.VideoURL, video.ThumbnailURL,
		video.Title, video.Description, video.Duration, video.IsPublished,
		video.CreatedAt, video.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert video: %w", err)
	}

	return nil
}

// FindByID fetches a video by primary key.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	video, err := scanVideo(conn.QueryRow(ctx, `
        SELECT `+videoColumns+`
        FROM videos
        WHERE id = $1
    `, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("select video: %w", err)
	}

	return video, nil
}

// Detail builds the denormalized single-video view: like count plus the
// owner joined with their subscriber count and the caller's subscription
// flag. View counting and history append are separate side effects.
func (r *PostgresVideoRepository) Detail(ctx context.Context, videoID, callerID string) (models.VideoDetail, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.VideoDetail{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT v.id, v.video_url, v.thumbnail_url, v.title, v.description,
               v.duration_seconds, v.views, v.created_at,
               (SELECT COUNT(*) FROM likes l WHERE l.video_id = v.id) AS likes_count,
               u.username, u.avatar_url,
               (SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id) AS subscribers_count,
               EXISTS (
                   SELECT 1 FROM subscriptions s
                   WHERE s.channel_id = u.id AND s.subscriber_id = $2
               ) AS is_subscribed
        FROM videos v
        JOIN users u ON u.id = v.owner_id
        WHERE v.id = $1
    `, videoID, callerID)

	var detail models.VideoDetail
	if err := row.Scan(
		&detail.ID, &detail.VideoURL, &detail.ThumbnailURL, &detail.Title,
		&detail.Description, &detail.Duration, &detail.Views, &detail.CreatedAt,
		&detail.LikesCount,
		&detail.Owner.Username, &detail.Owner.AvatarURL,
		&detail.Owner.SubscribersCount, &detail.Owner.IsSubscribed,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.VideoDetail{}, ErrNotFound
		}
		return models.VideoDetail{}, fmt.Errorf("select video detail: %w", err)
	}

	return detail, nil
}

// IncrementViews bumps the view counter by one.
func (r *PostgresVideoRepository) IncrementViews(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET views = views + 1
        WHERE id = $1
    `, id)
	if err != nil {
		return fmt.Errorf("increment video views: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Update modifies a video's title, description, and thumbnail.
func (r *PostgresVideoRepository) Update(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET title = $2, description = $3, thumbnail_url = $4, updated_at = NOW()
        WHERE id = $1
    `, video.ID, video.Title, video.Description, video.ThumbnailURL)
	if err != nil {
		return fmt.Errorf("update video: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a video. Likes, comments, playlist entries, and watch
// history rows cascade at the schema level.
func (r *PostgresVideoRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM videos
        WHERE id = $1
    `, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ListByOwner returns a page of a user's videos, newest first. Unpublished
// videos are included so owners can see their full catalogue.
func (r *PostgresVideoRepository) ListByOwner(ctx context.Context, ownerID string, page, limit int) ([]models.Video, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+videoColumns+`
        FROM videos
        WHERE owner_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `, ownerID, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("query videos by owner: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}

	return videos, nil
}
