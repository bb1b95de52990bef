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

// PostgresPlaylistRepository provides PostgreSQL-backed persistence for
// playlists, their ordered video lists, and the playlist summary view.
type PostgresPlaylistRepository struct {
	pool db.Pool
}

// NewPostgresPlaylistRepository constructs a playlist repository backed by PostgreSQL.
func NewPostgresPlaylistRepository(pool db.Pool) *PostgresPlaylistRepository {
	return &PostgresPlaylistRepository{pool: pool}
}

// Create stores a new playlist.
func (r *PostgresPlaylistRepository) Create(ctx context.Context, playlist models.Playlist) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO playlists (id, owner_id, name, description, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, playlist.ID, playlist.OwnerID, playlist.Name, playlist.Description,
		playlist.CreatedAt, playlist.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return fmt.Errorf("insert playlist: %w", err)
	}

	return nil
}

// FindByID fetches a playlist by primary key.
func (r *PostgresPlaylistRepository) FindByID(ctx context.Context, id string) (models.Playlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var playlist models.Playlist
	err = conn.QueryRow(ctx, `
        SELECT id, owner_id, name, description, created_at, updated_at
        FROM playlists
        WHERE id = $1
    `, id).Scan(
		&playlist.ID, &playlist.OwnerID, &playlist.Name,
		&playlist.Description, &playlist.CreatedAt, &playlist.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Playlist{}, ErrNotFound
		}
		return models.Playlist{}, fmt.Errorf("select playlist: %w", err)
	}

	return playlist, nil
}

// Update replaces a playlist's name and description.
func (r *PostgresPlaylistRepository) Update(ctx context.Context, id, name, description string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE playlists
        SET name = $2, description = $3, updated_at = NOW()
        WHERE id = $1
    `, id, name, description)
	if err != nil {
		return fmt.Errorf("update playlist: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a playlist and, via cascade, its video entries.
func (r *PostgresPlaylistRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM playlists
        WHERE id = $1
    `, id)
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// AddVideo appends a video to the playlist's ordered list. Adding a video
// that is already present reports ErrConflict.
func (r *PostgresPlaylistRepository) AddVideo(ctx context.Context, playlistID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        INSERT INTO playlist_videos (playlist_id, video_id, position)
        VALUES ($1, $2, COALESCE(
            (SELECT MAX(position) + 1 FROM playlist_videos WHERE playlist_id = $1), 0
        ))
        ON CONFLICT (playlist_id, video_id) DO NOTHING
    `, playlistID, videoID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return fmt.Errorf("insert playlist video: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrConflict
	}

	return nil
}

// RemoveVideo removes a video from the playlist. Missing entries report
// ErrNotFound explicitly; removal is never silently assumed to succeed.
func (r *PostgresPlaylistRepository) RemoveVideo(ctx context.Context, playlistID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM playlist_videos
        WHERE playlist_id = $1 AND video_id = $2
    `, playlistID, videoID)
	if err != nil {
		return fmt.Errorf("delete playlist video: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ListForUser returns the user's playlists with per-playlist video counts
// and summed view totals, newest first.
func (r *PostgresPlaylistRepository) ListForUser(ctx context.Context, ownerID string) ([]models.PlaylistSummary, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT p.id, p.name, p.description, p.created_at,
               COUNT(pv.video_id) AS total_videos,
               COALESCE(SUM(v.views), 0) AS total_views
        FROM playlists p
        LEFT JOIN playlist_videos pv ON pv.playlist_id = p.id
        LEFT JOIN videos v ON v.id = pv.video_id
        WHERE p.owner_id = $1
        GROUP BY p.id, p.name, p.description, p.created_at
        ORDER BY p.created_at DESC
    `, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []models.PlaylistSummary
	for rows.Next() {
		var summary models.PlaylistSummary
		if err := rows.Scan(
			&summary.ID, &summary.Name, &summary.Description,
			&summary.CreatedAt, &summary.TotalVideos, &summary.TotalViews,
		); err != nil {
			return nil, fmt.Errorf("scan playlist summary: %w", err)
		}
		playlists = append(playlists, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}

	return playlists, nil
}
