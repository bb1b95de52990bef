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

// PostgresCommentRepository provides PostgreSQL-backed persistence for
// comments and the paginated per-video comment view.
type PostgresCommentRepository struct {
	pool db.Pool
}

// NewPostgresCommentRepository constructs a comment repository backed by PostgreSQL.
func NewPostgresCommentRepository(pool db.Pool) *PostgresCommentRepository {
	return &PostgresCommentRepository{pool: pool}
}

// Create stores a new comment.
func (r *PostgresCommentRepository) Create(ctx context.Context, comment models.Comment) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO comments (id, video_id, owner_id, content, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, comment.ID, comment.VideoID, comment.OwnerID, comment.Content,
		comment.CreatedAt, comment.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return fmt.Errorf("insert comment: %w", err)
	}

	return nil
}

// FindByID fetches a comment by primary key.
func (r *PostgresCommentRepository) FindByID(ctx context.Context, id string) (models.Comment, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Comment{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var comment models.Comment
	err = conn.QueryRow(ctx, `
        SELECT id, video_id, owner_id, content, created_at, updated_at
        FROM comments
        WHERE id = $1
    `, id).Scan(
		&comment.ID, &comment.VideoID, &comment.OwnerID, &comment.Content,
		&comment.CreatedAt, &comment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Comment{}, ErrNotFound
		}
		return models.Comment{}, fmt.Errorf("select comment: %w", err)
	}

	return comment, nil
}

// Update replaces a comment's content.
func (r *PostgresCommentRepository) Update(ctx context.Context, id, content string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE comments
        SET content = $2, updated_at = NOW()
        WHERE id = $1
    `, id, content)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a comment.
func (r *PostgresCommentRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM comments
        WHERE id = $1
    `, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ListForVideo returns a page of a video's comments joined with each
// owner's public card, newest first.
func (r *PostgresCommentRepository) ListForVideo(ctx context.Context, videoID string, page, limit int) ([]models.CommentView, error) {
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
        SELECT c.id, c.content, c.created_at,
               u.username, u.full_name, u.avatar_url
        FROM comments c
        JOIN users u ON u.id = c.owner_id
        WHERE c.video_id = $1
        ORDER BY c.created_at DESC
        LIMIT $2 OFFSET $3
    `, videoID, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var comments []models.CommentView
	for rows.Next() {
		var view models.CommentView
		if err := rows.Scan(
			&view.ID, &view.Content, &view.CreatedAt,
			&view.Owner.Username, &view.Owner.FullName, &view.Owner.AvatarURL,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, view)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}

	return comments, nil
}
