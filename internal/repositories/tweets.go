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

// PostgresTweetRepository provides PostgreSQL-backed persistence for tweets
// and the feed view builders.
type PostgresTweetRepository struct {
	pool db.Pool
}

// NewPostgresTweetRepository constructs a tweet repository backed by PostgreSQL.
func NewPostgresTweetRepository(pool db.Pool) *PostgresTweetRepository {
	return &PostgresTweetRepository{pool: pool}
}

// Create stores a new tweet.
func (r *PostgresTweetRepository) Create(ctx context.Context, tweet models.Tweet) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO tweets (id, owner_id, content, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
    `, tweet.ID, tweet.OwnerID, tweet.Content, tweet.CreatedAt, tweet.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return fmt.Errorf("insert tweet: %w", err)
	}

	return nil
}

// FindByID fetches a tweet by primary key.
func (r *PostgresTweetRepository) FindByID(ctx context.Context, id string) (models.Tweet, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Tweet{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var tweet models.Tweet
	err = conn.QueryRow(ctx, `
        SELECT id, owner_id, content, created_at, updated_at
        FROM tweets
        WHERE id = $1
    `, id).Scan(&tweet.ID, &tweet.OwnerID, &tweet.Content, &tweet.CreatedAt, &tweet.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Tweet{}, ErrNotFound
		}
		return models.Tweet{}, fmt.Errorf("select tweet: %w", err)
	}

	return tweet, nil
}

// Update replaces a tweet's content.
func (r *PostgresTweetRepository) Update(ctx context.Context, id, content string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE tweets
        SET content = $2, updated_at = NOW()
        WHERE id = $1
    `, id, content)
	if err != nil {
		return fmt.Errorf("update tweet: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a tweet.
func (r *PostgresTweetRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM tweets
        WHERE id = $1
    `, id)
	if err != nil {
		return fmt.Errorf("delete tweet: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

const tweetViewQuery = `
        SELECT t.id, t.content, t.created_at,
               (SELECT COUNT(*) FROM likes l WHERE l.tweet_id = t.id) AS likes_count,
               u.username, u.full_name, u.avatar_url
        FROM tweets t
        JOIN users u ON u.id = t.owner_id
`

// Feed returns the global tweet feed with owner cards and like counts,
// newest first, bounded by limit.
func (r *PostgresTweetRepository) Feed(ctx context.Context, limit int) ([]models.TweetView, error) {
	if limit < 1 {
		limit = 10
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, tweetViewQuery+`
        ORDER BY t.created_at DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("query tweet feed: %w", err)
	}
	defer rows.Close()

	return collectTweetViews(rows)
}

// ListByOwner returns one user's tweets with owner cards and like counts,
// newest first.
func (r *PostgresTweetRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.TweetView, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, tweetViewQuery+`
        WHERE t.owner_id = $1
        ORDER BY t.created_at DESC
    `, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query user tweets: %w", err)
	}
	defer rows.Close()

	return collectTweetViews(rows)
}

func collectTweetViews(rows pgx.Rows) ([]models.TweetView, error) {
	var tweets []models.TweetView
	for rows.Next() {
		var view models.TweetView
		if err := rows.Scan(
			&view.ID, &view.Content, &view.CreatedAt, &view.LikesCount,
			&view.Owner.Username, &view.Owner.FullName, &view.Owner.AvatarURL,
		); err != nil {
			return nil, fmt.Errorf("scan tweet: %w", err)
		}
		tweets = append(tweets, view)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tweets: %w", err)
	}

	return tweets, nil
}
