package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vidtube/backend/internal/db"
)

// PostgresSubscriptionRepository manages the many-to-many self-join of
// users subscribing to channels. Toggling uses the same atomic
// delete-then-guarded-insert pattern as likes.
type PostgresSubscriptionRepository struct {
	pool db.Pool
}

// NewPostgresSubscriptionRepository constructs a subscription repository backed by PostgreSQL.
func NewPostgresSubscriptionRepository(pool db.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// Toggle flips the subscription state for (subscriber, channel) and
// reports the new state: true means the subscriber now follows the channel.
func (r *PostgresSubscriptionRepository) Toggle(ctx context.Context, subscriberID, channelID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM subscriptions
        WHERE subscriber_id = $1 AND channel_id = $2
    `, subscriberID, channelID)
	if err != nil {
		return false, fmt.Errorf("delete subscription: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	_, err = conn.Exec(ctx, `
        INSERT INTO subscriptions (subscriber_id, channel_id, created_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (subscriber_id, channel_id) DO NOTHING
    `, subscriberID, channelID, time.Now().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("insert subscription: %w", err)
	}

	return true, nil
}

// IsSubscribed reports whether the subscriber follows the channel.
func (r *PostgresSubscriptionRepository) IsSubscribed(ctx context.Context, subscriberID, channelID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var subscribed bool
	err = conn.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM subscriptions
            WHERE subscriber_id = $1 AND channel_id = $2
        )
    `, subscriberID, channelID).Scan(&subscribed)
	if err != nil {
		return false, fmt.Errorf("check subscription: %w", err)
	}

	return subscribed, nil
}
