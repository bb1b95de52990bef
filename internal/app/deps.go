package app

import (
	"context"
	"time"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/handlers"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/repositories"
)

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Routes, error) {
	tokens, err := auth.NewTokenService(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		return handlers.Routes{}, err
	}

	store, err := media.NewS3Store(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Routes{}, err
	}
	prober := media.NewFFProbe(cfg.FFProbePath, cfg.FFProbeTimeout)
	delegate := media.NewDelegate(store, prober)

	users := repositories.NewPostgresUserRepository(pool)
	videos := repositories.NewPostgresVideoRepository(pool)

	limiter := middleware.NewIPRateLimiter(10, time.Minute, 5, 10*time.Minute)

	return handlers.Routes{
		Gate: &auth.Gate{Tokens: tokens, Users: users},
		Users: handlers.UserHandler{
			Users:    users,
			Tokens:   tokens,
			Media:    delegate,
			Limiter:  limiter,
			StageDir: cfg.UploadDir,
		},
		Videos: handlers.VideoHandler{
			Videos:   videos,
			Users:    users,
			Media:    delegate,
			StageDir: cfg.UploadDir,
		},
		Comments: handlers.CommentHandler{
			Comments: repositories.NewPostgresCommentRepository(pool),
		},
		Likes: handlers.LikeHandler{
			Likes: repositories.NewPostgresLikeRepository(pool),
		},
		Tweets: handlers.TweetHandler{
			Tweets: repositories.NewPostgresTweetRepository(pool),
		},
		Playlists: handlers.PlaylistHandler{
			Playlists: repositories.NewPostgresPlaylistRepository(pool),
			Videos:    videos,
		},
		Subscriptions: handlers.SubscriptionHandler{
			Subscriptions: repositories.NewPostgresSubscriptionRepository(pool),
		},
		Health: handlers.HealthHandler{},
	}, nil
}
