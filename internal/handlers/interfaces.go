package handlers

import (
	"context"

	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/models"
)

// UserStore captures the persistence operations required by the user
// handlers, including the channel-profile and watch-history view builders.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByUsernameOrEmail(ctx context.Context, identifier string) (models.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	UpdateRefreshToken(ctx context.Context, id, token string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateAvatar(ctx context.Context, id, url string) error
	UpdateCover(ctx context.Context, id, url string) error
	ChannelProfile(ctx context.Context, username, callerID string) (models.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID string) ([]models.WatchEntry, error)
	AddWatchHistory(ctx context.Context, userID, videoID string) error
}

// TokenIssuer mints and verifies the access/refresh token pair.
type TokenIssuer interface {
	IssuePair(user models.User) (models.TokenPair, error)
	VerifyRefresh(token string) (string, error)
}

// VideoStore captures persistence for videos and the detail view builder.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	Detail(ctx context.Context, videoID, callerID string) (models.VideoDetail, error)
	IncrementViews(ctx context.Context, id string) error
	Update(ctx context.Context, video models.Video) error
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, ownerID string, page, limit int) ([]models.Video, error)
}

// CommentStore captures persistence for comments.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	Update(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
	ListForVideo(ctx context.Context, videoID string, page, limit int) ([]models.CommentView, error)
}

// TweetStore captures persistence for tweets and the feed views.
type TweetStore interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	Update(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
	Feed(ctx context.Context, limit int) ([]models.TweetView, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.TweetView, error)
}

// LikeStore captures the atomic like toggles and the liked-videos view.
type LikeStore interface {
	ToggleVideo(ctx context.Context, videoID, userID string) (bool, error)
	ToggleComment(ctx context.Context, commentID, userID string) (bool, error)
	ToggleTweet(ctx context.Context, tweetID, userID string) (bool, error)
	LikedVideos(ctx context.Context, userID string) ([]models.LikedVideo, error)
}

// PlaylistStore captures persistence for playlists and their video lists.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	Update(ctx context.Context, id, name, description string) error
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
	ListForUser(ctx context.Context, ownerID string) ([]models.PlaylistSummary, error)
}

// SubscriptionStore captures the subscribe toggle.
type SubscriptionStore interface {
	Toggle(ctx context.Context, subscriberID, channelID string) (bool, error)
}

// MediaDelegate forwards staged local files to the external upload service
// and returns durable URLs (plus a duration for video files).
type MediaDelegate interface {
	UploadImage(ctx context.Context, localPath string) (string, error)
	UploadVideo(ctx context.Context, localPath string) (media.Asset, error)
}
