package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/auth"
)

// Routes bundles every handler the API mux serves.
type Routes struct {
	Gate          *auth.Gate
	Users         UserHandler
	Videos        VideoHandler
	Comments      CommentHandler
	Likes         LikeHandler
	Tweets        TweetHandler
	Playlists     PlaylistHandler
	Subscriptions SubscriptionHandler
	Health        HealthHandler
}

// NewMux registers the full API surface under /api/v1 and returns the mux.
func (rt Routes) NewMux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", rt.Health.Handle)

	// Users and sessions. Register, login, and refresh are reachable
	// without credentials; everything else sits behind the gate.
	mux.HandleFunc("POST /api/v1/users/register", rt.Users.Register)
	mux.HandleFunc("POST /api/v1/users/login", rt.Users.Login)
	mux.HandleFunc("POST /api/v1/users/refresh-token", rt.Users.Refresh)

	rt.protect(mux, "POST /api/v1/users/logout", rt.Users.Logout)
	rt.protect(mux, "POST /api/v1/users/change-password", rt.Users.ChangePassword)
	rt.protect(mux, "GET /api/v1/users/current-user", rt.Users.CurrentUser)
	rt.protect(mux, "PATCH /api/v1/users/avatar", rt.Users.UpdateAvatar)
	rt.protect(mux, "PATCH /api/v1/users/cover-image", rt.Users.UpdateCoverImage)
	rt.protect(mux, "GET /api/v1/users/c/{username}", rt.Users.ChannelProfile)
	rt.protect(mux, "GET /api/v1/users/history", rt.Users.WatchHistory)

	// Videos.
	rt.protect(mux, "POST /api/v1/videos", rt.Videos.Publish)
	rt.protect(mux, "GET /api/v1/videos", rt.Videos.List)
	rt.protect(mux, "GET /api/v1/videos/{id}", rt.Videos.Get)
	rt.protect(mux, "PATCH /api/v1/videos/{id}", rt.Videos.Update)
	rt.protect(mux, "DELETE /api/v1/videos/{id}", rt.Videos.Delete)

	// Comments.
	rt.protect(mux, "GET /api/v1/comments/{videoId}", rt.Comments.List)
	rt.protect(mux, "POST /api/v1/comments/{videoId}", rt.Comments.Create)
	rt.protect(mux, "PATCH /api/v1/comments/c/{commentId}", rt.Comments.Update)
	rt.protect(mux, "DELETE /api/v1/comments/c/{commentId}", rt.Comments.Delete)

	// Likes.
	rt.protect(mux, "POST /api/v1/likes/toggle/v/{videoId}", rt.Likes.ToggleVideo)
	rt.protect(mux, "POST /api/v1/likes/toggle/c/{commentId}", rt.Likes.ToggleComment)
	rt.protect(mux, "POST /api/v1/likes/toggle/t/{tweetId}", rt.Likes.ToggleTweet)
	rt.protect(mux, "GET /api/v1/likes/videos", rt.Likes.LikedVideos)

	// Tweets.
	rt.protect(mux, "POST /api/v1/tweets", rt.Tweets.Create)
	rt.protect(mux, "GET /api/v1/tweets", rt.Tweets.Feed)
	rt.protect(mux, "GET /api/v1/tweets/user/{userId}", rt.Tweets.ListByUser)
	rt.protect(mux, "PATCH /api/v1/tweets/{tweetId}", rt.Tweets.Update)
	rt.protect(mux, "DELETE /api/v1/tweets/{tweetId}", rt.Tweets.Delete)

	// Playlists.
	rt.protect(mux, "POST /api/v1/playlists", rt.Playlists.Create)
	rt.protect(mux, "GET /api/v1/playlists/{playlistId}", rt.Playlists.Get)
	rt.protect(mux, "PATCH /api/v1/playlists/{playlistId}", rt.Playlists.Update)
	rt.protect(mux, "DELETE /api/v1/playlists/{playlistId}", rt.Playlists.Delete)
	rt.protect(mux, "GET /api/v1/playlists/user/{userId}", rt.Playlists.ListForUser)
	rt.protect(mux, "PATCH /api/v1/playlists/add/{videoId}/{playlistId}", rt.Playlists.AddVideo)
	rt.protect(mux, "PATCH /api/v1/playlists/remove/{videoId}/{playlistId}", rt.Playlists.RemoveVideo)

	// Subscriptions.
	rt.protect(mux, "POST /api/v1/subscriptions/c/{channelId}", rt.Subscriptions.Toggle)

	return mux
}

func (rt Routes) protect(mux *http.ServeMux, pattern string, handler http.HandlerFunc) {
	mux.Handle(pattern, rt.Gate.Require(handler))
}
