package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/vidtube/backend/internal/apierror"
	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

// LikeHandler implements like toggles for videos, comments, and tweets, plus
// the caller's liked-videos view.
type LikeHandler struct {
	Likes LikeStore
}

// ToggleVideo handles POST /api/v1/likes/toggle/v/{videoId}.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "videoId", "video", h.Likes.ToggleVideo)
}

// ToggleComment handles POST /api/v1/likes/toggle/c/{commentId}.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "commentId", "comment", h.Likes.ToggleComment)
}

// ToggleTweet handles POST /api/v1/likes/toggle/t/{tweetId}.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "tweetId", "tweet", h.Likes.ToggleTweet)
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, param, noun string, fn func(ctx context.Context, targetID, userID string) (bool, error)) {
	ctx := r.Context()

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		respondError(ctx, w, apierror.Unauthorized("authentication required"))
		return
	}

	id := r.PathValue(param)
	if !validID(id) {
		respondError(ctx, w, apierror.BadRequest(param+" is not valid"))
		return
	}

	liked, err := fn(ctx, id, caller.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apierror.NotFound(noun+" not found"))
			return
		}
		respondError(ctx, w, apierror.Server("failed to toggle like", err))
		return
	}

	message := noun + " unliked successfully"
	if liked {
		message = noun + " liked successfully"
	}
	respondJSON(ctx, w, http.StatusOK, map[string]bool{"liked": liked}, message)
}

// LikedVideos handles GET /api/v1/likes/videos.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		respondError(ctx, w, apierror.Unauthorized("authentication required"))
		return
	}

	videos, err := h.Likes.LikedVideos(ctx, caller.ID)
	if err != nil {
		respondError(ctx, w, apierror.Server("failed to fetch liked videos", err))
		return
	}
	if videos == nil {
		videos = []models.LikedVideo{}
	}

	respondJSON(ctx, w, http.StatusOK, videos, "liked videos fetched successfully")
}
