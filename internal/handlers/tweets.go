package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/apierror"
	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

const defaultFeedLimit = 30

// TweetHandler implements the short-post endpoints.
type TweetHandler struct {
	Tweets  TweetStore
	NowFunc func() time.Time
}

type tweetRequest struct {
	Content string `json:"content"`
}

// Create handles POST /api/v1/tweets.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		respondError(ctx, w, apierror.Unauthorized("authentication required"))
		return
	}

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, apierror.BadRequest("invalid request body"))
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		respondError(ctx, w, apierror.BadRequest("content is required"))
		return
	}

	now := h.now()
	tweet := models.Tweet{
		ID:        uuid.NewString(),
		OwnerID:   caller.ID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Tweets.Create(ctx, tweet); err != nil {
		respondError(ctx, w, apierror.Server("failed to create tweet", err))
		return
	}

	respondJSON(ctx, w, http.StatusCreated, tweet, "tweet created successfully")
}

// Feed handles GET /api/v1/tweets: the newest tweets across all users, with
// owner cards and like counts.
func (h TweetHandler) Feed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultFeedLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondError(ctx, w, apierror.BadRequest("limit is not valid"))
			return
		}
		limit = parsed
	}

	tweets, err := h.Tweets.Feed(ctx, limit)
	if err != nil {
		respondError(ctx, w, apierror.Server("failed to fetch tweets", err))
		return
	}
	if tweets == nil {
		tweets = []models.TweetView{}
	}

	respondJSON(ctx, w, http.StatusOK, tweets, "tweets fetched successfully")
}

// ListByUser handles GET /api/v1/tweets/user/{userId}.
func (h TweetHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := r.PathValue("userId")
	if !validID(userID) {
		respondError(ctx, w, apierror.BadRequest("userId is not valid"))
		return
	}

	tweets, err := h.Tweets.ListByOwner(ctx, userID)
	if err != nil {
		respondError(ctx, w, apierror.Server("failed to fetch tweets", err))
		return
	}
	if tweets == nil {
		tweets = []models.TweetView{}
	}

	respondJSON(ctx, w, http.StatusOK, tweets, "tweets fetched successfully")
}

// Update handles PATCH /api/v1/tweets/{tweetId}.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		respondError(ctx, w, apierror.Unauthorized("authentication required"))
		return
	}

	tweetID := r.PathValue("tweetId")
	if !validID(tweetID) {
		respondError(ctx, w, apierror.BadRequest("tweetId is not valid"))
		return
	}

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, apierror.BadRequest("invalid request body"))
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		respondError(ctx, w, apierror.BadRequest("content is required"))
		return
	}

	tweet, err := h.Tweets.FindByID(ctx, tweetID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apierror.NotFound("tweet not found"))
			return
		}
		respondError(ctx, w, apierror.Server("failed to load tweet", err))
		return
	}

	if tweet.OwnerID != caller.ID {
		respondError(ctx, w, apierror.Unauthorized("you are not authorized to update this tweet"))
		return
	}

	tweet.Content = content
	tweet.UpdatedAt = h.now()
	if err := h.Tweets.Update(ctx, tweetID, content); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apierror.NotFound("tweet not found"))
			return
		}
		respondError(ctx, w, apierror.Server("failed to update tweet", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, tweet, "tweet updated successfully")
}

// Delete handles DELETE /api/v1/tweets/{tweetId}.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		respondError(ctx, w, apierror.Unauthorized("authentication required"))
		return
	}

	tweetID := r.PathValue("tweetId")
	if !validID(tweetID) {
		respondError(ctx, w, apierror.BadRequest("tweetId is not valid"))
		return
	}

	tweet, err := h.Tweets.FindByID(ctx, tweetID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apierror.NotFound("tweet not found"))
			return
		}
		respondError(ctx, w, apierror.Server("failed to load tweet", err))
		return
	}

	if tweet.OwnerID != caller.ID {
		respondError(ctx, w, apierror.Unauthorized("you are not authorized to delete this tweet"))
		return
	}

	if err := h.Tweets.Delete(ctx, tweetID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apierror.NotFound("tweet not found"))
			return
		}
		respondError(ctx, w, apierror.Server("failed to delete tweet", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, nil, "tweet deleted successfully")
}

func (h TweetHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
