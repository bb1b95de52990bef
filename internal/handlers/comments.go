package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/apierror"
	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

// CommentHandler implements comment CRUD under videos.
type CommentHandler struct {
	Comments CommentStore
	NowFunc  func() time.Time
}

type commentRequest struct {
	Content string `json:"content"`
}

// List handles GET /api/v1/comments/{videoId}.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videoID := r.PathValue("videoId")
	if !validID(videoID) {
		respondError(ctx, w, apierror.BadRequest("videoId is not valid"))
		return
	}

	page, limit := pagination(r)
	comments, err := h.Comments.ListForVideo(ctx, videoID, page, limit)
	if err != nil {
		respondError(ctx, w, apierror.Server("failed to fetch comments", err))
		return
	}
	if comments == nil {
		comments = []models.CommentView{}
	}

	respondJSON(ctx, w, http.StatusOK, comments, "comments fetched successfully")
}

// Create handles POST /api/v1/comments/{videoId}.
func (h CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		respondError(ctx, w, apierror.Unauthorized("authentication required"))
		return
	}

	videoID := r.PathValue("videoId")
	if !validID(videoID) {
		respondError(ctx, w, apierror.BadRequest("videoId is not valid"))
		return
	}

	var req commentRequest
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
	comment := models.Comment{
		ID:        uuid.NewString(),
		VideoID:   videoID,
		OwnerID:   caller.ID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Comments.Create(ctx, comment); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apierror.NotFound("video not found"))
			return
		}
		respondError(ctx, w, apierror.Server("failed to add comment", err))
		return
	}

	respondJSON(ctx, w, http.StatusCreated, comment, "comment added successfully")
}

// Update handles PATCH /api/v1/comments/c/{commentId}.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		respondError(ctx, w, apierror.Unauthorized("authentication required"))
		return
	}

	commentID := r.PathValue("commentId")
	if !validID(commentID) {
		respondError(ctx, w, apierror.BadRequest("commentId is not valid"))
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, apierror.BadRequest("invalid request body"))
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		respondError(ctx, w, apierror.BadRequest("content is required"))
		return
	}

	comment, err := h.Comments.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apierror.NotFound("comment not found"))
			return
		}
		respondError(ctx, w, apierror.Server("failed to load comment", err))
		return
	}

	if comment.OwnerID != caller.ID {
		respondError(ctx, w, apierror.Unauthorized("you are not authorized to update this comment"))
		return
	}

	comment.Content = content
	comment.UpdatedAt = h.now()
	if err := h.Comments.Update(ctx, commentID, content); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apierror.NotFound("comment not found"))
			return
		}
		respondError(ctx, w, apierror.Server("failed to update comment", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, comment, "comment updated successfully")
}

// Delete handles DELETE /api/v1/comments/c/{commentId}.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		respondError(ctx, w, apierror.Unauthorized("authentication required"))
		return
	}

	commentID := r.PathValue("commentId")
	if !validID(commentID) {
		respondError(ctx, w, apierror.BadRequest("commentId is not valid"))
		return
	}

	comment, err := h.Comments.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apierror.NotFound("comment not found"))
			return
		}
		respondError(ctx, w, apierror.Server("failed to load comment", err))
		return
	}

	if comment.OwnerID != caller.ID {
		respondError(ctx, w, apierror.Unauthorized("you are not authorized to delete this comment"))
		return
	}

	if err := h.Comments.Delete(ctx, commentID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apierror.NotFound("comment not found"))
			return
		}
		respondError(ctx, w, apierror.Server("failed to delete comment", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, nil, "comment deleted successfully")
}

func (h CommentHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
