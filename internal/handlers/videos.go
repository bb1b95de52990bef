package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/apierror"
	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

// VideoHandler implements video publish, detail, mutation, and listing
// endpoints.
type VideoHandler struct {
	Videos   VideoStore
	Users    UserStore
	Media    MediaDelegate
	StageDir string
	NowFunc  func() time.Time
}

// Publish handles POST /api/v1/videos (multipart video + thumbnail).
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		respondError(ctx, w, apierror.Unauthorized("authentication required"))
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondError(ctx, w, apierror.BadRequest("invalid multipart form"))
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" || description == "" {
		respondError(ctx, w, apierror.BadRequest("title and description are required"))
		return
	}

	videoPath, err := stageUpload(r, "videoFile", h.StageDir)
	if err != nil {
		if errors.Is(err, errNoFile) {
			respondError(ctx, w, apierror.BadRequest("video file is required"))
			return
		}
		respondError(ctx, w, apierror.Server("failed to stage video", err))
		return
	}
	defer removeStaged(videoPath)

	thumbnailPath, err := stageUpload(r, "thumbnail", h.StageDir)
	if err != nil {
		if errors.Is(err, errNoFile) {
			respondError(ctx, w, apierror.BadRequest("thumbnail is required"))
			return
		}
		respondError(ctx, w, apierror.Server("failed to stage thumbnail", err))
		return
	}
	defer removeStaged(thumbnailPath)

	asset, err := h.Media.UploadVideo(ctx, videoPath)
	if err != nil {
		respondError(ctx, w, apierror.Server("video upload failed", err))
		return
	}

	thumbnailURL, err := h.Media.UploadImage(ctx, thumbnailPath)
	if err != nil {
		respondError(ctx, w, apierror.Server("thumbnail upload failed", err))
		return
	}

	now := h.now()
	video := models.Video{
		ID:           uuid.NewString(),
		OwnerID:      caller.ID,
		VideoURL:     asset.URL,
		ThumbnailURL: thumbnailURL,
		Title:        title,
		Description:  description,
		Duration:     asset.Duration,
		IsPublished:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		respondError(ctx, w, apierror.Server("failed to persist video", err))
		return
	}

	logging.FromContext(ctx).Info("video published", "videoId", video.ID, "ownerId", caller.ID)
	respondJSON(ctx, w, http.StatusCreated, video, "video uploaded successfully")
}

// Get handles GET /api/v1/videos/{id}: the detail view plus its read side
// effects (view counter and the caller's deduplicated watch history).
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		respondError(ctx, w, apierror.Unauthorized("authentication required"))
		return
	}

	id := r.PathValue("id")
	if !validID(id) {
		respondError(ctx, w, apierror.BadRequest("videoId is not valid"))
		return
	}

	detail, err := h.Videos.Detail(ctx, id, caller.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apierror.NotFound("video not found"))
			return
		}
		respondError(ctx, w, apierror.Server("failed to fetch video", err))
		return
	}

	logger := logging.FromContext(ctx)
	if err := h.Videos.IncrementViews(ctx, id); err != nil {
		logger.Error("failed to increment views", "videoId", id, "error", err)
	}
	if err := h.Users.AddWatchHistory(ctx, caller.ID, id); err != nil {
		logger.Error("failed to record watch history", "videoId", id, "userId", caller.ID, "error", err)
	}

	respondJSON(ctx, w, http.StatusOK, detail, "video details fetched successfully")
}

// Update handles PATCH /api/v1/videos/{id} (multipart, thumbnail optional).
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		respondError(ctx, w, apierror.Unauthorized("authentication required"))
		return
	}

	id := r.PathValue("id")
	if !validID(id) {
		respondError(ctx, w, apierror.BadRequest("videoId is not valid"))
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondError(ctx, w, apierror.BadRequest("invalid multipart form"))
		return
	}

	video, err := h.Videos.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apierror.NotFound("video not found"))
			return
		}
		respondError(ctx, w, apierror.Server("failed to load video", err))
		return
	}

	if video.OwnerID != caller.ID {
		respondError(ctx, w, apierror.Unauthorized("you are not authorized to update this video"))
		return
	}

	if title := strings.TrimSpace(r.FormValue("title")); title != "" {
		video.Title = title
	}
	if description := strings.TrimSpace(r.FormValue("description")); description != "" {
		video.Description = description
	}

	thumbnailPath, err := stageUpload(r, "thumbnail", h.StageDir)
	switch {
	case err == nil:
		defer removeStaged(thumbnailPath)
		url, uploadErr := h.Media.UploadImage(ctx, thumbnailPath)
		if uploadErr != nil {
			respondError(ctx, w, apierror.Server("thumbnail upload failed", uploadErr))
			return
		}
		video.ThumbnailURL = url
	case !errors.Is(err, errNoFile):
		respondError(ctx, w, apierror.Server("failed to stage thumbnail", err))
		return
	}

	if err := h.Videos.Update(ctx, video); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apierror.NotFound("video not found"))
			return
		}
		respondError(ctx, w, apierror.Server("failed to update video", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, video, "video details updated successfully")
}

// Delete handles DELETE /api/v1/videos/{id}.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		respondError(ctx, w, apierror.Unauthorized("authentication required"))
		return
	}

	id := r.PathValue("id")
	if !validID(id) {
		respondError(ctx, w, apierror.BadRequest("videoId is not valid"))
		return
	}

	video, err := h.Videos.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apierror.NotFound("video not found"))
			return
		}
		respondError(ctx, w, apierror.Server("failed to load video", err))
		return
	}

	if video.OwnerID != caller.ID {
		respondError(ctx, w, apierror.Unauthorized("you are not authorized to delete this video"))
		return
	}

	if err := h.Videos.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apierror.NotFound("video not found"))
			return
		}
		respondError(ctx, w, apierror.Server("failed to delete video", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, nil, "video deleted successfully")
}

// List handles GET /api/v1/videos: a user's videos, paginated. The userId
// query parameter defaults to the caller.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		respondError(ctx, w, apierror.Unauthorized("authentication required"))
		return
	}

	ownerID := r.URL.Query().Get("userId")
	if ownerID == "" {
		ownerID = caller.ID
	}
	if !validID(ownerID) {
		respondError(ctx, w, apierror.BadRequest("userId is not valid"))
		return
	}

	page, limit := pagination(r)
	videos, err := h.Videos.ListByOwner(ctx, ownerID, page, limit)
	if err != nil {
		respondError(ctx, w, apierror.Server("failed to fetch videos", err))
		return
	}
	if videos == nil {
		videos = []models.Video{}
	}

	respondJSON(ctx, w, http.StatusOK, videos, "videos fetched successfully")
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
