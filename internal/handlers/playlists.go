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

// PlaylistHandler implements playlist CRUD and membership endpoints.
type PlaylistHandler struct {
	Playlists PlaylistStore
	Videos    VideoStore
	NowFunc   func() time.Time
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create handles POST /api/v1/playlists.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		respondError(ctx, w, apierror.Unauthorized("authentication required"))
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, apierror.BadRequest("invalid request body"))
		return
	}
	name := strings.TrimSpace(req.Name)
	description := strings.TrimSpace(req.Description)
	if name == "" || description == "" {
		respondError(ctx, w, apierror.BadRequest("name and description are required"))
		return
	}

	now := h.now()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     caller.ID,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Playlists.Create(ctx, playlist); err != nil {
		respondError(ctx, w, apierror.Server("failed to create playlist", err))
		return
	}

	respondJSON(ctx, w, http.StatusCreated, playlist, "playlist created successfully")
}

// Get handles GET /api/v1/playlists/{playlistId}.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlistID := r.PathValue("playlistId")
	if !validID(playlistID) {
		respondError(ctx, w, apierror.BadRequest("playlistId is not valid"))
		return
	}

	playlist, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apierror.NotFound("playlist not found"))
			return
		}
		respondError(ctx, w, apierror.Server("failed to fetch playlist", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, playlist, "playlist fetched successfully")
}

// ListForUser handles GET /api/v1/playlists/user/{userId}: the user's
// playlists with aggregate video and view totals.
func (h PlaylistHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := r.PathValue("userId")
	if !validID(userID) {
		respondError(ctx, w, apierror.BadRequest("userId is not valid"))
		return
	}

	playlists, err := h.Playlists.ListForUser(ctx, userID)
	if err != nil {
		respondError(ctx, w, apierror.Server("failed to fetch playlists", err))
		return
	}
	if playlists == nil {
		playlists = []models.PlaylistSummary{}
	}

	respondJSON(ctx, w, http.StatusOK, playlists, "playlists fetched successfully")
}

// Update handles PATCH /api/v1/playlists/{playlistId}.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		respondError(ctx, w, apierror.Unauthorized("authentication required"))
		return
	}

	playlistID := r.PathValue("playlistId")
	if !validID(playlistID) {
		respondError(ctx, w, apierror.BadRequest("playlistId is not valid"))
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, apierror.BadRequest("invalid request body"))
		return
	}
	name := strings.TrimSpace(req.Name)
	description := strings.TrimSpace(req.Description)
	if name == "" || description == "" {
		respondError(ctx, w, apierror.BadRequest("name and description are required"))
		return
	}

	playlist, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apierror.NotFound("playlist not found"))
			return
		}
		respondError(ctx, w, apierror.Server("failed to load playlist", err))
		return
	}

	if playlist.OwnerID != caller.ID {
		respondError(ctx, w, apierror.Unauthorized("you are not authorized to update this playlist"))
		return
	}

	if err := h.Playlists.Update(ctx, playlistID, name, description); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apierror.NotFound("playlist not found"))
			return
		}
		respondError(ctx, w, apierror.Server("failed to update playlist", err))
		return
	}

	playlist.Name = name
	playlist.Description = description
	playlist.UpdatedAt = h.now()
	respondJSON(ctx, w, http.StatusOK, playlist, "playlist updated successfully")
}

// Delete handles DELETE /api/v1/playlists/{playlistId}.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		respondError(ctx, w, apierror.Unauthorized("authentication required"))
		return
	}

	playlistID := r.PathValue("playlistId")
	if !validID(playlistID) {
		respondError(ctx, w, apierror.BadRequest("playlistId is not valid"))
		return
	}

	playlist, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apierror.NotFound("playlist not found"))
			return
		}
		respondError(ctx, w, apierror.Server("failed to load playlist", err))
		return
	}

	if playlist.OwnerID != caller.ID {
		respondError(ctx, w, apierror.Unauthorized("you are not authorized to delete this playlist"))
		return
	}

	if err := h.Playlists.Delete(ctx, playlistID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apierror.NotFound("playlist not found"))
			return
		}
		respondError(ctx, w, apierror.Server("failed to delete playlist", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, nil, "playlist deleted successfully")
}

// AddVideo handles PATCH /api/v1/playlists/add/{videoId}/{playlistId}.
// The caller must own the playlist or the video being added.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, playlist, videoID, ok := h.resolveMembership(w, r)
	if !ok {
		return
	}

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apierror.NotFound("video not found"))
			return
		}
		respondError(ctx, w, apierror.Server("failed to load video", err))
		return
	}

	if playlist.OwnerID != caller.ID && video.OwnerID != caller.ID {
		respondError(ctx, w, apierror.Unauthorized("you are not authorized to add this video to the playlist"))
		return
	}

	if err := h.Playlists.AddVideo(ctx, playlist.ID, videoID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrConflict):
			respondError(ctx, w, apierror.Conflict("video is already in the playlist"))
		case errors.Is(err, repositories.ErrNotFound):
			respondError(ctx, w, apierror.NotFound("playlist or video not found"))
		default:
			respondError(ctx, w, apierror.Server("failed to add video to playlist", err))
		}
		return
	}

	respondJSON(ctx, w, http.StatusOK, nil, "video added to playlist successfully")
}

// RemoveVideo handles PATCH /api/v1/playlists/remove/{videoId}/{playlistId}.
// Only the playlist owner may remove entries.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, playlist, videoID, ok := h.resolveMembership(w, r)
	if !ok {
		return
	}

	if playlist.OwnerID != caller.ID {
		respondError(ctx, w, apierror.Unauthorized("you are not authorized to remove videos from this playlist"))
		return
	}

	if err := h.Playlists.RemoveVideo(ctx, playlist.ID, videoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apierror.NotFound("video is not in the playlist"))
			return
		}
		respondError(ctx, w, apierror.Server("failed to remove video from playlist", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, nil, "video removed from playlist successfully")
}

// resolveMembership validates the membership route parameters, loads the
// playlist, and returns the caller. It writes the error response itself
// when ok is false.
func (h PlaylistHandler) resolveMembership(w http.ResponseWriter, r *http.Request) (auth.Identity, models.Playlist, string, bool) {
	ctx := r.Context()

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		respondError(ctx, w, apierror.Unauthorized("authentication required"))
		return auth.Identity{}, models.Playlist{}, "", false
	}

	videoID := r.PathValue("videoId")
	playlistID := r.PathValue("playlistId")
	if !validID(videoID) || !validID(playlistID) {
		respondError(ctx, w, apierror.BadRequest("playlistId or videoId is not valid"))
		return auth.Identity{}, models.Playlist{}, "", false
	}

	playlist, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apierror.NotFound("playlist not found"))
			return auth.Identity{}, models.Playlist{}, "", false
		}
		respondError(ctx, w, apierror.Server("failed to load playlist", err))
		return auth.Identity{}, models.Playlist{}, "", false
	}

	return caller, playlist, videoID, true
}

func (h PlaylistHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
