package handlers

import (
	"errors"
	"net/http"

	"github.com/vidtube/backend/internal/apierror"
	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/repositories"
)

// SubscriptionHandler implements the channel subscribe toggle.
type SubscriptionHandler struct {
	Subscriptions SubscriptionStore
}

// Toggle handles POST /api/v1/subscriptions/c/{channelId}.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		respondError(ctx, w, apierror.Unauthorized("authentication required"))
		return
	}

	channelID := r.PathValue("channelId")
	if !validID(channelID) {
		respondError(ctx, w, apierror.BadRequest("channelId is not valid"))
		return
	}

	if channelID == caller.ID {
		respondError(ctx, w, apierror.BadRequest("you cannot subscribe to your own channel"))
		return
	}

	subscribed, err := h.Subscriptions.Toggle(ctx, caller.ID, channelID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apierror.NotFound("channel not found"))
			return
		}
		respondError(ctx, w, apierror.Server("failed to toggle subscription", err))
		return
	}

	message := "unsubscribed successfully"
	if subscribed {
		message = "subscribed successfully"
	}
	respondJSON(ctx, w, http.StatusOK, map[string]bool{"subscribed": subscribed}, message)
}
