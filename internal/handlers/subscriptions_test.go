package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func toggleSubscription(handler SubscriptionHandler, subscriberID, channelID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/c/"+channelID, nil)
	req.SetPathValue("channelId", channelID)
	req = callerRequest(req, subscriberID, "someone")
	rec := httptest.NewRecorder()
	handler.Toggle(rec, req)
	return rec
}

func TestSubscriptionHandlerToggle(t *testing.T) {
	handler := SubscriptionHandler{Subscriptions: newFakeSubscriptionStore()}

	rec := toggleSubscription(handler, otherID, ownerID)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data map[string]bool `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data["subscribed"] {
		t.Fatal("expected first toggle to subscribe")
	}

	rec = toggleSubscription(handler, otherID, ownerID)
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data["subscribed"] {
		t.Fatal("expected second toggle to unsubscribe")
	}
}

func TestSubscriptionHandlerSelfSubscribe(t *testing.T) {
	handler := SubscriptionHandler{Subscriptions: newFakeSubscriptionStore()}

	rec := toggleSubscription(handler, ownerID, ownerID)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}
