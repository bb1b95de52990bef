package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vidtube/backend/internal/models"
)

const commentID = "66666666-6666-6666-6666-666666666666"

func TestCommentHandlerCreate(t *testing.T) {
	comments := newFakeCommentStore()
	handler := CommentHandler{Comments: comments}

	body, _ := json.Marshal(commentRequest{Content: "nice video"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/comments/"+videoID, bytes.NewReader(body))
	req.SetPathValue("videoId", videoID)
	req = callerRequest(req, otherID, "bob")
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	if len(comments.comments) != 1 {
		t.Fatalf("expected one stored comment, got %d", len(comments.comments))
	}
}

func TestCommentHandlerUpdateNotOwner(t *testing.T) {
	comments := newFakeCommentStore()
	comments.comments[commentID] = models.Comment{ID: commentID, VideoID: videoID, OwnerID: ownerID, Content: "original"}
	handler := CommentHandler{Comments: comments}

	body, _ := json.Marshal(commentRequest{Content: "hijacked"})
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/comments/c/"+commentID, bytes.NewReader(body))
	req.SetPathValue("commentId", commentID)
	req = callerRequest(req, otherID, "bob")
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestCommentHandlerDeleteUnknown(t *testing.T) {
	handler := CommentHandler{Comments: newFakeCommentStore()}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/comments/c/"+commentID, nil)
	req.SetPathValue("commentId", commentID)
	req = callerRequest(req, ownerID, "alice")
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d got %d", http.StatusNotFound, rec.Code)
	}
}
