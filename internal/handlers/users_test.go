package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
)

func newTokenService(t *testing.T) *auth.TokenService {
	t.Helper()
	tokens, err := auth.NewTokenService("access-secret-0123456789", "refresh-secret-0123456789", 15*time.Minute, 240*time.Hour)
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}
	return tokens
}

func TestUserHandlerRegister(t *testing.T) {
	store := newFakeUserStore()
	handler := UserHandler{Users: store, Media: &fakeMedia{}, StageDir: t.TempDir()}

	body, contentType := multipartBody(t, map[string]string{
		"username": "Alice",
		"email":    "alice@example.com",
		"fullname": "Alice Example",
		"password": "supersafe",
	}, map[string]string{"avatar": "avatar.png"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	stored, err := store.FindByUsernameOrEmail(context.Background(), "alice")
	if err != nil {
		t.Fatalf("expected user to be stored: %v", err)
	}
	if stored.Username != "alice" {
		t.Fatalf("expected lowercased username, got %q", stored.Username)
	}
	if stored.AvatarURL == "" {
		t.Fatal("expected avatar url to be set from upload")
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("supersafe")) != nil {
		t.Fatal("stored password is not hashed")
	}
}

func TestUserHandlerRegisterDuplicate(t *testing.T) {
	store := newFakeUserStore()
	store.users["user-1"] = models.User{ID: "user-1", Username: "alice", Email: "alice@example.com"}
	handler := UserHandler{Users: store, Media: &fakeMedia{}, StageDir: t.TempDir()}

	body, contentType := multipartBody(t, map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"fullname": "Alice Example",
		"password": "supersafe",
	}, map[string]string{"avatar": "avatar.png"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status %d got %d", http.StatusConflict, rec.Code)
	}
}

func TestUserHandlerRegisterMissingAvatar(t *testing.T) {
	handler := UserHandler{Users: newFakeUserStore(), Media: &fakeMedia{}, StageDir: t.TempDir()}

	body, contentType := multipartBody(t, map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"fullname": "Alice Example",
		"password": "supersafe",
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestUserHandlerRegisterMissingFields(t *testing.T) {
	complete := map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"fullname": "Alice Example",
		"password": "supersafe",
	}

	for _, missing := range []string{"username", "email", "fullname", "password"} {
		t.Run(missing, func(t *testing.T) {
			store := newFakeUserStore()
			handler := UserHandler{Users: store, Media: &fakeMedia{}, StageDir: t.TempDir()}

			fields := make(map[string]string)
			for name, value := range complete {
				if name != missing {
					fields[name] = value
				}
			}

			body, contentType := multipartBody(t, fields, map[string]string{"avatar": "avatar.png"})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			handler.Register(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d got %d: %s", http.StatusBadRequest, rec.Code, rec.Body.String())
			}
			if len(store.users) != 0 {
				t.Fatalf("expected no record to be created, got %d", len(store.users))
			}
		})
	}
}

type denyAllLimiter struct{}

func (denyAllLimiter) Allow(string) bool { return false }

func TestUserHandlerRegisterRateLimited(t *testing.T) {
	store := newFakeUserStore()
	handler := UserHandler{Users: store, Media: &fakeMedia{}, StageDir: t.TempDir(), Limiter: denyAllLimiter{}}

	body, contentType := multipartBody(t, map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"fullname": "Alice Example",
		"password": "supersafe",
	}, map[string]string{"avatar": "avatar.png"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status %d got %d", http.StatusTooManyRequests, rec.Code)
	}
	if len(store.users) != 0 {
		t.Fatalf("expected no record to be created, got %d", len(store.users))
	}
}

func TestUserHandlerLogin(t *testing.T) {
	store := newFakeUserStore()
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	store.users["user-1"] = models.User{
		ID: "user-1", Username: "alice", Email: "alice@example.com", PasswordHash: string(hashed),
	}

	handler := UserHandler{Users: store, Tokens: newTokenService(t)}

	body, err := json.Marshal(loginRequest{Username: "alice", Password: "password123"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data authResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Tokens.AccessToken == "" || envelope.Data.Tokens.RefreshToken == "" {
		t.Fatalf("expected tokens to be issued, got %+v", envelope.Data.Tokens)
	}

	stored, _ := store.FindByID(context.Background(), "user-1")
	if stored.RefreshToken != envelope.Data.Tokens.RefreshToken {
		t.Fatal("expected refresh token to be persisted on the user record")
	}

	cookies := rec.Result().Cookies()
	names := make(map[string]bool)
	for _, cookie := range cookies {
		names[cookie.Name] = true
		if !cookie.HttpOnly {
			t.Fatalf("expected cookie %s to be http-only", cookie.Name)
		}
	}
	if !names[auth.AccessCookieName] || !names[auth.RefreshCookieName] {
		t.Fatalf("expected auth cookies to be set, got %v", names)
	}
}

func TestUserHandlerLoginWrongPassword(t *testing.T) {
	store := newFakeUserStore()
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	store.users["user-1"] = models.User{ID: "user-1", Username: "alice", PasswordHash: string(hashed)}

	handler := UserHandler{Users: store, Tokens: newTokenService(t)}

	body, _ := json.Marshal(loginRequest{Username: "alice", Password: "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestUserHandlerRefreshRotatedToken(t *testing.T) {
	tokens := newTokenService(t)
	store := newFakeUserStore()
	user := models.User{ID: "user-1", Username: "alice", Email: "alice@example.com"}

	pair, err := tokens.IssuePair(user)
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}

	// A different refresh token is stored, as if the session was rotated.
	user.RefreshToken = "rotated-elsewhere"
	store.users[user.ID] = user

	handler := UserHandler{Users: store, Tokens: tokens}

	body, _ := json.Marshal(refreshRequest{RefreshToken: pair.RefreshToken})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Refresh(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestUserHandlerRefresh(t *testing.T) {
	tokens := newTokenService(t)
	store := newFakeUserStore()
	user := models.User{ID: "user-1", Username: "alice", Email: "alice@example.com"}

	pair, err := tokens.IssuePair(user)
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}
	user.RefreshToken = pair.RefreshToken
	store.users[user.ID] = user

	handler := UserHandler{Users: store, Tokens: tokens}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: auth.RefreshCookieName, Value: pair.RefreshToken})
	rec := httptest.NewRecorder()

	handler.Refresh(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Message != "access token refreshed successfully" {
		t.Fatalf("expected refresh message, got %q", envelope.Message)
	}

	stored, _ := store.FindByID(context.Background(), "user-1")
	if stored.RefreshToken == "" {
		t.Fatal("expected a fresh refresh token to be persisted")
	}
}

func TestUserHandlerChangePassword(t *testing.T) {
	store := newFakeUserStore()
	hashed, _ := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.DefaultCost)
	store.users["user-1"] = models.User{ID: "user-1", Username: "alice", PasswordHash: string(hashed)}

	handler := UserHandler{Users: store}

	body, _ := json.Marshal(changePasswordRequest{OldPassword: "old-password", NewPassword: "new-password"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/change-password", bytes.NewReader(body))
	req = callerRequest(req, "user-1", "alice")
	rec := httptest.NewRecorder()

	handler.ChangePassword(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	stored, _ := store.FindByID(context.Background(), "user-1")
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("new-password")) != nil {
		t.Fatal("expected new password hash to be stored")
	}
}

func TestUserHandlerChangePasswordWrongOld(t *testing.T) {
	store := newFakeUserStore()
	hashed, _ := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.DefaultCost)
	store.users["user-1"] = models.User{ID: "user-1", Username: "alice", PasswordHash: string(hashed)}

	handler := UserHandler{Users: store}

	body, _ := json.Marshal(changePasswordRequest{OldPassword: "nope", NewPassword: "new-password"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/change-password", bytes.NewReader(body))
	req = callerRequest(req, "user-1", "alice")
	rec := httptest.NewRecorder()

	handler.ChangePassword(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestUserHandlerLogoutClearsRefreshToken(t *testing.T) {
	store := newFakeUserStore()
	store.users["user-1"] = models.User{ID: "user-1", Username: "alice", RefreshToken: "live-token"}

	handler := UserHandler{Users: store}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil)
	req = callerRequest(req, "user-1", "alice")
	rec := httptest.NewRecorder()

	handler.Logout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	stored, _ := store.FindByID(context.Background(), "user-1")
	if stored.RefreshToken != "" {
		t.Fatal("expected refresh token to be cleared")
	}
}
