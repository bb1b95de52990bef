package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
)

// AccessCookieName and RefreshCookieName are the HttpOnly cookies the API
// issues alongside the response body tokens.
const (
	AccessCookieName  = "accessToken"
	RefreshCookieName = "refreshToken"
)

type ctxKey struct{}

// UserResolver loads the user a verified token subject refers to. Tokens
// whose subject no longer resolves to a live user are rejected.
type UserResolver interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// Gate verifies bearer credentials and attaches the caller identity to the
// request context. Single-shot verify-and-attach; no state is kept between
// requests.
type Gate struct {
	Tokens *TokenService
	Users  UserResolver
}

// Require wraps next so it only runs for authenticated requests. The token
// is taken from the access cookie or the Authorization header; any failure
// short-circuits with 401.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		raw := TokenFromRequest(r)
		if raw == "" {
			reject(ctx, w, "authentication required")
			return
		}

		identity, err := g.Tokens.VerifyAccess(raw)
		if err != nil {
			logging.FromContext(ctx).Warn("access token rejected", "error", err)
			reject(ctx, w, "invalid or expired token")
			return
		}

		user, err := g.Users.FindByID(ctx, identity.ID)
		if err != nil {
			logging.FromContext(ctx).Warn("token subject not found", "userId", identity.ID, "error", err)
			reject(ctx, w, "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithCaller(ctx, Identity{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			FullName: user.FullName,
		})))
	})
}

// TokenFromRequest extracts the raw access token from the cookie or the
// Authorization header. An empty string means no token was supplied.
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(AccessCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}

// WithCaller stores the caller identity on the context.
func WithCaller(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, identity)
}

// CallerFromContext retrieves the authenticated caller, if any.
func CallerFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(ctxKey{}).(Identity)
	return identity, ok && identity.ID != ""
}

func reject(ctx context.Context, w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	body := map[string]any{
		"status":  http.StatusUnauthorized,
		"code":    "unauthorized",
		"message": message,
		"success": false,
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.FromContext(ctx).Error("encode unauthorized response", "error", err)
	}
}
