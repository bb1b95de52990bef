package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vidtube/backend/internal/apierror"
	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

// UserHandler implements registration, authentication, profile, and
// watch-history endpoints.
type UserHandler struct {
	Users    UserStore
	Tokens   TokenIssuer
	Media    MediaDelegate
	Limiter  RateLimiter
	StageDir string
	NowFunc  func() time.Time
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type authResponse struct {
	User   models.PublicUser `json:"user"`
	Tokens models.TokenPair  `json:"tokens"`
}

// Register handles POST /api/v1/users/register (multipart).
func (h UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !allowRequest(h.Limiter, r, "register") {
		respondError(ctx, w, apierror.TooManyRequests("too many registration attempts, slow down"))
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondError(ctx, w, apierror.BadRequest("invalid multipart form"))
		return
	}

	username := strings.ToLower(strings.TrimSpace(r.FormValue("username")))
	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	fullName := strings.TrimSpace(r.FormValue("fullname"))
	password := strings.TrimSpace(r.FormValue("password"))

	if username == "" || email == "" || fullName == "" || password == "" {
		respondError(ctx, w, apierror.BadRequest("username, email, fullname, and password are required"))
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		respondError(ctx, w, apierror.BadRequest("invalid email address"))
		return
	}

	exists, err := h.Users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		respondError(ctx, w, apierror.Server("unable to verify existing accounts", err))
		return
	}
	if exists {
		respondError(ctx, w, apierror.Conflict("user with email or username already exists"))
		return
	}

	avatarPath, err := stageUpload(r, "avatar", h.StageDir)
	if err != nil {
		if errors.Is(err, errNoFile) {
			respondError(ctx, w, apierror.BadRequest("avatar is required"))
			return
		}
		respondError(ctx, w, apierror.Server("failed to stage avatar", err))
		return
	}
	defer removeStaged(avatarPath)

	avatarURL, err := h.Media.UploadImage(ctx, avatarPath)
	if err != nil {
		respondError(ctx, w, apierror.Server("avatar upload failed", err))
		return
	}

	// Cover image is optional; only upload when one was attached.
	var coverURL string
	coverPath, err := stageUpload(r, "coverImage", h.StageDir)
	switch {
	case err == nil:
		defer removeStaged(coverPath)
		coverURL, err = h.Media.UploadImage(ctx, coverPath)
		if err != nil {
			respondError(ctx, w, apierror.Server("cover image upload failed", err))
			return
		}
	case !errors.Is(err, errNoFile):
		respondError(ctx, w, apierror.Server("failed to stage cover image", err))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		respondError(ctx, w, apierror.Server("failed to secure password", err))
		return
	}

	now := h.now()
	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hashed),
		AvatarURL:    avatarURL,
		CoverURL:     coverURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, apierror.Conflict("user with email or username already exists"))
			return
		}
		respondError(ctx, w, apierror.Server("failed to create account", err))
		return
	}

	respondJSON(ctx, w, http.StatusCreated, user.Public(), "user registered successfully")
}

// Login handles POST /api/v1/users/login.
func (h UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !allowRequest(h.Limiter, r, "login") {
		respondError(ctx, w, apierror.TooManyRequests("too many login attempts, slow down"))
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, apierror.BadRequest("invalid request body"))
		return
	}

	identifier := strings.ToLower(strings.TrimSpace(req.Username))
	if identifier == "" {
		identifier = strings.ToLower(strings.TrimSpace(req.Email))
	}
	if identifier == "" || req.Password == "" {
		respondError(ctx, w, apierror.BadRequest("username or email and password are required"))
		return
	}

	user, err := h.Users.FindByUsernameOrEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apierror.Unauthorized("invalid credentials"))
			return
		}
		respondError(ctx, w, apierror.Server("login lookup failed", err))
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		respondError(ctx, w, apierror.Unauthorized("invalid credentials"))
		return
	}

	h.issueSession(w, r, user, "logged in successfully")
}

// Refresh handles POST /api/v1/users/refresh-token. The presented token
// must match the one persisted on the user record; a mismatch means the
// token was rotated or revoked.
func (h UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw := ""
	if cookie, err := r.Cookie(auth.RefreshCookieName); err == nil {
		raw = cookie.Value
	}
	if raw == "" {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			raw = strings.TrimSpace(req.RefreshToken)
		}
	}
	if raw == "" {
		respondError(ctx, w, apierror.BadRequest("refresh token is required"))
		return
	}

	userID, err := h.Tokens.VerifyRefresh(raw)
	if err != nil {
		respondError(ctx, w, apierror.Unauthorized("invalid or expired refresh token"))
		return
	}

	user, err := h.Users.FindByID(ctx, userID)
	if err != nil {
		respondError(ctx, w, apierror.Unauthorized("invalid or expired refresh token"))
		return
	}

	if user.RefreshToken == "" || user.RefreshToken != raw {
		respondError(ctx, w, apierror.Unauthorized("refresh token has been rotated or revoked"))
		return
	}

	h.issueSession(w, r, user, "access token refreshed successfully")
}

// Logout handles POST /api/v1/users/logout.
func (h UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		respondError(ctx, w, apierror.Unauthorized("authentication required"))
		return
	}

	if err := h.Users.UpdateRefreshToken(ctx, caller.ID, ""); err != nil {
		respondError(ctx, w, apierror.Server("failed to clear session", err))
		return
	}

	clearAuthCookies(w)
	respondJSON(ctx, w, http.StatusOK, nil, "logged out successfully")
}

// ChangePassword handles POST /api/v1/users/change-password.
func (h UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		respondError(ctx, w, apierror.Unauthorized("authentication required"))
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, apierror.BadRequest("invalid request body"))
		return
	}
	if strings.TrimSpace(req.OldPassword) == "" || strings.TrimSpace(req.NewPassword) == "" {
		respondError(ctx, w, apierror.BadRequest("old and new passwords are required"))
		return
	}

	user, err := h.Users.FindByID(ctx, caller.ID)
	if err != nil {
		respondError(ctx, w, apierror.Server("failed to load account", err))
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)) != nil {
		respondError(ctx, w, apierror.Unauthorized("old password is incorrect"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		respondError(ctx, w, apierror.Server("failed to secure password", err))
		return
	}

	if err := h.Users.UpdatePassword(ctx, caller.ID, string(hashed)); err != nil {
		respondError(ctx, w, apierror.Server("failed to update password", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, nil, "password changed successfully")
}

// CurrentUser handles GET /api/v1/users/current.
func (h UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		respondError(ctx, w, apierror.Unauthorized("authentication required"))
		return
	}

	user, err := h.Users.FindByID(ctx, caller.ID)
	if err != nil {
		respondError(ctx, w, apierror.Server("failed to load account", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, user.Public(), "current user fetched successfully")
}

// UpdateAvatar handles PATCH /api/v1/users/avatar (multipart).
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar", h.Users.UpdateAvatar)
}

// UpdateCoverImage handles PATCH /api/v1/users/cover-image (multipart).
func (h UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage", h.Users.UpdateCover)
}

func (h UserHandler) updateImage(w http.ResponseWriter, r *http.Request, field string, persist func(ctx context.Context, id, url string) error) {
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

	path, err := stageUpload(r, field, h.StageDir)
	if err != nil {
		if errors.Is(err, errNoFile) {
			respondError(ctx, w, apierror.BadRequest(field+" file is required"))
			return
		}
		respondError(ctx, w, apierror.Server("failed to stage "+field, err))
		return
	}
	defer removeStaged(path)

	url, err := h.Media.UploadImage(ctx, path)
	if err != nil {
		respondError(ctx, w, apierror.Server(field+" upload failed", err))
		return
	}

	if err := persist(ctx, caller.ID, url); err != nil {
		respondError(ctx, w, apierror.Server("failed to update "+field, err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{field: url}, field+" updated successfully")
}

// ChannelProfile handles GET /api/v1/users/channel/{username}.
func (h UserHandler) ChannelProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		respondError(ctx, w, apierror.Unauthorized("authentication required"))
		return
	}

	username := strings.TrimSpace(r.PathValue("username"))
	if username == "" {
		respondError(ctx, w, apierror.BadRequest("username is required"))
		return
	}

	profile, err := h.Users.ChannelProfile(ctx, username, caller.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apierror.NotFound("channel not found"))
			return
		}
		respondError(ctx, w, apierror.Server("failed to fetch channel profile", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, profile, "channel profile fetched successfully")
}

// WatchHistory handles GET /api/v1/users/history.
func (h UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		respondError(ctx, w, apierror.Unauthorized("authentication required"))
		return
	}

	entries, err := h.Users.WatchHistory(ctx, caller.ID)
	if err != nil {
		respondError(ctx, w, apierror.Server("failed to fetch watch history", err))
		return
	}
	if entries == nil {
		entries = []models.WatchEntry{}
	}

	respondJSON(ctx, w, http.StatusOK, entries, "watch history fetched successfully")
}

// issueSession mints a token pair, persists the refresh token on the user
// record, and returns both tokens in the body and as HttpOnly cookies.
func (h UserHandler) issueSession(w http.ResponseWriter, r *http.Request, user models.User, message string) {
	ctx := r.Context()

	pair, err := h.Tokens.IssuePair(user)
	if err != nil {
		respondError(ctx, w, apierror.Server("failed to issue tokens", err))
		return
	}

	if err := h.Users.UpdateRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		respondError(ctx, w, apierror.Server("failed to persist session", err))
		return
	}

	setAuthCookies(w, pair)

	logging.FromContext(ctx).Info("session issued", "userId", user.ID)
	respondJSON(ctx, w, http.StatusOK, authResponse{User: user.Public(), Tokens: pair}, message)
}

func setAuthCookies(w http.ResponseWriter, pair models.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.AccessCookieName,
		Value:    pair.AccessToken,
		Path:     "/",
		Expires:  pair.AccessExpiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     auth.RefreshCookieName,
		Value:    pair.RefreshToken,
		Path:     "/",
		Expires:  pair.RefreshExpiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{auth.AccessCookieName, auth.RefreshCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func (h UserHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
