// Package auth issues and verifies the signed credentials used by the API:
// a short-lived access token carrying the caller's public identity and a
// long-lived refresh token carrying only the user id. The refresh token is
// also persisted on the user record so rotation mismatches can be detected.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vidtube/backend/internal/models"
)

const issuer = "vidtube"

var (
	// ErrInvalidToken indicates a token that is missing, malformed,
	// tampered with, or expired.
	ErrInvalidToken = errors.New("invalid token")
)

// Identity is the caller identity attached to authenticated requests.
type Identity struct {
	ID       string
	Username string
	Email    string
	FullName string
}

type accessClaims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullname"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies the access/refresh token pair with
// HS256. Access and refresh tokens use independent secrets so leaking one
// does not compromise the other.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration

	// NowFunc overrides the time source in tests.
	NowFunc func() time.Time
}

// NewTokenService constructs a TokenService with the provided secrets and
// lifetimes.
func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) (*TokenService, error) {
	if len(accessSecret) < 16 || len(refreshSecret) < 16 {
		return nil, errors.New("auth: token secrets must be at least 16 characters")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("auth: token lifetimes must be positive")
	}
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

// IssuePair mints a fresh access and refresh token pair for the user.
func (s *TokenService) IssuePair(user models.User) (models.TokenPair, error) {
	now := s.now()

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	})
	accessSigned, err := access.SignedString(s.accessSecret)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   user.ID,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
	})
	refreshSigned, err := refresh.SignedString(s.refreshSecret)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return models.TokenPair{
		AccessToken:      accessSigned,
		AccessExpiresAt:  now.Add(s.accessTTL),
		RefreshToken:     refreshSigned,
		RefreshExpiresAt: now.Add(s.refreshTTL),
	}, nil
}

// VerifyAccess checks an access token's signature and expiry and returns
// the identity encoded in it.
func (s *TokenService) VerifyAccess(tokenStr string) (Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&accessClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return s.accessSecret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return Identity{}, ErrInvalidToken
	}

	return Identity{
		ID:       claims.Subject,
		Username: claims.Username,
		Email:    claims.Email,
		FullName: claims.FullName,
	}, nil
}

// VerifyRefresh checks a refresh token's signature and expiry and returns
// the user id encoded in it. Matching against the token persisted on the
// user record is the caller's responsibility.
func (s *TokenService) VerifyRefresh(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return s.refreshSecret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}

func (s *TokenService) now() time.Time {
	if s.NowFunc != nil {
		return s.NowFunc()
	}
	return time.Now().UTC()
}
