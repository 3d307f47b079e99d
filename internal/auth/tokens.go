package auth

import (
	"context"
	"time"

	"duskblog/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// UserStore is the slice of the user repository the token service needs.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	SetRefreshToken(ctx context.Context, id, token string) error
}

// TokenService issues and verifies the access/refresh token pair.
// Access and refresh tokens are signed with distinct secrets and carry
// only {sub, iat, exp}. The refresh token is persisted on the user
// record as a single slot: issuing a new pair invalidates any previous
// refresh token for that user.
type TokenService struct {
	users         UserStore
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenService creates a TokenService backed by the given user store.
func NewTokenService(users UserStore, accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		users:         users,
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// IssuePair mints a fresh access/refresh pair for the user and persists
// the refresh token. Fails with NotFound when the id does not resolve.
func (s *TokenService) IssuePair(ctx context.Context, userID string) (accessToken, refreshToken string, err error) {
	if _, err = s.users.GetByID(ctx, userID); err != nil {
		return "", "", err
	}

	now := time.Now()
	accessToken, err = sign(userID, s.accessSecret, now, s.accessTTL)
	if err != nil {
		return "", "", models.NewInternalError(err)
	}
	refreshToken, err = sign(userID, s.refreshSecret, now, s.refreshTTL)
	if err != nil {
		return "", "", models.NewInternalError(err)
	}

	if err = s.users.SetRefreshToken(ctx, userID, refreshToken); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// VerifyAccess checks signature and expiry of an access token and
// returns the embedded user id.
func (s *TokenService) VerifyAccess(token string) (string, error) {
	return verify(token, s.accessSecret)
}

// VerifyRefresh checks signature and expiry of a refresh token and
// returns the embedded user id. The stored refresh token is bookkeeping
// only; it is deliberately not compared against the presented token.
func (s *TokenService) VerifyRefresh(token string) (string, error) {
	return verify(token, s.refreshSecret)
}

// AccessTTL returns the access token lifetime (drives the cookie MaxAge).
func (s *TokenService) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL returns the refresh token lifetime (drives the cookie MaxAge).
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

func sign(userID string, secret []byte, now time.Time, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func verify(tokenString string, secret []byte) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, models.NewUnauthorizedError("Invalid signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return "", models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", models.NewUnauthorizedError("Invalid token claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", models.NewUnauthorizedError("Invalid subject claim")
	}
	return sub, nil
}
