// Package middleware provides authentication, logging, metrics and
// tracing middleware for the application.
package middleware

import (
	"context"

	"duskblog/internal/auth"
	"duskblog/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Cookie names of the session token pair.
const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

// PrincipalKey is the fiber locals key the resolved principal is stored under.
const PrincipalKey = "principal"

// UserLoader is the slice of the user repository the session middleware needs.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// CookieOptions carries the deployment-dependent cookie attributes.
// Secure/SameSite differ between same-site development and the
// cross-site hosted frontend, so they come from configuration.
type CookieOptions struct {
	Secure   bool
	SameSite string
}

// Session resolves the caller's identity from the token cookies and
// transparently renews the pair on every authenticated request.
type Session struct {
	tokens  *auth.TokenService
	users   UserLoader
	cookies CookieOptions
}

// NewSession creates the session middleware.
func NewSession(tokens *auth.TokenService, users UserLoader, cookies CookieOptions) *Session {
	return &Session{tokens: tokens, users: users, cookies: cookies}
}

// RequireAuth enforces an authenticated session.
//
// With an access cookie present the access token must verify; there is
// deliberately no fallback to a refresh cookie when the access token is
// expired. The client must drop the access cookie to trigger silent
// renewal. With only a refresh cookie, the refresh token must verify.
// Every successful pass issues a fresh pair and overwrites both cookies
// (sliding session). Concurrent requests from one client can race on
// the single refresh-token slot; the loser's refresh token becomes
// unusable and that client re-authenticates. Known limitation.
func (s *Session) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		access := c.Cookies(AccessCookie)
		refresh := c.Cookies(RefreshCookie)

		if access == "" && refresh == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Unauthorized request"))
		}

		var (
			userID string
			err    error
		)
		if access != "" {
			userID, err = s.tokens.VerifyAccess(access)
		} else {
			userID, err = s.tokens.VerifyRefresh(refresh)
		}
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}

		user, err := s.users.GetByID(c.UserContext(), userID)
		if err != nil {
			if models.IsCode(err, "NOT_FOUND") {
				return models.RespondWithError(c, fiber.StatusNotFound, err)
			}
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}

		newAccess, newRefresh, err := s.tokens.IssuePair(c.UserContext(), userID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		s.SetSessionCookies(c, newAccess, newRefresh)

		principal := auth.PrincipalFromUser(user)
		c.Locals(PrincipalKey, principal)
		c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, principal.ID))

		return c.Next()
	}
}

// SetSessionCookies writes both token cookies with the configured attributes.
func (s *Session) SetSessionCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	c.Cookie(s.cookie(AccessCookie, accessToken, int(s.tokens.AccessTTL().Seconds())))
	c.Cookie(s.cookie(RefreshCookie, refreshToken, int(s.tokens.RefreshTTL().Seconds())))
}

// ClearSessionCookies expires both token cookies.
func (s *Session) ClearSessionCookies(c *fiber.Ctx) {
	c.Cookie(s.cookie(AccessCookie, "", -1))
	c.Cookie(s.cookie(RefreshCookie, "", -1))
}

func (s *Session) cookie(name, value string, maxAge int) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HTTPOnly: true,
		Secure:   s.cookies.Secure,
		SameSite: s.cookies.SameSite,
	}
}

// Principal returns the authenticated principal attached by RequireAuth.
func Principal(c *fiber.Ctx) auth.Principal {
	p, _ := c.Locals(PrincipalKey).(auth.Principal)
	return p
}
