package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"duskblog/internal/auth"
	"duskblog/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// userLoaderStub is an in-memory UserLoader and auth.UserStore.
type userLoaderStub struct {
	users map[string]*models.User
}

func (s *userLoaderStub) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, models.NewNotFoundError("User", id)
	}
	return u, nil
}

func (s *userLoaderStub) SetRefreshToken(_ context.Context, id, token string) error {
	if u, ok := s.users[id]; ok {
		u.RefreshToken = token
	}
	return nil
}

func sessionFixture(t *testing.T, accessTTL time.Duration) (*Session, *auth.TokenService, *userLoaderStub, string) {
	t.Helper()
	uid := primitive.NewObjectID()
	store := &userLoaderStub{users: map[string]*models.User{
		uid.Hex(): {ID: uid, Username: "alice"},
	}}
	tokens := auth.NewTokenService(store, "access-secret", "refresh-secret", accessTTL, 10*time.Hour)
	return NewSession(tokens, store, CookieOptions{SameSite: "Lax"}), tokens, store, uid.Hex()
}

func protectedApp(s *Session) *fiber.App {
	app := fiber.New()
	app.Get("/protected", s.RequireAuth(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user": Principal(c).Username})
	})
	return app
}

func cookiesByName(resp *http.Response) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, ck := range resp.Cookies() {
		out[ck.Name] = ck
	}
	return out
}

func TestRequireAuth_NoCookies(t *testing.T) {
	t.Parallel()

	session, _, _, _ := sessionFixture(t, time.Hour)
	app := protectedApp(session)

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAuth_AccessCookieRotatesPair(t *testing.T) {
	t.Parallel()

	session, tokens, store, uid := sessionFixture(t, time.Hour)
	app := protectedApp(session)

	access, _, err := tokens.IssuePair(context.Background(), uid)
	require.NoError(t, err)
	firstRefresh := store.users[uid].RefreshToken

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookie, Value: access})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// both cookies are overwritten on every authenticated request
	set := cookiesByName(resp)
	require.Contains(t, set, AccessCookie)
	require.Contains(t, set, RefreshCookie)
	assert.NotEmpty(t, set[AccessCookie].Value)
	assert.True(t, set[AccessCookie].HttpOnly)
	assert.Equal(t, set[RefreshCookie].Value, store.users[uid].RefreshToken)
	assert.NotEqual(t, firstRefresh, store.users[uid].RefreshToken)
}

func TestRequireAuth_RefreshOnlyRenewsSilently(t *testing.T) {
	t.Parallel()

	session, tokens, _, uid := sessionFixture(t, time.Hour)
	app := protectedApp(session)

	_, refresh, err := tokens.IssuePair(context.Background(), uid)
	require.NoError(t, err)

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: RefreshCookie, Value: refresh})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	set := cookiesByName(resp)
	assert.NotEmpty(t, set[AccessCookie].Value)
	assert.NotEmpty(t, set[RefreshCookie].Value)
}

func TestRequireAuth_ExpiredAccessHasNoRefreshFallback(t *testing.T) {
	t.Parallel()

	// access tokens are minted already expired
	session, tokens, _, uid := sessionFixture(t, -time.Minute)
	app := protectedApp(session)

	access, refresh, err := tokens.IssuePair(context.Background(), uid)
	require.NoError(t, err)

	// even with a valid refresh cookie alongside, a present-but-invalid
	// access cookie fails the request outright
	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookie, Value: access})
	req.AddCookie(&http.Cookie{Name: RefreshCookie, Value: refresh})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAuth_DeletedUser(t *testing.T) {
	t.Parallel()

	session, tokens, store, uid := sessionFixture(t, time.Hour)
	app := protectedApp(session)

	access, _, err := tokens.IssuePair(context.Background(), uid)
	require.NoError(t, err)
	delete(store.users, uid)

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookie, Value: access})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestClearSessionCookies(t *testing.T) {
	t.Parallel()

	session, _, _, _ := sessionFixture(t, time.Hour)
	app := fiber.New()
	app.Post("/signout", func(c *fiber.Ctx) error {
		session.ClearSessionCookies(c)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/signout", nil))
	require.NoError(t, err)

	set := cookiesByName(resp)
	require.Contains(t, set, AccessCookie)
	require.Contains(t, set, RefreshCookie)
	assert.Empty(t, set[AccessCookie].Value)
	assert.Empty(t, set[RefreshCookie].Value)
}
