package server

import (
	"encoding/json"
	"time"

	"duskblog/internal/auth"
	"duskblog/internal/middleware"
	"duskblog/internal/models"
	"duskblog/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const oauthStateCookie = "oauthState"

// Signup handles POST /user/signup
func (s *Server) Signup(c *fiber.Ctx) error {
	var req struct {
		Username       string `json:"username"`
		Email          string `json:"email"`
		Password       string `json:"password"`
		Role           string `json:"role"`
		ProfilePicture string `json:"profilePicture"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Signup(c.UserContext(), service.SignupInput{
		Username:       req.Username,
		Email:          req.Email,
		Password:       req.Password,
		Role:           req.Role,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"user":    user,
	})
}

// Login handles POST /user/login. A successful login issues the
// token pair and sets both session cookies.
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	if err := s.startSession(c, user.ID.Hex()); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}

// SignOut handles POST /user/signout
func (s *Server) SignOut(c *fiber.Ctx) error {
	p := middleware.Principal(c)
	if err := auth.Authorize(p, auth.ActionSignOut, p.ID); err != nil {
		return models.RespondWithAppError(c, err)
	}

	if err := s.userService.SignOut(c.UserContext(), p.ID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	s.session.ClearSessionCookies(c)
	return c.JSON(fiber.Map{"message": "Signed out successfully"})
}

// Me handles GET /user/me. Unlike the session middleware it only
// checks the access cookie and does not rotate the pair, so clients can
// poll it cheaply to learn whether the access token is still live.
func (s *Server) Me(c *fiber.Ctx) error {
	access := c.Cookies(middleware.AccessCookie)
	if access == "" {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Unauthorized request"))
	}

	userID, err := s.tokens.VerifyAccess(access)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized, err)
	}

	user, err := s.userService.GetByID(c.UserContext(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}

// GoogleLogin handles GET /user/google: it redirects the browser to
// the Google consent screen with a single-use state nonce.
func (s *Server) GoogleLogin(c *fiber.Ctx) error {
	if s.oauth == nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(fiber.ErrNotImplemented))
	}

	state := uuid.New().String()
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HTTPOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: "Lax",
	})
	return c.Redirect(s.oauth.AuthCodeURL(state), fiber.StatusTemporaryRedirect)
}

// GoogleCallback handles GET /user/google/callback: it validates the
// state, exchanges the code, resolves or creates the account and starts
// a session before bouncing back to the frontend.
func (s *Server) GoogleCallback(c *fiber.Ctx) error {
	if s.oauth == nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(fiber.ErrNotImplemented))
	}

	state := c.Query("state")
	if state == "" || state != c.Cookies(oauthStateCookie) {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid OAuth state"))
	}

	token, err := s.oauth.Exchange(c.UserContext(), c.Query("code"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("OAuth code exchange failed"))
	}

	resp, err := s.oauth.Client(c.UserContext(), token).
		Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	defer resp.Body.Close()

	var info struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil || info.Email == "" {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	user, err := s.userService.LoginWithGoogle(c.UserContext(), info.Name, info.Email)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	if err := s.startSession(c, user.ID.Hex()); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Redirect(s.config.FrontendURL, fiber.StatusTemporaryRedirect)
}

// startSession issues a fresh token pair and writes the session cookies.
func (s *Server) startSession(c *fiber.Ctx, userID string) error {
	access, refresh, err := s.tokens.IssuePair(c.UserContext(), userID)
	if err != nil {
		return err
	}
	s.session.SetSessionCookies(c, access, refresh)
	return nil
}
