package server

import (
	"duskblog/internal/auth"
	"duskblog/internal/middleware"
	"duskblog/internal/models"
	"duskblog/internal/service"
	"duskblog/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// TestBanner handles GET /user/test, a plain reachability probe
// some deployed frontends still call.
func (s *Server) TestBanner(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "User API is working"})
}

// UpdateUser handles POST /user/update/:id. Only the account owner
// may update; admins have no override here.
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	id := c.Params("id")
	p := middleware.Principal(c)
	if err := auth.Authorize(p, auth.ActionUpdateUser, id); err != nil {
		return models.RespondWithAppError(c, err)
	}

	var req struct {
		Username       string `json:"username"`
		Email          string `json:"email"`
		Password       string `json:"password"`
		ProfilePicture string `json:"profilePicture"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Update(c.UserContext(), service.UpdateUserInput{
		ID:             id,
		Username:       req.Username,
		Email:          req.Email,
		Password:       req.Password,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}

// DeleteUser handles DELETE /user/delete/:id (self-service account
// deletion). The session cookies are cleared alongside.
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id := c.Params("id")
	p := middleware.Principal(c)
	if err := auth.Authorize(p, auth.ActionDeleteUser, id); err != nil {
		return models.RespondWithAppError(c, err)
	}

	if err := s.userService.Delete(c.UserContext(), id); err != nil {
		return models.RespondWithAppError(c, err)
	}
	s.session.ClearSessionCookies(c)
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}

// GetAllUsers handles GET /user/allUsers (admin only).
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	p := middleware.Principal(c)
	if err := auth.Authorize(p, auth.ActionListUsers, ""); err != nil {
		return models.RespondWithAppError(c, err)
	}

	users, err := s.userService.List(c.UserContext())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// DeleteAccount handles DELETE /user/delete-account/:userId (admin
// removal of any account).
func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	p := middleware.Principal(c)
	if err := auth.Authorize(p, auth.ActionDeleteAnyUser, ""); err != nil {
		return models.RespondWithAppError(c, err)
	}

	if err := s.userService.Delete(c.UserContext(), c.Params("userId")); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}

// ForgotPassword handles POST /user/forgot-password. A missing email
// answers 403, matching the original API contract clients rely on.
func (s *Server) ForgotPassword(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if validation.AnyBlank(req.Email) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Email is required"))
	}

	if err := s.userService.ForgotPassword(c.UserContext(), req.Email); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Password reset email sent successfully"})
}

// ResetPassword handles POST /user/reset-password/:userId.
func (s *Server) ResetPassword(c *fiber.Ctx) error {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.userService.ResetPassword(c.UserContext(), c.Params("userId"), req.Password); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Password reset successfully"})
}

// ContactAdmin handles POST /user/contact-admin. Missing fields
// answer 404, matching the original API contract.
func (s *Server) ContactAdmin(c *fiber.Ctx) error {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if validation.AnyBlank(req.Name, req.Email, req.Subject, req.Message) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Field", "all fields are required"))
	}

	err := s.userService.ContactAdmin(c.UserContext(), service.ContactAdminInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Message sent to admin successfully"})
}
