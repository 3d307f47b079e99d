package server

import (
	"duskblog/internal/auth"
	"duskblog/internal/middleware"
	"duskblog/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetActivityLogs handles GET /api/log/all (admin only), newest first.
func (s *Server) GetActivityLogs(c *fiber.Ctx) error {
	p := middleware.Principal(c)
	if err := auth.Authorize(p, auth.ActionViewActivityLog, ""); err != nil {
		return models.RespondWithAppError(c, err)
	}

	logs, err := s.activityService.ListAll(c.UserContext())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"logs": logs})
}
