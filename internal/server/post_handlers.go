package server

import (
	"duskblog/internal/auth"
	"duskblog/internal/middleware"
	"duskblog/internal/models"
	"duskblog/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPostPages handles GET /api/post/pages. ?page=N selects a listing
// page; ?dashBoard=1 returns everything for the admin dashboard.
func (s *Server) GetPostPages(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	dashboard := c.Query("dashBoard") == "1" || c.Query("dashBoard") == "true"

	result, err := s.postService.GetPages(c.UserContext(), page, dashboard)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(result)
}

// GetPost handles GET /api/post/:id. Reading a post counts as a view.
func (s *Server) GetPost(c *fiber.Ctx) error {
	post, err := s.postService.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"post": post})
}

// CreatePost handles POST /api/post/create (admin only).
func (s *Server) CreatePost(c *fiber.Ctx) error {
	p := middleware.Principal(c)
	if err := auth.Authorize(p, auth.ActionCreatePost, ""); err != nil {
		return models.RespondWithAppError(c, err)
	}

	var req struct {
		Title     string `json:"title"`
		Category  string `json:"category"`
		Content   string `json:"content"`
		PostImage string `json:"postImage"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	author, err := s.userRepo.GetByID(c.UserContext(), p.ID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	post, err := s.postService.Create(c.UserContext(), service.CreatePostInput{
		Title:     req.Title,
		Category:  req.Category,
		Content:   req.Content,
		PostImage: req.PostImage,
		Author:    author,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"post": post})
}

// UpdatePost handles PUT /api/post/update/:postId (admin only).
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	p := middleware.Principal(c)
	if err := auth.Authorize(p, auth.ActionUpdatePost, ""); err != nil {
		return models.RespondWithAppError(c, err)
	}

	var req struct {
		Title     string `json:"title"`
		Category  string `json:"category"`
		Content   string `json:"content"`
		PostImage string `json:"postImage"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	editor, err := s.userRepo.GetByID(c.UserContext(), p.ID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	post, err := s.postService.Update(c.UserContext(), service.UpdatePostInput{
		PostID:    c.Params("postId"),
		Title:     req.Title,
		Category:  req.Category,
		Content:   req.Content,
		PostImage: req.PostImage,
		Editor:    editor,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"post": post})
}

// DeletePost handles DELETE /api/post/delete/:postId (admin only). The
// post's comments are removed with it.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	p := middleware.Principal(c)
	if err := auth.Authorize(p, auth.ActionDeletePost, ""); err != nil {
		return models.RespondWithAppError(c, err)
	}

	if err := s.postService.Delete(c.UserContext(), c.Params("postId")); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}
