package server

import (
	"duskblog/internal/auth"
	"duskblog/internal/middleware"
	"duskblog/internal/models"
	"duskblog/internal/service"
	"duskblog/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetAllComments handles GET /api/comment/, the dashboard overview of
// every comment.
func (s *Server) GetAllComments(c *fiber.Ctx) error {
	comments, err := s.commentService.ListAll(c.UserContext())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"comments": comments})
}

// GetPostComments handles GET /api/comment/:postId. A post without
// comments answers 200 with a message body rather than an error.
func (s *Server) GetPostComments(c *fiber.Ctx) error {
	postID := c.Params("postId")
	if validation.AnyBlank(postID) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Post id is required"))
	}

	comments, err := s.commentService.ListByPost(c.UserContext(), postID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if len(comments) == 0 {
		return c.JSON(fiber.Map{"message": "No comments found for this post"})
	}
	return c.JSON(fiber.Map{"comments": comments})
}

// CreateComment handles POST /api/comment/:postId/:userId. The userId in
// the path must name the session user; a mismatch is a true 403.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	userID := c.Params("userId")
	p := middleware.Principal(c)
	if err := auth.Authorize(p, auth.ActionCreateComment, userID); err != nil {
		return models.RespondWithError(c, fiber.StatusForbidden, err)
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.Create(c.UserContext(), service.CreateCommentInput{
		PostID:  c.Params("postId"),
		UserID:  userID,
		Content: req.Content,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Comment posted successfully.",
		"comment": comment,
	})
}

// LikeComment handles PUT /api/comment/like/:commentId. The body names
// the voting user, which must match the session.
func (s *Server) LikeComment(c *fiber.Ctx) error {
	userID, err := s.voteUserID(c)
	if err != nil {
		return nil
	}

	likes, err := s.commentService.ToggleLike(c.UserContext(), c.Params("commentId"), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"likes": likes})
}

// DislikeComment handles PUT /api/comment/dislike/:commentId.
func (s *Server) DislikeComment(c *fiber.Ctx) error {
	userID, err := s.voteUserID(c)
	if err != nil {
		return nil
	}

	dislikes, err := s.commentService.ToggleDislike(c.UserContext(), c.Params("commentId"), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"dislikes": dislikes})
}

// voteUserID parses and authorizes the userId of a vote request. On
// failure the response is already written and the caller returns nil.
func (s *Server) voteUserID(c *fiber.Ctx) (string, error) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := c.BodyParser(&req); err != nil || validation.AnyBlank(req.UserID) {
		_ = models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User", "a user id is required"))
		return "", errResponseWritten
	}

	p := middleware.Principal(c)
	if err := auth.Authorize(p, auth.ActionVoteComment, req.UserID); err != nil {
		_ = models.RespondWithAppError(c, err)
		return "", errResponseWritten
	}
	return req.UserID, nil
}

// DeleteComment handles DELETE /api/comment/delete/:commentId (admin only).
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	p := middleware.Principal(c)
	if err := auth.Authorize(p, auth.ActionDeleteAnyComment, ""); err != nil {
		return models.RespondWithAppError(c, err)
	}

	if err := s.commentService.Delete(c.UserContext(), c.Params("commentId")); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment deleted successfully"})
}
