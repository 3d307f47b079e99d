package server

import (
	"errors"
	"io"

	"duskblog/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was
// already committed by a helper. Handlers must return nil (not this
// error) to avoid Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// maxUploadBytes caps accepted image uploads.
const maxUploadBytes = 10 << 20 // 10 MiB

// UploadImage handles POST /api/upload. The image is transcoded to WebP
// and the public path is returned for use as a profile or post image.
func (s *Server) UploadImage(c *fiber.Ctx) error {
	header, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("An image file is required"))
	}
	if header.Size > maxUploadBytes {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Image exceeds the maximum upload size"))
	}

	file, err := header.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	url, err := s.uploads.Save(c.UserContext(), content)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unsupported or corrupt image file"))
	}
	return c.JSON(fiber.Map{"url": url})
}
