package server

import (
	"github.com/gofiber/fiber/v2"
)

// ToggleLike handles POST /api/posts/:id/like. The response carries the
// resulting state, so repeating a request is harmless.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.engagementService.ToggleLike(c.UserContext(), currentUserID(c), postID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"liked":       result.Active,
		"likes_count": result.Count,
	})
}

// ToggleSave handles POST /api/posts/:id/save.
func (s *Server) ToggleSave(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.engagementService.ToggleSave(c.UserContext(), currentUserID(c), postID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"saved":       result.Active,
		"saves_count": result.Count,
	})
}
