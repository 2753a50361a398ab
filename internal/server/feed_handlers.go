package server

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"verseflow/internal/models"
)

// GetFeed handles GET /api/feed?cursor=N. Anonymous viewers get the same page
// shape with liked/saved left false.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	cursor := 0
	if raw := c.Query("cursor"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid cursor"))
		}
		cursor = v
	}

	page, err := s.feedService.GetFeedPage(c.UserContext(), currentUserID(c), cursor)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(page)
}

// GetSavedPosts handles GET /api/users/me/saved.
func (s *Server) GetSavedPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	posts, err := s.postService.ListSavedPosts(c.UserContext(), currentUserID(c), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"posts":  posts,
		"limit":  p.Limit,
		"offset": p.Offset,
	})
}

// GetUserPosts handles GET /api/users/:id/posts, newest first.
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 20)

	posts, err := s.postService.ListUserPosts(c.UserContext(), userID, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"posts":  posts,
		"limit":  p.Limit,
		"offset": p.Offset,
	})
}
