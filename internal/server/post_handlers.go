package server

import (
	"github.com/gofiber/fiber/v2"

	"verseflow/internal/service"
)

// PublishPostRequest is the body for POST /api/posts.
type PublishPostRequest struct {
	Content     string `json:"content" validate:"required"`
	Attribution string `json:"attribution" validate:"max=300"`
	Kind        string `json:"kind" validate:"required,oneof=poetry prose quote"`
}

// PublishPost handles POST /api/posts.
func (s *Server) PublishPost(c *fiber.Ctx) error {
	var req PublishPostRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.PublishPost(c.UserContext(), service.PublishPostInput{
		UserID:      currentUserID(c),
		Content:     req.Content,
		Attribution: req.Attribution,
		Kind:        req.Kind,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/:id.
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), postID, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

// DeletePost handles DELETE /api/posts/:id.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), currentUserID(c), currentIsAdmin(c), postID); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
