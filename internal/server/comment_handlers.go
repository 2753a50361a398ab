package server

import (
	"github.com/gofiber/fiber/v2"

	"verseflow/internal/service"
)

// CreateCommentRequest is the body for POST /api/posts/:id/comments.
// ParentID is omitted for root comments.
type CreateCommentRequest struct {
	Content  string `json:"content" validate:"required,max=1000"`
	ParentID *uint  `json:"parent_id"`
}

// CreateComment handles POST /api/posts/:id/comments.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req CreateCommentRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID:   currentUserID(c),
		PostID:   postID,
		ParentID: req.ParentID,
		Content:  req.Content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:id.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.commentService.DeleteComment(c.UserContext(), currentUserID(c), currentIsAdmin(c), commentID); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetCommentTree handles GET /api/posts/:id/comments. Returns the full
// comment forest for the post; replies to deleted comments surface as roots.
func (s *Server) GetCommentTree(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	tree, err := s.commentService.GetCommentTree(c.UserContext(), postID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"comments": tree,
	})
}
