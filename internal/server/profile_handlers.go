package server

import (
	"github.com/gofiber/fiber/v2"

	"verseflow/internal/service"
)

// ProfileRequest is the body for POST /api/profile and PUT /api/users/me.
type ProfileRequest struct {
	Handle      string `json:"handle" validate:"required,min=3,max=20"`
	DisplayName string `json:"display_name" validate:"max=100"`
	Bio         string `json:"bio" validate:"max=150"`
	Avatar      string `json:"avatar" validate:"omitempty,url,max=500"`
}

func (r *ProfileRequest) toInput() service.ProfileInput {
	return service.ProfileInput{
		Handle:      r.Handle,
		DisplayName: r.DisplayName,
		Bio:         r.Bio,
		Avatar:      r.Avatar,
	}
}

// CompleteProfile handles POST /api/profile. This is the only write an
// identity can perform before it has a user row.
func (s *Server) CompleteProfile(c *fiber.Ctx) error {
	authID, _ := c.Locals("authID").(string)

	var req ProfileRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.profileService.CompleteProfile(c.UserContext(), authID, req.toInput())
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// GetMyProfile handles GET /api/users/me.
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := currentUserID(c)

	profile, err := s.profileService.GetProfile(c.UserContext(), userID, userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(profile)
}

// UpdateMyProfile handles PUT /api/users/me.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req ProfileRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.profileService.UpdateProfile(c.UserContext(), currentUserID(c), req.toInput())
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(user)
}

// GetProfileByHandle handles GET /api/users/handle/:handle.
func (s *Server) GetProfileByHandle(c *fiber.Ctx) error {
	handle := c.Params("handle")

	profile, err := s.profileService.GetProfileByHandle(c.UserContext(), handle, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(profile)
}

// GetProfile handles GET /api/users/:id.
func (s *Server) GetProfile(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	profile, err := s.profileService.GetProfile(c.UserContext(), targetID, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(profile)
}

// ToggleFollow handles POST /api/users/:id/follow.
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	following, err := s.profileService.ToggleFollow(c.UserContext(), currentUserID(c), targetID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"following": following,
	})
}
