package server

import (
	"github.com/gofiber/fiber/v2"
)

// RunReconciliation handles POST /api/admin/reconcile. Counter reconciliation
// also runs on a schedule; this endpoint lets an operator trigger it after
// manual data surgery without waiting for the next tick.
func (s *Server) RunReconciliation(c *fiber.Ctx) error {
	if err := s.reconcileService.Run(c.UserContext()); err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "completed",
	})
}
