package server

import (
	"errors"
	"strconv"
	"strings"

	"verseflow/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// errResponseWritten signals that the handler already wrote an error response
// and the caller should just return nil up the chain.
var errResponseWritten = errors.New("response already written")

// parseID extracts and validates a uint route parameter. On failure it writes
// a 400 response and returns errResponseWritten.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	raw := c.Params(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam turns a camelCase route param name into words for messages,
// e.g. "postId" -> "post id".
func humanizeParam(param string) string {
	return strings.ToLower(strings.Join(splitCamel(param), " "))
}

func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

// parsePagination reads limit/offset query params with sane clamps.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > 100 {
		limit = 100
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return Pagination{Limit: limit, Offset: offset}
}

// currentUserID returns the resolved user ID placed in locals by AuthRequired.
// Zero means anonymous (only possible behind OptionalAuth).
func currentUserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals("userID").(uint); ok {
		return id
	}
	return 0
}

// currentIsAdmin reports whether the resolved user has the admin flag.
func currentIsAdmin(c *fiber.Ctx) bool {
	isAdmin, ok := c.Locals("isAdmin").(bool)
	return ok && isAdmin
}

// parseBody unmarshals and validates a JSON request body. On failure it writes
// a 400 response and returns errResponseWritten.
func (s *Server) parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	if err := s.validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		msg := "Invalid request body"
		if errors.As(err, &verrs) && len(verrs) > 0 {
			msg = "Invalid field: " + strings.ToLower(verrs[0].Field())
		}
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(msg))
		return errResponseWritten
	}
	return nil
}

// respondServiceError writes the response for a service-layer error, unless
// one was already written by a helper.
func respondServiceError(c *fiber.Ctx, err error) error {
	if errors.Is(err, errResponseWritten) {
		return nil
	}
	return models.RespondWithAppError(c, err)
}
