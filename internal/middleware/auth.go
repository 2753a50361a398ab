package middleware

import (
	"context"
	"strings"

	"verseflow/internal/config"
	"verseflow/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.Config

// UserResolver maps an external auth subject (the token's "sub" claim) to an
// internal user record. Wired at startup so the middleware does not depend on
// the repository layer directly.
type UserResolver func(ctx context.Context, authID string) (*models.User, error)

var resolveUser UserResolver

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// SetUserResolver registers the auth-subject-to-user lookup used by AuthRequired.
func SetUserResolver(r UserResolver) {
	resolveUser = r
}

// subjectFromRequest validates the bearer token and returns the "sub" claim.
// Tokens are issued by an external identity provider; the subject is an opaque
// string, not an internal user ID.
func subjectFromRequest(c *fiber.Ctx) (string, *fiber.Error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Authorization header required")
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid authorization header format")
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}

	// Subject claim per RFC 7519
	subClaim, ok := claims["sub"]
	if !ok {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid token structure - missing subject")
	}
	subStr, ok := subClaim.(string)
	if !ok || subStr == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid token subject type")
	}
	return subStr, nil
}

// IdentityRequired validates the bearer token and stores the auth subject in
// context without requiring a matching user row. Used for profile completion,
// where the user record does not exist yet.
func IdentityRequired(c *fiber.Ctx) error {
	sub, ferr := subjectFromRequest(c)
	if ferr != nil {
		return c.Status(ferr.Code).JSON(fiber.Map{"error": ferr.Message})
	}

	c.Locals("authID", sub)
	return c.Next()
}

// AuthRequired is a middleware that enforces authentication for protected routes.
// It validates the token and resolves the subject to an internal user, storing
// userID and isAdmin in context.
func AuthRequired(c *fiber.Ctx) error {
	sub, ferr := subjectFromRequest(c)
	if ferr != nil {
		return c.Status(ferr.Code).JSON(fiber.Map{"error": ferr.Message})
	}

	if resolveUser == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Identity resolution not configured"})
	}

	user, err := resolveUser(c.UserContext(), sub)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Profile not completed",
		})
	}

	c.Locals("authID", sub)
	c.Locals("userID", user.ID)
	c.Locals("isAdmin", user.IsAdmin)

	return c.Next()
}

// OptionalAuth resolves the viewer if a valid token is present and continues
// anonymously otherwise. Feed and comment reads use this so liked/saved
// annotations can be filled in for signed-in viewers.
func OptionalAuth(c *fiber.Ctx) error {
	if c.Get("Authorization") == "" {
		return c.Next()
	}

	sub, ferr := subjectFromRequest(c)
	if ferr != nil {
		// Malformed or expired tokens degrade to anonymous rather than failing reads.
		return c.Next()
	}

	if resolveUser != nil {
		if user, rerr := resolveUser(c.UserContext(), sub); rerr == nil && user != nil {
			c.Locals("authID", sub)
			c.Locals("userID", user.ID)
			c.Locals("isAdmin", user.IsAdmin)
		}
	}

	return c.Next()
}
