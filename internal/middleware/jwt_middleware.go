package middleware

import (
	"strings"

	"storefront/internal/apperr"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// bearerToken extracts the token of an "Authorization: Bearer <token>"
// header. ok is false when no header is present.
func bearerToken(c *fiber.Ctx) (token string, ok bool, err error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", false, nil
	}

	// Expected format: "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") {
		return "", true, apperr.Unauthorized("Authorization header format must be 'Bearer <token>'")
	}
	return parts[1], true, nil
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": message,
		"kind":  apperr.KindUnauthorized,
	})
}

// authenticate stores the principal on the request's user context.
func authenticate(c *fiber.Ctx, authService *services.AuthService, token string) error {
	principal, err := authService.Authenticate(token)
	if err != nil {
		log.Debugf("JWT validation failed: %v", err)
		return err
	}
	c.SetUserContext(services.WithPrincipal(c.UserContext(), principal))
	c.Locals("user_id", principal.UserID)
	c.Locals("username", principal.Username)
	return nil
}

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok, err := bearerToken(c)
		if !ok {
			return unauthorized(c, "Authorization header is required")
		}
		if err != nil {
			return unauthorized(c, err.Error())
		}
		if err := authenticate(c, authService, token); err != nil {
			return unauthorized(c, "Invalid or expired token")
		}
		return c.Next()
	}
}

// OptionalAuth attaches a principal when a valid token is sent and lets
// anonymous requests through. A malformed or invalid token is rejected.
func OptionalAuth(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok, err := bearerToken(c)
		if !ok {
			return c.Next()
		}
		if err != nil {
			return unauthorized(c, err.Error())
		}
		if err := authenticate(c, authService, token); err != nil {
			return unauthorized(c, "Invalid or expired token")
		}
		return c.Next()
	}
}

// AdminOnly must run after AuthRequired.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !services.PrincipalFrom(c.UserContext()).IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "admin access required",
				"kind":  apperr.KindForbidden,
			})
		}
		return c.Next()
	}
}
