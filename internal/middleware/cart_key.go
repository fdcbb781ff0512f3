package middleware

import (
	"strings"

	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CartKeyHeader lets anonymous clients keep their own cart.
const CartKeyHeader = "X-Cart-Key"

const cartKeyLocal = "cart_key"

const maxCartKeyLength = 64

// CartKey resolves the cart of the request: the signed-in user's cart,
// else the X-Cart-Key header, else the shared demo cart. It must run after
// OptionalAuth or AuthRequired.
func CartKey(demoCartKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(cartKeyLocal, resolveCartKey(c, demoCartKey))
		return c.Next()
	}
}

func resolveCartKey(c *fiber.Ctx, demoCartKey string) string {
	if p := services.PrincipalFrom(c.UserContext()); p != nil && p.UserID != "" {
		return "user:" + p.UserID
	}
	key := strings.TrimSpace(c.Get(CartKeyHeader))
	// user: keys belong to signed-in carts only
	if key == "" || len(key) > maxCartKeyLength || strings.HasPrefix(key, "user:") {
		return demoCartKey
	}
	return "guest:" + key
}

// CartKeyFrom returns the key stored by CartKey.
func CartKeyFrom(c *fiber.Ctx) string {
	key, _ := c.Locals(cartKeyLocal).(string)
	return key
}
