package handlers

import (
	"encoding/json"
	"errors"

	"storefront/internal/apperr"
	"storefront/internal/idempotency"
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

const (
	// IdempotencyKeyHeader makes a checkout submission safe to retry.
	IdempotencyKeyHeader = "Idempotency-Key"
	replayedHeader       = "Idempotent-Replayed"
	maxIdempotencyKeyLen = 255
)

// CheckoutHandler handles order submission.
type CheckoutHandler struct {
	checkout *services.CheckoutService
	keys     idempotency.Store
	validate *validator.Validate
}

// NewCheckoutHandler creates a new CheckoutHandler. keys may be nil, in
// which case Idempotency-Key headers are ignored.
func NewCheckoutHandler(checkout *services.CheckoutService, keys idempotency.Store) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, keys: keys, validate: validator.New()}
}

// RegisterRoutes registers the checkout route.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router, g Guards) {
	router.Post("/checkout", g.Optional, g.CartKey, h.HandleCheckout)
}

// HandleCheckout turns the request's cart into an order.
func (h *CheckoutHandler) HandleCheckout(c *fiber.Ctx) error {
	var req services.CheckoutRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}
	cartKey := middleware.CartKeyFrom(c)

	key := c.Get(IdempotencyKeyHeader)
	if key == "" || h.keys == nil {
		return h.submit(c, cartKey, req)
	}
	if len(key) > maxIdempotencyKeyLen {
		return badRequest(c, "Idempotency-Key is too long")
	}

	// Keys are scoped to the cart so that two shoppers cannot collide.
	scoped := cartKey + ":" + key
	ctx := c.UserContext()
	rec, err := h.keys.Begin(ctx, scoped)
	if errors.Is(err, idempotency.ErrInProgress) {
		return respondError(c, apperr.Conflict("a checkout with this Idempotency-Key is in progress"))
	}
	if err != nil {
		return respondError(c, apperr.Unexpected(err, "failed to process order"))
	}
	if rec != nil {
		c.Set(replayedHeader, "true")
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Status(rec.StatusCode).Send(rec.Body)
	}

	result, err := h.checkout.SubmitOrder(ctx, cartKey, req)
	if err != nil {
		if releaseErr := h.keys.Release(ctx, scoped); releaseErr != nil {
			log.Warnf("failed to release idempotency key %s: %v", key, releaseErr)
		}
		return respondError(c, err)
	}
	body, err := json.Marshal(result)
	if err != nil {
		return respondError(c, apperr.Unexpected(err, "failed to encode order"))
	}
	if err := h.keys.Complete(ctx, scoped, idempotency.Record{StatusCode: fiber.StatusCreated, Body: body}); err != nil {
		log.Warnf("failed to store idempotent response for key %s: %v", key, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusCreated).Send(body)
}

func (h *CheckoutHandler) submit(c *fiber.Ctx, cartKey string, req services.CheckoutRequest) error {
	result, err := h.checkout.SubmitOrder(c.UserContext(), cartKey, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}
