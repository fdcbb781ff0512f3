package handlers

import (
	"fmt"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// CartHandler handles HTTP requests for the shopping cart.
type CartHandler struct {
	carts    *services.CartService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(carts *services.CartService) *CartHandler {
	return &CartHandler{carts: carts, validate: validator.New()}
}

// RegisterRoutes registers the cart routes.
func (h *CartHandler) RegisterRoutes(router fiber.Router, g Guards) {
	cartRoutes := router.Group("/cart", g.Optional, g.CartKey)
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/", h.HandleAddItem)
	cartRoutes.Put("/", h.HandleSetQuantity)
	cartRoutes.Delete("/", h.HandleRemoveItem)
	cartRoutes.Post("/clear", h.HandleClear)
}

// AddItemRequest adds quantity units of a product. Quantity defaults to 1.
type AddItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  *int   `json:"quantity" validate:"omitempty,min=1"`
}

// SetQuantityRequest sets the quantity of a product's line.
type SetQuantityRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type cartResponse struct {
	ID        string            `json:"id"`
	Items     []models.CartLine `json:"items"`
	ItemCount int               `json:"itemCount"`
	Subtotal  decimal.Decimal   `json:"subtotal"`
}

func newCartResponse(cart *models.Cart) cartResponse {
	resp := cartResponse{ID: cart.Key, Items: cart.Lines, Subtotal: decimal.Zero}
	for _, line := range cart.Lines {
		resp.ItemCount += line.Quantity
		resp.Subtotal = resp.Subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return resp
}

// HandleGetCart returns the cart with its lines.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.carts.GetCart(c.UserContext(), middleware.CartKeyFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(newCartResponse(cart))
}

// HandleAddItem adds a product to the cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	line, err := h.carts.AddItem(c.UserContext(), middleware.CartKeyFrom(c), req.ProductID, quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":  fmt.Sprintf("Added %dx %s to cart", quantity, line.ProductName),
		"item":     line,
		"quantity": quantity,
	})
}

// HandleSetQuantity replaces the quantity of a product's line.
func (h *CartHandler) HandleSetQuantity(c *fiber.Ctx) error {
	var req SetQuantityRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}
	line, err := h.carts.SetItemQuantity(c.UserContext(), middleware.CartKeyFrom(c), req.ProductID, req.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Cart updated",
		"item":    line,
	})
}

// HandleRemoveItem removes the line named by the itemId query parameter.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	itemID := c.Query("itemId")
	if itemID == "" {
		return badRequest(c, "Item ID required")
	}
	if err := h.carts.RemoveItem(c.UserContext(), middleware.CartKeyFrom(c), itemID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Item removed from cart"})
}

// HandleClear empties the cart.
func (h *CartHandler) HandleClear(c *fiber.Ctx) error {
	if err := h.carts.Clear(c.UserContext(), middleware.CartKeyFrom(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Cart cleared"})
}
