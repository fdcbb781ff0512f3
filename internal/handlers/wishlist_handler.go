package handlers

import (
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// WishlistHandler handles the signed-in user's wishlist.
type WishlistHandler struct {
	wishlists *services.WishlistService
	validate  *validator.Validate
}

func NewWishlistHandler(wishlists *services.WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlists: wishlists, validate: validator.New()}
}

func (h *WishlistHandler) RegisterRoutes(router fiber.Router, g Guards) {
	wishlistRoutes := router.Group("/wishlist", g.Required)
	wishlistRoutes.Get("/", h.HandleList)
	wishlistRoutes.Post("/", h.HandleAdd)
	wishlistRoutes.Delete("/", h.HandleRemove)
}

// WishlistRequest names a product to add.
type WishlistRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

func (h *WishlistHandler) HandleList(c *fiber.Ctx) error {
	items, err := h.wishlists.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"items": items})
}

func (h *WishlistHandler) HandleAdd(c *fiber.Ctx) error {
	var req WishlistRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}
	item, err := h.wishlists.Add(c.UserContext(), req.ProductID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Added to wishlist",
		"item":    item,
	})
}

// HandleRemove removes the product named by the productId query parameter.
func (h *WishlistHandler) HandleRemove(c *fiber.Ctx) error {
	productID := c.Query("productId")
	if productID == "" {
		return badRequest(c, "Product ID required")
	}
	if err := h.wishlists.Remove(c.UserContext(), productID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Removed from wishlist"})
}
