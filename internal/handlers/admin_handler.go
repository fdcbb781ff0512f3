package handlers

import (
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves the catalog and order administration routes.
type AdminHandler struct {
	products  *services.ProductService
	dashboard *services.DashboardService
	orders    *services.OrderService
	validate  *validator.Validate
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(products *services.ProductService, dashboard *services.DashboardService, orders *services.OrderService) *AdminHandler {
	return &AdminHandler{
		products:  products,
		dashboard: dashboard,
		orders:    orders,
		validate:  validator.New(),
	}
}

// RegisterRoutes registers the admin routes behind authentication and
// the admin role.
func (h *AdminHandler) RegisterRoutes(router fiber.Router, g Guards) {
	adminRoutes := router.Group("/admin", g.Required, g.Admin)
	adminRoutes.Get("/dashboard", h.HandleDashboard)
	adminRoutes.Get("/products", h.HandleListProducts)
	adminRoutes.Post("/products", h.HandleCreateProduct)
	adminRoutes.Patch("/products/:id/status", h.HandleUpdateProductStatus)
	adminRoutes.Post("/products/:id/restock", h.HandleRestock)
	adminRoutes.Get("/products/:id/inventory", h.HandleInventory)
	adminRoutes.Post("/payments/reconcile", h.HandleReconcile)
}

// ProductStatusRequest is the body of a product status change.
type ProductStatusRequest struct {
	Status models.ProductStatus `json:"status" validate:"required,oneof=draft active inactive out_of_stock"`
}

// RestockRequest adds units to a product.
type RestockRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

func (h *AdminHandler) HandleDashboard(c *fiber.Ctx) error {
	overview, err := h.dashboard.Overview(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(overview)
}

// HandleListProducts answers GET /admin/products?status=&q=.
func (h *AdminHandler) HandleListProducts(c *fiber.Ctx) error {
	products, err := h.products.ListAdminProducts(c.UserContext(), models.ProductStatus(c.Query("status")), c.Query("q"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

func (h *AdminHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var in services.CreateProductInput
	if err := bind(c, h.validate, &in); err != nil {
		return respondError(c, err)
	}
	product, err := h.products.CreateProduct(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

func (h *AdminHandler) HandleUpdateProductStatus(c *fiber.Ctx) error {
	var req ProductStatusRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}
	product, err := h.products.UpdateProductStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

func (h *AdminHandler) HandleRestock(c *fiber.Ctx) error {
	var req RestockRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}
	product, err := h.products.Restock(c.UserContext(), c.Params("id"), req.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

func (h *AdminHandler) HandleInventory(c *fiber.Ctx) error {
	history, err := h.products.InventoryHistory(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(history)
}

// HandleReconcile settles orders whose payment is still pending.
func (h *AdminHandler) HandleReconcile(c *fiber.Ctx) error {
	report, err := h.orders.ReconcilePending(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}
