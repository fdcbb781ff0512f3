// Package app assembles the services and HTTP routes of the storefront.
package app

import (
	"errors"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/config"
	"storefront/internal/handlers"
	"storefront/internal/idempotency"
	"storefront/internal/middleware"
	"storefront/internal/payment"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Deps are the collaborators the application is built from. Publisher and
// Idempotency may be nil.
type Deps struct {
	Config      *config.Config
	Store       repositories.Store
	Gateway     payment.Gateway
	Publisher   services.EventPublisher
	Idempotency idempotency.Store
	// Quiet disables request logging.
	Quiet bool
}

// Services are the domain services shared by HTTP handlers and commands.
type Services struct {
	Auth      *services.AuthService
	Products  *services.ProductService
	Carts     *services.CartService
	Checkout  *services.CheckoutService
	Orders    *services.OrderService
	Search    *services.SearchService
	Wishlists *services.WishlistService
	Dashboard *services.DashboardService
}

// NewServices wires the domain services over d.
func NewServices(d Deps) *Services {
	carts := services.NewCartService(d.Store)
	orders := services.NewOrderService(d.Store, d.Gateway, d.Publisher, d.Config.Payment)
	return &Services{
		Auth:      services.NewAuthService(d.Store.Users(), d.Config.JWTSecret),
		Products:  services.NewProductService(d.Store),
		Carts:     carts,
		Checkout:  services.NewCheckoutService(d.Store, carts, orders, d.Config.Pricing),
		Orders:    orders,
		Search:    services.NewSearchService(d.Store),
		Wishlists: services.NewWishlistService(d.Store),
		Dashboard: services.NewDashboardService(d.Store),
	}
}

type routes interface {
	RegisterRoutes(router fiber.Router, g handlers.Guards)
}

// New builds the Fiber application.
func New(d Deps) (*fiber.App, *Services) {
	svc := NewServices(d)

	app := fiber.New(fiber.Config{
		AppName:      "storefront",
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New())
	if !d.Quiet {
		app.Use(logger.New())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		events := "disabled"
		if d.Publisher != nil {
			events = "enabled"
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"events": events,
		})
	})

	guards := handlers.Guards{
		Optional: middleware.OptionalAuth(svc.Auth),
		Required: middleware.AuthRequired(svc.Auth),
		Admin:    middleware.AdminOnly(),
		CartKey:  middleware.CartKey(d.Config.DemoCartKey),
	}

	apiV1 := app.Group("/api/v1")
	for _, h := range []routes{
		handlers.NewAuthHandler(svc.Auth),
		handlers.NewProductHandler(svc.Products),
		handlers.NewCartHandler(svc.Carts),
		handlers.NewCheckoutHandler(svc.Checkout, d.Idempotency),
		handlers.NewSearchHandler(svc.Search),
		handlers.NewOrderHandler(svc.Orders),
		handlers.NewPaymentHandler(svc.Orders),
		handlers.NewWishlistHandler(svc.Wishlists),
		handlers.NewAdminHandler(svc.Products, svc.Dashboard, svc.Orders),
	} {
		h.RegisterRoutes(apiV1, guards)
	}

	return app, svc
}

// errorHandler renders errors that escape handlers, such as unknown routes,
// in the same shape as handler errors.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	kind := apperr.KindUnexpected
	message := "internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
		switch code {
		case fiber.StatusNotFound:
			kind = apperr.KindNotFound
		case fiber.StatusMethodNotAllowed, fiber.StatusBadRequest:
			kind = apperr.KindInvalidArgument
		}
	}
	return c.Status(code).JSON(fiber.Map{"error": message, "kind": kind})
}
