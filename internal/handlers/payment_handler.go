package handlers

import (
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// PaymentHandler receives asynchronous notifications from the payment
// gateway.
type PaymentHandler struct {
	orders   *services.OrderService
	validate *validator.Validate
}

func NewPaymentHandler(orders *services.OrderService) *PaymentHandler {
	return &PaymentHandler{orders: orders, validate: validator.New()}
}

func (h *PaymentHandler) RegisterRoutes(router fiber.Router, g Guards) {
	router.Post("/payments/webhook", h.HandleWebhook)
}

// HandleWebhook applies a payment outcome to its order.
func (h *PaymentHandler) HandleWebhook(c *fiber.Ctx) error {
	var event services.PaymentEvent
	if err := bind(c, h.validate, &event); err != nil {
		return respondError(c, err)
	}
	order, err := h.orders.ApplyPaymentEvent(c.UserContext(), event)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"orderId":       order.ID,
		"orderNumber":   order.OrderNumber,
		"status":        order.Status,
		"paymentStatus": order.PaymentStatus,
	})
}
