package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/gofiber/fiber/v2/log"
)

// OrderNotifier turns order events into customer mail.
type OrderNotifier struct {
	users  repositories.UserRepository
	mailer Mailer
}

func NewOrderNotifier(users repositories.UserRepository, mailer Mailer) *OrderNotifier {
	return &OrderNotifier{users: users, mailer: mailer}
}

// HandleMessage decodes a published order event and mails its owner.
// Guest orders and unknown users are skipped.
func (n *OrderNotifier) HandleMessage(ctx context.Context, body []byte) error {
	var event models.OrderEvent
	if err := json.Unmarshal(body, &event); err != nil {
		// Malformed messages are dropped rather than requeued forever.
		log.Warnf("discarding malformed order event: %v", err)
		return nil
	}
	return n.Handle(ctx, event)
}

func (n *OrderNotifier) Handle(ctx context.Context, event models.OrderEvent) error {
	if event.UserID == nil {
		return nil
	}
	subject, body, ok := renderOrderMail(event)
	if !ok {
		return nil
	}

	user, err := n.users.GetByID(ctx, *event.UserID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			log.Warnf("order %s belongs to unknown user %s", event.OrderNumber, *event.UserID)
			return nil
		}
		return fmt.Errorf("failed to load user for order %s: %w", event.OrderNumber, err)
	}

	name := user.Name
	if name == "" {
		name = user.Username
	}
	return n.mailer.Send(ctx, Message{ToName: name, ToEmail: user.Email, Subject: subject, Body: body})
}

func renderOrderMail(event models.OrderEvent) (subject, body string, ok bool) {
	total := event.Total.StringFixed(2) + " " + event.Currency
	switch event.Type {
	case models.EventOrderCreated:
		return fmt.Sprintf("We received your order %s", event.OrderNumber),
			fmt.Sprintf("Thank you for your order %s. Total: %s. We will let you know once payment is confirmed.", event.OrderNumber, total),
			true
	case models.EventOrderConfirmed:
		return fmt.Sprintf("Order %s confirmed", event.OrderNumber),
			fmt.Sprintf("Payment for order %s was received. Total charged: %s.", event.OrderNumber, total),
			true
	case models.EventPaymentFailed:
		return fmt.Sprintf("Payment for order %s failed", event.OrderNumber),
			fmt.Sprintf("We could not charge %s for order %s. Please contact support.", total, event.OrderNumber),
			true
	}
	return "", "", false
}
