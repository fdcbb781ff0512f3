package services

import (
	"encoding/json"

	"storefront/internal/models"
	"storefront/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2/log"
)

// EventPublisher publishes messages to a broker. *rabbitmq.Client
// implements it.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// publishOrderEvent is best effort: a broker failure never fails the
// operation that produced the event.
func publishOrderEvent(publisher EventPublisher, eventType string, order *models.Order) {
	if publisher == nil {
		log.Debugf("no event publisher configured, skipping %s for order %s", eventType, order.OrderNumber)
		return
	}
	body, err := json.Marshal(models.NewOrderEvent(eventType, order))
	if err != nil {
		log.Errorf("failed to marshal %s event for order %s: %v", eventType, order.ID, err)
		return
	}
	if err := publisher.Publish(rabbitmq.OrderExchange, eventType, body); err != nil {
		log.Warnf("failed to publish %s event for order %s: %v", eventType, order.ID, err)
		return
	}
	log.Infof("published %s event for order %s", eventType, order.OrderNumber)
}
