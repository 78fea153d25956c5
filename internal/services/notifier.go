package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"restobill/internal/events"
	"restobill/internal/models"
)

// LiveFeed pushes messages to the connected clients of one organization
type LiveFeed interface {
	Broadcast(orgID, messageType string, data interface{})
}

type noopFeed struct{}

func (noopFeed) Broadcast(string, string, interface{}) {}

// OrderNotifier publishes order lifecycle events and mirrors them to the live feed.
// Both sinks are best effort.
type OrderNotifier struct {
	publisher events.OrderEventPublisher
	feed      LiveFeed
	logger    *logrus.Entry
}

func NewOrderNotifier(publisher events.OrderEventPublisher, feed LiveFeed, logger *logrus.Logger) *OrderNotifier {
	if publisher == nil {
		publisher = events.NewNoopPublisher()
	}
	if feed == nil {
		feed = noopFeed{}
	}
	return &OrderNotifier{
		publisher: publisher,
		feed:      feed,
		logger:    logger.WithField("component", "order_notifier"),
	}
}

func (n *OrderNotifier) Notify(ctx context.Context, eventType string, order *models.Order, previousStatus string) {
	event := events.OrderEvent{
		Type:            eventType,
		OrderID:         order.ID,
		OrganizationID:  order.OrganizationID,
		Status:          order.Status,
		PreviousStatus:  previousStatus,
		TableNumber:     order.TableNumber,
		Total:           order.Total,
		PaymentReceived: order.PaymentReceived,
		BalanceAmount:   order.BalanceAmount,
	}
	if err := n.publisher.Publish(ctx, event); err != nil {
		n.logger.WithError(err).WithFields(logrus.Fields{
			"order_id": order.ID,
			"type":     eventType,
		}).Warn("order event not published")
	}
	n.feed.Broadcast(order.OrganizationID, eventType, order)
}
