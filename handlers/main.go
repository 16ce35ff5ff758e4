package handlers

import (
	"context"
	"encoding/json"

	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/logging"
	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/model"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

// The routing keys of the storefront events that are handled by this service.
const (
	OrderStatusRoutingKey = "events.storefront.order.status"
	CampaignRoutingKey    = "events.storefront.campaign"
	StockRoutingKey       = "events.storefront.stock"
)

var log = logging.Log.WithFields(logrus.Fields{"package": "handlers"})

// MessageHandler describes the interface used to handle AMQP messages.
type MessageHandler interface {
	HandleMessage(ctx context.Context, delivery amqp.Delivery) error
}

// NotificationCreator creates a notification for a single user.
type NotificationCreator interface {
	Create(
		ctx context.Context,
		userID string,
		kind model.Kind,
		title, message string,
		payload map[string]interface{},
	) (*model.Notification, error)
}

// NotificationDispatcher sends a notification to many users.
type NotificationDispatcher interface {
	Dispatch(
		ctx context.Context,
		userIDs []string,
		kind model.Kind,
		title, message string,
		payload map[string]interface{},
	) []*model.Notification
	Broadcast(
		ctx context.Context,
		kind model.Kind,
		title, message string,
		payload map[string]interface{},
	) ([]*model.Notification, error)
}

// AlertFirer fires the inventory alerts for a product.
type AlertFirer interface {
	Fire(ctx context.Context, productID string, kind model.AlertKind, stock int) ([]*model.StockNotification, error)
}

// InitMessageHandlers returns a map from routing key to message handler.
func InitMessageHandlers(
	creator NotificationCreator,
	dispatcher NotificationDispatcher,
	firer AlertFirer,
) map[string]MessageHandler {
	return map[string]MessageHandler{
		OrderStatusRoutingKey: NewOrderStatus(creator),
		CampaignRoutingKey:    NewCampaign(dispatcher),
		StockRoutingKey:       NewStock(firer),
	}
}

// parseBody unmarshals the body of a delivery. Malformed messages can never be processed, so the error is
// unrecoverable.
func parseBody(delivery amqp.Delivery, request interface{}) error {
	if err := json.Unmarshal(delivery.Body, request); err != nil {
		return NewUnrecoverableError("unable to parse message body: %s", err.Error())
	}
	return nil
}
