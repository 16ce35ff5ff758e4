package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/model"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

// OrderStatusRequest represents a deserialized order status change event.
type OrderStatusRequest struct {
	UserID      string `json:"userId"`
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
	Status      string `json:"status"`
	Message     string `json:"message"`
}

// OrderStatus is a message handler for order status changes.
type OrderStatus struct {
	creator NotificationCreator
}

// NewOrderStatus returns a new order status event handler.
func NewOrderStatus(creator NotificationCreator) *OrderStatus {
	return &OrderStatus{creator: creator}
}

// orderMessage returns the message to send for an order status change.
func orderMessage(request *OrderStatusRequest) string {
	if request.Message != "" {
		return request.Message
	}
	reference := request.OrderNumber
	if reference == "" {
		reference = request.OrderID
	}
	return fmt.Sprintf("Your order #%s is now %s.", reference, strings.ToLower(request.Status))
}

// HandleMessage handles a single AMQP delivery.
func (h *OrderStatus) HandleMessage(ctx context.Context, delivery amqp.Delivery) error {

	// Parse the message body.
	var request OrderStatusRequest
	if err := parseBody(delivery, &request); err != nil {
		return err
	}
	if request.UserID == "" || request.Status == "" {
		return NewUnrecoverableError("order status events require a user ID and a status")
	}

	// Create the notification.
	payload := map[string]interface{}{
		"orderId":     request.OrderID,
		"orderNumber": request.OrderNumber,
		"status":      request.Status,
	}
	notification, err := h.creator.Create(
		ctx,
		request.UserID,
		model.KindOrderUpdate,
		model.KindOrderUpdate.Title(request.Status),
		orderMessage(&request),
		payload,
	)
	if err != nil {
		return classify(err)
	}

	log.WithFields(logrus.Fields{
		"user":         request.UserID,
		"notification": notification.ID,
		"emailed":      notification.Emailed,
	}).Info("recorded order status notification")

	return nil
}
