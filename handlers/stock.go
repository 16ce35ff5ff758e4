package handlers

import (
	"context"

	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/model"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

// StockRequest represents a deserialized stock condition reported by the storefront.
type StockRequest struct {
	ProductID string          `json:"productId"`
	Kind      model.AlertKind `json:"alertType"`
	Stock     int             `json:"stock"`
}

// Stock is a message handler for stock level changes.
type Stock struct {
	firer AlertFirer
}

// NewStock returns a new stock event handler.
func NewStock(firer AlertFirer) *Stock {
	return &Stock{firer: firer}
}

// HandleMessage handles a single AMQP delivery.
func (h *Stock) HandleMessage(ctx context.Context, delivery amqp.Delivery) error {

	// Parse the message body.
	var request StockRequest
	if err := parseBody(delivery, &request); err != nil {
		return err
	}
	if request.ProductID == "" {
		return NewUnrecoverableError("stock events require a product ID")
	}

	// Fire the matching alerts.
	delivered, err := h.firer.Fire(ctx, request.ProductID, request.Kind, request.Stock)
	if err != nil {
		return classify(err)
	}

	log.WithFields(logrus.Fields{
		"product":   request.ProductID,
		"kind":      request.Kind,
		"stock":     request.Stock,
		"delivered": len(delivered),
	}).Info("fired inventory alerts")

	return nil
}
