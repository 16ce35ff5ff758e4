package handlers

import (
	"context"

	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/model"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

// CampaignRequest represents a deserialized request to send one notification to many users. If no user IDs
// are listed, the notification goes to every user whose preferences allow the kind.
type CampaignRequest struct {
	Kind    model.Kind             `json:"type"`
	Subject string                 `json:"subject"`
	Title   string                 `json:"title"`
	Message string                 `json:"message"`
	UserIDs []string               `json:"userIds"`
	Payload map[string]interface{} `json:"data"`
}

// Campaign is a message handler for bulk notifications such as price drops, new arrivals and marketing email.
type Campaign struct {
	dispatcher NotificationDispatcher
}

// NewCampaign returns a new campaign event handler.
func NewCampaign(dispatcher NotificationDispatcher) *Campaign {
	return &Campaign{dispatcher: dispatcher}
}

// HandleMessage handles a single AMQP delivery.
func (h *Campaign) HandleMessage(ctx context.Context, delivery amqp.Delivery) error {

	// Parse the message body.
	var request CampaignRequest
	if err := parseBody(delivery, &request); err != nil {
		return err
	}
	if request.Kind == "" || request.Message == "" {
		return NewUnrecoverableError("campaign events require a type and a message")
	}

	// An explicit title takes precedence over the standard title for the kind.
	title := request.Title
	if title == "" {
		title = request.Kind.Title(request.Subject)
	}

	// Send the notifications.
	var notifications []*model.Notification
	if len(request.UserIDs) > 0 {
		notifications = h.dispatcher.Dispatch(ctx, request.UserIDs, request.Kind, title, request.Message, request.Payload)
	} else {
		var err error
		notifications, err = h.dispatcher.Broadcast(ctx, request.Kind, title, request.Message, request.Payload)
		if err != nil {
			return classify(err)
		}
	}

	log.WithFields(logrus.Fields{
		"kind":      request.Kind,
		"requested": len(request.UserIDs),
		"delivered": len(notifications),
	}).Info("dispatched campaign notification")

	return nil
}
