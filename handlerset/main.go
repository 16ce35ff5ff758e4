// Package handlerset consumes storefront events from AMQP and routes each delivery to the handler registered
// for its routing key.
package handlerset

import (
	"context"

	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/handlers"
	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/logging"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

var log = logging.Log.WithFields(logrus.Fields{"package": "handlerset"})

// AMQPSettings represents the settings that we require in order to connect to the AMQP exchange.
type AMQPSettings struct {
	URI          string
	ExchangeName string
	ExchangeType string
	QueueName    string
}

// HandlerSet represents a set of AMQP message handlers.
type HandlerSet struct {
	settings   *AMQPSettings
	connection *amqp.Connection
	channel    *amqp.Channel
	handlerFor map[string]handlers.MessageHandler
}

// New creates a new handler set, connecting to the AMQP broker and declaring the exchange and queue.
func New(amqpSettings *AMQPSettings, handlerFor map[string]handlers.MessageHandler) (*HandlerSet, error) {
	wrapMsg := "unable to create the message handler set"

	// Connect to the broker.
	connection, err := amqp.Dial(amqpSettings.URI)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	channel, err := connection.Channel()
	if err != nil {
		connection.Close()
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Declare the exchange and the queue.
	err = channel.ExchangeDeclare(amqpSettings.ExchangeName, amqpSettings.ExchangeType, true, false, false, false, nil)
	if err != nil {
		connection.Close()
		return nil, errors.Wrap(err, wrapMsg)
	}
	_, err = channel.QueueDeclare(amqpSettings.QueueName, true, false, false, false, nil)
	if err != nil {
		connection.Close()
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Build and return the handler set.
	handlerSet := HandlerSet{
		settings:   amqpSettings,
		connection: connection,
		channel:    channel,
		handlerFor: handlerFor,
	}
	return &handlerSet, nil
}

// Register adds a handler for a routing key. Handlers must be registered before Listen is called.
func (hs *HandlerSet) Register(routingKey string, handler handlers.MessageHandler) {
	if hs.handlerFor == nil {
		hs.handlerFor = make(map[string]handlers.MessageHandler)
	}
	hs.handlerFor[routingKey] = handler
}

// PublishChannel opens a new channel on the handler set's connection for publishing outgoing messages.
func (hs *HandlerSet) PublishChannel() (*amqp.Channel, error) {
	channel, err := hs.connection.Channel()
	if err != nil {
		return nil, errors.Wrap(err, "unable to open a publishing channel")
	}
	return channel, nil
}

// Listen binds the queue to the routing key of every registered handler and processes deliveries until the
// context is canceled or the delivery channel is closed.
func (hs *HandlerSet) Listen(ctx context.Context) error {
	wrapMsg := "unable to listen for messages"

	// Bind the routing keys.
	for routingKey := range hs.handlerFor {
		err := hs.channel.QueueBind(hs.settings.QueueName, routingKey, hs.settings.ExchangeName, false, nil)
		if err != nil {
			return errors.Wrap(err, wrapMsg)
		}
	}

	// Start consuming.
	deliveries, err := hs.channel.Consume(hs.settings.QueueName, "", false, false, false, false, nil)
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("the AMQP delivery channel was closed")
			}
			hs.handleDelivery(ctx, delivery)
		}
	}
}

// handleDelivery passes a delivery to its handler and settles it: successful deliveries are acknowledged,
// deliveries that failed with a recoverable error are requeued and all other deliveries are rejected.
func (hs *HandlerSet) handleDelivery(ctx context.Context, delivery amqp.Delivery) {
	entry := log.WithFields(logrus.Fields{"routingKey": delivery.RoutingKey})

	handler, ok := hs.handlerFor[delivery.RoutingKey]
	if !ok {
		entry.Error("no handler registered for routing key")
		if err := delivery.Reject(false); err != nil {
			entry.WithError(err).Error("unable to reject delivery")
		}
		return
	}

	err := handler.HandleMessage(ctx, delivery)
	if err == nil {
		if err := delivery.Ack(false); err != nil {
			entry.WithError(err).Error("unable to acknowledge delivery")
		}
		return
	}

	var recoverable handlers.RecoverableError
	if errors.As(err, &recoverable) {
		entry.WithError(err).Warn("recoverable error; requeueing delivery")
		if err := delivery.Nack(false, true); err != nil {
			entry.WithError(err).Error("unable to requeue delivery")
		}
		return
	}

	entry.WithError(err).Error("unrecoverable error; rejecting delivery")
	if err := delivery.Reject(false); err != nil {
		entry.WithError(err).Error("unable to reject delivery")
	}
}

// Close closes a message handler set.
func (hs *HandlerSet) Close() {
	if err := hs.connection.Close(); err != nil {
		log.WithError(err).Warn("unable to close the AMQP connection")
	}
}
