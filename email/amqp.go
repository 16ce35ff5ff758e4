package email

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/common"
	"github.com/pkg/errors"
	"github.com/streadway/amqp"
)

// Request is the email request published to the mail relay.
type Request struct {
	ToAddress string `json:"to"`
	Subject   string `json:"subject"`
	HTML      string `json:"html"`
	FromName  string `json:"from-name,omitempty"`
}

// Publisher describes the part of an AMQP channel used to publish email requests.
type Publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPSender sends email by publishing email requests to an AMQP exchange, where the mail relay picks them up.
// Retries and queuing are the relay's concern.
type AMQPSender struct {
	publisher  Publisher
	exchange   string
	routingKey string
	fromName   string
}

// NewAMQPSender returns a new AMQPSender.
func NewAMQPSender(publisher Publisher, exchange, routingKey, fromName string) *AMQPSender {
	return &AMQPSender{
		publisher:  publisher,
		exchange:   exchange,
		routingKey: routingKey,
		fromName:   fromName,
	}
}

// Send publishes a single email request. A ValidationError is returned for a malformed recipient address and a
// DependencyUnavailableError if the request can't be published.
func (s *AMQPSender) Send(ctx context.Context, to, subject, html string) error {
	wrapMsg := "unable to send email"

	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	// Validate the recipient's email address.
	if err := common.ValidateEmailAddress(to); err != nil {
		return common.NewValidationError("invalid email address `%s`: %s", to, err.Error())
	}

	// Marshal the email request.
	body, err := json.Marshal(&Request{ToAddress: to, Subject: subject, HTML: html, FromName: s.fromName})
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	// Publish the request.
	err = s.publisher.Publish(s.exchange, s.routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return common.NewDependencyUnavailableError(err, wrapMsg)
	}

	return nil
}
