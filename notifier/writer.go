// Package notifier creates in-app notifications, emails them when the recipient's preferences allow it, and
// fans single events out to many recipients.
package notifier

import (
	"context"

	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/logging"
	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const otelName = "github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/notifier"

var log = logging.Log.WithFields(logrus.Fields{"package": "notifier"})

// PreferenceSource returns a user's preferences, materializing the defaults on first access.
type PreferenceSource interface {
	GetOrCreate(ctx context.Context, userID string) (*model.Preferences, error)
}

// NotificationStore persists notifications.
type NotificationStore interface {
	Save(ctx context.Context, notification *model.Notification) error
	MarkEmailed(ctx context.Context, id string) error
}

// ContactLookup returns the email address and name of a user.
type ContactLookup interface {
	GetUserContact(ctx context.Context, userID string) (*model.UserContact, error)
}

// Renderer turns a notification into an HTML email body.
type Renderer interface {
	Render(title, message, recipientName string) (string, error)
}

// Sender is the outbound email transport.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

// Writer creates notifications. The in-app record is the source of truth: a notification is never lost
// because its email couldn't be sent.
type Writer struct {
	preferences PreferenceSource
	store       NotificationStore
	contacts    ContactLookup
	renderer    Renderer
	sender      Sender
}

// NewWriter returns a new notification writer. If sender is nil, notifications are never emailed.
func NewWriter(
	preferences PreferenceSource,
	store NotificationStore,
	contacts ContactLookup,
	renderer Renderer,
	sender Sender,
) *Writer {
	return &Writer{
		preferences: preferences,
		store:       store,
		contacts:    contacts,
		renderer:    renderer,
		sender:      sender,
	}
}

// Create stores a new unread notification for a user and emails it if the user's preferences allow email for
// the kind. Only failures to read preferences or to store the notification are returned; email failures are
// logged and leave the notification's emailed flag unset.
func (w *Writer) Create(
	ctx context.Context,
	userID string,
	kind model.Kind,
	title, message string,
	payload map[string]interface{},
) (*model.Notification, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "notifier.Create")
	defer span.End()
	span.SetAttributes(attribute.String("notification.kind", string(kind)))

	wrapMsg := "unable to create notification"

	// Make sure the user has preferences before checking any channels.
	prefs, err := w.preferences.GetOrCreate(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Store the notification.
	notification := &model.Notification{
		UserID:  userID,
		Kind:    kind,
		Title:   title,
		Message: message,
		Payload: payload,
	}
	if err := w.store.Save(ctx, notification); err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, wrapMsg)
	}

	if prefs.ShouldEmail(kind) {
		w.email(ctx, notification)
	}

	return notification, nil
}

// email sends the notification to the user by email and records that it was sent. Failures are logged rather
// than returned.
func (w *Writer) email(ctx context.Context, notification *model.Notification) {
	entry := log.WithFields(logrus.Fields{
		"user":         notification.UserID,
		"kind":         notification.Kind,
		"notification": notification.ID,
	})

	if w.sender == nil {
		entry.Debug("no email transport configured; skipping email")
		return
	}

	// Look up the recipient.
	contact, err := w.contacts.GetUserContact(ctx, notification.UserID)
	if err != nil {
		entry.WithError(err).Error("unable to look up the email recipient")
		return
	}

	// Render and send the email.
	body, err := w.renderer.Render(notification.Title, notification.Message, contact.DisplayName())
	if err != nil {
		entry.WithError(err).Error("unable to render the notification email")
		return
	}
	if err := w.sender.Send(ctx, contact.Email, notification.Title, body); err != nil {
		entry.WithError(err).Error("unable to send the notification email")
		return
	}

	// Record the successful send against the record that was just created.
	if err := w.store.MarkEmailed(ctx, notification.ID); err != nil {
		entry.WithError(err).Warn("email sent but the notification could not be marked as emailed")
		return
	}
	notification.Emailed = true
}
