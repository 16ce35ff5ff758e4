package notifier

import (
	"context"

	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// Creator creates a notification for a single user.
type Creator interface {
	Create(
		ctx context.Context,
		userID string,
		kind model.Kind,
		title, message string,
		payload map[string]interface{},
	) (*model.Notification, error)
}

// RecipientSelector selects the users whose preferences allow a kind of notification.
type RecipientSelector interface {
	SelectRecipients(ctx context.Context, kind model.Kind) ([]string, error)
}

// Dispatcher fans a single notification out to many users.
type Dispatcher struct {
	creator  Creator
	selector RecipientSelector
	workers  int
}

// NewDispatcher returns a new dispatcher. With a single worker, recipients are processed one at a time;
// otherwise at most workers recipients are processed concurrently.
func NewDispatcher(creator Creator, selector RecipientSelector, workers int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{creator: creator, selector: selector, workers: workers}
}

// Dispatch creates the notification for every user in userIDs. A failure for one user is logged and doesn't
// stop the remaining users from being attempted. The notifications that were created are returned in the
// same order as their recipients.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	userIDs []string,
	kind model.Kind,
	title, message string,
	payload map[string]interface{},
) []*model.Notification {
	ctx, span := otel.Tracer(otelName).Start(ctx, "notifier.Dispatch")
	defer span.End()
	span.SetAttributes(
		attribute.String("notification.kind", string(kind)),
		attribute.Int("notification.recipients", len(userIDs)),
	)

	results := make([]*model.Notification, len(userIDs))
	attempt := func(i int) {
		notification, err := d.creator.Create(ctx, userIDs[i], kind, title, message, payload)
		if err != nil {
			log.WithFields(logrus.Fields{"user": userIDs[i], "kind": kind}).
				WithError(err).
				Error("unable to deliver notification to recipient")
			return
		}
		results[i] = notification
	}

	if d.workers == 1 {
		for i := range userIDs {
			attempt(i)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(d.workers)
		for i := range userIDs {
			i := i
			g.Go(func() error {
				attempt(i)
				return nil
			})
		}
		_ = g.Wait()
	}

	delivered := make([]*model.Notification, 0, len(userIDs))
	for _, notification := range results {
		if notification != nil {
			delivered = append(delivered, notification)
		}
	}
	span.SetAttributes(attribute.Int("notification.delivered", len(delivered)))

	log.WithFields(logrus.Fields{
		"kind":       kind,
		"recipients": len(userIDs),
		"delivered":  len(delivered),
	}).Info("dispatched notification")

	return delivered
}

// SelectRecipients returns the users whose preference record allows the kind. Users who have never saved
// preferences are not selected; see preferences.Service.Backfill.
func (d *Dispatcher) SelectRecipients(ctx context.Context, kind model.Kind) ([]string, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "notifier.SelectRecipients")
	defer span.End()

	userIDs, err := d.selector.SelectRecipients(ctx, kind)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "unable to select notification recipients")
	}
	return userIDs, nil
}

// Broadcast dispatches the notification to every user selected by SelectRecipients.
func (d *Dispatcher) Broadcast(
	ctx context.Context,
	kind model.Kind,
	title, message string,
	payload map[string]interface{},
) ([]*model.Notification, error) {
	userIDs, err := d.SelectRecipients(ctx, kind)
	if err != nil {
		return nil, err
	}
	return d.Dispatch(ctx, userIDs, kind, title, message, payload), nil
}
