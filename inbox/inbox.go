// Package inbox lets users page through, mark and delete the notifications that they've received. The general
// notifications and the stock notifications are separate collections with their own counts.
package inbox

import (
	"context"

	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/common"
	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/logging"
	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const otelName = "github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/inbox"

var log = logging.Log.WithFields(logrus.Fields{"package": "inbox"})

// Collection describes the record store operations for a single collection of user-owned notifications.
type Collection[T any] interface {
	List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]T, error)
	Count(ctx context.Context, userID string, unreadOnly bool) (int64, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID, id string) error
}

// Inbox provides the user-facing operations on one notification collection.
type Inbox[T any] struct {
	name        string
	collection  Collection[T]
	maxPageSize int
}

// New returns an inbox for a collection. The name is used in logs and traces. If maxPageSize is positive,
// larger page sizes are reduced to it.
func New[T any](name string, collection Collection[T], maxPageSize int) *Inbox[T] {
	return &Inbox[T]{name: name, collection: collection, maxPageSize: maxPageSize}
}

func (i *Inbox[T]) start(ctx context.Context, operation string) (context.Context, func()) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "inbox."+operation)
	span.SetAttributes(attribute.String("inbox.collection", i.name))
	return ctx, func() { span.End() }
}

// List returns a page of the user's notifications, newest first. Pages are numbered from 1.
func (i *Inbox[T]) List(
	ctx context.Context,
	userID string,
	page, pageSize int,
	unreadOnly bool,
) (*model.Page[T], error) {
	ctx, end := i.start(ctx, "List")
	defer end()

	wrapMsg := "unable to list " + i.name

	// Validate the page request.
	if page < 1 {
		return nil, common.NewValidationError("the page number must be positive: %d", page)
	}
	if pageSize < 1 {
		return nil, common.NewValidationError("the page size must be positive: %d", pageSize)
	}
	if i.maxPageSize > 0 && pageSize > i.maxPageSize {
		log.WithFields(logrus.Fields{"requested": pageSize, "max": i.maxPageSize}).Debug("page size reduced")
		pageSize = i.maxPageSize
	}

	// Count the matching notifications first so that the pagination metadata is available.
	total, err := i.collection.Count(ctx, userID, unreadOnly)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	pagination := model.NewPagination(page, pageSize, total)

	// Load the page itself.
	items, err := i.collection.List(ctx, userID, unreadOnly, pageSize, pagination.Offset())
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return &model.Page[T]{Notifications: items, Pagination: pagination}, nil
}

// MarkRead marks one of the user's notifications as read. Marking a notification that's already read succeeds.
func (i *Inbox[T]) MarkRead(ctx context.Context, userID, id string) error {
	ctx, end := i.start(ctx, "MarkRead")
	defer end()

	if err := i.collection.MarkRead(ctx, userID, id); err != nil {
		return errors.Wrapf(err, "unable to mark %s as read", i.name)
	}
	return nil
}

// MarkAllRead marks all of the user's unread notifications as read and returns the number that changed.
func (i *Inbox[T]) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	ctx, end := i.start(ctx, "MarkAllRead")
	defer end()

	count, err := i.collection.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, errors.Wrapf(err, "unable to mark all %s as read", i.name)
	}
	return count, nil
}

// UnreadCount returns the number of unread notifications that the user has.
func (i *Inbox[T]) UnreadCount(ctx context.Context, userID string) (int64, error) {
	ctx, end := i.start(ctx, "UnreadCount")
	defer end()

	count, err := i.collection.Count(ctx, userID, true)
	if err != nil {
		return 0, errors.Wrapf(err, "unable to count unread %s", i.name)
	}
	return count, nil
}

// Delete deletes one of the user's notifications.
func (i *Inbox[T]) Delete(ctx context.Context, userID, id string) error {
	ctx, end := i.start(ctx, "Delete")
	defer end()

	if err := i.collection.Delete(ctx, userID, id); err != nil {
		return errors.Wrapf(err, "unable to delete %s", i.name)
	}
	return nil
}
