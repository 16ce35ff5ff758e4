// Package alerts manages standing inventory alert subscriptions and fires them when the storefront reports a
// stock condition on a product.
package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/common"
	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/logging"
	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const otelName = "github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/alerts"

var log = logging.Log.WithFields(logrus.Fields{"package": "alerts"})

// Store describes the record store operations used for inventory alerts.
type Store interface {
	FindActive(ctx context.Context, userID, productID string, kind model.AlertKind) (*model.InventoryAlert, error)
	Save(ctx context.Context, alert *model.InventoryAlert) error
	Delete(ctx context.Context, userID, alertID string) error
	ListActive(ctx context.Context, userID string) ([]*model.InventoryAlert, error)
	ListActiveForProduct(ctx context.Context, productID string, kind model.AlertKind) ([]*model.InventoryAlert, error)
	Deactivate(ctx context.Context, alertID string) (time.Time, error)
	Reactivate(ctx context.Context, alertID string) error
}

// ProductLookup returns the current summary of a storefront product.
type ProductLookup interface {
	GetProduct(ctx context.Context, productID string) (*model.ProductSummary, error)
}

// StockNotificationStore persists delivered stock notifications.
type StockNotificationStore interface {
	Save(ctx context.Context, notification *model.StockNotification) error
}

// NotificationCreator creates the general notification that accompanies a fired alert.
type NotificationCreator interface {
	Create(
		ctx context.Context,
		userID string,
		kind model.Kind,
		title, message string,
		payload map[string]interface{},
	) (*model.Notification, error)
}

// Registry subscribes users to inventory alerts and fires them.
type Registry struct {
	alerts        Store
	products      ProductLookup
	notifications StockNotificationStore
	creator       NotificationCreator
}

// NewRegistry returns a new alert registry.
func NewRegistry(
	alerts Store,
	products ProductLookup,
	notifications StockNotificationStore,
	creator NotificationCreator,
) *Registry {
	return &Registry{
		alerts:        alerts,
		products:      products,
		notifications: notifications,
		creator:       creator,
	}
}

// Subscribe creates an active alert for a user on a product. A NotFoundError is returned if the product
// doesn't exist and a DuplicateError is returned if the user already has an active alert of the same kind on
// the product.
func (r *Registry) Subscribe(
	ctx context.Context,
	userID, productID string,
	kind model.AlertKind,
	threshold int,
) (*model.InventoryAlert, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "alerts.Subscribe")
	defer span.End()
	span.SetAttributes(attribute.String("alert.kind", string(kind)))

	wrapMsg := "unable to subscribe to inventory alert"

	// Validate the request.
	if !kind.Valid() {
		return nil, common.NewValidationError("unsupported alert type: %s", kind)
	}
	if threshold < 0 {
		return nil, common.NewValidationError("the alert threshold must not be negative: %d", threshold)
	}

	// The product has to exist.
	if _, err := r.products.GetProduct(ctx, productID); err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Check for an existing active alert. The store's unique index catches any alert created after this check.
	_, err := r.alerts.FindActive(ctx, userID, productID, kind)
	if err == nil {
		return nil, common.NewDuplicateError("an active %s alert already exists for product `%s`", kind, productID)
	}
	if !common.IsNotFound(err) {
		span.RecordError(err)
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Create the alert.
	alert := &model.InventoryAlert{
		UserID:    userID,
		ProductID: productID,
		Kind:      kind,
		Threshold: threshold,
	}
	if err := r.alerts.Save(ctx, alert); err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, wrapMsg)
	}

	return alert, nil
}

// Unsubscribe deletes one of the user's alerts. A NotFoundError is returned if the user doesn't own the alert.
func (r *Registry) Unsubscribe(ctx context.Context, userID, alertID string) error {
	ctx, span := otel.Tracer(otelName).Start(ctx, "alerts.Unsubscribe")
	defer span.End()

	if err := r.alerts.Delete(ctx, userID, alertID); err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "unable to unsubscribe from inventory alert")
	}
	return nil
}

// ListActive lists the user's active alerts along with the current state of each product.
func (r *Registry) ListActive(ctx context.Context, userID string) ([]*model.InventoryAlert, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "alerts.ListActive")
	defer span.End()

	alerts, err := r.alerts.ListActive(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "unable to list inventory alerts")
	}
	return alerts, nil
}

// alertMessage returns the message body for a fired alert.
func alertMessage(kind model.AlertKind, product *model.ProductSummary, stock int) string {
	switch kind {
	case model.AlertLowStock:
		return fmt.Sprintf("Only %d left in stock for %s. Order soon before it sells out.", stock, product.Name)
	case model.AlertOutOfStock:
		return fmt.Sprintf("%s is currently out of stock.", product.Name)
	default:
		return fmt.Sprintf("%s is back in stock with %d available.", product.Name, stock)
	}
}

// Fire delivers every active alert of the given kind on a product whose condition holds for the reported
// stock level. Each alert fires at most once: it's deactivated before anything is delivered, and an alert
// that another caller has already deactivated is skipped. An alert whose stock notification can't be saved is
// reactivated so that a later stock event fires it again. Failures for individual alerts are logged and don't
// stop the remaining alerts from firing. The stock notifications that were delivered are returned.
func (r *Registry) Fire(
	ctx context.Context,
	productID string,
	kind model.AlertKind,
	stock int,
) ([]*model.StockNotification, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "alerts.Fire")
	defer span.End()
	span.SetAttributes(attribute.String("alert.kind", string(kind)), attribute.Int("alert.stock", stock))

	wrapMsg := "unable to fire inventory alerts"

	if !kind.Valid() {
		return nil, common.NewValidationError("unsupported alert type: %s", kind)
	}

	// Look up the product so that the product name can be included in the notifications.
	product, err := r.products.GetProduct(ctx, productID)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Load the candidate alerts.
	alerts, err := r.alerts.ListActiveForProduct(ctx, productID, kind)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, wrapMsg)
	}

	title := kind.NotificationKind().Title(product.Name)
	message := alertMessage(kind, product, stock)

	delivered := make([]*model.StockNotification, 0)
	for _, alert := range alerts {
		if !kind.Matches(alert.Threshold, stock) {
			continue
		}
		notification, err := r.fireOne(ctx, alert, product, title, message, stock)
		if err != nil {
			log.WithFields(logrus.Fields{"user": alert.UserID, "alert": alert.ID, "kind": kind}).
				WithError(err).
				Error("unable to fire inventory alert")
			continue
		}
		if notification != nil {
			delivered = append(delivered, notification)
		}
	}
	span.SetAttributes(attribute.Int("alert.delivered", len(delivered)))

	return delivered, nil
}

// release returns a claimed alert to the active state after its delivery failed so that a later stock event
// can fire it again.
func (r *Registry) release(ctx context.Context, alert *model.InventoryAlert) {
	if err := r.alerts.Reactivate(ctx, alert.ID); err != nil {
		log.WithFields(logrus.Fields{"user": alert.UserID, "alert": alert.ID, "kind": alert.Kind}).
			WithError(err).
			Error("unable to reactivate an inventory alert after a failed delivery")
		return
	}
	alert.Active = true
	alert.FiredAt = nil
}

// fireOne claims and delivers a single alert. A nil notification with a nil error means that the alert had
// already been claimed elsewhere.
func (r *Registry) fireOne(
	ctx context.Context,
	alert *model.InventoryAlert,
	product *model.ProductSummary,
	title, message string,
	stock int,
) (*model.StockNotification, error) {
	entry := log.WithFields(logrus.Fields{"user": alert.UserID, "alert": alert.ID, "kind": alert.Kind})

	// Claim the alert.
	firedAt, err := r.alerts.Deactivate(ctx, alert.ID)
	if common.IsNotFound(err) {
		entry.Debug("inventory alert was already fired")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	alert.Active = false
	alert.FiredAt = &firedAt

	// Record the stock notification.
	notification := &model.StockNotification{
		UserID:    alert.UserID,
		ProductID: alert.ProductID,
		AlertID:   alert.ID,
		Kind:      alert.Kind,
		Title:     title,
		Message:   message,
		Product:   product,
	}
	if err := r.notifications.Save(ctx, notification); err != nil {
		r.release(ctx, alert)
		return nil, err
	}

	// The general notification handles email delivery. Its failure doesn't undo the stock notification.
	payload := map[string]interface{}{
		"productId": alert.ProductID,
		"alertId":   alert.ID,
		"stock":     stock,
	}
	if _, err := r.creator.Create(ctx, alert.UserID, alert.Kind.NotificationKind(), title, message, payload); err != nil {
		entry.WithError(err).Error("unable to create the notification for a fired inventory alert")
	}

	return notification, nil
}
