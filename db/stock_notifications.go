package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/model"
	"github.com/pkg/errors"

	sq "github.com/Masterminds/squirrel"
)

// StockNotificationStore provides access to the stock_notifications table.
type StockNotificationStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewStockNotificationStore returns a new StockNotificationStore.
func NewStockNotificationStore(db *sql.DB) *StockNotificationStore {
	return &StockNotificationStore{db: db, now: clock}
}

// Save inserts a stock notification, assigning its identifier and creation time.
func (s *StockNotificationStore) Save(ctx context.Context, notification *model.StockNotification) error {
	wrapMsg := fmt.Sprintf("unable to save stock notification for `%s`", notification.UserID)

	id := uuid.New().String()
	createdAt := s.now()

	// The alert reference is optional.
	var alertID interface{}
	if notification.AlertID != "" {
		alertID = notification.AlertID
	}

	// Build the insert statement.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Insert("stock_notifications").
		Columns("id", "user_id", "product_id", "alert_id", "kind", "title", "message", "is_read", "created_at").
		Values(
			id,
			notification.UserID,
			notification.ProductID,
			alertID,
			string(notification.Kind),
			notification.Title,
			notification.Message,
			notification.Read,
			createdAt,
		).
		ToSql()
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	// Execute the insert statement.
	if _, err = s.db.ExecContext(ctx, statement, args...); err != nil {
		return unavailable(err, wrapMsg)
	}

	notification.ID = id
	notification.CreatedAt = createdAt
	return nil
}

// List returns a page of a user's stock notifications, newest first, each with a summary of the product.
func (s *StockNotificationStore) List(
	ctx context.Context,
	userID string,
	unreadOnly bool,
	limit, offset int,
) ([]*model.StockNotification, error) {
	wrapMsg := fmt.Sprintf("unable to list stock notifications for `%s`", userID)

	// Build the query.
	columns := []string{
		"s.id",
		"s.user_id",
		"s.product_id",
		"coalesce(s.alert_id::text, '')",
		"s.kind",
		"s.title",
		"s.message",
		"s.is_read",
		"s.created_at",
	}
	query, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select(append(columns, productSummaryColumns("p")...)...).
		From("stock_notifications s").
		Join("products p ON s.product_id = p.id").
		Where(ownedBy("s.", userID, unreadOnly)).
		OrderBy("s.created_at DESC", "s.id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Query the database.
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable(err, wrapMsg)
	}
	defer rows.Close()

	notifications := make([]*model.StockNotification, 0)
	for rows.Next() {
		var (
			notification model.StockNotification
			product      model.ProductSummary
			kind         string
		)
		dest := []interface{}{
			&notification.ID,
			&notification.UserID,
			&notification.ProductID,
			&notification.AlertID,
			&kind,
			&notification.Title,
			&notification.Message,
			&notification.Read,
			&notification.CreatedAt,
		}
		if err := rows.Scan(append(dest, productSummaryDest(&product)...)...); err != nil {
			return nil, unavailable(err, wrapMsg)
		}
		notification.Kind = model.AlertKind(kind)
		notification.Product = &product
		notifications = append(notifications, &notification)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(err, wrapMsg)
	}

	return notifications, nil
}

// Count counts a user's stock notifications, optionally only the unread ones.
func (s *StockNotificationStore) Count(ctx context.Context, userID string, unreadOnly bool) (int64, error) {
	return countOwned(ctx, s.db, "stock_notifications", userID, unreadOnly)
}

// MarkRead marks one of a user's stock notifications as read.
func (s *StockNotificationStore) MarkRead(ctx context.Context, userID, id string) error {
	return markOwnedRead(ctx, s.db, "stock_notifications", userID, id)
}

// MarkAllRead marks every unread stock notification owned by the user as read.
func (s *StockNotificationStore) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return markAllOwnedRead(ctx, s.db, "stock_notifications", userID)
}

// Delete removes one of a user's stock notifications.
func (s *StockNotificationStore) Delete(ctx context.Context, userID, id string) error {
	return deleteOwned(ctx, s.db, "stock_notifications", userID, id)
}
