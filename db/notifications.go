package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/model"
	"github.com/pkg/errors"

	sq "github.com/Masterminds/squirrel"
)

// notificationColumns lists the columns read back into a model.Notification.
var notificationColumns = []string{
	"id",
	"user_id",
	"kind",
	"title",
	"message",
	"payload",
	"is_read",
	"emailed",
	"created_at",
}

// NotificationStore provides access to the user_notifications table.
type NotificationStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewNotificationStore returns a new NotificationStore.
func NewNotificationStore(db *sql.DB) *NotificationStore {
	return &NotificationStore{db: db, now: clock}
}

// ownedBy builds the filter that restricts a statement to a user's notifications, optionally only the unread
// ones. The prefix qualifies the column names when the table is aliased.
func ownedBy(prefix, userID string, unreadOnly bool) sq.Sqlizer {
	if unreadOnly {
		return sq.And{sq.Eq{prefix + "user_id": userID}, sq.Eq{prefix + "is_read": false}}
	}
	return sq.Eq{prefix + "user_id": userID}
}

// Save inserts a notification. The notification's identifier and creation time are assigned here and
// recorded in the notification structure so that callers can refer to the record directly.
func (s *NotificationStore) Save(ctx context.Context, notification *model.Notification) error {
	wrapMsg := fmt.Sprintf("unable to save notification for `%s`", notification.UserID)

	// Encode the payload. A missing payload is stored as NULL.
	var payload interface{}
	if notification.Payload != nil {
		encoded, err := json.Marshal(notification.Payload)
		if err != nil {
			return errors.Wrap(err, wrapMsg)
		}
		payload = string(encoded)
	}

	id := uuid.New().String()
	createdAt := s.now()

	// Build the statement to insert the notification.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Insert("user_notifications").
		Columns(notificationColumns...).
		Values(
			id,
			notification.UserID,
			string(notification.Kind),
			notification.Title,
			notification.Message,
			payload,
			notification.Read,
			notification.Emailed,
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

// MarkEmailed records that an email was sent for the notification with the given identifier.
func (s *NotificationStore) MarkEmailed(ctx context.Context, id string) error {
	wrapMsg := fmt.Sprintf("unable to mark notification `%s` as emailed", id)

	// Build the update statement.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Update("user_notifications").
		Set("emailed", true).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	// Execute the update statement and verify that the notification was found.
	result, err := s.db.ExecContext(ctx, statement, args...)
	if err != nil {
		return unavailable(err, wrapMsg)
	}
	return expectOneRow(result, wrapMsg, "notification `%s` not found", id)
}

// List returns a page of a user's notifications, newest first.
func (s *NotificationStore) List(
	ctx context.Context,
	userID string,
	unreadOnly bool,
	limit, offset int,
) ([]*model.Notification, error) {
	wrapMsg := fmt.Sprintf("unable to list notifications for `%s`", userID)

	// Build the query.
	query, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select(notificationColumns...).
		From("user_notifications").
		Where(ownedBy("", userID, unreadOnly)).
		OrderBy("created_at DESC", "id DESC").
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

	notifications := make([]*model.Notification, 0)
	for rows.Next() {
		var (
			notification model.Notification
			kind         string
			payload      []byte
		)
		err = rows.Scan(
			&notification.ID,
			&notification.UserID,
			&kind,
			&notification.Title,
			&notification.Message,
			&payload,
			&notification.Read,
			&notification.Emailed,
			&notification.CreatedAt,
		)
		if err != nil {
			return nil, unavailable(err, wrapMsg)
		}
		notification.Kind = model.Kind(kind)
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &notification.Payload); err != nil {
				return nil, errors.Wrap(err, wrapMsg)
			}
		}
		notifications = append(notifications, &notification)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(err, wrapMsg)
	}

	return notifications, nil
}

// Count counts a user's notifications, optionally only the unread ones.
func (s *NotificationStore) Count(ctx context.Context, userID string, unreadOnly bool) (int64, error) {
	return countOwned(ctx, s.db, "user_notifications", userID, unreadOnly)
}

// MarkRead marks one of a user's notifications as read. Marking a notification that has already been read is
// not an error. A NotFoundError is returned if the user doesn't own a notification with the identifier.
func (s *NotificationStore) MarkRead(ctx context.Context, userID, id string) error {
	return markOwnedRead(ctx, s.db, "user_notifications", userID, id)
}

// MarkAllRead marks every unread notification owned by the user as read, returning the number of updated
// notifications.
func (s *NotificationStore) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return markAllOwnedRead(ctx, s.db, "user_notifications", userID)
}

// Delete removes one of a user's notifications. A NotFoundError is returned if the user doesn't own a
// notification with the identifier.
func (s *NotificationStore) Delete(ctx context.Context, userID, id string) error {
	return deleteOwned(ctx, s.db, "user_notifications", userID, id)
}

// countOwned counts the records in an inbox table that belong to a user.
func countOwned(ctx context.Context, db *sql.DB, table, userID string, unreadOnly bool) (int64, error) {
	wrapMsg := fmt.Sprintf("unable to count %s for `%s`", table, userID)
	var total int64

	// Build the statement to count the notifications.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select("count(*)").
		From(table).
		Where(ownedBy("", userID, unreadOnly)).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, wrapMsg)
	}

	// Execute the statement.
	err = db.QueryRowContext(ctx, statement, args...).Scan(&total)
	if err != nil {
		return 0, unavailable(err, wrapMsg)
	}

	return total, nil
}

// markOwnedRead marks a single record in an inbox table as read.
func markOwnedRead(ctx context.Context, db *sql.DB, table, userID, id string) error {
	wrapMsg := fmt.Sprintf("unable to mark `%s` in %s as read", id, table)

	// Build the update statement.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Update(table).
		Set("is_read", true).
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	// Execute the update statement and verify that the record was found.
	result, err := db.ExecContext(ctx, statement, args...)
	if err != nil {
		return unavailable(err, wrapMsg)
	}
	return expectOneRow(result, wrapMsg, "notification `%s` not found", id)
}

// markAllOwnedRead marks every unread record in an inbox table that belongs to a user as read.
func markAllOwnedRead(ctx context.Context, db *sql.DB, table, userID string) (int64, error) {
	wrapMsg := fmt.Sprintf("unable to mark all %s for `%s` as read", table, userID)

	// Build the update statement.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Update(table).
		Set("is_read", true).
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Eq{"is_read": false}).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, wrapMsg)
	}

	// Execute the update statement.
	result, err := db.ExecContext(ctx, statement, args...)
	if err != nil {
		return 0, unavailable(err, wrapMsg)
	}
	updated, err := result.RowsAffected()
	if err != nil {
		return 0, unavailable(err, wrapMsg)
	}

	return updated, nil
}

// deleteOwned removes a single record from an inbox table.
func deleteOwned(ctx context.Context, db *sql.DB, table, userID, id string) error {
	wrapMsg := fmt.Sprintf("unable to delete `%s` from %s", id, table)

	// Build the delete statement.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Delete(table).
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	// Execute the delete statement and verify that the record was found.
	result, err := db.ExecContext(ctx, statement, args...)
	if err != nil {
		return unavailable(err, wrapMsg)
	}
	return expectOneRow(result, wrapMsg, "notification `%s` not found", id)
}
