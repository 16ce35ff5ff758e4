package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/common"
	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/model"
	"github.com/pkg/errors"

	sq "github.com/Masterminds/squirrel"
)

// alertColumns lists the inventory_alerts columns read back into a model.InventoryAlert.
var alertColumns = []string{
	"a.id",
	"a.user_id",
	"a.product_id",
	"a.kind",
	"a.threshold",
	"a.is_active",
	"a.created_at",
	"a.fired_at",
}

// alertDest returns the scan destinations for alertColumns. The caller must copy the kind and fired-at
// values into the alert after scanning.
func alertDest(alert *model.InventoryAlert, kind *string, firedAt *sql.NullTime) []interface{} {
	return []interface{}{
		&alert.ID,
		&alert.UserID,
		&alert.ProductID,
		kind,
		&alert.Threshold,
		&alert.Active,
		&alert.CreatedAt,
		firedAt,
	}
}

// finishAlert copies the separately scanned values into the alert.
func finishAlert(alert *model.InventoryAlert, kind string, firedAt sql.NullTime) {
	alert.Kind = model.AlertKind(kind)
	if firedAt.Valid {
		t := firedAt.Time
		alert.FiredAt = &t
	}
}

// AlertStore provides access to the inventory_alerts table.
type AlertStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewAlertStore returns a new AlertStore.
func NewAlertStore(db *sql.DB) *AlertStore {
	return &AlertStore{db: db, now: clock}
}

// FindActive returns the active alert for the given user, product and kind. A NotFoundError is returned if
// there isn't one.
func (s *AlertStore) FindActive(
	ctx context.Context,
	userID, productID string,
	kind model.AlertKind,
) (*model.InventoryAlert, error) {
	wrapMsg := fmt.Sprintf("unable to look up the %s alert on `%s` for `%s`", kind, productID, userID)

	// Build the query.
	query, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select(alertColumns...).
		From("inventory_alerts a").
		Where(sq.Eq{"a.user_id": userID}).
		Where(sq.Eq{"a.product_id": productID}).
		Where(sq.Eq{"a.kind": string(kind)}).
		Where(sq.Eq{"a.is_active": true}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Query the database.
	var (
		alert   model.InventoryAlert
		kindStr string
		firedAt sql.NullTime
	)
	err = s.db.QueryRowContext(ctx, query, args...).Scan(alertDest(&alert, &kindStr, &firedAt)...)
	if err == sql.ErrNoRows {
		return nil, common.NewNotFoundError("no active %s alert on `%s` for `%s`", kind, productID, userID)
	}
	if err != nil {
		return nil, unavailable(err, wrapMsg)
	}
	finishAlert(&alert, kindStr, firedAt)

	return &alert, nil
}

// Save inserts a new active alert, assigning its identifier and creation time. A DuplicateError is returned
// if an active alert already exists for the same user, product and kind.
func (s *AlertStore) Save(ctx context.Context, alert *model.InventoryAlert) error {
	wrapMsg := fmt.Sprintf("unable to save the %s alert on `%s` for `%s`", alert.Kind, alert.ProductID, alert.UserID)

	id := uuid.New().String()
	createdAt := s.now()

	// Build the insert statement.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Insert("inventory_alerts").
		Columns("id", "user_id", "product_id", "kind", "threshold", "is_active", "created_at").
		Values(id, alert.UserID, alert.ProductID, string(alert.Kind), alert.Threshold, true, createdAt).
		ToSql()
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	// Execute the insert statement.
	_, err = s.db.ExecContext(ctx, statement, args...)
	if isUniqueViolation(err) {
		return common.NewDuplicateError(
			"an active %s alert on `%s` already exists for `%s`", alert.Kind, alert.ProductID, alert.UserID,
		)
	}
	if err != nil {
		return unavailable(err, wrapMsg)
	}

	alert.ID = id
	alert.Active = true
	alert.CreatedAt = createdAt
	return nil
}

// Delete removes one of a user's alerts. A NotFoundError is returned if the user doesn't own an alert with the
// identifier.
func (s *AlertStore) Delete(ctx context.Context, userID, alertID string) error {
	wrapMsg := fmt.Sprintf("unable to delete alert `%s`", alertID)

	// Build the delete statement.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Delete("inventory_alerts").
		Where(sq.Eq{"id": alertID}).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	// Execute the delete statement and verify that the alert was found.
	result, err := s.db.ExecContext(ctx, statement, args...)
	if err != nil {
		return unavailable(err, wrapMsg)
	}
	return expectOneRow(result, wrapMsg, "alert `%s` not found", alertID)
}

// ListActive lists a user's active alerts, newest first, each with a current summary of the product.
func (s *AlertStore) ListActive(ctx context.Context, userID string) ([]*model.InventoryAlert, error) {
	wrapMsg := fmt.Sprintf("unable to list active alerts for `%s`", userID)

	// Build the query.
	query, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select(append(append([]string{}, alertColumns...), productSummaryColumns("p")...)...).
		From("inventory_alerts a").
		Join("products p ON a.product_id = p.id").
		Where(sq.Eq{"a.user_id": userID}).
		Where(sq.Eq{"a.is_active": true}).
		OrderBy("a.created_at DESC", "a.id DESC").
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

	alerts := make([]*model.InventoryAlert, 0)
	for rows.Next() {
		var (
			alert   model.InventoryAlert
			product model.ProductSummary
			kind    string
			firedAt sql.NullTime
		)
		dest := append(alertDest(&alert, &kind, &firedAt), productSummaryDest(&product)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, unavailable(err, wrapMsg)
		}
		finishAlert(&alert, kind, firedAt)
		alert.Product = &product
		alerts = append(alerts, &alert)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(err, wrapMsg)
	}

	return alerts, nil
}

// ListActiveForProduct lists every active alert of the given kind on a product, oldest first.
func (s *AlertStore) ListActiveForProduct(
	ctx context.Context,
	productID string,
	kind model.AlertKind,
) ([]*model.InventoryAlert, error) {
	wrapMsg := fmt.Sprintf("unable to list active %s alerts on `%s`", kind, productID)

	// Build the query.
	query, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select(alertColumns...).
		From("inventory_alerts a").
		Where(sq.Eq{"a.product_id": productID}).
		Where(sq.Eq{"a.kind": string(kind)}).
		Where(sq.Eq{"a.is_active": true}).
		OrderBy("a.created_at ASC", "a.id ASC").
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

	alerts := make([]*model.InventoryAlert, 0)
	for rows.Next() {
		var (
			alert   model.InventoryAlert
			kindStr string
			firedAt sql.NullTime
		)
		if err := rows.Scan(alertDest(&alert, &kindStr, &firedAt)...); err != nil {
			return nil, unavailable(err, wrapMsg)
		}
		finishAlert(&alert, kindStr, firedAt)
		alerts = append(alerts, &alert)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(err, wrapMsg)
	}

	return alerts, nil
}

// Deactivate marks an active alert as fired. A NotFoundError is returned if the alert doesn't exist or has
// already been deactivated, which lets concurrent callers agree on which of them fires the alert.
func (s *AlertStore) Deactivate(ctx context.Context, alertID string) (time.Time, error) {
	wrapMsg := fmt.Sprintf("unable to deactivate alert `%s`", alertID)

	firedAt := s.now()

	// Build the update statement.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Update("inventory_alerts").
		Set("is_active", false).
		Set("fired_at", firedAt).
		Where(sq.Eq{"id": alertID}).
		Where(sq.Eq{"is_active": true}).
		ToSql()
	if err != nil {
		return time.Time{}, errors.Wrap(err, wrapMsg)
	}

	// Execute the update statement and verify that the alert was still active.
	result, err := s.db.ExecContext(ctx, statement, args...)
	if err != nil {
		return time.Time{}, unavailable(err, wrapMsg)
	}
	if err := expectOneRow(result, wrapMsg, "active alert `%s` not found", alertID); err != nil {
		return time.Time{}, err
	}

	return firedAt, nil
}

// Reactivate returns a fired alert to the active state so that it can fire again. A NotFoundError is returned
// if the alert doesn't exist or is already active. A DuplicateError is returned if the user has subscribed to
// an equivalent alert since this one fired.
func (s *AlertStore) Reactivate(ctx context.Context, alertID string) error {
	wrapMsg := fmt.Sprintf("unable to reactivate alert `%s`", alertID)

	// Build the update statement.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Update("inventory_alerts").
		Set("is_active", true).
		Set("fired_at", nil).
		Where(sq.Eq{"id": alertID}).
		Where(sq.Eq{"is_active": false}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	// Execute the update statement.
	result, err := s.db.ExecContext(ctx, statement, args...)
	if isUniqueViolation(err) {
		return common.NewDuplicateError("an equivalent active alert already exists for alert `%s`", alertID)
	}
	if err != nil {
		return unavailable(err, wrapMsg)
	}
	return expectOneRow(result, wrapMsg, "inactive alert `%s` not found", alertID)
}
