package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/common"
	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/model"
	"github.com/pkg/errors"

	sq "github.com/Masterminds/squirrel"
)

// preferenceColumns maps each preference toggle to its column in the notification_preferences table.
var preferenceColumns = map[model.PreferenceField]string{
	model.FieldEmailNotifications: "email_notifications",
	model.FieldPushNotifications:  "push_notifications",
	model.FieldOrderUpdates:       "order_updates",
	model.FieldPriceDrops:         "price_drops",
	model.FieldNewArrivals:        "new_arrivals",
	model.FieldStockAlerts:        "stock_alerts",
	model.FieldMarketingEmails:    "marketing_emails",
}

// toggleColumns returns the toggle column names in a stable order.
func toggleColumns() []string {
	fields := model.PreferenceFields()
	columns := make([]string, len(fields))
	for i, field := range fields {
		columns[i] = preferenceColumns[field]
	}
	return columns
}

// toggleValues returns the toggle values of prefs in the same order as toggleColumns.
func toggleValues(prefs *model.Preferences) []interface{} {
	fields := model.PreferenceFields()
	values := make([]interface{}, len(fields))
	for i, field := range fields {
		values[i] = prefs.Field(field)
	}
	return values
}

// preferenceSelectColumns returns every column that is read back into a model.Preferences.
func preferenceSelectColumns() []string {
	columns := []string{"id", "user_id"}
	columns = append(columns, toggleColumns()...)
	return append(columns, "created_at", "updated_at")
}

// scanPreferences scans a single notification_preferences row.
func scanPreferences(row sq.RowScanner) (*model.Preferences, error) {
	var prefs model.Preferences
	err := row.Scan(
		&prefs.ID,
		&prefs.UserID,
		&prefs.EmailNotifications,
		&prefs.PushNotifications,
		&prefs.OrderUpdates,
		&prefs.PriceDrops,
		&prefs.NewArrivals,
		&prefs.StockAlerts,
		&prefs.MarketingEmails,
		&prefs.CreatedAt,
		&prefs.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}

// PreferenceStore provides access to the notification_preferences table.
type PreferenceStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewPreferenceStore returns a new PreferenceStore.
func NewPreferenceStore(db *sql.DB) *PreferenceStore {
	return &PreferenceStore{db: db, now: clock}
}

// Get returns the preferences for a user. A NotFoundError is returned if the user has no preference record.
func (s *PreferenceStore) Get(ctx context.Context, userID string) (*model.Preferences, error) {
	wrapMsg := fmt.Sprintf("unable to get the notification preferences for `%s`", userID)

	// Build the query.
	query, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select(preferenceSelectColumns()...).
		From("notification_preferences").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Query the database.
	prefs, err := scanPreferences(s.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, common.NewNotFoundError("no notification preferences found for `%s`", userID)
	}
	if err != nil {
		return nil, unavailable(err, wrapMsg)
	}

	return prefs, nil
}

// Create inserts a new preference record, filling in its identifier and timestamps. A DuplicateError is
// returned if the user already has a preference record.
func (s *PreferenceStore) Create(ctx context.Context, prefs *model.Preferences) error {
	wrapMsg := fmt.Sprintf("unable to create the notification preferences for `%s`", prefs.UserID)

	now := s.now()
	id := uuid.New().String()

	// Build the statement.
	columns := append([]string{"id", "user_id"}, toggleColumns()...)
	columns = append(columns, "created_at", "updated_at")
	values := append([]interface{}{id, prefs.UserID}, toggleValues(prefs)...)
	values = append(values, now, now)
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Insert("notification_preferences").
		Columns(columns...).
		Values(values...).
		ToSql()
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	// Execute the statement.
	_, err = s.db.ExecContext(ctx, statement, args...)
	if isUniqueViolation(err) {
		return common.NewDuplicateError("notification preferences already exist for `%s`", prefs.UserID)
	}
	if err != nil {
		return unavailable(err, wrapMsg)
	}

	prefs.ID = id
	prefs.CreatedAt = now
	prefs.UpdatedAt = now
	return nil
}

// Upsert applies a partial update to the preferences for a user. If the user has no preference record yet,
// one is created from the supplied fields plus the given defaults for everything else. Only the supplied
// fields are overwritten when a record already exists.
func (s *PreferenceStore) Upsert(
	ctx context.Context,
	userID string,
	update model.PreferenceUpdate,
	defaults model.Preferences,
) (*model.Preferences, error) {
	wrapMsg := fmt.Sprintf("unable to update the notification preferences for `%s`", userID)

	now := s.now()
	initial := update.ApplyTo(defaults)

	// Only the supplied columns are copied from the proposed row on conflict.
	supplied := update.Supplied()
	conflictUpdates := ""
	for _, field := range model.PreferenceFields() {
		if _, ok := supplied[field]; ok {
			column := preferenceColumns[field]
			conflictUpdates += fmt.Sprintf("%s = EXCLUDED.%s, ", column, column)
		}
	}
	conflictUpdates += "updated_at = EXCLUDED.updated_at"

	// Build the statement.
	columns := append([]string{"id", "user_id"}, toggleColumns()...)
	columns = append(columns, "created_at", "updated_at")
	values := append([]interface{}{uuid.New().String(), userID}, toggleValues(&initial)...)
	values = append(values, now, now)
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Insert("notification_preferences").
		Columns(columns...).
		Values(values...).
		Suffix(fmt.Sprintf(
			"ON CONFLICT (user_id) DO UPDATE SET %s RETURNING %s",
			conflictUpdates,
			strings.Join(preferenceSelectColumns(), ", "),
		)).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Execute the statement, scanning the resulting record.
	prefs, err := scanPreferences(s.db.QueryRowContext(ctx, statement, args...))
	if err != nil {
		return nil, unavailable(err, wrapMsg)
	}

	return prefs, nil
}

// Backfill creates a preference record with the given defaults for every user that doesn't have one yet,
// returning the number of records created.
func (s *PreferenceStore) Backfill(ctx context.Context, defaults model.Preferences) (int64, error) {
	wrapMsg := "unable to backfill notification preferences"

	// Build the subquery that produces one row for each user without preferences.
	selection := sq.Select("gen_random_uuid()", "u.id")
	for _, value := range toggleValues(&defaults) {
		selection = selection.Column("?::boolean", value)
	}
	selection = selection.Column("now()").Column("now()").
		From("users u").
		LeftJoin("notification_preferences p ON p.user_id = u.id").
		Where(sq.Eq{"p.id": nil})

	// Build the statement.
	columns := append([]string{"id", "user_id"}, toggleColumns()...)
	columns = append(columns, "created_at", "updated_at")
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Insert("notification_preferences").
		Columns(columns...).
		Select(selection).
		Suffix("ON CONFLICT (user_id) DO NOTHING").
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, wrapMsg)
	}

	// Execute the statement.
	result, err := s.db.ExecContext(ctx, statement, args...)
	if err != nil {
		return 0, unavailable(err, wrapMsg)
	}
	created, err := result.RowsAffected()
	if err != nil {
		return 0, unavailable(err, wrapMsg)
	}

	return created, nil
}

// SelectRecipients returns the identifiers of the users whose preference record has the gating toggle for
// kind switched on. Users without a preference record are never returned. Kinds without a gating toggle
// select every user that has a preference record.
func (s *PreferenceStore) SelectRecipients(ctx context.Context, kind model.Kind) ([]string, error) {
	wrapMsg := fmt.Sprintf("unable to select recipients for `%s`", kind)

	// Build the query.
	builder := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select("user_id").
		From("notification_preferences").
		OrderBy("user_id")
	if field, ok := kind.GatingField(); ok {
		builder = builder.Where(sq.Eq{preferenceColumns[field]: true})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Query the database.
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable(err, wrapMsg)
	}
	defer rows.Close()

	userIDs := make([]string, 0)
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, unavailable(err, wrapMsg)
		}
		userIDs = append(userIDs, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(err, wrapMsg)
	}

	return userIDs, nil
}
