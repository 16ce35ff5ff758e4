package db

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

// schema creates the tables owned by the notification engine. The users and products tables belong to the
// storefront and are only read here.
const schema = `
CREATE TABLE IF NOT EXISTS notification_preferences (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id uuid NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
    email_notifications boolean NOT NULL DEFAULT true,
    push_notifications boolean NOT NULL DEFAULT true,
    order_updates boolean NOT NULL DEFAULT true,
    price_drops boolean NOT NULL DEFAULT true,
    new_arrivals boolean NOT NULL DEFAULT true,
    stock_alerts boolean NOT NULL DEFAULT true,
    marketing_emails boolean NOT NULL DEFAULT false,
    created_at timestamp with time zone NOT NULL DEFAULT now(),
    updated_at timestamp with time zone NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS user_notifications (
    id uuid PRIMARY KEY,
    user_id uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    kind text NOT NULL,
    title text NOT NULL,
    message text NOT NULL,
    payload jsonb,
    is_read boolean NOT NULL DEFAULT false,
    emailed boolean NOT NULL DEFAULT false,
    created_at timestamp with time zone NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS user_notifications_user_created_idx
    ON user_notifications(user_id, created_at DESC);

CREATE INDEX IF NOT EXISTS user_notifications_unread_idx
    ON user_notifications(user_id) WHERE NOT is_read;

CREATE TABLE IF NOT EXISTS inventory_alerts (
    id uuid PRIMARY KEY,
    user_id uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    product_id uuid NOT NULL REFERENCES products(id) ON DELETE CASCADE,
    kind text NOT NULL,
    threshold integer NOT NULL DEFAULT 0,
    is_active boolean NOT NULL DEFAULT true,
    created_at timestamp with time zone NOT NULL DEFAULT now(),
    fired_at timestamp with time zone
);

-- At most one active alert per user, product and kind.
CREATE UNIQUE INDEX IF NOT EXISTS inventory_alerts_active_unique
    ON inventory_alerts(user_id, product_id, kind) WHERE is_active;

CREATE TABLE IF NOT EXISTS stock_notifications (
    id uuid PRIMARY KEY,
    user_id uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    product_id uuid NOT NULL REFERENCES products(id) ON DELETE CASCADE,
    alert_id uuid REFERENCES inventory_alerts(id) ON DELETE SET NULL,
    kind text NOT NULL,
    title text NOT NULL,
    message text NOT NULL,
    is_read boolean NOT NULL DEFAULT false,
    created_at timestamp with time zone NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS stock_notifications_user_created_idx
    ON stock_notifications(user_id, created_at DESC);
`

// Migrate creates the tables used by the notification engine if they don't exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "unable to apply the database schema")
	}
	return nil
}
