package model

import (
	"fmt"
	"strings"
)

// Kind identifies the category of a user notification.
type Kind string

// The notification kinds known to the engine.
const (
	KindOrderUpdate      Kind = "ORDER_UPDATE"
	KindPriceDropAlert   Kind = "PRICE_DROP_ALERT"
	KindNewArrivalAlert  Kind = "NEW_ARRIVAL_ALERT"
	KindLowStockAlert    Kind = "LOW_STOCK_ALERT"
	KindOutOfStockAlert  Kind = "OUT_OF_STOCK_ALERT"
	KindBackInStockAlert Kind = "BACK_IN_STOCK_ALERT"
	KindMarketingEmail   Kind = "MARKETING_EMAIL"
	KindTestNotification Kind = "TEST_NOTIFICATION"
)

// gatingFields maps each known kind to the preference toggle that decides whether it is emailed. A kind that
// is missing from this table is emailed whenever the master switch is on, so the author of a new kind has to
// add an entry here to make it opt-out.
var gatingFields = map[Kind]PreferenceField{
	KindOrderUpdate:      FieldOrderUpdates,
	KindPriceDropAlert:   FieldPriceDrops,
	KindNewArrivalAlert:  FieldNewArrivals,
	KindLowStockAlert:    FieldStockAlerts,
	KindOutOfStockAlert:  FieldStockAlerts,
	KindBackInStockAlert: FieldStockAlerts,
	KindMarketingEmail:   FieldMarketingEmails,
	KindTestNotification: FieldEmailNotifications,
}

// titleFormats contains the title template for each known kind. Each template takes a single subject string,
// which is typically an order status or a product name.
var titleFormats = map[Kind]string{
	KindOrderUpdate:      "Order Update - %s",
	KindPriceDropAlert:   "Price Drop Alert - %s",
	KindNewArrivalAlert:  "New Arrival - %s",
	KindLowStockAlert:    "Low Stock Alert - %s",
	KindOutOfStockAlert:  "Out of Stock - %s",
	KindBackInStockAlert: "Back in Stock - %s",
	KindMarketingEmail:   "%s",
	KindTestNotification: "Test Notification",
}

// Kinds returns every known notification kind.
func Kinds() []Kind {
	return []Kind{
		KindOrderUpdate,
		KindPriceDropAlert,
		KindNewArrivalAlert,
		KindLowStockAlert,
		KindOutOfStockAlert,
		KindBackInStockAlert,
		KindMarketingEmail,
		KindTestNotification,
	}
}

// Known returns true if the kind is one of the kinds listed in Kinds.
func (k Kind) Known() bool {
	_, ok := gatingFields[k]
	return ok
}

// GatingField returns the preference field that gates email for the kind. The second return value is false
// for kinds that have no gating field.
func (k Kind) GatingField() (PreferenceField, bool) {
	field, ok := gatingFields[k]
	return field, ok
}

// Title formats the standard notification title for the kind.
func (k Kind) Title(subject string) string {
	format, ok := titleFormats[k]
	if !ok {
		return subject
	}
	if !strings.Contains(format, "%s") {
		return format
	}
	return fmt.Sprintf(format, subject)
}
