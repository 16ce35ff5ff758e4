package model

import "time"

// AlertKind identifies the stock condition that an inventory alert watches for.
type AlertKind string

// The inventory alert kinds.
const (
	AlertLowStock    AlertKind = "LOW_STOCK"
	AlertOutOfStock  AlertKind = "OUT_OF_STOCK"
	AlertBackInStock AlertKind = "BACK_IN_STOCK"
)

var alertNotificationKinds = map[AlertKind]Kind{
	AlertLowStock:    KindLowStockAlert,
	AlertOutOfStock:  KindOutOfStockAlert,
	AlertBackInStock: KindBackInStockAlert,
}

// Valid returns true if the alert kind is one of the known alert kinds.
func (k AlertKind) Valid() bool {
	_, ok := alertNotificationKinds[k]
	return ok
}

// NotificationKind returns the notification kind that is used when an alert of this kind fires.
func (k AlertKind) NotificationKind() Kind {
	return alertNotificationKinds[k]
}

// Matches returns true if an alert of this kind with the given threshold should fire for the current stock.
// Only low-stock alerts consult the threshold; the other kinds are reported by the caller when the condition
// has already been detected.
func (k AlertKind) Matches(threshold, stock int) bool {
	if k == AlertLowStock {
		return stock <= threshold
	}
	return true
}

// InventoryAlert is a standing subscription to a stock condition on a single product.
type InventoryAlert struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	ProductID string          `json:"productId"`
	Kind      AlertKind       `json:"alertType"`
	Threshold int             `json:"threshold"`
	Active    bool            `json:"isActive"`
	CreatedAt time.Time       `json:"createdAt"`
	FiredAt   *time.Time      `json:"firedAt,omitempty"`
	Product   *ProductSummary `json:"product,omitempty"`
}

// StockNotification is a delivered stock event for a single user.
type StockNotification struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	ProductID string          `json:"productId"`
	AlertID   string          `json:"alertId,omitempty"`
	Kind      AlertKind       `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Read      bool            `json:"read"`
	CreatedAt time.Time       `json:"createdAt"`
	Product   *ProductSummary `json:"product,omitempty"`
}

// ProductSummary is the read-only projection of a storefront product that accompanies alerts.
type ProductSummary struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Price  float64  `json:"price"`
	Stock  int      `json:"stock"`
	Images []string `json:"images"`
}
