package model

import "time"

// PreferenceField identifies one of the boolean toggles in a user's notification preferences.
type PreferenceField int

// The preference toggles.
const (
	FieldEmailNotifications PreferenceField = iota
	FieldPushNotifications
	FieldOrderUpdates
	FieldPriceDrops
	FieldNewArrivals
	FieldStockAlerts
	FieldMarketingEmails
)

// PreferenceFields lists every preference toggle.
func PreferenceFields() []PreferenceField {
	return []PreferenceField{
		FieldEmailNotifications,
		FieldPushNotifications,
		FieldOrderUpdates,
		FieldPriceDrops,
		FieldNewArrivals,
		FieldStockAlerts,
		FieldMarketingEmails,
	}
}

// Preferences represents the notification preferences for a single user.
type Preferences struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"userId"`
	EmailNotifications bool      `json:"emailNotifications"`
	PushNotifications  bool      `json:"pushNotifications"`
	OrderUpdates       bool      `json:"orderUpdates"`
	PriceDrops         bool      `json:"priceDrops"`
	NewArrivals        bool      `json:"newArrivals"`
	StockAlerts        bool      `json:"stockAlerts"`
	MarketingEmails    bool      `json:"marketingEmails"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// DefaultPreferences returns the built-in preference defaults: every channel is on except marketing email.
func DefaultPreferences() Preferences {
	return Preferences{
		EmailNotifications: true,
		PushNotifications:  true,
		OrderUpdates:       true,
		PriceDrops:         true,
		NewArrivals:        true,
		StockAlerts:        true,
		MarketingEmails:    false,
	}
}

// Field returns the value of a single preference toggle.
func (p Preferences) Field(field PreferenceField) bool {
	switch field {
	case FieldEmailNotifications:
		return p.EmailNotifications
	case FieldPushNotifications:
		return p.PushNotifications
	case FieldOrderUpdates:
		return p.OrderUpdates
	case FieldPriceDrops:
		return p.PriceDrops
	case FieldNewArrivals:
		return p.NewArrivals
	case FieldStockAlerts:
		return p.StockAlerts
	case FieldMarketingEmails:
		return p.MarketingEmails
	}
	return false
}

// SetField sets the value of a single preference toggle.
func (p *Preferences) SetField(field PreferenceField, value bool) {
	switch field {
	case FieldEmailNotifications:
		p.EmailNotifications = value
	case FieldPushNotifications:
		p.PushNotifications = value
	case FieldOrderUpdates:
		p.OrderUpdates = value
	case FieldPriceDrops:
		p.PriceDrops = value
	case FieldNewArrivals:
		p.NewArrivals = value
	case FieldStockAlerts:
		p.StockAlerts = value
	case FieldMarketingEmails:
		p.MarketingEmails = value
	}
}

// ShouldEmail determines whether a notification of the given kind should also be sent by email. The master
// switch has to be on, and so does the toggle that gates the kind. Kinds without a gating toggle are sent.
func (p Preferences) ShouldEmail(kind Kind) bool {
	if !p.EmailNotifications {
		return false
	}
	field, ok := kind.GatingField()
	if !ok {
		return true
	}
	return p.Field(field)
}

// PreferenceUpdate is a partial update to a user's preferences. Nil fields are left untouched.
type PreferenceUpdate struct {
	EmailNotifications *bool `json:"emailNotifications,omitempty"`
	PushNotifications  *bool `json:"pushNotifications,omitempty"`
	OrderUpdates       *bool `json:"orderUpdates,omitempty"`
	PriceDrops         *bool `json:"priceDrops,omitempty"`
	NewArrivals        *bool `json:"newArrivals,omitempty"`
	StockAlerts        *bool `json:"stockAlerts,omitempty"`
	MarketingEmails    *bool `json:"marketingEmails,omitempty"`
}

// Supplied returns the toggles that were explicitly supplied in the update.
func (u PreferenceUpdate) Supplied() map[PreferenceField]bool {
	supplied := make(map[PreferenceField]bool)
	add := func(field PreferenceField, value *bool) {
		if value != nil {
			supplied[field] = *value
		}
	}
	add(FieldEmailNotifications, u.EmailNotifications)
	add(FieldPushNotifications, u.PushNotifications)
	add(FieldOrderUpdates, u.OrderUpdates)
	add(FieldPriceDrops, u.PriceDrops)
	add(FieldNewArrivals, u.NewArrivals)
	add(FieldStockAlerts, u.StockAlerts)
	add(FieldMarketingEmails, u.MarketingEmails)
	return supplied
}

// ApplyTo returns a copy of the preferences with the supplied fields overwritten.
func (u PreferenceUpdate) ApplyTo(p Preferences) Preferences {
	for field, value := range u.Supplied() {
		p.SetField(field, value)
	}
	return p
}
