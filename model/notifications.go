package model

import "time"

// Notification represents a single in-app notification owned by a user.
type Notification struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"userId"`
	Kind      Kind                   `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Payload   map[string]interface{} `json:"data,omitempty"`
	Read      bool                   `json:"read"`
	Emailed   bool                   `json:"emailed"`
	CreatedAt time.Time              `json:"createdAt"`
}

// UserContact is the read-only projection of a storefront user that is needed to send email.
type UserContact struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// DisplayName returns the name used to greet the user in email.
func (u UserContact) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return "Customer"
}
