package notifier

import (
	"context"
	"database/sql/driver"
	"fmt"
	"sync"

	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/common"
	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/model"
)

// MockPreferences returns fixed preferences for every user, remembering who asked.
type MockPreferences struct {
	mu        sync.Mutex
	prefs     map[string]model.Preferences
	Requested []string
}

// NewMockPreferences returns preferences that use the built-in defaults for unknown users.
func NewMockPreferences() *MockPreferences {
	return &MockPreferences{prefs: make(map[string]model.Preferences)}
}

// Set replaces the preferences for a user.
func (p *MockPreferences) Set(userID string, prefs model.Preferences) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prefs.UserID = userID
	p.prefs[userID] = prefs
}

func (p *MockPreferences) GetOrCreate(_ context.Context, userID string) (*model.Preferences, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Requested = append(p.Requested, userID)
	prefs, ok := p.prefs[userID]
	if !ok {
		prefs = model.DefaultPreferences()
		prefs.UserID = userID
		p.prefs[userID] = prefs
	}
	return &prefs, nil
}

// MockNotificationStore keeps notifications in memory and rejects writes for selected users.
type MockNotificationStore struct {
	mu           sync.Mutex
	Saved        []*model.Notification
	EmailedIDs   []string
	failFor      map[string]bool
	markEmailErr error
}

// NewMockNotificationStore returns a store that rejects writes for the given users.
func NewMockNotificationStore(failFor ...string) *MockNotificationStore {
	s := &MockNotificationStore{failFor: make(map[string]bool)}
	for _, userID := range failFor {
		s.failFor[userID] = true
	}
	return s
}

func (s *MockNotificationStore) Save(_ context.Context, notification *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor[notification.UserID] {
		return common.NewDependencyUnavailableError(driver.ErrBadConn, "unable to save notification")
	}
	notification.ID = fmt.Sprintf("n-%d", len(s.Saved)+1)
	copied := *notification
	s.Saved = append(s.Saved, &copied)
	return nil
}

func (s *MockNotificationStore) MarkEmailed(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markEmailErr != nil {
		return s.markEmailErr
	}
	s.EmailedIDs = append(s.EmailedIDs, id)
	return nil
}

// MockContacts returns a contact for every user.
type MockContacts struct {
	err error
}

func (c *MockContacts) GetUserContact(_ context.Context, userID string) (*model.UserContact, error) {
	if c.err != nil {
		return nil, c.err
	}
	return &model.UserContact{ID: userID, Email: userID + "@example.com", FirstName: "Ada", LastName: "Lovelace"}, nil
}

// SentEmail is a single email handed to the MockSender.
type SentEmail struct {
	To      string
	Subject string
	HTML    string
}

// MockSender records the emails that it's asked to send.
type MockSender struct {
	mu   sync.Mutex
	Sent []SentEmail
	err  error
}

func (s *MockSender) Send(_ context.Context, to, subject, html string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.Sent = append(s.Sent, SentEmail{To: to, Subject: subject, HTML: html})
	return nil
}
