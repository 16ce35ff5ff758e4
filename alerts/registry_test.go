package alerts

import (
	"context"
	"database/sql/driver"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/common"
	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var testTime = time.Date(2026, time.March, 4, 10, 30, 0, 0, time.UTC)

// MockStore keeps alerts in memory and enforces one active alert per user, product and kind.
type MockStore struct {
	mu     sync.Mutex
	alerts []*model.InventoryAlert
	nextID int
}

func (s *MockStore) active(userID, productID string, kind model.AlertKind) *model.InventoryAlert {
	for _, alert := range s.alerts {
		if alert.Active && alert.UserID == userID && alert.ProductID == productID && alert.Kind == kind {
			return alert
		}
	}
	return nil
}

func (s *MockStore) FindActive(
	_ context.Context,
	userID, productID string,
	kind model.AlertKind,
) (*model.InventoryAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if alert := s.active(userID, productID, kind); alert != nil {
		copied := *alert
		return &copied, nil
	}
	return nil, common.NewNotFoundError("no active alert")
}

func (s *MockStore) Save(_ context.Context, alert *model.InventoryAlert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active(alert.UserID, alert.ProductID, alert.Kind) != nil {
		return common.NewDuplicateError("active alert exists")
	}
	s.nextID++
	alert.ID = fmt.Sprintf("a-%d", s.nextID)
	alert.Active = true
	alert.CreatedAt = testTime
	copied := *alert
	s.alerts = append(s.alerts, &copied)
	return nil
}

func (s *MockStore) Delete(_ context.Context, userID, alertID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, alert := range s.alerts {
		if alert.ID == alertID && alert.UserID == userID {
			s.alerts = append(s.alerts[:i], s.alerts[i+1:]...)
			return nil
		}
	}
	return common.NewNotFoundError("alert `%s` not found", alertID)
}

func (s *MockStore) ListActive(_ context.Context, userID string) ([]*model.InventoryAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*model.InventoryAlert, 0)
	for _, alert := range s.alerts {
		if alert.Active && alert.UserID == userID {
			copied := *alert
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (s *MockStore) ListActiveForProduct(
	_ context.Context,
	productID string,
	kind model.AlertKind,
) ([]*model.InventoryAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*model.InventoryAlert, 0)
	for _, alert := range s.alerts {
		if alert.Active && alert.ProductID == productID && alert.Kind == kind {
			copied := *alert
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (s *MockStore) Deactivate(_ context.Context, alertID string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, alert := range s.alerts {
		if alert.ID == alertID && alert.Active {
			firedAt := testTime.Add(time.Hour)
			alert.Active = false
			alert.FiredAt = &firedAt
			return firedAt, nil
		}
	}
	return time.Time{}, common.NewNotFoundError("active alert `%s` not found", alertID)
}

func (s *MockStore) Reactivate(_ context.Context, alertID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, alert := range s.alerts {
		if alert.ID == alertID && !alert.Active {
			if s.active(alert.UserID, alert.ProductID, alert.Kind) != nil {
				return common.NewDuplicateError("active alert exists")
			}
			alert.Active = true
			alert.FiredAt = nil
			return nil
		}
	}
	return common.NewNotFoundError("inactive alert `%s` not found", alertID)
}

// MockProducts returns summaries for a fixed set of products.
type MockProducts map[string]*model.ProductSummary

func (p MockProducts) GetProduct(_ context.Context, productID string) (*model.ProductSummary, error) {
	product, ok := p[productID]
	if !ok {
		return nil, common.NewNotFoundError("product `%s` not found", productID)
	}
	return product, nil
}

// MockStockNotifications records saved stock notifications, optionally failing for one user.
type MockStockNotifications struct {
	Saved   []*model.StockNotification
	failFor string
}

func (s *MockStockNotifications) Save(_ context.Context, notification *model.StockNotification) error {
	if notification.UserID == s.failFor {
		return common.NewDependencyUnavailableError(driver.ErrBadConn, "unable to save stock notification")
	}
	notification.ID = fmt.Sprintf("s-%d", len(s.Saved)+1)
	notification.CreatedAt = testTime
	s.Saved = append(s.Saved, notification)
	return nil
}

// createdNotification is a single call to MockCreator.Create.
type createdNotification struct {
	UserID  string
	Kind    model.Kind
	Title   string
	Message string
	Payload map[string]interface{}
}

// MockCreator records the general notifications that it's asked to create.
type MockCreator struct {
	Created []createdNotification
	err     error
}

func (c *MockCreator) Create(
	_ context.Context,
	userID string,
	kind model.Kind,
	title, message string,
	payload map[string]interface{},
) (*model.Notification, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.Created = append(c.Created, createdNotification{userID, kind, title, message, payload})
	return &model.Notification{ID: "n-1", UserID: userID, Kind: kind, Title: title, Message: message}, nil
}

type testRegistry struct {
	*Registry
	store         *MockStore
	notifications *MockStockNotifications
	creator       *MockCreator
}

func newTestRegistry() *testRegistry {
	products := MockProducts{
		"kettle": {ID: "kettle", Name: "Copper Kettle", Price: 49.99, Stock: 3, Images: []string{"kettle.png"}},
		"mug":    {ID: "mug", Name: "Stoneware Mug", Price: 12.5, Stock: 0},
	}
	tr := &testRegistry{
		store:         &MockStore{},
		notifications: &MockStockNotifications{},
		creator:       &MockCreator{},
	}
	tr.Registry = NewRegistry(tr.store, products, tr.notifications, tr.creator)
	return tr
}

func TestSubscribe(t *testing.T) {
	assert := assert.New(t)

	tr := newTestRegistry()
	alert, err := tr.Subscribe(context.Background(), "u1", "kettle", model.AlertLowStock, 5)
	require.NoError(t, err)

	assert.NotEmpty(alert.ID)
	assert.True(alert.Active)
	assert.Equal(5, alert.Threshold)
	assert.Equal(model.AlertLowStock, alert.Kind)
}

func TestSubscribeMissingProduct(t *testing.T) {
	tr := newTestRegistry()
	_, err := tr.Subscribe(context.Background(), "u1", "toaster", model.AlertBackInStock, 0)
	assert.True(t, common.IsNotFound(err))
	assert.Empty(t, tr.store.alerts)
}

func TestSubscribeValidation(t *testing.T) {
	tr := newTestRegistry()

	_, err := tr.Subscribe(context.Background(), "u1", "kettle", model.AlertKind("PRICE"), 0)
	assert.True(t, common.IsValidation(err))

	_, err = tr.Subscribe(context.Background(), "u1", "kettle", model.AlertLowStock, -1)
	assert.True(t, common.IsValidation(err))
}

func TestSubscribeDuplicate(t *testing.T) {
	tr := newTestRegistry()
	ctx := context.Background()

	_, err := tr.Subscribe(ctx, "u1", "kettle", model.AlertLowStock, 5)
	require.NoError(t, err)

	_, err = tr.Subscribe(ctx, "u1", "kettle", model.AlertLowStock, 2)
	assert.True(t, common.IsDuplicate(err))

	// Other kinds and other users are independent.
	_, err = tr.Subscribe(ctx, "u1", "kettle", model.AlertOutOfStock, 0)
	assert.NoError(t, err)
	_, err = tr.Subscribe(ctx, "u2", "kettle", model.AlertLowStock, 5)
	assert.NoError(t, err)
}

func TestUnsubscribeOwnership(t *testing.T) {
	tr := newTestRegistry()
	ctx := context.Background()

	alert, err := tr.Subscribe(ctx, "u1", "kettle", model.AlertLowStock, 5)
	require.NoError(t, err)

	err = tr.Unsubscribe(ctx, "u2", alert.ID)
	assert.True(t, common.IsNotFound(err))

	require.NoError(t, tr.Unsubscribe(ctx, "u1", alert.ID))
	alerts, err := tr.ListActive(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestSubscribeUnsubscribeCycle(t *testing.T) {
	kinds := []model.AlertKind{model.AlertLowStock, model.AlertOutOfStock, model.AlertBackInStock}

	rapid.Check(t, func(t *rapid.T) {
		tr := newTestRegistry()
		ctx := context.Background()

		userID := rapid.SampledFrom([]string{"u1", "u2", "u3"}).Draw(t, "user")
		productID := rapid.SampledFrom([]string{"kettle", "mug"}).Draw(t, "product")
		kind := rapid.SampledFrom(kinds).Draw(t, "kind")
		cycles := rapid.IntRange(1, 5).Draw(t, "cycles")

		for i := 0; i < cycles; i++ {
			alert, err := tr.Subscribe(ctx, userID, productID, kind, rapid.IntRange(0, 20).Draw(t, "threshold"))
			if err != nil {
				t.Fatalf("subscribe %d failed: %s", i, err)
			}
			if _, err := tr.Subscribe(ctx, userID, productID, kind, 1); !common.IsDuplicate(err) {
				t.Fatalf("expected a duplicate error, got %v", err)
			}
			if err := tr.Unsubscribe(ctx, userID, alert.ID); err != nil {
				t.Fatalf("unsubscribe %d failed: %s", i, err)
			}
		}
	})
}

func TestFireLowStock(t *testing.T) {
	assert := assert.New(t)

	tr := newTestRegistry()
	ctx := context.Background()

	_, err := tr.Subscribe(ctx, "u1", "kettle", model.AlertLowStock, 5)
	require.NoError(t, err)
	_, err = tr.Subscribe(ctx, "u2", "kettle", model.AlertLowStock, 2)
	require.NoError(t, err)

	delivered, err := tr.Fire(ctx, "kettle", model.AlertLowStock, 3)
	require.NoError(t, err)

	require.Len(t, delivered, 1, "only the alert whose threshold was reached should fire")
	assert.Equal("u1", delivered[0].UserID)
	assert.Equal("Low Stock Alert - Copper Kettle", delivered[0].Title)
	assert.Equal(model.AlertLowStock, delivered[0].Kind)
	assert.Equal("Copper Kettle", delivered[0].Product.Name)

	require.Len(t, tr.creator.Created, 1)
	assert.Equal(model.KindLowStockAlert, tr.creator.Created[0].Kind)
	assert.Equal("kettle", tr.creator.Created[0].Payload["productId"])

	// The fired alert is no longer active; the other one still is.
	u1Alerts, err := tr.ListActive(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(u1Alerts)
	u2Alerts, err := tr.ListActive(ctx, "u2")
	require.NoError(t, err)
	assert.Len(u2Alerts, 1)
}

func TestFireOnlyOnce(t *testing.T) {
	tr := newTestRegistry()
	ctx := context.Background()

	_, err := tr.Subscribe(ctx, "u1", "mug", model.AlertBackInStock, 0)
	require.NoError(t, err)

	first, err := tr.Fire(ctx, "mug", model.AlertBackInStock, 12)
	require.NoError(t, err)
	assert.Len(t, first, 1)

	second, err := tr.Fire(ctx, "mug", model.AlertBackInStock, 12)
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.Len(t, tr.creator.Created, 1)
}

func TestFireAfterRefire(t *testing.T) {
	tr := newTestRegistry()
	ctx := context.Background()

	_, err := tr.Subscribe(ctx, "u1", "mug", model.AlertOutOfStock, 0)
	require.NoError(t, err)
	_, err = tr.Fire(ctx, "mug", model.AlertOutOfStock, 0)
	require.NoError(t, err)

	// A fired alert doesn't block a new subscription.
	_, err = tr.Subscribe(ctx, "u1", "mug", model.AlertOutOfStock, 0)
	assert.NoError(t, err)
}

func TestFireIsolatesFailures(t *testing.T) {
	tr := newTestRegistry()
	ctx := context.Background()
	tr.notifications.failFor = "u2"

	for _, userID := range []string{"u1", "u2", "u3"} {
		_, err := tr.Subscribe(ctx, userID, "mug", model.AlertBackInStock, 0)
		require.NoError(t, err)
	}

	delivered, err := tr.Fire(ctx, "mug", model.AlertBackInStock, 4)
	require.NoError(t, err)

	var userIDs []string
	for _, notification := range delivered {
		userIDs = append(userIDs, notification.UserID)
	}
	assert.Equal(t, []string{"u1", "u3"}, userIDs)

	// The alert whose delivery failed is still active and fires on the next stock event.
	u2Alerts, err := tr.ListActive(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, u2Alerts, 1)
	assert.Nil(t, u2Alerts[0].FiredAt)

	tr.notifications.failFor = ""
	retried, err := tr.Fire(ctx, "mug", model.AlertBackInStock, 4)
	require.NoError(t, err)
	require.Len(t, retried, 1)
	assert.Equal(t, "u2", retried[0].UserID)
}

func TestFireKeepsStockNotificationWhenCreateFails(t *testing.T) {
	tr := newTestRegistry()
	ctx := context.Background()
	tr.creator.err = common.NewDependencyUnavailableError(driver.ErrBadConn, "store down")

	_, err := tr.Subscribe(ctx, "u1", "mug", model.AlertBackInStock, 0)
	require.NoError(t, err)

	delivered, err := tr.Fire(ctx, "mug", model.AlertBackInStock, 4)
	require.NoError(t, err)
	assert.Len(t, delivered, 1)
	assert.Len(t, tr.notifications.Saved, 1)
}

func TestFireMissingProduct(t *testing.T) {
	tr := newTestRegistry()
	_, err := tr.Fire(context.Background(), "toaster", model.AlertOutOfStock, 0)
	assert.True(t, common.IsNotFound(err))
}
