package inbox

import (
	"context"

	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/common"
	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/model"
	"github.com/pkg/errors"
)

// DefaultLowStockThreshold is the stock level used by LowStock when no threshold is given.
const DefaultLowStockThreshold = 10

// Catalog lists storefront products that are running low.
type Catalog interface {
	LowStock(ctx context.Context, threshold int) ([]*model.ProductSummary, error)
}

// StockInbox is the inbox for stock notifications, which also exposes the low-stock product listing.
type StockInbox struct {
	*Inbox[*model.StockNotification]
	catalog Catalog
}

// NewStockInbox returns a new stock notification inbox.
func NewStockInbox(collection Collection[*model.StockNotification], catalog Catalog, maxPageSize int) *StockInbox {
	return &StockInbox{
		Inbox:   New("stock notifications", collection, maxPageSize),
		catalog: catalog,
	}
}

// LowStock lists the active products whose stock is at or below the threshold, lowest stock first. A nil
// threshold uses DefaultLowStockThreshold.
func (s *StockInbox) LowStock(ctx context.Context, threshold *int) ([]*model.ProductSummary, error) {
	ctx, end := s.start(ctx, "LowStock")
	defer end()

	limit := DefaultLowStockThreshold
	if threshold != nil {
		limit = *threshold
	}
	if limit < 0 {
		return nil, common.NewValidationError("the stock threshold must not be negative: %d", limit)
	}

	products, err := s.catalog.LowStock(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "unable to list low-stock products")
	}
	return products, nil
}
