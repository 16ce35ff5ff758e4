package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/common"
	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/model"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	sq "github.com/Masterminds/squirrel"
)

// productSummaryColumns returns the product columns that make up a model.ProductSummary, qualified by the
// given table alias.
func productSummaryColumns(alias string) []string {
	return []string{
		alias + ".id",
		alias + ".name",
		alias + ".price",
		alias + ".stock",
		alias + ".images",
	}
}

// productSummaryDest returns the scan destinations for the columns listed by productSummaryColumns.
func productSummaryDest(product *model.ProductSummary) []interface{} {
	return []interface{}{
		&product.ID,
		&product.Name,
		&product.Price,
		&product.Stock,
		pq.Array(&product.Images),
	}
}

// CatalogStore provides read-only access to the storefront's users and products tables.
type CatalogStore struct {
	db *sql.DB
}

// NewCatalogStore returns a new CatalogStore.
func NewCatalogStore(db *sql.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

// GetProduct returns the summary of a single product. A NotFoundError is returned if the product doesn't exist.
func (s *CatalogStore) GetProduct(ctx context.Context, productID string) (*model.ProductSummary, error) {
	wrapMsg := fmt.Sprintf("unable to look up product `%s`", productID)

	// Build the query.
	query, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select(productSummaryColumns("p")...).
		From("products p").
		Where(sq.Eq{"p.id": productID}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Query the database.
	var product model.ProductSummary
	err = s.db.QueryRowContext(ctx, query, args...).Scan(productSummaryDest(&product)...)
	if err == sql.ErrNoRows {
		return nil, common.NewNotFoundError("product `%s` not found", productID)
	}
	if err != nil {
		return nil, unavailable(err, wrapMsg)
	}

	return &product, nil
}

// LowStock lists the active products whose stock is at or below the threshold, lowest stock first.
func (s *CatalogStore) LowStock(ctx context.Context, threshold int) ([]*model.ProductSummary, error) {
	wrapMsg := fmt.Sprintf("unable to list products with stock at or below %d", threshold)

	// Build the query.
	query, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select(productSummaryColumns("p")...).
		From("products p").
		Where(sq.Eq{"p.is_active": true}).
		Where(sq.LtOrEq{"p.stock": threshold}).
		OrderBy("p.stock ASC", "p.name ASC").
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

	products := make([]*model.ProductSummary, 0)
	for rows.Next() {
		var product model.ProductSummary
		if err := rows.Scan(productSummaryDest(&product)...); err != nil {
			return nil, unavailable(err, wrapMsg)
		}
		products = append(products, &product)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(err, wrapMsg)
	}

	return products, nil
}

// GetUserContact returns the email address and name of a user. A NotFoundError is returned if the user
// doesn't exist.
func (s *CatalogStore) GetUserContact(ctx context.Context, userID string) (*model.UserContact, error) {
	wrapMsg := fmt.Sprintf("unable to look up contact details for `%s`", userID)

	// Build the query.
	query, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select("id", "email", "coalesce(first_name, '')", "coalesce(last_name, '')").
		From("users").
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Query the database.
	var user model.UserContact
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName)
	if err == sql.ErrNoRows {
		return nil, common.NewNotFoundError("user `%s` not found", userID)
	}
	if err != nil {
		return nil, unavailable(err, wrapMsg)
	}

	return &user, nil
}
