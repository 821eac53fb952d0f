package store

import (
	"context"
	"time"

	"pos-service/internal/models"
)

// InsertSale persists a new sale and returns it with the generated id
// and created timestamp. The total comes from the checkout coordinator,
// computed from the cart lines at commit time.
func (s *Store) InsertSale(ctx context.Context, total float64) (*models.Sale, error) {
	var sale models.Sale
	query := `
		INSERT INTO sales (total)
		VALUES ($1)
		RETURNING id, total, created_at`

	if err := s.db.GetContext(ctx, &sale, query, total); err != nil {
		return nil, err
	}
	return &sale, nil
}

// InsertSaleItems persists the denormalized line items of a sale
func (s *Store) InsertSaleItems(ctx context.Context, items []models.SaleItem) error {
	query := `
		INSERT INTO sale_items (sale_id, product_id, product_name, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	for i := range items {
		item := &items[i]
		err := s.db.QueryRowxContext(ctx, query,
			item.SaleID, item.ProductID, item.ProductName,
			item.Quantity, item.UnitPrice, item.Subtotal,
		).Scan(&item.ID, &item.CreatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

// FetchSales retrieves recent sales, newest first
func (s *Store) FetchSales(ctx context.Context, limit int) ([]models.Sale, error) {
	var sales []models.Sale
	err := s.db.SelectContext(ctx, &sales,
		"SELECT * FROM sales ORDER BY created_at DESC LIMIT $1", limit)
	return sales, err
}

// FetchSalesBetween retrieves sales created within [from, to], used for
// the dashboard's today aggregation
func (s *Store) FetchSalesBetween(ctx context.Context, from, to time.Time) ([]models.Sale, error) {
	var sales []models.Sale
	err := s.db.SelectContext(ctx, &sales,
		"SELECT * FROM sales WHERE created_at >= $1 AND created_at <= $2 ORDER BY created_at DESC",
		from, to)
	return sales, err
}
