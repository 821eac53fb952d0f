package service

import (
	"context"
	"time"

	"pos-service/internal/models"
)

// SaleStore is the narrow persistence port the register and checkout
// coordinator run against. Keeping it this small lets the whole cart and
// commit flow run under test with an in-memory fake.
type SaleStore interface {
	FetchProducts(ctx context.Context) ([]models.Product, error)
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
	InsertSale(ctx context.Context, total float64) (*models.Sale, error)
	InsertSaleItems(ctx context.Context, items []models.SaleItem) error
	UpdateProductStock(ctx context.Context, productID string, newStock float64, updatedAt time.Time) error
	FetchSales(ctx context.Context, limit int) ([]models.Sale, error)
	FetchSalesBetween(ctx context.Context, from, to time.Time) ([]models.Sale, error)
}

// RegisterCache is the register's Redis surface: the cross-process
// commit lock, the submission idempotency marks and invalidation of the
// cached catalog snapshot. *redisclient.Client implements it.
type RegisterCache interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key string) error
	SetIdempotencyKey(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	CheckIdempotencyKey(ctx context.Context, key string) (bool, error)
	InvalidateProducts(ctx context.Context) error
}

// ProductStore extends the port with catalog management used by the
// inventory endpoints.
type ProductStore interface {
	FetchProducts(ctx context.Context) ([]models.Product, error)
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
	UpdateProductStock(ctx context.Context, productID string, newStock float64, updatedAt time.Time) error
}
