package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pos-service/internal/models"
	"pos-service/internal/redisclient"
	"pos-service/internal/store"
	"pos-service/internal/util"

	"go.uber.org/zap"
)

// CatalogService handles product management: listing with search,
// creation with threshold defaults, deletion and direct stock edits.
// Reads go through the Redis snapshot when it is warm.
type CatalogService struct {
	store    ProductStore
	redis    *redisclient.Client
	logger   *zap.Logger
	cacheTTL time.Duration
}

// NewCatalogService creates a new catalog service. Redis is optional.
func NewCatalogService(store ProductStore, redis *redisclient.Client, cacheTTL time.Duration) *CatalogService {
	return &CatalogService{
		store:    store,
		redis:    redis,
		logger:   util.GetLogger(),
		cacheTTL: cacheTTL,
	}
}

// Products lists the catalog sorted by name, optionally filtered by a
// case-insensitive name/category substring.
func (cs *CatalogService) Products(ctx context.Context, query string) ([]models.Product, error) {
	products, err := cs.cachedProducts(ctx)
	if err != nil {
		util.CatalogFetchFailures.Inc()
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	if query == "" {
		return products, nil
	}

	q := strings.ToLower(query)
	filtered := make([]models.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Category), q) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func (cs *CatalogService) cachedProducts(ctx context.Context) ([]models.Product, error) {
	if cs.redis != nil {
		cached, err := cs.redis.GetCachedProducts(ctx)
		if err != nil {
			cs.logger.Warn("Catalog cache read failed, falling back to DB", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	products, err := cs.store.FetchProducts(ctx)
	if err != nil {
		return nil, err
	}

	if cs.redis != nil {
		if err := cs.redis.CacheProducts(ctx, products, cs.cacheTTL); err != nil {
			cs.logger.Warn("Catalog cache write failed", zap.Error(err))
		}
	}
	return products, nil
}

// CreateProductInput carries the fields of a new product. A nil
// threshold takes the default for the unit: 5 pieces or 1 kg.
type CreateProductInput struct {
	Name              string   `json:"name" binding:"required"`
	Price             float64  `json:"price"`
	Stock             float64  `json:"stock"`
	Unit              string   `json:"unit"`
	Category          string   `json:"category"`
	LowStockThreshold *float64 `json:"low_stock_threshold"`
}

// Create validates and persists a new product.
func (cs *CatalogService) Create(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if input.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	if input.Stock < 0 {
		return nil, fmt.Errorf("%w: stock must not be negative", ErrInvalidProduct)
	}

	unit := input.Unit
	if unit == "" {
		unit = models.UnitPiece
	}
	if unit != models.UnitPiece && unit != models.UnitKg {
		return nil, fmt.Errorf("%w: unknown unit %q", ErrInvalidProduct, input.Unit)
	}

	threshold := models.DefaultThreshold(unit)
	if input.LowStockThreshold != nil {
		if *input.LowStockThreshold < 0 {
			return nil, fmt.Errorf("%w: threshold must not be negative", ErrInvalidProduct)
		}
		threshold = *input.LowStockThreshold
	}

	product := &models.Product{
		Name:              strings.TrimSpace(input.Name),
		Price:             input.Price,
		Stock:             input.Stock,
		Unit:              unit,
		Category:          strings.TrimSpace(input.Category),
		LowStockThreshold: threshold,
	}

	if err := cs.store.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	cs.invalidate(ctx)
	cs.logger.Info("Product created",
		zap.String("product_id", product.ID),
		zap.String("name", product.Name))
	return product, nil
}

// Delete removes a product from the catalog.
func (cs *CatalogService) Delete(ctx context.Context, id string) error {
	if err := cs.store.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrUnknownProduct, id)
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	cs.invalidate(ctx)
	cs.logger.Info("Product deleted", zap.String("product_id", id))
	return nil
}

// SetStock writes a directly edited stock level (restock or correction).
func (cs *CatalogService) SetStock(ctx context.Context, id string, stock float64) (*models.Product, error) {
	if stock < 0 {
		return nil, fmt.Errorf("%w: stock must not be negative", ErrInvalidProduct)
	}

	// Only a missing row maps to the validation error; an unreachable
	// store must surface as a persistence failure, not a 404.
	if _, err := cs.store.GetProductByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, id)
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	if err := cs.store.UpdateProductStock(ctx, id, stock, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}

	cs.invalidate(ctx)
	return cs.store.GetProductByID(ctx, id)
}

func (cs *CatalogService) invalidate(ctx context.Context) {
	if cs.redis == nil {
		return
	}
	if err := cs.redis.InvalidateProducts(ctx); err != nil {
		cs.logger.Warn("Catalog cache invalidation failed", zap.Error(err))
	}
}
