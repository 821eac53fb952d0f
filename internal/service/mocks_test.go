package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"pos-service/internal/models"
	"pos-service/internal/store"
)

var errStoreDown = errors.New("storage unavailable")

// fakeStore is an in-memory SaleStore/ProductStore with per-step failure
// injection for exercising the checkout's partial-failure semantics.
type fakeStore struct {
	mu        sync.Mutex
	products  []models.Product
	sales     []models.Sale
	saleItems []models.SaleItem
	nextID    int

	failFetchProducts bool
	failFetchSales    bool
	failGetProduct    bool
	failInsertSale    bool
	failInsertItems   bool
	failStockAfter    int // fail the nth stock update (1-based); 0 = never
	stockUpdates      int
}

func newFakeStore(products ...models.Product) *fakeStore {
	return &fakeStore{products: products}
}

func (f *fakeStore) FetchProducts(ctx context.Context) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFetchProducts {
		return nil, errStoreDown
	}
	out := make([]models.Product, len(f.products))
	copy(out, f.products)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeStore) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGetProduct {
		return nil, errStoreDown
	}
	for i := range f.products {
		if f.products[i].ID == id {
			p := f.products[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: product %s", store.ErrNotFound, id)
}

func (f *fakeStore) CreateProduct(ctx context.Context, product *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	product.ID = fmt.Sprintf("product-%d", f.nextID)
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	f.products = append(f.products, *product)
	return nil
}

func (f *fakeStore) DeleteProduct(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.products {
		if f.products[i].ID == id {
			f.products = append(f.products[:i], f.products[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: product %s", store.ErrNotFound, id)
}

func (f *fakeStore) InsertSale(ctx context.Context, total float64) (*models.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInsertSale {
		return nil, errStoreDown
	}
	f.nextID++
	sale := models.Sale{
		ID:        fmt.Sprintf("sale-%d", f.nextID),
		Total:     total,
		CreatedAt: time.Now(),
	}
	f.sales = append(f.sales, sale)
	return &sale, nil
}

func (f *fakeStore) InsertSaleItems(ctx context.Context, items []models.SaleItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInsertItems {
		return errStoreDown
	}
	for i := range items {
		f.nextID++
		items[i].ID = fmt.Sprintf("item-%d", f.nextID)
		items[i].CreatedAt = time.Now()
		f.saleItems = append(f.saleItems, items[i])
	}
	return nil
}

func (f *fakeStore) UpdateProductStock(ctx context.Context, productID string, newStock float64, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stockUpdates++
	if f.failStockAfter > 0 && f.stockUpdates >= f.failStockAfter {
		return errStoreDown
	}
	for i := range f.products {
		if f.products[i].ID == productID {
			f.products[i].Stock = newStock
			f.products[i].UpdatedAt = updatedAt
			return nil
		}
	}
	return fmt.Errorf("product not found: %s", productID)
}

func (f *fakeStore) FetchSales(ctx context.Context, limit int) ([]models.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Sale, len(f.sales))
	copy(out, f.sales)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) FetchSalesBetween(ctx context.Context, from, to time.Time) ([]models.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFetchSales {
		return nil, errStoreDown
	}
	var out []models.Sale
	for _, sale := range f.sales {
		if !sale.CreatedAt.Before(from) && !sale.CreatedAt.After(to) {
			out = append(out, sale)
		}
	}
	return out, nil
}

// fakeGuard is an in-memory RegisterCache covering the checkout lock,
// the submission idempotency marks and catalog invalidation.
type fakeGuard struct {
	mu            sync.Mutex
	locks         map[string]bool
	submissions   map[string]interface{}
	invalidations int
}

func newFakeGuard() *fakeGuard {
	return &fakeGuard{
		locks:       make(map[string]bool),
		submissions: make(map[string]interface{}),
	}
}

func (g *fakeGuard) AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.locks[key] {
		return false, nil
	}
	g.locks[key] = true
	return true, nil
}

func (g *fakeGuard) ReleaseLock(ctx context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.locks, key)
	return nil
}

func (g *fakeGuard) SetIdempotencyKey(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.submissions[key] = value
	return nil
}

func (g *fakeGuard) CheckIdempotencyKey(ctx context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.submissions[key]
	return ok, nil
}

func (g *fakeGuard) InvalidateProducts(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.invalidations++
	return nil
}

func (g *fakeGuard) invalidated() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.invalidations
}

func (f *fakeStore) productStock(id string) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.ID == id {
			return p.Stock
		}
	}
	return -1
}
