package service

import (
	"context"
	"fmt"
	"time"

	"pos-service/internal/models"
	"pos-service/internal/util"

	"go.uber.org/zap"
)

// LowStock returns the products at or below their low stock threshold.
// The comparison is inclusive: a product with stock 0 and threshold 0
// counts as low.
func LowStock(products []models.Product) []models.Product {
	low := make([]models.Product, 0)
	for _, p := range products {
		if p.Stock <= p.LowStockThreshold {
			low = append(low, p)
		}
	}
	return low
}

// IsCritical flags urgent restocking for the dashboard. Presentation
// only; no business rule changes at this level.
func IsCritical(p models.Product) bool {
	return p.Stock <= models.CriticalStockLevel
}

// DayRange returns [00:00:00, 23:59:59] of now's day in the given store
// location.
func DayRange(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	from := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	to := time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, 0, loc)
	return from, to
}

// SalesTotal sums sale totals.
func SalesTotal(sales []models.Sale) float64 {
	var total float64
	for _, sale := range sales {
		total += sale.Total
	}
	return total
}

// lowStockDisplayLimit caps the dashboard's low stock list.
const lowStockDisplayLimit = 5

// DashboardService derives summary statistics over the catalog and the
// sales history. Read-only; no state of its own.
type DashboardService struct {
	store        SaleStore
	loc          *time.Location
	historyLimit int
	logger       *zap.Logger
}

// NewDashboardService creates a dashboard service for the store's
// timezone.
func NewDashboardService(store SaleStore, loc *time.Location, historyLimit int) *DashboardService {
	return &DashboardService{
		store:        store,
		loc:          loc,
		historyLimit: historyLimit,
		logger:       util.GetLogger(),
	}
}

// LowStockItem is a low stock product with its urgency flag.
type LowStockItem struct {
	models.Product
	Critical bool `json:"critical"`
}

// Summary is the dashboard payload.
type Summary struct {
	TotalProducts   int            `json:"total_products"`
	LowStockCount   int            `json:"low_stock_count"`
	LowStockItems   []LowStockItem `json:"low_stock_items"`
	TodaySalesTotal float64        `json:"today_sales_total"`
	TodaySalesCount int            `json:"today_sales_count"`
}

// Summary builds today's dashboard. A failed sales read is logged and
// leaves the sales figures at zero rather than blocking the rest.
func (d *DashboardService) Summary(ctx context.Context) (*Summary, error) {
	ctx, span := util.StartSpan(ctx, "DashboardService.Summary")
	defer span.End()

	products, err := d.store.FetchProducts(ctx)
	if err != nil {
		util.CatalogFetchFailures.Inc()
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	low := LowStock(products)
	util.LowStockProducts.Set(float64(len(low)))

	items := make([]LowStockItem, 0, lowStockDisplayLimit)
	for _, p := range low {
		if len(items) == lowStockDisplayLimit {
			break
		}
		items = append(items, LowStockItem{Product: p, Critical: IsCritical(p)})
	}

	summary := &Summary{
		TotalProducts: len(products),
		LowStockCount: len(low),
		LowStockItems: items,
	}

	from, to := DayRange(time.Now(), d.loc)
	sales, err := d.store.FetchSalesBetween(ctx, from, to)
	if err != nil {
		util.CatalogFetchFailures.Inc()
		d.logger.Error("Failed to fetch today's sales", zap.Error(err))
		return summary, nil
	}

	summary.TodaySalesTotal = SalesTotal(sales)
	summary.TodaySalesCount = len(sales)
	return summary, nil
}

// RecentSales lists the latest sales, newest first.
func (d *DashboardService) RecentSales(ctx context.Context, limit int) ([]models.Sale, error) {
	if limit <= 0 {
		limit = d.historyLimit
	}

	sales, err := d.store.FetchSales(ctx, limit)
	if err != nil {
		util.CatalogFetchFailures.Inc()
		return nil, fmt.Errorf("failed to fetch sales: %w", err)
	}
	return sales, nil
}
