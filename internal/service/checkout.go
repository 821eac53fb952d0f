package service

import (
	"context"
	"fmt"
	"time"

	"pos-service/internal/cart"
	"pos-service/internal/models"
	"pos-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutState is the register's checkout state machine position.
type CheckoutState string

const (
	StateIdle       CheckoutState = "IDLE"
	StateConfirming CheckoutState = "CONFIRMING"
	StateCommitting CheckoutState = "COMMITTING"
	StateSuccess    CheckoutState = "SUCCESS"
	StateFailed     CheckoutState = "FAILED"
)

const checkoutLockKey = "register:checkout"

// How long a submission's idempotency mark outlives the sale. Long
// enough to cover any operator retry of the same confirmation.
const idempotencyTTL = 24 * time.Hour

// CheckoutResult is returned after a successful commit.
type CheckoutResult struct {
	Sale   *models.Sale      `json:"sale"`
	Items  []models.SaleItem `json:"items"`
	Total  float64           `json:"total"`
	Change float64           `json:"change"`
}

// BeginCheckout enters the confirming state and returns the total to
// collect. Allowed from any state except while a commit is in flight.
func (r *Register) BeginCheckout() (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateCommitting {
		return 0, ErrCheckoutInProgress
	}
	if len(r.cart) == 0 {
		return 0, ErrEmptyCart
	}

	r.state = StateConfirming
	return cart.Total(r.cart), nil
}

// CancelCheckout returns to idle with no side effects. Once the commit
// has started the operation must run to completion and cannot be
// cancelled.
func (r *Register) CancelCheckout() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateCommitting {
		return ErrCheckoutInProgress
	}

	r.state = StateIdle
	return nil
}

// ConfirmSale validates the tendered amount and runs the three-step
// commit: insert the sale, insert its line items, then write each
// product's post-sale stock. The steps are three independent writes with
// no surrounding transaction and no compensating rollback; a failure
// halts the sequence, leaves earlier writes in place and keeps the cart
// so the operator can retry.
//
// idempotencyKey identifies the submission. It is marked in the cache
// right after the sale row lands, so replaying the same submission after
// a mid-sequence failure is rejected instead of inserting a second sale.
// An empty key skips the check.
func (r *Register) ConfirmSale(ctx context.Context, tendered float64, idempotencyKey string) (*CheckoutResult, error) {
	ctx, span := util.StartSpan(ctx, "Register.ConfirmSale")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateCommitting {
		return nil, ErrCheckoutInProgress
	}
	if len(r.cart) == 0 {
		return nil, ErrEmptyCart
	}

	// Total is computed here from the lines, never trusted from a
	// client-held figure.
	total := cart.Total(r.cart)
	if tendered < total {
		r.state = StateConfirming
		util.CartRejectionsTotal.WithLabelValues("insufficient_payment").Inc()
		return nil, ErrInsufficientPayment
	}
	change := tendered - total

	if r.cache != nil && idempotencyKey != "" {
		seen, err := r.cache.CheckIdempotencyKey(ctx, idempotencyKey)
		if err != nil {
			r.logger.Warn("Idempotency check failed, proceeding without it", zap.Error(err))
		} else if seen {
			util.CartRejectionsTotal.WithLabelValues("duplicate_submission").Inc()
			return nil, ErrDuplicateCheckout
		}
	}

	if r.cache != nil {
		acquired, err := r.cache.AcquireLock(ctx, checkoutLockKey, r.lockTTL)
		if err != nil {
			r.logger.Warn("Checkout lock unavailable, relying on in-process guard", zap.Error(err))
		} else if !acquired {
			return nil, ErrCheckoutInProgress
		} else {
			defer func() {
				if err := r.cache.ReleaseLock(context.Background(), checkoutLockKey); err != nil {
					r.logger.Error("Failed to release checkout lock", zap.Error(err))
				}
			}()
		}
	}

	r.state = StateCommitting
	start := time.Now()
	defer func() {
		util.CheckoutLatency.Observe(time.Since(start).Seconds())
	}()

	result, err := r.commit(ctx, total, tendered, change, idempotencyKey)
	if err != nil {
		r.state = StateFailed
		return nil, err
	}

	r.cart = cart.Clear()
	r.state = StateSuccess

	util.SalesCompletedTotal.Inc()
	util.SalesAmountTotal.Add(total)
	r.logger.Info("Sale completed",
		zap.String("sale_id", result.Sale.ID),
		zap.Float64("total", total),
		zap.Float64("change", change))

	r.publishSaleCompleted(ctx, result, tendered)

	// The sale changed real stock, so the cached catalog snapshot is
	// stale. Drop it so list reads see post-sale stock immediately.
	if r.cache != nil {
		if err := r.cache.InvalidateProducts(ctx); err != nil {
			r.logger.Warn("Catalog cache invalidation after sale failed", zap.Error(err))
		}
	}

	// Re-seed the virtual stock so the next sale sees the new real
	// stock. A failed refresh is logged, not fatal: the operator can
	// retry it and the committed sale is already safe.
	if err := r.refreshLocked(ctx); err != nil {
		r.logger.Error("Catalog refresh after sale failed", zap.Error(err))
	}

	return result, nil
}

func (r *Register) commit(ctx context.Context, total, tendered, change float64, idempotencyKey string) (*CheckoutResult, error) {
	sale, err := r.store.InsertSale(ctx, total)
	if err != nil {
		util.SalesFailedTotal.WithLabelValues("sale").Inc()
		return nil, fmt.Errorf("failed to persist sale: %w", err)
	}

	// Mark the submission as soon as the sale row exists. If a later
	// step fails, a retry of the same submission is rejected rather
	// than inserting the sale twice.
	if r.cache != nil && idempotencyKey != "" {
		if err := r.cache.SetIdempotencyKey(ctx, idempotencyKey, sale.ID, idempotencyTTL); err != nil {
			r.logger.Warn("Failed to mark checkout submission", zap.Error(err))
		}
	}

	items := make([]models.SaleItem, 0, len(r.cart))
	for _, line := range r.cart {
		items = append(items, models.SaleItem{
			SaleID:      sale.ID,
			ProductID:   line.Product.ID,
			ProductName: line.Product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   line.Product.Price,
			Subtotal:    line.Subtotal,
		})
	}

	if err := r.store.InsertSaleItems(ctx, items); err != nil {
		util.SalesFailedTotal.WithLabelValues("items").Inc()
		return nil, fmt.Errorf("failed to persist sale items: %w", err)
	}

	// Stock updates run sequentially per line. A failure mid-loop
	// leaves the earlier decrements in place.
	now := time.Now()
	for _, line := range r.cart {
		newStock := r.virtual[line.Product.ID] - line.Quantity
		if err := r.store.UpdateProductStock(ctx, line.Product.ID, newStock, now); err != nil {
			util.SalesFailedTotal.WithLabelValues("stock").Inc()
			return nil, fmt.Errorf("failed to update stock for product %s: %w", line.Product.ID, err)
		}
	}

	return &CheckoutResult{
		Sale:   sale,
		Items:  items,
		Total:  total,
		Change: change,
	}, nil
}

func (r *Register) publishSaleCompleted(ctx context.Context, result *CheckoutResult, tendered float64) {
	if r.events == nil {
		return
	}

	itemData := make([]models.SaleItemData, 0, len(result.Items))
	for _, item := range result.Items {
		itemData = append(itemData, models.SaleItemData{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		})
	}

	event := &models.SaleCompletedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeSaleCompleted,
			Timestamp: time.Now(),
		},
		SaleID:   result.Sale.ID,
		Total:    result.Total,
		Tendered: tendered,
		Change:   result.Change,
		Items:    itemData,
	}

	if err := r.events.PublishSaleCompleted(ctx, event); err != nil {
		r.logger.Error("Failed to publish SaleCompleted event", zap.Error(err))
	}
}

// refreshLocked is Refresh for callers already holding the mutex.
func (r *Register) refreshLocked(ctx context.Context) error {
	products, err := r.store.FetchProducts(ctx)
	if err != nil {
		util.CatalogFetchFailures.Inc()
		return fmt.Errorf("failed to fetch catalog: %w", err)
	}

	r.products = make(map[string]models.Product, len(products))
	for _, p := range products {
		r.products[p.ID] = p
	}
	r.virtual = cart.SeedVirtualStock(products)

	util.CatalogRefreshTotal.Inc()
	return nil
}
