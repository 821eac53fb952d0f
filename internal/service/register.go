package service

import (
	"context"
	"sync"
	"time"

	"pos-service/internal/broker"
	"pos-service/internal/cart"
	"pos-service/internal/models"
	"pos-service/internal/util"

	"go.uber.org/zap"
)

// Register is the single active till. It owns the session state the UI
// used to hold: the cart, the virtual stock snapshot and the checkout
// state machine. One operator per register; the mutex serializes HTTP
// access and doubles as the edit guard while a commit is in flight.
type Register struct {
	store   SaleStore
	cache   RegisterCache
	events  *broker.EventPublisher
	logger  *zap.Logger
	lockTTL time.Duration

	mu       sync.Mutex
	products map[string]models.Product
	virtual  cart.VirtualStock
	cart     cart.Cart
	state    CheckoutState
}

// NewRegister creates a register session. The cache and the event
// publisher are optional; without them the register degrades to
// in-process guards and skips event publishing.
func NewRegister(store SaleStore, cache RegisterCache, events *broker.EventPublisher, lockTTL time.Duration) *Register {
	return &Register{
		store:    store,
		cache:    cache,
		events:   events,
		logger:   util.GetLogger(),
		lockTTL:  lockTTL,
		products: make(map[string]models.Product),
		virtual:  cart.VirtualStock{},
		cart:     cart.Clear(),
		state:    StateIdle,
	}
}

// Refresh re-fetches the catalog and re-seeds the virtual stock. This is
// the only way the virtual ceiling changes. The cart is left alone so a
// refresh mid-session does not lose the operator's work.
func (r *Register) Refresh(ctx context.Context) error {
	ctx, span := util.StartSpan(ctx, "Register.Refresh")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.refreshLocked(ctx); err != nil {
		return err
	}

	r.logger.Info("Catalog refreshed", zap.Int("products", len(r.products)))
	return nil
}

// AddToCart adds one unit step of the product (1 for discrete items,
// 0.5 kg for weight items). Rejected when nothing is available to add.
func (r *Register) AddToCart(productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateCommitting {
		return ErrCheckoutInProgress
	}

	product, ok := r.products[productID]
	if !ok {
		return ErrUnknownProduct
	}

	if !r.virtual.CanAdd(r.cart, product) {
		util.CartRejectionsTotal.WithLabelValues("insufficient_stock").Inc()
		return ErrInsufficientStock
	}

	r.cart = cart.Add(r.cart, product, product.QuantityStep())
	util.CartAddsTotal.Inc()
	return nil
}

// UpdateQuantity sets the absolute quantity for a product's line. Zero
// or negative removes the line. The new quantity is checked against the
// virtual ceiling, not against Available, since the line itself already
// holds the current reservation.
func (r *Register) UpdateQuantity(productID string, newQuantity float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateCommitting {
		return ErrCheckoutInProgress
	}

	if newQuantity > 0 && !r.virtual.CanSetQuantity(productID, newQuantity) {
		util.CartRejectionsTotal.WithLabelValues("exceeds_stock").Inc()
		return ErrQuantityExceedsStock
	}

	r.cart = cart.UpdateQuantity(r.cart, productID, newQuantity)
	return nil
}

// RemoveFromCart drops the product's line unconditionally.
func (r *Register) RemoveFromCart(productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateCommitting {
		return ErrCheckoutInProgress
	}

	r.cart = cart.Remove(r.cart, productID)
	return nil
}

// Cart returns a snapshot of the current cart.
func (r *Register) Cart() cart.Cart {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make(cart.Cart, len(r.cart))
	copy(snapshot, r.cart)
	return snapshot
}

// Total returns the current cart total.
func (r *Register) Total() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cart.Total(r.cart)
}

// AvailableStock answers how much of the product can still be added.
func (r *Register) AvailableStock(productID string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.virtual.Available(r.cart, productID)
}

// State returns the current checkout state.
func (r *Register) State() CheckoutState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}
