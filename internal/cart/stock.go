package cart

import "pos-service/internal/models"

// VirtualStock maps product id to the quantity available for sale in the
// current register session. It is seeded from real stock at catalog load
// and only ever re-seeded by a refresh; cart operations never decrement
// it. The ceiling lives here, the draw-down lives in the cart.
type VirtualStock map[string]float64

// SeedVirtualStock builds the tracker from the current catalog.
func SeedVirtualStock(products []models.Product) VirtualStock {
	vs := make(VirtualStock, len(products))
	for _, p := range products {
		vs[p.ID] = p.Stock
	}
	return vs
}

// Available answers how much of the product can still be added right
// now: the virtual ceiling minus what the cart already reserves.
func (vs VirtualStock) Available(c Cart, productID string) float64 {
	return vs[productID] - c.QuantityOf(productID)
}

// CanAdd reports whether one more unit step of the product fits under
// the ceiling. Whole-piece items need a full piece available; weight
// items need a full half-kilo step, so fractional leftovers like 0.3 kg
// cannot push the persisted stock below zero at checkout.
func (vs VirtualStock) CanAdd(c Cart, p models.Product) bool {
	return vs.Available(c, p.ID) >= p.QuantityStep()
}

// CanSetQuantity reports whether an absolute quantity edit is allowed.
// The comparison is against the virtual ceiling, not Available, since
// the line being edited already accounts for the current reservation.
func (vs VirtualStock) CanSetQuantity(productID string, newQuantity float64) bool {
	return newQuantity <= vs[productID]
}
