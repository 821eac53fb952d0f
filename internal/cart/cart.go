package cart

import "pos-service/internal/models"

// Line is one cart entry. The product is held by value so the line keeps
// the price it was added with until the next quantity change recomputes
// the subtotal.
type Line struct {
	Product  models.Product `json:"product"`
	Quantity float64        `json:"quantity"`
	Subtotal float64        `json:"subtotal"`
}

// Cart is an ordered sequence of lines, at most one per product.
// Insertion order is preserved for stable display.
type Cart []Line

// All functions here are pure: they return a new cart value and never
// mutate the input. Stock and quantity legality is the caller's job,
// checked against the virtual stock tracker before calling in.

// Add merges quantity into an existing line for the product or appends a
// new one. The subtotal is recomputed from the given product's price, so
// a catalog price change takes effect on the next add.
func Add(c Cart, p models.Product, quantity float64) Cart {
	for i, line := range c {
		if line.Product.ID != p.ID {
			continue
		}
		updated := make(Cart, len(c))
		copy(updated, c)
		newQty := line.Quantity + quantity
		updated[i] = Line{
			Product:  p,
			Quantity: newQty,
			Subtotal: newQty * p.Price,
		}
		return updated
	}

	updated := make(Cart, len(c), len(c)+1)
	copy(updated, c)
	return append(updated, Line{
		Product:  p,
		Quantity: quantity,
		Subtotal: quantity * p.Price,
	})
}

// UpdateQuantity sets (not increments) the quantity of the product's
// line. A quantity of zero or less removes the line. Unknown product ids
// leave the cart unchanged.
func UpdateQuantity(c Cart, productID string, newQuantity float64) Cart {
	if newQuantity <= 0 {
		return Remove(c, productID)
	}

	updated := make(Cart, len(c))
	copy(updated, c)
	for i, line := range updated {
		if line.Product.ID == productID {
			updated[i].Quantity = newQuantity
			updated[i].Subtotal = newQuantity * line.Product.Price
		}
	}
	return updated
}

// Remove drops the product's line unconditionally.
func Remove(c Cart, productID string) Cart {
	updated := make(Cart, 0, len(c))
	for _, line := range c {
		if line.Product.ID != productID {
			updated = append(updated, line)
		}
	}
	return updated
}

// Total sums the line subtotals. Zero for an empty cart.
func Total(c Cart) float64 {
	var total float64
	for _, line := range c {
		total += line.Subtotal
	}
	return total
}

// Clear returns an empty cart.
func Clear() Cart {
	return Cart{}
}

// QuantityOf returns the quantity of the product currently in the cart,
// zero if absent.
func (c Cart) QuantityOf(productID string) float64 {
	for _, line := range c {
		if line.Product.ID == productID {
			return line.Quantity
		}
	}
	return 0
}

// Find returns the line for the product, if present.
func (c Cart) Find(productID string) (Line, bool) {
	for _, line := range c {
		if line.Product.ID == productID {
			return line, true
		}
	}
	return Line{}, false
}
