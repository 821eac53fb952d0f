package models

import "time"

// Measurement units for sellable items. Discrete items sell in whole
// pieces, weight items in half-kilo steps.
const (
	UnitPiece = "unit"
	UnitKg    = "kg"
)

// Default low stock thresholds per unit kind.
const (
	DefaultThresholdPiece = 5.0
	DefaultThresholdKg    = 1.0
)

// Stock level at or below which a product is flagged as critical on the
// dashboard. Presentation urgency only, no business rule depends on it.
const CriticalStockLevel = 2.0

// Product represents a sellable item in the catalog
type Product struct {
	ID                string    `db:"id" json:"id"`
	Name              string    `db:"name" json:"name"`
	Price             float64   `db:"price" json:"price"`
	Stock             float64   `db:"stock" json:"stock"`
	Unit              string    `db:"unit" json:"unit"`
	Category          string    `db:"category" json:"category,omitempty"`
	LowStockThreshold float64   `db:"low_stock_threshold" json:"low_stock_threshold"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// QuantityStep returns the increment used when the product is added to
// or stepped up in the cart.
func (p Product) QuantityStep() float64 {
	if p.Unit == UnitKg {
		return 0.5
	}
	return 1
}

// DefaultThreshold returns the low stock threshold used when none is
// given at creation time.
func DefaultThreshold(unit string) float64 {
	if unit == UnitKg {
		return DefaultThresholdKg
	}
	return DefaultThresholdPiece
}

// Sale represents a completed sale
type Sale struct {
	ID        string    `db:"id" json:"id"`
	Total     float64   `db:"total" json:"total"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SaleItem represents one line of a completed sale. Product name and
// unit price are snapshots taken at sale time so history stays stable
// when the catalog changes later.
type SaleItem struct {
	ID          string    `db:"id" json:"id"`
	SaleID      string    `db:"sale_id" json:"sale_id"`
	ProductID   string    `db:"product_id" json:"product_id"`
	ProductName string    `db:"product_name" json:"product_name"`
	Quantity    float64   `db:"quantity" json:"quantity"`
	UnitPrice   float64   `db:"unit_price" json:"unit_price"`
	Subtotal    float64   `db:"subtotal" json:"subtotal"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
