package models

import "time"

// Event types
const (
	EventTypeSaleCompleted = "SALE_COMPLETED"
	EventTypeLowStock      = "LOW_STOCK"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// SaleCompletedEvent published after a checkout commit succeeds
type SaleCompletedEvent struct {
	BaseEvent
	SaleID   string         `json:"sale_id"`
	Total    float64        `json:"total"`
	Tendered float64        `json:"tendered"`
	Change   float64        `json:"change"`
	Items    []SaleItemData `json:"items"`
}

// LowStockEvent published when a product drops to or below its threshold
type LowStockEvent struct {
	BaseEvent
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Stock     float64 `json:"stock"`
	Threshold float64 `json:"threshold"`
}

// SaleItemData represents item data in events
type SaleItemData struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
}
