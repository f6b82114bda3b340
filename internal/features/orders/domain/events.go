package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Push channel event names.
const (
	EventNewOrder    = "new_order"
	EventOrderUpdate = "order_update"
	EventStockUpdate = "stock_update"
)

// NewOrderSummary is the order excerpt carried by a new_order event.
type NewOrderSummary struct {
	ID           string          `json:"id"`
	CustomerName string          `json:"customerName"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Source       string          `json:"source"`
	// ClientRef echoes the provisional reference the console sent when creating the order.
	ClientRef string    `json:"clientRef,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// NewOrderEvent is the payload of new_order.
type NewOrderEvent struct {
	Order NewOrderSummary `json:"order"`
}

// OrderUpdateEvent is the payload of order_update.
type OrderUpdateEvent struct {
	OrderID   string      `json:"orderId"`
	Status    OrderStatus `json:"status"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// StockUpdateEvent is the payload of stock_update.
type StockUpdateEvent struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
	NewStock  int    `json:"newStock"`
}
