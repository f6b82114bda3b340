package ports

import (
	"context"
	"encoding/json"

	"order-ledger/internal/features/orders/domain"
)

// OrderAPI is the upstream order REST API (Secondary Port).
// Transport failures and 5xx responses are reported as *domain.NetworkError.
type OrderAPI interface {
	// ListOrders fetches the orders visible to this console (GET /orders).
	ListOrders(ctx context.Context) ([]domain.Order, error)
	// CreateOrder submits a new order (POST /orders). clientRef is echoed on the push channel.
	CreateOrder(ctx context.Context, order domain.Order, clientRef string) (*domain.Order, error)
	// UpdateOrder sends the order's current state (PATCH /orders/:id).
	UpdateOrder(ctx context.Context, order domain.Order) (*domain.Order, error)
	// CancelOrder cancels an order (POST /orders/:id/cancel).
	CancelOrder(ctx context.Context, orderID string) (*domain.Order, error)
}

// PushChannel is an at-least-once, auto-reconnecting event channel.
type PushChannel interface {
	// Connect opens the channel. Handlers registered with On receive events from then on.
	Connect(ctx context.Context) error
	// On registers the handler for an event name, replacing any previous one.
	On(event string, handler func(payload json.RawMessage))
	// Emit sends an event to the server.
	Emit(event string, payload any) error
	// Disconnect closes the channel and stops reconnecting.
	Disconnect() error
}

// LedgerEvent is published after a payment or refund is recorded.
type LedgerEvent struct {
	Type     string        `json:"type"`
	OrderID  string        `json:"orderId"`
	RecordID string        `json:"recordId"`
	Amount   string        `json:"amount"`
	Order    *domain.Order `json:"order,omitempty"`
}

// Ledger event types.
const (
	LedgerEventPaymentRecorded = "payment_recorded"
	LedgerEventRefundRecorded  = "refund_recorded"
)

// LedgerEventPublisher forwards ledger events to downstream consumers.
type LedgerEventPublisher interface {
	Publish(ctx context.Context, event LedgerEvent) error
	Close() error
}
