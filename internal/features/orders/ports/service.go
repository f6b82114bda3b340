package ports

import (
	"context"

	ledger "order-ledger/internal/features/ledger/service"
	"order-ledger/internal/features/orders/domain"
	pricing "order-ledger/internal/features/pricing/domain"

	"github.com/shopspring/decimal"
)

// CreateOrderInput is what the operator enters for a new order.
type CreateOrderInput struct {
	CustomerName string
	Source       string
	Items        []domain.LineItem
	Discount     *domain.DiscountSpec
	// Elite applies the elite membership benefits.
	Elite bool
	// SurgeEnabled overrides the configured default when set.
	SurgeEnabled *bool
	// GSTOverride replaces the computed GST when valid.
	GSTOverride decimal.NullDecimal
}

// Mutation is the order after a change. Synced is false when the server was unreachable
// and the change was kept locally.
type Mutation struct {
	Order  domain.Order `json:"order"`
	Synced bool         `json:"synced"`
}

// PaymentOutcome is the result of recording a payment.
type PaymentOutcome struct {
	Order    domain.Order         `json:"order"`
	Record   domain.PaymentRecord `json:"record"`
	Replayed bool                 `json:"replayed"`
	Synced   bool                 `json:"synced"`
}

// RefundOutcome is the result of recording a refund.
type RefundOutcome struct {
	Order    domain.Order        `json:"order"`
	Record   domain.RefundRecord `json:"record"`
	Replayed bool                `json:"replayed"`
	Synced   bool                `json:"synced"`
}

// OrderService defines the primary port for order operations.
type OrderService interface {
	List(status domain.OrderStatus) []domain.Order
	Get(id string) (domain.Order, error)
	Totals() domain.Totals
	Quote(in CreateOrderInput) pricing.Quote
	CreateOrder(ctx context.Context, in CreateOrderInput) (Mutation, error)
	EditItems(ctx context.Context, id string, items []domain.LineItem) (Mutation, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (Mutation, error)
	Cancel(ctx context.Context, id string) (Mutation, error)
	RecordPayment(ctx context.Context, id string, req ledger.PaymentRequest) (PaymentOutcome, error)
	RecordRefund(ctx context.Context, id string, req ledger.RefundRequest) (RefundOutcome, error)
}
