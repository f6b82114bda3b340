package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"order-ledger/internal/core/config"
	"order-ledger/internal/core/logger"
	"order-ledger/internal/core/metrics"
	ledger "order-ledger/internal/features/ledger/service"
	"order-ledger/internal/features/orders/domain"
	"order-ledger/internal/features/orders/ports"
	"order-ledger/internal/features/orders/synchronizer"
	pricing "order-ledger/internal/features/pricing/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PricingDefaults are the charges applied when an order is priced.
type PricingDefaults struct {
	GSTRate                    decimal.Decimal
	DeliveryCharges            decimal.Decimal
	SurgeCharges               decimal.Decimal
	SurgeEnabled               bool
	EliteFreeDeliveryThreshold decimal.Decimal
}

// PricingDefaultsFromConfig converts the configured pricing values.
func PricingDefaultsFromConfig(cfg config.PricingConfig) PricingDefaults {
	return PricingDefaults{
		GSTRate:                    decimal.NewFromFloat(cfg.GSTRate),
		DeliveryCharges:            decimal.NewFromFloat(cfg.DeliveryCharges),
		SurgeCharges:               decimal.NewFromFloat(cfg.SurgeCharges),
		SurgeEnabled:               cfg.SurgeEnabled,
		EliteFreeDeliveryThreshold: decimal.NewFromFloat(cfg.EliteFreeDeliveryThreshold),
	}
}

// OrderService orchestrates pricing, the ledger, local state and the order API.
// Every mutation is applied locally first. A network failure keeps the local state;
// any other failure from the API restores the previous state.
type OrderService struct {
	api       ports.OrderAPI
	sync      *synchronizer.Synchronizer
	ledger    *ledger.Ledger
	publisher ports.LedgerEventPublisher
	defaults  PricingDefaults
	log       *zap.Logger
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(api ports.OrderAPI, sync *synchronizer.Synchronizer, l *ledger.Ledger, publisher ports.LedgerEventPublisher, defaults PricingDefaults) *OrderService {
	return &OrderService{
		api:       api,
		sync:      sync,
		ledger:    l,
		publisher: publisher,
		defaults:  defaults,
		log:       logger.Named("orders"),
	}
}

// Load hydrates the order list from the API.
func (s *OrderService) Load(ctx context.Context) error {
	orders, err := s.api.ListOrders(ctx)
	if err != nil {
		return fmt.Errorf("service: failed to load orders: %w", err)
	}
	s.sync.Hydrate(orders)
	return nil
}

// List returns orders newest first, optionally filtered by status.
func (s *OrderService) List(status domain.OrderStatus) []domain.Order {
	orders := s.sync.List()
	if status == "" {
		return orders
	}
	filtered := orders[:0]
	for _, o := range orders {
		if o.Status == status {
			filtered = append(filtered, o)
		}
	}
	return filtered
}

// Get returns one order.
func (s *OrderService) Get(id string) (domain.Order, error) {
	o, ok := s.sync.Get(id)
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return o, nil
}

// Totals aggregates the confirmed orders.
func (s *OrderService) Totals() domain.Totals {
	return s.sync.Totals()
}

// Quote prices an order without creating it.
func (s *OrderService) Quote(in ports.CreateOrderInput) pricing.Quote {
	return pricing.Compute(s.pricingInput(in))
}

// CreateOrder prices and submits a new order. It appears immediately as provisional and is
// confirmed by the API response, kept locally when the API is unreachable, or discarded
// when the API rejects it.
func (s *OrderService) CreateOrder(ctx context.Context, in ports.CreateOrderInput) (ports.Mutation, error) {
	if err := validateItems(in.Items); err != nil {
		return ports.Mutation{}, err
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return ports.Mutation{}, domain.NewValidationError("customerName", "is required")
	}

	order := domain.Order{
		CustomerName: strings.TrimSpace(in.CustomerName),
		Source:       in.Source,
		Items:        append([]domain.LineItem(nil), in.Items...),
		Discount:     in.Discount,
		Membership:   s.membership(in.Elite),
		SurgeEnabled: s.surgeEnabled(in.SurgeEnabled),
		Status:       domain.OrderStatusReceived,
	}
	pricing.Compute(s.pricingInput(in)).Apply(&order)

	ref, provisional := s.sync.LocalCreate(order)

	created, err := s.api.CreateOrder(ctx, provisional, ref)
	switch {
	case err == nil:
		s.sync.Acknowledge(ref, *created)
		confirmed, _ := s.sync.Get(created.ID)
		return ports.Mutation{Order: confirmed, Synced: true}, nil
	case domain.IsNetwork(err):
		s.log.Warn("Order API unreachable, keeping order locally", zap.String("client_ref", ref), zap.Error(err))
		local, confirmErr := s.sync.ConfirmLocal(ref)
		if confirmErr != nil {
			return ports.Mutation{}, confirmErr
		}
		return ports.Mutation{Order: local, Synced: false}, nil
	default:
		if discardErr := s.sync.Discard(ref); discardErr != nil && !errors.Is(discardErr, domain.ErrProvisionalNotFound) {
			s.log.Error("Failed to discard rejected order", zap.String("client_ref", ref), zap.Error(discardErr))
		}
		return ports.Mutation{}, fmt.Errorf("service: failed to create order: %w", err)
	}
}

// EditItems replaces an order's items and reprices it from scratch. A manually entered GST
// amount is kept. Delivered and cancelled orders cannot be edited, and the new total may
// not fall below what was already paid.
func (s *OrderService) EditItems(ctx context.Context, id string, items []domain.LineItem) (ports.Mutation, error) {
	change, err := s.sync.Mutate(id, func(current domain.Order) (*domain.Order, error) {
		if current.Status.IsTerminal() {
			return nil, domain.NewValidationError("status", "%s orders cannot be edited", current.Status)
		}
		if err := validateItems(items); err != nil {
			return nil, err
		}

		next := current.Clone()
		next.Items = append([]domain.LineItem(nil), items...)
		quote := pricing.Compute(pricing.InputFor(current, next.Items, s.defaults.DeliveryCharges, s.defaults.SurgeCharges, s.defaults.GSTRate))
		if quote.TotalAmount.LessThan(current.PaidAmount) {
			return nil, domain.NewValidationError("items", "new total %s is below the paid amount %s", quote.TotalAmount, current.PaidAmount)
		}
		quote.Apply(&next)
		return &next, nil
	})
	if err != nil {
		return ports.Mutation{}, err
	}

	synced, err := s.commit(ctx, "edit items", change)
	if err != nil {
		return ports.Mutation{}, err
	}
	return ports.Mutation{Order: change.Order, Synced: synced}, nil
}

// UpdateStatus moves an order to a new fulfilment status.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (ports.Mutation, error) {
	prev, err := s.Get(id)
	if err != nil {
		return ports.Mutation{}, err
	}

	next, outcome, err := s.sync.LocalUpdate(id, synchronizer.Patch{Status: &status})
	if err != nil {
		return ports.Mutation{}, err
	}
	switch outcome {
	case synchronizer.OutcomeTerminal:
		return ports.Mutation{}, domain.NewValidationError("status", "order is already %s", next.Status)
	case synchronizer.OutcomeDuplicate:
		return ports.Mutation{Order: next, Synced: !s.sync.IsLocal(id)}, nil
	}

	synced, err := s.push(ctx, "update status", id, func(ctx context.Context) error {
		_, err := s.api.UpdateOrder(ctx, next)
		return err
	}, func() error {
		return s.sync.RestoreStatus(id, prev.Status, next.Status)
	})
	if err != nil {
		return ports.Mutation{}, err
	}
	return ports.Mutation{Order: next, Synced: synced}, nil
}

// Cancel cancels an order. Cancelling a cancelled order is a no-op; delivered orders cannot be cancelled.
func (s *OrderService) Cancel(ctx context.Context, id string) (ports.Mutation, error) {
	prev, err := s.Get(id)
	if err != nil {
		return ports.Mutation{}, err
	}
	switch prev.Status {
	case domain.OrderStatusCancelled:
		return ports.Mutation{Order: prev, Synced: !s.sync.IsLocal(id)}, nil
	case domain.OrderStatusDelivered:
		return ports.Mutation{}, domain.NewValidationError("status", "delivered orders cannot be cancelled")
	}

	cancelled := domain.OrderStatusCancelled
	next, outcome, err := s.sync.LocalUpdate(id, synchronizer.Patch{Status: &cancelled})
	if err != nil {
		return ports.Mutation{}, err
	}
	switch outcome {
	case synchronizer.OutcomeTerminal:
		return ports.Mutation{}, domain.NewValidationError("status", "order is already %s", next.Status)
	case synchronizer.OutcomeDuplicate:
		return ports.Mutation{Order: next, Synced: !s.sync.IsLocal(id)}, nil
	}

	synced, err := s.push(ctx, "cancel order", id, func(ctx context.Context) error {
		_, err := s.api.CancelOrder(ctx, id)
		return err
	}, func() error {
		return s.sync.RestoreStatus(id, prev.Status, domain.OrderStatusCancelled)
	})
	if err != nil {
		return ports.Mutation{}, err
	}
	return ports.Mutation{Order: next, Synced: synced}, nil
}

// RecordPayment records a payment against an order and publishes a ledger event.
func (s *OrderService) RecordPayment(ctx context.Context, id string, req ledger.PaymentRequest) (ports.PaymentOutcome, error) {
	var res ledger.PaymentResult
	change, err := s.sync.Mutate(id, func(current domain.Order) (*domain.Order, error) {
		if current.Status == domain.OrderStatusCancelled {
			return nil, domain.NewValidationError("status", "cancelled orders cannot take payments")
		}
		var err error
		if res, err = s.ledger.RecordPayment(current, req); err != nil {
			return nil, err
		}
		if res.Replayed {
			return nil, nil
		}
		return &res.Order, nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrOrderNotFound) {
			metrics.LedgerOperation("payment", "rejected")
		}
		return ports.PaymentOutcome{}, err
	}
	if !change.Applied {
		metrics.LedgerOperation("payment", "replayed")
		return ports.PaymentOutcome{Order: change.Order, Record: res.Record, Replayed: true, Synced: !s.sync.IsLocal(id)}, nil
	}

	synced, err := s.commit(ctx, "record payment", change)
	if err != nil {
		metrics.LedgerOperation("payment", "failed")
		return ports.PaymentOutcome{}, err
	}
	metrics.LedgerOperation("payment", "recorded")
	order := change.Order

	s.publish(ctx, ports.LedgerEvent{
		Type:     ports.LedgerEventPaymentRecorded,
		OrderID:  order.ID,
		RecordID: res.Record.ID,
		Amount:   res.Record.Amount.StringFixed(2),
		Order:    &order,
	})

	s.log.Info("Payment recorded",
		zap.String("order_id", order.ID),
		zap.String("record_id", res.Record.ID),
		zap.String("amount", res.Record.Amount.StringFixed(2)),
		zap.String("payment_status", string(order.PaymentStatus)),
	)
	return ports.PaymentOutcome{Order: order, Record: res.Record, Synced: synced}, nil
}

// RecordRefund records a refund against an order and publishes a ledger event.
func (s *OrderService) RecordRefund(ctx context.Context, id string, req ledger.RefundRequest) (ports.RefundOutcome, error) {
	var res ledger.RefundResult
	change, err := s.sync.Mutate(id, func(current domain.Order) (*domain.Order, error) {
		var err error
		if res, err = s.ledger.RecordRefund(current, req); err != nil {
			return nil, err
		}
		if res.Replayed {
			return nil, nil
		}
		return &res.Order, nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrOrderNotFound) {
			metrics.LedgerOperation("refund", "rejected")
		}
		return ports.RefundOutcome{}, err
	}
	if !change.Applied {
		metrics.LedgerOperation("refund", "replayed")
		return ports.RefundOutcome{Order: change.Order, Record: res.Record, Replayed: true, Synced: !s.sync.IsLocal(id)}, nil
	}

	synced, err := s.commit(ctx, "record refund", change)
	if err != nil {
		metrics.LedgerOperation("refund", "failed")
		return ports.RefundOutcome{}, err
	}
	metrics.LedgerOperation("refund", "recorded")
	order := change.Order

	s.publish(ctx, ports.LedgerEvent{
		Type:     ports.LedgerEventRefundRecorded,
		OrderID:  order.ID,
		RecordID: res.Record.ID,
		Amount:   res.Record.Amount.StringFixed(2),
		Order:    &order,
	})

	s.log.Info("Refund recorded",
		zap.String("order_id", order.ID),
		zap.String("record_id", res.Record.ID),
		zap.String("amount", res.Record.Amount.StringFixed(2)),
		zap.String("refund_type", string(res.Record.RefundType)),
	)
	return ports.RefundOutcome{Order: order, Record: res.Record, Synced: synced}, nil
}

// commit sends a locally applied financial change to the API.
func (s *OrderService) commit(ctx context.Context, op string, change synchronizer.Change) (bool, error) {
	return s.push(ctx, op, change.Order.ID, func(ctx context.Context) error {
		_, err := s.api.UpdateOrder(ctx, change.Order)
		return err
	}, func() error {
		return s.sync.Rollback(change)
	})
}

// push runs the remote half of a mutation whose local half is already applied. When the
// API rejects it, rollback undoes the local half.
func (s *OrderService) push(ctx context.Context, op, id string, call func(context.Context) error, rollback func() error) (bool, error) {
	if s.sync.IsLocal(id) {
		return false, nil
	}

	err := call(ctx)
	switch {
	case err == nil:
		return true, nil
	case domain.IsNetwork(err):
		s.log.Warn("Order API unreachable, keeping local change",
			zap.String("op", op),
			zap.String("order_id", id),
			zap.Error(err),
		)
		return false, nil
	default:
		if rbErr := rollback(); rbErr != nil {
			s.log.Error("Failed to roll back local change",
				zap.String("op", op),
				zap.String("order_id", id),
				zap.Error(rbErr),
			)
		}
		return false, fmt.Errorf("service: failed to %s: %w", op, err)
	}
}

func (s *OrderService) publish(ctx context.Context, event ports.LedgerEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Error("Failed to publish ledger event",
			zap.String("type", event.Type),
			zap.String("order_id", event.OrderID),
			zap.Error(err),
		)
	}
}

func (s *OrderService) pricingInput(in ports.CreateOrderInput) pricing.Input {
	return pricing.Input{
		Items:           in.Items,
		Discount:        in.Discount,
		Membership:      s.membership(in.Elite),
		DeliveryCharges: s.defaults.DeliveryCharges,
		SurgeCharges:    s.defaults.SurgeCharges,
		SurgeEnabled:    s.surgeEnabled(in.SurgeEnabled),
		GSTRate:         decimal.NewNullDecimal(s.defaults.GSTRate),
		GSTOverride:     in.GSTOverride,
	}
}

func (s *OrderService) membership(elite bool) *domain.MembershipBenefit {
	if !elite {
		return nil
	}
	return &domain.MembershipBenefit{
		FreeDeliveryThreshold: s.defaults.EliteFreeDeliveryThreshold,
		SurgeWaived:           true,
	}
}

func (s *OrderService) surgeEnabled(override *bool) bool {
	if override != nil {
		return *override
	}
	return s.defaults.SurgeEnabled
}

func validateItems(items []domain.LineItem) error {
	if len(items) == 0 {
		return domain.NewValidationError("items", "at least one item is required")
	}
	for i, it := range items {
		if strings.TrimSpace(it.ProductID) == "" {
			return domain.NewValidationError("items", "item %d: productId is required", i)
		}
		if it.Quantity < 1 {
			return domain.NewValidationError("items", "item %d: quantity must be at least 1", i)
		}
		if it.UnitPrice.IsNegative() {
			return domain.NewValidationError("items", "item %d: unit price must not be negative", i)
		}
	}
	return nil
}
