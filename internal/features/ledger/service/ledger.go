package service

import (
	"strings"
	"time"

	"order-ledger/internal/features/orders/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MinReasonLength is the shortest refund reason accepted.
const MinReasonLength = 5

var two = decimal.NewFromInt(2)

// PaymentRequest describes a payment collected against an order.
type PaymentRequest struct {
	Amount          decimal.Decimal
	Method          string
	Mode            domain.PaymentMode
	TransactionID   string
	ReferenceNumber string
	Notes           string
	ReceivedBy      string
	// IdempotencyKey identifies the attempt. Retrying with the same key never applies twice.
	IdempotencyKey string
}

// PaymentResult is the next order state plus the record that produced it.
type PaymentResult struct {
	Order  domain.Order
	Record domain.PaymentRecord
	// Replayed is true when the idempotency key matched an existing record.
	Replayed bool
}

// RefundRequest describes money returned to a customer.
type RefundRequest struct {
	// Amount may be left invalid for full refunds, which then refund everything refundable.
	Amount        decimal.NullDecimal
	RefundType    domain.RefundType
	RefundMethod  string
	Reason        string
	Notes         string
	ItemsRefunded []domain.RefundedItem
	ProcessedBy   string
	ApprovedBy    string
	// IdempotencyKey identifies the attempt. Retrying with the same key never applies twice.
	IdempotencyKey string
}

// RefundResult is the next order state plus the record that produced it.
type RefundResult struct {
	Order    domain.Order
	Record   domain.RefundRecord
	Replayed bool
}

// Ledger records payments and refunds. It holds no order state: every call takes the
// current order and returns the next one, leaving the input untouched on failure.
type Ledger struct {
	now   func() time.Time
	newID func() string
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDGenerator overrides record id generation.
func WithIDGenerator(gen func() string) Option {
	return func(l *Ledger) { l.newID = gen }
}

// New creates a Ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FullPending is the quick amount that settles the order.
func FullPending(o domain.Order) decimal.Decimal {
	return o.PendingAmount
}

// HalfPending is the quick amount for half of what is still due.
func HalfPending(o domain.Order) decimal.Decimal {
	return domain.RoundMoney(o.PendingAmount.Div(two))
}

// RecordPayment appends a confirmed payment and re-derives the order's balances.
func (l *Ledger) RecordPayment(order domain.Order, req PaymentRequest) (PaymentResult, error) {
	if rec, ok := findPayment(order, req.IdempotencyKey); ok {
		return PaymentResult{Order: order, Record: rec, Replayed: true}, nil
	}

	amount := req.Amount
	if !amount.IsPositive() {
		return PaymentResult{}, domain.NewValidationError("amount", "must be greater than 0")
	}
	if !order.PendingAmount.IsPositive() {
		return PaymentResult{}, domain.NewValidationError("amount", "order has no pending amount")
	}
	if amount.GreaterThan(order.PendingAmount.Add(domain.AmountEpsilon)) {
		return PaymentResult{}, domain.NewValidationError("amount", "%s exceeds pending amount %s", amount, order.PendingAmount)
	}
	// Within epsilon of the balance: settle exactly.
	if amount.GreaterThan(order.PendingAmount) {
		amount = order.PendingAmount
	}
	if strings.TrimSpace(req.Method) == "" {
		return PaymentResult{}, domain.NewValidationError("method", "is required")
	}

	mode := req.Mode
	if mode == "" {
		mode = domain.PaymentModePartial
		if amount.Equal(order.PendingAmount) {
			mode = domain.PaymentModeFull
		}
	}
	if !mode.Valid() {
		return PaymentResult{}, domain.NewValidationError("mode", "unknown payment mode %q", mode)
	}

	now := l.now()
	rec := domain.PaymentRecord{
		ID:              "pay_" + l.newID(),
		OrderID:         order.ID,
		Amount:          amount,
		Method:          req.Method,
		Mode:            mode,
		TransactionID:   req.TransactionID,
		ReferenceNumber: req.ReferenceNumber,
		Notes:           req.Notes,
		ReceivedBy:      req.ReceivedBy,
		ReceivedAt:      now,
		Status:          domain.PaymentRecordConfirmed,
		IdempotencyKey:  req.IdempotencyKey,
	}

	next := order.Clone()
	next.PaymentRecords = append(next.PaymentRecords, rec)
	next.PaidAmount = next.PaidAmount.Add(amount)
	next.UpdatedAt = now
	next.Recalculate()

	return PaymentResult{Order: next, Record: rec}, nil
}

// RecordRefund appends a completed refund. Refunds never reduce PaidAmount.
func (l *Ledger) RecordRefund(order domain.Order, req RefundRequest) (RefundResult, error) {
	if rec, ok := findRefund(order, req.IdempotencyKey); ok {
		return RefundResult{Order: order, Record: rec, Replayed: true}, nil
	}

	if !req.RefundType.Valid() {
		return RefundResult{}, domain.NewValidationError("refundType", "unknown refund type %q", req.RefundType)
	}

	refundable := order.Refundable()
	var amount decimal.Decimal
	switch {
	case req.Amount.Valid:
		amount = req.Amount.Decimal
	case req.RefundType == domain.RefundTypeFull:
		amount = refundable
	default:
		return RefundResult{}, domain.NewValidationError("amount", "is required for %s refunds", req.RefundType)
	}

	if !amount.IsPositive() {
		return RefundResult{}, domain.NewValidationError("amount", "must be greater than 0")
	}
	if !refundable.IsPositive() {
		return RefundResult{}, domain.NewValidationError("amount", "order has nothing left to refund")
	}
	if amount.GreaterThan(refundable.Add(domain.AmountEpsilon)) {
		return RefundResult{}, domain.NewValidationError("amount", "%s exceeds refundable amount %s", amount, refundable)
	}
	if amount.GreaterThan(refundable) {
		amount = refundable
	}

	if len([]rune(strings.TrimSpace(req.Reason))) < MinReasonLength {
		return RefundResult{}, domain.NewValidationError("reason", "must be at least %d characters", MinReasonLength)
	}
	if strings.TrimSpace(req.RefundMethod) == "" {
		return RefundResult{}, domain.NewValidationError("refundMethod", "is required")
	}
	if err := validateRefundItems(order, req, amount); err != nil {
		return RefundResult{}, err
	}

	now := l.now()
	rec := domain.RefundRecord{
		ID:             "ref_" + l.newID(),
		OrderID:        order.ID,
		Amount:         amount,
		RefundType:     req.RefundType,
		RefundMethod:   req.RefundMethod,
		Reason:         strings.TrimSpace(req.Reason),
		Notes:          req.Notes,
		ItemsRefunded:  append([]domain.RefundedItem(nil), req.ItemsRefunded...),
		ProcessedBy:    req.ProcessedBy,
		ProcessedAt:    now,
		Status:         domain.RefundStatusCompleted,
		IdempotencyKey: req.IdempotencyKey,
	}
	if req.ApprovedBy != "" {
		rec.ApprovedBy = req.ApprovedBy
		rec.ApprovedAt = &now
	}

	next := order.Clone()
	next.RefundRecords = append(next.RefundRecords, rec)
	next.RefundedAmount = next.RefundedAmount.Add(amount)
	next.UpdatedAt = now
	next.Recalculate()

	return RefundResult{Order: next, Record: rec}, nil
}

func validateRefundItems(order domain.Order, req RefundRequest, amount decimal.Decimal) error {
	if req.RefundType == domain.RefundTypeItemReturn && len(req.ItemsRefunded) == 0 {
		return domain.NewValidationError("itemsRefunded", "is required for item returns")
	}

	sum := decimal.Zero
	for i, it := range req.ItemsRefunded {
		if it.Quantity < 1 {
			return domain.NewValidationError("itemsRefunded", "item %d: quantity must be at least 1", i)
		}
		if it.RefundAmount.IsNegative() {
			return domain.NewValidationError("itemsRefunded", "item %d: refund amount must not be negative", i)
		}
		if len(order.Items) > 0 {
			line, ok := order.FindItem(it.ProductID, it.VariantID)
			if !ok {
				return domain.NewValidationError("itemsRefunded", "item %d: product %s is not part of the order", i, it.ProductID)
			}
			if it.Quantity > line.Quantity {
				return domain.NewValidationError("itemsRefunded", "item %d: quantity %d exceeds ordered %d", i, it.Quantity, line.Quantity)
			}
		}
		sum = sum.Add(it.RefundAmount)
	}

	if sum.GreaterThan(amount) {
		return domain.NewValidationError("itemsRefunded", "item refunds %s exceed refund amount %s", sum, amount)
	}
	return nil
}

func findPayment(o domain.Order, key string) (domain.PaymentRecord, bool) {
	if key == "" {
		return domain.PaymentRecord{}, false
	}
	for _, rec := range o.PaymentRecords {
		if rec.IdempotencyKey == key {
			return rec, true
		}
	}
	return domain.PaymentRecord{}, false
}

func findRefund(o domain.Order, key string) (domain.RefundRecord, bool) {
	if key == "" {
		return domain.RefundRecord{}, false
	}
	for _, rec := range o.RefundRecords {
		if rec.IdempotencyKey == key {
			return rec, true
		}
	}
	return domain.RefundRecord{}, false
}
