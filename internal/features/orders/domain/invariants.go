package domain

import (
	"fmt"
	"sync/atomic"

	"order-ledger/internal/core/logger"
	"order-ledger/internal/core/metrics"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AmountEpsilon absorbs rounding differences when comparing entered amounts to balances.
var AmountEpsilon = decimal.New(1, -2)

var strictInvariants atomic.Bool

// SetStrictInvariants makes money invariant violations panic instead of being clamped.
// Development builds turn this on.
func SetStrictInvariants(strict bool) {
	strictInvariants.Store(strict)
}

// RoundMoney rounds to two decimal places.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// NonNegative floors d at zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func violation(strict bool, orderID, field string, got decimal.Decimal) {
	if strict {
		panic(fmt.Sprintf("money invariant violated on order %s: %s = %s", orderID, field, got))
	}
	logger.Get().Error("Money invariant violated, clamping",
		zap.String("order_id", orderID),
		zap.String("field", field),
		zap.String("value", got.String()),
	)
	metrics.InvariantClamp(field)
}

// DerivePaymentStatus applies the payment status rule. A refund covering the total wins over
// "paid"; a zero-value order with nothing refunded counts as paid.
func DerivePaymentStatus(total, paid, pending, refunded decimal.Decimal) PaymentStatus {
	switch {
	case refunded.IsPositive() && refunded.GreaterThanOrEqual(total):
		return PaymentStatusRefunded
	case !pending.IsPositive():
		return PaymentStatusPaid
	case paid.IsPositive():
		return PaymentStatusPartial
	default:
		return PaymentStatusPending
	}
}

// Recalculate re-derives PendingAmount, NetAmount and PaymentStatus from the pricing
// components and the two ledgers, clamping anything that would break conservation.
// Under strict invariants a violation panics.
func (o *Order) Recalculate() {
	o.recalculate(strictInvariants.Load())
}

// Reconcile is Recalculate for orders received from the server. Violations are always
// clamped and logged, never panicked on.
func (o *Order) Reconcile() {
	o.recalculate(false)
}

func (o *Order) recalculate(strict bool) {
	for field, v := range map[string]*decimal.Decimal{
		"subtotal_amount":  &o.SubtotalAmount,
		"discount_amount":  &o.DiscountAmount,
		"delivery_charges": &o.DeliveryCharges,
		"surge_charges":    &o.SurgeCharges,
		"gst_amount":       &o.GSTAmount,
		"paid_amount":      &o.PaidAmount,
		"refunded_amount":  &o.RefundedAmount,
	} {
		if v.IsNegative() {
			violation(strict, o.ID, field, *v)
			*v = decimal.Zero
		}
	}

	expected := o.SubtotalAmount.Sub(o.DiscountAmount).
		Add(o.DeliveryCharges).Add(o.SurgeCharges).Add(o.GSTAmount)
	switch {
	case expected.IsZero() && o.TotalAmount.IsPositive():
		// Summary-shaped order: only the total is known.
		o.SubtotalAmount = o.TotalAmount
	case !o.TotalAmount.Equal(expected):
		if !o.TotalAmount.IsZero() {
			logger.Get().Warn("Order total disagrees with its components, recomputing",
				zap.String("order_id", o.ID),
				zap.String("total", o.TotalAmount.String()),
				zap.String("expected", expected.String()),
			)
		}
		o.TotalAmount = NonNegative(expected)
	}

	pending := o.TotalAmount.Sub(o.PaidAmount)
	if pending.IsNegative() {
		violation(strict, o.ID, "pending_amount", pending)
		o.PaidAmount = o.TotalAmount
		pending = decimal.Zero
	}
	o.PendingAmount = pending

	if o.RefundedAmount.GreaterThan(o.PaidAmount) {
		violation(strict, o.ID, "refunded_amount", o.RefundedAmount)
		o.RefundedAmount = o.PaidAmount
	}

	o.NetAmount = NonNegative(o.TotalAmount.Sub(o.RefundedAmount))
	o.PaymentStatus = DerivePaymentStatus(o.TotalAmount, o.PaidAmount, o.PendingAmount, o.RefundedAmount)
}
