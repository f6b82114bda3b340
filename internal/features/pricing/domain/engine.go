package domain

import (
	orderdomain "order-ledger/internal/features/orders/domain"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	// DefaultGSTRate applies when the input carries no rate.
	DefaultGSTRate = decimal.NewFromInt(18)
)

// Input carries everything the engine needs to price an order.
type Input struct {
	// Items are the order lines. Quantities below 1 and negative prices contribute nothing.
	Items []orderdomain.LineItem
	// Discount is the optional operator discount.
	Discount *orderdomain.DiscountSpec
	// Membership is set when the customer is an elite member.
	Membership *orderdomain.MembershipBenefit
	// DeliveryCharges is the base delivery fee.
	DeliveryCharges decimal.Decimal
	// SurgeCharges is the base surge fee.
	SurgeCharges decimal.Decimal
	// SurgeEnabled applies SurgeCharges unless waived.
	SurgeEnabled bool
	// GSTRate is a percentage. Invalid means DefaultGSTRate.
	GSTRate decimal.NullDecimal
	// GSTOverride replaces the computed GST and is authoritative when valid.
	GSTOverride decimal.NullDecimal
}

// Quote is the priced breakdown of an order.
type Quote struct {
	SubtotalAmount       decimal.Decimal `json:"subtotalAmount"`
	DiscountAmount       decimal.Decimal `json:"discountAmount"`
	EliteDiscountAmount  decimal.Decimal `json:"eliteDiscountAmount"`
	FinalDeliveryCharges decimal.Decimal `json:"finalDeliveryCharges"`
	FinalSurgeCharges    decimal.Decimal `json:"finalSurgeCharges"`
	GSTAmount            decimal.Decimal `json:"gstAmount"`
	GSTOverridden        bool            `json:"gstOverridden"`
	TotalAmount          decimal.Decimal `json:"totalAmount"`
}

// Subtotal sums UnitPrice × Quantity over valid lines.
func Subtotal(items []orderdomain.LineItem) decimal.Decimal {
	subtotal := decimal.Zero
	for _, it := range items {
		if it.Quantity < 1 || it.UnitPrice.IsNegative() {
			continue
		}
		subtotal = subtotal.Add(it.LineTotal())
	}
	return subtotal
}

// DiscountAmount resolves a DiscountSpec against a subtotal, always within [0, subtotal].
func DiscountAmount(spec *orderdomain.DiscountSpec, subtotal decimal.Decimal) decimal.Decimal {
	if spec == nil || !subtotal.IsPositive() {
		return decimal.Zero
	}
	value := orderdomain.NonNegative(spec.Value)

	var amount decimal.Decimal
	switch spec.Type {
	case orderdomain.DiscountTypePercentage:
		amount = subtotal.Mul(decimal.Min(value, hundred)).Div(hundred)
	case orderdomain.DiscountTypeAmount:
		amount = value
	default:
		return decimal.Zero
	}
	return decimal.Min(orderdomain.RoundMoney(amount), subtotal)
}

// EffectivePercentage expresses a resolved discount as a percentage of the subtotal.
func EffectivePercentage(discount, subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() {
		return decimal.Zero
	}
	return discount.Mul(hundred).Div(subtotal).Round(2)
}

// Compute prices an order. It never fails; an empty order prices to zero everywhere.
// The elite discount stacks with the operator discount, capped so that both together
// never exceed the subtotal.
func Compute(in Input) Quote {
	if len(in.Items) == 0 {
		return Quote{}
	}

	subtotal := Subtotal(in.Items)
	discount := DiscountAmount(in.Discount, subtotal)

	elite := decimal.Zero
	if in.Membership != nil {
		elite = orderdomain.RoundMoney(subtotal.Mul(orderdomain.EliteDiscountRate).Div(hundred))
		elite = decimal.Min(elite, subtotal.Sub(discount))
	}

	delivery := orderdomain.NonNegative(in.DeliveryCharges)
	if in.Membership != nil && subtotal.GreaterThanOrEqual(in.Membership.FreeDeliveryThreshold) {
		delivery = decimal.Zero
	}

	surge := orderdomain.NonNegative(in.SurgeCharges)
	if !in.SurgeEnabled || (in.Membership != nil && in.Membership.SurgeWaived) {
		surge = decimal.Zero
	}

	taxable := subtotal.Sub(discount).Sub(elite)
	var gst decimal.Decimal
	overridden := in.GSTOverride.Valid
	if overridden {
		gst = orderdomain.NonNegative(in.GSTOverride.Decimal)
	} else {
		rate := DefaultGSTRate
		if in.GSTRate.Valid {
			rate = orderdomain.NonNegative(in.GSTRate.Decimal)
		}
		gst = orderdomain.RoundMoney(taxable.Mul(rate).Div(hundred))
	}

	total := orderdomain.NonNegative(taxable.Add(delivery).Add(surge).Add(gst))

	return Quote{
		SubtotalAmount:       subtotal,
		DiscountAmount:       discount,
		EliteDiscountAmount:  elite,
		FinalDeliveryCharges: delivery,
		FinalSurgeCharges:    surge,
		GSTAmount:            gst,
		GSTOverridden:        overridden,
		TotalAmount:          total,
	}
}

// InputFor rebuilds the engine input from an order's stored pricing choices, so item edits
// reprice from scratch. A GST amount that was overridden stays authoritative.
func InputFor(o orderdomain.Order, items []orderdomain.LineItem, deliveryCharges, surgeCharges, gstRate decimal.Decimal) Input {
	in := Input{
		Items:           items,
		Discount:        o.Discount,
		Membership:      o.Membership,
		DeliveryCharges: deliveryCharges,
		SurgeCharges:    surgeCharges,
		SurgeEnabled:    o.SurgeEnabled,
		GSTRate:         decimal.NewNullDecimal(gstRate),
	}
	if o.GSTOverridden {
		in.GSTOverride = decimal.NewNullDecimal(o.GSTAmount)
	}
	return in
}

// Apply writes the quote onto an order and re-derives its ledger fields. The order's
// DiscountAmount carries both discounts so the total identity holds on the order itself.
func (q Quote) Apply(o *orderdomain.Order) {
	o.SubtotalAmount = q.SubtotalAmount
	o.DiscountAmount = q.DiscountAmount.Add(q.EliteDiscountAmount)
	o.EliteDiscountAmount = q.EliteDiscountAmount
	o.DeliveryCharges = q.FinalDeliveryCharges
	o.SurgeCharges = q.FinalSurgeCharges
	o.GSTAmount = q.GSTAmount
	o.GSTOverridden = q.GSTOverridden
	o.TotalAmount = q.TotalAmount
	o.Recalculate()
}
