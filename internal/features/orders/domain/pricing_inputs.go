package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// DiscountType selects how DiscountSpec.Value is interpreted.
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeAmount     DiscountType = "amount"
)

// DiscountSpec is an order level discount entered by an operator.
type DiscountSpec struct {
	// Type is percentage or amount.
	Type DiscountType `json:"type"`
	// Value is a percentage in [0,100] or an absolute amount in [0, subtotal].
	Value decimal.Decimal `json:"value"`
}

// NewDiscountSpec converts a raw numeric input. NaN, infinities and negatives become 0.
func NewDiscountSpec(t DiscountType, value float64) DiscountSpec {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		value = 0
	}
	return DiscountSpec{Type: t, Value: decimal.NewFromFloat(value)}
}

// EliteDiscountRate is the fixed elite product discount, in percent.
var EliteDiscountRate = decimal.NewFromInt(5)

// MembershipBenefit describes what an elite subscription grants on an order.
type MembershipBenefit struct {
	// FreeDeliveryThreshold is the subtotal from which delivery is free.
	FreeDeliveryThreshold decimal.Decimal `json:"freeDeliveryThreshold"`
	// SurgeWaived removes surge charges for the member.
	SurgeWaived bool `json:"surgeWaived"`
}
