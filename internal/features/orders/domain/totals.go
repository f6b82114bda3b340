package domain

import "github.com/shopspring/decimal"

// Totals aggregates the money fields of confirmed orders.
type Totals struct {
	Orders int `json:"orders"`
	// Provisional counts orders awaiting acknowledgement. Their amounts are not included.
	Provisional int             `json:"provisional"`
	Total       decimal.Decimal `json:"totalAmount"`
	Paid        decimal.Decimal `json:"paidAmount"`
	Pending     decimal.Decimal `json:"pendingAmount"`
	Refunded    decimal.Decimal `json:"refundedAmount"`
	Net         decimal.Decimal `json:"netAmount"`
}
