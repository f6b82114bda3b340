package domain

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, dec(expected).Equal(actual), append([]interface{}{"expected %s, got %s", expected, actual.String()}, msgAndArgs...)...)
}

func TestOrder_MarshalJSON(t *testing.T) {
	order := NewOrderFromSummary("ord-1", "Asha", "app", dec("250"), time.Now())
	order.Items = []LineItem{{ProductID: "p1", Name: "Milk", Quantity: 2, UnitPrice: dec("125")}}

	data, err := json.Marshal(order)
	require.NoError(t, err)

	jsonString := string(data)
	assert.Contains(t, jsonString, `"id":"ord-1"`)
	assert.Contains(t, jsonString, `"status":"received"`)
	assert.Contains(t, jsonString, `"paymentStatus":"pending"`)
	assert.Contains(t, jsonString, `"items":[{`)
	assert.Contains(t, jsonString, `"pendingAmount"`)
}

func TestOrderStatus_Values(t *testing.T) {
	assert.Equal(t, OrderStatus("received"), OrderStatusReceived)
	assert.Equal(t, OrderStatus("out_for_delivery"), OrderStatusOutForDelivery)

	assert.True(t, OrderStatusDelivered.IsTerminal())
	assert.True(t, OrderStatusCancelled.IsTerminal())
	assert.False(t, OrderStatusPacked.IsTerminal())

	assert.Less(t, OrderStatusProcessing.Rank(), OrderStatusDelivered.Rank())
	assert.Equal(t, -1, OrderStatus("lost").Rank())
	assert.False(t, OrderStatus("lost").Valid())
}

func TestDerivePaymentStatus(t *testing.T) {
	tests := []struct {
		name     string
		total    string
		paid     string
		pending  string
		refunded string
		expected PaymentStatus
	}{
		{"Nothing paid", "1000", "0", "1000", "0", PaymentStatusPending},
		{"Partially paid", "1000", "400", "600", "0", PaymentStatusPartial},
		{"Fully paid", "1000", "1000", "0", "0", PaymentStatusPaid},
		{"Partially refunded stays paid", "1000", "1000", "0", "300", PaymentStatusPaid},
		{"Fully refunded", "1000", "1000", "0", "1000", PaymentStatusRefunded},
		{"Zero order", "0", "0", "0", "0", PaymentStatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DerivePaymentStatus(dec(tt.total), dec(tt.paid), dec(tt.pending), dec(tt.refunded))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestOrder_Recalculate(t *testing.T) {
	o := Order{
		ID:              "ord-1",
		SubtotalAmount:  dec("500"),
		DiscountAmount:  dec("75"),
		DeliveryCharges: dec("30"),
		GSTAmount:       dec("76.5"),
		PaidAmount:      dec("200"),
		RefundedAmount:  dec("50"),
	}

	o.Recalculate()

	assertAmount(t, "531.5", o.TotalAmount)
	assertAmount(t, "331.5", o.PendingAmount)
	assertAmount(t, "481.5", o.NetAmount)
	assert.Equal(t, PaymentStatusPartial, o.PaymentStatus)
	assert.True(t, o.PaidAmount.Add(o.PendingAmount).Equal(o.TotalAmount))
}

func TestOrder_Recalculate_SummaryShaped(t *testing.T) {
	o := Order{ID: "ord-2", TotalAmount: dec("99.90")}
	o.Recalculate()

	assertAmount(t, "99.90", o.SubtotalAmount)
	assertAmount(t, "99.90", o.TotalAmount)
	assertAmount(t, "99.90", o.PendingAmount)
}

func TestOrder_Recalculate_ClampsWhenLenient(t *testing.T) {
	SetStrictInvariants(false)

	o := Order{
		ID:             "ord-3",
		SubtotalAmount: dec("100"),
		TotalAmount:    dec("100"),
		PaidAmount:     dec("150"),
		RefundedAmount: dec("200"),
	}
	o.Recalculate()

	assertAmount(t, "100", o.PaidAmount)
	assertAmount(t, "0", o.PendingAmount)
	assertAmount(t, "100", o.RefundedAmount)
	assertAmount(t, "0", o.NetAmount)
	assert.Equal(t, PaymentStatusRefunded, o.PaymentStatus)
}

func TestOrder_Recalculate_PanicsWhenStrict(t *testing.T) {
	SetStrictInvariants(true)
	defer SetStrictInvariants(false)

	o := Order{ID: "ord-4", SubtotalAmount: dec("10"), TotalAmount: dec("10"), PaidAmount: dec("20")}
	assert.Panics(t, func() { o.Recalculate() })
}

func TestOrder_Reconcile_ClampsWhenStrict(t *testing.T) {
	SetStrictInvariants(true)
	defer SetStrictInvariants(false)

	o := Order{ID: "ord-6", SubtotalAmount: dec("10"), TotalAmount: dec("10"), PaidAmount: dec("20")}
	assert.NotPanics(t, func() { o.Reconcile() })
	assertAmount(t, "10", o.PaidAmount)
	assertAmount(t, "0", o.PendingAmount)
	assert.Equal(t, PaymentStatusPaid, o.PaymentStatus)
}

func TestOrder_Clone(t *testing.T) {
	approved := time.Now()
	o := Order{
		ID:             "ord-5",
		Items:          []LineItem{{ProductID: "p1", Quantity: 1, UnitPrice: dec("10")}},
		Discount:       &DiscountSpec{Type: DiscountTypeAmount, Value: dec("1")},
		PaymentRecords: []PaymentRecord{{ID: "pay-1"}},
		RefundRecords: []RefundRecord{{
			ID:            "ref-1",
			ItemsRefunded: []RefundedItem{{ProductID: "p1", Quantity: 1}},
			ApprovedAt:    &approved,
		}},
	}

	c := o.Clone()
	c.Items[0].Quantity = 5
	c.Discount.Value = dec("9")
	c.PaymentRecords[0].ID = "changed"
	c.RefundRecords[0].ItemsRefunded[0].Quantity = 3

	assert.Equal(t, 1, o.Items[0].Quantity)
	assertAmount(t, "1", o.Discount.Value)
	assert.Equal(t, "pay-1", o.PaymentRecords[0].ID)
	assert.Equal(t, 1, o.RefundRecords[0].ItemsRefunded[0].Quantity)
}

func TestOrder_FindItemAndRefundable(t *testing.T) {
	o := Order{
		Items:          []LineItem{{ProductID: "p1", VariantID: "v1", Quantity: 2}},
		PaidAmount:     dec("300"),
		RefundedAmount: dec("120"),
	}

	item, ok := o.FindItem("p1", "v1")
	require.True(t, ok)
	assert.Equal(t, 2, item.Quantity)

	_, ok = o.FindItem("p1", "v2")
	assert.False(t, ok)

	assertAmount(t, "180", o.Refundable())
}

func TestNewDiscountSpec_SanitizesInput(t *testing.T) {
	assertAmount(t, "0", NewDiscountSpec(DiscountTypePercentage, math.NaN()).Value)
	assertAmount(t, "0", NewDiscountSpec(DiscountTypePercentage, math.Inf(1)).Value)
	assertAmount(t, "0", NewDiscountSpec(DiscountTypeAmount, -5).Value)
	assertAmount(t, "12.5", NewDiscountSpec(DiscountTypeAmount, 12.5).Value)
}

func TestErrors(t *testing.T) {
	ve := NewValidationError("amount", "must be greater than %d", 0)
	assert.True(t, IsValidation(ve))
	assert.Contains(t, ve.Error(), "amount")

	ne := &NetworkError{Op: "create order", Err: assert.AnError}
	assert.True(t, IsNetwork(ne))
	assert.ErrorIs(t, ne, assert.AnError)
	assert.False(t, IsValidation(ne))

	se := &StaleEventError{OrderID: "o1", Current: OrderStatusDelivered, Incoming: OrderStatusProcessing, Reason: "regression"}
	assert.Contains(t, se.Error(), "o1")
}
