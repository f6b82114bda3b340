package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the fulfillment state of an order.
type OrderStatus string

const (
	// OrderStatusReceived indicates the order was placed and not yet picked up by a hub.
	OrderStatusReceived OrderStatus = "received"
	// OrderStatusProcessing indicates the hub is preparing the order.
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusPacked indicates the order is packed and waiting for a rider.
	OrderStatusPacked OrderStatus = "packed"
	// OrderStatusOutForDelivery indicates a rider has the order.
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	// OrderStatusDelivered indicates the customer received the order. Terminal.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled indicates the order was cancelled. Terminal.
	OrderStatusCancelled OrderStatus = "cancelled"
)

var statusRank = map[OrderStatus]int{
	OrderStatusReceived:       0,
	OrderStatusProcessing:     1,
	OrderStatusPacked:         2,
	OrderStatusOutForDelivery: 3,
	OrderStatusDelivered:      4,
	OrderStatusCancelled:      4,
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Rank orders statuses along the fulfillment flow. Both terminal states share the top rank.
func (s OrderStatus) Rank() int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return -1
}

// IsTerminal reports whether no further transition is accepted.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// PaymentStatus is derived from the payment and refund ledgers.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPartial  PaymentStatus = "partial"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// LineItem represents a product line within an order.
type LineItem struct {
	// ProductID identifies the catalogue product.
	ProductID string `json:"productId"`
	// VariantID identifies the product variant, when the product has variants.
	VariantID string `json:"variantId,omitempty"`
	// Name is the display name of the product.
	Name string `json:"name"`
	// VariantLabel describes the variant (e.g., "500 g").
	VariantLabel string `json:"variantLabel,omitempty"`
	// Quantity is the number of units ordered, at least 1.
	Quantity int `json:"quantity"`
	// UnitPrice is the price of a single unit.
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// LineTotal returns UnitPrice × Quantity.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Order is the financial view of a customer order.
// DiscountAmount includes EliteDiscountAmount, so
// TotalAmount = SubtotalAmount − DiscountAmount + DeliveryCharges + SurgeCharges + GSTAmount.
type Order struct {
	ID           string     `json:"id"`
	CustomerName string     `json:"customerName,omitempty"`
	Source       string     `json:"source,omitempty"`
	Items        []LineItem `json:"items"`

	Discount     *DiscountSpec      `json:"discount,omitempty"`
	Membership   *MembershipBenefit `json:"membership,omitempty"`
	SurgeEnabled bool               `json:"surgeEnabled,omitempty"`

	SubtotalAmount      decimal.Decimal `json:"subtotalAmount"`
	DiscountAmount      decimal.Decimal `json:"discountAmount"`
	EliteDiscountAmount decimal.Decimal `json:"eliteDiscountAmount"`
	DeliveryCharges     decimal.Decimal `json:"deliveryCharges"`
	SurgeCharges        decimal.Decimal `json:"surgeCharges"`
	GSTAmount           decimal.Decimal `json:"gstAmount"`
	// GSTOverridden marks a manually entered GST amount that repricing must keep.
	GSTOverridden bool            `json:"gstOverridden,omitempty"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`

	PaidAmount     decimal.Decimal `json:"paidAmount"`
	PendingAmount  decimal.Decimal `json:"pendingAmount"`
	RefundedAmount decimal.Decimal `json:"refundedAmount"`
	NetAmount      decimal.Decimal `json:"netAmount"`

	PaymentStatus  PaymentStatus   `json:"paymentStatus"`
	Status         OrderStatus     `json:"status"`
	PaymentRecords []PaymentRecord `json:"paymentRecords"`
	RefundRecords  []RefundRecord  `json:"refundRecords"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Clone returns a deep copy so callers can build the next state without touching the current one.
func (o Order) Clone() Order {
	c := o
	c.Items = append([]LineItem(nil), o.Items...)
	c.PaymentRecords = append([]PaymentRecord(nil), o.PaymentRecords...)
	c.RefundRecords = make([]RefundRecord, len(o.RefundRecords))
	for i, r := range o.RefundRecords {
		c.RefundRecords[i] = r.clone()
	}
	if o.Discount != nil {
		d := *o.Discount
		c.Discount = &d
	}
	if o.Membership != nil {
		m := *o.Membership
		c.Membership = &m
	}
	return c
}

// Refundable is the amount still available for refunds.
func (o Order) Refundable() decimal.Decimal {
	return NonNegative(o.PaidAmount.Sub(o.RefundedAmount))
}

// FindItem returns the line item for a product, if ordered.
func (o Order) FindItem(productID, variantID string) (LineItem, bool) {
	for _, it := range o.Items {
		if it.ProductID == productID && (variantID == "" || it.VariantID == variantID) {
			return it, true
		}
	}
	return LineItem{}, false
}

// NewOrderFromSummary builds a confirmed order from a push summary that carries only a total.
func NewOrderFromSummary(id, customerName, source string, total decimal.Decimal, createdAt time.Time) Order {
	total = NonNegative(total)
	o := Order{
		ID:             id,
		CustomerName:   customerName,
		Source:         source,
		Status:         OrderStatusReceived,
		SubtotalAmount: total,
		TotalAmount:    total,
		CreatedAt:      createdAt,
	}
	o.Reconcile()
	return o
}
