package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMode classifies a payment against the order total.
type PaymentMode string

const (
	PaymentModeFull    PaymentMode = "full"
	PaymentModePartial PaymentMode = "partial"
	// PaymentModeAdvance is collected before fulfillment, typically for pre-orders.
	PaymentModeAdvance PaymentMode = "advance"
)

// Valid reports whether m is a known mode.
func (m PaymentMode) Valid() bool {
	switch m {
	case PaymentModeFull, PaymentModePartial, PaymentModeAdvance:
		return true
	}
	return false
}

// PaymentRecordStatus is the verification state of a payment record.
type PaymentRecordStatus string

const (
	PaymentRecordConfirmed           PaymentRecordStatus = "confirmed"
	PaymentRecordPendingVerification PaymentRecordStatus = "pending_verification"
	PaymentRecordFailed              PaymentRecordStatus = "failed"
	PaymentRecordRefunded            PaymentRecordStatus = "refunded"
)

// PaymentRecord is an append-only entry of the payment ledger.
type PaymentRecord struct {
	ID              string              `json:"id"`
	OrderID         string              `json:"orderId"`
	Amount          decimal.Decimal     `json:"amount"`
	Method          string              `json:"method"`
	Mode            PaymentMode         `json:"mode"`
	TransactionID   string              `json:"transactionId,omitempty"`
	ReferenceNumber string              `json:"referenceNumber,omitempty"`
	Notes           string              `json:"notes,omitempty"`
	ReceivedBy      string              `json:"receivedBy"`
	ReceivedAt      time.Time           `json:"receivedAt"`
	Status          PaymentRecordStatus `json:"status"`
	// IdempotencyKey is the client token of the attempt that produced this record.
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

// RefundType classifies why money is returned.
type RefundType string

const (
	RefundTypeFull         RefundType = "full"
	RefundTypePartial      RefundType = "partial"
	RefundTypeItemReturn   RefundType = "item_return"
	RefundTypeCancellation RefundType = "cancellation"
	RefundTypeQualityIssue RefundType = "quality_issue"
)

// Valid reports whether t is a known refund type.
func (t RefundType) Valid() bool {
	switch t {
	case RefundTypeFull, RefundTypePartial, RefundTypeItemReturn, RefundTypeCancellation, RefundTypeQualityIssue:
		return true
	}
	return false
}

// RefundStatus is the processing state of a refund record.
type RefundStatus string

const (
	RefundStatusPending   RefundStatus = "pending"
	RefundStatusApproved  RefundStatus = "approved"
	RefundStatusProcessed RefundStatus = "processed"
	RefundStatusCompleted RefundStatus = "completed"
	RefundStatusRejected  RefundStatus = "rejected"
)

// RefundedItem is the per-item breakdown of a refund.
type RefundedItem struct {
	ProductID    string          `json:"productId"`
	VariantID    string          `json:"variantId,omitempty"`
	Name         string          `json:"name,omitempty"`
	Quantity     int             `json:"quantity"`
	RefundAmount decimal.Decimal `json:"refundAmount"`
}

// RefundRecord is an append-only entry of the refund ledger.
type RefundRecord struct {
	ID            string          `json:"id"`
	OrderID       string          `json:"orderId"`
	Amount        decimal.Decimal `json:"amount"`
	RefundType    RefundType      `json:"refundType"`
	RefundMethod  string          `json:"refundMethod"`
	Reason        string          `json:"reason"`
	Notes         string          `json:"notes,omitempty"`
	ItemsRefunded []RefundedItem  `json:"itemsRefunded,omitempty"`
	ProcessedBy   string          `json:"processedBy"`
	ProcessedAt   time.Time       `json:"processedAt"`
	ApprovedBy    string          `json:"approvedBy,omitempty"`
	ApprovedAt    *time.Time      `json:"approvedAt,omitempty"`
	Status        RefundStatus    `json:"status"`
	// IdempotencyKey is the client token of the attempt that produced this record.
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

func (r RefundRecord) clone() RefundRecord {
	c := r
	c.ItemsRefunded = append([]RefundedItem(nil), r.ItemsRefunded...)
	if r.ApprovedAt != nil {
		at := *r.ApprovedAt
		c.ApprovedAt = &at
	}
	return c
}
