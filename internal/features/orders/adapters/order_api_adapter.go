package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"order-ledger/internal/core/config"
	"order-ledger/internal/core/httpclient"
	"order-ledger/internal/core/logger"
	"order-ledger/internal/features/orders/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderAPIAdapter implements ports.OrderAPI against the upstream order REST API.
type OrderAPIAdapter struct {
	// client is the HTTP client used for API requests.
	client *http.Client
	// baseURL is the API root without a trailing slash.
	baseURL string
}

// NewOrderAPIAdapter creates a new instance of OrderAPIAdapter.
func NewOrderAPIAdapter(cfg config.OrdersAPIConfig) *OrderAPIAdapter {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OrderAPIAdapter{
		client:  httpclient.NewAuthenticatedClient(timeout, cfg.Token),
		baseURL: strings.TrimRight(cfg.URL, "/"),
	}
}

// ListOrders fetches every order visible to the console.
func (a *OrderAPIAdapter) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var body apiOrderList
	if err := a.do(ctx, "list orders", http.MethodGet, "/orders", nil, &body); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(body.Orders))
	for _, o := range body.Orders {
		orders = append(orders, o.toDomain())
	}
	return orders, nil
}

// CreateOrder submits a new order. The client reference is echoed back on the push channel.
func (a *OrderAPIAdapter) CreateOrder(ctx context.Context, order domain.Order, clientRef string) (*domain.Order, error) {
	payload := fromDomain(order)
	payload.ID = ""
	payload.ClientRef = clientRef

	var created apiOrder
	if err := a.do(ctx, "create order", http.MethodPost, "/orders", payload, &created); err != nil {
		return nil, err
	}
	o := created.toDomain()
	return &o, nil
}

// UpdateOrder sends the order's current items, pricing, ledger and status.
func (a *OrderAPIAdapter) UpdateOrder(ctx context.Context, order domain.Order) (*domain.Order, error) {
	var updated apiOrder
	path := "/orders/" + url.PathEscape(order.ID)
	if err := a.do(ctx, "update order", http.MethodPatch, path, fromDomain(order), &updated); err != nil {
		return nil, err
	}
	o := updated.toDomain()
	return &o, nil
}

// CancelOrder cancels an order upstream.
func (a *OrderAPIAdapter) CancelOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	var cancelled apiOrder
	path := "/orders/" + url.PathEscape(orderID) + "/cancel"
	if err := a.do(ctx, "cancel order", http.MethodPost, path, nil, &cancelled); err != nil {
		return nil, err
	}
	o := cancelled.toDomain()
	return &o, nil
}

// do performs one round trip. Transport failures and 5xx responses become *domain.NetworkError,
// 404 becomes domain.ErrOrderNotFound and 400/422 become *domain.ValidationError.
func (a *OrderAPIAdapter) do(ctx context.Context, op, method, path string, in, out any) error {
	var reader io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return &domain.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return &domain.NetworkError{Op: op, Err: fmt.Errorf("order API returned status: %d", resp.StatusCode)}
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", op, domain.ErrOrderNotFound)
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return &domain.ValidationError{Field: "request", Message: readMessage(resp.Body)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("order API returned status: %d", resp.StatusCode)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func readMessage(body io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(body, 4096))
	var msg struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &msg); err == nil {
		if msg.Message != "" {
			return msg.Message
		}
		if msg.Error != "" {
			return msg.Error
		}
	}
	if s := strings.TrimSpace(string(raw)); s != "" {
		return s
	}
	return "rejected by order API"
}

// mapStatus normalizes the upstream status spellings to domain statuses.
func mapStatus(status string) domain.OrderStatus {
	normalized := strings.ToLower(strings.TrimSpace(status))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)

	switch normalized {
	case "received", "pending", "new", "placed":
		return domain.OrderStatusReceived
	case "processing", "confirmed", "accepted":
		return domain.OrderStatusProcessing
	case "packed", "ready":
		return domain.OrderStatusPacked
	case "out_for_delivery", "dispatched", "shipped":
		return domain.OrderStatusOutForDelivery
	case "delivered", "completed":
		return domain.OrderStatusDelivered
	case "cancelled", "canceled", "rejected":
		return domain.OrderStatusCancelled
	default:
		logger.Get().Warn("Unknown upstream order status", zap.String("status", status))
		return domain.OrderStatusReceived
	}
}

// internal structs for mapping

// apiOrderList is the body of GET /orders.
type apiOrderList struct {
	// Orders is the page of orders, newest first.
	Orders []apiOrder `json:"orders"`
}

// apiOrder represents the JSON structure of an order in the upstream API.
type apiOrder struct {
	// ID is the server-assigned order id.
	ID string `json:"id,omitempty"`
	// ClientRef is the provisional reference sent on creation.
	ClientRef string `json:"clientRef,omitempty"`
	// Status is the fulfilment status.
	Status string `json:"status"`
	// Source is the ordering channel (app, pos, phone).
	Source string `json:"source,omitempty"`
	// Customer holds the customer details.
	Customer apiCustomer `json:"customer"`
	// Items contains the products ordered.
	Items []apiItem `json:"items"`
	// Pricing holds the priced breakdown.
	Pricing apiPricing `json:"pricing"`
	// Payment holds the ledger.
	Payment apiPayment `json:"payment"`
	// CreatedAt is the creation timestamp.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the last modification timestamp.
	UpdatedAt time.Time `json:"updatedAt"`
}

// apiCustomer holds the customer details and membership.
type apiCustomer struct {
	// Name is the display name.
	Name string `json:"name"`
	// Elite carries the membership benefit for elite customers.
	Elite *apiElite `json:"elite,omitempty"`
}

// apiElite is the elite membership benefit.
type apiElite struct {
	// FreeDeliveryThreshold is the subtotal from which delivery is free.
	FreeDeliveryThreshold decimal.Decimal `json:"freeDeliveryThreshold"`
	// SurgeWaived removes surge charges.
	SurgeWaived bool `json:"surgeWaived"`
}

// apiItem represents a product line.
type apiItem struct {
	ProductID    string          `json:"productId"`
	VariantID    string          `json:"variantId,omitempty"`
	Name         string          `json:"name"`
	VariantLabel string          `json:"variantLabel,omitempty"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
}

// apiPricing is the priced breakdown stored upstream.
type apiPricing struct {
	Discount            *domain.DiscountSpec `json:"discount,omitempty"`
	SurgeEnabled        bool                 `json:"surgeEnabled"`
	Subtotal            decimal.Decimal      `json:"subtotal"`
	DiscountAmount      decimal.Decimal      `json:"discountAmount"`
	EliteDiscountAmount decimal.Decimal      `json:"eliteDiscountAmount"`
	DeliveryCharges     decimal.Decimal      `json:"deliveryCharges"`
	SurgeCharges        decimal.Decimal      `json:"surgeCharges"`
	GSTAmount           decimal.Decimal      `json:"gstAmount"`
	GSTOverridden       bool                 `json:"gstOverridden"`
	Total               decimal.Decimal      `json:"total"`
}

// apiPayment is the ledger stored upstream. Derived amounts are recomputed locally.
type apiPayment struct {
	PaidAmount     decimal.Decimal        `json:"paidAmount"`
	RefundedAmount decimal.Decimal        `json:"refundedAmount"`
	Records        []domain.PaymentRecord `json:"records"`
	Refunds        []domain.RefundRecord  `json:"refunds"`
}

// toDomain converts an API order into a domain Order and re-derives its balances.
func (o apiOrder) toDomain() domain.Order {
	order := domain.Order{
		ID:                  o.ID,
		CustomerName:        o.Customer.Name,
		Source:              o.Source,
		Discount:            o.Pricing.Discount,
		SurgeEnabled:        o.Pricing.SurgeEnabled,
		SubtotalAmount:      o.Pricing.Subtotal,
		DiscountAmount:      o.Pricing.DiscountAmount,
		EliteDiscountAmount: o.Pricing.EliteDiscountAmount,
		DeliveryCharges:     o.Pricing.DeliveryCharges,
		SurgeCharges:        o.Pricing.SurgeCharges,
		GSTAmount:           o.Pricing.GSTAmount,
		GSTOverridden:       o.Pricing.GSTOverridden,
		TotalAmount:         o.Pricing.Total,
		PaidAmount:          o.Payment.PaidAmount,
		RefundedAmount:      o.Payment.RefundedAmount,
		PaymentRecords:      o.Payment.Records,
		RefundRecords:       o.Payment.Refunds,
		Status:              mapStatus(o.Status),
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
	if o.Customer.Elite != nil {
		order.Membership = &domain.MembershipBenefit{
			FreeDeliveryThreshold: o.Customer.Elite.FreeDeliveryThreshold,
			SurgeWaived:           o.Customer.Elite.SurgeWaived,
		}
	}
	for _, it := range o.Items {
		order.Items = append(order.Items, domain.LineItem{
			ProductID:    it.ProductID,
			VariantID:    it.VariantID,
			Name:         it.Name,
			VariantLabel: it.VariantLabel,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
		})
	}
	order.Reconcile()
	return order
}

// fromDomain converts a domain Order into the API representation.
func fromDomain(order domain.Order) apiOrder {
	out := apiOrder{
		ID:       order.ID,
		Status:   string(order.Status),
		Source:   order.Source,
		Customer: apiCustomer{Name: order.CustomerName},
		Pricing: apiPricing{
			Discount:            order.Discount,
			SurgeEnabled:        order.SurgeEnabled,
			Subtotal:            order.SubtotalAmount,
			DiscountAmount:      order.DiscountAmount,
			EliteDiscountAmount: order.EliteDiscountAmount,
			DeliveryCharges:     order.DeliveryCharges,
			SurgeCharges:        order.SurgeCharges,
			GSTAmount:           order.GSTAmount,
			GSTOverridden:       order.GSTOverridden,
			Total:               order.TotalAmount,
		},
		Payment: apiPayment{
			PaidAmount:     order.PaidAmount,
			RefundedAmount: order.RefundedAmount,
			Records:        order.PaymentRecords,
			Refunds:        order.RefundRecords,
		},
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
	if order.Membership != nil {
		out.Customer.Elite = &apiElite{
			FreeDeliveryThreshold: order.Membership.FreeDeliveryThreshold,
			SurgeWaived:           order.Membership.SurgeWaived,
		}
	}
	out.Items = make([]apiItem, 0, len(order.Items))
	for _, it := range order.Items {
		out.Items = append(out.Items, apiItem{
			ProductID:    it.ProductID,
			VariantID:    it.VariantID,
			Name:         it.Name,
			VariantLabel: it.VariantLabel,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
		})
	}
	return out
}
