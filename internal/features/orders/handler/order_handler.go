package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"order-ledger/internal/core/logger"
	ledger "order-ledger/internal/features/ledger/service"
	"order-ledger/internal/features/orders/domain"
	"order-ledger/internal/features/orders/ports"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// IdempotencyHeader carries the idempotency key of a payment or refund attempt.
const IdempotencyHeader = "Idempotency-Key"

// OrderHandler handles HTTP requests related to orders.
type OrderHandler struct {
	// service is the OrderService instance.
	service ports.OrderService
	// validate checks request bodies.
	validate *validator.Validate
}

// NewOrderHandler creates a new instance of OrderHandler.
func NewOrderHandler(s ports.OrderService) *OrderHandler {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &OrderHandler{
		service:  s,
		validate: v,
	}
}

// Register mounts the order routes on router.
func (h *OrderHandler) Register(router fiber.Router) {
	router.Get("/orders", h.ListOrders)
	router.Get("/orders/totals", h.GetTotals)
	router.Get("/orders/:id", h.GetOrder)
	router.Post("/orders", h.CreateOrder)
	router.Patch("/orders/:id/items", h.EditItems)
	router.Patch("/orders/:id/status", h.UpdateStatus)
	router.Post("/orders/:id/cancel", h.CancelOrder)
	router.Post("/orders/:id/payments", h.RecordPayment)
	router.Post("/orders/:id/refunds", h.RecordRefund)
	router.Post("/pricing/quote", h.Quote)
}

// LineItemRequest is one line of an order request.
type LineItemRequest struct {
	ProductID    string          `json:"productId" validate:"required"`
	VariantID    string          `json:"variantId"`
	Name         string          `json:"name"`
	VariantLabel string          `json:"variantLabel"`
	Quantity     int             `json:"quantity" validate:"min=1"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
}

// DiscountRequest is the operator discount of an order request.
type DiscountRequest struct {
	Type  domain.DiscountType `json:"type" validate:"required,oneof=percentage amount"`
	Value decimal.Decimal     `json:"value"`
}

// CreateOrderRequest represents the request body for creating or quoting an order.
type CreateOrderRequest struct {
	CustomerName string            `json:"customerName"`
	Source       string            `json:"source"`
	Items        []LineItemRequest `json:"items" validate:"required,min=1,dive"`
	Discount     *DiscountRequest  `json:"discount"`
	Elite        bool              `json:"elite"`
	SurgeEnabled *bool             `json:"surgeEnabled"`
	// GSTOverride replaces the computed GST when present.
	GSTOverride *decimal.Decimal `json:"gstOverride"`
}

// EditItemsRequest represents the request body for replacing an order's items.
type EditItemsRequest struct {
	Items []LineItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateStatusRequest represents the request body for a status change.
type UpdateStatusRequest struct {
	Status domain.OrderStatus `json:"status" validate:"required"`
}

// PaymentRequest represents the request body for recording a payment.
type PaymentRequest struct {
	Amount          decimal.Decimal    `json:"amount"`
	Method          string             `json:"method" validate:"required"`
	Mode            domain.PaymentMode `json:"mode" validate:"omitempty,oneof=full partial advance"`
	TransactionID   string             `json:"transactionId"`
	ReferenceNumber string             `json:"referenceNumber"`
	Notes           string             `json:"notes"`
	ReceivedBy      string             `json:"receivedBy"`
	IdempotencyKey  string             `json:"idempotencyKey"`
}

// RefundRequest represents the request body for recording a refund.
type RefundRequest struct {
	// Amount may be omitted for full refunds.
	Amount         *decimal.Decimal      `json:"amount"`
	RefundType     domain.RefundType     `json:"refundType" validate:"required"`
	RefundMethod   string                `json:"refundMethod" validate:"required"`
	Reason         string                `json:"reason" validate:"required"`
	Notes          string                `json:"notes"`
	ItemsRefunded  []domain.RefundedItem `json:"itemsRefunded"`
	ProcessedBy    string                `json:"processedBy"`
	ApprovedBy     string                `json:"approvedBy"`
	IdempotencyKey string                `json:"idempotencyKey"`
}

// ListOrders handles GET /orders.
// @Summary List orders
// @Description Returns orders newest first, provisional ones included.
// @Tags Orders
// @Produce json
// @Param status query string false "Filter by status"
// @Success 200 {array} domain.Order
// @Failure 400 {object} ErrorResponse
// @Router /orders [get]
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	status := domain.OrderStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: fmt.Sprintf("Unknown status %q", status),
			RayID:   rayID(c),
		})
	}
	return c.Status(http.StatusOK).JSON(h.service.List(status))
}

// GetTotals handles GET /orders/totals.
// @Summary Ledger totals
// @Description Aggregates total, paid, pending, refunded and net amounts over confirmed orders.
// @Tags Orders
// @Produce json
// @Success 200 {object} domain.Totals
// @Router /orders/totals [get]
func (h *OrderHandler) GetTotals(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(h.service.Totals())
}

// GetOrder handles GET /orders/:id.
// @Summary Get Order by ID
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 404 {object} ErrorResponse
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	order, err := h.service.Get(c.Params("id"))
	if err != nil {
		return h.fail(c, "Failed to fetch order", err)
	}
	return c.Status(http.StatusOK).JSON(order)
}

// CreateOrder handles POST /orders.
// @Summary Create an order
// @Description Prices and submits a new order. When the order API is unreachable the order is kept locally and synced is false.
// @Tags Orders
// @Accept json
// @Produce json
// @Param order body CreateOrderRequest true "Order details"
// @Success 201 {object} ports.Mutation
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /orders [post]
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := h.parse(c, &req); err != nil {
		return badRequest(c, err)
	}

	res, err := h.service.CreateOrder(c.Context(), req.toInput())
	if err != nil {
		return h.fail(c, "Failed to create order", err)
	}
	return c.Status(http.StatusCreated).JSON(res)
}

// Quote handles POST /pricing/quote.
// @Summary Price an order
// @Description Computes the pricing breakdown of an order without creating it.
// @Tags Pricing
// @Accept json
// @Produce json
// @Param order body CreateOrderRequest true "Order details"
// @Success 200 {object} pricing.Quote
// @Failure 400 {object} ErrorResponse
// @Router /pricing/quote [post]
func (h *OrderHandler) Quote(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := h.parse(c, &req); err != nil {
		return badRequest(c, err)
	}
	return c.Status(http.StatusOK).JSON(h.service.Quote(req.toInput()))
}

// EditItems handles PATCH /orders/:id/items.
// @Summary Replace order items
// @Description Replaces the items and reprices the order.
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param items body EditItemsRequest true "New items"
// @Success 200 {object} ports.Mutation
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /orders/{id}/items [patch]
func (h *OrderHandler) EditItems(c *fiber.Ctx) error {
	var req EditItemsRequest
	if err := h.parse(c, &req); err != nil {
		return badRequest(c, err)
	}

	res, err := h.service.EditItems(c.Context(), c.Params("id"), toLineItems(req.Items))
	if err != nil {
		return h.fail(c, "Failed to edit order items", err)
	}
	return c.Status(http.StatusOK).JSON(res)
}

// UpdateStatus handles PATCH /orders/:id/status.
// @Summary Change order status
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param status body UpdateStatusRequest true "New status"
// @Success 200 {object} ports.Mutation
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var req UpdateStatusRequest
	if err := h.parse(c, &req); err != nil {
		return badRequest(c, err)
	}

	res, err := h.service.UpdateStatus(c.Context(), c.Params("id"), req.Status)
	if err != nil {
		return h.fail(c, "Failed to update order status", err)
	}
	return c.Status(http.StatusOK).JSON(res)
}

// CancelOrder handles POST /orders/:id/cancel.
// @Summary Cancel an order
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} ports.Mutation
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	res, err := h.service.Cancel(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, "Failed to cancel order", err)
	}
	return c.Status(http.StatusOK).JSON(res)
}

// RecordPayment handles POST /orders/:id/payments.
// @Summary Record a payment
// @Description Appends a payment record. Retrying with the same Idempotency-Key returns the original record.
// @Tags Ledger
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param Idempotency-Key header string false "Idempotency key"
// @Param payment body PaymentRequest true "Payment details"
// @Success 201 {object} ports.PaymentOutcome
// @Success 200 {object} ports.PaymentOutcome "Replayed"
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /orders/{id}/payments [post]
func (h *OrderHandler) RecordPayment(c *fiber.Ctx) error {
	var req PaymentRequest
	if err := h.parse(c, &req); err != nil {
		return badRequest(c, err)
	}

	res, err := h.service.RecordPayment(c.Context(), c.Params("id"), ledger.PaymentRequest{
		Amount:          req.Amount,
		Method:          req.Method,
		Mode:            req.Mode,
		TransactionID:   req.TransactionID,
		ReferenceNumber: req.ReferenceNumber,
		Notes:           req.Notes,
		ReceivedBy:      req.ReceivedBy,
		IdempotencyKey:  idempotencyKey(c, req.IdempotencyKey),
	})
	if err != nil {
		return h.fail(c, "Failed to record payment", err)
	}
	if res.Replayed {
		return c.Status(http.StatusOK).JSON(res)
	}
	return c.Status(http.StatusCreated).JSON(res)
}

// RecordRefund handles POST /orders/:id/refunds.
// @Summary Record a refund
// @Description Appends a refund record. Retrying with the same Idempotency-Key returns the original record.
// @Tags Ledger
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param Idempotency-Key header string false "Idempotency key"
// @Param refund body RefundRequest true "Refund details"
// @Success 201 {object} ports.RefundOutcome
// @Success 200 {object} ports.RefundOutcome "Replayed"
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /orders/{id}/refunds [post]
func (h *OrderHandler) RecordRefund(c *fiber.Ctx) error {
	var req RefundRequest
	if err := h.parse(c, &req); err != nil {
		return badRequest(c, err)
	}

	in := ledger.RefundRequest{
		RefundType:     req.RefundType,
		RefundMethod:   req.RefundMethod,
		Reason:         req.Reason,
		Notes:          req.Notes,
		ItemsRefunded:  req.ItemsRefunded,
		ProcessedBy:    req.ProcessedBy,
		ApprovedBy:     req.ApprovedBy,
		IdempotencyKey: idempotencyKey(c, req.IdempotencyKey),
	}
	if req.Amount != nil {
		in.Amount = decimal.NewNullDecimal(*req.Amount)
	}

	res, err := h.service.RecordRefund(c.Context(), c.Params("id"), in)
	if err != nil {
		return h.fail(c, "Failed to record refund", err)
	}
	if res.Replayed {
		return c.Status(http.StatusOK).JSON(res)
	}
	return c.Status(http.StatusCreated).JSON(res)
}

// parse decodes and validates the body. The returned error is safe to show to the caller.
func (h *OrderHandler) parse(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return errors.New("invalid request body")
	}
	if err := h.validate.Struct(out); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("invalid field %s: failed on %s", fe.Namespace(), fe.Tag())
		}
		return err
	}
	return nil
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
		Message: err.Error(),
		RayID:   rayID(c),
	})
}

// fail maps a service error to a response.
func (h *OrderHandler) fail(c *fiber.Ctx, msg string, err error) error {
	id := rayID(c)
	status := http.StatusInternalServerError
	message := "Internal Server Error"

	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		status = http.StatusUnprocessableEntity
		message = vErr.Error()
	case errors.Is(err, domain.ErrOrderNotFound):
		status = http.StatusNotFound
		message = "Order not found"
	case domain.IsNetwork(err):
		status = http.StatusServiceUnavailable
		message = "Order API unavailable"
	}

	if status >= http.StatusInternalServerError {
		logger.Get().Error(msg,
			zap.String("order_id", c.Params("id")),
			zap.String("ray_id", id),
			zap.Error(err),
		)
	} else {
		logger.Get().Debug(msg,
			zap.String("order_id", c.Params("id")),
			zap.String("ray_id", id),
			zap.Error(err),
		)
	}

	return c.Status(status).JSON(ErrorResponse{
		Message: message,
		RayID:   id,
	})
}

func (r CreateOrderRequest) toInput() ports.CreateOrderInput {
	in := ports.CreateOrderInput{
		CustomerName: r.CustomerName,
		Source:       r.Source,
		Items:        toLineItems(r.Items),
		Elite:        r.Elite,
		SurgeEnabled: r.SurgeEnabled,
	}
	if r.Discount != nil {
		in.Discount = &domain.DiscountSpec{Type: r.Discount.Type, Value: r.Discount.Value}
	}
	if r.GSTOverride != nil {
		in.GSTOverride = decimal.NewNullDecimal(*r.GSTOverride)
	}
	return in
}

func toLineItems(items []LineItemRequest) []domain.LineItem {
	out := make([]domain.LineItem, 0, len(items))
	for _, it := range items {
		out = append(out, domain.LineItem{
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

func idempotencyKey(c *fiber.Ctx, body string) string {
	if key := strings.TrimSpace(c.Get(IdempotencyHeader)); key != "" {
		return key
	}
	return body
}

func rayID(c *fiber.Ctx) string {
	id, ok := c.Locals("requestid").(string)
	if !ok {
		return "unknown"
	}
	return id
}

// ErrorResponse represents the structure of an error response.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for debugging.
	RayID string `json:"ray_id"`
}
