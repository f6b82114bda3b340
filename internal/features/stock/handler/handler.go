package handler

import (
	"errors"
	"net/http"

	"order-ledger/internal/core/logger"
	"order-ledger/internal/features/stock/domain"
	"order-ledger/internal/features/stock/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AlertHandler handles HTTP requests for stock alerts.
type AlertHandler struct {
	service ports.AlertService
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(service ports.AlertService) *AlertHandler {
	return &AlertHandler{
		service: service,
	}
}

// Register mounts the stock alert routes on router.
func (h *AlertHandler) Register(router fiber.Router) {
	router.Get("/stock/alerts", h.ListAlerts)
	router.Delete("/stock/alerts/:productId/:variantId?", h.ClearAlert)
}

// ListAlerts handles GET /stock/alerts.
// @Summary List stock alerts
// @Description Returns the product variants at or below the low-stock threshold.
// @Tags Stock
// @Produce json
// @Success 200 {array} domain.Alert
// @Failure 500 {object} map[string]string
// @Router /stock/alerts [get]
func (h *AlertHandler) ListAlerts(c *fiber.Ctx) error {
	alerts, err := h.service.ListAlerts(c.Context())
	if err != nil {
		logger.Get().Error("Failed to list stock alerts", zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.Status(http.StatusOK).JSON(alerts)
}

// ClearAlert handles DELETE /stock/alerts/:productId/:variantId.
// @Summary Dismiss a stock alert
// @Tags Stock
// @Produce json
// @Param productId path string true "Product ID"
// @Param variantId path string true "Variant ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /stock/alerts/{productId}/{variantId} [delete]
func (h *AlertHandler) ClearAlert(c *fiber.Ctx) error {
	productID := c.Params("productId")
	variantID := c.Params("variantId")

	if err := h.service.ClearAlert(c.Context(), productID, variantID); err != nil {
		if errors.Is(err, domain.ErrInvalidProduct) {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error": "Product ID is required",
			})
		}
		logger.Get().Error("Failed to clear stock alert",
			zap.String("product_id", productID),
			zap.String("variant_id", variantID),
			zap.Error(err),
		)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Stock alert cleared",
	})
}
