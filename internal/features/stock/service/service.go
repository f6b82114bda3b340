package service

import (
	"context"
	"fmt"
	"time"

	"order-ledger/internal/core/logger"
	"order-ledger/internal/core/metrics"
	"order-ledger/internal/features/stock/domain"
	"order-ledger/internal/features/stock/ports"

	"go.uber.org/zap"
)

// AlertServiceImpl implements ports.AlertService. It keeps one alert per product variant
// whose stock is at or below the threshold, and clears it once stock recovers.
type AlertServiceImpl struct {
	repo      ports.AlertRepository
	threshold int
	now       func() time.Time
	log       *zap.Logger
}

// NewAlertService creates a new AlertServiceImpl.
func NewAlertService(repo ports.AlertRepository, threshold int) *AlertServiceImpl {
	return &AlertServiceImpl{
		repo:      repo,
		threshold: threshold,
		now:       time.Now,
		log:       logger.Named("stock"),
	}
}

// HandleStockChange raises, updates or clears the alert for a variant.
func (s *AlertServiceImpl) HandleStockChange(ctx context.Context, productID, variantID string, newStock int) error {
	alert, err := domain.NewAlert(productID, variantID, newStock, s.threshold, s.now())
	if err != nil {
		return err
	}

	if alert == nil {
		if err := s.repo.Delete(ctx, productID, variantID); err != nil {
			return fmt.Errorf("service: failed to clear stock alert: %w", err)
		}
		metrics.StockAlertChange("cleared")
		return nil
	}

	if err := s.repo.Save(ctx, alert); err != nil {
		return fmt.Errorf("service: failed to save stock alert: %w", err)
	}
	metrics.StockAlertChange(string(alert.Level))

	s.log.Info("Stock alert raised",
		zap.String("product_id", productID),
		zap.String("variant_id", variantID),
		zap.String("level", string(alert.Level)),
		zap.Int("stock", newStock),
	)
	return nil
}

// ListAlerts returns the active alerts.
func (s *AlertServiceImpl) ListAlerts(ctx context.Context) ([]domain.Alert, error) {
	alerts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list stock alerts: %w", err)
	}
	return alerts, nil
}

// ClearAlert dismisses an alert manually.
func (s *AlertServiceImpl) ClearAlert(ctx context.Context, productID, variantID string) error {
	if productID == "" {
		return domain.ErrInvalidProduct
	}
	if err := s.repo.Delete(ctx, productID, variantID); err != nil {
		return fmt.Errorf("service: failed to clear stock alert: %w", err)
	}
	return nil
}
