package ports

import (
	"context"

	"order-ledger/internal/features/stock/domain"
)

// AlertService defines the primary port for stock alert operations.
type AlertService interface {
	HandleStockChange(ctx context.Context, productID, variantID string, newStock int) error
	ListAlerts(ctx context.Context) ([]domain.Alert, error)
	ClearAlert(ctx context.Context, productID, variantID string) error
}

// AlertRepository defines the secondary port for alert storage.
type AlertRepository interface {
	Save(ctx context.Context, alert *domain.Alert) error
	List(ctx context.Context) ([]domain.Alert, error)
	Delete(ctx context.Context, productID, variantID string) error
}
