package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"order-ledger/internal/core/cache"
	"order-ledger/internal/features/stock/domain"
)

const alertKeyPrefix = "stock_alert:"

// RedisAlertRepository implements ports.AlertRepository using the cache adaptation.
type RedisAlertRepository struct {
	cache cache.Cache
	// ttl expires alerts nobody clears. 0 keeps them until deleted.
	ttl time.Duration
}

// NewRedisAlertRepository creates a new RedisAlertRepository.
func NewRedisAlertRepository(c cache.Cache, ttl time.Duration) *RedisAlertRepository {
	return &RedisAlertRepository{
		cache: c,
		ttl:   ttl,
	}
}

func alertKey(productID, variantID string) string {
	return alertKeyPrefix + productID + ":" + variantID
}

// Save stores the alert in the cache, replacing any previous alert for the variant.
func (r *RedisAlertRepository) Save(ctx context.Context, alert *domain.Alert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal stock alert: %w", err)
	}

	if err := r.cache.Set(ctx, alertKey(alert.ProductID, alert.VariantID), data, r.ttl); err != nil {
		return fmt.Errorf("failed to save stock alert to cache: %w", err)
	}

	return nil
}

// List returns every stored alert ordered by product and variant.
func (r *RedisAlertRepository) List(ctx context.Context) ([]domain.Alert, error) {
	keys, err := r.cache.Keys(ctx, alertKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock alerts: %w", err)
	}

	alerts := make([]domain.Alert, 0, len(keys))
	for _, key := range keys {
		data, err := r.cache.Get(ctx, key)
		if errors.Is(err, cache.ErrKeyNotFound) {
			// Expired or cleared since the scan.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get stock alert from cache: %w", err)
		}

		var alert domain.Alert
		if err := json.Unmarshal(data, &alert); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stock alert %s: %w", key, err)
		}
		alerts = append(alerts, alert)
	}

	sort.Slice(alerts, func(i, j int) bool {
		if alerts[i].ProductID != alerts[j].ProductID {
			return alerts[i].ProductID < alerts[j].ProductID
		}
		return alerts[i].VariantID < alerts[j].VariantID
	})
	return alerts, nil
}

// Delete removes the alert for a variant. Deleting a missing alert is not an error.
func (r *RedisAlertRepository) Delete(ctx context.Context, productID, variantID string) error {
	if err := r.cache.Delete(ctx, alertKey(productID, variantID)); err != nil {
		return fmt.Errorf("failed to delete stock alert from cache: %w", err)
	}
	return nil
}
