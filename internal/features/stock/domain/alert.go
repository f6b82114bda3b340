package domain

import (
	"errors"
	"time"
)

// AlertLevel represents how critical a stock shortage is.
type AlertLevel string

const (
	AlertLevelLow AlertLevel = "LOW"
	AlertLevelOut AlertLevel = "OUT"
)

var (
	ErrInvalidProduct = errors.New("product id is required")
	ErrNegativeStock  = errors.New("stock cannot be negative")
)

// Alert flags a product variant whose stock fell to or below the threshold.
type Alert struct {
	ProductID string     `json:"productId"`
	VariantID string     `json:"variantId,omitempty"`
	Level     AlertLevel `json:"level"`
	Stock     int        `json:"stock"`
	Threshold int        `json:"threshold"`
	RaisedAt  time.Time  `json:"raisedAt"`
}

// LevelFor returns the alert level for a stock count, or false when no alert is due.
func LevelFor(stock, threshold int) (AlertLevel, bool) {
	switch {
	case stock <= 0:
		return AlertLevelOut, true
	case stock <= threshold:
		return AlertLevelLow, true
	default:
		return "", false
	}
}

// NewAlert validates the stock change and builds the alert it raises. A nil alert with a nil
// error means the stock is healthy.
func NewAlert(productID, variantID string, stock, threshold int, now time.Time) (*Alert, error) {
	if productID == "" {
		return nil, ErrInvalidProduct
	}
	if stock < 0 {
		return nil, ErrNegativeStock
	}

	level, ok := LevelFor(stock, threshold)
	if !ok {
		return nil, nil
	}

	return &Alert{
		ProductID: productID,
		VariantID: variantID,
		Level:     level,
		Stock:     stock,
		Threshold: threshold,
		RaisedAt:  now,
	}, nil
}
