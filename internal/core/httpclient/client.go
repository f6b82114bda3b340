package httpclient

import (
	"net/http"
	"time"

	"order-ledger/internal/core/logger"

	"go.uber.org/zap"
)

// LoggingRoundTripper logs every outbound request with its status and latency.
type LoggingRoundTripper struct {
	// Proxied is the underlying RoundTripper to execute the request.
	Proxied http.RoundTripper
}

// RoundTrip executes the request and logs details.
func (lrt *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := lrt.Proxied.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		logger.Get().Warn("Upstream request failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Get().Debug("Upstream request completed",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	return resp, nil
}

// BearerRoundTripper adds an Authorization header to requests that carry none.
type BearerRoundTripper struct {
	// Token is the bearer credential.
	Token string
	// Proxied is the underlying RoundTripper.
	Proxied http.RoundTripper
}

// RoundTrip clones the request before mutating headers, as required by http.RoundTripper.
func (b *BearerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if b.Token == "" || req.Header.Get("Authorization") != "" {
		return b.Proxied.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+b.Token)
	return b.Proxied.RoundTrip(clone)
}

// NewClient returns an http.Client with logging middleware.
func NewClient(timeout time.Duration) *http.Client {
	return NewAuthenticatedClient(timeout, "")
}

// NewAuthenticatedClient returns a logging client that also sends a bearer token.
func NewAuthenticatedClient(timeout time.Duration, token string) *http.Client {
	return &http.Client{
		Transport: &BearerRoundTripper{
			Token:   token,
			Proxied: &LoggingRoundTripper{Proxied: http.DefaultTransport},
		},
		Timeout: timeout,
	}
}
