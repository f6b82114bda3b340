package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestLedgerOperation(t *testing.T) {
	before := testutil.ToFloat64(ledgerOperations.WithLabelValues("payment", "ok"))
	LedgerOperation("payment", "ok")
	assert.Equal(t, before+1, testutil.ToFloat64(ledgerOperations.WithLabelValues("payment", "ok")))
}

func TestSyncEvent(t *testing.T) {
	before := testutil.ToFloat64(syncEvents.WithLabelValues("order_update", "stale"))
	SyncEvent("order_update", "stale")
	SyncEvent("order_update", "stale")
	assert.Equal(t, before+2, testutil.ToFloat64(syncEvents.WithLabelValues("order_update", "stale")))
}

func TestPushReconnectAndClamp(t *testing.T) {
	before := testutil.ToFloat64(pushReconnects)
	PushReconnect()
	assert.Equal(t, before+1, testutil.ToFloat64(pushReconnects))

	clampBefore := testutil.ToFloat64(invariantClamps.WithLabelValues("pending_amount"))
	InvariantClamp("pending_amount")
	assert.Equal(t, clampBefore+1, testutil.ToFloat64(invariantClamps.WithLabelValues("pending_amount")))
}

func TestStockAlertChange(t *testing.T) {
	before := testutil.ToFloat64(stockAlerts.WithLabelValues("OUT"))
	StockAlertChange("OUT")
	assert.Equal(t, before+1, testutil.ToFloat64(stockAlerts.WithLabelValues("OUT")))
}
