package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name   string
		role   Role
		method string
		path   string
		allow  bool
	}{
		{"AdminAnything", RoleAdmin, "POST", "/orders/ord-1/refunds", true},
		{"AdminUnlisted", RoleAdmin, "PUT", "/settings", true},
		{"ViewerReads", RoleViewer, "GET", "/orders/totals", true},
		{"ViewerQuotes", RoleViewer, "POST", "/pricing/quote", true},
		{"ViewerCannotPay", RoleViewer, "POST", "/orders/ord-1/payments", false},
		{"StoreCreates", RoleStoreManager, "POST", "/orders", true},
		{"StoreRefunds", RoleStoreManager, "post", "/orders/ord-1/refunds/", true},
		{"StoreCannotClearAlerts", RoleStoreManager, "DELETE", "/stock/alerts/mango/1kg", false},
		{"HubStatus", RoleHubManager, "PATCH", "/orders/ord-1/status", true},
		{"HubCannotEditItems", RoleHubManager, "PATCH", "/orders/ord-1/items", false},
		{"HubClearsAlert", RoleHubManager, "DELETE", "/stock/alerts/mango/1kg", true},
		{"HubClearsAlertWithoutVariant", RoleHubManager, "DELETE", "/stock/alerts/mango", true},
		{"HubCannotDeleteAlertList", RoleHubManager, "DELETE", "/stock/alerts", false},
		{"UnlistedMutation", RoleStoreManager, "PUT", "/orders/ord-1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.role, tt.method, tt.path)
			assert.Equal(t, tt.allow, d.Allow)
			if tt.allow {
				assert.Empty(t, d.RedirectTo)
			} else {
				assert.Equal(t, tt.role.Home(), d.RedirectTo)
				assert.NotEmpty(t, d.Reason)
			}
		})
	}
}

func TestDecide_UnknownRole(t *testing.T) {
	for _, role := range []Role{"", "superuser"} {
		d := Decide(role, "GET", "/orders")
		assert.False(t, d.Allow)
		assert.Equal(t, LoginPath, d.RedirectTo)
	}
}

func TestMatch(t *testing.T) {
	assert.True(t, match("/orders/:id/status", "/orders/42/status"))
	assert.False(t, match("/orders/:id/status", "/orders/42"))
	assert.False(t, match("/orders", "/orders/42"))
	assert.True(t, match("/stock/alerts/*", "/stock/alerts/a/b"))
	assert.False(t, match("/stock/alerts/*", "/stock/alerts"))
}
