// Package domain holds the console access policy. Decide is pure: it maps a role and a
// request to a routing decision and leaves enforcement to the caller.
package domain

import (
	"fmt"
	"net/http"
	"strings"
)

// Role is a console operator role.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleHubManager   Role = "hub_manager"
	RoleStoreManager Role = "store_manager"
	RoleViewer       Role = "viewer"
)

// LoginPath is where callers without a known role are sent.
const LoginPath = "/login"

var homes = map[Role]string{
	RoleAdmin:        "/orders",
	RoleHubManager:   "/hub/orders",
	RoleStoreManager: "/store/orders",
	RoleViewer:       "/reports",
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := homes[r]
	return ok
}

// Home is the landing page of the role.
func (r Role) Home() string {
	if home, ok := homes[r]; ok {
		return home
	}
	return LoginPath
}

// Decision is the outcome of an access check. RedirectTo is set when access is denied.
type Decision struct {
	Allow      bool   `json:"allow"`
	RedirectTo string `json:"redirectTo,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

type rule struct {
	method  string
	pattern string
	roles   []Role
}

// Mutations not listed here are reserved to admins.
var rules = []rule{
	{http.MethodPost, "/orders", []Role{RoleStoreManager}},
	{http.MethodPatch, "/orders/:id/items", []Role{RoleStoreManager}},
	{http.MethodPatch, "/orders/:id/status", []Role{RoleHubManager, RoleStoreManager}},
	{http.MethodPost, "/orders/:id/cancel", []Role{RoleHubManager, RoleStoreManager}},
	{http.MethodPost, "/orders/:id/payments", []Role{RoleStoreManager}},
	{http.MethodPost, "/orders/:id/refunds", []Role{RoleStoreManager}},
	{http.MethodPost, "/pricing/quote", []Role{RoleHubManager, RoleStoreManager, RoleViewer}},
	{http.MethodDelete, "/stock/alerts/*", []Role{RoleHubManager}},
}

// Decide returns whether role may perform method on path.
func Decide(role Role, method, path string) Decision {
	if !role.Valid() {
		return Decision{
			RedirectTo: LoginPath,
			Reason:     fmt.Sprintf("unknown role %q", role),
		}
	}
	if role == RoleAdmin {
		return Decision{Allow: true}
	}

	method = strings.ToUpper(method)
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return Decision{Allow: true}
	}

	for _, r := range rules {
		if r.method != method || !match(r.pattern, path) {
			continue
		}
		for _, allowed := range r.roles {
			if allowed == role {
				return Decision{Allow: true}
			}
		}
		break
	}

	return Decision{
		RedirectTo: role.Home(),
		Reason:     fmt.Sprintf("role %s cannot %s %s", role, method, path),
	}
}

// match compares slash separated segments. ":name" matches one segment and a trailing
// "*" matches one or more.
func match(pattern, path string) bool {
	ps := segments(pattern)
	xs := segments(path)

	for i, p := range ps {
		if p == "*" {
			return len(xs) > i
		}
		if i >= len(xs) {
			return false
		}
		if !strings.HasPrefix(p, ":") && p != xs[i] {
			return false
		}
	}
	return len(ps) == len(xs)
}

func segments(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
