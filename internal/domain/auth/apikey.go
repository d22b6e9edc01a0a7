// Package auth holds the API key identity model used to guard admin
// operations.
package auth

import (
	"context"
	"slices"
)

// Scopes recognized on API keys.
const (
	ScopeCatalogWrite = "catalog:write"
	ScopeOrdersManage = "orders:manage"
)

// APIKeyInfo holds the identity and permission data for a validated API key.
type APIKeyInfo struct {
	ID      string
	KeyHash string
	Name    string
	Scopes  []string
}

// HasScope reports whether the key carries the given scope. A key with the
// wildcard "*" scope passes every check.
func (k *APIKeyInfo) HasScope(scope string) bool {
	return slices.Contains(k.Scopes, "*") || slices.Contains(k.Scopes, scope)
}

// Repository provides lookup of API keys by their HMAC hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*APIKeyInfo, error)
}
