package middleware

import (
	"context"
	"net/http"
)

const tenantHeader = "X-Tenant-ID"

type tenantContextKey struct{}

// Tenant resolves the requesting tenant from the X-Tenant-ID header, falling
// back to the configured default, and stores it in the request context.
func Tenant(defaultTenant string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID := r.Header.Get(tenantHeader)
			if tenantID == "" {
				tenantID = defaultTenant
			}
			ctx := context.WithValue(r.Context(), tenantContextKey{}, tenantID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TenantFromContext returns the tenant id stored by the Tenant middleware.
func TenantFromContext(ctx context.Context) string {
	tenantID, _ := ctx.Value(tenantContextKey{}).(string)
	return tenantID
}
