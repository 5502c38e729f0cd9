package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/atriumhq/atriumpm/pkg/composables"
	"github.com/atriumhq/atriumpm/pkg/configuration"
	"github.com/atriumhq/atriumpm/pkg/metrics"
)

// ErrTenantUnresolved is the documented 400 body returned when neither the
// tenant header nor a principal claim yields a tenant id.
const ErrTenantUnresolved = "Tenant context could not be resolved. Provide X-Tenant-ID header or authenticate with a valid JWT."

// DefaultExemptPaths lists the path prefixes that proceed without a tenant:
// tenant registration, login, health checks and API documentation.
// Matching is a case-insensitive prefix match.
var DefaultExemptPaths = []string{
	"/api/tenants/register",
	"/api/auth/login",
	"/health",
	"/swagger",
}

// RequireTenant resolves the tenant for every non-exempt request, first
// from the tenant id header, then from the authenticated principal's
// claims. Header wins over claim. Unresolvable requests are rejected with
// 400 before any downstream handler runs, which is what lets the rest of
// the codebase assume UseTenantID succeeds on request paths.
func RequireTenant(exemptPaths ...string) mux.MiddlewareFunc {
	if len(exemptPaths) == 0 {
		exemptPaths = DefaultExemptPaths
	}
	exempt := make([]string, len(exemptPaths))
	for i, p := range exemptPaths {
		exempt[i] = strings.ToLower(p)
	}
	conf := configuration.Use()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isExemptPath(exempt, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			if raw := r.Header.Get(conf.TenantIDHeader); raw != "" {
				if tenantID, err := uuid.Parse(raw); err == nil && tenantID != uuid.Nil {
					metrics.TenantResolutions.WithLabelValues("header").Inc()
					next.ServeHTTP(w, r.WithContext(composables.WithTenantID(r.Context(), tenantID)))
					return
				}
			}

			if principal, ok := composables.UsePrincipal(r.Context()); ok {
				if tenantID, ok := principal.TenantID(); ok {
					metrics.TenantResolutions.WithLabelValues("claim").Inc()
					next.ServeHTTP(w, r.WithContext(composables.WithTenantID(r.Context(), tenantID)))
					return
				}
			}

			metrics.TenantResolutionFailures.Inc()
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": ErrTenantUnresolved})
		})
	}
}

func isExemptPath(exempt []string, path string) bool {
	lowered := strings.ToLower(path)
	for _, prefix := range exempt {
		if strings.HasPrefix(lowered, prefix) {
			return true
		}
	}
	return false
}
