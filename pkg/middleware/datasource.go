package middleware

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/atriumhq/atriumpm/pkg/composables"
	"github.com/atriumhq/atriumpm/pkg/tenantdb"
)

// TenantDatasource swaps the request's connection pool for the tenant's
// dedicated database when one is configured. Runs after RequireTenant;
// requests without a tenant (exempt paths) keep the default pool. A
// routing failure also keeps the default pool, matching the resolver's
// degrade-to-default contract.
func TenantDatasource(resolver *tenantdb.Resolver, pools *tenantdb.Pools) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID, err := composables.UseTenantID(r.Context())
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			dsn := resolver.Resolve(r.Context(), tenantID)
			pool, err := pools.Get(r.Context(), dsn)
			if err != nil {
				composables.UseLogger(r.Context()).WithError(err).Warn("tenant pool unavailable, using default")
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(composables.WithPool(r.Context(), pool)))
		})
	}
}
