package metrics

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TenantResolutionFailures counts requests rejected with 400 because
	// neither header nor claim produced a tenant id.
	TenantResolutionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "atriumpm",
		Subsystem: "tenancy",
		Name:      "resolution_failures_total",
		Help:      "Requests rejected because no tenant could be resolved.",
	})

	// TenantResolutions counts successful resolutions by source.
	TenantResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "atriumpm",
		Subsystem: "tenancy",
		Name:      "resolutions_total",
		Help:      "Successful tenant resolutions by source (header or claim).",
	}, []string{"source"})

	// ConnStringFallbacks counts per-tenant connection-string lookups that
	// degraded to the default DSN. A non-zero rate on a sharded deployment
	// means a tenant is being served from the shared database; alert on it.
	ConnStringFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "atriumpm",
		Subsystem: "tenancy",
		Name:      "connstring_fallbacks_total",
		Help:      "Tenant connection-string resolutions that fell back to the default DSN.",
	})
)

type PrometheusController struct {
	path string
}

func NewPrometheusController(path string) *PrometheusController {
	if path == "" {
		path = "/debug/prometheus"
	}
	return &PrometheusController{path: path}
}

func (c *PrometheusController) Key() string {
	return c.path
}

func (c *PrometheusController) Register(r *mux.Router) {
	r.Handle(c.path, promhttp.Handler()).Methods(http.MethodGet)
}
