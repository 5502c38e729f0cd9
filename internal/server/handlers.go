package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/atriumhq/atriumpm/pkg/application"
	"github.com/atriumhq/atriumpm/pkg/httpapi"
)

// NotFound is the JSON fallback for unmatched routes.
func NotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, http.StatusNotFound, "resource not found")
	})
}

// HealthController answers liveness probes. Its path is on the tenant
// middleware's exempt list.
type HealthController struct{}

func NewHealthController() application.Controller {
	return &HealthController{}
}

func (c *HealthController) Key() string {
	return "/health"
}

func (c *HealthController) Register(r *mux.Router) {
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		_ = httpapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
}
