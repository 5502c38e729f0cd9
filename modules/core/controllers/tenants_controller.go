package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/atriumhq/atriumpm/modules/core/domain"
	"github.com/atriumhq/atriumpm/modules/core/services"
	"github.com/atriumhq/atriumpm/pkg/application"
	"github.com/atriumhq/atriumpm/pkg/composables"
	"github.com/atriumhq/atriumpm/pkg/httpapi"
)

// TenantsController exposes company onboarding. Its register route is on
// the tenant middleware's exempt list: no tenant exists yet when it runs.
type TenantsController struct {
	app      application.Application
	basePath string
}

func NewTenantsController(app application.Application) application.Controller {
	return &TenantsController{
		app:      app,
		basePath: "/api/tenants",
	}
}

func (c *TenantsController) Key() string {
	return c.basePath
}

func (c *TenantsController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/register", c.register).Methods(http.MethodPost)
}

type registerTenantRequest struct {
	Name          string `json:"name"`
	Subdomain     string `json:"subdomain"`
	AdminEmail    string `json:"adminEmail"`
	AdminPassword string `json:"adminPassword"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
}

type registerTenantResponse struct {
	TenantID  string `json:"tenantId"`
	Name      string `json:"name"`
	Subdomain string `json:"subdomain"`
	AdminID   string `json:"adminId"`
}

func (c *TenantsController) register(w http.ResponseWriter, r *http.Request) {
	logger := composables.UseLogger(r.Context())

	var req registerTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	svc := c.app.Service(services.TenantService{}).(*services.TenantService)
	result, err := svc.Register(r.Context(), services.RegisterTenantInput{
		Name:          req.Name,
		Subdomain:     req.Subdomain,
		AdminEmail:    req.AdminEmail,
		AdminPassword: req.AdminPassword,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidTenantPayload):
			_ = httpapi.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrSubdomainTaken):
			_ = httpapi.WriteError(w, http.StatusConflict, err.Error())
		default:
			logger.WithError(err).Error("tenant registration failed")
			_ = httpapi.WriteError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	logger.WithField("tenant_id", result.Tenant.ID).Info("tenant registered")
	_ = httpapi.WriteJSON(w, http.StatusCreated, registerTenantResponse{
		TenantID:  result.Tenant.ID.String(),
		Name:      result.Tenant.Name,
		Subdomain: result.Tenant.Subdomain,
		AdminID:   result.Admin.ID.String(),
	})
}
