package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/atriumhq/atriumpm/modules/leasing/domain"
	"github.com/atriumhq/atriumpm/modules/leasing/services"
	propertydomain "github.com/atriumhq/atriumpm/modules/property/domain"
	"github.com/atriumhq/atriumpm/pkg/application"
	"github.com/atriumhq/atriumpm/pkg/composables"
	"github.com/atriumhq/atriumpm/pkg/httpapi"
)

type LeasesController struct {
	app      application.Application
	basePath string
}

func NewLeasesController(app application.Application) application.Controller {
	return &LeasesController{
		app:      app,
		basePath: "/api/leases",
	}
}

func (c *LeasesController) Key() string {
	return c.basePath
}

func (c *LeasesController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", c.list).Methods(http.MethodGet)
	router.HandleFunc("", c.create).Methods(http.MethodPost)
	router.HandleFunc("/occupancy", c.occupancy).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.get).Methods(http.MethodGet)
	router.HandleFunc("/{id}/sign", c.sign).Methods(http.MethodPost)
	router.HandleFunc("/{id}/terminate", c.terminate).Methods(http.MethodPost)
}

type createLeaseRequest struct {
	UnitID         string    `json:"unitId"`
	ResidentUserID string    `json:"residentUserId"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	MonthlyRent    int64     `json:"monthlyRent"`
	DepositAmount  int64     `json:"depositAmount"`
}

type leaseResponse struct {
	ID             string     `json:"id"`
	UnitID         string     `json:"unitId"`
	ResidentUserID string     `json:"residentUserId"`
	StartDate      time.Time  `json:"startDate"`
	EndDate        time.Time  `json:"endDate"`
	MonthlyRent    int64      `json:"monthlyRent"`
	DepositAmount  int64      `json:"depositAmount"`
	Status         string     `json:"status"`
	SignedAt       *time.Time `json:"signedAt,omitempty"`
}

func toLeaseResponse(l *domain.Lease) leaseResponse {
	return leaseResponse{
		ID:             l.ID.String(),
		UnitID:         l.UnitID.String(),
		ResidentUserID: l.ResidentUserID.String(),
		StartDate:      l.StartDate,
		EndDate:        l.EndDate,
		MonthlyRent:    l.MonthlyRent,
		DepositAmount:  l.DepositAmount,
		Status:         string(l.Status),
		SignedAt:       l.SignedAt,
	}
}

func (c *LeasesController) list(w http.ResponseWriter, r *http.Request) {
	params := &domain.LeaseFindParams{}
	if raw := r.URL.Query().Get("unitId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid unit id")
			return
		}
		params.UnitID = id
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		params.Status = domain.LeaseStatus(raw)
	}

	svc := c.app.Service(services.LeasingService{}).(*services.LeasingService)
	leases, err := svc.List(r.Context(), params)
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("failed to list leases")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "failed to list leases")
		return
	}

	out := make([]leaseResponse, 0, len(leases))
	for _, l := range leases {
		out = append(out, toLeaseResponse(l))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

func (c *LeasesController) create(w http.ResponseWriter, r *http.Request) {
	var req createLeaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	unitID, err := uuid.Parse(req.UnitID)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid unit id")
		return
	}
	residentID, err := uuid.Parse(req.ResidentUserID)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid resident user id")
		return
	}

	svc := c.app.Service(services.LeasingService{}).(*services.LeasingService)
	lease, err := svc.Create(r.Context(), services.CreateLeaseInput{
		UnitID:         unitID,
		ResidentUserID: residentID,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		MonthlyRent:    req.MonthlyRent,
		DepositAmount:  req.DepositAmount,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidLeaseTerm):
			_ = httpapi.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, propertydomain.ErrUnitNotFound):
			_ = httpapi.WriteError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrUnitAlreadyHeld):
			_ = httpapi.WriteError(w, http.StatusConflict, err.Error())
		default:
			composables.UseLogger(r.Context()).WithError(err).Error("failed to create lease")
			_ = httpapi.WriteError(w, http.StatusInternalServerError, "failed to create lease")
		}
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toLeaseResponse(lease))
}

func (c *LeasesController) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid lease id")
		return
	}

	svc := c.app.Service(services.LeasingService{}).(*services.LeasingService)
	lease, err := svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrLeaseNotFound) {
			_ = httpapi.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		composables.UseLogger(r.Context()).WithError(err).Error("failed to load lease")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "failed to load lease")
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toLeaseResponse(lease))
}

func (c *LeasesController) sign(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid lease id")
		return
	}

	svc := c.app.Service(services.LeasingService{}).(*services.LeasingService)
	lease, err := svc.Sign(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLeaseNotFound):
			_ = httpapi.WriteError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrLeaseNotDraft):
			_ = httpapi.WriteError(w, http.StatusConflict, err.Error())
		default:
			composables.UseLogger(r.Context()).WithError(err).Error("failed to sign lease")
			_ = httpapi.WriteError(w, http.StatusInternalServerError, "failed to sign lease")
		}
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toLeaseResponse(lease))
}

func (c *LeasesController) terminate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid lease id")
		return
	}

	svc := c.app.Service(services.LeasingService{}).(*services.LeasingService)
	lease, err := svc.Terminate(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLeaseNotFound):
			_ = httpapi.WriteError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrLeaseNotActive):
			_ = httpapi.WriteError(w, http.StatusConflict, err.Error())
		default:
			composables.UseLogger(r.Context()).WithError(err).Error("failed to terminate lease")
			_ = httpapi.WriteError(w, http.StatusInternalServerError, "failed to terminate lease")
		}
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toLeaseResponse(lease))
}

type occupancyResponse struct {
	BuildingID   string `json:"buildingId"`
	BuildingName string `json:"buildingName"`
	TotalUnits   int64  `json:"totalUnits"`
	LeasedUnits  int64  `json:"leasedUnits"`
}

func (c *LeasesController) occupancy(w http.ResponseWriter, r *http.Request) {
	svc := c.app.Service(services.LeasingService{}).(*services.LeasingService)
	report, err := svc.OccupancyReport(r.Context())
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("failed to build occupancy report")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "failed to build occupancy report")
		return
	}

	out := make([]occupancyResponse, 0, len(report))
	for _, row := range report {
		out = append(out, occupancyResponse{
			BuildingID:   row.BuildingID.String(),
			BuildingName: row.BuildingName,
			TotalUnits:   row.TotalUnits,
			LeasedUnits:  row.LeasedUnits,
		})
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}
