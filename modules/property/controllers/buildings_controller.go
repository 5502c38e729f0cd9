package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/atriumhq/atriumpm/modules/property/domain"
	"github.com/atriumhq/atriumpm/modules/property/services"
	"github.com/atriumhq/atriumpm/pkg/application"
	"github.com/atriumhq/atriumpm/pkg/composables"
	"github.com/atriumhq/atriumpm/pkg/httpapi"
	"github.com/atriumhq/atriumpm/pkg/shared"
)

type BuildingsController struct {
	app      application.Application
	basePath string
}

func NewBuildingsController(app application.Application) application.Controller {
	return &BuildingsController{
		app:      app,
		basePath: "/api/buildings",
	}
}

func (c *BuildingsController) Key() string {
	return c.basePath
}

func (c *BuildingsController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", c.list).Methods(http.MethodGet)
	router.HandleFunc("", c.create).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.get).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.update).Methods(http.MethodPut)
	router.HandleFunc("/{id}", c.delete).Methods(http.MethodDelete)
	router.HandleFunc("/{id}/units", c.listUnits).Methods(http.MethodGet)
	router.HandleFunc("/{id}/units", c.createUnit).Methods(http.MethodPost)
}

type buildingPayload struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
}

type buildingResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	City       string    `json:"city"`
	State      string    `json:"state"`
	PostalCode string    `json:"postalCode"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

func toBuildingResponse(b *domain.Building) buildingResponse {
	return buildingResponse{
		ID:         b.ID.String(),
		Name:       b.Name,
		Address:    b.Address,
		City:       b.City,
		State:      b.State,
		PostalCode: b.PostalCode,
		CreatedAt:  b.CreatedDate,
		ModifiedAt: b.ModifiedDate,
	}
}

type listBuildingsQuery struct {
	City   string `form:"city"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}

func (c *BuildingsController) list(w http.ResponseWriter, r *http.Request) {
	var q listBuildingsQuery
	if err := shared.DecodeQuery(&q, r); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid query parameters")
		return
	}

	svc := c.app.Service(services.PropertyService{}).(*services.PropertyService)
	buildings, err := svc.ListBuildings(r.Context(), &domain.BuildingFindParams{
		City:   q.City,
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("failed to list buildings")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "failed to list buildings")
		return
	}

	out := make([]buildingResponse, 0, len(buildings))
	for _, b := range buildings {
		out = append(out, toBuildingResponse(b))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

func (c *BuildingsController) create(w http.ResponseWriter, r *http.Request) {
	var req buildingPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Address == "" {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "name and address are required")
		return
	}

	b := &domain.Building{
		Name:       req.Name,
		Address:    req.Address,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
	}
	svc := c.app.Service(services.PropertyService{}).(*services.PropertyService)
	if err := svc.CreateBuilding(r.Context(), b); err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("failed to create building")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "failed to create building")
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toBuildingResponse(b))
}

func (c *BuildingsController) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid building id")
		return
	}

	svc := c.app.Service(services.PropertyService{}).(*services.PropertyService)
	b, err := svc.GetBuilding(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrBuildingNotFound) {
			_ = httpapi.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		composables.UseLogger(r.Context()).WithError(err).Error("failed to load building")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "failed to load building")
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toBuildingResponse(b))
}

func (c *BuildingsController) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid building id")
		return
	}
	var req buildingPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	svc := c.app.Service(services.PropertyService{}).(*services.PropertyService)
	b, err := svc.GetBuilding(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrBuildingNotFound) {
			_ = httpapi.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		composables.UseLogger(r.Context()).WithError(err).Error("failed to load building")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "failed to load building")
		return
	}

	b.Name = req.Name
	b.Address = req.Address
	b.City = req.City
	b.State = req.State
	b.PostalCode = req.PostalCode
	if err := svc.UpdateBuilding(r.Context(), b); err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("failed to update building")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "failed to update building")
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toBuildingResponse(b))
}

func (c *BuildingsController) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid building id")
		return
	}

	svc := c.app.Service(services.PropertyService{}).(*services.PropertyService)
	if err := svc.DeleteBuilding(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, domain.ErrBuildingNotFound):
			_ = httpapi.WriteError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrUnitOccupied):
			_ = httpapi.WriteError(w, http.StatusConflict, err.Error())
		default:
			composables.UseLogger(r.Context()).WithError(err).Error("failed to delete building")
			_ = httpapi.WriteError(w, http.StatusInternalServerError, "failed to delete building")
		}
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}

type unitPayload struct {
	UnitNumber  string `json:"unitNumber"`
	Bedrooms    int    `json:"bedrooms"`
	Bathrooms   int    `json:"bathrooms"`
	SquareFeet  int    `json:"squareFeet"`
	MonthlyRent int64  `json:"monthlyRent"`
}

type unitResponse struct {
	ID          string `json:"id"`
	BuildingID  string `json:"buildingId"`
	UnitNumber  string `json:"unitNumber"`
	Bedrooms    int    `json:"bedrooms"`
	Bathrooms   int    `json:"bathrooms"`
	SquareFeet  int    `json:"squareFeet"`
	MonthlyRent int64  `json:"monthlyRent"`
	Status      string `json:"status"`
}

func toUnitResponse(u *domain.Unit) unitResponse {
	return unitResponse{
		ID:          u.ID.String(),
		BuildingID:  u.BuildingID.String(),
		UnitNumber:  u.UnitNumber,
		Bedrooms:    u.Bedrooms,
		Bathrooms:   u.Bathrooms,
		SquareFeet:  u.SquareFeet,
		MonthlyRent: u.MonthlyRent,
		Status:      string(u.Status),
	}
}

func (c *BuildingsController) listUnits(w http.ResponseWriter, r *http.Request) {
	buildingID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid building id")
		return
	}

	svc := c.app.Service(services.PropertyService{}).(*services.PropertyService)
	units, err := svc.ListUnits(r.Context(), buildingID)
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("failed to list units")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "failed to list units")
		return
	}

	out := make([]unitResponse, 0, len(units))
	for _, u := range units {
		out = append(out, toUnitResponse(u))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

func (c *BuildingsController) createUnit(w http.ResponseWriter, r *http.Request) {
	buildingID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid building id")
		return
	}
	var req unitPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UnitNumber == "" {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "unit number is required")
		return
	}

	u := &domain.Unit{
		BuildingID:  buildingID,
		UnitNumber:  req.UnitNumber,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		SquareFeet:  req.SquareFeet,
		MonthlyRent: req.MonthlyRent,
	}
	svc := c.app.Service(services.PropertyService{}).(*services.PropertyService)
	if err := svc.CreateUnit(r.Context(), u); err != nil {
		if errors.Is(err, domain.ErrBuildingNotFound) {
			_ = httpapi.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		composables.UseLogger(r.Context()).WithError(err).Error("failed to create unit")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "failed to create unit")
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toUnitResponse(u))
}
