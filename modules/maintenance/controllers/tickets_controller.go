package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/atriumhq/atriumpm/modules/maintenance/domain"
	"github.com/atriumhq/atriumpm/modules/maintenance/services"
	"github.com/atriumhq/atriumpm/pkg/application"
	"github.com/atriumhq/atriumpm/pkg/composables"
	"github.com/atriumhq/atriumpm/pkg/httpapi"
)

type TicketsController struct {
	app      application.Application
	basePath string
}

func NewTicketsController(app application.Application) application.Controller {
	return &TicketsController{
		app:      app,
		basePath: "/api/maintenance",
	}
}

func (c *TicketsController) Key() string {
	return c.basePath
}

func (c *TicketsController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/tickets", c.list).Methods(http.MethodGet)
	router.HandleFunc("/tickets", c.create).Methods(http.MethodPost)
	router.HandleFunc("/tickets/{id}", c.get).Methods(http.MethodGet)
	router.HandleFunc("/tickets/{id}/status", c.setStatus).Methods(http.MethodPut)
	router.HandleFunc("/tickets/{id}/work-orders", c.listWorkOrders).Methods(http.MethodGet)
	router.HandleFunc("/work-orders", c.schedule).Methods(http.MethodPost)
	router.HandleFunc("/work-orders/{id}/complete", c.complete).Methods(http.MethodPost)
}

type ticketResponse struct {
	ID          string `json:"id"`
	UnitID      string `json:"unitId"`
	ReportedBy  string `json:"reportedBy"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
}

func toTicketResponse(t *domain.Ticket) ticketResponse {
	return ticketResponse{
		ID:          t.ID.String(),
		UnitID:      t.UnitID.String(),
		ReportedBy:  t.ReportedByUserID.String(),
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
	}
}

type workOrderResponse struct {
	ID           string     `json:"id"`
	TicketID     string     `json:"ticketId"`
	AssignedTo   string     `json:"assignedTo"`
	Notes        string     `json:"notes"`
	ScheduledFor time.Time  `json:"scheduledFor"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	Status       string     `json:"status"`
}

func toWorkOrderResponse(w *domain.WorkOrder) workOrderResponse {
	return workOrderResponse{
		ID:           w.ID.String(),
		TicketID:     w.TicketID.String(),
		AssignedTo:   w.AssignedTo,
		Notes:        w.Notes,
		ScheduledFor: w.ScheduledFor,
		CompletedAt:  w.CompletedAt,
		Status:       string(w.Status),
	}
}

func (c *TicketsController) svc() *services.MaintenanceService {
	return c.app.Service(services.MaintenanceService{}).(*services.MaintenanceService)
}

func (c *TicketsController) list(w http.ResponseWriter, r *http.Request) {
	params := &domain.TicketFindParams{
		Status:   domain.TicketStatus(r.URL.Query().Get("status")),
		Priority: domain.TicketPriority(r.URL.Query().Get("priority")),
	}
	tickets, err := c.svc().ListTickets(r.Context(), params)
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("failed to list tickets")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "failed to list tickets")
		return
	}

	out := make([]ticketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, toTicketResponse(t))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

type createTicketRequest struct {
	UnitID      string `json:"unitId"`
	ReportedBy  string `json:"reportedBy"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

func (c *TicketsController) create(w http.ResponseWriter, r *http.Request) {
	var req createTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	unitID, err := uuid.Parse(req.UnitID)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid unit id")
		return
	}
	reportedBy, err := uuid.Parse(req.ReportedBy)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid reporter id")
		return
	}
	if req.Title == "" {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "title is required")
		return
	}

	t, err := c.svc().CreateTicket(r.Context(), services.CreateTicketInput{
		UnitID:           unitID,
		ReportedByUserID: reportedBy,
		Title:            req.Title,
		Description:      req.Description,
		Priority:         domain.TicketPriority(req.Priority),
	})
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("failed to create ticket")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "failed to create ticket")
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toTicketResponse(t))
}

func (c *TicketsController) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid ticket id")
		return
	}
	t, err := c.svc().GetTicket(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) {
			_ = httpapi.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		composables.UseLogger(r.Context()).WithError(err).Error("failed to load ticket")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "failed to load ticket")
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toTicketResponse(t))
}

type setStatusRequest struct {
	Status string `json:"status"`
}

func (c *TicketsController) setStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid ticket id")
		return
	}
	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status := domain.TicketStatus(req.Status)
	switch status {
	case domain.TicketStatusOpen, domain.TicketStatusInProgress, domain.TicketStatusResolved, domain.TicketStatusClosed:
	default:
		_ = httpapi.WriteError(w, http.StatusBadRequest, "unknown status")
		return
	}

	t, err := c.svc().UpdateTicketStatus(r.Context(), id, status)
	if err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) {
			_ = httpapi.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		composables.UseLogger(r.Context()).WithError(err).Error("failed to update ticket")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "failed to update ticket")
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toTicketResponse(t))
}

func (c *TicketsController) listWorkOrders(w http.ResponseWriter, r *http.Request) {
	ticketID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid ticket id")
		return
	}
	orders, err := c.svc().ListWorkOrders(r.Context(), ticketID)
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("failed to list work orders")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "failed to list work orders")
		return
	}

	out := make([]workOrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toWorkOrderResponse(o))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

type scheduleWorkOrderRequest struct {
	TicketID     string    `json:"ticketId"`
	AssignedTo   string    `json:"assignedTo"`
	Notes        string    `json:"notes"`
	ScheduledFor time.Time `json:"scheduledFor"`
}

func (c *TicketsController) schedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleWorkOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ticketID, err := uuid.Parse(req.TicketID)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid ticket id")
		return
	}

	order, err := c.svc().ScheduleWorkOrder(r.Context(), services.ScheduleWorkOrderInput{
		TicketID:     ticketID,
		AssignedTo:   req.AssignedTo,
		Notes:        req.Notes,
		ScheduledFor: req.ScheduledFor,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTicketNotFound):
			_ = httpapi.WriteError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrTicketClosed):
			_ = httpapi.WriteError(w, http.StatusConflict, err.Error())
		default:
			composables.UseLogger(r.Context()).WithError(err).Error("failed to schedule work order")
			_ = httpapi.WriteError(w, http.StatusInternalServerError, "failed to schedule work order")
		}
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toWorkOrderResponse(order))
}

func (c *TicketsController) complete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid work order id")
		return
	}
	order, err := c.svc().CompleteWorkOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrWorkOrderNotFound) {
			_ = httpapi.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		composables.UseLogger(r.Context()).WithError(err).Error("failed to complete work order")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "failed to complete work order")
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toWorkOrderResponse(order))
}
