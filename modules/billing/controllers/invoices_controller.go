package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/atriumhq/atriumpm/modules/billing/domain"
	"github.com/atriumhq/atriumpm/modules/billing/services"
	"github.com/atriumhq/atriumpm/pkg/application"
	"github.com/atriumhq/atriumpm/pkg/composables"
	"github.com/atriumhq/atriumpm/pkg/httpapi"
)

type InvoicesController struct {
	app      application.Application
	basePath string
}

func NewInvoicesController(app application.Application) application.Controller {
	return &InvoicesController{
		app:      app,
		basePath: "/api/invoices",
	}
}

func (c *InvoicesController) Key() string {
	return c.basePath
}

func (c *InvoicesController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", c.list).Methods(http.MethodGet)
	router.HandleFunc("", c.create).Methods(http.MethodPost)
	router.HandleFunc("/assess-late-fees", c.assessLateFees).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.get).Methods(http.MethodGet)
	router.HandleFunc("/{id}/payments", c.listPayments).Methods(http.MethodGet)
	router.HandleFunc("/{id}/payments", c.recordPayment).Methods(http.MethodPost)
}

type invoiceResponse struct {
	ID          string     `json:"id"`
	LeaseID     string     `json:"leaseId"`
	Description string     `json:"description"`
	Amount      int64      `json:"amount"`
	AmountPaid  int64      `json:"amountPaid"`
	Balance     int64      `json:"balance"`
	DueDate     time.Time  `json:"dueDate"`
	Status      string     `json:"status"`
	PaidAt      *time.Time `json:"paidAt,omitempty"`
}

func toInvoiceResponse(i *domain.Invoice) invoiceResponse {
	return invoiceResponse{
		ID:          i.ID.String(),
		LeaseID:     i.LeaseID.String(),
		Description: i.Description,
		Amount:      i.Amount,
		AmountPaid:  i.AmountPaid,
		Balance:     i.Balance(),
		DueDate:     i.DueDate,
		Status:      string(i.Status),
		PaidAt:      i.PaidAt,
	}
}

func (c *InvoicesController) svc() *services.BillingService {
	return c.app.Service(services.BillingService{}).(*services.BillingService)
}

func (c *InvoicesController) list(w http.ResponseWriter, r *http.Request) {
	params := &domain.InvoiceFindParams{
		Status: domain.InvoiceStatus(r.URL.Query().Get("status")),
	}
	if raw := r.URL.Query().Get("leaseId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid lease id")
			return
		}
		params.LeaseID = id
	}

	invoices, err := c.svc().ListInvoices(r.Context(), params)
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("failed to list invoices")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "failed to list invoices")
		return
	}

	out := make([]invoiceResponse, 0, len(invoices))
	for _, i := range invoices {
		out = append(out, toInvoiceResponse(i))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

type createInvoiceRequest struct {
	LeaseID     string    `json:"leaseId"`
	Description string    `json:"description"`
	Amount      int64     `json:"amount"`
	DueDate     time.Time `json:"dueDate"`
}

func (c *InvoicesController) create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	leaseID, err := uuid.Parse(req.LeaseID)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid lease id")
		return
	}
	if req.Amount <= 0 {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	invoice, err := c.svc().CreateInvoice(r.Context(), services.CreateInvoiceInput{
		LeaseID:     leaseID,
		Description: req.Description,
		Amount:      req.Amount,
		DueDate:     req.DueDate,
	})
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("failed to create invoice")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "failed to create invoice")
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toInvoiceResponse(invoice))
}

func (c *InvoicesController) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}
	invoice, err := c.svc().GetInvoice(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrInvoiceNotFound) {
			_ = httpapi.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		composables.UseLogger(r.Context()).WithError(err).Error("failed to load invoice")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "failed to load invoice")
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toInvoiceResponse(invoice))
}

type paymentResponse struct {
	ID         string    `json:"id"`
	InvoiceID  string    `json:"invoiceId"`
	Amount     int64     `json:"amount"`
	Method     string    `json:"method"`
	Reference  string    `json:"reference,omitempty"`
	ReceivedAt time.Time `json:"receivedAt"`
}

func toPaymentResponse(p *domain.Payment) paymentResponse {
	return paymentResponse{
		ID:         p.ID.String(),
		InvoiceID:  p.InvoiceID.String(),
		Amount:     p.Amount,
		Method:     string(p.Method),
		Reference:  p.Reference,
		ReceivedAt: p.ReceivedAt,
	}
}

func (c *InvoicesController) listPayments(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}
	payments, err := c.svc().ListPayments(r.Context(), invoiceID)
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("failed to list payments")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "failed to list payments")
		return
	}

	out := make([]paymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentResponse(p))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

type recordPaymentRequest struct {
	Amount    int64  `json:"amount"`
	Method    string `json:"method"`
	Reference string `json:"reference"`
}

func (c *InvoicesController) recordPayment(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}
	var req recordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payment, err := c.svc().RecordPayment(r.Context(), services.RecordPaymentInput{
		InvoiceID: invoiceID,
		Amount:    req.Amount,
		Method:    domain.PaymentMethod(req.Method),
		Reference: req.Reference,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvoiceNotFound):
			_ = httpapi.WriteError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrInvoiceNotOpen), errors.Is(err, domain.ErrOverpayment):
			_ = httpapi.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			composables.UseLogger(r.Context()).WithError(err).Error("failed to record payment")
			_ = httpapi.WriteError(w, http.StatusInternalServerError, "failed to record payment")
		}
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toPaymentResponse(payment))
}

func (c *InvoicesController) assessLateFees(w http.ResponseWriter, r *http.Request) {
	count, err := c.svc().AssessLateFees(r.Context())
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("failed to assess late fees")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "failed to assess late fees")
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]int{"assessed": count})
}
