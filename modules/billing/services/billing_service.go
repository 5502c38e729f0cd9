package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/atriumhq/atriumpm/modules/billing/domain"
	leasingdomain "github.com/atriumhq/atriumpm/modules/leasing/domain"
	"github.com/atriumhq/atriumpm/pkg/composables"
)

// LateFeePercent is applied once per overdue invoice.
const LateFeePercent = 5

type CreateInvoiceInput struct {
	LeaseID     uuid.UUID
	Description string
	Amount      int64
	DueDate     time.Time
}

type RecordPaymentInput struct {
	InvoiceID uuid.UUID
	Amount    int64
	Method    domain.PaymentMethod
	Reference string
}

type BillingService struct {
	invoices domain.InvoiceRepository
	payments domain.PaymentRepository
	lateFees domain.LateFeeRepository
	pool     *pgxpool.Pool
	log      *logrus.Logger
}

func NewBillingService(
	invoices domain.InvoiceRepository,
	payments domain.PaymentRepository,
	lateFees domain.LateFeeRepository,
	pool *pgxpool.Pool,
	log *logrus.Logger,
) *BillingService {
	return &BillingService{
		invoices: invoices,
		payments: payments,
		lateFees: lateFees,
		pool:     pool,
		log:      log,
	}
}

func (s *BillingService) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*domain.Invoice, error) {
	i := &domain.Invoice{
		ID:          uuid.New(),
		LeaseID:     input.LeaseID,
		Description: input.Description,
		Amount:      input.Amount,
		DueDate:     input.DueDate,
		Status:      domain.InvoiceStatusPending,
	}
	err := composables.InTenantTx(ctx, func(txCtx context.Context) error {
		return s.invoices.Create(txCtx, i)
	})
	if err != nil {
		return nil, err
	}
	return i, nil
}

func (s *BillingService) GetInvoice(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*domain.Invoice, error) {
		return s.invoices.GetByID(txCtx, id)
	})
}

func (s *BillingService) ListInvoices(ctx context.Context, params *domain.InvoiceFindParams) ([]*domain.Invoice, error) {
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 50
	}
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]*domain.Invoice, error) {
		return s.invoices.List(txCtx, params)
	})
}

func (s *BillingService) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]*domain.Payment, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]*domain.Payment, error) {
		return s.payments.ListByInvoice(txCtx, invoiceID)
	})
}

// RecordPayment applies a payment to an invoice and settles it when the
// balance reaches zero.
func (s *BillingService) RecordPayment(ctx context.Context, input RecordPaymentInput) (*domain.Payment, error) {
	p := &domain.Payment{
		ID:         uuid.New(),
		InvoiceID:  input.InvoiceID,
		Amount:     input.Amount,
		Method:     input.Method,
		Reference:  input.Reference,
		ReceivedAt: time.Now().UTC(),
	}
	err := composables.InTenantTx(ctx, func(txCtx context.Context) error {
		invoice, err := s.invoices.GetByID(txCtx, input.InvoiceID)
		if err != nil {
			return err
		}
		if invoice.Status != domain.InvoiceStatusPending && invoice.Status != domain.InvoiceStatusOverdue {
			return domain.ErrInvoiceNotOpen
		}
		if input.Amount <= 0 || input.Amount > invoice.Balance() {
			return domain.ErrOverpayment
		}

		if err := s.payments.Create(txCtx, p); err != nil {
			return err
		}

		invoice.AmountPaid += input.Amount
		if invoice.Balance() == 0 {
			now := time.Now().UTC()
			invoice.Status = domain.InvoiceStatusPaid
			invoice.PaidAt = &now
		}
		return s.invoices.Update(txCtx, invoice)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// AssessLateFees flips overdue pending invoices and charges each at most
// one late fee.
func (s *BillingService) AssessLateFees(ctx context.Context) (int, error) {
	assessed := 0
	err := composables.InTenantTx(ctx, func(txCtx context.Context) error {
		overdue, err := s.invoices.ListDueBefore(txCtx, time.Now().UTC())
		if err != nil {
			return err
		}
		for _, invoice := range overdue {
			invoice.Status = domain.InvoiceStatusOverdue
			if err := s.invoices.Update(txCtx, invoice); err != nil {
				return err
			}

			charged, err := s.lateFees.ExistsForInvoice(txCtx, invoice.ID)
			if err != nil {
				return err
			}
			if charged {
				continue
			}
			fee := &domain.LateFeeCharge{
				ID:         uuid.New(),
				InvoiceID:  invoice.ID,
				Amount:     invoice.Amount * LateFeePercent / 100,
				AssessedAt: time.Now().UTC(),
			}
			if err := s.lateFees.Create(txCtx, fee); err != nil {
				return err
			}
			assessed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return assessed, nil
}

// OnLeaseSigned creates the move-in invoice (first month plus deposit).
// It runs from the event bus with no request context, so the tenant comes
// from the event and the pool from the service itself.
func (s *BillingService) OnLeaseSigned(event leasingdomain.LeaseSignedEvent) {
	ctx := composables.WithPool(context.Background(), s.pool)
	ctx = composables.WithTenantID(ctx, event.TenantID)

	_, err := s.CreateInvoice(ctx, CreateInvoiceInput{
		LeaseID:     event.LeaseID,
		Description: "Move-in charges: first month rent and security deposit",
		Amount:      event.MonthlyRent + event.Deposit,
		DueDate:     event.StartDate,
	})
	if err != nil {
		s.log.WithError(err).
			WithField("lease_id", event.LeaseID).
			WithField("tenant_id", event.TenantID).
			Error("failed to create move-in invoice")
		return
	}
	s.log.WithField("lease_id", event.LeaseID).Info("move-in invoice created")
}
