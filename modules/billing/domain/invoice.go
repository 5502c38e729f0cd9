package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/atriumhq/atriumpm/pkg/repo"
)

var (
	ErrInvoiceNotFound = errors.New("invoice not found")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrInvoiceNotOpen  = errors.New("invoice is not open for payment")
	ErrOverpayment     = errors.New("payment exceeds invoice balance")
)

type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
	InvoiceStatusVoid    InvoiceStatus = "void"
)

type Invoice struct {
	repo.TenantOwned
	ID          uuid.UUID
	LeaseID     uuid.UUID
	Description string
	Amount      int64
	AmountPaid  int64
	DueDate     time.Time
	Status      InvoiceStatus
	PaidAt      *time.Time
}

func (i *Invoice) Balance() int64 {
	return i.Amount - i.AmountPaid
}

type PaymentMethod string

const (
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodACH      PaymentMethod = "ach"
	PaymentMethodCheck    PaymentMethod = "check"
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodInternal PaymentMethod = "internal"
)

type Payment struct {
	repo.TenantOwned
	ID         uuid.UUID
	InvoiceID  uuid.UUID
	Amount     int64
	Method     PaymentMethod
	Reference  string
	ReceivedAt time.Time
}

type LateFeeCharge struct {
	repo.TenantOwned
	ID         uuid.UUID
	InvoiceID  uuid.UUID
	Amount     int64
	AssessedAt time.Time
}

type InvoiceFindParams struct {
	LeaseID uuid.UUID
	Status  InvoiceStatus
	Limit   int
	Offset  int
}

type InvoiceRepository interface {
	Create(ctx context.Context, i *Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	List(ctx context.Context, params *InvoiceFindParams) ([]*Invoice, error)
	Update(ctx context.Context, i *Invoice) error
	ListDueBefore(ctx context.Context, cutoff time.Time) ([]*Invoice, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*Payment, error)
}

type LateFeeRepository interface {
	Create(ctx context.Context, c *LateFeeCharge) error
	ExistsForInvoice(ctx context.Context, invoiceID uuid.UUID) (bool, error)
}
