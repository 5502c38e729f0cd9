package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/atriumhq/atriumpm/pkg/repo"
)

var (
	ErrTicketNotFound    = errors.New("maintenance ticket not found")
	ErrWorkOrderNotFound = errors.New("work order not found")
	ErrTicketClosed      = errors.New("maintenance ticket is closed")
)

type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityMedium TicketPriority = "medium"
	PriorityHigh   TicketPriority = "high"
	PriorityUrgent TicketPriority = "urgent"
)

type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

type Ticket struct {
	repo.TenantOwned
	ID               uuid.UUID
	UnitID           uuid.UUID
	ReportedByUserID uuid.UUID
	Title            string
	Description      string
	Priority         TicketPriority
	Status           TicketStatus
}

type WorkOrderStatus string

const (
	WorkOrderStatusScheduled WorkOrderStatus = "scheduled"
	WorkOrderStatusCompleted WorkOrderStatus = "completed"
	WorkOrderStatusCancelled WorkOrderStatus = "cancelled"
)

type WorkOrder struct {
	repo.TenantOwned
	ID           uuid.UUID
	TicketID     uuid.UUID
	AssignedTo   string
	Notes        string
	ScheduledFor time.Time
	CompletedAt  *time.Time
	Status       WorkOrderStatus
}

type TicketFindParams struct {
	Status   TicketStatus
	Priority TicketPriority
	Limit    int
	Offset   int
}

type TicketRepository interface {
	Create(ctx context.Context, t *Ticket) error
	GetByID(ctx context.Context, id uuid.UUID) (*Ticket, error)
	List(ctx context.Context, params *TicketFindParams) ([]*Ticket, error)
	Update(ctx context.Context, t *Ticket) error
}

type WorkOrderRepository interface {
	Create(ctx context.Context, w *WorkOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*WorkOrder, error)
	ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]*WorkOrder, error)
	Update(ctx context.Context, w *WorkOrder) error
}
