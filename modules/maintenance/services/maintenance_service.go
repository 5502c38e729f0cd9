package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/atriumhq/atriumpm/modules/maintenance/domain"
	"github.com/atriumhq/atriumpm/pkg/composables"
)

type CreateTicketInput struct {
	UnitID           uuid.UUID
	ReportedByUserID uuid.UUID
	Title            string
	Description      string
	Priority         domain.TicketPriority
}

type ScheduleWorkOrderInput struct {
	TicketID     uuid.UUID
	AssignedTo   string
	Notes        string
	ScheduledFor time.Time
}

type MaintenanceService struct {
	tickets    domain.TicketRepository
	workOrders domain.WorkOrderRepository
}

func NewMaintenanceService(tickets domain.TicketRepository, workOrders domain.WorkOrderRepository) *MaintenanceService {
	return &MaintenanceService{tickets: tickets, workOrders: workOrders}
}

func (s *MaintenanceService) CreateTicket(ctx context.Context, input CreateTicketInput) (*domain.Ticket, error) {
	t := &domain.Ticket{
		ID:               uuid.New(),
		UnitID:           input.UnitID,
		ReportedByUserID: input.ReportedByUserID,
		Title:            input.Title,
		Description:      input.Description,
		Priority:         input.Priority,
		Status:           domain.TicketStatusOpen,
	}
	err := composables.InTenantTx(ctx, func(txCtx context.Context) error {
		return s.tickets.Create(txCtx, t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *MaintenanceService) GetTicket(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*domain.Ticket, error) {
		return s.tickets.GetByID(txCtx, id)
	})
}

func (s *MaintenanceService) ListTickets(ctx context.Context, params *domain.TicketFindParams) ([]*domain.Ticket, error) {
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 50
	}
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]*domain.Ticket, error) {
		return s.tickets.List(txCtx, params)
	})
}

func (s *MaintenanceService) UpdateTicketStatus(ctx context.Context, id uuid.UUID, status domain.TicketStatus) (*domain.Ticket, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*domain.Ticket, error) {
		t, err := s.tickets.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		t.Status = status
		if err := s.tickets.Update(txCtx, t); err != nil {
			return nil, err
		}
		return t, nil
	})
}

// ScheduleWorkOrder creates a work order against an open ticket and moves
// the ticket to in_progress.
func (s *MaintenanceService) ScheduleWorkOrder(ctx context.Context, input ScheduleWorkOrderInput) (*domain.WorkOrder, error) {
	w := &domain.WorkOrder{
		ID:           uuid.New(),
		TicketID:     input.TicketID,
		AssignedTo:   input.AssignedTo,
		Notes:        input.Notes,
		ScheduledFor: input.ScheduledFor,
		Status:       domain.WorkOrderStatusScheduled,
	}
	err := composables.InTenantTx(ctx, func(txCtx context.Context) error {
		t, err := s.tickets.GetByID(txCtx, input.TicketID)
		if err != nil {
			return err
		}
		if t.Status == domain.TicketStatusClosed {
			return domain.ErrTicketClosed
		}
		if err := s.workOrders.Create(txCtx, w); err != nil {
			return err
		}
		if t.Status == domain.TicketStatusOpen {
			t.Status = domain.TicketStatusInProgress
			return s.tickets.Update(txCtx, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// CompleteWorkOrder closes the order; the ticket is resolved when no other
// order remains open.
func (s *MaintenanceService) CompleteWorkOrder(ctx context.Context, id uuid.UUID) (*domain.WorkOrder, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*domain.WorkOrder, error) {
		w, err := s.workOrders.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		now := time.Now().UTC()
		w.Status = domain.WorkOrderStatusCompleted
		w.CompletedAt = &now
		if err := s.workOrders.Update(txCtx, w); err != nil {
			return nil, err
		}

		siblings, err := s.workOrders.ListByTicket(txCtx, w.TicketID)
		if err != nil {
			return nil, err
		}
		for _, sib := range siblings {
			if sib.Status == domain.WorkOrderStatusScheduled {
				return w, nil
			}
		}
		t, err := s.tickets.GetByID(txCtx, w.TicketID)
		if err != nil {
			return nil, err
		}
		t.Status = domain.TicketStatusResolved
		if err := s.tickets.Update(txCtx, t); err != nil {
			return nil, err
		}
		return w, nil
	})
}

func (s *MaintenanceService) ListWorkOrders(ctx context.Context, ticketID uuid.UUID) ([]*domain.WorkOrder, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]*domain.WorkOrder, error) {
		return s.workOrders.ListByTicket(txCtx, ticketID)
	})
}
