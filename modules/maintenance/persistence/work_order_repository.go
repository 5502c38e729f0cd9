package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/atriumhq/atriumpm/modules/maintenance/domain"
	"github.com/atriumhq/atriumpm/pkg/composables"
	"github.com/atriumhq/atriumpm/pkg/repo"
)

const workOrderColumns = `id, tenant_id, ticket_id, assigned_to, notes, scheduled_for, completed_at, status, created_date, modified_date, modified_by`

type WorkOrderRepository struct{}

func NewWorkOrderRepository() domain.WorkOrderRepository {
	return &WorkOrderRepository{}
}

func (r *WorkOrderRepository) Create(ctx context.Context, w *domain.WorkOrder) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if err := repo.StampForInsert(ctx, w); err != nil {
		return err
	}
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.Status == "" {
		w.Status = domain.WorkOrderStatusScheduled
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO work_orders (id, tenant_id, ticket_id, assigned_to, notes, scheduled_for, completed_at, status, created_date, modified_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		w.ID, w.TenantID, w.TicketID, w.AssignedTo, w.Notes, w.ScheduledFor,
		w.CompletedAt, w.Status, w.CreatedDate, w.ModifiedDate,
	)
	return err
}

func (r *WorkOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.WorkOrder, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	return scanWorkOrder(tx.QueryRow(ctx,
		`SELECT `+workOrderColumns+` FROM work_orders WHERE id = $1 AND tenant_id = $2`, id, tenantID))
}

func (r *WorkOrderRepository) ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]*domain.WorkOrder, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx,
		`SELECT `+workOrderColumns+` FROM work_orders WHERE ticket_id = $1 AND tenant_id = $2 ORDER BY scheduled_for`,
		ticketID, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*domain.WorkOrder
	for rows.Next() {
		w, err := scanWorkOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, w)
	}
	return orders, rows.Err()
}

func (r *WorkOrderRepository) Update(ctx context.Context, w *domain.WorkOrder) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	repo.StampForUpdate(ctx, w, tenantID)

	tag, err := tx.Exec(ctx, `
		UPDATE work_orders
		SET assigned_to = $1, notes = $2, scheduled_for = $3, completed_at = $4, status = $5, modified_date = $6
		WHERE id = $7 AND tenant_id = $8`,
		w.AssignedTo, w.Notes, w.ScheduledFor, w.CompletedAt, w.Status, w.ModifiedDate, w.ID, tenantID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWorkOrderNotFound
	}
	return nil
}

func scanWorkOrder(row pgx.Row) (*domain.WorkOrder, error) {
	var w domain.WorkOrder
	err := row.Scan(
		&w.ID, &w.TenantID, &w.TicketID, &w.AssignedTo, &w.Notes, &w.ScheduledFor,
		&w.CompletedAt, &w.Status, &w.CreatedDate, &w.ModifiedDate, &w.ModifiedBy,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrWorkOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}
