package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/atriumhq/atriumpm/modules/maintenance/domain"
	"github.com/atriumhq/atriumpm/pkg/composables"
	"github.com/atriumhq/atriumpm/pkg/repo"
)

const ticketColumns = `id, tenant_id, unit_id, reported_by_user_id, title, description, priority, status, created_date, modified_date, modified_by`

type TicketRepository struct{}

func NewTicketRepository() domain.TicketRepository {
	return &TicketRepository{}
}

func (r *TicketRepository) Create(ctx context.Context, t *domain.Ticket) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if err := repo.StampForInsert(ctx, t); err != nil {
		return err
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = domain.TicketStatusOpen
	}
	if t.Priority == "" {
		t.Priority = domain.PriorityMedium
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO maintenance_tickets (id, tenant_id, unit_id, reported_by_user_id, title, description, priority, status, created_date, modified_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.TenantID, t.UnitID, t.ReportedByUserID, t.Title, t.Description,
		t.Priority, t.Status, t.CreatedDate, t.ModifiedDate,
	)
	return err
}

func (r *TicketRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	return scanTicket(tx.QueryRow(ctx,
		`SELECT `+ticketColumns+` FROM maintenance_tickets WHERE id = $1 AND tenant_id = $2`, id, tenantID))
}

func (r *TicketRepository) List(ctx context.Context, params *domain.TicketFindParams) ([]*domain.Ticket, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	where := `WHERE tenant_id = $1`
	args := []any{tenantID}
	if params.Status != "" {
		args = append(args, params.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if params.Priority != "" {
		args = append(args, params.Priority)
		where += fmt.Sprintf(` AND priority = $%d`, len(args))
	}
	query := repo.Join(
		`SELECT `+ticketColumns+` FROM maintenance_tickets`,
		where,
		`ORDER BY created_date DESC`,
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []*domain.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (r *TicketRepository) Update(ctx context.Context, t *domain.Ticket) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	repo.StampForUpdate(ctx, t, tenantID)

	tag, err := tx.Exec(ctx, `
		UPDATE maintenance_tickets
		SET title = $1, description = $2, priority = $3, status = $4, modified_date = $5
		WHERE id = $6 AND tenant_id = $7`,
		t.Title, t.Description, t.Priority, t.Status, t.ModifiedDate, t.ID, tenantID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var t domain.Ticket
	err := row.Scan(
		&t.ID, &t.TenantID, &t.UnitID, &t.ReportedByUserID, &t.Title, &t.Description,
		&t.Priority, &t.Status, &t.CreatedDate, &t.ModifiedDate, &t.ModifiedBy,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
