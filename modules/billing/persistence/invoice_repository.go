package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/atriumhq/atriumpm/modules/billing/domain"
	"github.com/atriumhq/atriumpm/pkg/composables"
	"github.com/atriumhq/atriumpm/pkg/repo"
)

const invoiceColumns = `id, tenant_id, lease_id, description, amount, amount_paid, due_date, status, paid_at, created_date, modified_date, modified_by`

type InvoiceRepository struct{}

func NewInvoiceRepository() domain.InvoiceRepository {
	return &InvoiceRepository{}
}

func (r *InvoiceRepository) Create(ctx context.Context, i *domain.Invoice) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if err := repo.StampForInsert(ctx, i); err != nil {
		return err
	}
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.Status == "" {
		i.Status = domain.InvoiceStatusPending
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO invoices (id, tenant_id, lease_id, description, amount, amount_paid, due_date, status, paid_at, created_date, modified_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		i.ID, i.TenantID, i.LeaseID, i.Description, i.Amount, i.AmountPaid,
		i.DueDate, i.Status, i.PaidAt, i.CreatedDate, i.ModifiedDate,
	)
	return err
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	return scanInvoice(tx.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 AND tenant_id = $2`, id, tenantID))
}

func (r *InvoiceRepository) List(ctx context.Context, params *domain.InvoiceFindParams) ([]*domain.Invoice, error) {
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
	if params.LeaseID != uuid.Nil {
		args = append(args, params.LeaseID)
		where += fmt.Sprintf(` AND lease_id = $%d`, len(args))
	}
	if params.Status != "" {
		args = append(args, params.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	query := repo.Join(
		`SELECT `+invoiceColumns+` FROM invoices`,
		where,
		`ORDER BY due_date`,
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectInvoices(rows)
}

func (r *InvoiceRepository) Update(ctx context.Context, i *domain.Invoice) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	repo.StampForUpdate(ctx, i, tenantID)

	tag, err := tx.Exec(ctx, `
		UPDATE invoices
		SET description = $1, amount = $2, amount_paid = $3, due_date = $4, status = $5, paid_at = $6, modified_date = $7
		WHERE id = $8 AND tenant_id = $9`,
		i.Description, i.Amount, i.AmountPaid, i.DueDate, i.Status, i.PaidAt,
		i.ModifiedDate, i.ID, tenantID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}

func (r *InvoiceRepository) ListDueBefore(ctx context.Context, cutoff time.Time) ([]*domain.Invoice, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx,
		`SELECT `+invoiceColumns+` FROM invoices
		WHERE tenant_id = $1 AND status = $2 AND due_date < $3
		ORDER BY due_date`,
		tenantID, domain.InvoiceStatusPending, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectInvoices(rows)
}

func collectInvoices(rows pgx.Rows) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	for rows.Next() {
		i, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, i)
	}
	return invoices, rows.Err()
}

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var i domain.Invoice
	err := row.Scan(
		&i.ID, &i.TenantID, &i.LeaseID, &i.Description, &i.Amount, &i.AmountPaid,
		&i.DueDate, &i.Status, &i.PaidAt, &i.CreatedDate, &i.ModifiedDate, &i.ModifiedBy,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &i, nil
}
