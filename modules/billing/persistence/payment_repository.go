package persistence

import (
	"context"

	"github.com/google/uuid"

	"github.com/atriumhq/atriumpm/modules/billing/domain"
	"github.com/atriumhq/atriumpm/pkg/composables"
	"github.com/atriumhq/atriumpm/pkg/repo"
)

type PaymentRepository struct{}

func NewPaymentRepository() domain.PaymentRepository {
	return &PaymentRepository{}
}

func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if err := repo.StampForInsert(ctx, p); err != nil {
		return err
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO payments (id, tenant_id, invoice_id, amount, method, reference, received_at, created_date, modified_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.TenantID, p.InvoiceID, p.Amount, p.Method, p.Reference,
		p.ReceivedAt, p.CreatedDate, p.ModifiedDate,
	)
	return err
}

func (r *PaymentRepository) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*domain.Payment, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
		SELECT id, tenant_id, invoice_id, amount, method, reference, received_at, created_date, modified_date, modified_by
		FROM payments WHERE invoice_id = $1 AND tenant_id = $2 ORDER BY received_at`,
		invoiceID, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		var p domain.Payment
		err := rows.Scan(
			&p.ID, &p.TenantID, &p.InvoiceID, &p.Amount, &p.Method, &p.Reference,
			&p.ReceivedAt, &p.CreatedDate, &p.ModifiedDate, &p.ModifiedBy,
		)
		if err != nil {
			return nil, err
		}
		payments = append(payments, &p)
	}
	return payments, rows.Err()
}

type LateFeeRepository struct{}

func NewLateFeeRepository() domain.LateFeeRepository {
	return &LateFeeRepository{}
}

func (r *LateFeeRepository) Create(ctx context.Context, c *domain.LateFeeCharge) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if err := repo.StampForInsert(ctx, c); err != nil {
		return err
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO late_fee_charges (id, tenant_id, invoice_id, amount, assessed_at, created_date, modified_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.TenantID, c.InvoiceID, c.Amount, c.AssessedAt, c.CreatedDate, c.ModifiedDate,
	)
	return err
}

func (r *LateFeeRepository) ExistsForInvoice(ctx context.Context, invoiceID uuid.UUID) (bool, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return false, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}
	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM late_fee_charges WHERE invoice_id = $1 AND tenant_id = $2)`,
		invoiceID, tenantID).Scan(&exists)
	return exists, err
}
