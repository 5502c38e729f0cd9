package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/atriumhq/atriumpm/modules/leasing/domain"
	"github.com/atriumhq/atriumpm/pkg/composables"
	"github.com/atriumhq/atriumpm/pkg/repo"
)

const leaseColumns = `id, tenant_id, unit_id, resident_user_id, start_date, end_date, monthly_rent, deposit_amount, status, signed_at, created_date, modified_date, modified_by`

type LeaseRepository struct{}

func NewLeaseRepository() domain.LeaseRepository {
	return &LeaseRepository{}
}

func (r *LeaseRepository) Create(ctx context.Context, l *domain.Lease) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if err := repo.StampForInsert(ctx, l); err != nil {
		return err
	}
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Status == "" {
		l.Status = domain.LeaseStatusDraft
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO leases (id, tenant_id, unit_id, resident_user_id, start_date, end_date, monthly_rent, deposit_amount, status, signed_at, created_date, modified_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		l.ID, l.TenantID, l.UnitID, l.ResidentUserID, l.StartDate, l.EndDate,
		l.MonthlyRent, l.DepositAmount, l.Status, l.SignedAt, l.CreatedDate, l.ModifiedDate,
	)
	return err
}

func (r *LeaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lease, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	return scanLease(tx.QueryRow(ctx,
		`SELECT `+leaseColumns+` FROM leases WHERE id = $1 AND tenant_id = $2`, id, tenantID))
}

func (r *LeaseRepository) List(ctx context.Context, params *domain.LeaseFindParams) ([]*domain.Lease, error) {
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
	if params.UnitID != uuid.Nil {
		args = append(args, params.UnitID)
		where += fmt.Sprintf(` AND unit_id = $%d`, len(args))
	}
	if params.Status != "" {
		args = append(args, params.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	query := repo.Join(
		`SELECT `+leaseColumns+` FROM leases`,
		where,
		`ORDER BY start_date DESC`,
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leases []*domain.Lease
	for rows.Next() {
		l, err := scanLease(rows)
		if err != nil {
			return nil, err
		}
		leases = append(leases, l)
	}
	return leases, rows.Err()
}

func (r *LeaseRepository) Update(ctx context.Context, l *domain.Lease) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	repo.StampForUpdate(ctx, l, tenantID)

	tag, err := tx.Exec(ctx, `
		UPDATE leases
		SET start_date = $1, end_date = $2, monthly_rent = $3, deposit_amount = $4, status = $5, signed_at = $6, modified_date = $7
		WHERE id = $8 AND tenant_id = $9`,
		l.StartDate, l.EndDate, l.MonthlyRent, l.DepositAmount, l.Status, l.SignedAt,
		l.ModifiedDate, l.ID, tenantID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLeaseNotFound
	}
	return nil
}

func (r *LeaseRepository) ActiveByUnit(ctx context.Context, unitID uuid.UUID) (*domain.Lease, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	return scanLease(tx.QueryRow(ctx,
		`SELECT `+leaseColumns+` FROM leases WHERE unit_id = $1 AND tenant_id = $2 AND status = $3`,
		unitID, tenantID, domain.LeaseStatusActive))
}

func scanLease(row pgx.Row) (*domain.Lease, error) {
	var l domain.Lease
	err := row.Scan(
		&l.ID, &l.TenantID, &l.UnitID, &l.ResidentUserID, &l.StartDate, &l.EndDate,
		&l.MonthlyRent, &l.DepositAmount, &l.Status, &l.SignedAt,
		&l.CreatedDate, &l.ModifiedDate, &l.ModifiedBy,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrLeaseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}
