package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/atriumhq/atriumpm/modules/property/domain"
	"github.com/atriumhq/atriumpm/pkg/composables"
	"github.com/atriumhq/atriumpm/pkg/repo"
)

const unitColumns = `id, tenant_id, building_id, unit_number, bedrooms, bathrooms, square_feet, monthly_rent, status, created_date, modified_date, modified_by`

type UnitRepository struct{}

func NewUnitRepository() domain.UnitRepository {
	return &UnitRepository{}
}

func (r *UnitRepository) Create(ctx context.Context, u *domain.Unit) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if err := repo.StampForInsert(ctx, u); err != nil {
		return err
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Status == "" {
		u.Status = domain.UnitStatusVacant
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO units (id, tenant_id, building_id, unit_number, bedrooms, bathrooms, square_feet, monthly_rent, status, created_date, modified_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		u.ID, u.TenantID, u.BuildingID, u.UnitNumber, u.Bedrooms, u.Bathrooms,
		u.SquareFeet, u.MonthlyRent, u.Status, u.CreatedDate, u.ModifiedDate,
	)
	return err
}

func (r *UnitRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Unit, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	return scanUnit(tx.QueryRow(ctx,
		`SELECT `+unitColumns+` FROM units WHERE id = $1 AND tenant_id = $2`, id, tenantID))
}

func (r *UnitRepository) ListByBuilding(ctx context.Context, buildingID uuid.UUID) ([]*domain.Unit, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx,
		`SELECT `+unitColumns+` FROM units WHERE building_id = $1 AND tenant_id = $2 ORDER BY unit_number`,
		buildingID, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []*domain.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

func (r *UnitRepository) Update(ctx context.Context, u *domain.Unit) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	repo.StampForUpdate(ctx, u, tenantID)

	tag, err := tx.Exec(ctx, `
		UPDATE units
		SET unit_number = $1, bedrooms = $2, bathrooms = $3, square_feet = $4, monthly_rent = $5, status = $6, modified_date = $7
		WHERE id = $8 AND tenant_id = $9`,
		u.UnitNumber, u.Bedrooms, u.Bathrooms, u.SquareFeet, u.MonthlyRent, u.Status,
		u.ModifiedDate, u.ID, tenantID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUnitNotFound
	}
	return nil
}

func (r *UnitRepository) SetStatus(ctx context.Context, id uuid.UUID, status domain.UnitStatus) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `
		UPDATE units SET status = $1, modified_date = now()
		WHERE id = $2 AND tenant_id = $3`,
		status, id, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUnitNotFound
	}
	return nil
}

func scanUnit(row pgx.Row) (*domain.Unit, error) {
	var u domain.Unit
	err := row.Scan(
		&u.ID, &u.TenantID, &u.BuildingID, &u.UnitNumber, &u.Bedrooms, &u.Bathrooms,
		&u.SquareFeet, &u.MonthlyRent, &u.Status, &u.CreatedDate, &u.ModifiedDate, &u.ModifiedBy,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUnitNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
