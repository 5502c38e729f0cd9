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

const buildingColumns = `id, tenant_id, name, address, city, state, postal_code, created_date, modified_date, modified_by`

type BuildingRepository struct{}

func NewBuildingRepository() domain.BuildingRepository {
	return &BuildingRepository{}
}

func (r *BuildingRepository) Create(ctx context.Context, b *domain.Building) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if err := repo.StampForInsert(ctx, b); err != nil {
		return err
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO buildings (id, tenant_id, name, address, city, state, postal_code, created_date, modified_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		b.ID, b.TenantID, b.Name, b.Address, b.City, b.State, b.PostalCode,
		b.CreatedDate, b.ModifiedDate,
	)
	return err
}

func (r *BuildingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Building, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	return scanBuilding(tx.QueryRow(ctx,
		`SELECT `+buildingColumns+` FROM buildings WHERE id = $1 AND tenant_id = $2`, id, tenantID))
}

func (r *BuildingRepository) List(ctx context.Context, params *domain.BuildingFindParams) ([]*domain.Building, error) {
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
	if params.City != "" {
		where += ` AND city = $2`
		args = append(args, params.City)
	}
	query := repo.Join(
		`SELECT `+buildingColumns+` FROM buildings`,
		where,
		`ORDER BY name`,
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buildings []*domain.Building
	for rows.Next() {
		b, err := scanBuilding(rows)
		if err != nil {
			return nil, err
		}
		buildings = append(buildings, b)
	}
	return buildings, rows.Err()
}

func (r *BuildingRepository) Count(ctx context.Context) (int64, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return 0, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM buildings WHERE tenant_id = $1`, tenantID).Scan(&count)
	return count, err
}

func (r *BuildingRepository) Update(ctx context.Context, b *domain.Building) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	repo.StampForUpdate(ctx, b, tenantID)

	tag, err := tx.Exec(ctx, `
		UPDATE buildings
		SET name = $1, address = $2, city = $3, state = $4, postal_code = $5, modified_date = $6
		WHERE id = $7 AND tenant_id = $8`,
		b.Name, b.Address, b.City, b.State, b.PostalCode, b.ModifiedDate, b.ID, tenantID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBuildingNotFound
	}
	return nil
}

func (r *BuildingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM buildings WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBuildingNotFound
	}
	return nil
}

func scanBuilding(row pgx.Row) (*domain.Building, error) {
	var b domain.Building
	err := row.Scan(
		&b.ID, &b.TenantID, &b.Name, &b.Address, &b.City, &b.State, &b.PostalCode,
		&b.CreatedDate, &b.ModifiedDate, &b.ModifiedBy,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBuildingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}
