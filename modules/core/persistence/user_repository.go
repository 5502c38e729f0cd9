package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/atriumhq/atriumpm/modules/core/domain"
	"github.com/atriumhq/atriumpm/pkg/composables"
	"github.com/atriumhq/atriumpm/pkg/repo"
)

const userColumns = `id, tenant_id, email, password_hash, first_name, last_name, role, is_active, created_date, modified_date, modified_by`

type UserRepository struct{}

func NewUserRepository() domain.UserRepository {
	return &UserRepository{}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
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
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	_, err = tx.Exec(ctx, `
		INSERT INTO users (id, tenant_id, email, password_hash, first_name, last_name, role, is_active, created_date, modified_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		u.ID, u.TenantID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Role, u.IsActive,
		u.CreatedDate, u.ModifiedDate,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	return scanUser(tx.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 AND tenant_id = $2`, id, tenantID))
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	query := repo.Join(
		`SELECT `+userColumns+` FROM users WHERE tenant_id = $1 ORDER BY created_date`,
		repo.FormatLimitOffset(limit, offset),
	)
	rows, err := tx.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	// tenant_id is never in the SET list; the column is write-once.
	repo.StampForUpdate(ctx, u, tenantID)

	tag, err := tx.Exec(ctx, `
		UPDATE users
		SET email = $1, first_name = $2, last_name = $3, role = $4, is_active = $5, modified_date = $6
		WHERE id = $7 AND tenant_id = $8`,
		strings.ToLower(strings.TrimSpace(u.Email)), u.FirstName, u.LastName, u.Role, u.IsActive,
		u.ModifiedDate, u.ID, tenantID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// GetByTenantAndEmail runs before tenant resolution (login) and therefore
// takes the tenant id explicitly instead of reading it from the context.
func (r *UserRepository) GetByTenantAndEmail(ctx context.Context, tenantID uuid.UUID, email string) (*domain.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	return scanUser(tx.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE tenant_id = $1 AND email = $2 AND is_active`,
		tenantID, strings.ToLower(strings.TrimSpace(email))))
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.TenantID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Role, &u.IsActive, &u.CreatedDate, &u.ModifiedDate, &u.ModifiedBy,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
