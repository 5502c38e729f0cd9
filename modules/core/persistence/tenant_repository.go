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
)

type TenantRepository struct{}

func NewTenantRepository() domain.TenantRepository {
	return &TenantRepository{}
}

func (r *TenantRepository) Create(ctx context.Context, t *domain.Tenant) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.Subdomain = strings.ToLower(strings.TrimSpace(t.Subdomain))

	err = tx.QueryRow(ctx, `
		INSERT INTO tenants (id, name, subdomain, status, connection_string)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		t.ID, t.Name, t.Subdomain, t.Status, t.ConnectionString,
	).Scan(&t.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrSubdomainTaken
		}
		return err
	}
	return nil
}

func (r *TenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	return scanTenant(tx.QueryRow(ctx, `
		SELECT id, name, subdomain, status, created_at, connection_string
		FROM tenants WHERE id = $1`, id))
}

func (r *TenantRepository) GetBySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	return scanTenant(tx.QueryRow(ctx, `
		SELECT id, name, subdomain, status, created_at, connection_string
		FROM tenants WHERE subdomain = $1`, strings.ToLower(strings.TrimSpace(subdomain))))
}

func scanTenant(row pgx.Row) (*domain.Tenant, error) {
	var t domain.Tenant
	err := row.Scan(&t.ID, &t.Name, &t.Subdomain, &t.Status, &t.CreatedAt, &t.ConnectionString)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTenantNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
