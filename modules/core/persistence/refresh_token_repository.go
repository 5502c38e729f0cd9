package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/atriumhq/atriumpm/modules/core/domain"
	"github.com/atriumhq/atriumpm/pkg/composables"
	"github.com/atriumhq/atriumpm/pkg/repo"
)

type RefreshTokenRepository struct{}

func NewRefreshTokenRepository() domain.RefreshTokenRepository {
	return &RefreshTokenRepository{}
}

func (r *RefreshTokenRepository) Create(ctx context.Context, rt *domain.RefreshToken) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if err := repo.StampForInsert(ctx, rt); err != nil {
		return err
	}
	if rt.ID == uuid.Nil {
		rt.ID = uuid.New()
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO refresh_tokens (id, tenant_id, user_id, token, expires_at, is_revoked, created_date, modified_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rt.ID, rt.TenantID, rt.UserID, rt.Token, rt.ExpiresAt, rt.IsRevoked,
		rt.CreatedDate, rt.ModifiedDate,
	)
	return err
}

// GetByToken takes the tenant id explicitly so a presented token can only
// ever match rows of the tenant redeeming it.
func (r *RefreshTokenRepository) GetByToken(ctx context.Context, tenantID uuid.UUID, token string) (*domain.RefreshToken, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	var rt domain.RefreshToken
	err = tx.QueryRow(ctx, `
		SELECT id, tenant_id, user_id, token, expires_at, is_revoked, created_date, modified_date, modified_by
		FROM refresh_tokens WHERE tenant_id = $1 AND token = $2`,
		tenantID, token,
	).Scan(&rt.ID, &rt.TenantID, &rt.UserID, &rt.Token, &rt.ExpiresAt, &rt.IsRevoked,
		&rt.CreatedDate, &rt.ModifiedDate, &rt.ModifiedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *RefreshTokenRepository) Revoke(ctx context.Context, tenantID uuid.UUID, token string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		UPDATE refresh_tokens SET is_revoked = TRUE, modified_date = $1
		WHERE tenant_id = $2 AND token = $3`,
		time.Now().UTC(), tenantID, token,
	)
	return err
}
