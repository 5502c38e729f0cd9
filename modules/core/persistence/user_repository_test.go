package persistence_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atriumhq/atriumpm/modules/core/domain"
	"github.com/atriumhq/atriumpm/modules/core/persistence"
	"github.com/atriumhq/atriumpm/pkg/itf"
)

func newUser(email string) *domain.User {
	return &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "x",
		Role:         domain.RoleManager,
		IsActive:     true,
	}
}

func TestUserRepository_EmailUniquePerTenant(t *testing.T) {
	env := itf.Setup(t)
	repo := persistence.NewUserRepository()

	require.NoError(t, repo.Create(env.Ctx, newUser("pat@example.com")))

	err := repo.Create(env.Ctx, newUser("pat@example.com"))
	assert.True(t, errors.Is(err, domain.ErrEmailTaken))

	// Same address in a different company is a different account.
	otherID := itf.CreateTestTenant(t, env.Pool)
	require.NoError(t, repo.Create(env.WithTenant(otherID), newUser("pat@example.com")))
}

func TestUserRepository_UpdateCannotMoveTenants(t *testing.T) {
	env := itf.Setup(t)
	repo := persistence.NewUserRepository()

	u := newUser("casey@example.com")
	require.NoError(t, repo.Create(env.Ctx, u))

	// A tampered tenant id on the entity is reverted, not persisted.
	u.TenantID = uuid.New()
	u.FirstName = "Casey"
	require.NoError(t, repo.Update(env.Ctx, u))
	assert.Equal(t, env.TenantID, u.TenantID)

	got, err := repo.GetByID(env.Ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, env.TenantID, got.TenantID)
	assert.Equal(t, "Casey", got.FirstName)
}

func TestUserRepository_GetByTenantAndEmail(t *testing.T) {
	env := itf.Setup(t)
	repo := persistence.NewUserRepository()

	u := newUser("drew@example.com")
	require.NoError(t, repo.Create(env.Ctx, u))

	got, err := repo.GetByTenantAndEmail(env.Ctx, env.TenantID, "Drew@Example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = repo.GetByTenantAndEmail(env.Ctx, uuid.New(), "drew@example.com")
	assert.True(t, errors.Is(err, domain.ErrUserNotFound))
}

func TestRefreshTokenRepository_Lifecycle(t *testing.T) {
	env := itf.Setup(t)
	users := persistence.NewUserRepository()
	tokens := persistence.NewRefreshTokenRepository()

	u := newUser("robin@example.com")
	require.NoError(t, users.Create(env.Ctx, u))

	rt := &domain.RefreshToken{
		UserID:    u.ID,
		Token:     "opaque-token-value",
		ExpiresAt: u.CreatedDate.AddDate(0, 1, 0),
	}
	require.NoError(t, tokens.Create(env.Ctx, rt))

	got, err := tokens.GetByToken(env.Ctx, env.TenantID, "opaque-token-value")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.UserID)
	assert.False(t, got.IsRevoked)

	require.NoError(t, tokens.Revoke(env.Ctx, env.TenantID, "opaque-token-value"))
	got, err = tokens.GetByToken(env.Ctx, env.TenantID, "opaque-token-value")
	require.NoError(t, err)
	assert.True(t, got.IsRevoked)

	// Tokens are invisible across the tenant boundary.
	otherID := itf.CreateTestTenant(t, env.Pool)
	_, err = tokens.GetByToken(env.Ctx, otherID, "opaque-token-value")
	assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))
}
