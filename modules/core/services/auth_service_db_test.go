package services_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atriumhq/atriumpm/modules/core/domain"
	"github.com/atriumhq/atriumpm/modules/core/persistence"
	"github.com/atriumhq/atriumpm/modules/core/services"
	"github.com/atriumhq/atriumpm/pkg/composables"
	"github.com/atriumhq/atriumpm/pkg/configuration"
	"github.com/atriumhq/atriumpm/pkg/eventbus"
	"github.com/atriumhq/atriumpm/pkg/itf"
)

type authFixture struct {
	auth    *services.AuthService
	tenants *services.TenantService
}

func newAuthFixture() authFixture {
	tenantRepo := persistence.NewTenantRepository()
	userRepo := persistence.NewUserRepository()
	refreshRepo := persistence.NewRefreshTokenRepository()
	tokens := services.NewTokenService(configuration.Use())
	return authFixture{
		auth: services.NewAuthService(tenantRepo, userRepo, refreshRepo, tokens),
		tenants: services.NewTenantService(
			tenantRepo, userRepo, eventbus.NewEventPublisher(logrus.New())),
	}
}

func TestAuthService_LoginRefreshLogout(t *testing.T) {
	env := itf.Setup(t)
	fx := newAuthFixture()

	sub := "oak-" + uuid.New().String()[:8]
	res, err := fx.tenants.Register(env.Ctx, services.RegisterTenantInput{
		Name:          "Oakwood Property Group",
		Subdomain:     sub,
		AdminEmail:    "admin@oakwood.test",
		AdminPassword: "correct-horse",
		FirstName:     "Ira",
		LastName:      "Holt",
	})
	require.NoError(t, err)

	// Clear the session variable registration pinned. Login must pin it
	// again before the user lookup, or the row security policy on users
	// filters the admin row out.
	_, err = env.Tx.Exec(env.Ctx, "SELECT set_config('app.current_tenant', '', true)")
	require.NoError(t, err)

	login, err := fx.auth.Login(env.Ctx, services.LoginInput{
		Subdomain: sub,
		Email:     "Admin@oakwood.test",
		Password:  "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, res.Admin.ID, login.User.ID)
	assert.NotEmpty(t, login.Tokens.AccessToken)
	assert.NotEmpty(t, login.Tokens.RefreshToken)

	var pinned string
	require.NoError(t, env.Tx.QueryRow(env.Ctx,
		"SELECT current_setting('app.current_tenant', true)").Scan(&pinned))
	assert.Equal(t, res.Tenant.ID.String(), pinned)

	_, err = fx.auth.Login(env.Ctx, services.LoginInput{
		Subdomain: sub, Email: "admin@oakwood.test", Password: "wrong-password",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = fx.auth.Login(env.Ctx, services.LoginInput{
		Subdomain: "missing-" + sub, Email: "admin@oakwood.test", Password: "correct-horse",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	tenantCtx := composables.WithTenantID(env.Ctx, res.Tenant.ID)

	rotated, err := fx.auth.Refresh(tenantCtx, login.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.Tokens.RefreshToken, rotated.RefreshToken)

	// The presented token is revoked by the rotation.
	_, err = fx.auth.Refresh(tenantCtx, login.Tokens.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	// A token is only redeemable inside the tenant that issued it.
	otherCtx := composables.WithTenantID(env.Ctx, itf.CreateTestTenant(t, env.Pool))
	_, err = fx.auth.Refresh(otherCtx, rotated.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	require.NoError(t, fx.auth.Logout(tenantCtx, rotated.RefreshToken))
	_, err = fx.auth.Refresh(tenantCtx, rotated.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthService_SuspendedTenantRejected(t *testing.T) {
	env := itf.Setup(t)
	fx := newAuthFixture()

	sub := "elm-" + uuid.New().String()[:8]
	_, err := fx.tenants.Register(env.Ctx, services.RegisterTenantInput{
		Name:          "Elmwood Property Group",
		Subdomain:     sub,
		AdminEmail:    "admin@elmwood.test",
		AdminPassword: "correct-horse",
	})
	require.NoError(t, err)

	_, err = env.Tx.Exec(env.Ctx,
		"UPDATE tenants SET status = 'suspended' WHERE subdomain = $1", sub)
	require.NoError(t, err)

	_, err = fx.auth.Login(env.Ctx, services.LoginInput{
		Subdomain: sub, Email: "admin@elmwood.test", Password: "correct-horse",
	})
	assert.ErrorIs(t, err, domain.ErrTenantSuspended)
}
