package services_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/atriumhq/atriumpm/modules/core/domain"
	"github.com/atriumhq/atriumpm/modules/core/persistence"
	"github.com/atriumhq/atriumpm/modules/core/services"
	"github.com/atriumhq/atriumpm/pkg/eventbus"
	"github.com/atriumhq/atriumpm/pkg/itf"
)

func newTenantService() *services.TenantService {
	return services.NewTenantService(
		persistence.NewTenantRepository(),
		persistence.NewUserRepository(),
		eventbus.NewEventPublisher(logrus.New()),
	)
}

func TestTenantService_Register(t *testing.T) {
	env := itf.Setup(t)
	svc := newTenantService()

	sub := "maple-" + uuid.New().String()[:8]
	res, err := svc.Register(env.Ctx, services.RegisterTenantInput{
		Name:          "Maple Court Management",
		Subdomain:     "  " + strings.ToUpper(sub) + "  ",
		AdminEmail:    "Owner@maple.test",
		AdminPassword: "longenough",
		FirstName:     "Dana",
		LastName:      "Reyes",
	})
	require.NoError(t, err)
	assert.Equal(t, sub, res.Tenant.Subdomain)
	assert.Equal(t, domain.TenantStatusActive, res.Tenant.Status)

	assert.Equal(t, res.Tenant.ID, res.Admin.TenantID)
	assert.Equal(t, domain.RoleAdmin, res.Admin.Role)
	assert.Equal(t, "owner@maple.test", res.Admin.Email)
	assert.True(t, res.Admin.IsActive)
	require.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(res.Admin.PasswordHash), []byte("longenough")))

	got, err := svc.GetBySubdomain(env.Ctx, sub)
	require.NoError(t, err)
	assert.Equal(t, res.Tenant.ID, got.ID)

	// Duplicate subdomain. Last assertion: the unique violation aborts
	// the shared test transaction.
	_, err = svc.Register(env.Ctx, services.RegisterTenantInput{
		Name:          "Maple Court Copycat",
		Subdomain:     sub,
		AdminEmail:    "copy@maple.test",
		AdminPassword: "longenough",
	})
	assert.ErrorIs(t, err, domain.ErrSubdomainTaken)
}

func TestTenantService_GetConnectionTemplate(t *testing.T) {
	env := itf.Setup(t)
	svc := newTenantService()

	tpl, err := svc.GetConnectionTemplate(env.Ctx, env.TenantID)
	require.NoError(t, err)
	assert.Empty(t, tpl)

	_, err = env.Tx.Exec(env.Ctx,
		"UPDATE tenants SET connection_string = $1 WHERE id = $2",
		"  host=tenant-db dbname={db}  ", env.TenantID)
	require.NoError(t, err)

	tpl, err = svc.GetConnectionTemplate(env.Ctx, env.TenantID)
	require.NoError(t, err)
	assert.Equal(t, "host=tenant-db dbname={db}", tpl)

	_, err = svc.GetConnectionTemplate(env.Ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
}
