package services_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coredomain "github.com/atriumhq/atriumpm/modules/core/domain"
	corepersistence "github.com/atriumhq/atriumpm/modules/core/persistence"
	"github.com/atriumhq/atriumpm/modules/leasing/domain"
	"github.com/atriumhq/atriumpm/modules/leasing/persistence"
	"github.com/atriumhq/atriumpm/modules/leasing/services"
	propertydomain "github.com/atriumhq/atriumpm/modules/property/domain"
	propertypersistence "github.com/atriumhq/atriumpm/modules/property/persistence"
	"github.com/atriumhq/atriumpm/pkg/configuration"
	"github.com/atriumhq/atriumpm/pkg/eventbus"
	"github.com/atriumhq/atriumpm/pkg/itf"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "atriumpm-test")
	if err != nil {
		panic(err)
	}
	_ = os.Setenv("LOG_PATH", filepath.Join(dir, "app.log"))
	_ = os.Setenv("RLS_ENFORCE", "disabled")
	code := m.Run()
	configuration.Use().Unload()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

type fixture struct {
	svc    *services.LeasingService
	bus    eventbus.EventBus
	unit   *propertydomain.Unit
	tenant *itf.Env
	user   *coredomain.User
}

func setupLeasing(t *testing.T) *fixture {
	t.Helper()
	env := itf.Setup(t)

	buildings := propertypersistence.NewBuildingRepository()
	units := propertypersistence.NewUnitRepository()
	users := corepersistence.NewUserRepository()

	b := &propertydomain.Building{Name: "Willow Park", Address: "7 Willow Way"}
	require.NoError(t, buildings.Create(env.Ctx, b))

	u := &propertydomain.Unit{BuildingID: b.ID, UnitNumber: "1A", MonthlyRent: 90000}
	require.NoError(t, units.Create(env.Ctx, u))

	resident := &coredomain.User{
		ID:           uuid.New(),
		Email:        uuid.NewString()[:8] + "@example.com",
		PasswordHash: "x",
		Role:         coredomain.RoleResident,
		IsActive:     true,
	}
	require.NoError(t, users.Create(env.Ctx, resident))

	bus := eventbus.NewEventPublisher(logrus.New())
	return &fixture{
		svc:    services.NewLeasingService(persistence.NewLeaseRepository(), units, bus),
		bus:    bus,
		unit:   u,
		tenant: env,
		user:   resident,
	}
}

func (f *fixture) createLease(t *testing.T) *domain.Lease {
	t.Helper()
	start := time.Now().UTC()
	lease, err := f.svc.Create(f.tenant.Ctx, services.CreateLeaseInput{
		UnitID:         f.unit.ID,
		ResidentUserID: f.user.ID,
		StartDate:      start,
		EndDate:        start.AddDate(1, 0, 0),
		MonthlyRent:    90000,
		DepositAmount:  90000,
	})
	require.NoError(t, err)
	return lease
}

func TestLeasingService_SignActivatesLeaseAndOccupiesUnit(t *testing.T) {
	f := setupLeasing(t)
	lease := f.createLease(t)
	assert.Equal(t, domain.LeaseStatusDraft, lease.Status)

	var published []domain.LeaseSignedEvent
	f.bus.Subscribe(func(event domain.LeaseSignedEvent) {
		published = append(published, event)
	})

	signed, err := f.svc.Sign(f.tenant.Ctx, lease.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LeaseStatusActive, signed.Status)
	require.NotNil(t, signed.SignedAt)

	units := propertypersistence.NewUnitRepository()
	u, err := units.GetByID(f.tenant.Ctx, f.unit.ID)
	require.NoError(t, err)
	assert.Equal(t, propertydomain.UnitStatusOccupied, u.Status)

	require.Len(t, published, 1)
	assert.Equal(t, lease.ID, published[0].LeaseID)
	assert.Equal(t, f.tenant.TenantID, published[0].TenantID)

	// Signing twice is rejected.
	_, err = f.svc.Sign(f.tenant.Ctx, lease.ID)
	assert.True(t, errors.Is(err, domain.ErrLeaseNotDraft))

	// A second draft on the occupied unit is rejected at creation.
	_, err = f.svc.Create(f.tenant.Ctx, services.CreateLeaseInput{
		UnitID:         f.unit.ID,
		ResidentUserID: f.user.ID,
		StartDate:      time.Now().UTC(),
		EndDate:        time.Now().UTC().AddDate(1, 0, 0),
		MonthlyRent:    90000,
	})
	assert.True(t, errors.Is(err, domain.ErrUnitAlreadyHeld))
}

func TestLeasingService_TerminateFreesUnit(t *testing.T) {
	f := setupLeasing(t)
	lease := f.createLease(t)

	_, err := f.svc.Sign(f.tenant.Ctx, lease.ID)
	require.NoError(t, err)

	terminated, err := f.svc.Terminate(f.tenant.Ctx, lease.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LeaseStatusTerminated, terminated.Status)

	units := propertypersistence.NewUnitRepository()
	u, err := units.GetByID(f.tenant.Ctx, f.unit.ID)
	require.NoError(t, err)
	assert.Equal(t, propertydomain.UnitStatusVacant, u.Status)

	// Only active leases terminate.
	_, err = f.svc.Terminate(f.tenant.Ctx, lease.ID)
	assert.True(t, errors.Is(err, domain.ErrLeaseNotActive))
}

func TestLeasingService_CreateRejectsInvertedTerm(t *testing.T) {
	f := setupLeasing(t)
	start := time.Now().UTC()
	_, err := f.svc.Create(f.tenant.Ctx, services.CreateLeaseInput{
		UnitID:         f.unit.ID,
		ResidentUserID: f.user.ID,
		StartDate:      start,
		EndDate:        start.AddDate(0, 0, -1),
		MonthlyRent:    90000,
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidLeaseTerm))
}
