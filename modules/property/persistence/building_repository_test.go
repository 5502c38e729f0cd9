package persistence_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atriumhq/atriumpm/modules/property/domain"
	"github.com/atriumhq/atriumpm/modules/property/persistence"
	"github.com/atriumhq/atriumpm/pkg/itf"
)

func TestBuildingRepository_TenantIsolation(t *testing.T) {
	env := itf.Setup(t)
	repo := persistence.NewBuildingRepository()

	b := &domain.Building{
		Name:    "Maple Court",
		Address: "12 Maple St",
		City:    "Springfield",
	}
	require.NoError(t, repo.Create(env.Ctx, b))
	require.Equal(t, env.TenantID, b.TenantID)

	got, err := repo.GetByID(env.Ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maple Court", got.Name)

	// The same rows must be invisible to another tenant.
	otherID := itf.CreateTestTenant(t, env.Pool)
	otherCtx := env.WithTenant(otherID)

	_, err = repo.GetByID(otherCtx, b.ID)
	assert.True(t, errors.Is(err, domain.ErrBuildingNotFound))

	list, err := repo.List(otherCtx, &domain.BuildingFindParams{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = repo.List(env.Ctx, &domain.BuildingFindParams{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)
}

func TestBuildingRepository_UpdateStampsAndKeepsTenant(t *testing.T) {
	env := itf.Setup(t)
	repo := persistence.NewBuildingRepository()

	b := &domain.Building{Name: "Oak House", Address: "1 Oak Ave"}
	require.NoError(t, repo.Create(env.Ctx, b))
	created := b.ModifiedDate

	b.Name = "Oak House Annex"
	require.NoError(t, repo.Update(env.Ctx, b))
	assert.Equal(t, env.TenantID, b.TenantID)
	assert.True(t, b.ModifiedDate.After(created) || b.ModifiedDate.Equal(created))

	got, err := repo.GetByID(env.Ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Oak House Annex", got.Name)
}

func TestUnitRepository_ScopedToBuildingAndTenant(t *testing.T) {
	env := itf.Setup(t)
	buildings := persistence.NewBuildingRepository()
	units := persistence.NewUnitRepository()

	b := &domain.Building{Name: "Cedar Flats", Address: "9 Cedar Rd"}
	require.NoError(t, buildings.Create(env.Ctx, b))

	u := &domain.Unit{BuildingID: b.ID, UnitNumber: "2B", MonthlyRent: 120000}
	require.NoError(t, units.Create(env.Ctx, u))
	assert.Equal(t, domain.UnitStatusVacant, u.Status)

	listed, err := units.ListByBuilding(env.Ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	otherID := itf.CreateTestTenant(t, env.Pool)
	listed, err = units.ListByBuilding(env.WithTenant(otherID), b.ID)
	require.NoError(t, err)
	assert.Empty(t, listed)

	require.NoError(t, units.SetStatus(env.Ctx, u.ID, domain.UnitStatusOccupied))
	got, err := units.GetByID(env.Ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UnitStatusOccupied, got.Status)
}
