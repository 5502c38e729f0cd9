package repo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atriumhq/atriumpm/pkg/composables"
)

type building struct {
	TenantOwned
	Address string
}

func TestStampForInsert_CopiesTenantFromContext(t *testing.T) {
	tenantID := uuid.New()
	ctx := composables.WithTenantID(context.Background(), tenantID)

	b := &building{Address: "12 Elm St"}
	require.NoError(t, StampForInsert(ctx, b))

	assert.Equal(t, tenantID, b.GetTenantID())
	assert.False(t, b.CreatedDate.IsZero())
	assert.Equal(t, b.CreatedDate, b.ModifiedDate)
	assert.Nil(t, b.ModifiedBy)
}

func TestStampForInsert_KeepsExplicitTenant(t *testing.T) {
	ctxTenant := uuid.New()
	explicit := uuid.New()
	ctx := composables.WithTenantID(context.Background(), ctxTenant)

	b := &building{Address: "12 Elm St"}
	b.SetTenantID(explicit)
	require.NoError(t, StampForInsert(ctx, b))

	assert.Equal(t, explicit, b.GetTenantID())
}

func TestStampForInsert_RejectsUnresolvedTenant(t *testing.T) {
	b := &building{Address: "12 Elm St"}
	err := StampForInsert(context.Background(), b)
	require.ErrorIs(t, err, ErrTenantRequired)
}

func TestStampForInsert_SystemScopeAllowsNilTenant(t *testing.T) {
	ctx := composables.WithSystemScope(context.Background())
	b := &building{Address: "12 Elm St"}
	require.NoError(t, StampForInsert(ctx, b))
	assert.Equal(t, uuid.Nil, b.GetTenantID())
}

func TestStampForUpdate_RevertsTenantChange(t *testing.T) {
	owner := uuid.New()
	attacker := uuid.New()

	b := &building{Address: "12 Elm St"}
	b.SetTenantID(attacker)
	before := time.Now().UTC()
	StampForUpdate(context.Background(), b, owner)

	assert.Equal(t, owner, b.GetTenantID(), "tenant_id must stay write-once")
	assert.False(t, b.ModifiedDate.Before(before))
}

func TestStampForUpdate_StampsModifiedOnly(t *testing.T) {
	owner := uuid.New()
	b := &building{Address: "12 Elm St"}
	b.SetTenantID(owner)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	b.touchCreated(created)

	StampForUpdate(context.Background(), b, owner)

	assert.Equal(t, created, b.CreatedDate)
	assert.True(t, b.ModifiedDate.After(created))
}
