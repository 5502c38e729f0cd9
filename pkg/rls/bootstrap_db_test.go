package rls_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atriumhq/atriumpm/pkg/itf"
	"github.com/atriumhq/atriumpm/pkg/rls"
)

func TestEnsureTenantPolicies_Idempotent(t *testing.T) {
	pool := itf.NewPool(t)
	ctx := context.Background()
	log := logrus.New()

	require.NoError(t, rls.EnsureTenantPolicies(ctx, pool, log))
	// A second run finds everything in place and changes nothing.
	require.NoError(t, rls.EnsureTenantPolicies(ctx, pool, log))

	for _, table := range rls.TenantTables {
		var exists bool
		err := pool.QueryRow(ctx,
			`SELECT EXISTS (
				SELECT 1 FROM pg_policies
				WHERE schemaname = $1 AND tablename = $2 AND policyname = $3
			)`, table.Schema, table.Name, rls.PolicyName(table)).Scan(&exists)
		require.NoError(t, err)

		var hasTable bool
		err = pool.QueryRow(ctx,
			`SELECT EXISTS (
				SELECT 1 FROM information_schema.columns
				WHERE table_schema = $1 AND table_name = $2 AND column_name = 'tenant_id'
			)`, table.Schema, table.Name).Scan(&hasTable)
		require.NoError(t, err)

		if hasTable {
			assert.True(t, exists, "policy missing for %s", table)
		}
	}
}

func TestTenantPolicies_ScopeUnfilteredQueries(t *testing.T) {
	pool := itf.NewPool(t)
	ctx := context.Background()

	var superuser bool
	require.NoError(t, pool.QueryRow(ctx,
		"SELECT usesuper FROM pg_user WHERE usename = current_user").Scan(&superuser))
	if superuser {
		t.Skip("row level security never applies to superusers")
	}

	require.NoError(t, rls.EnsureTenantPolicies(ctx, pool, logrus.New()))

	tenantA := itf.CreateTestTenant(t, pool)
	tenantB := itf.CreateTestTenant(t, pool)

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tx.Rollback(context.Background()) })

	insert := func(tenant uuid.UUID, name string) {
		_, err := tx.Exec(ctx,
			"SELECT set_config('app.current_tenant', $1, true)", tenant.String())
		require.NoError(t, err)
		_, err = tx.Exec(ctx,
			`INSERT INTO buildings (id, tenant_id, name, address)
			 VALUES ($1, $2, $3, '1 Main St')`,
			uuid.New(), tenant, name)
		require.NoError(t, err)
	}
	insert(tenantA, "North Tower")
	insert(tenantA, "North Annex")
	insert(tenantB, "South Tower")

	// No WHERE clause: the policy alone scopes the rows.
	_, err = tx.Exec(ctx,
		"SELECT set_config('app.current_tenant', $1, true)", tenantA.String())
	require.NoError(t, err)

	var count int
	require.NoError(t, tx.QueryRow(ctx, "SELECT count(*) FROM buildings").Scan(&count))
	assert.Equal(t, 2, count)

	// A mismatched insert trips the policy's check clause.
	_, err = tx.Exec(ctx,
		`INSERT INTO buildings (id, tenant_id, name, address)
		 VALUES ($1, $2, 'Smuggled', '2 Main St')`,
		uuid.New(), tenantB)
	assert.Error(t, err)
}
