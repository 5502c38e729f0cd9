package rls

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyName_Deterministic(t *testing.T) {
	table := Table{Schema: "public", Name: "buildings"}
	assert.Equal(t, "atrium_rls_public_buildings", PolicyName(table))
	assert.Equal(t, PolicyName(table), PolicyName(table))
}

func TestPredicateFunctionDDL(t *testing.T) {
	ddl := predicateFunctionDDL()
	assert.Contains(t, ddl, "CREATE OR REPLACE FUNCTION atrium_current_tenant()")
	assert.Contains(t, ddl, "current_setting('app.current_tenant', true)")
	assert.Contains(t, ddl, "NULLIF", "unpinned sessions must evaluate to NULL, not error")
}

func TestPolicyDDL(t *testing.T) {
	ddl := policyDDL(Table{Schema: "public", Name: "units"})
	assert.Contains(t, ddl, `CREATE POLICY "atrium_rls_public_units" ON "public"."units"`)
	assert.Contains(t, ddl, "FOR ALL")
	assert.Contains(t, ddl, "USING (tenant_id = atrium_current_tenant())")
	assert.Contains(t, ddl, "WITH CHECK (tenant_id = atrium_current_tenant())")
}

func TestRegistryCoversKnownTables(t *testing.T) {
	require.NotEmpty(t, TenantTables)
	seen := make(map[string]bool, len(TenantTables))
	for _, table := range TenantTables {
		require.NotEmpty(t, table.Schema)
		require.NotEmpty(t, table.Name)
		require.False(t, seen[table.String()], "duplicate registry entry %s", table)
		seen[table.String()] = true
	}
	// The tenants root table defines the tenant and must never be scoped.
	assert.False(t, seen["public.tenants"])
}
