// Package rls installs the storage-engine half of the tenant isolation
// boundary: a predicate function reading the session tenant variable plus a
// row-level-security policy per registered tenant table. It mirrors the
// application-level scoping in pkg/composables so that raw SQL bypassing
// the repositories is still tenant-bound.
package rls

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/atriumhq/atriumpm/pkg/composables"
)

// advisoryLockKey serializes concurrent bootstrap attempts across replicas
// of the same deployment. Arbitrary but stable.
const advisoryLockKey = 0x41545250 // "ATRP"

const predicateFunction = "atrium_current_tenant"

// predicateFunctionDDL returns the DDL for the session-reading predicate
// function. CREATE OR REPLACE keeps it idempotent; current_setting with
// missing_ok=true yields NULL (never matching) on unpinned sessions.
func predicateFunctionDDL() string {
	return fmt.Sprintf(`CREATE OR REPLACE FUNCTION %s() RETURNS uuid
LANGUAGE sql STABLE
AS $$ SELECT NULLIF(current_setting(%s, true), '')::uuid $$`,
		predicateFunction,
		quoteLiteral(composables.SessionTenantVar),
	)
}

// PolicyName returns the deterministic policy name for a table, keeping the
// bootstrap idempotent across runs.
func PolicyName(t Table) string {
	return fmt.Sprintf("atrium_rls_%s_%s", t.Schema, t.Name)
}

func policyDDL(t Table) string {
	ident := pgx.Identifier{t.Schema, t.Name}.Sanitize()
	return fmt.Sprintf(
		`CREATE POLICY %s ON %s FOR ALL USING (tenant_id = %s()) WITH CHECK (tenant_id = %s())`,
		pgx.Identifier{PolicyName(t)}.Sanitize(), ident, predicateFunction, predicateFunction,
	)
}

func quoteLiteral(s string) string {
	return "'" + s + "'"
}

// EnsureTenantPolicies installs the predicate function and one FOR ALL
// policy per registered tenant table. Safe to run on every startup:
// existence is checked by name before any CREATE, and the whole routine
// runs inside a transaction holding an advisory lock so concurrent
// replicas cannot race the DDL. Callers treat any failure as fatal.
func EnsureTenantPolicies(ctx context.Context, pool *pgxpool.Pool, log *logrus.Logger) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", int64(advisoryLockKey)); err != nil {
			return fmt.Errorf("rls bootstrap: acquire advisory lock: %w", err)
		}

		if _, err := tx.Exec(ctx, predicateFunctionDDL()); err != nil {
			return fmt.Errorf("rls bootstrap: create predicate function: %w", err)
		}

		for _, table := range TenantTables {
			installed, err := ensureTablePolicy(ctx, tx, table)
			if err != nil {
				return fmt.Errorf("rls bootstrap: table %s: %w", table, err)
			}
			if installed {
				log.WithField("table", table.String()).Info("installed row-level-security policy")
			}
		}
		return nil
	})
}

// ensureTablePolicy enables and forces RLS on the table and creates the
// tenant policy when absent. Tables without a tenant_id column are skipped;
// the registry may run ahead of a migration.
func ensureTablePolicy(ctx context.Context, tx pgx.Tx, t Table) (bool, error) {
	var hasColumn bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_schema = $1 AND table_name = $2 AND column_name = 'tenant_id'
		)`, t.Schema, t.Name).Scan(&hasColumn)
	if err != nil {
		return false, fmt.Errorf("check tenant_id column: %w", err)
	}
	if !hasColumn {
		return false, nil
	}

	ident := pgx.Identifier{t.Schema, t.Name}.Sanitize()
	if _, err := tx.Exec(ctx, "ALTER TABLE "+ident+" ENABLE ROW LEVEL SECURITY"); err != nil {
		return false, fmt.Errorf("enable rls: %w", err)
	}
	// FORCE applies the policy to the table owner as well; without it the
	// application role owning the schema would silently bypass the predicate.
	if _, err := tx.Exec(ctx, "ALTER TABLE "+ident+" FORCE ROW LEVEL SECURITY"); err != nil {
		return false, fmt.Errorf("force rls: %w", err)
	}

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM pg_policies
			WHERE schemaname = $1 AND tablename = $2 AND policyname = $3
		)`, t.Schema, t.Name, PolicyName(t)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check policy: %w", err)
	}
	if exists {
		return false, nil
	}

	if _, err := tx.Exec(ctx, policyDDL(t)); err != nil {
		return false, fmt.Errorf("create policy: %w", err)
	}
	return true, nil
}
