// Package itf is the integration-test foundation: helpers building fully
// wired request contexts against a disposable database. Tests using it skip
// unless ATRIUM_TEST_DB carries a DSN, so the default `go test` run stays
// hermetic.
package itf

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atriumhq/atriumpm/pkg/composables"
)

const dsnEnv = "ATRIUM_TEST_DB"

// NewPool connects to the test database or skips the test.
func NewPool(tb testing.TB) *pgxpool.Pool {
	tb.Helper()
	dsn := os.Getenv(dsnEnv)
	if dsn == "" {
		tb.Skipf("set %s to run database tests", dsnEnv)
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		tb.Fatalf("connect test database: %v", err)
	}
	tb.Cleanup(pool.Close)
	return pool
}

// CreateTestTenant inserts a tenant row and returns its id.
func CreateTestTenant(tb testing.TB, pool *pgxpool.Pool) uuid.UUID {
	tb.Helper()
	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO tenants (id, name, subdomain, status) VALUES ($1, $2, $3, 'active')`,
		id, "test-"+id.String()[:8], "test-"+id.String()[:8],
	)
	if err != nil {
		tb.Fatalf("create test tenant: %v", err)
	}
	return id
}

// Env is a ready-to-use tenant-scoped test environment. The transaction is
// rolled back on cleanup so tests leave no rows behind.
type Env struct {
	Ctx      context.Context
	Pool     *pgxpool.Pool
	Tx       pgx.Tx
	TenantID uuid.UUID
}

// Setup opens a pool, creates a tenant and a transaction, and returns a
// context wired the way the request pipeline would wire it.
func Setup(tb testing.TB) *Env {
	tb.Helper()
	pool := NewPool(tb)
	tenantID := CreateTestTenant(tb, pool)

	ctx := context.Background()
	tx, err := pool.Begin(ctx)
	if err != nil {
		tb.Fatalf("begin tx: %v", err)
	}
	tb.Cleanup(func() {
		if err := tx.Rollback(context.Background()); err != nil && err != pgx.ErrTxClosed {
			tb.Logf("rollback: %v", err)
		}
	})

	ctx = composables.WithPool(ctx, pool)
	ctx = composables.WithTx(ctx, tx)
	ctx = composables.WithTenantID(ctx, tenantID)

	return &Env{Ctx: ctx, Pool: pool, Tx: tx, TenantID: tenantID}
}

// WithTenant returns a copy of the environment context bound to a different
// tenant, for cross-tenant isolation assertions.
func (e *Env) WithTenant(tenantID uuid.UUID) context.Context {
	return composables.WithTenantID(e.Ctx, tenantID)
}
