package composables

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atriumhq/atriumpm/pkg/configuration"
)

// SessionTenantVar is the server-side session variable carrying the current
// tenant id. It is read back by the atrium_current_tenant() predicate
// function installed by the rls package, which is what keeps raw SQL issued
// outside the repositories tenant-bound.
const SessionTenantVar = "app.current_tenant"

// ApplyTenantRLS pins the resolved tenant id onto the transaction via a
// transaction-local session variable. Every code path that begins a tenant
// transaction must call it before the first query.
func ApplyTenantRLS(ctx context.Context, tx pgx.Tx) error {
	if configuration.Use().RLSEnforce != "enforce" {
		return nil
	}
	if UseSystemScope(ctx) {
		return nil
	}
	tenantID, err := UseTenantID(ctx)
	if err != nil {
		return fmt.Errorf("rls requires tenant in context: %w", err)
	}
	_, err = tx.Exec(ctx, "SELECT set_config($1, $2, true)", SessionTenantVar, tenantID.String())
	if err != nil {
		return fmt.Errorf("failed to set rls tenant context: %w", err)
	}
	return nil
}

// AcquireTenantConn checks out a dedicated connection with the session
// tenant variable pinned for the lifetime of the checkout. It exists for
// hand-written SQL that cannot run inside InTenantTx (COPY, cursors,
// reporting queries); the pool's release hook resets the variable so the
// identity never leaks into the next checkout.
//
// No-op pinning when the context carries no tenant (background jobs,
// migrations): the connection is returned unpinned and RLS policies will
// see an empty session tenant.
func AcquireTenantConn(ctx context.Context) (*pgxpool.Conn, error) {
	pool, err := UsePool(ctx)
	if err != nil {
		return nil, err
	}
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := UseTenantID(ctx)
	if err != nil {
		return conn, nil
	}
	if _, err := conn.Exec(ctx, "SELECT set_config($1, $2, false)", SessionTenantVar, tenantID.String()); err != nil {
		conn.Release()
		return nil, fmt.Errorf("failed to pin session tenant: %w", err)
	}
	return conn, nil
}

// ResetSessionTenant clears the session tenant variable on a connection.
// Wired into the pool's AfterRelease hook so pooled connections never carry
// a previous request's tenant.
func ResetSessionTenant(ctx context.Context, conn *pgx.Conn) error {
	_, err := conn.Exec(ctx, "SELECT set_config($1, '', false)", SessionTenantVar)
	return err
}
