package composables

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Both pgx transactions and bare pools satisfy the query surface UseTx
// hands to repositories.
var (
	_ Tx = (pgx.Tx)(nil)
	_ Tx = (*pgxpool.Pool)(nil)
)

func TestMain(m *testing.M) {
	tmp, err := os.MkdirTemp("", "atriumpm-composables-test")
	if err != nil {
		panic(err)
	}
	_ = os.Setenv("LOG_PATH", filepath.Join(tmp, "app.log"))
	_ = os.Setenv("RLS_ENFORCE", "enforce")
	code := m.Run()
	_ = os.RemoveAll(tmp)
	os.Exit(code)
}

type recordingTx struct {
	pgx.Tx
	statements []string
}

func (t *recordingTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	t.statements = append(t.statements, sql)
	return pgconn.CommandTag{}, nil
}

func TestInTenantTx_PinsSessionTenant(t *testing.T) {
	rec := &recordingTx{}
	ctx := WithTx(context.Background(), rec)

	err := InTenantTx(WithTenantID(ctx, uuid.New()), func(context.Context) error { return nil })
	require.NoError(t, err)
	require.Len(t, rec.statements, 1)
	assert.Contains(t, rec.statements[0], "set_config")
}

func TestInTenantTx_SystemScopeSkipsPinning(t *testing.T) {
	rec := &recordingTx{}
	ctx := WithTx(context.Background(), rec)

	err := InTenantTx(WithSystemScope(ctx), func(context.Context) error { return nil })
	require.NoError(t, err)
	assert.Empty(t, rec.statements)
}

func TestInTenantTx_UnresolvedTenantFails(t *testing.T) {
	rec := &recordingTx{}
	ctx := WithTx(context.Background(), rec)

	err := InTenantTx(ctx, func(context.Context) error { return nil })
	require.Error(t, err)
	assert.Empty(t, rec.statements)
}
