package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atriumhq/atriumpm/pkg/composables"
)

func TestMain(m *testing.M) {
	// The configuration singleton opens its log file on first use; keep it
	// out of the package directory.
	tmp, err := os.MkdirTemp("", "atriumpm-middleware-test")
	if err != nil {
		panic(err)
	}
	_ = os.Setenv("LOG_PATH", filepath.Join(tmp, "app.log"))
	code := m.Run()
	_ = os.RemoveAll(tmp)
	os.Exit(code)
}

func tenantEchoHandler(t *testing.T, captured *uuid.UUID) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, err := composables.UseTenantID(r.Context()); err == nil {
			*captured = id
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireTenant_NoHeaderNoClaim(t *testing.T) {
	var captured uuid.UUID
	handler := RequireTenant()(tenantEchoHandler(t, &captured))

	req := httptest.NewRequest(http.MethodGet, "/api/buildings", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ErrTenantUnresolved, body["error"])
	assert.Equal(t, uuid.Nil, captured, "downstream handler must not run")
}

func TestRequireTenant_HeaderWinsOverClaim(t *testing.T) {
	headerTenant := uuid.New()
	claimTenant := uuid.New()

	var captured uuid.UUID
	handler := RequireTenant()(tenantEchoHandler(t, &captured))

	req := httptest.NewRequest(http.MethodGet, "/api/buildings", nil)
	req.Header.Set("X-Tenant-ID", headerTenant.String())
	req = req.WithContext(composables.WithPrincipal(req.Context(), &composables.Principal{
		Claims: map[string]any{composables.TenantClaim: claimTenant.String()},
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, headerTenant, captured)
}

func TestRequireTenant_ClaimFallback(t *testing.T) {
	claimTenant := uuid.New()

	var captured uuid.UUID
	handler := RequireTenant()(tenantEchoHandler(t, &captured))

	req := httptest.NewRequest(http.MethodGet, "/api/buildings", nil)
	req = req.WithContext(composables.WithPrincipal(req.Context(), &composables.Principal{
		Claims: map[string]any{composables.TenantClaim: claimTenant.String()},
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, claimTenant, captured)
}

func TestRequireTenant_MalformedHeaderFallsThroughToClaim(t *testing.T) {
	claimTenant := uuid.New()

	var captured uuid.UUID
	handler := RequireTenant()(tenantEchoHandler(t, &captured))

	req := httptest.NewRequest(http.MethodGet, "/api/buildings", nil)
	req.Header.Set("X-Tenant-ID", "not-a-uuid")
	req = req.WithContext(composables.WithPrincipal(req.Context(), &composables.Principal{
		Claims: map[string]any{composables.TenantClaim: claimTenant.String()},
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, claimTenant, captured)
}

func TestRequireTenant_ExemptPaths(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "tenant registration", path: "/api/tenants/register"},
		{name: "login", path: "/api/auth/login"},
		{name: "health", path: "/health"},
		{name: "swagger", path: "/swagger/index.html"},
		{name: "case insensitive", path: "/API/Tenants/Register"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured uuid.UUID
			handler := RequireTenant()(tenantEchoHandler(t, &captured))

			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, uuid.Nil, captured, "exempt paths proceed unresolved")
		})
	}
}

func TestRequireTenant_HeaderOnExemptPathStillProceeds(t *testing.T) {
	// Registration with a speculative header and no existing tenant must
	// not 400; exemption short-circuits resolution entirely.
	var captured uuid.UUID
	handler := RequireTenant()(tenantEchoHandler(t, &captured))

	req := httptest.NewRequest(http.MethodPost, "/api/tenants/register", nil)
	req.Header.Set("X-Tenant-ID", "11111111-1111-1111-1111-111111111111")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uuid.Nil, captured)
}
