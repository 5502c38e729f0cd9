package composables

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUseTenantID(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		_, err := UseTenantID(context.Background())
		require.ErrorIs(t, err, ErrNoTenantID)
	})

	t.Run("nil uuid treated as unresolved", func(t *testing.T) {
		ctx := WithTenantID(context.Background(), uuid.Nil)
		_, err := UseTenantID(ctx)
		require.ErrorIs(t, err, ErrNoTenantID)
	})

	t.Run("resolved", func(t *testing.T) {
		want := uuid.New()
		ctx := WithTenantID(context.Background(), want)
		got, err := UseTenantID(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.True(t, TenantResolved(ctx))
	})
}

func TestSystemScope(t *testing.T) {
	assert.False(t, UseSystemScope(context.Background()))
	assert.True(t, UseSystemScope(WithSystemScope(context.Background())))
}

func TestPrincipalTenantID(t *testing.T) {
	primary := uuid.New()
	fallback := uuid.New()

	tests := []struct {
		name   string
		claims map[string]any
		want   uuid.UUID
		ok     bool
	}{
		{name: "primary claim", claims: map[string]any{TenantClaim: primary.String()}, want: primary, ok: true},
		{name: "fallback claim", claims: map[string]any{TenantFallbackClaim: fallback.String()}, want: fallback, ok: true},
		{
			name: "primary wins over fallback",
			claims: map[string]any{
				TenantClaim:         primary.String(),
				TenantFallbackClaim: fallback.String(),
			},
			want: primary, ok: true,
		},
		{
			name:   "fallback list claim takes first entry",
			claims: map[string]any{TenantFallbackClaim: []any{fallback.String(), primary.String()}},
			want:   fallback, ok: true,
		},
		{name: "garbage claim skipped", claims: map[string]any{TenantClaim: "not-a-uuid"}, ok: false},
		{name: "nil uuid skipped", claims: map[string]any{TenantClaim: uuid.Nil.String()}, ok: false},
		{name: "no claims", claims: map[string]any{}, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Principal{Claims: tt.claims}
			got, ok := p.TenantID()
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
