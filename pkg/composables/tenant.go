package composables

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/atriumhq/atriumpm/pkg/constants"
)

var ErrNoTenantID = errors.New("no tenant id found in context")

// WithTenantID returns a new context carrying the resolved tenant id.
// The tenant middleware is the only writer on the request path; everything
// downstream treats the value as read-only.
func WithTenantID(ctx context.Context, tenantID uuid.UUID) context.Context {
	return context.WithValue(ctx, constants.TenantIDKey, tenantID)
}

// UseTenantID returns the tenant id committed into the context by the
// tenant middleware. Returns ErrNoTenantID when the request was never
// resolved (exempt paths, background work without a system scope).
func UseTenantID(ctx context.Context) (uuid.UUID, error) {
	v := ctx.Value(constants.TenantIDKey)
	if v == nil {
		return uuid.Nil, ErrNoTenantID
	}
	id, ok := v.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, ErrNoTenantID
	}
	return id, nil
}

// TenantResolved reports whether the context carries a usable tenant id.
func TenantResolved(ctx context.Context) bool {
	_, err := UseTenantID(ctx)
	return err == nil
}

// WithSystemScope marks the context as deliberately operating outside of a
// tenant boundary. It is the explicit escape hatch for migrations, seeding
// and documented cross-tenant lookups; tenant-owned writes without either a
// resolved tenant or a system scope are rejected by the data layer.
func WithSystemScope(ctx context.Context) context.Context {
	return context.WithValue(ctx, constants.SystemScopeKey, true)
}

// UseSystemScope reports whether the context was granted the cross-tenant
// system scope via WithSystemScope.
func UseSystemScope(ctx context.Context) bool {
	v, ok := ctx.Value(constants.SystemScopeKey).(bool)
	return ok && v
}
