package composables

import (
	"context"

	"github.com/google/uuid"

	"github.com/atriumhq/atriumpm/pkg/constants"
)

// Principal is the authenticated identity attached to a request by the auth
// middleware. Token verification itself happens upstream; by the time a
// Principal exists its claims are trusted.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Role   string
	Claims map[string]any
}

const (
	// TenantClaim is the primary claim carrying the tenant id.
	TenantClaim = "tenant_id"
	// TenantFallbackClaim is consulted when TenantClaim is absent, for
	// tokens minted by identity providers that map tenancy onto groups.
	TenantFallbackClaim = "groups"
)

// TenantID extracts the tenant id from the principal claims. Checks
// TenantClaim first, then TenantFallbackClaim.
func (p *Principal) TenantID() (uuid.UUID, bool) {
	for _, name := range []string{TenantClaim, TenantFallbackClaim} {
		raw, ok := p.Claims[name]
		if !ok {
			continue
		}
		s, ok := raw.(string)
		if !ok {
			// groups-style claims arrive as a list; only the first entry
			// is considered.
			if list, isList := raw.([]any); isList && len(list) > 0 {
				s, ok = list[0].(string)
			}
		}
		if !ok {
			continue
		}
		id, err := uuid.Parse(s)
		if err != nil || id == uuid.Nil {
			continue
		}
		return id, true
	}
	return uuid.Nil, false
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, constants.PrincipalKey, p)
}

func UsePrincipal(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(constants.PrincipalKey).(*Principal)
	return p, ok
}
