package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// TenantStatus is the lifecycle state of a property-management company.
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
)

var (
	ErrTenantNotFound       = errors.New("tenant not found")
	ErrSubdomainTaken       = errors.New("subdomain already taken")
	ErrTenantSuspended      = errors.New("tenant is suspended")
	ErrInvalidTenantPayload = errors.New("invalid tenant payload")
)

// Tenant is the root entity of the platform. It deliberately does NOT embed
// repo.TenantOwned: the tenant defines the boundary, it does not live
// inside one, and its table is excluded from the RLS registry.
type Tenant struct {
	ID        uuid.UUID
	Name      string
	Subdomain string
	Status    TenantStatus
	CreatedAt time.Time
	// ConnectionString optionally routes this tenant to a dedicated
	// database (template consumed by pkg/tenantdb).
	ConnectionString *string
}

func (t *Tenant) Active() bool {
	return t.Status == TenantStatusActive
}

// TenantRepository operates outside the tenant boundary by definition; all
// its methods are documented cross-tenant operations.
type TenantRepository interface {
	Create(ctx context.Context, t *Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*Tenant, error)
}
