package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/atriumhq/atriumpm/pkg/composables"
)

// ErrTenantRequired is returned when a tenant-owned row is about to be
// written without a resolved tenant and without an explicit system scope.
// The storage engine would accept the row with a nil tenant id; rejecting it
// here keeps caller bugs from creating orphaned rows.
var ErrTenantRequired = errors.New("tenant-owned write requires a resolved tenant or an explicit system scope")

// HasTenant is the capability contract of every tenant-owned entity. It is
// satisfied by embedding TenantOwned.
type HasTenant interface {
	GetTenantID() uuid.UUID
	SetTenantID(uuid.UUID)
	touchCreated(time.Time)
	touchModified(time.Time)
}

// TenantOwned carries the tenant boundary and audit fields shared by every
// tenant-scoped entity. tenant_id is write-once: set at creation, immutable
// afterwards.
type TenantOwned struct {
	TenantID     uuid.UUID
	CreatedDate  time.Time
	ModifiedDate time.Time
	// ModifiedBy is reserved for a future actor-attribution pass; the core
	// data layer never populates it.
	ModifiedBy *string
}

func (t *TenantOwned) GetTenantID() uuid.UUID      { return t.TenantID }
func (t *TenantOwned) SetTenantID(id uuid.UUID)    { t.TenantID = id }
func (t *TenantOwned) touchCreated(now time.Time)  { t.CreatedDate = now }
func (t *TenantOwned) touchModified(now time.Time) { t.ModifiedDate = now }

// StampForInsert prepares a tenant-owned entity for its initial write:
// copies the tenant id from the context when the entity carries none and
// stamps both audit timestamps.
//
// When the context is unresolved the write is rejected unless the caller
// either pre-set a tenant id explicitly or requested the system scope; a
// system-scope write with a nil tenant id is allowed (system-level rows)
// but logged by callers that care.
func StampForInsert(ctx context.Context, e HasTenant) error {
	now := time.Now().UTC()
	e.touchCreated(now)
	e.touchModified(now)

	if e.GetTenantID() != uuid.Nil {
		return nil
	}
	if tenantID, err := composables.UseTenantID(ctx); err == nil {
		e.SetTenantID(tenantID)
		return nil
	}
	if composables.UseSystemScope(ctx) {
		return nil
	}
	return ErrTenantRequired
}

// StampForUpdate prepares a tenant-owned entity for an update against the
// persisted row identified by existingTenant: stamps ModifiedDate and
// reverts any attempt to change the tenant id. The revert is silent;
// updates never move a row across tenants.
func StampForUpdate(ctx context.Context, e HasTenant, existingTenant uuid.UUID) {
	e.touchModified(time.Now().UTC())
	if e.GetTenantID() != existingTenant {
		e.SetTenantID(existingTenant)
	}
}
