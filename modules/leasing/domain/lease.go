package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/atriumhq/atriumpm/pkg/repo"
)

var (
	ErrLeaseNotFound    = errors.New("lease not found")
	ErrLeaseNotDraft    = errors.New("lease is not in draft state")
	ErrLeaseNotActive   = errors.New("lease is not active")
	ErrInvalidLeaseTerm = errors.New("lease end date must be after start date")
	ErrUnitAlreadyHeld  = errors.New("unit already has an active lease")
)

type LeaseStatus string

const (
	LeaseStatusDraft      LeaseStatus = "draft"
	LeaseStatusActive     LeaseStatus = "active"
	LeaseStatusTerminated LeaseStatus = "terminated"
	LeaseStatusExpired    LeaseStatus = "expired"
)

type Lease struct {
	repo.TenantOwned
	ID             uuid.UUID
	UnitID         uuid.UUID
	ResidentUserID uuid.UUID
	StartDate      time.Time
	EndDate        time.Time
	MonthlyRent    int64
	DepositAmount  int64
	Status         LeaseStatus
	SignedAt       *time.Time
}

// LeaseSignedEvent triggers the billing module's first-invoice flow.
type LeaseSignedEvent struct {
	TenantID    uuid.UUID
	LeaseID     uuid.UUID
	UnitID      uuid.UUID
	MonthlyRent int64
	Deposit     int64
	StartDate   time.Time
	Timestamp   time.Time
}

type LeaseFindParams struct {
	UnitID uuid.UUID
	Status LeaseStatus
	Limit  int
	Offset int
}

type LeaseRepository interface {
	Create(ctx context.Context, l *Lease) error
	GetByID(ctx context.Context, id uuid.UUID) (*Lease, error)
	List(ctx context.Context, params *LeaseFindParams) ([]*Lease, error)
	Update(ctx context.Context, l *Lease) error
	ActiveByUnit(ctx context.Context, unitID uuid.UUID) (*Lease, error)
}

// OccupancyRow is one building in the occupancy report.
type OccupancyRow struct {
	BuildingID   uuid.UUID
	BuildingName string
	TotalUnits   int64
	LeasedUnits  int64
}
