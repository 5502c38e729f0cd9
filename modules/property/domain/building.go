package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/atriumhq/atriumpm/pkg/repo"
)

var (
	ErrBuildingNotFound = errors.New("building not found")
	ErrUnitNotFound     = errors.New("unit not found")
	ErrUnitOccupied     = errors.New("unit is occupied")
)

type Building struct {
	repo.TenantOwned
	ID         uuid.UUID
	Name       string
	Address    string
	City       string
	State      string
	PostalCode string
}

type UnitStatus string

const (
	UnitStatusVacant      UnitStatus = "vacant"
	UnitStatusOccupied    UnitStatus = "occupied"
	UnitStatusMaintenance UnitStatus = "maintenance"
)

type Unit struct {
	repo.TenantOwned
	ID          uuid.UUID
	BuildingID  uuid.UUID
	UnitNumber  string
	Bedrooms    int
	Bathrooms   int
	SquareFeet  int
	MonthlyRent int64
	Status      UnitStatus
}

type BuildingFindParams struct {
	City   string
	Limit  int
	Offset int
}

type BuildingRepository interface {
	Create(ctx context.Context, b *Building) error
	GetByID(ctx context.Context, id uuid.UUID) (*Building, error)
	List(ctx context.Context, params *BuildingFindParams) ([]*Building, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, b *Building) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type UnitRepository interface {
	Create(ctx context.Context, u *Unit) error
	GetByID(ctx context.Context, id uuid.UUID) (*Unit, error)
	ListByBuilding(ctx context.Context, buildingID uuid.UUID) ([]*Unit, error)
	Update(ctx context.Context, u *Unit) error
	SetStatus(ctx context.Context, id uuid.UUID, status UnitStatus) error
}
