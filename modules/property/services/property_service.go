package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/atriumhq/atriumpm/modules/property/domain"
	"github.com/atriumhq/atriumpm/pkg/composables"
	"github.com/atriumhq/atriumpm/pkg/eventbus"
)

type PropertyService struct {
	buildings domain.BuildingRepository
	units     domain.UnitRepository
	publisher eventbus.EventBus
}

func NewPropertyService(
	buildings domain.BuildingRepository,
	units domain.UnitRepository,
	publisher eventbus.EventBus,
) *PropertyService {
	return &PropertyService{
		buildings: buildings,
		units:     units,
		publisher: publisher,
	}
}

func (s *PropertyService) CreateBuilding(ctx context.Context, b *domain.Building) error {
	return composables.InTenantTx(ctx, func(txCtx context.Context) error {
		return s.buildings.Create(txCtx, b)
	})
}

func (s *PropertyService) GetBuilding(ctx context.Context, id uuid.UUID) (*domain.Building, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*domain.Building, error) {
		return s.buildings.GetByID(txCtx, id)
	})
}

func (s *PropertyService) ListBuildings(ctx context.Context, params *domain.BuildingFindParams) ([]*domain.Building, error) {
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 50
	}
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]*domain.Building, error) {
		return s.buildings.List(txCtx, params)
	})
}

func (s *PropertyService) UpdateBuilding(ctx context.Context, b *domain.Building) error {
	return composables.InTenantTx(ctx, func(txCtx context.Context) error {
		return s.buildings.Update(txCtx, b)
	})
}

// DeleteBuilding refuses when any unit is occupied; vacant units go with
// the building (ON DELETE CASCADE).
func (s *PropertyService) DeleteBuilding(ctx context.Context, id uuid.UUID) error {
	return composables.InTenantTx(ctx, func(txCtx context.Context) error {
		units, err := s.units.ListByBuilding(txCtx, id)
		if err != nil {
			return err
		}
		for _, u := range units {
			if u.Status == domain.UnitStatusOccupied {
				return domain.ErrUnitOccupied
			}
		}
		return s.buildings.Delete(txCtx, id)
	})
}

func (s *PropertyService) CreateUnit(ctx context.Context, u *domain.Unit) error {
	return composables.InTenantTx(ctx, func(txCtx context.Context) error {
		if _, err := s.buildings.GetByID(txCtx, u.BuildingID); err != nil {
			return err
		}
		return s.units.Create(txCtx, u)
	})
}

func (s *PropertyService) GetUnit(ctx context.Context, id uuid.UUID) (*domain.Unit, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*domain.Unit, error) {
		return s.units.GetByID(txCtx, id)
	})
}

func (s *PropertyService) ListUnits(ctx context.Context, buildingID uuid.UUID) ([]*domain.Unit, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]*domain.Unit, error) {
		return s.units.ListByBuilding(txCtx, buildingID)
	})
}

func (s *PropertyService) UpdateUnit(ctx context.Context, u *domain.Unit) error {
	return composables.InTenantTx(ctx, func(txCtx context.Context) error {
		return s.units.Update(txCtx, u)
	})
}
