package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/atriumhq/atriumpm/modules/leasing/domain"
	propertydomain "github.com/atriumhq/atriumpm/modules/property/domain"
	"github.com/atriumhq/atriumpm/pkg/composables"
	"github.com/atriumhq/atriumpm/pkg/eventbus"
)

type CreateLeaseInput struct {
	UnitID         uuid.UUID
	ResidentUserID uuid.UUID
	StartDate      time.Time
	EndDate        time.Time
	MonthlyRent    int64
	DepositAmount  int64
}

type LeasingService struct {
	leases    domain.LeaseRepository
	units     propertydomain.UnitRepository
	publisher eventbus.EventBus
}

func NewLeasingService(
	leases domain.LeaseRepository,
	units propertydomain.UnitRepository,
	publisher eventbus.EventBus,
) *LeasingService {
	return &LeasingService{
		leases:    leases,
		units:     units,
		publisher: publisher,
	}
}

func (s *LeasingService) Create(ctx context.Context, input CreateLeaseInput) (*domain.Lease, error) {
	if !input.EndDate.After(input.StartDate) {
		return nil, domain.ErrInvalidLeaseTerm
	}

	l := &domain.Lease{
		ID:             uuid.New(),
		UnitID:         input.UnitID,
		ResidentUserID: input.ResidentUserID,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		MonthlyRent:    input.MonthlyRent,
		DepositAmount:  input.DepositAmount,
		Status:         domain.LeaseStatusDraft,
	}
	err := composables.InTenantTx(ctx, func(txCtx context.Context) error {
		if _, err := s.units.GetByID(txCtx, input.UnitID); err != nil {
			return err
		}
		_, err := s.leases.ActiveByUnit(txCtx, input.UnitID)
		if err == nil {
			return domain.ErrUnitAlreadyHeld
		}
		if !errors.Is(err, domain.ErrLeaseNotFound) {
			return err
		}
		return s.leases.Create(txCtx, l)
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (s *LeasingService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lease, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*domain.Lease, error) {
		return s.leases.GetByID(txCtx, id)
	})
}

func (s *LeasingService) List(ctx context.Context, params *domain.LeaseFindParams) ([]*domain.Lease, error) {
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 50
	}
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]*domain.Lease, error) {
		return s.leases.List(txCtx, params)
	})
}

// Sign activates a draft lease, marks the unit occupied and publishes the
// event the billing module listens for.
func (s *LeasingService) Sign(ctx context.Context, id uuid.UUID) (*domain.Lease, error) {
	var lease *domain.Lease
	err := composables.InTenantTx(ctx, func(txCtx context.Context) error {
		l, err := s.leases.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if l.Status != domain.LeaseStatusDraft {
			return domain.ErrLeaseNotDraft
		}

		now := time.Now().UTC()
		l.Status = domain.LeaseStatusActive
		l.SignedAt = &now
		if err := s.leases.Update(txCtx, l); err != nil {
			return err
		}
		if err := s.units.SetStatus(txCtx, l.UnitID, propertydomain.UnitStatusOccupied); err != nil {
			return err
		}
		lease = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(domain.LeaseSignedEvent{
		TenantID:    lease.TenantID,
		LeaseID:     lease.ID,
		UnitID:      lease.UnitID,
		MonthlyRent: lease.MonthlyRent,
		Deposit:     lease.DepositAmount,
		StartDate:   lease.StartDate,
		Timestamp:   time.Now().UTC(),
	})
	return lease, nil
}

func (s *LeasingService) Terminate(ctx context.Context, id uuid.UUID) (*domain.Lease, error) {
	var lease *domain.Lease
	err := composables.InTenantTx(ctx, func(txCtx context.Context) error {
		l, err := s.leases.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if l.Status != domain.LeaseStatusActive {
			return domain.ErrLeaseNotActive
		}
		l.Status = domain.LeaseStatusTerminated
		if err := s.leases.Update(txCtx, l); err != nil {
			return err
		}
		if err := s.units.SetStatus(txCtx, l.UnitID, propertydomain.UnitStatusVacant); err != nil {
			return err
		}
		lease = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lease, nil
}

// OccupancyReport runs hand-written SQL on a connection with the session
// tenant pinned. The query carries no tenant_id predicate on purpose: the
// row security policies installed at startup scope it, which keeps ad hoc
// reporting SQL inside the tenant boundary even when someone forgets the
// filter.
func (s *LeasingService) OccupancyReport(ctx context.Context) ([]*domain.OccupancyRow, error) {
	conn, err := composables.AcquireTenantConn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
		SELECT b.id, b.name, COUNT(u.id) AS total_units,
		       COUNT(u.id) FILTER (WHERE u.status = 'occupied') AS leased_units
		FROM buildings b
		LEFT JOIN units u ON u.building_id = b.id
		GROUP BY b.id, b.name
		ORDER BY b.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var report []*domain.OccupancyRow
	for rows.Next() {
		var row domain.OccupancyRow
		if err := rows.Scan(&row.BuildingID, &row.BuildingName, &row.TotalUnits, &row.LeasedUnits); err != nil {
			return nil, err
		}
		report = append(report, &row)
	}
	return report, rows.Err()
}
