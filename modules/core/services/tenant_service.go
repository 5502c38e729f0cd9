package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/atriumhq/atriumpm/modules/core/domain"
	"github.com/atriumhq/atriumpm/pkg/composables"
	"github.com/atriumhq/atriumpm/pkg/eventbus"
)

var subdomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// RegisterTenantInput carries everything needed to onboard a company: the
// tenant record plus the first admin user seeded inside it.
type RegisterTenantInput struct {
	Name          string
	Subdomain     string
	AdminEmail    string
	AdminPassword string
	FirstName     string
	LastName      string
}

type RegisterTenantResult struct {
	Tenant *domain.Tenant
	Admin  *domain.User
}

// TenantService owns the registration flow, the one write path that runs
// before any tenant context exists.
type TenantService struct {
	tenants   domain.TenantRepository
	users     domain.UserRepository
	publisher eventbus.EventBus
}

func NewTenantService(
	tenants domain.TenantRepository,
	users domain.UserRepository,
	publisher eventbus.EventBus,
) *TenantService {
	return &TenantService{
		tenants:   tenants,
		users:     users,
		publisher: publisher,
	}
}

// Register creates the tenant and seeds its admin user in one transaction.
// The tenant id is generated up front and placed in the context before the
// transaction starts, so the session tenant variable is already pinned to
// the new tenant when the admin row is inserted.
func (s *TenantService) Register(ctx context.Context, input RegisterTenantInput) (*RegisterTenantResult, error) {
	input.Subdomain = strings.ToLower(strings.TrimSpace(input.Subdomain))
	if err := validateRegistration(input); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}

	tenant := &domain.Tenant{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(input.Name),
		Subdomain: input.Subdomain,
		Status:    domain.TenantStatusActive,
	}
	admin := &domain.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(input.AdminEmail)),
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Role:         domain.RoleAdmin,
		IsActive:     true,
	}

	tenantCtx := composables.WithTenantID(ctx, tenant.ID)
	err = composables.InTenantTx(tenantCtx, func(txCtx context.Context) error {
		if err := s.tenants.Create(txCtx, tenant); err != nil {
			return err
		}
		return s.users.Create(txCtx, admin)
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(domain.TenantCreatedEvent{
		TenantID:  tenant.ID,
		Name:      tenant.Name,
		Subdomain: tenant.Subdomain,
		Timestamp: time.Now().UTC(),
	})
	return &RegisterTenantResult{Tenant: tenant, Admin: admin}, nil
}

// GetByID is a cross-tenant lookup used during authentication, before the
// tenant middleware has run.
func (s *TenantService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	sysCtx := composables.WithSystemScope(ctx)
	return composables.InTenantTxResult(sysCtx, func(txCtx context.Context) (*domain.Tenant, error) {
		return s.tenants.GetByID(txCtx, id)
	})
}

func (s *TenantService) GetBySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error) {
	sysCtx := composables.WithSystemScope(ctx)
	return composables.InTenantTxResult(sysCtx, func(txCtx context.Context) (*domain.Tenant, error) {
		return s.tenants.GetBySubdomain(txCtx, subdomain)
	})
}

// GetConnectionTemplate returns the tenant's connection-string template,
// empty when the tenant lives on the shared database.
func (s *TenantService) GetConnectionTemplate(ctx context.Context, id uuid.UUID) (string, error) {
	tenant, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if tenant.ConnectionString == nil {
		return "", nil
	}
	return strings.TrimSpace(*tenant.ConnectionString), nil
}

func validateRegistration(input RegisterTenantInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidTenantPayload)
	}
	if !subdomainPattern.MatchString(input.Subdomain) {
		return fmt.Errorf("%w: subdomain must be lowercase alphanumeric with hyphens", domain.ErrInvalidTenantPayload)
	}
	if strings.TrimSpace(input.AdminEmail) == "" {
		return fmt.Errorf("%w: admin email is required", domain.ErrInvalidTenantPayload)
	}
	if len(input.AdminPassword) < 8 {
		return fmt.Errorf("%w: admin password must be at least 8 characters", domain.ErrInvalidTenantPayload)
	}
	return nil
}
