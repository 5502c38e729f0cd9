package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/atriumhq/atriumpm/modules/core/domain"
	"github.com/atriumhq/atriumpm/pkg/composables"
	"github.com/atriumhq/atriumpm/pkg/eventbus"
	"github.com/atriumhq/atriumpm/pkg/serrors"
)

type CreateUserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      domain.UserRole
}

type UserService struct {
	repo      domain.UserRepository
	publisher eventbus.EventBus
}

func NewUserService(repo domain.UserRepository, publisher eventbus.EventBus) *UserService {
	return &UserService{repo: repo, publisher: publisher}
}

func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	if strings.TrimSpace(input.Email) == "" {
		return nil, serrors.NewFieldRequiredError("email")
	}
	if len(input.Password) < 8 {
		return nil, serrors.NewError("PASSWORD_TOO_SHORT", "password must be at least 8 characters", "password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &domain.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Role:         input.Role,
		IsActive:     true,
	}
	err = composables.InTenantTx(ctx, func(txCtx context.Context) error {
		return s.repo.Create(txCtx, u)
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(domain.UserCreatedEvent{
		TenantID:  u.TenantID,
		UserID:    u.ID,
		Email:     u.Email,
		Role:      u.Role,
		Timestamp: time.Now().UTC(),
	})
	return u, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*domain.User, error) {
		return s.repo.GetByID(txCtx, id)
	})
}

func (s *UserService) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]*domain.User, error) {
		return s.repo.List(txCtx, limit, offset)
	})
}

func (s *UserService) Update(ctx context.Context, u *domain.User) error {
	return composables.InTenantTx(ctx, func(txCtx context.Context) error {
		return s.repo.Update(txCtx, u)
	})
}

func (s *UserService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return composables.InTenantTx(ctx, func(txCtx context.Context) error {
		u, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		u.IsActive = false
		return s.repo.Update(txCtx, u)
	})
}
