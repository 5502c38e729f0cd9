package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/atriumhq/atriumpm/pkg/repo"
)

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleManager  UserRole = "manager"
	RoleResident UserRole = "resident"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered for this tenant")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type User struct {
	repo.TenantOwned
	ID           uuid.UUID
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         UserRole
	IsActive     bool
}

type RefreshToken struct {
	repo.TenantOwned
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
	IsRevoked bool
}

func (rt *RefreshToken) Usable(now time.Time) bool {
	return !rt.IsRevoked && now.Before(rt.ExpiresAt)
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	List(ctx context.Context, limit, offset int) ([]*User, error)
	Update(ctx context.Context, u *User) error

	// GetByTenantAndEmail is the documented cross-tenant lookup used by
	// login, which runs before tenant resolution. The tenant id is always
	// passed explicitly; the ambient filter is never relied on here.
	GetByTenantAndEmail(ctx context.Context, tenantID uuid.UUID, email string) (*User, error)
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, rt *RefreshToken) error
	GetByToken(ctx context.Context, tenantID uuid.UUID, token string) (*RefreshToken, error)
	Revoke(ctx context.Context, tenantID uuid.UUID, token string) error
}
