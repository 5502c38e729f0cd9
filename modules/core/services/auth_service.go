package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/atriumhq/atriumpm/modules/core/domain"
	"github.com/atriumhq/atriumpm/pkg/composables"
)

type LoginInput struct {
	Subdomain string
	Email     string
	Password  string
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

type LoginResult struct {
	Tokens TokenPair
	User   *domain.User
}

// AuthService authenticates users before any tenant context exists. The
// company is identified by its subdomain in the request body; the issued
// access token then carries the tenant_id claim that scopes every later
// request.
type AuthService struct {
	tenants domain.TenantRepository
	users   domain.UserRepository
	refresh domain.RefreshTokenRepository
	tokens  *TokenService
}

func NewAuthService(
	tenants domain.TenantRepository,
	users domain.UserRepository,
	refresh domain.RefreshTokenRepository,
	tokens *TokenService,
) *AuthService {
	return &AuthService{
		tenants: tenants,
		users:   users,
		refresh: refresh,
		tokens:  tokens,
	}
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	sysCtx := composables.WithSystemScope(ctx)
	tenant, err := composables.InTenantTxResult(sysCtx, func(txCtx context.Context) (*domain.Tenant, error) {
		return s.tenants.GetBySubdomain(txCtx, input.Subdomain)
	})
	if err != nil {
		if errors.Is(err, domain.ErrTenantNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !tenant.Active() {
		return nil, domain.ErrTenantSuspended
	}

	// The user lookup runs pinned to the subdomain-resolved tenant; the
	// row security policy on users admits nothing on an unpinned session.
	tenantCtx := composables.WithTenantID(ctx, tenant.ID)
	user, err := composables.InTenantTxResult(tenantCtx, func(txCtx context.Context) (*domain.User, error) {
		return s.users.GetByTenantAndEmail(txCtx, tenant.ID, email)
	})
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Tokens: pair, User: user}, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a
// fresh pair is issued. The tenant comes from the resolved request context,
// so a token can only be redeemed inside its own tenant.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	var pair TokenPair
	err = composables.InTenantTx(ctx, func(txCtx context.Context) error {
		stored, err := s.refresh.GetByToken(txCtx, tenantID, refreshToken)
		if err != nil {
			return err
		}
		if !stored.Usable(time.Now().UTC()) {
			return domain.ErrInvalidCredentials
		}
		user, err := s.users.GetByID(txCtx, stored.UserID)
		if err != nil {
			return err
		}
		if !user.IsActive {
			return domain.ErrInvalidCredentials
		}
		// Revoke and replace in the same transaction, so a failed
		// rotation leaves the presented token usable.
		if err := s.refresh.Revoke(txCtx, tenantID, refreshToken); err != nil {
			return err
		}
		pair, err = s.issueTokens(txCtx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return domain.ErrInvalidCredentials
	}
	return composables.InTenantTx(ctx, func(txCtx context.Context) error {
		return s.refresh.Revoke(txCtx, tenantID, refreshToken)
	})
}

func (s *AuthService) issueTokens(ctx context.Context, user *domain.User) (TokenPair, error) {
	access, err := s.tokens.AccessToken(user)
	if err != nil {
		return TokenPair{}, err
	}
	opaque, err := s.tokens.RefreshToken()
	if err != nil {
		return TokenPair{}, err
	}

	rt := &domain.RefreshToken{
		UserID:    user.ID,
		Token:     opaque,
		ExpiresAt: s.tokens.RefreshTokenExpiry(),
	}

	tenantCtx := composables.WithTenantID(ctx, user.TenantID)
	err = composables.InTenantTx(tenantCtx, func(txCtx context.Context) error {
		return s.refresh.Create(txCtx, rt)
	})
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  access,
		RefreshToken: opaque,
		ExpiresAt:    rt.ExpiresAt,
	}, nil
}
