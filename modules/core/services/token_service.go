package services

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/atriumhq/atriumpm/modules/core/domain"
	"github.com/atriumhq/atriumpm/pkg/composables"
	"github.com/atriumhq/atriumpm/pkg/configuration"
)

// TokenService mints access tokens carrying the tenant_id claim the tenant
// middleware falls back to when no header is present.
type TokenService struct {
	conf *configuration.Configuration
}

func NewTokenService(conf *configuration.Configuration) *TokenService {
	return &TokenService{conf: conf}
}

func (s *TokenService) AccessToken(u *domain.User) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":   u.ID.String(),
		"iss":   s.conf.Jwt.Issuer,
		"aud":   s.conf.Jwt.Audience,
		"iat":   now.Unix(),
		"exp":   now.Add(s.conf.Jwt.AccessTokenTTL).Unix(),
		"email": u.Email,
		"role":  string(u.Role),
	}
	claims[composables.TenantClaim] = u.TenantID.String()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.conf.Jwt.Secret))
}

// RefreshToken returns an opaque random token; its authority lives in the
// refresh_tokens table, not in its contents.
func (s *TokenService) RefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func (s *TokenService) RefreshTokenExpiry() time.Time {
	return time.Now().UTC().Add(s.conf.Jwt.RefreshTokenTTL)
}
