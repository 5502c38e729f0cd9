package services_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atriumhq/atriumpm/modules/core/domain"
	"github.com/atriumhq/atriumpm/modules/core/services"
	"github.com/atriumhq/atriumpm/pkg/composables"
	"github.com/atriumhq/atriumpm/pkg/configuration"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "atriumpm-test")
	if err != nil {
		panic(err)
	}
	_ = os.Setenv("LOG_PATH", filepath.Join(dir, "app.log"))
	code := m.Run()
	configuration.Use().Unload()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func TestTokenService_AccessTokenCarriesTenantClaim(t *testing.T) {
	conf := configuration.Use()
	svc := services.NewTokenService(conf)

	u := &domain.User{
		ID:    uuid.New(),
		Email: "alex@example.com",
		Role:  domain.RoleAdmin,
	}
	u.TenantID = uuid.New()

	signed, err := svc.AccessToken(u)
	require.NoError(t, err)

	parsed, err := jwt.Parse(signed, func(token *jwt.Token) (any, error) {
		return []byte(conf.Jwt.Secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, u.TenantID.String(), claims[composables.TenantClaim])
	assert.Equal(t, u.ID.String(), claims["sub"])
	assert.Equal(t, "admin", claims["role"])
	assert.Equal(t, conf.Jwt.Issuer, claims["iss"])
}

func TestTokenService_RefreshTokensAreOpaqueAndUnique(t *testing.T) {
	svc := services.NewTokenService(configuration.Use())

	a, err := svc.RefreshToken()
	require.NoError(t, err)
	b, err := svc.RefreshToken()
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
