package core

import (
	"github.com/atriumhq/atriumpm/modules/core/controllers"
	"github.com/atriumhq/atriumpm/modules/core/persistence"
	"github.com/atriumhq/atriumpm/modules/core/services"
	"github.com/atriumhq/atriumpm/pkg/application"
	"github.com/atriumhq/atriumpm/pkg/configuration"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Name() string {
	return "core"
}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()

	tenantRepo := persistence.NewTenantRepository()
	userRepo := persistence.NewUserRepository()
	refreshRepo := persistence.NewRefreshTokenRepository()

	tokenService := services.NewTokenService(conf)

	app.RegisterServices(
		tokenService,
		services.NewTenantService(tenantRepo, userRepo, app.EventPublisher()),
		services.NewAuthService(tenantRepo, userRepo, refreshRepo, tokenService),
		services.NewUserService(userRepo, app.EventPublisher()),
	)

	app.RegisterControllers(
		controllers.NewTenantsController(app),
		controllers.NewAuthController(app),
		controllers.NewUsersController(app),
	)
	return nil
}
