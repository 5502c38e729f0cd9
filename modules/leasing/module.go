package leasing

import (
	"github.com/atriumhq/atriumpm/modules/leasing/controllers"
	"github.com/atriumhq/atriumpm/modules/leasing/persistence"
	"github.com/atriumhq/atriumpm/modules/leasing/services"
	propertypersistence "github.com/atriumhq/atriumpm/modules/property/persistence"
	"github.com/atriumhq/atriumpm/pkg/application"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Name() string {
	return "leasing"
}

func (m *Module) Register(app application.Application) error {
	app.RegisterServices(
		services.NewLeasingService(
			persistence.NewLeaseRepository(),
			propertypersistence.NewUnitRepository(),
			app.EventPublisher(),
		),
	)
	app.RegisterControllers(
		controllers.NewLeasesController(app),
	)
	return nil
}
