package property

import (
	"github.com/atriumhq/atriumpm/modules/property/controllers"
	"github.com/atriumhq/atriumpm/modules/property/persistence"
	"github.com/atriumhq/atriumpm/modules/property/services"
	"github.com/atriumhq/atriumpm/pkg/application"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Name() string {
	return "property"
}

func (m *Module) Register(app application.Application) error {
	app.RegisterServices(
		services.NewPropertyService(
			persistence.NewBuildingRepository(),
			persistence.NewUnitRepository(),
			app.EventPublisher(),
		),
	)
	app.RegisterControllers(
		controllers.NewBuildingsController(app),
	)
	return nil
}
