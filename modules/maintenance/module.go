package maintenance

import (
	"github.com/atriumhq/atriumpm/modules/maintenance/controllers"
	"github.com/atriumhq/atriumpm/modules/maintenance/persistence"
	"github.com/atriumhq/atriumpm/modules/maintenance/services"
	"github.com/atriumhq/atriumpm/pkg/application"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Name() string {
	return "maintenance"
}

func (m *Module) Register(app application.Application) error {
	app.RegisterServices(
		services.NewMaintenanceService(
			persistence.NewTicketRepository(),
			persistence.NewWorkOrderRepository(),
		),
	)
	app.RegisterControllers(
		controllers.NewTicketsController(app),
	)
	return nil
}
