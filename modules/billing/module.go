package billing

import (
	"github.com/atriumhq/atriumpm/modules/billing/controllers"
	"github.com/atriumhq/atriumpm/modules/billing/persistence"
	"github.com/atriumhq/atriumpm/modules/billing/services"
	"github.com/atriumhq/atriumpm/pkg/application"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Name() string {
	return "billing"
}

func (m *Module) Register(app application.Application) error {
	billingService := services.NewBillingService(
		persistence.NewInvoiceRepository(),
		persistence.NewPaymentRepository(),
		persistence.NewLateFeeRepository(),
		app.DB(),
		app.Logger(),
	)
	app.RegisterServices(billingService)
	app.RegisterControllers(
		controllers.NewInvoicesController(app),
	)
	app.EventPublisher().Subscribe(billingService.OnLeaseSigned)
	return nil
}
