package modules

import (
	"github.com/atriumhq/atriumpm/modules/billing"
	"github.com/atriumhq/atriumpm/modules/core"
	"github.com/atriumhq/atriumpm/modules/leasing"
	"github.com/atriumhq/atriumpm/modules/maintenance"
	"github.com/atriumhq/atriumpm/modules/property"
	"github.com/atriumhq/atriumpm/pkg/application"
)

// BuiltInModules is the default module set, in registration order. Core
// must come first: the other modules resolve its services.
func BuiltInModules() []application.Module {
	return []application.Module{
		core.NewModule(),
		property.NewModule(),
		leasing.NewModule(),
		maintenance.NewModule(),
		billing.NewModule(),
	}
}

// Load registers the built-in module set on the application.
func Load(app application.Application, externalModules ...application.Module) error {
	modules := append(BuiltInModules(), externalModules...)
	return app.RegisterModules(modules...)
}
