package main

import (
	"context"
	"log"
	"os"
	"runtime/debug"
	"time"

	"github.com/atriumhq/atriumpm/internal/server"
	"github.com/atriumhq/atriumpm/migrations"
	"github.com/atriumhq/atriumpm/modules"
	"github.com/atriumhq/atriumpm/modules/core"
	"github.com/atriumhq/atriumpm/pkg/application"
	"github.com/atriumhq/atriumpm/pkg/configuration"
	"github.com/atriumhq/atriumpm/pkg/eventbus"
	"github.com/atriumhq/atriumpm/pkg/metrics"
	"github.com/atriumhq/atriumpm/pkg/rls"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	pool, err := core.NewPool(ctx, conf, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	defer pool.Close()

	if err := migrations.Up(ctx, pool); err != nil {
		logger.WithError(err).Fatal("failed to apply migrations")
	}

	// Row security policies must be in place before the first request
	// when enforcement is on.
	if conf.RLSEnforce == "enforce" {
		if err := rls.EnsureTenantPolicies(ctx, pool, logger); err != nil {
			logger.WithError(err).Fatal("failed to install row security policies")
		}
	}

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	if err := modules.Load(app); err != nil {
		logger.WithError(err).Fatal("failed to load modules")
	}

	app.RegisterControllers(server.NewHealthController())
	if conf.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path))
	}

	serverInstance, err := server.Default(&server.DefaultOptions{
		Logger:        logger,
		Configuration: conf,
		Application:   app,
		Pool:          pool,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create server")
	}

	logger.Infof("listening on %s", conf.SocketAddress)
	if err := serverInstance.Start(conf.SocketAddress); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
