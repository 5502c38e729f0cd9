package server

import (
	"slices"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/atriumhq/atriumpm/pkg/application"
	"github.com/atriumhq/atriumpm/pkg/configuration"
	"github.com/atriumhq/atriumpm/pkg/constants"
	"github.com/atriumhq/atriumpm/pkg/middleware"
	"github.com/atriumhq/atriumpm/pkg/server"
	"github.com/atriumhq/atriumpm/pkg/tenantdb"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
	Pool          *pgxpool.Pool
}

// Default assembles the middleware stack and the HTTP server. Order
// matters: the logger runs first so every request is traced, the principal
// middleware parses the JWT before the tenant middleware consults its
// claims, and the tenant middleware rejects unresolved requests before any
// controller sees them.
func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{options.Configuration.Origin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", options.Configuration.TenantIDHeader},
		AllowCredentials: true,
	})

	exemptPaths := slices.Clone(middleware.DefaultExemptPaths)
	if options.Configuration.Prometheus.Enabled {
		exemptPaths = append(exemptPaths, options.Configuration.Prometheus.Path)
	}

	middlewares := []mux.MiddlewareFunc{
		middleware.WithLogger(options.Logger),
		middleware.Provide(constants.AppKey, app),
		middleware.Provide(constants.PoolKey, options.Pool),
		corsHandler.Handler,
		middleware.Principal(),
		middleware.RequireTenant(exemptPaths...),
	}

	if options.Configuration.TenantDB.ResolverEnabled {
		resolver, err := tenantdb.NewResolver(
			options.Pool,
			options.Configuration.Database.ConnectionString(),
			options.Configuration.TenantDB.CacheTTL,
			options.Logger,
		)
		if err != nil {
			return nil, err
		}
		pools := tenantdb.NewPools(options.Pool, options.Configuration.Database.ConnectionString(), options.Logger)
		middlewares = append(middlewares, middleware.TenantDatasource(resolver, pools))
	}

	middlewares = append(middlewares, middleware.RequestParams())
	app.RegisterMiddleware(middlewares...)

	return server.NewHTTPServer(app, NotFound()), nil
}
