package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/atriumhq/atriumpm/pkg/composables"
	"github.com/atriumhq/atriumpm/pkg/configuration"
)

// NewPool builds the shared connection pool. The release hook clears the
// session tenant variable so a pooled connection never hands one request's
// tenant identity to the next.
func NewPool(ctx context.Context, conf *configuration.Configuration, log *logrus.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(conf.Database.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	cfg.AfterRelease = func(conn *pgx.Conn) bool {
		if err := composables.ResetSessionTenant(context.Background(), conn); err != nil {
			log.WithError(err).Warn("failed to reset session tenant, discarding connection")
			return false
		}
		return true
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	return pool, nil
}
