package tenantdb

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/atriumhq/atriumpm/pkg/composables"
)

// Pools lazily opens and caches one connection pool per resolved DSN.
// Tenants on the shared database all get the default pool; dedicated-DB
// tenants get a pool of their own, opened on first use.
type Pools struct {
	mu          sync.RWMutex
	defaultDSN  string
	defaultPool *pgxpool.Pool
	byDSN       map[string]*pgxpool.Pool
	log         *logrus.Logger
}

func NewPools(defaultPool *pgxpool.Pool, defaultDSN string, log *logrus.Logger) *Pools {
	return &Pools{
		defaultDSN:  defaultDSN,
		defaultPool: defaultPool,
		byDSN:       make(map[string]*pgxpool.Pool),
		log:         log,
	}
}

// Get returns the pool for dsn, opening it on first use. Dedicated pools
// get the same release hook as the default pool so the session tenant
// variable never survives a checkout.
func (p *Pools) Get(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == p.defaultDSN {
		return p.defaultPool, nil
	}

	p.mu.RLock()
	pool, ok := p.byDSN[dsn]
	p.mu.RUnlock()
	if ok {
		return pool, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if pool, ok := p.byDSN[dsn]; ok {
		return pool, nil
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid tenant dsn: %w", err)
	}
	cfg.AfterRelease = func(conn *pgx.Conn) bool {
		if err := composables.ResetSessionTenant(context.Background(), conn); err != nil {
			p.log.WithError(err).Warn("failed to reset session tenant, discarding connection")
			return false
		}
		return true
	}
	pool, err = pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open tenant pool: %w", err)
	}
	p.byDSN[dsn] = pool
	p.log.WithField("pools", len(p.byDSN)).Info("opened dedicated tenant pool")
	return pool, nil
}

// Close releases every dedicated pool. The default pool is owned by the
// caller and left open.
func (p *Pools) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for dsn, pool := range p.byDSN {
		pool.Close()
		delete(p.byDSN, dsn)
	}
}
