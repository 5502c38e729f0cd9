// Package tenantdb maps a tenant id to its physical database target,
// enabling database-per-tenant deployments. Resolution must never fail a
// request: anything going wrong degrades to the default DSN with a warning
// and a metric increment.
package tenantdb

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/atriumhq/atriumpm/pkg/metrics"
)

// dbPlaceholder in a per-tenant template is substituted with the default
// DSN's database name, so one template can serve every service.
const dbPlaceholder = "{db}"

type Resolver struct {
	pool       *pgxpool.Pool
	defaultDSN string
	cache      *ristretto.Cache[string, string]
	ttl        time.Duration
	log        *logrus.Logger
}

// NewResolver builds a resolver reading per-tenant connection templates
// from the tenants table through pool. Templates are cached for ttl.
func NewResolver(pool *pgxpool.Pool, defaultDSN string, ttl time.Duration, log *logrus.Logger) (*Resolver, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, string]{
		NumCounters: 10_000,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Resolver{
		pool:       pool,
		defaultDSN: defaultDSN,
		cache:      cache,
		ttl:        ttl,
		log:        log,
	}, nil
}

// Resolve returns the DSN to use for the given tenant. Unresolved tenants,
// tenants without an override, and every failure mode all map to the
// default DSN; per-tenant routing is an optimization, never a correctness
// gate.
func (r *Resolver) Resolve(ctx context.Context, tenantID uuid.UUID) string {
	if tenantID == uuid.Nil {
		return r.defaultDSN
	}

	template, err := r.connectionTemplate(ctx, tenantID)
	if err != nil {
		r.fallback(tenantID, err)
		return r.defaultDSN
	}
	if template == "" {
		return r.defaultDSN
	}

	dsn, err := applyTemplate(template, r.defaultDSN)
	if err != nil {
		r.fallback(tenantID, err)
		return r.defaultDSN
	}
	return dsn
}

func (r *Resolver) fallback(tenantID uuid.UUID, err error) {
	metrics.ConnStringFallbacks.Inc()
	r.log.WithError(err).WithField("tenant_id", tenantID).
		Warn("failed to resolve tenant connection string, falling back to default")
}

func (r *Resolver) connectionTemplate(ctx context.Context, tenantID uuid.UUID) (string, error) {
	key := "tenant-conn-template:" + tenantID.String()
	if cached, ok := r.cache.Get(key); ok {
		return cached, nil
	}

	var template *string
	err := r.pool.QueryRow(ctx,
		"SELECT connection_string FROM tenants WHERE id = $1", tenantID,
	).Scan(&template)
	if errors.Is(err, pgx.ErrNoRows) {
		// Unknown tenant ids resolve to the default on purpose; the RLS
		// layer will make such a session see nothing.
		template = nil
		err = nil
	}
	if err != nil {
		return "", err
	}

	value := ""
	if template != nil {
		value = strings.TrimSpace(*template)
	}
	r.cache.SetWithTTL(key, value, int64(len(value))+1, r.ttl)
	return value, nil
}

// Invalidate drops a cached template, forcing the next Resolve to re-read
// the tenants table. Called when an operator rewires a tenant.
func (r *Resolver) Invalidate(tenantID uuid.UUID) {
	r.cache.Del("tenant-conn-template:" + tenantID.String())
}

var errNoDatabaseName = errors.New("default DSN carries no dbname")

// applyTemplate produces the tenant DSN from a template and the default
// keyword/value DSN. A {db} placeholder is substituted with the default
// database name; a template without a dbname inherits the default's.
func applyTemplate(template, defaultDSN string) (string, error) {
	defaultDB := dsnValue(defaultDSN, "dbname")
	if defaultDB == "" {
		return "", errNoDatabaseName
	}

	if strings.Contains(strings.ToLower(template), dbPlaceholder) {
		return replaceFold(template, dbPlaceholder, defaultDB), nil
	}

	if dsnValue(template, "dbname") == "" {
		return strings.TrimSpace(template) + " dbname=" + defaultDB, nil
	}
	return template, nil
}

// dsnValue extracts a key's value from a keyword/value DSN.
func dsnValue(dsn, key string) string {
	for _, field := range strings.Fields(dsn) {
		k, v, ok := strings.Cut(field, "=")
		if ok && strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

// replaceFold replaces every case-insensitive occurrence of old with new.
func replaceFold(s, old, new string) string {
	var b strings.Builder
	lower := strings.ToLower(s)
	oldLower := strings.ToLower(old)
	for {
		i := strings.Index(lower, oldLower)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		b.WriteString(new)
		s = s[i+len(old):]
		lower = lower[i+len(old):]
	}
}
