package constants

type ContextKey string

const (
	AppKey       ContextKey = "app"
	PoolKey      ContextKey = "pool"
	TxKey        ContextKey = "tx"
	LoggerKey    ContextKey = "logger"
	ParamsKey    ContextKey = "params"
	TenantIDKey  ContextKey = "tenantID"
	PrincipalKey ContextKey = "principal"
	// SystemScopeKey marks a context that deliberately operates outside of a
	// tenant boundary (migrations, seeding, cross-tenant admin lookups).
	SystemScopeKey ContextKey = "systemScope"
)
