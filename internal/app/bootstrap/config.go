// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/quizmart/internal/app/system/cache"
	"github.com/dalemusser/quizmart/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// DevJWTSecret is the default signing key. It is refused in prod.
const DevJWTSecret = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for quizmart.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: QUIZMART_MONGO_URI, QUIZMART_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "quizmart", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Attempt cache
	{Name: "cache_backend", Default: cache.BackendMongo, Desc: "Attempt cache backend: 'redis' or 'mongo'"},
	{Name: "redis_addr", Default: "", Desc: "Redis address (host:port) when cache_backend is redis"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis logical database"},
	{Name: "attempt_ttl", Default: "48h", Desc: "How long archived quiz attempts stay exportable"},

	// Tokens
	{Name: "jwt_secret", Default: DevJWTSecret, Desc: "HS256 signing key, at least 32 characters (must be strong in production)"},
	{Name: "jwt_access_ttl", Default: "15m", Desc: "Access token lifetime"},
	{Name: "jwt_refresh_ttl", Default: "168h", Desc: "Refresh token lifetime"},

	{Name: "cors_allowed_origins", Default: "*", Desc: "Comma-separated list of allowed CORS origins"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_membership", Default: "db", Desc: "Membership event logging: 'all', 'db', 'log', or 'off'"},
	{Name: "audit_log_commerce", Default: "db", Desc: "Order event logging: 'all', 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all', 'db', 'log', or 'off'"},

	// Timeouts
	{Name: "timeout_ping", Default: "2s", Desc: "Health check deadline"},
	{Name: "timeout_short", Default: "5s", Desc: "Single-document operation deadline"},
	{Name: "timeout_medium", Default: "10s", Desc: "Listing and aggregation deadline"},
	{Name: "timeout_long", Default: "30s", Desc: "Transactional write deadline"},
	{Name: "timeout_batch", Default: "2m", Desc: "Export and import deadline"},

	{Name: "cart_sweep_interval", Default: "1h", Desc: "How often idle carts are deleted; 0 disables"},
	{Name: "cart_idle_ttl", Default: "720h", Desc: "Carts untouched for this long are deleted"},

	{Name: "admin_email", Default: "", Desc: "Email of an existing user promoted to admin on startup"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// WAFFLE_* and QUIZMART_* environment variables and flags, merged with
// precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "QUIZMART", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		CacheBackend:  strings.ToLower(strings.TrimSpace(appValues.String("cache_backend"))),
		RedisAddr:     appValues.String("redis_addr"),
		RedisPassword: appValues.String("redis_password"),
		RedisDB:       appValues.Int("redis_db"),
		AttemptTTL:    appValues.Duration("attempt_ttl", 48*time.Hour),

		JWTSecret:     appValues.String("jwt_secret"),
		JWTAccessTTL:  appValues.Duration("jwt_access_ttl", 15*time.Minute),
		JWTRefreshTTL: appValues.Duration("jwt_refresh_ttl", 7*24*time.Hour),

		CORSAllowedOrigins: splitList(appValues.String("cors_allowed_origins")),

		AuditLogAuth:       appValues.String("audit_log_auth"),
		AuditLogMembership: appValues.String("audit_log_membership"),
		AuditLogCommerce:   appValues.String("audit_log_commerce"),
		AuditLogAdmin:      appValues.String("audit_log_admin"),

		TimeoutPing:   appValues.Duration("timeout_ping", timeouts.Defaults.Ping),
		TimeoutShort:  appValues.Duration("timeout_short", timeouts.Defaults.Short),
		TimeoutMedium: appValues.Duration("timeout_medium", timeouts.Defaults.Medium),
		TimeoutLong:   appValues.Duration("timeout_long", timeouts.Defaults.Long),
		TimeoutBatch:  appValues.Duration("timeout_batch", timeouts.Defaults.Batch),

		CartSweepInterval: appValues.Duration("cart_sweep_interval", time.Hour),
		CartIdleTTL:       appValues.Duration("cart_idle_ttl", 30*24*time.Hour),

		AdminEmail: appValues.String("admin_email"),
	}
	return coreCfg, appCfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var validAuditSettings = map[string]bool{"": true, "all": true, "db": true, "log": true, "off": true}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// It rejects a malformed MongoDB URI, an unusable cache selection, bad
// token settings and, in prod, the development JWT secret.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoMinPoolSize > appCfg.MongoMaxPoolSize {
		return fmt.Errorf("mongo_min_pool_size (%d) exceeds mongo_max_pool_size (%d)",
			appCfg.MongoMinPoolSize, appCfg.MongoMaxPoolSize)
	}

	switch appCfg.CacheBackend {
	case cache.BackendMongo:
	case cache.BackendRedis:
		if strings.TrimSpace(appCfg.RedisAddr) == "" {
			return errors.New("cache_backend redis requires redis_addr")
		}
	default:
		return fmt.Errorf("cache_backend must be %q or %q, got %q", cache.BackendRedis, cache.BackendMongo, appCfg.CacheBackend)
	}

	if len(appCfg.JWTSecret) < 32 {
		return errors.New("jwt_secret must be at least 32 characters")
	}
	if coreCfg != nil && coreCfg.Env == "prod" && appCfg.JWTSecret == DevJWTSecret {
		return errors.New("jwt_secret must be changed from the development default in prod")
	}
	if appCfg.JWTAccessTTL <= 0 || appCfg.JWTRefreshTTL <= 0 {
		return errors.New("jwt_access_ttl and jwt_refresh_ttl must be positive")
	}
	if appCfg.AttemptTTL <= 0 {
		return errors.New("attempt_ttl must be positive")
	}
	if appCfg.CartSweepInterval < 0 {
		return errors.New("cart_sweep_interval must not be negative")
	}
	if appCfg.CartSweepInterval > 0 && appCfg.CartIdleTTL < 24*time.Hour {
		return errors.New("cart_idle_ttl must be at least 24h when the cart sweeper runs")
	}

	for name, v := range map[string]string{
		"audit_log_auth":       appCfg.AuditLogAuth,
		"audit_log_membership": appCfg.AuditLogMembership,
		"audit_log_commerce":   appCfg.AuditLogCommerce,
		"audit_log_admin":      appCfg.AuditLogAdmin,
	} {
		if !validAuditSettings[v] {
			return fmt.Errorf("%s must be one of all, db, log, off; got %q", name, v)
		}
	}
	return nil
}
