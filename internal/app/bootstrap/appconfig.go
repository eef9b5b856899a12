// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig covers ports, TLS, logging and request limits.
// AppConfig carries everything quizmart adds on top: the MongoDB
// connection, the attempt cache, token signing and audit settings.
// The struct is passed to every lifecycle hook.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Attempt cache: "redis" or "mongo"
	CacheBackend  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	AttemptTTL    time.Duration

	// Bearer tokens
	JWTSecret     string
	JWTAccessTTL  time.Duration
	JWTRefreshTTL time.Duration

	// Comma-separated origins; "*" allows any
	CORSAllowedOrigins []string

	// Audit logging per category: "all", "db", "log" or "off"
	AuditLogAuth       string
	AuditLogMembership string
	AuditLogCommerce   string
	AuditLogAdmin      string

	// Per-tier deadlines for store and cache calls
	TimeoutPing   time.Duration
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
	TimeoutBatch  time.Duration

	// Idle cart cleanup; a zero interval disables the sweeper
	CartSweepInterval time.Duration
	CartIdleTTL       time.Duration

	// Existing account promoted to admin on startup
	AdminEmail string
}
