package bootstrap

import (
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/waffle/config"
)

func validAppConfig() AppConfig {
	return AppConfig{
		MongoURI:         "mongodb://localhost:27017",
		MongoDatabase:    "quizmart",
		MongoMaxPoolSize: 100,
		MongoMinPoolSize: 10,
		CacheBackend:     "mongo",
		AttemptTTL:       48 * time.Hour,
		JWTSecret:        DevJWTSecret,
		JWTAccessTTL:     15 * time.Minute,
		JWTRefreshTTL:    7 * 24 * time.Hour,
		AuditLogAuth:     "all",
		CartIdleTTL:      30 * 24 * time.Hour,
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{"defaults", "dev", func(*AppConfig) {}, ""},
		{"pool sizes inverted", "dev", func(c *AppConfig) { c.MongoMinPoolSize = 200 }, "mongo_min_pool_size"},
		{"unknown cache", "dev", func(c *AppConfig) { c.CacheBackend = "memcached" }, "cache_backend"},
		{"redis without addr", "dev", func(c *AppConfig) { c.CacheBackend = "redis" }, "redis_addr"},
		{"redis with addr", "dev", func(c *AppConfig) { c.CacheBackend = "redis"; c.RedisAddr = "localhost:6379" }, ""},
		{"short secret", "dev", func(c *AppConfig) { c.JWTSecret = "tiny" }, "at least 32"},
		{"dev secret in prod", "prod", func(*AppConfig) {}, "development default"},
		{"real secret in prod", "prod", func(c *AppConfig) { c.JWTSecret = strings.Repeat("k", 40) }, ""},
		{"zero access ttl", "dev", func(c *AppConfig) { c.JWTAccessTTL = 0 }, "must be positive"},
		{"zero attempt ttl", "dev", func(c *AppConfig) { c.AttemptTTL = 0 }, "attempt_ttl"},
		{"negative sweep interval", "dev", func(c *AppConfig) { c.CartSweepInterval = -time.Second }, "cart_sweep_interval"},
		{"idle ttl too short", "dev", func(c *AppConfig) { c.CartSweepInterval = time.Hour; c.CartIdleTTL = time.Hour }, "cart_idle_ttl"},
		{"sweeper disabled ignores idle ttl", "dev", func(c *AppConfig) { c.CartIdleTTL = 0 }, ""},
		{"bad audit setting", "dev", func(c *AppConfig) { c.AuditLogCommerce = "mongo" }, "audit_log_commerce"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validAppConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(&config.CoreConfig{Env: tt.env}, cfg, testLogger())
			switch {
			case tt.wantErr == "" && err != nil:
				t.Fatalf("unexpected error: %v", err)
			case tt.wantErr != "" && err == nil:
				t.Fatalf("expected error containing %q", tt.wantErr)
			case tt.wantErr != "" && !strings.Contains(err.Error(), tt.wantErr):
				t.Fatalf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" https://a.example , ,https://b.example")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Errorf("splitList: got %q", got)
	}
	if splitList("") != nil {
		t.Error("empty input should give nil")
	}
}
