package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dalemusser/quizmart/internal/app/system/cache"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Settings is the subset of the server configuration the tool needs. Keys
// and env names match the server's so one .env serves both.
type Settings struct {
	MongoURI      string        `mapstructure:"mongo_uri"`
	MongoDatabase string        `mapstructure:"mongo_database"`
	CacheBackend  string        `mapstructure:"cache_backend"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	AttemptTTL    time.Duration `mapstructure:"attempt_ttl"`
}

// LoadSettings layers defaults, .env, the optional YAML file, QUIZMART_*
// environment variables and finally command-line flags.
func LoadSettings(configFile string, flags *pflag.FlagSet) (Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Settings{}, fmt.Errorf("read .env: %w", err)
	}

	v := viper.New()
	v.SetDefault("mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("mongo_database", "quizmart")
	v.SetDefault("cache_backend", cache.BackendMongo)
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("attempt_ttl", "48h")

	v.SetEnvPrefix("QUIZMART")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	if flags != nil {
		for _, name := range []string{"mongo-uri", "mongo-database"} {
			if f := flags.Lookup(name); f != nil && f.Changed {
				v.Set(strings.ReplaceAll(name, "-", "_"), f.Value.String())
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	s.CacheBackend = strings.ToLower(strings.TrimSpace(s.CacheBackend))
	if s.MongoDatabase == "" {
		return Settings{}, errors.New("mongo_database is required")
	}
	return s, nil
}

// connect opens the database described by s.
func connect(ctx context.Context, s Settings) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(s.MongoURI))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, client.Database(s.MongoDatabase), nil
}

func openCache(ctx context.Context, s Settings, db *mongo.Database, log *zap.Logger) (cache.Cache, error) {
	return cache.Open(ctx, cache.Config{
		Backend:       s.CacheBackend,
		RedisAddr:     s.RedisAddr,
		RedisPassword: s.RedisPassword,
		RedisDB:       s.RedisDB,
	}, db, log)
}

func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l
}
