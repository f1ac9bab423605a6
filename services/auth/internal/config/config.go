package config

import (
	"os"
	"time"

	"github.com/Skotchmaster/shopsplit/pkg/config"
	"github.com/Skotchmaster/shopsplit/pkg/tokens"
)

type ServiceConfig struct {
	Addr         string
	DatabaseURL  string
	JWTSecret    []byte
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	RefreshStore string
	RedisURL     string
	KafkaBrokers []string
	LogLevel     string
}

func Load() ServiceConfig {
	config.LoadDotEnv()

	cfg := ServiceConfig{
		Addr:         config.EnvDefault("AUTH_ADDR", ":5002"),
		DatabaseURL:  config.EnvDefault("DATABASE_URL", "sqlite:auth.db"),
		JWTSecret:    []byte(os.Getenv("JWT_HS256_SECRET")),
		AccessTTL:    config.EnvDurationDefault("ACCESS_TOKEN_TTL", tokens.DefaultAccessTTL),
		RefreshTTL:   config.EnvDurationDefault("REFRESH_TOKEN_TTL", tokens.DefaultRefreshTTL),
		RefreshStore: config.EnvDefault("REFRESH_STORE", "db"),
		RedisURL:     os.Getenv("REDIS_URL"),
		KafkaBrokers: config.CSV(os.Getenv("KAFKA_BROKERS")),
		LogLevel:     config.EnvDefault("LOG_LEVEL", "info"),
	}

	required := map[string]string{"JWT_HS256_SECRET": string(cfg.JWTSecret)}
	if cfg.RefreshStore == "redis" {
		required["REDIS_URL"] = cfg.RedisURL
	}
	config.MustRequire(required)
	return cfg
}
