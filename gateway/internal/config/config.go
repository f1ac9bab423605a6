package config

import (
	"os"
	"time"

	"github.com/Skotchmaster/shopsplit/pkg/config"
)

// Config holds no signing secret: every token is checked by the auth service.
type Config struct {
	ListenAddr      string
	AuthURL         string
	OrderURL        string
	UpstreamTimeout time.Duration
	LogLevel        string
}

func Load() *Config {
	config.LoadDotEnv()

	cfg := &Config{
		ListenAddr:      config.EnvDefault("GATEWAY_ADDR", ":5003"),
		AuthURL:         os.Getenv("AUTH_URL"),
		OrderURL:        os.Getenv("ORDER_URL"),
		UpstreamTimeout: config.EnvDurationDefault("UPSTREAM_TIMEOUT", 5*time.Second),
		LogLevel:        config.EnvDefault("LOG_LEVEL", "info"),
	}
	config.MustRequire(map[string]string{
		"AUTH_URL":  cfg.AuthURL,
		"ORDER_URL": cfg.OrderURL,
	})
	return cfg
}
