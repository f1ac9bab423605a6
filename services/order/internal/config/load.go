package config

import (
	"os"

	"github.com/Skotchmaster/shopsplit/pkg/config"
)

type ServiceConfig struct {
	Addr               string
	DatabaseURL        string
	PaymentSuccessRate float64
	MaxPageSize        int
	ESURL              string
	ESUser             string
	ESPassword         string
	KafkaBrokers       []string
	LogLevel           string
}

func Load() ServiceConfig {
	config.LoadDotEnv()

	return ServiceConfig{
		Addr:               config.EnvDefault("ORDER_ADDR", ":5001"),
		DatabaseURL:        config.EnvDefault("DATABASE_URL", "sqlite:orders.db"),
		PaymentSuccessRate: config.EnvFloatDefault("PAYMENT_SUCCESS_RATE", 0.8),
		MaxPageSize:        config.EnvIntDefault("ORDER_MAX_PAGE_SIZE", 100),
		ESURL:              os.Getenv("ES_URL"),
		ESUser:             os.Getenv("ES_USER"),
		ESPassword:         os.Getenv("ES_PASSWORD"),
		KafkaBrokers:       config.CSV(os.Getenv("KAFKA_BROKERS")),
		LogLevel:           config.EnvDefault("LOG_LEVEL", "info"),
	}
}
