package config

import (
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	JWTSecret   string
	FrontendURL string

	RabbitMQURL   string
	RabbitMQQueue string

	RefundInterval time.Duration
	RefundGrace    time.Duration

	AllowedOrigins []string
}

func Load() Config {
	return Config{
		Port:           getEnv("PORT", "5000"),
		Env:            getEnv("APP_ENV", "dev"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		JWTSecret:      getEnv("JWT_SECRET", "dev-secret"),
		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:5173"),
		RabbitMQURL:    getEnv("RABBITMQ_URL", ""),
		RabbitMQQueue:  getEnv("RABBITMQ_QUEUE", "order_notifications"),
		RefundInterval: getEnvDuration("REFUND_INTERVAL", 30*time.Second),
		RefundGrace:    getEnvDuration("REFUND_GRACE", 1*time.Minute),
		AllowedOrigins: []string{getEnv("CORS_ORIGIN", "*")},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}
