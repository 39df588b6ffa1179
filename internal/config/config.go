package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Payment  PaymentConfig
	MinIO    MinIOConfig
	SMTP     SMTPConfig
	Elastic  ElasticConfig
	Scylla   ScyllaConfig
	RabbitMQ RabbitMQConfig
	Orders   OrdersConfig
}

type ServerConfig struct {
	Port        string
	Mode        string
	FrontendURL string
}

type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

type AuthConfig struct {
	JWTSecret string
}

type MongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
}

type PaymentConfig struct {
	Backend       string // "stripe" or "mock"
	SecretKey     string
	WebhookSecret string
	Currency      string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type ElasticConfig struct {
	URL      string
	User     string
	Password string
	Index    string
}

type ScyllaConfig struct {
	Hosts    []string
	Keyspace string
	Username string
	Password string
}

type RabbitMQConfig struct {
	URL           string
	PrefetchCount int
}

type OrdersConfig struct {
	PendingTTL    time.Duration
	SweepInterval time.Duration
}

// Load reads .env when present and builds the configuration from the
// environment.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Info().Msg("no .env file found, using system environment")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Mode:        getEnv("GIN_MODE", "release"),
			FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/"),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DATABASE", "foodcart"),
			Timeout:  getEnvAsDuration("MONGO_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Payment: PaymentConfig{
			Backend:       strings.ToLower(getEnv("PAYMENT_BACKEND", "stripe")),
			SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
			WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
			Currency:      strings.ToLower(getEnv("CURRENCY", "usd")),
		},
		MinIO: MinIOConfig{
			Endpoint:  os.Getenv("MINIO_ENDPOINT"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    getEnv("MINIO_BUCKET", "foodcart-images"),
			UseSSL:    getEnvAsBool("MINIO_USE_SSL", false),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("SMTP_FROM", "noreply@foodcart.local"),
		},
		Elastic: ElasticConfig{
			URL:      os.Getenv("ELASTIC_URL"),
			User:     os.Getenv("ELASTIC_USER"),
			Password: os.Getenv("ELASTIC_PASSWORD"),
			Index:    getEnv("ELASTIC_INDEX", "restaurants"),
		},
		Scylla: ScyllaConfig{
			Hosts:    splitList(os.Getenv("SCYLLA_HOSTS")),
			Keyspace: getEnv("SCYLLA_KEYSPACE", "foodcart_orders"),
			Username: os.Getenv("SCYLLA_USERNAME"),
			Password: os.Getenv("SCYLLA_PASSWORD"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:           os.Getenv("RABBITMQ_URL"),
			PrefetchCount: getEnvAsInt("RABBITMQ_PREFETCH_COUNT", 10),
		},
		Orders: OrdersConfig{
			PendingTTL:    getEnvAsDuration("ORDER_PENDING_TTL", 24*time.Hour),
			SweepInterval: getEnvAsDuration("ORDER_SWEEP_INTERVAL", 15*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Mongo.URI == "" || c.Mongo.Database == "" {
		return fmt.Errorf("MONGO_URI and MONGO_DATABASE are required")
	}

	switch c.Payment.Backend {
	case "stripe":
		if c.Payment.SecretKey == "" {
			return fmt.Errorf("STRIPE_SECRET_KEY is required when PAYMENT_BACKEND=stripe")
		}
		if c.Payment.WebhookSecret == "" && c.Server.Mode == "release" {
			return fmt.Errorf("STRIPE_WEBHOOK_SECRET is required when PAYMENT_BACKEND=stripe and GIN_MODE=release")
		}
	case "mock":
	default:
		return fmt.Errorf("invalid payment backend: %s (must be stripe or mock)", c.Payment.Backend)
	}

	if len(c.Payment.Currency) != 3 {
		return fmt.Errorf("invalid currency: %q", c.Payment.Currency)
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.Orders.PendingTTL <= 0 || c.Orders.SweepInterval <= 0 {
		return fmt.Errorf("ORDER_PENDING_TTL and ORDER_SWEEP_INTERVAL must be positive")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
