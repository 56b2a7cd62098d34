package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	standingsstorage "github.com/Black-And-White-Club/tabroom/app/modules/standings/infrastructure/storage"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig          `yaml:"postgres"`
	NATS          NATSConfig              `yaml:"nats"`
	HTTP          HTTPConfig              `yaml:"http"`
	JWT           JWTConfig               `yaml:"jwt"`
	Queue         QueueConfig             `yaml:"queue"`
	Archive       standingsstorage.Config `yaml:"archive"`
	Observability ObservabilityConfig     `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn" validate:"required"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL        string `yaml:"url" validate:"required"`
	NKeySeed   string `yaml:"nkey_seed"`
	QueueGroup string `yaml:"queue_group"`
}

// HTTPConfig holds the API listener settings.
type HTTPConfig struct {
	Address           string        `yaml:"address" validate:"required"`
	AllowedOrigins    []string      `yaml:"allowed_origins"`
	RequestsPerSecond float64       `yaml:"requests_per_second" validate:"gte=0"`
	Burst             int           `yaml:"burst" validate:"gte=0"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret     string        `yaml:"secret" validate:"required,min=16"`
	Issuer     string        `yaml:"issuer"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// QueueConfig tunes the recompute queue.
type QueueConfig struct {
	MaxWorkers int           `yaml:"max_workers" validate:"gte=0"`
	Debounce   time.Duration `yaml:"debounce" validate:"gte=0"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	Environment    string `yaml:"environment"`
	LogLevel       string `yaml:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
	MetricsAddress string `yaml:"metrics_address"`
}

var validate = validator.New()

// LoadConfig reads filename if it exists, then applies environment overrides.
// A .env file in the working directory is loaded first when present.
func LoadConfig(filename string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	data, err := os.ReadFile(filename)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// environment only
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:           ":8080",
			RequestsPerSecond: 20,
			Burst:             40,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		JWT: JWTConfig{
			Issuer:     "tabroom",
			DefaultTTL: 24 * time.Hour,
		},
		Queue: QueueConfig{
			MaxWorkers: 10,
			Debounce:   2 * time.Second,
		},
		Observability: ObservabilityConfig{
			Environment: "production",
			LogLevel:    "info",
		},
	}
}

// applyEnv overrides file values with any environment variables that are set.
func applyEnv(cfg *Config) error {
	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setString(&cfg.NATS.URL, "NATS_URL")
	setString(&cfg.NATS.NKeySeed, "NATS_NKEY_SEED")
	setString(&cfg.NATS.QueueGroup, "NATS_QUEUE_GROUP")
	setString(&cfg.HTTP.Address, "HTTP_ADDRESS")
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setString(&cfg.JWT.Issuer, "JWT_ISSUER")
	setString(&cfg.Archive.Endpoint, "ARCHIVE_ENDPOINT")
	setString(&cfg.Archive.Region, "ARCHIVE_REGION")
	setString(&cfg.Archive.AccessKeyID, "ARCHIVE_ACCESS_KEY_ID")
	setString(&cfg.Archive.SecretAccessKey, "ARCHIVE_SECRET_ACCESS_KEY")
	setString(&cfg.Archive.Bucket, "ARCHIVE_BUCKET")
	setString(&cfg.Archive.PublicBaseURL, "ARCHIVE_PUBLIC_BASE_URL")
	setString(&cfg.Observability.Environment, "ENV")
	setString(&cfg.Observability.LogLevel, "LOG_LEVEL")
	setString(&cfg.Observability.MetricsAddress, "METRICS_ADDRESS")

	if v := os.Getenv("ARCHIVE_USE_PATH_STYLE"); v != "" {
		cfg.Archive.UsePathStyle = v == "true"
	}
	if v := os.Getenv("HTTP_REQUESTS_PER_SECOND"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid HTTP_REQUESTS_PER_SECOND value: %w", err)
		}
		cfg.HTTP.RequestsPerSecond = f
	}
	if v := os.Getenv("QUEUE_MAX_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid QUEUE_MAX_WORKERS value: %w", err)
		}
		cfg.Queue.MaxWorkers = n
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"JWT_DEFAULT_TTL", &cfg.JWT.DefaultTTL},
		{"QUEUE_DEBOUNCE", &cfg.Queue.Debounce},
		{"HTTP_SHUTDOWN_TIMEOUT", &cfg.HTTP.ShutdownTimeout},
	}
	for _, d := range durations {
		v := os.Getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s value: %w", d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
