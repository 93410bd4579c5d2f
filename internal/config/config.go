package config

import (
	"fmt"
	"strings"
	"time"

	pkgconfig "github.com/MohauMushi/FluxStore-App/pkg/config"
	"github.com/MohauMushi/FluxStore-App/pkg/database"
)

// Store backends selectable with STORE_BACKEND.
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// Identity verifier modes selectable with IDENTITY_MODE.
const (
	IdentityJWT    = "jwt"
	IdentityRemote = "remote"
)

// Config holds all configuration for the catalog service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	HTTPPort int `env:"CATALOG_HTTP_PORT" envDefault:"8080"`

	StoreBackend string        `env:"STORE_BACKEND" envDefault:"postgres"`
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" envDefault:"3s"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"catalog"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"catalog_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"catalog"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"20"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// Redis
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Catalog behaviour
	ReviewMaxRetries int     `env:"REVIEW_MAX_RETRIES" envDefault:"5"`
	SearchThreshold  float64 `env:"SEARCH_THRESHOLD" envDefault:"0.3"`
	ListingMaxLimit  int     `env:"LISTING_MAX_LIMIT" envDefault:"100"`
	ListingCacheSecs int     `env:"LISTING_CACHE_SECONDS" envDefault:"30"`

	// Per-caller token bucket on review mutations, 0 disables.
	ReviewRateLimitRPS   int `env:"REVIEW_RATE_LIMIT_RPS" envDefault:"5"`
	ReviewRateLimitBurst int `env:"REVIEW_RATE_LIMIT_BURST" envDefault:"10"`

	// Identity
	IdentityMode string `env:"IDENTITY_MODE" envDefault:"jwt"`
	JWTSecret    string `env:"JWT_SECRET"`
	JWTIssuer    string `env:"JWT_ISSUER" envDefault:"fluxstore"`
	IdentityURL  string `env:"IDENTITY_URL"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`

	// Slow store operation logging, 0 disables.
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load catalog config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints the env tags cannot express.
func (c *Config) Validate() error {
	c.IdentityMode = strings.ToLower(strings.TrimSpace(c.IdentityMode))

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if err := c.ValidateStore(); err != nil {
		return err
	}
	if c.ReviewMaxRetries < 1 {
		return fmt.Errorf("REVIEW_MAX_RETRIES must be at least 1, got %d", c.ReviewMaxRetries)
	}
	if c.SearchThreshold < 0 || c.SearchThreshold > 1 {
		return fmt.Errorf("SEARCH_THRESHOLD must be between 0.0 and 1.0, got %f", c.SearchThreshold)
	}
	if c.ListingMaxLimit < 1 {
		return fmt.Errorf("LISTING_MAX_LIMIT must be positive, got %d", c.ListingMaxLimit)
	}
	if c.ReviewRateLimitRPS < 0 || c.ReviewRateLimitBurst < 0 {
		return fmt.Errorf("REVIEW_RATE_LIMIT_RPS and REVIEW_RATE_LIMIT_BURST must not be negative")
	}
	switch c.IdentityMode {
	case IdentityJWT:
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when IDENTITY_MODE=jwt")
		}
	case IdentityRemote:
		if c.IdentityURL == "" {
			return fmt.Errorf("IDENTITY_URL is required when IDENTITY_MODE=remote")
		}
	default:
		return fmt.Errorf("IDENTITY_MODE must be jwt or remote, got %q", c.IdentityMode)
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED=true")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}

// ValidateStore checks only the store settings. Tools that talk to the
// store but serve no traffic, like the seeder, validate with it.
func (c *Config) ValidateStore() error {
	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))

	switch c.StoreBackend {
	case BackendPostgres:
		if c.PostgresHost == "" || c.PostgresUser == "" {
			return fmt.Errorf("POSTGRES_HOST and POSTGRES_USER are required for the postgres backend")
		}
	case BackendRedis:
		if c.RedisHost == "" {
			return fmt.Errorf("REDIS_HOST is required for the redis backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("STORE_BACKEND must be one of postgres, redis, memory, got %q", c.StoreBackend)
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive, got %s", c.StoreTimeout)
	}
	return nil
}

// LoadStore reads configuration for store-only tools.
func LoadStore() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load catalog config: %w", err)
	}
	if err := cfg.ValidateStore(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Postgres returns the pool configuration for the postgres backend.
func (c *Config) Postgres() database.PostgresConfig {
	return database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPass,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSL,
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnLifetime: time.Duration(c.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(c.DBMaxConnIdleTimeMins) * time.Minute,
	}
}

// Redis returns the client configuration for the redis backend.
func (c *Config) Redis() database.RedisConfig {
	rc := database.DefaultRedisConfig()
	rc.Host = c.RedisHost
	rc.Port = c.RedisPort
	rc.Password = c.RedisPassword
	rc.DB = c.RedisDB
	return rc
}

// SlowQueryThreshold converts LOG_SLOW_QUERY_MS to a duration.
func (c *Config) SlowQueryThreshold() time.Duration {
	return time.Duration(c.SlowQueryThresholdMs) * time.Millisecond
}
