package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, BackendPostgres, cfg.StoreBackend)
	assert.Equal(t, 3*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 5, cfg.ReviewMaxRetries)
	assert.Equal(t, 0.3, cfg.SearchThreshold)
	assert.Equal(t, 100, cfg.ListingMaxLimit)
	assert.Equal(t, 5, cfg.ReviewRateLimitRPS)
	assert.Equal(t, 10, cfg.ReviewRateLimitBurst)
	assert.Equal(t, IdentityJWT, cfg.IdentityMode)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 500*time.Millisecond, cfg.SlowQueryThreshold())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("STORE_BACKEND", "Redis")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("STORE_TIMEOUT", "750ms")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.StoreBackend)
	assert.Equal(t, "localhost:6380", cfg.Redis().Addr())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 750*time.Millisecond, cfg.StoreTimeout)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing jwt secret", map[string]string{}},
		{"bad backend", map[string]string{"JWT_SECRET": "s", "STORE_BACKEND": "firestore"}},
		{"bad port", map[string]string{"JWT_SECRET": "s", "CATALOG_HTTP_PORT": "70000"}},
		{"zero retries", map[string]string{"JWT_SECRET": "s", "REVIEW_MAX_RETRIES": "0"}},
		{"threshold out of range", map[string]string{"JWT_SECRET": "s", "SEARCH_THRESHOLD": "1.5"}},
		{"remote without url", map[string]string{"IDENTITY_MODE": "remote"}},
		{"unknown identity mode", map[string]string{"IDENTITY_MODE": "saml"}},
		{"sample rate", map[string]string{"JWT_SECRET": "s", "OTEL_SAMPLE_RATE": "2"}},
		{"negative rate limit", map[string]string{"JWT_SECRET": "s", "REVIEW_RATE_LIMIT_RPS": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestPostgres(t *testing.T) {
	cfg := &Config{
		PostgresHost: "db", PostgresPort: 5433, PostgresUser: "u", PostgresPass: "p",
		PostgresDB: "catalog", PostgresSSL: "require", DBMaxConnLifetimeMins: 10,
	}
	pg := cfg.Postgres()
	assert.Equal(t, "postgres://u:p@db:5433/catalog?sslmode=require", pg.DSN())
	assert.Equal(t, 10*time.Minute, pg.MaxConnLifetime)
}

func TestLoadStore_IgnoresIdentitySettings(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORE_BACKEND", " Memory ")

	cfg, err := LoadStore()
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)

	t.Setenv("STORE_BACKEND", "firestore")
	_, err = LoadStore()
	assert.Error(t, err)
}
