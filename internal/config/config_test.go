package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTH_ENABLED", "false")
	t.Setenv("STRUCTURAL_CATEGORY", "")
	t.Setenv("SAMPLER_SEED", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "structural", cfg.Assessment.StructuralCategory)
	assert.Equal(t, uint64(0), cfg.Assessment.SamplerSeed)
	assert.Equal(t, 100, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Duration)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STRUCTURAL_CATEGORY", "Grammar")
	t.Setenv("SAMPLER_SEED", "42")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("REDIS_AVAILABILITY_TTL", "90s")
	t.Setenv("AUTH_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Grammar", cfg.Assessment.StructuralCategory)
	assert.Equal(t, uint64(42), cfg.Assessment.SamplerSeed)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 90*time.Second, cfg.Redis.TTL)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("AUTH_ENABLED", "false")
	t.Setenv("DB_MAX_OPEN_CONNS", "many")
	t.Setenv("SERVER_TIMEOUT_READ", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 15*time.Second, cfg.Server.TimeoutRead)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			App:        AppConfig{Env: "development"},
			Assessment: AssessmentConfig{StructuralCategory: "structural"},
			RateLimit:  RateLimitConfig{Enabled: true, Requests: 10, Duration: time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{
			name:    "auth without secret",
			mutate:  func(c *Config) { c.Auth.Enabled = true },
			wantErr: "JWT_SECRET",
		},
		{
			name:    "production without db password",
			mutate:  func(c *Config) { c.App.Env = "production" },
			wantErr: "DB_PASSWORD",
		},
		{
			name:    "blank structural category",
			mutate:  func(c *Config) { c.Assessment.StructuralCategory = "  " },
			wantErr: "STRUCTURAL_CATEGORY",
		},
		{
			name:    "zero rate limit",
			mutate:  func(c *Config) { c.RateLimit.Requests = 0 },
			wantErr: "RATE_LIMIT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5433", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=n sslmode=disable", d.DSN())
}
