package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "TaskNest", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "HS256", cfg.JWT.Algorithm)
	assert.Equal(t, 30*time.Minute, cfg.JWT.ExpiresIn)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshExpiresIn)
	assert.Equal(t, "tasknest-api", cfg.JWT.Issuer)
	assert.Equal(t, "heuristic", cfg.Suggestion.Engine)
	assert.Zero(t, cfg.Suggestion.CacheTTL)
	assert.True(t, cfg.Metrics.Enabled)
	assert.True(t, cfg.App.IsDevelopment())
	assert.False(t, cfg.App.IsProduction())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "tasknest_test")
	t.Setenv("JWT_EXPIRES_IN", "15m")
	t.Setenv("SUGGESTION_CACHE_TTL", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "tasknest_test", cfg.Database.Name)
	assert.Equal(t, 15*time.Minute, cfg.JWT.ExpiresIn)
	assert.Equal(t, 5*time.Minute, cfg.Suggestion.CacheTTL)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT secret")
}

func TestLoadRejectsUnknownJWTAlgorithm(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_ALGORITHM", "RS256")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT algorithm")
}

func TestLoadGroqEngineRequiresAPIKey(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SUGGESTION_ENGINE", "groq")
	t.Setenv("GROQ_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "groq API key")

	t.Setenv("GROQ_API_KEY", "gsk_test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "groq", cfg.Suggestion.Engine)
	assert.Equal(t, "llama-3.1-8b-instant", cfg.Suggestion.GroqModel)
	assert.Equal(t, 10*time.Second, cfg.Suggestion.GroqTimeout)
}

func TestLoadRejectsUnknownSuggestionEngine(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SUGGESTION_ENGINE", "astrology")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "suggestion engine")
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "secret",
		Name:     "tasknest",
		SSLMode:  "disable",
	}

	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=secret dbname=tasknest sslmode=disable",
		cfg.GetDSN(),
	)
}

func TestRedisAddr(t *testing.T) {
	cfg := RedisConfig{Host: "localhost", Port: 6379}
	assert.Equal(t, "localhost:6379", cfg.GetAddr())
}
