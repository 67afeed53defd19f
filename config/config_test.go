package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvVars = []string{
	"DB_USER", "DB_PASSWORD", "DB_NAME", "DB_HOST", "DB_PORT", "DB_POOL_SIZE",
	"JWT_SECRET", "JWT_TOKEN_DURATION", "PORT",
}

// resetEnv unsets every configuration variable and restores the previous
// values when the test finishes.
func resetEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvVars {
		if value, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, value) })
			os.Unsetenv(key)
		}
	}
}

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_USER", "taskhub")
	t.Setenv("DB_PASSWORD", "hunter2")
	t.Setenv("DB_NAME", "taskhub")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadConfig_Defaults(t *testing.T) {
	resetEnv(t)
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 10, cfg.Database.MaxConns)
	assert.Equal(t, "taskhub", cfg.Database.User)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenDuration)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoadConfig_Overrides(t *testing.T) {
	resetEnv(t)
	setRequiredEnv(t)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_POOL_SIZE", "25")
	t.Setenv("JWT_TOKEN_DURATION", "90m")
	t.Setenv("PORT", "3000")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, 25, cfg.Database.MaxConns)
	assert.Equal(t, 90*time.Minute, cfg.Auth.TokenDuration)
	assert.Equal(t, "3000", cfg.Server.Port)
}

func TestLoadConfig_CollectsAllMissingVariables(t *testing.T) {
	resetEnv(t)

	_, err := LoadConfig()
	require.Error(t, err)

	// Every missing required variable is reported in one pass.
	assert.Contains(t, err.Error(), "DB_USER")
	assert.Contains(t, err.Error(), "DB_PASSWORD")
	assert.Contains(t, err.Error(), "DB_NAME")
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	resetEnv(t)
	setRequiredEnv(t)
	t.Setenv("DB_PORT", "not-a-number")
	t.Setenv("JWT_TOKEN_DURATION", "soon")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PORT")
	assert.Contains(t, err.Error(), "JWT_TOKEN_DURATION")
}

func TestLoadConfig_PoolSizeOutOfRange(t *testing.T) {
	resetEnv(t)
	setRequiredEnv(t)
	t.Setenv("DB_POOL_SIZE", "1")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_POOL_SIZE")
}
