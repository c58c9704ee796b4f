package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/bodaform/internal/factory"
)

func env(vars map[string]string) func(string) string {
	return func(key string) string {
		return vars[key]
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := FromEnv(env(nil))
	require.NoError(t, err)

	assert.Equal(t, factory.StorageTypeFile, cfg.Factory.StorageType)
	assert.Equal(t, "data", cfg.Factory.FileConfig.Dir)
	assert.Equal(t, ":4321", cfg.Server.ListenAddr())
	assert.Equal(t, 24*time.Hour, cfg.Factory.AuthConfig.SessionDuration)
	assert.Empty(t, cfg.Factory.AuthConfig.Secret)
	assert.False(t, cfg.Factory.WizardConfig.AdvanceOnSaveFailure)
	assert.False(t, cfg.ProtectUserRoutes)
	assert.Equal(t, "admin", cfg.AdminUsername)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Nil(t, cfg.Factory.RedisConfig)
	assert.Nil(t, cfg.Factory.PostgresConfig)
}

func TestOverrides(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"PORT":                     "8080",
		"STORAGE_TYPE":             "Memory",
		"AUTH_SECRET":              "s3cret",
		"SESSION_DURATION":         "2h",
		"ADVANCE_ON_SAVE_FAILURE":  "true",
		"PROTECT_USER_ROUTES":      "1",
		"BOOTSTRAP_ADMIN_USERNAME": "planner",
		"BOOTSTRAP_ADMIN_PASSWORD": "pw",
		"LOG_LEVEL":                "debug",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.ListenAddr())
	assert.Equal(t, factory.StorageTypeMemory, cfg.Factory.StorageType)
	assert.Equal(t, "s3cret", cfg.Factory.AuthConfig.Secret)
	assert.Equal(t, 2*time.Hour, cfg.Factory.AuthConfig.SessionDuration)
	assert.True(t, cfg.Factory.WizardConfig.AdvanceOnSaveFailure)
	assert.True(t, cfg.ProtectUserRoutes)
	assert.Equal(t, "planner", cfg.AdminUsername)
	assert.Equal(t, "pw", cfg.AdminPassword)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestAddrOverridesPort(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{"ADDR": "127.0.0.1:9000", "PORT": "8080"}))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.ListenAddr())
}

func TestRedisStorage(t *testing.T) {
	_, err := FromEnv(env(map[string]string{"STORAGE_TYPE": "redis"}))
	assert.ErrorContains(t, err, "REDIS_URL")

	cfg, err := FromEnv(env(map[string]string{
		"STORAGE_TYPE": "redis",
		"REDIS_URL":    "redis://cache:6379/1",
	}))
	require.NoError(t, err)
	require.NotNil(t, cfg.Factory.RedisConfig)
	assert.Equal(t, "redis://cache:6379/1", cfg.Factory.RedisConfig.URL)
}

func TestPostgresStorage(t *testing.T) {
	_, err := FromEnv(env(map[string]string{"STORAGE_TYPE": "postgres"}))
	assert.ErrorContains(t, err, "DATABASE_DSN")

	cfg, err := FromEnv(env(map[string]string{
		"STORAGE_TYPE": "postgres",
		"DATABASE_DSN": "postgres://u:p@db/boda",
	}))
	require.NoError(t, err)
	require.NotNil(t, cfg.Factory.PostgresConfig)
	assert.Equal(t, "postgres://u:p@db/boda", cfg.Factory.PostgresConfig.DSN)
}

func TestInvalidValues(t *testing.T) {
	tests := map[string]map[string]string{
		"port":         {"PORT": "http"},
		"storage type": {"STORAGE_TYPE": "s3"},
		"duration":     {"SESSION_DURATION": "forever"},
		"bool":         {"PROTECT_USER_ROUTES": "maybe"},
		"advance":      {"ADVANCE_ON_SAVE_FAILURE": "sometimes"},
		"log level":    {"LOG_LEVEL": "loud"},
	}

	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(env(vars))
			assert.Error(t, err)
		})
	}
}
