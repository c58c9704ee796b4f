// Package config builds the server configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mcoot/bodaform/internal/api"
	"github.com/mcoot/bodaform/internal/factory"
	"github.com/mcoot/bodaform/internal/services/auth"
	"github.com/mcoot/bodaform/internal/services/wizard"
	"github.com/mcoot/bodaform/internal/storage/file"
	"github.com/mcoot/bodaform/internal/storage/postgres"
	redisstorage "github.com/mcoot/bodaform/internal/storage/redis"
)

// Config holds every runtime setting of the server
type Config struct {
	Server  api.ServerConfig
	Factory factory.Config

	// ProtectUserRoutes puts /api/users behind the admin check
	ProtectUserRoutes bool

	// Bootstrap admin, created on startup when no admin exists
	AdminUsername string
	AdminPassword string

	LogLevel slog.Level
}

// Default returns the configuration used when no variables are set
func Default() Config {
	return Config{
		Server: api.DefaultServerConfig(),
		Factory: factory.Config{
			StorageType:  factory.StorageTypeFile,
			FileConfig:   file.DefaultConfig(),
			AuthConfig:   auth.DefaultConfig(),
			WizardConfig: wizard.DefaultConfig(),
		},
		AdminUsername: "admin",
		LogLevel:      slog.LevelInfo,
	}
}

// Load reads the process environment
func Load() (Config, error) {
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, starting from Default
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()
	var err error

	if v := getenv("ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := getenv("PORT"); v != "" {
		if cfg.Server.Port, err = strconv.Atoi(v); err != nil {
			return Config{}, fmt.Errorf("PORT: %w", err)
		}
	}

	if v := getenv("STORAGE_TYPE"); v != "" {
		cfg.Factory.StorageType = strings.ToLower(v)
	}
	if v := getenv("DATA_DIR"); v != "" {
		cfg.Factory.FileConfig.Dir = v
	}

	switch cfg.Factory.StorageType {
	case factory.StorageTypeMemory, factory.StorageTypeFile:
	case factory.StorageTypeRedis:
		redisURL := getenv("REDIS_URL")
		if redisURL == "" {
			return Config{}, errors.New("REDIS_URL required when STORAGE_TYPE=redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.Factory.RedisConfig = &redisCfg
	case factory.StorageTypePostgres:
		dsn := getenv("DATABASE_DSN")
		if dsn == "" {
			return Config{}, errors.New("DATABASE_DSN required when STORAGE_TYPE=postgres")
		}
		pgCfg := postgres.DefaultConfig()
		pgCfg.DSN = dsn
		cfg.Factory.PostgresConfig = &pgCfg
	default:
		return Config{}, fmt.Errorf("STORAGE_TYPE %q: must be memory, file, redis or postgres", cfg.Factory.StorageType)
	}

	cfg.Factory.AuthConfig.Secret = getenv("AUTH_SECRET")
	if v := getenv("SESSION_DURATION"); v != "" {
		if cfg.Factory.AuthConfig.SessionDuration, err = time.ParseDuration(v); err != nil {
			return Config{}, fmt.Errorf("SESSION_DURATION: %w", err)
		}
	}

	if cfg.Factory.WizardConfig.AdvanceOnSaveFailure, err = parseBool(getenv, "ADVANCE_ON_SAVE_FAILURE", false); err != nil {
		return Config{}, err
	}
	if cfg.ProtectUserRoutes, err = parseBool(getenv, "PROTECT_USER_ROUTES", false); err != nil {
		return Config{}, err
	}

	if v := getenv("BOOTSTRAP_ADMIN_USERNAME"); v != "" {
		cfg.AdminUsername = v
	}
	cfg.AdminPassword = getenv("BOOTSTRAP_ADMIN_PASSWORD")

	if v := getenv("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
		}
	}

	return cfg, nil
}

func parseBool(getenv func(string) string, key string, fallback bool) (bool, error) {
	v := getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
