package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/bodaform/internal/api"
	"github.com/mcoot/bodaform/internal/dependencies/clock"
	"github.com/mcoot/bodaform/internal/dependencies/random"
	"github.com/mcoot/bodaform/internal/services/auth"
	"github.com/mcoot/bodaform/internal/services/review"
	"github.com/mcoot/bodaform/internal/services/rules"
	"github.com/mcoot/bodaform/internal/services/wizard"
	"github.com/mcoot/bodaform/internal/storage"
	"github.com/mcoot/bodaform/internal/storage/file"
	"github.com/mcoot/bodaform/internal/storage/memory"
	"github.com/mcoot/bodaform/internal/storage/postgres"
	redisstorage "github.com/mcoot/bodaform/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeFile     = "file"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Rules            *rules.Evaluator
	AuthService      *auth.Service
	WizardController *wizard.Controller
	WizardRegistry   *wizard.Registry
	ReviewService    *review.Service

	Logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// WizardConfig holds the save-failure policy of the wizard
	WizardConfig wizard.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend
	// If empty, defaults to "memory"
	StorageType string
	// FileConfig holds file storage settings (used if StorageType is "file")
	FileConfig file.Config
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresConfig holds PostgreSQL settings (required if StorageType is "postgres")
	PostgresConfig *postgres.Config
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	// Use default auth config if not provided
	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg.SessionDuration = auth.DefaultConfig().SessionDuration
	}

	app, err := newWithDependencies(store, clk, rnd, authCfg, cfg.WizardConfig, logger)
	if err != nil {
		closeStorage(store)
		return nil, err
	}
	return app, nil
}

func newStorage(ctx context.Context, cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeFile:
		return file.New(cfg.FileConfig)
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		return postgres.New(ctx, *cfg.PostgresConfig)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be memory, file, redis or postgres", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, authCfg auth.Config, wizardCfg wizard.Config, logger *slog.Logger) (*App, error) {
	evaluator, err := rules.NewForCatalog()
	if err != nil {
		return nil, err
	}

	return &App{
		Storage:          store,
		Clock:            clk,
		Random:           rnd,
		Rules:            evaluator,
		AuthService:      auth.New(store, clk, rnd, authCfg),
		WizardController: wizard.NewController(store, logger, wizardCfg),
		WizardRegistry:   wizard.NewRegistry(clk),
		ReviewService:    review.New(store, evaluator, clk, logger),
		Logger:           logger,
	}, nil
}

// RouterConfig returns the API router configuration for this app
func (a *App) RouterConfig() api.RouterConfig {
	return api.RouterConfig{
		Logger:           a.Logger,
		AuthService:      a.AuthService,
		RecordStore:      a.Storage,
		WizardController: a.WizardController,
		WizardRegistry:   a.WizardRegistry,
		Rules:            a.Rules,
		ReviewService:    a.ReviewService,
	}
}

// Close releases storage connections, if the backend holds any
func (a *App) Close() error {
	if c, ok := a.Storage.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func closeStorage(store storage.Storage) {
	if c, ok := store.(io.Closer); ok {
		_ = c.Close()
	}
}
