package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/jmarban/suitparty-go/internal/dependencies/clock"
	"github.com/jmarban/suitparty-go/internal/dependencies/random"
	"github.com/jmarban/suitparty-go/internal/services/auth"
	"github.com/jmarban/suitparty-go/internal/services/generator"
	"github.com/jmarban/suitparty-go/internal/services/presence"
	"github.com/jmarban/suitparty-go/internal/services/room"
	"github.com/jmarban/suitparty-go/internal/services/rules"
	"github.com/jmarban/suitparty-go/internal/services/session"
	"github.com/jmarban/suitparty-go/internal/services/sweeper"
	"github.com/jmarban/suitparty-go/internal/storage"
	"github.com/jmarban/suitparty-go/internal/storage/memory"
	redisstorage "github.com/jmarban/suitparty-go/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	GeneratorService *generator.Service
	RulesService     *rules.Service
	RoomController   *room.Controller
	PresenceTracker  *presence.Tracker
	SessionService   *session.Service
	Sweeper          *sweeper.Sweeper
	AuthService      *auth.Service
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// PresenceConfig holds liveness policy (optional, defaults applied)
	PresenceConfig presence.Config
	// SweeperConfig holds sweep policy (optional, defaults applied)
	SweeperConfig sweeper.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	clk := clock.New()
	rnd := random.New()

	return newWithDependencies(store, clk, rnd, cfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *App {
	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg = auth.DefaultConfig()
	}
	presenceCfg := cfg.PresenceConfig
	if presenceCfg.StaleAfter == 0 {
		presenceCfg = presence.DefaultConfig()
	}
	sweeperCfg := cfg.SweeperConfig
	if sweeperCfg.Tick == 0 {
		sweeperCfg = sweeper.DefaultConfig()
	}

	generatorService := generator.New(rnd)
	rulesService := rules.New(store, clk, logger)
	roomController := room.NewController(store, generatorService, rulesService, clk, rnd, logger)
	presenceTracker := presence.NewTracker(store, clk, presenceCfg)
	sessionService := session.NewService(store, logger)
	sweep := sweeper.New(store, roomController, rulesService, presenceTracker, clk, sweeperCfg, logger)
	authService := auth.New(store, clk, authCfg)

	return &App{
		Storage:          store,
		Clock:            clk,
		Random:           rnd,
		GeneratorService: generatorService,
		RulesService:     rulesService,
		RoomController:   roomController,
		PresenceTracker:  presenceTracker,
		SessionService:   sessionService,
		Sweeper:          sweep,
		AuthService:      authService,
	}
}
