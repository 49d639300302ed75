package commands

import (
	"fmt"

	"github.com/wonny/chronos/internal/engine"
	"github.com/wonny/chronos/internal/scan"
	"github.com/wonny/chronos/internal/universe"
	"github.com/wonny/chronos/internal/workspace"
	"github.com/wonny/chronos/pkg/config"
	"github.com/wonny/chronos/pkg/httputil"
	"github.com/wonny/chronos/pkg/logger"
	"github.com/wonny/chronos/pkg/redis"
)

// runtime bundles the wired application components shared by commands
type runtime struct {
	cfg          *config.Config
	log          *logger.Logger
	redisClient  *redis.Client
	engine       *engine.Client
	aggregator   *workspace.Aggregator
	stash        *scan.ResultStash
	orchestrator *scan.Orchestrator
	gateway      *universe.Gateway
}

// initRuntime wires the full component stack from configuration
func initRuntime() (*runtime, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to Redis (optional, disabled falls back to in-process)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	cache := redis.NewCache(redisClient, "chronos")

	// 4. Create HTTP client
	httpClient := httputil.New(cfg, log)

	// 5. Create engine client
	engineClient := engine.NewClient(cfg, httpClient, log)

	// 6. Create workspace aggregator
	aggregator := workspace.NewAggregator(engineClient, cache, log, cfg.Engine.HistoryLimit)

	// 7. Create scan orchestrator with one-shot result stash
	stash := scan.NewResultStash(cache)
	orchestrator := scan.NewOrchestrator(engineClient, aggregator, stash, log, cfg.Engine.Provider, cfg.Engine.Interval)

	// 8. Create universe gateway
	gateway := universe.NewGateway(engineClient, aggregator, log)

	return &runtime{
		cfg:          cfg,
		log:          log,
		redisClient:  redisClient,
		engine:       engineClient,
		aggregator:   aggregator,
		stash:        stash,
		orchestrator: orchestrator,
		gateway:      gateway,
	}, nil
}

// close releases runtime resources
func (r *runtime) close() {
	if err := r.redisClient.Close(); err != nil {
		r.log.WithError(err).Warn("Failed to close Redis connection")
	}
}
