// Package main runs the meal battle arena: a telnet console backed by the
// meal catalog and a random source.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mealmax/internal/config"
	"github.com/cory-johannsen/mealmax/internal/frontend/handlers"
	"github.com/cory-johannsen/mealmax/internal/frontend/telnet"
	"github.com/cory-johannsen/mealmax/internal/kitchen"
	"github.com/cory-johannsen/mealmax/internal/observability"
	"github.com/cory-johannsen/mealmax/internal/random"
	"github.com/cory-johannsen/mealmax/internal/server"
	"github.com/cory-johannsen/mealmax/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	memory := flag.Bool("memory", false, "use an in-memory catalog instead of PostgreSQL")
	catalogPath := flag.String("catalog", "", "meal catalog YAML to preload into the in-memory catalog")
	healthInterval := flag.Duration("health-interval", 30*time.Second, "database health check interval")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting mealmax arena",
		zap.Bool("memory", *memory),
		zap.String("random_provider", cfg.Random.Provider),
		zap.Float64("probability_cap", cfg.Battle.ProbabilityCap),
	)

	ctx := context.Background()
	lifecycle := server.NewLifecycle(logger)

	var store kitchen.Store
	if *memory {
		mem := kitchen.NewMemoryStore()
		if *catalogPath != "" {
			if err := preload(ctx, mem, *catalogPath, logger); err != nil {
				logger.Fatal("preloading catalog", zap.Error(err))
			}
		}
		store = mem
	} else {
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Int("port", cfg.Database.Port),
			zap.String("database", cfg.Database.Name),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		store = postgres.NewMealRepository(pool.DB())

		dbLogger := observability.Component(logger, "postgres")
		lifecycle.Add("postgres-health", server.NewContextService(func(ctx context.Context) error {
			return pool.Monitor(ctx, *healthInterval, 5*time.Second, dbLogger)
		}))
	}

	rng, err := random.NewFromConfig(cfg.Random, observability.Component(logger, "random"))
	if err != nil {
		logger.Fatal("building random source", zap.Error(err))
	}

	arena := handlers.NewArenaHandler(store, rng, cfg.Battle.ProbabilityCap, observability.Component(logger, "arena"))
	acceptor := telnet.NewAcceptor(cfg.Telnet, arena, observability.Component(logger, "telnet"))
	lifecycle.Add("telnet", &server.FuncService{
		StartFn: acceptor.ListenAndServe,
		StopFn:  acceptor.Stop,
	})

	logger.Info("server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("telnet_addr", cfg.Telnet.Addr()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func preload(ctx context.Context, store kitchen.Store, path string, logger *zap.Logger) error {
	meals, err := kitchen.LoadCatalog(path)
	if err != nil {
		return err
	}
	for _, n := range meals {
		if _, err := store.Create(ctx, n); err != nil {
			return err
		}
	}
	logger.Info("catalog preloaded", zap.String("path", path), zap.Int("meals", len(meals)))
	return nil
}
