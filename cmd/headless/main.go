// cmd/headless/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/opd-ai/go-blackhole/pkg/config"
	"github.com/opd-ai/go-blackhole/pkg/engine"
	"github.com/opd-ai/go-blackhole/pkg/event"
	"github.com/opd-ai/go-blackhole/pkg/health"
	"github.com/opd-ai/go-blackhole/pkg/logging"
	"github.com/opd-ai/go-blackhole/pkg/render"
	"github.com/opd-ai/go-blackhole/pkg/resource"
)

// Health thresholds
const (
	loopStaleAfter = 2 * time.Second
	memoryLimitMB  = 500
)

func main() {
	logger := logging.NewLogger()
	ctx := logging.WithRunID(context.Background(), logging.GenerateRunID())

	configPath := flag.String("config", "config.json", "Path to configuration file")
	createDefault := flag.Bool("default", false, "Create default configuration file")
	seed := flag.Int64("seed", 0, "Random seed (overrides config, 0 keeps it)")
	duration := flag.Duration("duration", 0, "Stop after this long (0 runs until signalled)")
	flag.Parse()

	// Create default configuration file if requested
	if *createDefault {
		if err := config.SaveConfig(config.DefaultConfig(), *configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file",
			"config_path", *configPath,
		)
		return
	}

	// Load configuration
	var cfg *config.SimulationConfig
	if _, err := os.Stat(*configPath); errors.Is(err, os.ErrNotExist) {
		logger.Info(ctx, "Configuration file not found, using default configuration",
			"config_path", *configPath,
		)
		cfg = config.DefaultConfig()
	} else {
		cfg, err = config.LoadConfig(*configPath)
		if err != nil {
			logger.Error(ctx, "Failed to load configuration", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
	}

	// Apply environment variable overrides
	if err := config.ApplyEnvironmentOverrides(cfg); err != nil {
		logger.Error(ctx, "Failed to apply environment configuration", err)
		os.Exit(1)
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	cfg.DisplayConfig.Renderer = config.RendererNull
	if err := cfg.Validate(); err != nil {
		logger.Error(ctx, "Invalid configuration", err)
		os.Exit(1)
	}

	bus := event.NewEventBus()
	bus.Subscribe(event.FieldReset, func(e event.Event) {
		if fe, ok := e.(*event.FieldEvent); ok {
			logger.Info(ctx, "Asteroid field built",
				"asteroids", fe.AsteroidCount,
				"generation", fe.Generation,
			)
		}
	})

	state, err := engine.NewSimulation(cfg,
		engine.WithLogger(logger),
		engine.WithEventBus(bus),
		engine.WithContext(ctx),
	)
	if err != nil {
		logger.Error(ctx, "Failed to create simulation", err)
		os.Exit(1)
	}

	loop := engine.NewLoop(state, engine.WithRenderer(render.NewNullRenderer(logger)))

	// Setup health checks
	healthChecker := health.NewHealthChecker()
	healthChecker.AddCheck(health.NewLoopHealthCheck(loop.LastTick, nil, loopStaleAfter))
	healthChecker.AddCheck(health.NewFieldHealthCheck(state.CheckInvariants))
	healthChecker.AddCheck(health.NewMemoryHealthCheck(memoryLimitMB, health.CurrentMemoryMB))

	healthServer := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.DisplayConfig.HealthPort),
		Handler:      healthChecker.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	// Start health check server in background
	go func() {
		logger.Info(ctx, "Starting health check server",
			"port", cfg.DisplayConfig.HealthPort,
		)
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "Health check server failed", err)
		}
	}()

	// Handle graceful shutdown
	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, *duration)
		defer cancel()
	}

	limits := resource.DefaultLimits()
	limits.MaxMemoryMB = memoryLimitMB
	workers := resource.NewManager(limits, logger, health.CurrentMemoryMB)
	if err := workers.Start(runCtx); err != nil {
		logger.Error(ctx, "Failed to start resource manager", err)
		os.Exit(1)
	}
	healthChecker.AddCheck(resource.NewHealthCheck(workers))

	statsInterval := time.Duration(cfg.DisplayConfig.StatsIntervalMS) * time.Millisecond
	for name, fn := range map[string]func(context.Context) error{
		"simulation_loop": loop.Run,
		"stats_reporter": func(ctx context.Context) error {
			reportStats(ctx, logger, loop, statsInterval)
			return nil
		},
	} {
		if err := workers.Go(name, fn); err != nil {
			logger.Error(ctx, "Failed to start worker", err, "name", name)
			os.Exit(1)
		}
	}

	<-runCtx.Done()
	logger.Info(ctx, "Shutting down")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := workers.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Workers did not stop cleanly", err)
	}
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Health check server shutdown failed", err)
	}
	if err := workers.Err(); err != nil {
		logger.Error(ctx, "Simulation ended with a worker failure", err)
		os.Exit(1)
	}
}

// reportStats logs loop statistics every interval until ctx ends
func reportStats(ctx context.Context, logger *logging.Logger, loop *engine.Loop, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := loop.Stats()
			logger.Info(ctx, "Simulation stats",
				"ticks", stats.Ticks,
				"frames", stats.Frames,
				"physics_rate", stats.PhysicsRate,
				"frame_rate", stats.FrameRate,
				"behind", stats.Behind,
				"memory_mb", health.CurrentMemoryMB(),
			)
		}
	}
}
