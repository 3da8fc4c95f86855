// cmd/blackhole/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/EngoEngine/engo"
	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-blackhole/pkg/config"
	"github.com/opd-ai/go-blackhole/pkg/engine"
	"github.com/opd-ai/go-blackhole/pkg/event"
	"github.com/opd-ai/go-blackhole/pkg/logging"
	"github.com/opd-ai/go-blackhole/pkg/render"
	engorender "github.com/opd-ai/go-blackhole/pkg/render/engo"
)

func main() {
	logger := logging.NewLogger()
	ctx := logging.WithRunID(context.Background(), logging.GenerateRunID())

	configPath := flag.String("config", "config.json", "Path to configuration file")
	renderer := flag.String("renderer", "", "Renderer type: 'engo' or 'terminal' (overrides config)")
	preset := flag.String("preset", "", "Start from a preset: "+strings.Join(config.PresetNames(), ", "))
	seed := flag.Int64("seed", 0, "Random seed (overrides config, 0 keeps it)")
	logPath := flag.String("log", "blackhole.log", "Log file used while the terminal renderer owns the screen")
	flag.Parse()

	cfg, err := loadConfig(ctx, logger, *configPath, *preset)
	if err != nil {
		logger.Error(ctx, "Failed to load configuration", err,
			"config_path", *configPath,
			"preset", *preset,
		)
		os.Exit(1)
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *renderer != "" {
		cfg.DisplayConfig.Renderer = *renderer
	}
	if err := cfg.Validate(); err != nil {
		logger.Error(ctx, "Invalid configuration", err)
		os.Exit(1)
	}

	if cfg.DisplayConfig.Renderer == config.RendererTerminal {
		logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logger.Error(ctx, "Failed to open log file", err, "log_path", *logPath)
			os.Exit(1)
		}
		defer logFile.Close()
		logger = logging.NewLoggerWithWriter(logFile, logging.ParseLevel(os.Getenv(logging.LevelEnvVar)))
	}

	bus := event.NewEventBus()
	subscribeLogging(ctx, logger, bus)

	state, err := engine.NewSimulation(cfg,
		engine.WithLogger(logger),
		engine.WithEventBus(bus),
		engine.WithContext(ctx),
	)
	if err != nil {
		logger.Error(ctx, "Failed to create simulation", err)
		os.Exit(1)
	}

	switch cfg.DisplayConfig.Renderer {
	case config.RendererEngo:
		startEngoRenderer(state)
	case config.RendererTerminal:
		if err := startTerminalRenderer(ctx, state); err != nil {
			logger.Error(ctx, "Terminal renderer failed", err)
			os.Exit(1)
		}
	default:
		logger.Error(ctx, "Renderer not supported by this client", nil,
			"renderer", cfg.DisplayConfig.Renderer,
			"message", "use the headless binary for the null renderer",
		)
		os.Exit(1)
	}
}

// loadConfig layers defaults, an optional preset, the config file when it
// exists and environment overrides
func loadConfig(ctx context.Context, logger *logging.Logger, path, preset string) (*config.SimulationConfig, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q", preset)
		}
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logger.Info(ctx, "Configuration file not found, using defaults",
			"config_path", path,
		)
	} else {
		cfg, err = config.LoadConfigOver(path, cfg)
		if err != nil {
			return nil, err
		}
	}

	if err := config.ApplyEnvironmentOverrides(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment configuration: %w", err)
	}
	return cfg, nil
}

// subscribeLogging reports simulation events
func subscribeLogging(ctx context.Context, logger *logging.Logger, bus *event.Bus) {
	bus.Subscribe(event.FieldReset, func(e event.Event) {
		if fe, ok := e.(*event.FieldEvent); ok {
			logger.Info(ctx, "Asteroid field rebuilt",
				"asteroids", fe.AsteroidCount,
				"generation", fe.Generation,
			)
		}
	})
	bus.Subscribe(event.DebugToggled, func(e event.Event) {
		if te, ok := e.(*event.ToggleEvent); ok {
			logger.Info(ctx, "Debug drawing toggled", "enabled", te.Enabled)
		}
	})
	bus.Subscribe(event.TimeScaleChanged, func(e event.Event) {
		if te, ok := e.(*event.TimeScaleEvent); ok {
			logger.Info(ctx, "Time scale changed", "from", te.OldScale, "to", te.NewScale)
		}
	})
}

// startEngoRenderer opens the window and blocks until it closes
func startEngoRenderer(state *engine.SimulationState) {
	display := state.Config.DisplayConfig
	scene := engorender.NewGameScene(state)

	opts := engo.RunOptions{
		Title:      display.Title,
		Width:      display.Width,
		Height:     display.Height,
		Fullscreen: display.Fullscreen,
		VSync:      display.VSync,
	}

	engo.Run(opts, scene)
}

// startTerminalRenderer runs the loop in the terminal until a quit key or
// signal
func startTerminalRenderer(ctx context.Context, state *engine.SimulationState) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	defer screen.Fini()

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	width, _ := screen.Size()
	r := render.NewScreenRenderer(screen, render.ScaleForDisk(state.Config.FieldConfig.DiskRadius, width))
	input := render.NewTerminalInput()
	go input.Listen(ctx, screen, cancel)

	loop := engine.NewLoop(state,
		engine.WithRenderer(r),
		engine.WithInput(input),
	)
	return loop.Run(ctx)
}
