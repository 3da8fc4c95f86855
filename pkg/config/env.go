package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variables that override file configuration
const (
	EnvSeed             = "BLACKHOLE_SEED"
	EnvAsteroidCount    = "BLACKHOLE_ASTEROID_COUNT"
	EnvUpdatesPerSecond = "BLACKHOLE_UPDATES_PER_SECOND"
	EnvRenderer         = "BLACKHOLE_RENDERER"
	EnvHealthPort       = "BLACKHOLE_HEALTH_PORT"
)

// ApplyEnvironmentOverrides replaces settings with any BLACKHOLE_* variables
// that are set. The config is left unchanged if any value fails to parse.
func ApplyEnvironmentOverrides(config *SimulationConfig) error {
	updated := *config

	if v, ok := lookup(EnvSeed); ok {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvSeed, err)
		}
		updated.Seed = seed
	}

	if v, ok := lookup(EnvAsteroidCount); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvAsteroidCount, err)
		}
		updated.FieldConfig.AsteroidCount = n
	}

	if v, ok := lookup(EnvUpdatesPerSecond); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvUpdatesPerSecond, err)
		}
		updated.LoopConfig.UpdatesPerSecond = n
	}

	if v, ok := lookup(EnvRenderer); ok {
		updated.DisplayConfig.Renderer = strings.ToLower(v)
	}

	if v, ok := lookup(EnvHealthPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvHealthPort, err)
		}
		updated.DisplayConfig.HealthPort = port
	}

	*config = updated
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}
