// pkg/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrInvalidConfig is wrapped by every Validate failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Renderer names accepted in DisplayConfig.Renderer
const (
	RendererEngo     = "engo"
	RendererTerminal = "terminal"
	RendererNull     = "null"
)

// SimulationConfig contains configuration for a black hole simulation
type SimulationConfig struct {
	Seed          int64         `json:"seed"` // 0 picks a time-based seed
	FieldConfig   FieldConfig   `json:"field"`
	PhysicsConfig PhysicsConfig `json:"physics"`
	NoiseConfig   NoiseConfig   `json:"noise"`
	LoopConfig    LoopConfig    `json:"loop"`
	ShipConfig    ShipConfig    `json:"ship"`
	DisplayConfig DisplayConfig `json:"display"`
}

// FieldConfig controls asteroid field generation
type FieldConfig struct {
	AsteroidCount        int     `json:"asteroidCount"`
	DiskRadius           float64 `json:"diskRadius"`
	MinDistanceFraction  float64 `json:"minDistanceFraction"`
	MaxDistanceFraction  float64 `json:"maxDistanceFraction"`
	MinOuterRadius       float64 `json:"minOuterRadius"`
	MaxOuterRadius       float64 `json:"maxOuterRadius"`
	MinInnerFraction     float64 `json:"minInnerFraction"`
	MaxInnerFraction     float64 `json:"maxInnerFraction"`
	TemplateCount        int     `json:"templateCount"`
	TemplateSubdivisions int     `json:"templateSubdivisions"`
}

// PhysicsConfig contains the gravity well parameters
type PhysicsConfig struct {
	GravitationalConstant float64 `json:"gravitationalConstant"`
	BlackHoleMass         float64 `json:"blackHoleMass"`
}

// NoiseConfig parameterizes the asteroid surface noise field
type NoiseConfig struct {
	Seed      int64   `json:"seed"`
	Frequency float64 `json:"frequency"`
	Amplitude float64 `json:"amplitude"`
}

// LoopConfig controls the fixed-timestep scheduler
type LoopConfig struct {
	UpdatesPerSecond      int     `json:"updatesPerSecond"`
	MaxTicksPerInvocation int     `json:"maxTicksPerInvocation"`
	FastForwardScale      float64 `json:"fastForwardScale"`
}

// ShipConfig contains player handling options
type ShipConfig struct {
	TurnRate     float64 `json:"turnRate"`
	PathSteps    int     `json:"pathSteps"`
	PathTimeStep float64 `json:"pathTimeStep"`
}

// DisplayConfig selects and sizes the front end
type DisplayConfig struct {
	Renderer        string `json:"renderer"`
	Title           string `json:"title"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	Fullscreen      bool   `json:"fullscreen"`
	VSync           bool   `json:"vsync"`
	HealthPort      int    `json:"healthPort"`
	StatsIntervalMS int    `json:"statsIntervalMs"`
}

// LoadConfig loads a configuration from a file. Settings missing from the
// file keep their defaults.
func LoadConfig(path string) (*SimulationConfig, error) {
	return LoadConfigOver(path, DefaultConfig())
}

// LoadConfigOver reads a configuration file on top of base, which is
// modified and returned
func LoadConfigOver(path string, base *SimulationConfig) (*SimulationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, base); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return base, nil
}

// SaveConfig saves a configuration to a file
func SaveConfig(config *SimulationConfig, path string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns the default simulation configuration
func DefaultConfig() *SimulationConfig {
	return &SimulationConfig{
		Seed: 0,
		FieldConfig: FieldConfig{
			AsteroidCount:        100,
			DiskRadius:           10000,
			MinDistanceFraction:  0.2,
			MaxDistanceFraction:  0.8,
			MinOuterRadius:       50,
			MaxOuterRadius:       400,
			MinInnerFraction:     0.1,
			MaxInnerFraction:     0.5,
			TemplateCount:        25,
			TemplateSubdivisions: 3,
		},
		PhysicsConfig: PhysicsConfig{
			GravitationalConstant: 6.67408e-11,
			BlackHoleMass:         5.0e16,
		},
		NoiseConfig: NoiseConfig{
			Seed:      1,
			Frequency: 0.6,
			Amplitude: 1.0,
		},
		LoopConfig: LoopConfig{
			UpdatesPerSecond:      60,
			MaxTicksPerInvocation: 10,
			FastForwardScale:      10,
		},
		ShipConfig: ShipConfig{
			TurnRate:     0.02,
			PathSteps:    100,
			PathTimeStep: 1.0,
		},
		DisplayConfig: DisplayConfig{
			Renderer:        RendererEngo,
			Title:           "Black Hole",
			Width:           1024,
			Height:          768,
			Fullscreen:      false,
			VSync:           true,
			HealthPort:      8080,
			StatsIntervalMS: 5000,
		},
	}
}

// Validate reports the first setting that cannot drive a simulation
func (c *SimulationConfig) Validate() error {
	f := c.FieldConfig
	switch {
	case f.AsteroidCount < 0:
		return fmt.Errorf("%w: asteroid count %d is negative", ErrInvalidConfig, f.AsteroidCount)
	case f.DiskRadius <= 0:
		return fmt.Errorf("%w: disk radius must be positive", ErrInvalidConfig)
	case f.MinDistanceFraction <= 0 || f.MinDistanceFraction > f.MaxDistanceFraction:
		return fmt.Errorf("%w: distance fractions [%v, %v]", ErrInvalidConfig, f.MinDistanceFraction, f.MaxDistanceFraction)
	case f.MinOuterRadius <= 0 || f.MinOuterRadius > f.MaxOuterRadius:
		return fmt.Errorf("%w: outer radius range [%v, %v]", ErrInvalidConfig, f.MinOuterRadius, f.MaxOuterRadius)
	case f.MinInnerFraction < 0 || f.MinInnerFraction > f.MaxInnerFraction || f.MaxInnerFraction > 1:
		return fmt.Errorf("%w: inner fractions [%v, %v]", ErrInvalidConfig, f.MinInnerFraction, f.MaxInnerFraction)
	case f.TemplateCount <= 0:
		return fmt.Errorf("%w: template count must be positive", ErrInvalidConfig)
	case f.TemplateSubdivisions < 0 || f.TemplateSubdivisions > 6:
		return fmt.Errorf("%w: template subdivisions %d outside [0, 6]", ErrInvalidConfig, f.TemplateSubdivisions)
	}

	if c.PhysicsConfig.GravitationalConstant < 0 || c.PhysicsConfig.BlackHoleMass < 0 {
		return fmt.Errorf("%w: gravity parameters must not be negative", ErrInvalidConfig)
	}

	l := c.LoopConfig
	switch {
	case l.UpdatesPerSecond <= 0:
		return fmt.Errorf("%w: updates per second must be positive", ErrInvalidConfig)
	case l.MaxTicksPerInvocation < 1:
		return fmt.Errorf("%w: max ticks per invocation must be at least 1", ErrInvalidConfig)
	case l.FastForwardScale <= 0:
		return fmt.Errorf("%w: fast forward scale must be positive", ErrInvalidConfig)
	}

	if c.ShipConfig.PathSteps < 0 || c.ShipConfig.PathTimeStep <= 0 {
		return fmt.Errorf("%w: predicted path settings", ErrInvalidConfig)
	}

	switch c.DisplayConfig.Renderer {
	case RendererEngo, RendererTerminal, RendererNull:
	default:
		return fmt.Errorf("%w: unknown renderer %q", ErrInvalidConfig, c.DisplayConfig.Renderer)
	}
	if c.DisplayConfig.HealthPort < 0 || c.DisplayConfig.HealthPort > 65535 {
		return fmt.Errorf("%w: health port %d out of range", ErrInvalidConfig, c.DisplayConfig.HealthPort)
	}

	return nil
}
