// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	World     WorldConfig     `yaml:"world"`
	Slime     SlimeConfig     `yaml:"slime"`
	Food      FoodConfig      `yaml:"food"`
	Field     FieldConfig     `yaml:"field"`
	Parallel  ParallelConfig  `yaml:"parallel"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Recording RecordingConfig `yaml:"recording"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds the pheromone grid dimensions.
// The continuous plane and the grid share the same extent.
type WorldConfig struct {
	Width  int `yaml:"width"`  // Grid width in cells (0 = use screen width)
	Height int `yaml:"height"` // Grid height in cells (0 = use screen height)
}

// SlimeConfig holds the agent motion and sensing constants.
type SlimeConfig struct {
	Count           int     `yaml:"count"`
	Speed           float64 `yaml:"speed"`            // Distance moved per tick
	SensorDistance  float64 `yaml:"sensor_distance"`  // Sensor offset ahead of the agent, also the food range
	RotationAngle   float64 `yaml:"rotation_angle"`   // Radians between sensors and per-turn step
	DepositAmount   float64 `yaml:"deposit_amount"`   // Added to the cell under the agent after each move
	EvaporationRate float64 `yaml:"evaporation_rate"` // Fraction of every cell removed per tick, in [0,1)
	FoodAttraction  float64 `yaml:"food_attraction"`  // Affinity decay per tick and gain per food in range
	AvoidanceRadius float64 `yaml:"avoidance_radius"` // Obstacle expansion and agent repulsion distance
	ClampAvoidance  bool    `yaml:"clamp_avoidance"`  // Turn at most π per tick regardless of trigger count
}

// FoodConfig holds the initial food source layout.
type FoodConfig struct {
	Count  int     `yaml:"count"`
	Radius float64 `yaml:"radius"`
}

// FieldConfig holds optional pheromone field dynamics.
type FieldConfig struct {
	Diffusion float64 `yaml:"diffusion"` // 5-point stencil strength per tick (0 disables)
}

// ParallelConfig holds worker pool settings.
type ParallelConfig struct {
	Workers int `yaml:"workers"` // Worker goroutines per tick (0 = GOMAXPROCS)
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow       int     `yaml:"stats_window"`       // Ticks per stats window
	PerfWindow        int     `yaml:"perf_window"`        // Ticks in the rolling perf window
	CoverageThreshold float64 `yaml:"coverage_threshold"` // Cell value counted as part of a trail
}

// RecordingConfig holds frame export settings for the graphical host.
type RecordingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
	Scale   int    `yaml:"scale"` // Upscale factor applied to each frame
	Blur    int    `yaml:"blur"`  // Gaussian blur size in pixels (0 disables)
	Every   int    `yaml:"every"` // Export one frame every N rendered frames
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	WorldW    int     // Effective grid width
	WorldH    int     // Effective grid height
	WorldW32  float32 // Effective world width as float32
	WorldH32  float32 // Effective world height as float32
	ScreenW32 float32 // Screen.Width as float32
	ScreenH32 float32 // Screen.Height as float32
}

// ConfigurationError reports a configuration value that cannot be used.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config: invalid %s: %s", e.Field, e.Reason)
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.ComputeDerived()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ComputeDerived calculates values derived from loaded config.
// Call again after editing a Config in place.
func (c *Config) ComputeDerived() {
	worldW := c.World.Width
	if worldW == 0 {
		worldW = c.Screen.Width
	}
	worldH := c.World.Height
	if worldH == 0 {
		worldH = c.Screen.Height
	}
	c.Derived.WorldW = worldW
	c.Derived.WorldH = worldH
	c.Derived.WorldW32 = float32(worldW)
	c.Derived.WorldH32 = float32(worldH)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
}

// Validate checks the values the simulation core depends on.
// The first problem found is returned as a *ConfigurationError.
func (c *Config) Validate() error {
	if c.Derived.WorldW <= 0 || c.Derived.WorldH <= 0 {
		return &ConfigurationError{
			Field:  "world",
			Reason: fmt.Sprintf("grid dimensions must be positive, got %dx%d", c.Derived.WorldW, c.Derived.WorldH),
		}
	}
	if c.Slime.Count <= 0 {
		return &ConfigurationError{Field: "slime.count", Reason: fmt.Sprintf("must be positive, got %d", c.Slime.Count)}
	}
	if r := c.Slime.EvaporationRate; !(r >= 0 && r < 1) {
		return &ConfigurationError{Field: "slime.evaporation_rate", Reason: fmt.Sprintf("must be in [0,1), got %v", r)}
	}

	nonNegative := []struct {
		name string
		v    float64
	}{
		{"slime.speed", c.Slime.Speed},
		{"slime.sensor_distance", c.Slime.SensorDistance},
		{"slime.deposit_amount", c.Slime.DepositAmount},
		{"slime.food_attraction", c.Slime.FoodAttraction},
		{"slime.avoidance_radius", c.Slime.AvoidanceRadius},
		{"food.radius", c.Food.Radius},
	}
	for _, f := range nonNegative {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			return &ConfigurationError{Field: f.name, Reason: fmt.Sprintf("must be finite and non-negative, got %v", f.v)}
		}
	}
	if a := c.Slime.RotationAngle; math.IsNaN(a) || math.IsInf(a, 0) {
		return &ConfigurationError{Field: "slime.rotation_angle", Reason: fmt.Sprintf("must be finite, got %v", a)}
	}

	if c.Food.Count < 0 {
		return &ConfigurationError{Field: "food.count", Reason: fmt.Sprintf("must not be negative, got %d", c.Food.Count)}
	}
	if d := c.Field.Diffusion; !(d >= 0 && d <= 0.25) {
		return &ConfigurationError{Field: "field.diffusion", Reason: fmt.Sprintf("must be in [0,0.25], got %v", d)}
	}
	if c.Parallel.Workers < 0 {
		return &ConfigurationError{Field: "parallel.workers", Reason: fmt.Sprintf("must not be negative, got %d", c.Parallel.Workers)}
	}
	if c.Recording.Enabled && c.Recording.Scale < 1 {
		return &ConfigurationError{Field: "recording.scale", Reason: fmt.Sprintf("must be at least 1, got %d", c.Recording.Scale)}
	}
	return nil
}

// IsConfigurationError reports whether err is or wraps a *ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
