// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	// Seed for the shared random source. Nil means time-based (non-reproducible).
	Seed *int64 `yaml:"seed,omitempty"`

	World       WorldConfig       `yaml:"world"`
	Population  PopulationConfig  `yaml:"population"`
	Predation   PredationConfig   `yaml:"predation"`
	Prey        PreyConfig        `yaml:"prey"`
	Cat         CatConfig         `yaml:"cat"`
	Environment EnvironmentConfig `yaml:"environment"`
	Vegetation  VegetationConfig  `yaml:"vegetation"`
	Barrier     BarrierConfig     `yaml:"barrier"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
}

// WorldConfig holds grid dimensions in cells.
type WorldConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// PopulationConfig holds initial agent counts.
type PopulationConfig struct {
	Cats int `yaml:"cats"`
	Prey int `yaml:"prey"`
}

// PredationConfig holds the capture probability model.
// p = base + coef * vegetation[cell]
type PredationConfig struct {
	Base float64 `yaml:"base"`
	Coef float64 `yaml:"coef"`
}

// PreyConfig holds prey behaviour parameters.
type PreyConfig struct {
	FleeProb               float64 `yaml:"flee_prob"`               // chance to flee when scent is sensed
	FemaleRatio            float64 `yaml:"female_ratio"`            // Bernoulli p for female at birth
	FleeDepletion          int     `yaml:"flee_depletion"`          // vegetation removed on a flee move
	ForageDepletion        int     `yaml:"forage_depletion"`        // vegetation removed on a forage move
	ReproductionAge        int     `yaml:"reproduction_age"`        // ticks between litters
	ReproductionVegetation int     `yaml:"reproduction_vegetation"` // arrival vegetation must exceed this
	MaxOffspring           int     `yaml:"max_offspring"`           // litter size drawn uniformly from [0, max]
}

// CatConfig holds predator energy parameters.
type CatConfig struct {
	MaxEnergy       int `yaml:"max_energy"`
	InitialEnergy   int `yaml:"initial_energy"`
	StarvationTicks int `yaml:"starvation_ticks"` // ticks without a kill per energy point lost
}

// EnvironmentConfig holds field dynamics parameters.
type EnvironmentConfig struct {
	ScentRadius int     `yaml:"scent_radius"` // Chebyshev radius around each cat
	RegrowProb  float64 `yaml:"regrow_prob"`  // per-cell chance of +1 vegetation each tick
}

// VegetationConfig controls how the initial vegetation field is produced.
type VegetationConfig struct {
	Mode       string    `yaml:"mode"`    // "random", "noise"
	Weights    []float64 `yaml:"weights"` // categorical weights for levels 0..4 (random mode)
	NoiseScale float64   `yaml:"noise_scale"`
	Octaves    int       `yaml:"octaves"`
	File       string    `yaml:"file,omitempty"` // CSV grid loaded by the runner

	// Grid is an externally supplied field indexed [x][y]; overrides Mode.
	Grid [][]int `yaml:"-"`
}

// BarrierConfig controls the static impassable mask.
type BarrierConfig struct {
	Mode      string  `yaml:"mode"` // "river", "none"
	Thickness int     `yaml:"thickness"`
	Amplitude float64 `yaml:"amplitude"`
	File      string  `yaml:"file,omitempty"`

	// Grid is an externally supplied mask indexed [x][y]; overrides Mode.
	Grid [][]bool `yaml:"-"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow          int     `yaml:"perf_window"`
	BookmarkHistorySize int     `yaml:"bookmark_history_size"`
	PreyCrashDrop       float64 `yaml:"prey_crash_drop"` // fraction below recent peak
	PreyCrashMin        int     `yaml:"prey_crash_min"`
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
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
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

	return cfg, nil
}

// Clone returns a deep copy, so callers can tweak parameters per run.
func (c *Config) Clone() *Config {
	out := *c
	if c.Seed != nil {
		s := *c.Seed
		out.Seed = &s
	}
	out.Vegetation.Weights = append([]float64(nil), c.Vegetation.Weights...)
	if c.Vegetation.Grid != nil {
		out.Vegetation.Grid = make([][]int, len(c.Vegetation.Grid))
		for x, col := range c.Vegetation.Grid {
			out.Vegetation.Grid[x] = append([]int(nil), col...)
		}
	}
	if c.Barrier.Grid != nil {
		out.Barrier.Grid = make([][]bool, len(c.Barrier.Grid))
		for x, col := range c.Barrier.Grid {
			out.Barrier.Grid[x] = append([]bool(nil), col...)
		}
	}
	return &out
}

// WithSeed sets the seed and returns the config for chaining.
func (c *Config) WithSeed(seed int64) *Config {
	c.Seed = &seed
	return c
}

// YAML returns the configuration encoded as YAML. Supplied grids are not included.
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := c.YAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
