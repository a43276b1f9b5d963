// Package config provides YAML-backed configuration for the qortex
// engine with struct-tag validation and sane defaults.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/q0rtex/qortex-go/pkg/errors"
)

// Config represents the complete configuration for the engine.
type Config struct {
	// Logging configuration
	Logging LoggingConfig `yaml:"logging,omitempty" validate:"omitempty"`

	// State cache configuration
	Cache CacheConfig `yaml:"cache,omitempty" validate:"omitempty"`

	// Neighbor window configuration
	Window WindowConfig `yaml:"window,omitempty" validate:"omitempty"`

	// Merger configuration
	Merger MergerConfig `yaml:"merger,omitempty" validate:"omitempty"`

	// Convergence optimizer configuration
	Optimizer OptimizerConfig `yaml:"optimizer,omitempty" validate:"omitempty"`

	// Parallel processor configuration
	Processor ProcessorConfig `yaml:"processor,omitempty" validate:"omitempty"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Severity level: DEBUG, INFO, WARN, ERROR, FATAL
	Level string `yaml:"level,omitempty" validate:"omitempty,oneof=DEBUG INFO WARN ERROR FATAL"`

	// Whether console output goes to stderr
	UseStderr bool `yaml:"use_stderr,omitempty"`

	// Whether to colorize console output
	Color bool `yaml:"color,omitempty"`
}

// CacheConfig controls the bounded state cache.
type CacheConfig struct {
	// Maximum number of entries
	Capacity int `yaml:"capacity,omitempty" validate:"omitempty,min=1"`

	// Decay sweep period
	SweepInterval time.Duration `yaml:"sweep_interval,omitempty" validate:"omitempty,min=1"`

	// Coherence floor for decay eviction
	DecayFloor float64 `yaml:"decay_floor,omitempty" validate:"omitempty,gt=0,lt=1"`
}

// WindowConfig controls contextual neighbor attachment.
type WindowConfig struct {
	// Neighbor radius around each token
	Radius int `yaml:"radius,omitempty" validate:"omitempty,min=1"`
}

// MergerConfig controls vector aggregation.
type MergerConfig struct {
	// EMA smoothing factor for the aggregate reality score
	Alpha float64 `yaml:"alpha,omitempty" validate:"omitempty,gt=0,lte=1"`
}

// OptimizerConfig controls the iterative design loop.
type OptimizerConfig struct {
	// Iteration budget
	MaxIterations int `yaml:"max_iterations,omitempty" validate:"omitempty,min=1"`

	// Convergence threshold on per-iteration deltas
	ConvergenceThreshold float64 `yaml:"convergence_threshold,omitempty" validate:"omitempty,gt=0"`

	// Oscillation detection window
	OscillationWindow int `yaml:"oscillation_window,omitempty" validate:"omitempty,min=1"`

	// Momentum weight of the history-aware step
	Momentum float64 `yaml:"momentum,omitempty" validate:"omitempty,gte=0,lt=1"`

	// Named transform applied each iteration
	Op string `yaml:"op,omitempty" validate:"omitempty,oneof=hadamard paulix pauliz normalize rotate"`
}

// ProcessorConfig controls input processing.
type ProcessorConfig struct {
	// Minimum acceptable aggregate reality score
	RealityFloor float64 `yaml:"reality_floor,omitempty" validate:"omitempty,gt=0,lte=1"`

	// Upper bound on concurrent transform dispatches
	MaxConcurrency int `yaml:"max_concurrency,omitempty" validate:"omitempty,min=1"`

	// Memory pressure ratio above which fan-out is throttled
	PressureThreshold float64 `yaml:"pressure_threshold,omitempty" validate:"omitempty,gt=0,lt=1"`
}

// Load reads a YAML config file, layers it over the defaults, and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ResourceNotFound, "cannot read config file")
	}
	return Parse(data)
}

// Parse decodes YAML bytes over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := GetDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "cannot parse config")
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
