package config

import (
	"time"
)

// GetDefaultConfig returns the default configuration for the engine.
func GetDefaultConfig() *Config {
	return &Config{
		Logging:   getDefaultLoggingConfig(),
		Cache:     getDefaultCacheConfig(),
		Window:    getDefaultWindowConfig(),
		Merger:    getDefaultMergerConfig(),
		Optimizer: getDefaultOptimizerConfig(),
		Processor: getDefaultProcessorConfig(),
	}
}

func getDefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:     "INFO",
		UseStderr: false,
		Color:     true,
	}
}

func getDefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Capacity:      512,
		SweepInterval: 100 * time.Millisecond,
		DecayFloor:    0.05,
	}
}

func getDefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Radius: 5,
	}
}

func getDefaultMergerConfig() MergerConfig {
	return MergerConfig{
		Alpha: 0.1,
	}
}

func getDefaultOptimizerConfig() OptimizerConfig {
	return OptimizerConfig{
		MaxIterations:        100,
		ConvergenceThreshold: 1e-6,
		OscillationWindow:    3,
		Momentum:             0.15,
		Op:                   "rotate",
	}
}

func getDefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		RealityFloor:      0.5,
		MaxConcurrency:    8,
		PressureThreshold: 0.75,
	}
}
