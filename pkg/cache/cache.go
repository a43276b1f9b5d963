// Package cache implements the bounded parallel-state cache: a key-value
// store of ParallelState entries with LRU eviction on capacity overflow
// and a periodic decay sweep that shrinks each entry's coherence and
// drops entries at or below a floor.
package cache

import (
	"math"
	"time"
)

const (
	// DefaultCapacity bounds the entry count when none is configured.
	DefaultCapacity = 512

	// DefaultSweepInterval is the wall-clock period of the decay sweep.
	DefaultSweepInterval = 100 * time.Millisecond

	// DefaultDecayFloor is the coherence at or below which a swept entry
	// is evicted.
	DefaultDecayFloor = 0.05
)

// Config holds state cache configuration.
type Config struct {
	// Maximum number of entries (0 = DefaultCapacity)
	Capacity int `json:"capacity" yaml:"capacity"`

	// Period of the background decay sweep (0 = DefaultSweepInterval)
	SweepInterval time.Duration `json:"sweep_interval" yaml:"sweep_interval"`

	// Coherence floor for decay eviction
	DecayFloor float64 `json:"decay_floor" yaml:"decay_floor"`
}

func (c Config) withDefaults() Config {
	if c.Capacity <= 0 {
		c.Capacity = DefaultCapacity
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	if c.DecayFloor <= 0 {
		c.DecayFloor = DefaultDecayFloor
	}
	return c
}

// DecayFactor returns the conventional per-sweep coherence multiplier for
// a sweep interval: exp(-interval). The sweep itself takes the factor as
// given and never recomputes it.
func DecayFactor(interval time.Duration) float64 {
	return math.Exp(-interval.Seconds())
}

// Stats contains cache performance statistics.
type Stats struct {
	Hits           int64     `json:"hits"`
	Misses         int64     `json:"misses"`
	Adds           int64     `json:"adds"`
	Evictions      int64     `json:"evictions"`
	DecayEvictions int64     `json:"decay_evictions"`
	Size           int64     `json:"size"`
	Capacity       int64     `json:"capacity"`
	LastAccess     time.Time `json:"last_access"`
}
