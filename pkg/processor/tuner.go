package processor

import (
	"context"
	"sync"

	"github.com/shirou/gopsutil/v4/mem"

	"github.com/q0rtex/qortex-go/pkg/logging"
)

// memProbe reports current memory pressure in [0, 1].
type memProbe func(ctx context.Context) (float64, error)

func systemMemProbe(ctx context.Context) (float64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return vm.UsedPercent / 100, nil
}

// BatchTuner adapts the transform fan-out to memory pressure. Above the
// pressure threshold it halves the concurrency (never below 1); once
// pressure drops below half the threshold it grows back toward the
// configured maximum.
type BatchTuner struct {
	mu        sync.Mutex
	max       int
	current   int
	threshold float64
	probe     memProbe
}

func NewBatchTuner(maxConcurrency int, pressureThreshold float64) *BatchTuner {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &BatchTuner{
		max:       maxConcurrency,
		current:   maxConcurrency,
		threshold: pressureThreshold,
		probe:     systemMemProbe,
	}
}

// Adjust samples memory pressure and returns the fan-out to use for the
// next batch. Probe failures leave the current fan-out unchanged.
func (t *BatchTuner) Adjust(ctx context.Context) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	pressure, err := t.probe(ctx)
	if err != nil {
		logging.GetLogger().Warn(ctx, "Memory probe failed, keeping fan-out at %d: %v", t.current, err)
		return t.current
	}

	switch {
	case pressure > t.threshold:
		if t.current > 1 {
			t.current /= 2
			logging.GetLogger().Info(ctx, "Memory pressure %.2f above %.2f, reducing fan-out to %d",
				pressure, t.threshold, t.current)
		}
	case pressure < t.threshold/2:
		if t.current < t.max {
			t.current *= 2
			if t.current > t.max {
				t.current = t.max
			}
		}
	}
	return t.current
}

// Current returns the fan-out without sampling pressure.
func (t *BatchTuner) Current() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}
