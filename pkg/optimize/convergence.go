// Package optimize implements the convergence-seeking design optimizer:
// a budgeted fixed-point loop that repeatedly transforms a design vector,
// detects oscillation between adjacent history windows, and reports a
// confidence score derived from the variance of successive deltas.
package optimize

import (
	"context"
	"time"

	"github.com/q0rtex/qortex-go/pkg/accel"
	"github.com/q0rtex/qortex-go/pkg/errors"
	"github.com/q0rtex/qortex-go/pkg/logging"
	"github.com/q0rtex/qortex-go/pkg/state"
)

// ConvergenceConfig contains configuration options for the optimizer.
type ConvergenceConfig struct {
	// Iteration budget
	MaxIterations int `json:"max_iterations"` // Default: 100

	// Convergence threshold on the per-iteration Euclidean delta
	ConvergenceThreshold float64 `json:"convergence_threshold"` // Default: 1e-6

	// Window length for oscillation detection
	OscillationWindow int `json:"oscillation_window"` // Default: 3

	// Momentum weight of the history-aware step
	Momentum float64 `json:"momentum"` // Default: 0.15

	// Named transform applied each iteration
	Op accel.Op `json:"op"` // Default: rotate
}

func defaultConvergenceConfig() ConvergenceConfig {
	return ConvergenceConfig{
		MaxIterations:        100,
		ConvergenceThreshold: 1e-6,
		OscillationWindow:    3,
		Momentum:             0.15,
		Op:                   accel.OpRotate,
	}
}

// DesignResult is the outcome of a successful iterative design run.
type DesignResult struct {
	DesignVector state.StateVector `json:"design_vector"`
	Iterations   int               `json:"iterations"`
	Confidence   float64           `json:"confidence"`
	Elapsed      time.Duration     `json:"elapsed"`
}

// ConvergenceOptimizer runs the iterative design loop. Each invocation
// owns its history; the optimizer itself is safe to share across
// concurrent calls.
type ConvergenceOptimizer struct {
	config ConvergenceConfig
	stage  accel.TransformStage
	logger *logging.Logger
}

// Option defines functional options for the optimizer.
type Option func(*ConvergenceOptimizer)

// WithMaxIterations sets the iteration budget.
func WithMaxIterations(n int) Option {
	return func(o *ConvergenceOptimizer) {
		o.config.MaxIterations = n
	}
}

// WithConvergenceThreshold sets the delta below which an iteration is a
// convergence candidate.
func WithConvergenceThreshold(t float64) Option {
	return func(o *ConvergenceOptimizer) {
		o.config.ConvergenceThreshold = t
	}
}

// WithOscillationWindow sets the history window length compared during
// oscillation detection.
func WithOscillationWindow(w int) Option {
	return func(o *ConvergenceOptimizer) {
		o.config.OscillationWindow = w
	}
}

// WithMomentum sets the weight of the history-aware adjustment step.
func WithMomentum(m float64) Option {
	return func(o *ConvergenceOptimizer) {
		o.config.Momentum = m
	}
}

// WithOp sets the named transform applied each iteration.
func WithOp(op accel.Op) Option {
	return func(o *ConvergenceOptimizer) {
		o.config.Op = op
	}
}

// NewConvergenceOptimizer builds an optimizer around a transform stage.
// A nil stage gets the pure-software fallback.
func NewConvergenceOptimizer(stage accel.TransformStage, opts ...Option) *ConvergenceOptimizer {
	o := &ConvergenceOptimizer{
		config: defaultConvergenceConfig(),
		stage:  stage,
		logger: logging.GetLogger(),
	}
	if o.stage == nil {
		o.stage = accel.NewFallback(nil)
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// IterativeDesign runs the fixed-point loop from seed until the delta
// between successive vectors falls below the convergence threshold
// without oscillating, or the iteration budget runs out, in which case it
// fails with ConvergenceFailed carrying the iteration count.
func (o *ConvergenceOptimizer) IterativeDesign(ctx context.Context, seed state.StateVector) (*DesignResult, error) {
	if seed.Len() == 0 {
		seed = state.Identity(state.MaxComponents)
	}

	start := time.Now()
	current := seed
	history := newHistory(o.config.MaxIterations / 2)

	for i := 0; i < o.config.MaxIterations; i++ {
		if err := errors.CheckContext(ctx, "iterative design"); err != nil {
			return nil, err
		}

		transformed, err := o.stage.Apply(ctx, current, o.config.Op)
		if err != nil {
			return nil, errors.Wrap(err, errors.Code(err), "transform stage failed")
		}

		adjusted := o.applyHistoryStep(transformed, history)

		difference, err := adjusted.Distance(current)
		if err != nil {
			return nil, err
		}

		history.push(adjusted)
		current = adjusted

		o.logger.Debug(ctx, "design iteration %d: difference=%.3e", i+1, difference)

		if difference < o.config.ConvergenceThreshold {
			if o.isOscillating(history) {
				// Falsely converged: the loop is cycling through a small
				// set of states. Keep iterating.
				o.logger.Debug(ctx, "oscillation detected at iteration %d, continuing", i+1)
				continue
			}
			return &DesignResult{
				DesignVector: current,
				Iterations:   i + 1,
				Confidence:   history.confidence(),
				Elapsed:      time.Since(start),
			}, nil
		}
	}

	return nil, errors.WithFields(
		errors.New(errors.ConvergenceFailed, "iteration budget exhausted without stable convergence"),
		errors.Fields{"iterations": o.config.MaxIterations})
}

// applyHistoryStep nudges the vector away from the recent history mean by
// the momentum weight. With an empty history (or a history equal to the
// vector itself) the step is a no-op, so an identity transform still
// converges on its first iteration.
func (o *ConvergenceOptimizer) applyHistoryStep(v state.StateVector, h *history) state.StateVector {
	tail := h.tail(o.config.OscillationWindow * 2)
	if len(tail) == 0 {
		return v
	}

	mean := meanVector(tail)
	if mean.Len() != v.Len() {
		return v
	}

	out := v.Components()
	for i := range out {
		out[i] += o.config.Momentum * (v.Component(i) - mean.Component(i))
	}
	stepped, err := state.NewVector(out...)
	if err != nil {
		return v
	}
	return stepped
}

// isOscillating compares the most recent OscillationWindow history
// entries against the window immediately preceding them. A total pairwise
// distance below the convergence threshold means the loop is revisiting
// the same states and has only falsely converged.
func (o *ConvergenceOptimizer) isOscillating(h *history) bool {
	w := o.config.OscillationWindow
	entries := h.tail(2 * w)
	if len(entries) < 2*w {
		return false
	}

	older := entries[:w]
	recent := entries[w:]

	var total float64
	for i := 0; i < w; i++ {
		d, err := recent[i].Distance(older[i])
		if err != nil {
			return false
		}
		total += d
	}
	return total < o.config.ConvergenceThreshold
}

func meanVector(vs []state.StateVector) state.StateVector {
	if len(vs) == 0 {
		return state.StateVector{}
	}
	acc := make([]float64, vs[0].Len())
	for _, v := range vs {
		if v.Len() != len(acc) {
			return state.StateVector{}
		}
		for i := 0; i < v.Len(); i++ {
			acc[i] += v.Component(i)
		}
	}
	for i := range acc {
		acc[i] /= float64(len(vs))
	}
	mean, err := state.NewVector(acc...)
	if err != nil {
		return state.StateVector{}
	}
	return mean
}
