// Package processor wires tokenization, windowing, caching, transform
// fan-out and merging into a single input-processing pipeline.
package processor

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/q0rtex/qortex-go/pkg/accel"
	"github.com/q0rtex/qortex-go/pkg/cache"
	"github.com/q0rtex/qortex-go/pkg/config"
	"github.com/q0rtex/qortex-go/pkg/errors"
	"github.com/q0rtex/qortex-go/pkg/logging"
	"github.com/q0rtex/qortex-go/pkg/merge"
	"github.com/q0rtex/qortex-go/pkg/state"
)

// ProcessingResult is the outcome of one ProcessInput call.
type ProcessingResult struct {
	MergedVector state.StateVector
	RealityScore float64
	Confidence   float64
	TokenCount   int
	StateIDs     []string
	Elapsed      time.Duration
}

// Processor runs the full per-input pipeline: tokenize, build one
// ParallelState per token, attach neighbor windows, register in the
// cache, fan transform calls out over a bounded pool, merge results in
// token order and gate the outcome against the reality floor.
type Processor struct {
	tokenizer Tokenizer
	windower  *state.Windower
	cache     *cache.StateCache
	stage     accel.TransformStage
	merger    *merge.Merger
	tuner     *BatchTuner
	op        accel.Op
	floor     float64
}

// Option configures a Processor.
type Option func(*Processor)

// WithTokenizer replaces the default tokenizer.
func WithTokenizer(t Tokenizer) Option {
	return func(p *Processor) {
		if t != nil {
			p.tokenizer = t
		}
	}
}

// WithOp sets the transform applied to every token state.
func WithOp(op accel.Op) Option {
	return func(p *Processor) {
		if accel.KnownOp(op) {
			p.op = op
		}
	}
}

// WithTuner replaces the default memory-pressure tuner.
func WithTuner(t *BatchTuner) Option {
	return func(p *Processor) {
		if t != nil {
			p.tuner = t
		}
	}
}

// NewProcessor builds a processor from configuration. A nil stage gets
// the software fallback so the pipeline works without an accelerator.
func NewProcessor(cfg *config.Config, stage accel.TransformStage, opts ...Option) *Processor {
	if cfg == nil {
		cfg = config.GetDefaultConfig()
	}
	if stage == nil {
		stage = accel.NewFallback(nil)
	}

	p := &Processor{
		tokenizer: NewDefaultTokenizer(),
		windower:  state.NewWindower(cfg.Window.Radius),
		cache: cache.NewStateCache(cache.Config{
			Capacity:      cfg.Cache.Capacity,
			SweepInterval: cfg.Cache.SweepInterval,
			DecayFloor:    cfg.Cache.DecayFloor,
		}),
		stage:  stage,
		merger: merge.NewMerger(merge.WithAlpha(cfg.Merger.Alpha)),
		tuner:  NewBatchTuner(cfg.Processor.MaxConcurrency, cfg.Processor.PressureThreshold),
		op:     accel.OpHadamard,
		floor:  cfg.Processor.RealityFloor,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessInput runs the pipeline for one input string. The merged
// result reflects tokens in their original order regardless of how the
// transform fan-out interleaves. Inputs whose merged reality score
// falls below the configured floor fail with RealityTooLow.
func (p *Processor) ProcessInput(ctx context.Context, input string, kind InputKind) (*ProcessingResult, error) {
	start := time.Now()
	if err := errors.CheckContext(ctx, "process input"); err != nil {
		return nil, err
	}

	tokens := p.tokenizer.Tokenize(input, kind)
	logger := logging.GetLogger()
	logger.Debug(ctx, "Processing %s input: %d tokens", kind, len(tokens))

	states := make([]*state.ParallelState, len(tokens))
	for i, tok := range tokens {
		states[i] = state.NewParallelState(tok, encodeToken(tok))
	}
	p.windower.Attach(states)
	for _, st := range states {
		p.cache.Add(st)
	}

	vectors, err := p.transformAll(ctx, states)
	if err != nil {
		return nil, err
	}

	agg, err := p.merger.Merge(vectors)
	if err != nil {
		return nil, err
	}

	result := &ProcessingResult{
		MergedVector: agg.MergedVector,
		RealityScore: agg.RealityScore,
		Confidence:   agg.Confidence,
		TokenCount:   len(tokens),
		StateIDs:     stateIDs(states),
		Elapsed:      time.Since(start),
	}

	if result.RealityScore < p.floor {
		return nil, errors.WithFields(
			errors.New(errors.RealityTooLow, "merged state fell below the reality floor"),
			errors.Fields{
				"reality_score": result.RealityScore,
				"reality_floor": p.floor,
				"token_count":   len(tokens),
			})
	}

	logger.Info(ctx, "Processed %d tokens in %s (reality %.3f, confidence %.3f)",
		len(tokens), result.Elapsed, result.RealityScore, result.Confidence)
	return result, nil
}

// transformAll applies the configured op to every state concurrently.
// Results land in a preallocated slice indexed by token position, so
// merge order never depends on goroutine scheduling.
func (p *Processor) transformAll(ctx context.Context, states []*state.ParallelState) ([]state.StateVector, error) {
	vectors := make([]state.StateVector, len(states))
	errs := make([]error, len(states))

	logger := logging.GetLogger()
	w := pool.New().WithMaxGoroutines(p.tuner.Adjust(ctx))
	for i, st := range states {
		w.Go(func() {
			sctx := logging.WithStateID(ctx, st.ID)
			start := time.Now()
			vectors[i], errs[i] = p.stage.Apply(sctx, st.Vector, p.op)
			if errs[i] == nil {
				logger.StateProcessed(sctx, st.ID, vectors[i].Coherence(), time.Since(start))
			}
		})
	}
	w.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, errors.WithFields(
				errors.Wrap(err, errors.Code(err), "transform failed"),
				errors.Fields{"state_id": states[i].ID, "token": states[i].Token.Text})
		}
	}
	return vectors, nil
}

// Lookup fetches a previously processed state from the cache.
func (p *Processor) Lookup(id string) (*state.ParallelState, bool) {
	return p.cache.Get(id)
}

// CacheStats exposes cache counters for observability.
func (p *Processor) CacheStats() cache.Stats {
	return p.cache.Stats()
}

// Close stops the cache's background decay sweeper.
func (p *Processor) Close() error {
	return p.cache.Close()
}

// encodeToken derives a deterministic initial vector from token text.
// The leading component starts at full coherence; the remaining
// components are seeded from an FNV hash so distinct tokens occupy
// distinct directions. The result is unit norm.
func encodeToken(tok state.Token) state.StateVector {
	h := fnv.New64a()
	h.Write([]byte(tok.Tag))
	h.Write([]byte{0})
	h.Write([]byte(tok.Text))
	sum := h.Sum64()

	components := make([]float64, state.MaxComponents)
	components[0] = 1
	for i := 1; i < state.MaxComponents; i++ {
		// Take 16 bits per component, mapped into [0, 1).
		bits := (sum >> (uint(i-1) * 16)) & 0xFFFF
		components[i] = float64(bits) / 0x10000
	}
	return state.MustVector(components...).Normalize()
}

func stateIDs(states []*state.ParallelState) []string {
	ids := make([]string, len(states))
	for i, st := range states {
		ids[i] = st.ID
	}
	return ids
}
