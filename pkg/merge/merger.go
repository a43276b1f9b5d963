// Package merge folds ordered sequences of state vectors into a single
// aggregate vector plus an EMA-based reality score and a variance-based
// confidence.
package merge

import (
	"github.com/q0rtex/qortex-go/pkg/errors"
	"github.com/q0rtex/qortex-go/pkg/state"
)

// DefaultAlpha is the EMA smoothing factor for the aggregate reality
// score.
const DefaultAlpha = 0.1

// AggregateResult is the terminal, immutable outcome of a merge. It is
// never mutated after construction.
type AggregateResult struct {
	MergedVector state.StateVector
	RealityScore float64
	Confidence   float64
}

// Merger combines vector sequences. Merging is order-sensitive: the
// reality score is an EMA over the per-step scores, so the same vectors
// in a different order generally produce a different score. The merged
// vector itself depends only on the order of pairwise combinations, not
// on how the sequence is batched.
type Merger struct {
	alpha float64
}

type Option func(*Merger)

// WithAlpha overrides the EMA smoothing factor.
func WithAlpha(alpha float64) Option {
	return func(m *Merger) {
		m.alpha = alpha
	}
}

func NewMerger(opts ...Option) *Merger {
	m := &Merger{alpha: DefaultAlpha}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Merge folds the vectors in order into one aggregate. The fold seed is
// the identity vector. An empty input is not an error: it yields the
// identity vector with reality 1.0 and confidence 0.0: merge succeeds
// on no evidence, confidence is just minimal.
//
// Vectors of unequal width fail the whole merge with DimensionMismatch;
// nothing is padded or truncated.
func (m *Merger) Merge(vectors []state.StateVector) (*AggregateResult, error) {
	if len(vectors) == 0 {
		return &AggregateResult{
			MergedVector: state.Identity(state.MaxComponents),
			RealityScore: 1.0,
			Confidence:   0.0,
		}, nil
	}

	merged := state.Identity(vectors[0].Len())
	scores := make([]float64, 0, len(vectors))

	for i, v := range vectors {
		next, err := merged.Overlap(v)
		if err != nil {
			return nil, errors.WithFields(err, errors.Fields{"index": i})
		}
		merged = next
		scores = append(scores, merged.RealityScore())
	}

	ema := scores[0]
	for _, s := range scores[1:] {
		ema = m.alpha*s + (1-m.alpha)*ema
	}

	return &AggregateResult{
		MergedVector: merged,
		RealityScore: ema,
		Confidence:   1 / (1 + coherenceDeltaVariance(vectors)),
	}, nil
}

// MergePair is the single two-source combination step, exposed so that
// callers folding incrementally produce exactly the vector Merge would.
func (m *Merger) MergePair(a, b state.StateVector) (state.StateVector, error) {
	return a.Overlap(b)
}

// coherenceDeltaVariance is the population variance of the deltas between
// consecutive input coherences. Fewer than two inputs have no deltas and
// variance zero.
func coherenceDeltaVariance(vectors []state.StateVector) float64 {
	if len(vectors) < 2 {
		return 0
	}
	deltas := make([]float64, 0, len(vectors)-1)
	for i := 1; i < len(vectors); i++ {
		deltas = append(deltas, vectors[i].Coherence()-vectors[i-1].Coherence())
	}
	return variance(deltas)
}

func variance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	var sum float64
	for _, x := range xs {
		d := x - mean
		sum += d * d
	}
	return sum / float64(len(xs))
}
