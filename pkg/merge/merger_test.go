package merge

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/q0rtex/qortex-go/pkg/errors"
	"github.com/q0rtex/qortex-go/pkg/state"
)

func TestMergeEmpty(t *testing.T) {
	m := NewMerger()

	res, err := m.Merge(nil)
	require.NoError(t, err)
	assert.Equal(t, state.Identity(state.MaxComponents).Components(), res.MergedVector.Components())
	assert.Equal(t, 1.0, res.RealityScore)
	assert.Equal(t, 0.0, res.Confidence)
}

func TestMergeTwoBasisVectors(t *testing.T) {
	m := NewMerger()
	a := state.MustVector(1, 0, 0, 0)
	b := state.MustVector(0, 1, 0, 0)

	res, err := m.Merge([]state.StateVector{a, b})
	require.NoError(t, err)

	// Both source directions survive in the aggregate.
	assert.Greater(t, res.MergedVector.Component(0), 0.0)
	assert.Greater(t, res.MergedVector.Component(1), 0.0)

	// Aggregate coherence sits strictly between the inputs'.
	coh := res.MergedVector.Coherence()
	assert.Greater(t, coh, b.Coherence())
	assert.Less(t, coh, a.Coherence())

	// Unit norm is preserved through the fold.
	assert.InDelta(t, 1.0, res.MergedVector.Norm(), 1e-12)
}

func TestMergeEMARealityScore(t *testing.T) {
	m := NewMerger()
	a := state.MustVector(1, 0, 0, 0)
	b := state.MustVector(0, 1, 0, 0)

	res, err := m.Merge([]state.StateVector{a, b})
	require.NoError(t, err)

	// Step scores: overlap(I,A)=[1,0,0,0] → 1.0;
	// overlap(that,B)=[√½,√½,0,0] → coherence √½ × amplitude 1 = √½.
	// EMA: 0.1*√½ + 0.9*1.0.
	assert.InDelta(t, 0.1*0.7071067811865476+0.9, res.RealityScore, 1e-9)
}

func TestMergeConfidence(t *testing.T) {
	m := NewMerger()

	t.Run("single vector has unit confidence", func(t *testing.T) {
		res, err := m.Merge([]state.StateVector{state.MustVector(0.5, 0.5)})
		require.NoError(t, err)
		assert.Equal(t, 1.0, res.Confidence)
	})

	t.Run("uniform coherence deltas keep confidence high", func(t *testing.T) {
		vs := []state.StateVector{
			state.MustVector(0.2, 0.1),
			state.MustVector(0.4, 0.1),
			state.MustVector(0.6, 0.1),
		}
		res, err := m.Merge(vs)
		require.NoError(t, err)
		// Deltas are all 0.2, variance 0, confidence 1.
		assert.InDelta(t, 1.0, res.Confidence, 1e-12)
	})

	t.Run("erratic coherence lowers confidence", func(t *testing.T) {
		vs := []state.StateVector{
			state.MustVector(0.0, 0.1),
			state.MustVector(1.0, 0.1),
			state.MustVector(0.0, 0.1),
			state.MustVector(1.0, 0.1),
		}
		res, err := m.Merge(vs)
		require.NoError(t, err)
		assert.Less(t, res.Confidence, 1.0)
		assert.Greater(t, res.Confidence, 0.0)
	})
}

func TestMergeDimensionMismatch(t *testing.T) {
	m := NewMerger()
	vs := []state.StateVector{
		state.MustVector(1, 0, 0, 0),
		state.MustVector(1, 0),
	}

	_, err := m.Merge(vs)
	require.Error(t, err)
	assert.Equal(t, errors.DimensionMismatch, errors.Code(err))
}

func TestMergeSequentialEqualsBatch(t *testing.T) {
	m := NewMerger()
	vs := []state.StateVector{
		state.MustVector(0.9, 0.1, 0.2, 0.3),
		state.MustVector(0.2, 0.8, 0.1, 0.0),
		state.MustVector(0.5, 0.5, 0.5, 0.5),
		state.MustVector(0.1, 0.0, 0.9, 0.0),
	}

	batch, err := m.Merge(vs)
	require.NoError(t, err)

	// Fold the same sequence by hand with MergePair.
	folded := state.Identity(4)
	for _, v := range vs {
		folded, err = m.MergePair(folded, v)
		require.NoError(t, err)
	}

	assert.InDeltaSlice(t, batch.MergedVector.Components(), folded.Components(), 1e-12)
}

// Merging [A,B] and then folding the result with C is NOT the same as
// merging [A,B,C] for the reality score: the EMA restarts from the
// intermediate aggregate. This is expected, not a bug.
func TestMergeOrderSensitiveRealityScore(t *testing.T) {
	m := NewMerger()
	a := state.MustVector(1, 0, 0, 0)
	b := state.MustVector(0, 1, 0, 0)
	c := state.MustVector(0, 0, 1, 0)

	direct, err := m.Merge([]state.StateVector{a, b, c})
	require.NoError(t, err)

	partial, err := m.Merge([]state.StateVector{a, b})
	require.NoError(t, err)
	refolded, err := m.Merge([]state.StateVector{partial.MergedVector, c})
	require.NoError(t, err)

	assert.Greater(t, math.Abs(direct.RealityScore-refolded.RealityScore), 1e-9)
}

func TestMergeCustomAlpha(t *testing.T) {
	// alpha=1 means the last step's score wins outright.
	m := NewMerger(WithAlpha(1.0))
	a := state.MustVector(1, 0, 0, 0)
	b := state.MustVector(0, 1, 0, 0)

	res, err := m.Merge([]state.StateVector{a, b})
	require.NoError(t, err)
	assert.InDelta(t, 0.7071067811865476, res.RealityScore, 1e-9)
}
