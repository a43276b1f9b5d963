package accel

import (
	"context"
	stderrors "errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/q0rtex/qortex-go/pkg/errors"
	"github.com/q0rtex/qortex-go/pkg/state"
)

func TestSoftwareStageGates(t *testing.T) {
	ctx := context.Background()
	sw := NewSoftwareStage()

	t.Run("hadamard", func(t *testing.T) {
		v := state.MustVector(1, 0, 0.3, 0.4)
		out, err := sw.Apply(ctx, v, OpHadamard)
		require.NoError(t, err)
		assert.InDelta(t, 1/math.Sqrt2, out.Component(0), 1e-12)
		assert.InDelta(t, 1/math.Sqrt2, out.Component(1), 1e-12)
		// Trailing components pass through untouched.
		assert.Equal(t, 0.3, out.Component(2))
		assert.Equal(t, 0.4, out.Component(3))
	})

	t.Run("hadamard is an involution", func(t *testing.T) {
		v := state.MustVector(0.6, 0.8)
		once, err := sw.Apply(ctx, v, OpHadamard)
		require.NoError(t, err)
		twice, err := sw.Apply(ctx, once, OpHadamard)
		require.NoError(t, err)
		assert.InDelta(t, 0.6, twice.Component(0), 1e-12)
		assert.InDelta(t, 0.8, twice.Component(1), 1e-12)
	})

	t.Run("paulix swaps", func(t *testing.T) {
		out, err := sw.Apply(ctx, state.MustVector(0.25, 0.75), OpPauliX)
		require.NoError(t, err)
		assert.Equal(t, 0.75, out.Component(0))
		assert.Equal(t, 0.25, out.Component(1))
	})

	t.Run("pauliz flips second sign", func(t *testing.T) {
		out, err := sw.Apply(ctx, state.MustVector(0.25, 0.75), OpPauliZ)
		require.NoError(t, err)
		assert.Equal(t, 0.25, out.Component(0))
		assert.Equal(t, -0.75, out.Component(1))
	})

	t.Run("rotate preserves norm", func(t *testing.T) {
		v := state.MustVector(0.6, 0.8)
		out, err := sw.Apply(ctx, v, OpRotate)
		require.NoError(t, err)
		assert.InDelta(t, v.Norm(), out.Norm(), 1e-12)
		assert.NotEqual(t, v.Components(), out.Components())
	})

	t.Run("normalize", func(t *testing.T) {
		out, err := sw.Apply(ctx, state.MustVector(3, 4), OpNormalize)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, out.Norm(), 1e-12)
	})

	t.Run("unknown op", func(t *testing.T) {
		_, err := sw.Apply(ctx, state.MustVector(1), Op("teleport"))
		require.Error(t, err)
		assert.Equal(t, errors.InvalidInput, errors.Code(err))
	})

	t.Run("single component vector", func(t *testing.T) {
		out, err := sw.Apply(ctx, state.MustVector(1), OpHadamard)
		require.NoError(t, err)
		assert.Equal(t, 1, out.Len())
		assert.InDelta(t, 1/math.Sqrt2, out.Component(0), 1e-12)
	})
}

func TestSoftwareStageDoesNotMutateInput(t *testing.T) {
	v := state.MustVector(0.5, 0.5)
	_, err := NewSoftwareStage().Apply(context.Background(), v, OpPauliX)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.5}, v.Components())
}

func TestHardwareStageWithoutRuntime(t *testing.T) {
	h := NewHardwareStage(nil)
	_, err := h.Apply(context.Background(), state.MustVector(1, 0), OpHadamard)
	require.Error(t, err)
	assert.Equal(t, errors.AcceleratorUnavailable, errors.Code(err))
}

// flakyDispatcher fails every call with a plain error, simulating a
// driver that lost its device.
type flakyDispatcher struct{ calls int }

func (d *flakyDispatcher) Dispatch(ctx context.Context, components []float64, op Op) ([]float64, error) {
	d.calls++
	return nil, stderrors.New("device lost")
}

// echoDispatcher returns the input unchanged and records the op.
type echoDispatcher struct{ lastOp Op }

func (d *echoDispatcher) Dispatch(ctx context.Context, components []float64, op Op) ([]float64, error) {
	d.lastOp = op
	return components, nil
}

func TestHardwareStageDispatch(t *testing.T) {
	d := &echoDispatcher{}
	h := NewHardwareStage(d)

	out, err := h.Apply(context.Background(), state.MustVector(0.1, 0.2), OpRotate)
	require.NoError(t, err)
	assert.Equal(t, OpRotate, d.lastOp)
	assert.Equal(t, []float64{0.1, 0.2}, out.Components())
}

func TestFallbackRecoversUnavailable(t *testing.T) {
	ctx := context.Background()
	d := &flakyDispatcher{}
	fb := NewFallback(NewHardwareStage(d))

	out, err := fb.Apply(ctx, state.MustVector(1, 0), OpHadamard)
	require.NoError(t, err, "AcceleratorUnavailable must not cross the package boundary")
	assert.Equal(t, 1, d.calls)
	assert.InDelta(t, 1/math.Sqrt2, out.Component(0), 1e-12)
}

func TestFallbackWithNilPrimary(t *testing.T) {
	fb := NewFallback(nil)
	out, err := fb.Apply(context.Background(), state.MustVector(0.5, 0.5), OpNormalize)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, out.Norm(), 1e-12)
}

func TestFallbackPropagatesOtherErrors(t *testing.T) {
	fb := NewFallback(NewSoftwareStage())
	_, err := fb.Apply(context.Background(), state.MustVector(1), Op("teleport"))
	require.Error(t, err)
	assert.Equal(t, errors.InvalidInput, errors.Code(err))
}

func TestKnownOp(t *testing.T) {
	assert.True(t, KnownOp(OpHadamard))
	assert.True(t, KnownOp(OpNormalize))
	assert.False(t, KnownOp(Op("teleport")))
}
