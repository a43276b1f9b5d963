package accel

import (
	"context"
	"math"

	"github.com/q0rtex/qortex-go/pkg/errors"
	"github.com/q0rtex/qortex-go/pkg/state"
)

// DefaultRotation is the rotation angle applied by OpRotate.
const DefaultRotation = math.Pi / 4

// SoftwareStage computes every named transform in pure Go. The gate ops
// act on the first two components as 2x2 matrices and leave the rest
// untouched, matching the accelerator's contract.
type SoftwareStage struct {
	rotation float64
}

type SoftwareOption func(*SoftwareStage)

// WithRotation overrides the OpRotate angle.
func WithRotation(angle float64) SoftwareOption {
	return func(s *SoftwareStage) {
		s.rotation = angle
	}
}

func NewSoftwareStage(opts ...SoftwareOption) *SoftwareStage {
	s := &SoftwareStage{rotation: DefaultRotation}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SoftwareStage) Apply(ctx context.Context, v state.StateVector, op Op) (state.StateVector, error) {
	if err := errors.CheckContext(ctx, "software transform"); err != nil {
		return state.StateVector{}, err
	}

	switch op {
	case OpHadamard:
		return s.gate(v, func(c0, c1 float64) (float64, float64) {
			return (c0 + c1) / math.Sqrt2, (c0 - c1) / math.Sqrt2
		})
	case OpPauliX:
		return s.gate(v, func(c0, c1 float64) (float64, float64) {
			return c1, c0
		})
	case OpPauliZ:
		return s.gate(v, func(c0, c1 float64) (float64, float64) {
			return c0, -c1
		})
	case OpRotate:
		sin, cos := math.Sin(s.rotation), math.Cos(s.rotation)
		return s.gate(v, func(c0, c1 float64) (float64, float64) {
			return c0*cos - c1*sin, c0*sin + c1*cos
		})
	case OpNormalize:
		return v.Normalize(), nil
	default:
		return state.StateVector{}, errors.WithFields(
			errors.New(errors.InvalidInput, "unknown transform operation"),
			errors.Fields{"op": string(op)})
	}
}

// gate applies a 2x2 transform to the first two components. Vectors of
// width one are treated as having an implicit zero second component that
// is discarded afterwards.
func (s *SoftwareStage) gate(v state.StateVector, f func(c0, c1 float64) (float64, float64)) (state.StateVector, error) {
	c := v.Components()
	c0 := c[0]
	var c1 float64
	if len(c) > 1 {
		c1 = c[1]
	}

	n0, n1 := f(c0, c1)
	c[0] = n0
	if len(c) > 1 {
		c[1] = n1
	}
	return state.NewVector(c...)
}
