package state

import (
	"math"

	"github.com/q0rtex/qortex-go/pkg/errors"
)

// MaxComponents is the fixed upper bound on vector width. The original
// engine packs amplitudes into 4-lane SIMD registers; everything in this
// subsystem assumes at most four components.
const MaxComponents = 4

// StateVector is a small fixed-width numeric vector. The component count
// is set at construction and never changes; operations on vectors of
// different widths fail with DimensionMismatch.
//
// Coherence and reality score are plain arithmetic heuristics, not
// physical quantities.
type StateVector struct {
	components []float64
}

// NewVector constructs a StateVector from the given components.
func NewVector(components ...float64) (StateVector, error) {
	if len(components) == 0 {
		return StateVector{}, errors.New(errors.InvalidInput, "state vector needs at least one component")
	}
	if len(components) > MaxComponents {
		return StateVector{}, errors.WithFields(
			errors.New(errors.InvalidInput, "state vector exceeds maximum width"),
			errors.Fields{"components": len(components), "max": MaxComponents})
	}
	c := make([]float64, len(components))
	copy(c, components)
	return StateVector{components: c}, nil
}

// MustVector is NewVector for statically known-good inputs; it panics on
// invalid width and exists for tests and package-internal constants.
func MustVector(components ...float64) StateVector {
	v, err := NewVector(components...)
	if err != nil {
		panic(err)
	}
	return v
}

// Identity returns the identity vector of width n: a unit first component
// with zeros elsewhere. It is the seed value for merge folds and the
// initial state of a fresh design vector.
func Identity(n int) StateVector {
	if n < 1 {
		n = 1
	}
	if n > MaxComponents {
		n = MaxComponents
	}
	c := make([]float64, n)
	c[0] = 1
	return StateVector{components: c}
}

// Len returns the component count.
func (v StateVector) Len() int {
	return len(v.components)
}

// Component returns component i.
func (v StateVector) Component(i int) float64 {
	return v.components[i]
}

// Components returns a copy of the underlying components.
func (v StateVector) Components() []float64 {
	c := make([]float64, len(v.components))
	copy(c, v.components)
	return c
}

// Coherence is the first component. By convention it lives in [0,1]; the
// constructor does not enforce the range.
func (v StateVector) Coherence() float64 {
	if len(v.components) == 0 {
		return 0
	}
	return v.components[0]
}

// Amplitude is the Euclidean norm of the first two components.
func (v StateVector) Amplitude() float64 {
	if len(v.components) == 0 {
		return 0
	}
	if len(v.components) == 1 {
		return math.Abs(v.components[0])
	}
	return math.Hypot(v.components[0], v.components[1])
}

// RealityScore is coherence times amplitude. Not a probability, but the
// rest of the system thresholds it like one.
func (v StateVector) RealityScore() float64 {
	return v.Coherence() * v.Amplitude()
}

// Norm returns the Euclidean norm over all components.
func (v StateVector) Norm() float64 {
	var sum float64
	for _, c := range v.components {
		sum += c * c
	}
	return math.Sqrt(sum)
}

// Normalize returns the vector rescaled to unit norm. The zero vector is
// returned unchanged since it has no direction to preserve.
func (v StateVector) Normalize() StateVector {
	n := v.Norm()
	if n == 0 {
		return v.clone()
	}
	out := make([]float64, len(v.components))
	for i, c := range v.components {
		out[i] = c / n
	}
	return StateVector{components: out}
}

// Overlap combines two vectors into one: the componentwise sum scaled by
// 1/sqrt(2), renormalized to unit norm. This is the single two-source
// combination rule used by both the merger and the cache; every aggregate
// in the system is a chain of these.
func (v StateVector) Overlap(other StateVector) (StateVector, error) {
	if len(v.components) != len(other.components) {
		return StateVector{}, errors.WithFields(
			errors.New(errors.DimensionMismatch, "cannot overlap vectors of different widths"),
			errors.Fields{"left": len(v.components), "right": len(other.components)})
	}
	out := make([]float64, len(v.components))
	for i := range v.components {
		out[i] = (v.components[i] + other.components[i]) / math.Sqrt2
	}
	return StateVector{components: out}.Normalize(), nil
}

// Distance is the Euclidean distance between two vectors of equal width.
func (v StateVector) Distance(other StateVector) (float64, error) {
	if len(v.components) != len(other.components) {
		return 0, errors.WithFields(
			errors.New(errors.DimensionMismatch, "cannot measure distance between vectors of different widths"),
			errors.Fields{"left": len(v.components), "right": len(other.components)})
	}
	var sum float64
	for i := range v.components {
		d := v.components[i] - other.components[i]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// Scale returns the vector with every component multiplied by f.
func (v StateVector) Scale(f float64) StateVector {
	out := make([]float64, len(v.components))
	for i, c := range v.components {
		out[i] = c * f
	}
	return StateVector{components: out}
}

// WithCoherence returns a copy with the first component replaced. The
// cache uses this during decay sweeps; vectors themselves stay immutable.
func (v StateVector) WithCoherence(c float64) StateVector {
	out := v.clone()
	if len(out.components) > 0 {
		out.components[0] = c
	}
	return out
}

func (v StateVector) clone() StateVector {
	c := make([]float64, len(v.components))
	copy(c, v.components)
	return StateVector{components: c}
}
