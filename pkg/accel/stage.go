// Package accel provides named vector transforms behind a TransformStage
// interface. A hardware-backed stage dispatches to an external accelerator
// and may report AcceleratorUnavailable; the Fallback wrapper recovers by
// computing the same named operation in pure Go, so the error never
// reaches callers outside this package.
package accel

import (
	"context"

	"github.com/q0rtex/qortex-go/pkg/errors"
	"github.com/q0rtex/qortex-go/pkg/logging"
	"github.com/q0rtex/qortex-go/pkg/state"
)

// Op names a vector transform. The vocabulary mirrors the gate set of the
// original engine plus the two utility transforms the processor needs.
type Op string

const (
	OpHadamard  Op = "hadamard"
	OpPauliX    Op = "paulix"
	OpPauliZ    Op = "pauliz"
	OpNormalize Op = "normalize"
	OpRotate    Op = "rotate"
)

// KnownOp reports whether op is part of the transform vocabulary.
func KnownOp(op Op) bool {
	switch op {
	case OpHadamard, OpPauliX, OpPauliZ, OpNormalize, OpRotate:
		return true
	}
	return false
}

// TransformStage applies a named transform to a vector and returns a new
// vector. Implementations must not mutate the input. Apply may block for
// the duration of a synchronous accelerator dispatch.
type TransformStage interface {
	Apply(ctx context.Context, v state.StateVector, op Op) (state.StateVector, error)
}

// Dispatcher is the raw boundary to a hardware accelerator. Dispatch
// receives the vector components and returns the transformed components,
// or an error when the hardware path cannot serve the call.
type Dispatcher interface {
	Dispatch(ctx context.Context, components []float64, op Op) ([]float64, error)
}

// HardwareStage routes transforms through an accelerator Dispatcher.
type HardwareStage struct {
	dispatcher Dispatcher
}

// NewHardwareStage wraps a Dispatcher. A nil dispatcher yields a stage
// that always reports AcceleratorUnavailable, which is the expected shape
// on hosts without the accelerator runtime.
func NewHardwareStage(d Dispatcher) *HardwareStage {
	return &HardwareStage{dispatcher: d}
}

func (h *HardwareStage) Apply(ctx context.Context, v state.StateVector, op Op) (state.StateVector, error) {
	if err := errors.CheckContext(ctx, "hardware transform"); err != nil {
		return state.StateVector{}, err
	}
	if !KnownOp(op) {
		return state.StateVector{}, errors.WithFields(
			errors.New(errors.InvalidInput, "unknown transform operation"),
			errors.Fields{"op": string(op)})
	}
	if h.dispatcher == nil {
		return state.StateVector{}, errors.New(errors.AcceleratorUnavailable, "no accelerator runtime present")
	}

	out, err := h.dispatcher.Dispatch(ctx, v.Components(), op)
	if err != nil {
		return state.StateVector{}, errors.Wrap(err, errors.AcceleratorUnavailable, "accelerator dispatch failed")
	}
	return state.NewVector(out...)
}

// Fallback wraps a primary stage with the software stage. When the
// primary reports AcceleratorUnavailable the same op is recomputed in
// software; any other error propagates unchanged.
type Fallback struct {
	primary  TransformStage
	software *SoftwareStage
}

// NewFallback builds the wrapper. A nil primary degenerates to the pure
// software stage.
func NewFallback(primary TransformStage) *Fallback {
	return &Fallback{
		primary:  primary,
		software: NewSoftwareStage(),
	}
}

func (f *Fallback) Apply(ctx context.Context, v state.StateVector, op Op) (state.StateVector, error) {
	if f.primary == nil {
		return f.software.Apply(ctx, v, op)
	}

	out, err := f.primary.Apply(ctx, v, op)
	if err == nil {
		return out, nil
	}
	if errors.Code(err) != errors.AcceleratorUnavailable {
		return state.StateVector{}, err
	}

	logging.GetLogger().Debug(ctx, "accelerator unavailable for %s, using software path", op)
	return f.software.Apply(ctx, v, op)
}
