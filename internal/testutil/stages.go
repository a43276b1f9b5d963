// Package testutil provides deterministic transform stages and fixtures
// shared by tests across the repository.
package testutil

import (
	"context"
	"sync/atomic"

	"github.com/q0rtex/qortex-go/pkg/accel"
	"github.com/q0rtex/qortex-go/pkg/state"
)

// FuncStage adapts a plain function into an accel.TransformStage and
// counts its invocations.
type FuncStage struct {
	Fn    func(v state.StateVector) state.StateVector
	calls int64
}

func (s *FuncStage) Apply(ctx context.Context, v state.StateVector, op accel.Op) (state.StateVector, error) {
	atomic.AddInt64(&s.calls, 1)
	return s.Fn(v), nil
}

// Calls reports how many times Apply ran.
func (s *FuncStage) Calls() int64 {
	return atomic.LoadInt64(&s.calls)
}

// IdentityStage returns every vector unchanged.
func IdentityStage() *FuncStage {
	return &FuncStage{Fn: func(v state.StateVector) state.StateVector { return v }}
}

// SignFlipStage negates every component on every call, producing a
// period-2 cycle.
func SignFlipStage() *FuncStage {
	return &FuncStage{Fn: func(v state.StateVector) state.StateVector { return v.Scale(-1) }}
}

// ConstantStage ignores its input and always returns fixed.
func ConstantStage(fixed state.StateVector) *FuncStage {
	return &FuncStage{Fn: func(state.StateVector) state.StateVector { return fixed }}
}

// ErrStage always fails with the given error.
type ErrStage struct {
	Err error
}

func (s *ErrStage) Apply(ctx context.Context, v state.StateVector, op accel.Op) (state.StateVector, error) {
	return state.StateVector{}, s.Err
}
