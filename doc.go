// Package qortex is a Go implementation of the q0rtex parallel state engine:
// a quantum-inspired text/state processor for terminal assistants.
//
// The engine maintains a bounded cache of per-token numeric state vectors
// with contextual neighbor links, periodically decays and evicts entries,
// merges many vectors into one aggregate score using an exponential moving
// average, and runs an iterative fixed-point search with explicit
// oscillation detection and confidence estimation.
//
// Key Components:
//
//   - State: the StateVector value type with coherence/reality accessors,
//     ParallelState per-token records, and the neighbor windower.
//
//   - Accel: named vector transforms (hadamard, paulix, pauliz, normalize,
//     rotate) behind a TransformStage interface, with a pure-software
//     fallback when no accelerator is present.
//
//   - Cache: the bounded StateCache with LRU eviction and a periodic decay
//     sweep that shrinks coherence and drops entries below a floor.
//
//   - Merge: the StateMerger folding ordered vector sequences into one
//     aggregate vector plus an EMA-based reality score.
//
//   - Optimize: the ConvergenceOptimizer running a budgeted fixed-point
//     loop with oscillation detection and variance-based confidence.
//
//   - Processor: the ParallelProcessor orchestrating tokenize → window →
//     cache → transform fan-out → merge.
//
// "Coherence", "amplitude" and "reality score" are plain numeric heuristics
// named after the original system's vocabulary; they carry no physical
// semantics.
package qortex
