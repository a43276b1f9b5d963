package state

import (
	"time"

	"github.com/google/uuid"
)

// Token is the opaque payload a ParallelState is built from: a text value
// plus the type tag the tokenizer inferred for it.
type Token struct {
	Text string
	Tag  string
}

// ParallelState is a per-token processing state. It is owned by the
// StateCache once added; other components hold it for at most one call.
// Neighbors are id back-links resolved through the cache, never live
// pointers, so overlapping windows cannot form ownership cycles.
type ParallelState struct {
	ID           string
	Token        Token
	Vector       StateVector
	Neighbors    []string
	LastAccessed time.Time
}

// NewParallelState creates a state for a token with a fresh unique id.
func NewParallelState(token Token, vector StateVector) *ParallelState {
	return &ParallelState{
		ID:           uuid.New().String(),
		Token:        token,
		Vector:       vector,
		LastAccessed: time.Now(),
	}
}

// Touch updates the last-accessed timestamp for LRU bookkeeping.
func (p *ParallelState) Touch() {
	p.LastAccessed = time.Now()
}

// Clone returns a deep copy. The cache hands clones to readers so no
// caller can mutate cache-owned state out from under the sweep.
func (p *ParallelState) Clone() *ParallelState {
	neighbors := make([]string, len(p.Neighbors))
	copy(neighbors, p.Neighbors)
	return &ParallelState{
		ID:           p.ID,
		Token:        p.Token,
		Vector:       p.Vector.clone(),
		Neighbors:    neighbors,
		LastAccessed: p.LastAccessed,
	}
}
