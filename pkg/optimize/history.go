package optimize

import (
	"github.com/q0rtex/qortex-go/pkg/state"
)

// history is the bounded, append-only record of prior iterations. It is
// local to a single IterativeDesign call and never shared.
type history struct {
	entries []state.StateVector
	limit   int
}

func newHistory(limit int) *history {
	if limit < 1 {
		limit = 1
	}
	return &history{limit: limit}
}

// push appends an entry, dropping the oldest once the limit is exceeded.
func (h *history) push(v state.StateVector) {
	h.entries = append(h.entries, v)
	if len(h.entries) > h.limit {
		h.entries = h.entries[1:]
	}
}

func (h *history) len() int {
	return len(h.entries)
}

// tail returns the most recent n entries, oldest first.
func (h *history) tail(n int) []state.StateVector {
	if n <= 0 || len(h.entries) == 0 {
		return nil
	}
	if n > len(h.entries) {
		n = len(h.entries)
	}
	return h.entries[len(h.entries)-n:]
}

// confidence is 1/(1+variance) of the pairwise distances between
// consecutive history entries. A short history has no distance spread
// and therefore full confidence.
func (h *history) confidence() float64 {
	if len(h.entries) < 2 {
		return 1.0
	}
	distances := make([]float64, 0, len(h.entries)-1)
	for i := 1; i < len(h.entries); i++ {
		d, err := h.entries[i].Distance(h.entries[i-1])
		if err != nil {
			continue
		}
		distances = append(distances, d)
	}
	return 1 / (1 + variance(distances))
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
