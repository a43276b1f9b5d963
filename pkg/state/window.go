package state

// DefaultWindowRadius is the contextual neighbor radius used when none is
// configured.
const DefaultWindowRadius = 5

// Windower attaches fixed-radius neighbor windows to ordered state
// sequences. It is stateless: identical inputs always produce identical
// neighbor lists, and it never mutates anything but the Neighbors field
// of the states it is given.
type Windower struct {
	radius int
}

// NewWindower creates a windower with the given radius. Non-positive
// radii fall back to DefaultWindowRadius.
func NewWindower(radius int) *Windower {
	if radius <= 0 {
		radius = DefaultWindowRadius
	}
	return &Windower{radius: radius}
}

// Radius returns the configured window radius.
func (w *Windower) Radius() int {
	return w.radius
}

// Attach recomputes the neighbor id lists for an ordered sequence of
// states. The neighbors of index i are the ids at [max(0,i-r), min(N,i+r))
// excluding i itself, in sequence order.
func (w *Windower) Attach(states []*ParallelState) {
	n := len(states)
	for i, s := range states {
		lo := i - w.radius
		if lo < 0 {
			lo = 0
		}
		hi := i + w.radius
		if hi > n {
			hi = n
		}

		neighbors := make([]string, 0, hi-lo)
		for j := lo; j < hi; j++ {
			if j == i {
				continue
			}
			neighbors = append(neighbors, states[j].ID)
		}
		s.Neighbors = neighbors
	}
}
