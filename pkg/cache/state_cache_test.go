package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/q0rtex/qortex-go/pkg/state"
)

func newTestState(coherence float64) *state.ParallelState {
	return state.NewParallelState(
		state.Token{Text: "tok", Tag: "word"},
		state.MustVector(coherence, 0.5, 0, 0),
	)
}

func newTestCache(t *testing.T, capacity int) *StateCache {
	t.Helper()
	c := NewStateCache(Config{
		Capacity: capacity,
		// Long interval so tests drive sweeps explicitly.
		SweepInterval: time.Hour,
	})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestStateCache_AddGet(t *testing.T) {
	c := newTestCache(t, 4)

	st := newTestState(0.9)
	c.Add(st)

	t.Run("hit returns a copy", func(t *testing.T) {
		got, found := c.Get(st.ID)
		require.True(t, found)
		assert.Equal(t, st.ID, got.ID)

		// Mutating the returned copy must not touch the cached entry.
		got.Vector = got.Vector.WithCoherence(0)
		again, found := c.Get(st.ID)
		require.True(t, found)
		assert.Equal(t, 0.9, again.Vector.Coherence())
	})

	t.Run("miss is not an error", func(t *testing.T) {
		got, found := c.Get("absent")
		assert.False(t, found)
		assert.Nil(t, got)
	})

	t.Run("replace by id", func(t *testing.T) {
		updated := st.Clone()
		updated.Vector = updated.Vector.WithCoherence(0.3)
		c.Add(updated)

		got, found := c.Get(st.ID)
		require.True(t, found)
		assert.Equal(t, 0.3, got.Vector.Coherence())
		assert.Equal(t, 1, c.Len(), "replacement must not grow the cache")
	})
}

func TestStateCache_AddTakesOwnership(t *testing.T) {
	c := newTestCache(t, 4)

	st := newTestState(0.8)
	c.Add(st)

	// Caller mutations after Add are invisible to the cache.
	st.Vector = st.Vector.WithCoherence(0)
	got, found := c.Get(st.ID)
	require.True(t, found)
	assert.Equal(t, 0.8, got.Vector.Coherence())
}

func TestStateCache_CapacityNeverExceeded(t *testing.T) {
	const capacity = 8
	c := newTestCache(t, capacity)

	for i := 0; i < capacity*4; i++ {
		c.Add(newTestState(0.9))
		assert.LessOrEqual(t, c.Len(), capacity)
	}
	assert.Equal(t, capacity, c.Len())

	stats := c.Stats()
	assert.Equal(t, int64(capacity*3), stats.Evictions)
}

func TestStateCache_LRUEvictionOrder(t *testing.T) {
	c := newTestCache(t, 2)

	a := newTestState(0.9)
	b := newTestState(0.9)
	c.Add(a)
	c.Add(b)

	// Touch a so that b becomes the least recently used.
	_, found := c.Get(a.ID)
	require.True(t, found)

	c.Add(newTestState(0.9))

	_, found = c.Get(a.ID)
	assert.True(t, found, "recently read entry must survive")
	_, found = c.Get(b.ID)
	assert.False(t, found, "least recently used entry must be evicted")
}

func TestStateCache_DecaySweep(t *testing.T) {
	c := newTestCache(t, 8)

	st := newTestState(1.0)
	c.Add(st)

	t.Run("monotonically non-increasing coherence", func(t *testing.T) {
		prev := 1.0
		for i := 0; i < 5; i++ {
			c.DecaySweep(0.5, 0.01)
			got, found := c.Get(st.ID)
			require.True(t, found)
			assert.LessOrEqual(t, got.Vector.Coherence(), prev)
			prev = got.Vector.Coherence()
		}
		assert.InDelta(t, 1.0/32, prev, 1e-12)
	})

	t.Run("eviction at the floor", func(t *testing.T) {
		// One more halving puts coherence at 1/64 <= 0.05.
		c.DecaySweep(0.5, 0.05)
		_, found := c.Get(st.ID)
		assert.False(t, found)
		assert.Equal(t, int64(1), c.Stats().DecayEvictions)
	})
}

func TestStateCache_DecaySweepExactFloor(t *testing.T) {
	c := newTestCache(t, 4)
	st := newTestState(0.2)
	c.Add(st)

	// 0.2 * 0.5 == 0.1; at the threshold means evicted.
	c.DecaySweep(0.5, 0.1)
	_, found := c.Get(st.ID)
	assert.False(t, found, "coherence equal to the floor is evicted")
}

func TestStateCache_BackgroundSweeper(t *testing.T) {
	c := NewStateCache(Config{
		Capacity:      4,
		SweepInterval: 5 * time.Millisecond,
		DecayFloor:    0.9999, // Evict almost immediately.
	})
	defer c.Close()

	st := newTestState(1.0)
	c.Add(st)

	assert.Eventually(t, func() bool {
		_, found := c.Get(st.ID)
		return !found
	}, time.Second, 5*time.Millisecond, "sweeper should decay the entry below the floor")
}

func TestStateCache_DecayFactor(t *testing.T) {
	f := DecayFactor(100 * time.Millisecond)
	assert.Less(t, f, 1.0)
	assert.Greater(t, f, 0.0)
	assert.InDelta(t, 0.9048, f, 1e-4)
}

func TestStateCache_Clear(t *testing.T) {
	c := newTestCache(t, 4)
	for i := 0; i < 3; i++ {
		c.Add(newTestState(0.9))
	}
	require.Equal(t, 3, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, int64(0), c.Stats().Adds)
}

func TestStateCache_Stats(t *testing.T) {
	c := newTestCache(t, 4)

	st := newTestState(0.9)
	c.Add(st)
	c.Get(st.ID)
	c.Get("missing")

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Adds)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Size)
	assert.Equal(t, int64(4), stats.Capacity)
	assert.False(t, stats.LastAccess.IsZero())
}

func TestStateCache_ConcurrentAccess(t *testing.T) {
	c := newTestCache(t, 64)

	var wg sync.WaitGroup
	ids := make([]string, 16)
	for i := range ids {
		st := newTestState(1.0)
		ids[i] = st.ID
		c.Add(st)
	}

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				switch i % 3 {
				case 0:
					c.Add(newTestState(0.9))
				case 1:
					c.Get(ids[(g+i)%len(ids)])
				case 2:
					c.DecaySweep(0.999, 0.01)
				}
			}
		}(g)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 64)
}

func TestStateCache_DefaultConfig(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, DefaultCapacity, cfg.Capacity)
	assert.Equal(t, DefaultSweepInterval, cfg.SweepInterval)
	assert.Equal(t, DefaultDecayFloor, cfg.DecayFloor)
}

func BenchmarkStateCache_Add(b *testing.B) {
	c := NewStateCache(Config{Capacity: 1024, SweepInterval: time.Hour})
	defer c.Close()

	states := make([]*state.ParallelState, 256)
	for i := range states {
		states[i] = state.NewParallelState(
			state.Token{Text: fmt.Sprintf("tok%d", i)},
			state.Identity(4),
		)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Add(states[i%len(states)])
	}
}
