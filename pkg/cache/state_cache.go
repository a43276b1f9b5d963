package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/q0rtex/qortex-go/pkg/logging"
	"github.com/q0rtex/qortex-go/pkg/state"
)

// StateCache is a bounded in-memory store of ParallelState entries with
// LRU eviction. Add and Get behave as if serialized; the decay sweep
// acquires the same guard, so an entry is always observed either fully
// pre-sweep or fully post-sweep.
type StateCache struct {
	config    Config
	mu        sync.Mutex
	entries   map[string]*stateCacheEntry
	lruList   *lruList
	stats     Stats
	closeChan chan struct{}
	closeOnce sync.Once
	sweepWG   sync.WaitGroup
}

type stateCacheEntry struct {
	state   *state.ParallelState
	element *lruElement
}

// LRU list implementation.
type lruElement struct {
	id   string
	prev *lruElement
	next *lruElement
}

type lruList struct {
	head *lruElement
	tail *lruElement
	size int
}

func newLRUList() *lruList {
	head := &lruElement{}
	tail := &lruElement{}
	head.next = tail
	tail.prev = head
	return &lruList{head: head, tail: tail}
}

func (l *lruList) moveToFront(elem *lruElement) {
	if elem.prev == l.head {
		return // Already at front
	}
	// Remove from current position
	elem.prev.next = elem.next
	elem.next.prev = elem.prev
	// Insert at front
	elem.prev = l.head
	elem.next = l.head.next
	l.head.next.prev = elem
	l.head.next = elem
}

func (l *lruList) pushFront(id string) *lruElement {
	elem := &lruElement{id: id}
	elem.prev = l.head
	elem.next = l.head.next
	l.head.next.prev = elem
	l.head.next = elem
	l.size++
	return elem
}

func (l *lruList) removeElement(elem *lruElement) {
	elem.prev.next = elem.next
	elem.next.prev = elem.prev
	l.size--
}

func (l *lruList) back() *lruElement {
	if l.tail.prev == l.head {
		return nil
	}
	return l.tail.prev
}

// NewStateCache creates a cache and starts its background decay sweeper.
// Close must be called to stop the sweeper.
func NewStateCache(config Config) *StateCache {
	config = config.withDefaults()

	c := &StateCache{
		config:    config,
		entries:   make(map[string]*stateCacheEntry),
		lruList:   newLRUList(),
		closeChan: make(chan struct{}),
		stats: Stats{
			Capacity: int64(config.Capacity),
		},
	}

	c.sweepWG.Add(1)
	go c.sweepRoutine()

	return c
}

// Add inserts or replaces the entry keyed by st.ID. When the insert would
// exceed capacity, exactly one entry is evicted first: the one with the
// least recent access. Add never fails; the cache takes ownership of a
// copy of st, so the caller's reference stays valid but inert.
func (c *StateCache) Add(st *state.ParallelState) {
	if st == nil {
		return
	}
	owned := st.Clone()
	owned.Touch()

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, exists := c.entries[owned.ID]; exists {
		existing.state = owned
		c.lruList.moveToFront(existing.element)
	} else {
		if c.lruList.size >= c.config.Capacity {
			c.evictLRU()
		}
		element := c.lruList.pushFront(owned.ID)
		c.entries[owned.ID] = &stateCacheEntry{
			state:   owned,
			element: element,
		}
	}

	atomic.AddInt64(&c.stats.Adds, 1)
	c.stats.Size = int64(c.lruList.size)
	c.stats.LastAccess = time.Now() // Safe: protected by c.mu
}

// Get retrieves a state by id. A miss is a normal condition, not an
// error: decay or eviction racing with a lookup is expected. A hit
// refreshes the entry's LRU position and last-accessed time and returns
// a copy the caller may keep.
func (c *StateCache) Get(id string) (*state.ParallelState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[id]
	if !exists {
		atomic.AddInt64(&c.stats.Misses, 1)
		return nil, false
	}

	entry.state.Touch()
	c.lruList.moveToFront(entry.element)

	atomic.AddInt64(&c.stats.Hits, 1)
	c.stats.LastAccess = time.Now() // Safe: protected by c.mu

	return entry.state.Clone(), true
}

// Len returns the current entry count.
func (c *StateCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lruList.size
}

// DecaySweep multiplies every entry's coherence by factor and removes
// entries whose resulting coherence is at or below threshold. This is the
// cache's only source of proactive, non-LRU eviction.
func (c *StateCache) DecaySweep(factor, threshold float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var evicted []string
	for id, entry := range c.entries {
		decayed := entry.state.Vector.Coherence() * factor
		entry.state.Vector = entry.state.Vector.WithCoherence(decayed)
		if decayed <= threshold {
			evicted = append(evicted, id)
		}
	}

	for _, id := range evicted {
		if entry, exists := c.entries[id]; exists {
			delete(c.entries, id)
			c.lruList.removeElement(entry.element)
			atomic.AddInt64(&c.stats.DecayEvictions, 1)
		}
	}
	c.stats.Size = int64(c.lruList.size)
}

// Clear removes all entries and resets counters.
func (c *StateCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*stateCacheEntry)
	c.lruList = newLRUList()

	atomic.StoreInt64(&c.stats.Hits, 0)
	atomic.StoreInt64(&c.stats.Misses, 0)
	atomic.StoreInt64(&c.stats.Adds, 0)
	atomic.StoreInt64(&c.stats.Evictions, 0)
	atomic.StoreInt64(&c.stats.DecayEvictions, 0)
	c.stats.Size = 0
}

// Stats returns a snapshot of the cache counters.
func (c *StateCache) Stats() Stats {
	c.mu.Lock()
	size := c.stats.Size
	lastAccess := c.stats.LastAccess
	c.mu.Unlock()

	return Stats{
		Hits:           atomic.LoadInt64(&c.stats.Hits),
		Misses:         atomic.LoadInt64(&c.stats.Misses),
		Adds:           atomic.LoadInt64(&c.stats.Adds),
		Evictions:      atomic.LoadInt64(&c.stats.Evictions),
		DecayEvictions: atomic.LoadInt64(&c.stats.DecayEvictions),
		Size:           size,
		Capacity:       int64(c.config.Capacity),
		LastAccess:     lastAccess,
	}
}

// Close stops the background sweeper and waits for it to drain. The
// cache remains usable for direct calls afterwards.
func (c *StateCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.closeChan)
	})
	c.sweepWG.Wait()
	return nil
}

// evictLRU removes the single least-recently-used entry. Caller holds c.mu.
func (c *StateCache) evictLRU() {
	elem := c.lruList.back()
	if elem == nil {
		return
	}
	if entry, exists := c.entries[elem.id]; exists {
		delete(c.entries, elem.id)
		c.lruList.removeElement(entry.element)
		atomic.AddInt64(&c.stats.Evictions, 1)
		logging.GetLogger().Debug(context.Background(), "evicted LRU state %s", elem.id)
	}
}

func (c *StateCache) sweepRoutine() {
	defer c.sweepWG.Done()

	factor := DecayFactor(c.config.SweepInterval)
	ticker := time.NewTicker(c.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.closeChan:
			return
		case <-ticker.C:
			c.DecaySweep(factor, c.config.DecayFloor)
		}
	}
}
