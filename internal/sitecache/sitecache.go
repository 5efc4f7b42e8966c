// Package sitecache memoizes whether an intron's splice sites are
// canonical.
//
// A cache belongs to one gene region. The first value stored for an intron
// is authoritative: later stores never replace it, they return it.
package sitecache

import (
	"sync"

	"github.com/aria-lang/isoannot-go/internal/interval"
)

// Cache maps introns to their canonical-site verdict.
type Cache interface {
	// Lookup returns the cached verdict and whether one exists.
	Lookup(intron interval.Interval) (canonical, ok bool)
	// Store records canonical unless a verdict exists, and returns the
	// verdict now held by the cache.
	Store(intron interval.Interval, canonical bool) bool
}

// Memory is an in-process Cache safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	sites map[interval.Interval]bool
}

// NewMemory creates an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{sites: make(map[interval.Interval]bool)}
}

func (m *Memory) Lookup(intron interval.Interval) (bool, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.sites[intron]
	return v, ok
}

func (m *Memory) Store(intron interval.Interval, canonical bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.sites[intron]; ok {
		return v
	}
	m.sites[intron] = canonical
	return canonical
}

// Len returns the number of cached introns.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sites)
}
