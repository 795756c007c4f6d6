package store

import (
	"fmt"
	"slices"
	"sync"

	"github.com/roach88/srcid/internal/ir"
)

// Memory is the in-process Source Record Store: an append-only mapping from
// source id to the record as received, remembering insertion order.
//
// Thread-safety: all methods are safe for concurrent use. Readers get
// copies and never observe a partially appended record.
type Memory struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]ir.Source
}

// NewMemory creates an empty store.
func NewMemory() *Memory {
	return &Memory{byID: make(map[string]ir.Source)}
}

// Append stores src. Appending identical content again is a no-op and
// reports false; different content under a known id is ErrConflictingSource.
func (m *Memory) Append(src ir.Source) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.byID[src.ID]; ok {
		if existing.Equal(src) {
			return false, nil
		}
		return false, fmt.Errorf("append %q: %w", src.ID, ErrConflictingSource)
	}

	m.byID[src.ID] = cloneSource(src)
	m.order = append(m.order, src.ID)
	return true, nil
}

// Get returns the record stored under id.
func (m *Memory) Get(id string) (ir.Source, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	src, ok := m.byID[id]
	if !ok {
		return ir.Source{}, false
	}
	return cloneSource(src), true
}

// Len returns the number of stored records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}

// Snapshot returns every record in insertion order.
// The result is an independent batch ready for resolution.
func (m *Memory) Snapshot() []ir.Source {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ir.Source, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, cloneSource(m.byID[id]))
	}
	return out
}

// cloneSource copies the produced-id slice so stored records never alias
// caller memory.
func cloneSource(src ir.Source) ir.Source {
	if p, ok := src.Links.(ir.Produced); ok {
		src.Links = ir.Produced{IDs: slices.Clone(p.IDs)}
	}
	return src
}
