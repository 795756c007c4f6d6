package engine

import (
	"fmt"
	"slices"

	"github.com/goccy/go-json"

	"github.com/roach88/srcid/internal/ir"
)

// Resolution is the immutable result of one Resolve call: a mapping from
// source id to its resolved description. Lookup methods never return
// internal slices, so callers may modify what they get.
type Resolution struct {
	order []string
	byID  map[string]ir.ResolvedSource
}

// NewResolution wraps already resolved descriptions, keeping their order.
// Used when restoring a cached resolution from the store.
func NewResolution(resolved []ir.ResolvedSource) *Resolution {
	r := &Resolution{
		order: make([]string, 0, len(resolved)),
		byID:  make(map[string]ir.ResolvedSource, len(resolved)),
	}
	for _, d := range resolved {
		if _, seen := r.byID[d.ID]; !seen {
			r.order = append(r.order, d.ID)
		}
		d.Generated = nonNil(d.Generated)
		d.GeneratedFrom = nonNil(d.GeneratedFrom)
		d.CorrespondingSourceIDs = nonNil(d.CorrespondingSourceIDs)
		r.byID[d.ID] = d
	}
	return r
}

// Len returns the number of resolved sources.
func (r *Resolution) Len() int {
	return len(r.order)
}

// IDs returns all source ids in batch order.
func (r *Resolution) IDs() []string {
	return slices.Clone(r.order)
}

// Get returns the description of id.
func (r *Resolution) Get(id string) (ir.ResolvedSource, bool) {
	d, ok := r.byID[id]
	if !ok {
		return ir.ResolvedSource{}, false
	}
	return cloneResolved(d), true
}

// MustGet is like Get but panics for unknown ids.
// Use only in tests.
func (r *Resolution) MustGet(id string) ir.ResolvedSource {
	d, ok := r.Get(id)
	if !ok {
		panic(fmt.Sprintf("resolution: unknown source %q", id))
	}
	return d
}

// All returns every description in batch order.
func (r *Resolution) All() []ir.ResolvedSource {
	out := make([]ir.ResolvedSource, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, cloneResolved(r.byID[id]))
	}
	return out
}

// CanonicalID returns the canonical id of id.
func (r *Resolution) CanonicalID(id string) (string, bool) {
	d, ok := r.byID[id]
	if !ok {
		return "", false
	}
	return d.CanonicalID, true
}

// Alternates lists the other representations of id a user may switch to.
//
// Order: pretty-printed twin, pretty-print base, producers, products,
// corresponding sources, then the canonical id when it differs from id.
// Duplicates and id itself are dropped.
func (r *Resolution) Alternates(id string) []string {
	d, ok := r.byID[id]
	if !ok {
		return []string{}
	}

	var candidates []string
	if d.PrettyPrinted != "" {
		candidates = append(candidates, d.PrettyPrinted)
	}
	if d.PrettyPrintedFrom != "" {
		candidates = append(candidates, d.PrettyPrintedFrom)
	}
	candidates = append(candidates, d.GeneratedFrom...)
	candidates = append(candidates, d.Generated...)
	candidates = append(candidates, d.CorrespondingSourceIDs...)
	candidates = append(candidates, d.CanonicalID)

	out := []string{}
	for _, c := range candidates {
		if c == id || slices.Contains(out, c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Group returns every id whose canonical id is canonicalID, in batch order.
func (r *Resolution) Group(canonicalID string) []string {
	out := []string{}
	for _, id := range r.order {
		if r.byID[id].CanonicalID == canonicalID {
			out = append(out, id)
		}
	}
	return out
}

// Canonicals returns the ids that are their own canonical id, in batch order.
func (r *Resolution) Canonicals() []string {
	out := []string{}
	for _, id := range r.order {
		if r.byID[id].IsCanonical() {
			out = append(out, id)
		}
	}
	return out
}

// Hash returns the content-addressed identity of the resolution.
func (r *Resolution) Hash() (string, error) {
	return ir.ResolutionHash(r.All())
}

// MarshalJSON encodes the resolution as an object keyed by source id.
func (r *Resolution) MarshalJSON() ([]byte, error) {
	m := make(map[string]ir.ResolvedSource, len(r.byID))
	for id, d := range r.byID {
		m[id] = d
	}
	return json.Marshal(m)
}

func cloneResolved(d ir.ResolvedSource) ir.ResolvedSource {
	d.Generated = slices.Clone(d.Generated)
	d.GeneratedFrom = slices.Clone(d.GeneratedFrom)
	d.CorrespondingSourceIDs = slices.Clone(d.CorrespondingSourceIDs)
	return d
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
