package engine

import (
	"github.com/roach88/srcid/internal/graph"
	"github.com/roach88/srcid/internal/ir"
)

// relationships holds the three graphs built during edge construction.
// A fresh value is created for every run and never escapes it.
type relationships struct {
	generated     *graph.Graph // producer -> produced
	prettyPrinted *graph.Graph // base -> pretty-printed copy
	canonical     *graph.Graph // source -> preferred representation
}

func newRelationships() *relationships {
	return &relationships{
		generated:     graph.New("generated"),
		prettyPrinted: graph.New("prettyPrinted"),
		canonical:     graph.New("canonical"),
	}
}

// add applies the edge rules for one source. Sources must be added in
// ir.ResolutionOrder; inline scripts look up the html edges built before them.
func (r *relationships) add(src ir.Source) {
	r.generated.AddNode(src.ID)
	r.prettyPrinted.AddNode(src.ID)
	r.canonical.AddNode(src.ID)

	switch src.Kind {
	case ir.KindScriptSource, ir.KindHTML, ir.KindOther:
		r.addProduced(src)

	case ir.KindInlineScript:
		r.addProduced(src)
		// An inline script is canonically its owning document.
		if owner, ok := r.generated.FirstIncoming(src.ID); ok {
			r.canonical.Connect(src.ID, owner)
		}

	case ir.KindSourceMapped:
		for _, id := range src.ProducedIDs() {
			r.generated.Connect(src.ID, id)
			r.canonical.Connect(id, src.ID)
		}

	case ir.KindPrettyPrinted:
		base, _ := src.BaseID()
		r.prettyPrinted.Connect(base, src.ID)
		r.canonical.Connect(src.ID, base)
	}
}

func (r *relationships) addProduced(src ir.Source) {
	for _, id := range src.ProducedIDs() {
		r.generated.Connect(src.ID, id)
	}
}

// canonicalOf follows the canonical graph from id to its fixed point.
//
// Each step takes the first outgoing edge. The walk stops on a node without
// outgoing edges or with a self edge. Exceeding budget steps means the
// input contains a cycle.
func (r *relationships) canonicalOf(id string, budget int) (string, error) {
	current := id
	path := []string{id}
	for step := 0; step < budget; step++ {
		next, ok := r.canonical.First(current)
		if !ok || next == current {
			return current, nil
		}
		current = next
		path = append(path, current)
	}
	return "", NewCyclicRelationshipError(id, path, budget)
}

// describe assembles the resolved description of src.
func (r *relationships) describe(src ir.Source, canonicalID string) ir.ResolvedSource {
	out := ir.ResolvedSource{
		ID:                     src.ID,
		Kind:                   src.Kind,
		URL:                    src.URL,
		ContentHash:            src.ContentHash,
		CanonicalID:            canonicalID,
		Generated:              r.generated.Outgoing(src.ID),
		GeneratedFrom:          r.generated.Incoming(src.ID),
		CorrespondingSourceIDs: []string{},
	}
	if id, ok := r.prettyPrinted.First(src.ID); ok {
		out.PrettyPrinted = id
	}
	if id, ok := r.prettyPrinted.FirstIncoming(src.ID); ok {
		out.PrettyPrintedFrom = id
	}
	return out
}

// groupByKind splits a batch into per-kind lists in ir.ResolutionOrder,
// preserving batch order inside each kind.
func groupByKind(sources []ir.Source) [][]ir.Source {
	byKind := make(map[ir.Kind][]ir.Source, len(ir.ResolutionOrder))
	for _, src := range sources {
		byKind[src.Kind] = append(byKind[src.Kind], src)
	}
	groups := make([][]ir.Source, 0, len(ir.ResolutionOrder))
	for _, kind := range ir.ResolutionOrder {
		groups = append(groups, byKind[kind])
	}
	return groups
}

// correspondences maps each source to the other sources with identical
// url and content hash, in batch order.
func correspondences(sources []ir.Source) map[string][]string {
	byKey := make(map[string][]string)
	for _, src := range sources {
		if key, ok := ir.CorrespondenceKey(src.URL, src.ContentHash); ok {
			byKey[key] = append(byKey[key], src.ID)
		}
	}

	out := make(map[string][]string)
	for _, src := range sources {
		key, ok := ir.CorrespondenceKey(src.URL, src.ContentHash)
		if !ok {
			continue
		}
		for _, id := range byKey[key] {
			if id != src.ID {
				out[src.ID] = append(out[src.ID], id)
			}
		}
	}
	return out
}
