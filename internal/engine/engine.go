package engine

import (
	"fmt"
	"log/slog"

	"github.com/roach88/srcid/internal/graph"
	"github.com/roach88/srcid/internal/ir"
)

// Engine resolves batches of source records.
//
// An Engine holds configuration only. Every Resolve call builds its own
// relationship graphs, so one Engine may serve many sessions concurrently.
type Engine struct {
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for pass diagnostics.
// Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = New()

// Resolve resolves a batch with the default engine.
func Resolve(sources []ir.Source) (*Resolution, error) {
	return defaultEngine.Resolve(sources)
}

// ResolveAnnouncements converts raw announcements and resolves them.
// A single malformed announcement aborts the whole batch.
func (e *Engine) ResolveAnnouncements(anns []ir.Announcement) (*Resolution, error) {
	sources, err := Convert(anns)
	if err != nil {
		return nil, err
	}
	return e.Resolve(sources)
}

// Convert turns raw announcements into sources, stopping at the first
// malformed one.
func Convert(anns []ir.Announcement) ([]ir.Source, error) {
	sources := make([]ir.Source, 0, len(anns))
	for i, a := range anns {
		src, err := ir.FromAnnouncement(a)
		if err != nil {
			return nil, fmt.Errorf("announcement %d: %w", i, fromMalformed(err))
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// Resolve runs both passes over a complete batch.
//
// The input slice is not modified. On error no partial result is returned.
func (e *Engine) Resolve(sources []ir.Source) (*Resolution, error) {
	if err := Validate(sources); err != nil {
		return nil, err
	}

	// Pass 1: edge construction in kind order.
	rel := newRelationships()
	for i, group := range groupByKind(sources) {
		for _, src := range group {
			rel.add(src)
		}
		if len(group) > 0 {
			e.logger.Debug("edges built",
				"kind", ir.ResolutionOrder[i],
				"sources", len(group),
			)
		}
	}
	for _, g := range []*graph.Graph{rel.generated, rel.prettyPrinted, rel.canonical} {
		e.logger.Debug("edge construction complete",
			"graph", g.Name(),
			"nodes", len(g.Nodes()),
			"edges", g.EdgeCount(),
		)
	}

	// Pass 2: canonical walk and assembly, in batch order.
	budget := len(sources) + 1
	corresponding := correspondences(sources)
	resolved := make([]ir.ResolvedSource, 0, len(sources))
	for _, src := range sources {
		canonicalID, err := rel.canonicalOf(src.ID, budget)
		if err != nil {
			return nil, err
		}
		desc := rel.describe(src, canonicalID)
		if ids := corresponding[src.ID]; len(ids) > 0 {
			desc.CorrespondingSourceIDs = ids
		}
		resolved = append(resolved, desc)
	}

	e.logger.Debug("resolution complete", "sources", len(resolved))
	return NewResolution(resolved), nil
}

// Validate checks a batch without resolving it.
//
// Every source must satisfy its own shape invariant, ids must be unique,
// and every referenced id must belong to the batch.
func Validate(sources []ir.Source) error {
	known := make(map[string]struct{}, len(sources))
	for _, src := range sources {
		if err := src.Validate(); err != nil {
			return fromMalformed(err)
		}
		if _, dup := known[src.ID]; dup {
			return NewMalformedRecordError(src.ID, "duplicate source id")
		}
		known[src.ID] = struct{}{}
	}

	for _, src := range sources {
		for _, ref := range src.Referenced() {
			if _, ok := known[ref]; !ok {
				return &ResolutionError{
					Code:     ErrCodeMalformedRecord,
					Message:  fmt.Sprintf("references unknown source %q", ref),
					SourceID: src.ID,
					Details:  map[string]string{"reference": ref},
				}
			}
		}
	}
	return nil
}
