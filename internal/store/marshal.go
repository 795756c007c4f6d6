package store

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/roach88/srcid/internal/ir"
)

// marshalLinks converts a source's references to canonical JSON TEXT.
// The kind column tells which direction the ids point.
func marshalLinks(src ir.Source) (string, error) {
	refs := src.Referenced()
	if refs == nil {
		refs = []string{}
	}
	data, err := ir.MarshalCanonical(refs)
	if err != nil {
		return "", fmt.Errorf("marshal links: %w", err)
	}
	return string(data), nil
}

// unmarshalLinks rebuilds the kind-specific links from stored TEXT.
func unmarshalLinks(kind ir.Kind, data string) (ir.Links, error) {
	var ids []string
	if data != "" {
		if err := json.Unmarshal([]byte(data), &ids); err != nil {
			return nil, fmt.Errorf("unmarshal links: %w", err)
		}
	}

	if kind == ir.KindPrettyPrinted {
		if len(ids) != 1 {
			return nil, fmt.Errorf("unmarshal links: pretty-printed source has %d base ids", len(ids))
		}
		return ir.PrettyPrintBase{ID: ids[0]}, nil
	}
	if ids == nil {
		ids = []string{}
	}
	return ir.Produced{IDs: ids}, nil
}

// marshalResolved converts resolved output to canonical JSON TEXT.
func marshalResolved(resolved []ir.ResolvedSource) (string, error) {
	list := make([]any, len(resolved))
	for i, r := range resolved {
		list[i] = r.CanonicalMap()
	}
	data, err := ir.MarshalCanonical(list)
	if err != nil {
		return "", fmt.Errorf("marshal resolution: %w", err)
	}
	return string(data), nil
}

// unmarshalResolved parses stored resolution TEXT.
func unmarshalResolved(data string) ([]ir.ResolvedSource, error) {
	var resolved []ir.ResolvedSource
	if err := json.Unmarshal([]byte(data), &resolved); err != nil {
		return nil, fmt.Errorf("unmarshal resolution: %w", err)
	}
	if resolved == nil {
		resolved = []ir.ResolvedSource{}
	}
	return resolved, nil
}
