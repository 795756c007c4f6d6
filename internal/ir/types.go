package ir

import "slices"

// Announcement is a raw source record as delivered by the transport.
//
// The meaning of GeneratedSourceIDs depends on Kind: for every kind except
// prettyPrinted it lists records this one produced, for prettyPrinted it
// holds the single record this one is a reformatted copy of. Convert with
// FromAnnouncement before doing anything else with it.
type Announcement struct {
	SourceID           string   `json:"sourceId" yaml:"sourceId"`
	Kind               Kind     `json:"kind" yaml:"kind"`
	URL                string   `json:"url,omitempty" yaml:"url,omitempty"`
	GeneratedSourceIDs []string `json:"generatedSourceIds,omitempty" yaml:"generatedSourceIds,omitempty"`
	ContentHash        string   `json:"contentHash,omitempty" yaml:"contentHash,omitempty"`
}

// Links is the kind-specific relationship payload of a Source.
// Only Produced and PrettyPrintBase implement it.
type Links interface {
	links() // Sealed
}

// Produced lists the records a source produced downstream, in declaration order.
type Produced struct {
	IDs []string
}

func (Produced) links() {}

// PrettyPrintBase names the record a pretty-printed source was reformatted from.
type PrettyPrintBase struct {
	ID string
}

func (PrettyPrintBase) links() {}

// Source is a validated, immutable source record.
type Source struct {
	ID          string
	Kind        Kind
	URL         string // Empty for dynamically evaluated code
	ContentHash string // Always empty for prettyPrinted
	Links       Links
}

// NewSource creates a non-pretty-printed source that produced the given ids.
func NewSource(id string, kind Kind, url, contentHash string, produced ...string) Source {
	return Source{
		ID:          id,
		Kind:        kind,
		URL:         url,
		ContentHash: contentHash,
		Links:       Produced{IDs: slices.Clone(produced)},
	}
}

// NewPrettyPrinted creates a pretty-printed copy of baseID.
func NewPrettyPrinted(id, url, baseID string) Source {
	return Source{
		ID:    id,
		Kind:  KindPrettyPrinted,
		URL:   url,
		Links: PrettyPrintBase{ID: baseID},
	}
}

// FromAnnouncement validates a raw announcement and converts it into a Source.
//
// A prettyPrinted announcement must carry exactly one generated source id;
// anything else is a MalformedError.
func FromAnnouncement(a Announcement) (Source, error) {
	if a.SourceID == "" {
		return Source{}, &MalformedError{Reason: "source id is empty"}
	}
	if !a.Kind.Valid() {
		return Source{}, &MalformedError{SourceID: a.SourceID, Reason: "unknown kind " + string(a.Kind)}
	}

	var src Source
	if a.Kind == KindPrettyPrinted {
		if len(a.GeneratedSourceIDs) != 1 {
			return Source{}, &MalformedError{
				SourceID: a.SourceID,
				Reason:   "pretty-printed source must reference exactly one base source",
			}
		}
		src = NewPrettyPrinted(a.SourceID, a.URL, a.GeneratedSourceIDs[0])
	} else {
		src = NewSource(a.SourceID, a.Kind, a.URL, a.ContentHash, a.GeneratedSourceIDs...)
	}

	if err := src.Validate(); err != nil {
		return Source{}, err
	}
	return src, nil
}

// Validate checks the shape invariants of a single source.
// Cross-record checks (unknown references, duplicates) belong to the engine.
func (s Source) Validate() error {
	if s.ID == "" {
		return &MalformedError{Reason: "source id is empty"}
	}
	if !s.Kind.Valid() {
		return &MalformedError{SourceID: s.ID, Reason: "unknown kind " + string(s.Kind)}
	}

	switch l := s.Links.(type) {
	case PrettyPrintBase:
		if s.Kind != KindPrettyPrinted {
			return &MalformedError{SourceID: s.ID, Reason: "only pretty-printed sources may name a base source"}
		}
		if l.ID == "" {
			return &MalformedError{SourceID: s.ID, Reason: "pretty-printed base source id is empty"}
		}
		if l.ID == s.ID {
			return &MalformedError{SourceID: s.ID, Reason: "source cannot be a pretty-printed copy of itself"}
		}
		if s.ContentHash != "" {
			return &MalformedError{SourceID: s.ID, Reason: "pretty-printed source cannot carry a content hash"}
		}
	case Produced, nil:
		if s.Kind == KindPrettyPrinted {
			return &MalformedError{
				SourceID: s.ID,
				Reason:   "pretty-printed source must reference exactly one base source",
			}
		}
		for _, id := range s.ProducedIDs() {
			if id == "" {
				return &MalformedError{SourceID: s.ID, Reason: "generated source id is empty"}
			}
		}
	}
	return nil
}

// ProducedIDs returns the ids this source produced. Empty for prettyPrinted.
func (s Source) ProducedIDs() []string {
	if p, ok := s.Links.(Produced); ok {
		return p.IDs
	}
	return nil
}

// BaseID returns the id a pretty-printed source was reformatted from.
func (s Source) BaseID() (string, bool) {
	if b, ok := s.Links.(PrettyPrintBase); ok {
		return b.ID, true
	}
	return "", false
}

// Referenced returns every id this source names, regardless of direction.
func (s Source) Referenced() []string {
	if base, ok := s.BaseID(); ok {
		return []string{base}
	}
	return s.ProducedIDs()
}

// Announcement converts the source back into its protocol form.
func (s Source) Announcement() Announcement {
	a := Announcement{
		SourceID:    s.ID,
		Kind:        s.Kind,
		URL:         s.URL,
		ContentHash: s.ContentHash,
	}
	if refs := s.Referenced(); len(refs) > 0 {
		a.GeneratedSourceIDs = slices.Clone(refs)
	}
	return a
}

// Equal reports whether two sources carry identical content.
func (s Source) Equal(o Source) bool {
	if s.ID != o.ID || s.Kind != o.Kind || s.URL != o.URL || s.ContentHash != o.ContentHash {
		return false
	}
	sb, sok := s.BaseID()
	ob, ook := o.BaseID()
	if sok != ook || sb != ob {
		return false
	}
	return slices.Equal(s.ProducedIDs(), o.ProducedIDs())
}

// ResolvedSource is the fully resolved description of one source.
type ResolvedSource struct {
	ID                     string   `json:"id"`
	Kind                   Kind     `json:"kind"`
	URL                    string   `json:"url,omitempty"`
	ContentHash            string   `json:"content_hash,omitempty"`
	CanonicalID            string   `json:"canonical_id"`
	Generated              []string `json:"generated"`
	GeneratedFrom          []string `json:"generated_from"`
	PrettyPrinted          string   `json:"pretty_printed,omitempty"`
	PrettyPrintedFrom      string   `json:"pretty_printed_from,omitempty"`
	CorrespondingSourceIDs []string `json:"corresponding_source_ids"`
}

// IsCanonical reports whether the source is its own canonical representation.
func (r ResolvedSource) IsCanonical() bool {
	return r.CanonicalID == r.ID
}

// CorrespondenceKey groups sources holding identical content.
// Returns false unless both url and content hash are present.
func CorrespondenceKey(url, contentHash string) (string, bool) {
	if url == "" || contentHash == "" {
		return "", false
	}
	return url + ":" + contentHash, true
}
