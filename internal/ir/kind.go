package ir

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Kind identifies the transformation stage that announced a source.
// The set is closed; unknown kinds are rejected when decoding.
type Kind string

const (
	// KindScriptSource is a script as the browser actually ran it.
	KindScriptSource Kind = "scriptSource"

	// KindHTML is an HTML document.
	KindHTML Kind = "html"

	// KindInlineScript is a script extracted from an HTML document.
	KindInlineScript Kind = "inlineScript"

	// KindSourceMapped is an authored original recovered through a source map.
	KindSourceMapped Kind = "sourceMapped"

	// KindOther is any source without a more specific stage.
	KindOther Kind = "other"

	// KindPrettyPrinted is an on-demand reformatted copy of another source.
	KindPrettyPrinted Kind = "prettyPrinted"
)

// ResolutionOrder is the order in which kinds are processed during edge
// construction. Later kinds look up edges built by earlier ones, so this
// order must never change.
var ResolutionOrder = []Kind{
	KindScriptSource,
	KindHTML,
	KindInlineScript,
	KindSourceMapped,
	KindOther,
	KindPrettyPrinted,
}

// ParseKind converts a protocol kind string into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown source kind %q", s)
	}
	return k, nil
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindScriptSource, KindHTML, KindInlineScript, KindSourceMapped, KindOther, KindPrettyPrinted:
		return true
	}
	return false
}

func (k Kind) String() string {
	return string(k)
}

// UnmarshalJSON implements json.Unmarshaler and rejects unknown kinds.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("kind: %w", err)
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler and rejects unknown kinds.
func (k *Kind) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("kind: %w", err)
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*k = parsed
	return nil
}
