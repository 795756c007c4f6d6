package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/srcid/internal/engine"
	"github.com/roach88/srcid/internal/ir"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// SessionID is an optional fixed session id for deterministic tests.
	// If empty, defaults to "test-session-default".
	SessionID string `yaml:"session_id,omitempty"`

	// Sources is the announcement batch, in arrival order.
	Sources []ir.Announcement `yaml:"sources"`

	// Expect maps source ids to expected fields (subset match).
	Expect map[string]ExpectSource `yaml:"expect,omitempty"`

	// ExpectError is the error code resolution must fail with.
	ExpectError string `yaml:"expect_error,omitempty"`

	// Assertions validate relationships across sources.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// ExpectSource lists the fields to check on one resolved source.
// Nil fields are not checked; an explicit empty list must match exactly.
type ExpectSource struct {
	Kind                   *string   `yaml:"kind,omitempty"`
	URL                    *string   `yaml:"url,omitempty"`
	ContentHash            *string   `yaml:"content_hash,omitempty"`
	CanonicalID            *string   `yaml:"canonical_id,omitempty"`
	Generated              *[]string `yaml:"generated,omitempty"`
	GeneratedFrom          *[]string `yaml:"generated_from,omitempty"`
	PrettyPrinted          *string   `yaml:"pretty_printed,omitempty"`
	PrettyPrintedFrom      *string   `yaml:"pretty_printed_from,omitempty"`
	CorrespondingSourceIDs *[]string `yaml:"corresponding_source_ids,omitempty"`
}

// Assertion validates relationships across the resolution.
type Assertion struct {
	// Type specifies the assertion type:
	// - "canonical_group": Group(Canonical) equals IDs
	// - "alternates": Alternates(ID) equals IDs
	// - "canonicals": Canonicals() equals IDs
	Type string `yaml:"type"`

	// Canonical is the canonical id (used by canonical_group).
	Canonical string `yaml:"canonical,omitempty"`

	// ID is the source id (used by alternates).
	ID string `yaml:"id,omitempty"`

	// IDs is the expected ordered id list.
	IDs []string `yaml:"ids"`
}

// Assertion type constants.
const (
	AssertCanonicalGroup = "canonical_group"
	AssertAlternates     = "alternates"
	AssertCanonicals     = "canonicals"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "expects:" vs "expect:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Expect) == 0 && s.ExpectError == "" && len(s.Assertions) == 0 {
		return fmt.Errorf("at least one of expect, expect_error or assertions is required")
	}

	if s.ExpectError != "" {
		switch engine.ResolutionErrorCode(s.ExpectError) {
		case engine.ErrCodeMalformedRecord, engine.ErrCodeCyclicRelationship:
		default:
			return fmt.Errorf("expect_error: unknown error code %q", s.ExpectError)
		}
		if len(s.Expect) > 0 || len(s.Assertions) > 0 {
			return fmt.Errorf("expect_error cannot be combined with expect or assertions")
		}
	}

	ids := make(map[string]bool, len(s.Sources))
	for i, a := range s.Sources {
		if a.SourceID == "" {
			return fmt.Errorf("sources[%d]: sourceId is required", i)
		}
		ids[a.SourceID] = true
	}
	for id := range s.Expect {
		if !ids[id] {
			return fmt.Errorf("expect: %q is not in sources", id)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertCanonicalGroup:
		if a.Canonical == "" {
			return fmt.Errorf("assertions[%d]: canonical is required for canonical_group", index)
		}
	case AssertAlternates:
		if a.ID == "" {
			return fmt.Errorf("assertions[%d]: id is required for alternates", index)
		}
	case AssertCanonicals:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	if a.IDs == nil {
		return fmt.Errorf("assertions[%d]: ids is required (use [] for none)", index)
	}
	return nil
}
