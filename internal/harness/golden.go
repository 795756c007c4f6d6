package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/srcid/internal/ir"
)

// Snapshot captures what a scenario execution produced.
// All fields use canonical JSON serialization for deterministic comparison.
type Snapshot struct {
	ScenarioName string              `json:"scenario_name"`
	SessionID    string              `json:"session_id"`
	Trace        []TraceEvent        `json:"trace"`
	Resolution   []ir.ResolvedSource `json:"resolution"`
	ErrorCode    string              `json:"error_code,omitempty"`
}

// NewSnapshot builds the snapshot of a scenario run.
func NewSnapshot(scenario *Scenario, result *Result) Snapshot {
	return Snapshot{
		ScenarioName: scenario.Name,
		SessionID:    sessionID(scenario),
		Trace:        result.Trace,
		Resolution:   result.Resolved,
		ErrorCode:    result.ErrorCode,
	}
}

func sessionID(scenario *Scenario) string {
	if scenario.SessionID == "" {
		return "test-session-default"
	}
	return scenario.SessionID
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON serialization.
// This is required because ir.MarshalCanonical only handles IR types and primitives.
func (s Snapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		traceList[i] = map[string]any{
			"seq":       event.Seq,
			"source_id": event.SourceID,
			"kind":      string(event.Kind),
		}
	}

	resolution := make([]any, len(s.Resolution))
	for i, r := range s.Resolution {
		resolution[i] = r.CanonicalMap()
	}

	result := map[string]any{
		"scenario_name": s.ScenarioName,
		"session_id":    s.SessionID,
		"trace":         traceList,
		"resolution":    resolution,
	}
	if s.ErrorCode != "" {
		result["error_code"] = s.ErrorCode
	}
	return result
}

// Marshal returns the canonical JSON bytes stored in golden files.
func (s Snapshot) Marshal() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can check Pass and Errors as well.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against the scenario's golden
// file without re-running it.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	data, err := NewSnapshot(scenario, result).Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}
