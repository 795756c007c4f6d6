package testutil

// FixedSessionGenerator generates the same session id every time.
//
// Unlike session.FixedGenerator which returns ids in sequence, this
// generator never runs out, so golden snapshots of the same scenario are
// byte-identical no matter how many sessions a test opens.
//
// Thread-safety: FixedSessionGenerator is stateless and safe for concurrent use.
type FixedSessionGenerator struct {
	id string
}

// NewFixedSessionGenerator creates a new fixed session id generator.
//
// The id is typically set in the scenario YAML:
//
//	session_id: "test-session-00000000-0000-0000-0000-000000000001"
//
// If id is empty, Generate() returns "test-session-default".
func NewFixedSessionGenerator(id string) *FixedSessionGenerator {
	if id == "" {
		id = "test-session-default"
	}
	return &FixedSessionGenerator{id: id}
}

// Generate returns the fixed session id.
//
// Implements session.IDGenerator.
func (g *FixedSessionGenerator) Generate() string {
	return g.id
}
