package ir

// Version constants for the data model and engine.
const (
	// IRVersion is the resolved-source schema version.
	IRVersion = "1"

	// EngineVersion is the srcid engine version.
	EngineVersion = "0.1.0"
)
