package ir

import "fmt"

// ErrCodeMalformedRecord is shared with the engine's error taxonomy.
const ErrCodeMalformedRecord = "MALFORMED_RECORD"

// MalformedError reports a record that violates its kind's shape invariant.
// It is raised at the conversion boundary, before any resolution starts.
type MalformedError struct {
	SourceID string
	Reason   string
}

func (e *MalformedError) Error() string {
	if e.SourceID != "" {
		return fmt.Sprintf("%s: %s (source=%s)", ErrCodeMalformedRecord, e.Reason, e.SourceID)
	}
	return fmt.Sprintf("%s: %s", ErrCodeMalformedRecord, e.Reason)
}
