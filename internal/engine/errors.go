package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/srcid/internal/ir"
)

// ResolutionError represents an error detected while resolving a batch.
//
// Resolution errors include:
//   - Malformed record: a record violates its kind's shape invariant, is
//     duplicated, or references an id that is not in the batch
//   - Cyclic relationship: the canonical walk did not reach a fixed point
//     within the step budget
type ResolutionError struct {
	// Code identifies the error category.
	Code ResolutionErrorCode

	// Message is a human-readable description.
	Message string

	// SourceID identifies the offending record.
	SourceID string

	// Details contains additional context.
	Details map[string]string
}

// ResolutionErrorCode categorizes resolution errors.
type ResolutionErrorCode string

const (
	// ErrCodeMalformedRecord indicates a record that breaks its shape invariant.
	ErrCodeMalformedRecord ResolutionErrorCode = ir.ErrCodeMalformedRecord

	// ErrCodeCyclicRelationship indicates a canonical walk that never terminates.
	ErrCodeCyclicRelationship ResolutionErrorCode = "CYCLIC_RELATIONSHIP"
)

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	if e.SourceID != "" {
		return fmt.Sprintf("%s: %s (source=%s)", e.Code, e.Message, e.SourceID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsMalformedRecord returns true if the error is a malformed record error.
// Matches both ResolutionError and ir.MalformedError raised at conversion.
// Uses errors.As to handle wrapped errors.
func IsMalformedRecord(err error) bool {
	var re *ResolutionError
	if errors.As(err, &re) {
		return re.Code == ErrCodeMalformedRecord
	}
	var me *ir.MalformedError
	return errors.As(err, &me)
}

// IsCyclicRelationship returns true if the error is a cycle error.
// Uses errors.As to handle wrapped errors.
func IsCyclicRelationship(err error) bool {
	var re *ResolutionError
	if errors.As(err, &re) {
		return re.Code == ErrCodeCyclicRelationship
	}
	return false
}

// ErrorCode returns the resolution error code carried by err, or "" when
// err is not a resolution error.
func ErrorCode(err error) ResolutionErrorCode {
	var re *ResolutionError
	if errors.As(err, &re) {
		return re.Code
	}
	var me *ir.MalformedError
	if errors.As(err, &me) {
		return ErrCodeMalformedRecord
	}
	return ""
}

// NewMalformedRecordError creates a ResolutionError for a malformed record.
func NewMalformedRecordError(sourceID, reason string) *ResolutionError {
	return &ResolutionError{
		Code:     ErrCodeMalformedRecord,
		Message:  reason,
		SourceID: sourceID,
	}
}

// NewCyclicRelationshipError creates a ResolutionError for a canonical walk
// that exceeded its step budget. path is the walk as far as it got.
func NewCyclicRelationshipError(sourceID string, path []string, budget int) *ResolutionError {
	return &ResolutionError{
		Code:     ErrCodeCyclicRelationship,
		Message:  fmt.Sprintf("canonical walk did not terminate within %d steps", budget),
		SourceID: sourceID,
		Details: map[string]string{
			"path":   strings.Join(path, " -> "),
			"budget": fmt.Sprintf("%d", budget),
		},
	}
}

// fromMalformed converts a conversion-boundary error into the engine taxonomy.
func fromMalformed(err error) error {
	var me *ir.MalformedError
	if errors.As(err, &me) {
		return NewMalformedRecordError(me.SourceID, me.Reason)
	}
	return err
}
