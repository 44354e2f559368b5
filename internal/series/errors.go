package series

import "fmt"

// Validation failure reasons.
const (
	ReasonNotArray     = "not an array"
	ReasonMissingField = "missing field"
	ReasonInvalidValue = "invalid value"
)

// ValidationError reports a payload that does not match the record schema.
type ValidationError struct {
	Reason string
	Index  int    // Offending element, -1 when the top-level value is wrong
	Field  string // Offending field, empty when not field-specific
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return "validation: " + e.Reason
	}
	if e.Field == "" {
		return fmt.Sprintf("validation: %s at index %d", e.Reason, e.Index)
	}
	return fmt.Sprintf("validation: %s %q at index %d", e.Reason, e.Field, e.Index)
}

// ParseError reports malformed JSON text.
type ParseError struct {
	Offset int64 // Byte offset reported by the decoder, 0 if unknown
	Err    error
}

func (e *ParseError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("parse: invalid json at offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("parse: invalid json: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
