package transcript

import "fmt"

// ParseError reports malformed input for a given format. Field names the
// offending field or path when known.
type ParseError struct {
	Format Format
	Field  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("parse %s: field %q: %v", e.Format, e.Field, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError reports input that parsed cleanly but is semantically
// invalid, such as an empty body.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid transcript: " + e.Reason
}
