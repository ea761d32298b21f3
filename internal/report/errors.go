package report

import "fmt"

// ValidationError means the raw quiz answers were missing or malformed.
// The caller should prompt the user to complete the quiz; no partial
// document is produced.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid quiz input: %s %s", e.Field, e.Reason)
}

func validationErr(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// RenderError means measuring or drawing a block failed. The pipeline is
// pure, so the caller may simply re-invoke it with the same input.
type RenderError struct {
	Section SectionKind
	Err     error
}

func (e *RenderError) Error() string {
	if e.Section != "" {
		return fmt.Sprintf("render section %s: %v", e.Section, e.Err)
	}
	return fmt.Sprintf("render document: %v", e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
