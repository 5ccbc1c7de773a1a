package extract

import (
	"errors"
	"fmt"
)

// Common extraction errors
var (
	// ErrDocumentUnreadable is returned when the input text produced zero
	// lines. This is fatal for the document; callers should skip and
	// report it rather than retry with the same input.
	ErrDocumentUnreadable = errors.New("document text produced no lines")
)

// ParseError wraps errors with additional context about an extraction
// failure.
type ParseError struct {
	// Op is the operation that failed (e.g., "Parse").
	Op string

	// Filename is the source file being extracted, when known.
	Filename string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	switch {
	case e.Details != "" && e.Filename != "":
		return fmt.Sprintf("extract: %s failed for %q: %s: %v", e.Op, e.Filename, e.Details, e.Err)
	case e.Filename != "":
		return fmt.Sprintf("extract: %s failed for %q: %v", e.Op, e.Filename, e.Err)
	case e.Details != "":
		return fmt.Sprintf("extract: %s failed: %s: %v", e.Op, e.Details, e.Err)
	default:
		return fmt.Sprintf("extract: %s failed: %v", e.Op, e.Err)
	}
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *ParseError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewParseError creates a new ParseError with the specified operation
// and underlying error.
func NewParseError(op, filename string, err error, details string) *ParseError {
	return &ParseError{
		Op:       op,
		Filename: filename,
		Err:      err,
		Details:  details,
	}
}
