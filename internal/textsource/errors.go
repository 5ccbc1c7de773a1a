package textsource

import (
	"errors"
	"fmt"
)

// Common text-producer errors
var (
	// ErrEmptyDocument is returned when the document contains no
	// readable text.
	ErrEmptyDocument = errors.New("document contains no readable text")

	// ErrInvalidPDF is returned when the file is not a valid PDF
	// document.
	ErrInvalidPDF = errors.New("invalid or corrupted PDF document")

	// ErrDocumentTooLarge is returned when the file exceeds the Vision
	// API's 20MB synchronous processing limit.
	ErrDocumentTooLarge = errors.New("document exceeds the maximum size limit (20MB)")

	// ErrTooManyPages is returned when the PDF has more pages than the
	// Vision API accepts for synchronous processing.
	ErrTooManyPages = errors.New("PDF has too many pages (maximum 5 pages for synchronous processing)")

	// ErrMissingCredentials is returned when neither
	// GOOGLE_APPLICATION_CREDENTIALS nor GOOGLE_CREDENTIALS is
	// configured and default credentials are unavailable.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS environment variable")

	// ErrConversionFailed is returned when the producer could not turn
	// the document into text.
	ErrConversionFailed = errors.New("text conversion failed")
)

// SourceError wraps errors with additional context about a text
// extraction failure.
type SourceError struct {
	// Op is the operation that failed (e.g., "Text", "run pdftotext").
	Op string

	// Path is the document being converted.
	Path string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("textsource: %s failed for %q: %s: %v", e.Op, e.Path, e.Details, e.Err)
	}
	return fmt.Sprintf("textsource: %s failed for %q: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *SourceError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *SourceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapSourceError wraps an error as a SourceError if it isn't already one.
func WrapSourceError(op, path string, err error, details string) error {
	if err == nil {
		return nil
	}

	var srcErr *SourceError
	if errors.As(err, &srcErr) {
		return err // Already wrapped
	}

	return &SourceError{Op: op, Path: path, Err: err, Details: details}
}
