// Package textsource turns binary invoice documents into the linear
// text the extraction engine consumes.
//
// The engine places no constraint on a producer beyond stable line
// order reflecting the original visual top-to-bottom, left-to-right
// reading order as best effort. Two producers are provided:
//
//   - PDFToText shells out to poppler's pdftotext and needs no
//     credentials or network. It also passes .txt dumps through
//     verbatim, which is convenient for diagnostics and tests.
//   - Vision uses the Google Cloud Vision document-text-detection API
//     for scanned documents pdftotext cannot read.
//
// Vision API limitations:
//   - Maximum file size: 20MB for synchronous processing
//   - Maximum pages: 5 pages for synchronous processing
//   - Required environment: GOOGLE_APPLICATION_CREDENTIALS path or
//     GOOGLE_CREDENTIALS inline JSON
package textsource

import "context"

// Source produces the linearized text of one document.
type Source interface {
	// Text extracts the full text of the document at path, concatenated
	// in reading order.
	Text(ctx context.Context, path string) (string, error)
}
