// Package extract recovers a structured invoice record from the raw,
// linearized text dump of an AFIP "Factura C"-family invoice.
//
// The visual layout of these documents is consistent, but the linearized
// text order is not: columns interleave, labels and their values drift
// onto separate lines, and optional blocks appear and disappear. The
// package therefore never relies on fixed offsets. Each field has its
// own named extractor with a documented anchor and look-ahead window,
// and every extractor degrades independently to an explicit fallback
// value instead of failing the document.
//
// The only fatal condition is input that yields zero lines
// (ErrDocumentUnreadable). Everything else produces a total
// models.ExtractedInvoice, possibly flagged for manual review.
package extract

import (
	"regexp"
	"strings"
)

// Document is the immutable line sequence built from one invoice's raw
// text. The original document order is preserved; that ordering is the
// primary structural signal the extractors exploit.
type Document struct {
	raw   string
	lines []string
}

// SplitLines splits raw text into trimmed, non-empty lines, accepting
// any newline convention. Empty input yields an empty slice.
func SplitLines(raw string) []string {
	var lines []string
	for _, l := range strings.FieldsFunc(raw, func(r rune) bool { return r == '\n' || r == '\r' }) {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// NewDocument builds a Document from raw text.
func NewDocument(raw string) *Document {
	return &Document{raw: raw, lines: SplitLines(raw)}
}

// Raw returns the full original text. Strict label+value patterns run
// over the raw text because the upstream text producer sometimes merges
// a label and its value across a line break.
func (d *Document) Raw() string { return d.raw }

// Len returns the number of lines.
func (d *Document) Len() int { return len(d.lines) }

// Line returns line i, or the empty string when i is out of range.
func (d *Document) Line(i int) string {
	if i < 0 || i >= len(d.lines) {
		return ""
	}
	return d.lines[i]
}

// FindFirst returns the index of the first line containing substr
// (case-insensitive), or -1.
func (d *Document) FindFirst(substr string) int {
	substr = strings.ToLower(substr)
	for i, l := range d.lines {
		if strings.Contains(strings.ToLower(l), substr) {
			return i
		}
	}
	return -1
}

// FindFirstMatch returns the index of the first line matching re, or -1.
func (d *Document) FindFirstMatch(re *regexp.Regexp) int {
	for i, l := range d.lines {
		if re.MatchString(l) {
			return i
		}
	}
	return -1
}

// FindAll returns the indices of every line matching re, in document
// order. Used for fields that legitimately repeat, such as CUIT-shaped
// tokens.
func (d *Document) FindAll(re *regexp.Regexp) []int {
	var idx []int
	for i, l := range d.lines {
		if re.MatchString(l) {
			idx = append(idx, i)
		}
	}
	return idx
}
