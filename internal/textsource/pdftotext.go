package textsource

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"facturas/internal/logger"
)

// PDFToText extracts text by shelling out to poppler's pdftotext with
// layout preservation. Files with a .txt extension are read verbatim,
// so pre-extracted dumps can be fed straight to the engine.
type PDFToText struct {
	// Binary is the pdftotext binary name or absolute path; empty means
	// "pdftotext" from PATH.
	Binary string

	log zerolog.Logger
}

// NewPDFToText creates a pdftotext-backed Source.
func NewPDFToText(binary string) *PDFToText {
	if binary == "" {
		binary = "pdftotext"
	}
	return &PDFToText{
		Binary: binary,
		log:    logger.WithComponent("pdftotext"),
	}
}

// Text implements Source.
func (p *PDFToText) Text(ctx context.Context, path string) (string, error) {
	const op = "Text"

	if strings.EqualFold(filepath.Ext(path), ".txt") {
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", WrapSourceError(op, path, err, "failed to read text dump")
		}
		return string(raw), nil
	}

	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	cmd := exec.CommandContext(ctx, p.Binary, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	if err := cmd.Run(); err != nil {
		p.log.Error().
			Err(err).
			Str("file", path).
			Str("stderr", strings.TrimSpace(errb.String())).
			Msg("pdftotext failed")
		return "", WrapSourceError(op, path, ErrConversionFailed, strings.TrimSpace(errb.String()))
	}

	text := out.String()
	if strings.TrimSpace(text) == "" {
		return "", WrapSourceError(op, path, ErrEmptyDocument, "")
	}

	p.log.Debug().
		Str("file", path).
		Int("bytes", len(text)).
		Int("pages", 1+strings.Count(text, "\f")).
		Msg("text extracted")
	return text, nil
}
