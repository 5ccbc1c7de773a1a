package textsource

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextDumpPassthrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.txt")
	require.NoError(t, os.WriteFile(path, []byte("ORIGINAL\nFactura C\n"), 0644))

	src := NewPDFToText("")
	text, err := src.Text(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "ORIGINAL\nFactura C\n", text)
}

func TestTextDumpMissingFile(t *testing.T) {
	src := NewPDFToText("")
	_, err := src.Text(context.Background(), filepath.Join(t.TempDir(), "no.txt"))
	require.Error(t, err)

	var srcErr *SourceError
	assert.ErrorAs(t, err, &srcErr)
}

func TestMissingBinaryWrapsConversionError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0644))

	src := NewPDFToText("definitely-not-a-binary")
	_, err := src.Text(context.Background(), path)
	assert.ErrorIs(t, err, ErrConversionFailed)
}
