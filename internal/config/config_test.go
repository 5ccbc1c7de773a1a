package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, SourcePDFToText, cfg.TextSource)
	assert.Equal(t, "pdftotext", cfg.PdftotextBin)
	assert.Equal(t, "facturas.db", cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadRejectsUnknownTextSource(t *testing.T) {
	t.Setenv("TEXT_SOURCE", "carrier-pigeon")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadValidatesSelfCUIT(t *testing.T) {
	t.Setenv("SELF_CUIT", "30123456789")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "30123456789", cfg.SelfCUIT)

	t.Setenv("SELF_CUIT", "not-a-cuit")
	_, err = Load()
	require.Error(t, err)
}
