package config

import (
	"fmt"
	"os"
	"regexp"

	"facturas/internal/logger"
)

// Text producer selection values for TEXT_SOURCE.
const (
	SourcePDFToText = "pdftotext"
	SourceVision    = "vision"
)

var cuitRE = regexp.MustCompile(`^\d{11}$`)

type Config struct {
	// SelfCUIT is the CUIT of the practice whose invoices are being
	// processed. When set, it is always classified as the issuer and
	// never as the receiver. Optional.
	SelfCUIT string

	// TextSource selects the raw-text producer: pdftotext or vision.
	TextSource string

	// PdftotextBin is the pdftotext binary name or path.
	PdftotextBin string

	// DBPath is the SQLite database file for the batch store.
	DBPath string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		SelfCUIT:      getEnv("SELF_CUIT", ""),
		TextSource:    getEnv("TEXT_SOURCE", SourcePDFToText),
		PdftotextBin:  getEnv("PDFTOTEXT_BIN", "pdftotext"),
		DBPath:        getEnv("DB_PATH", "facturas.db"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
		LogTimeFormat: getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:     getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.TextSource != SourcePDFToText && c.TextSource != SourceVision {
		return fmt.Errorf("TEXT_SOURCE must be %q or %q", SourcePDFToText, SourceVision)
	}
	if c.SelfCUIT != "" && !cuitRE.MatchString(c.SelfCUIT) {
		return fmt.Errorf("SELF_CUIT must be 11 digits")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
