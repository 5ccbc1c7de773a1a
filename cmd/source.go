package cmd

import (
	"context"
	"io"

	"facturas/internal/config"
	"facturas/internal/textsource"
)

// newTextSource builds the configured raw-text producer. The returned
// closer is a no-op for producers without a client to tear down.
func newTextSource(ctx context.Context, cfg *config.Config) (textsource.Source, io.Closer, error) {
	if cfg.TextSource == config.SourceVision {
		v, err := textsource.NewVision(ctx)
		if err != nil {
			return nil, nil, err
		}
		return v, v, nil
	}
	return textsource.NewPDFToText(cfg.PdftotextBin), nopCloser{}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
