package textsource

import (
	"context"
	"fmt"
	"os"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

const (
	// maxFileSizeBytes is the Vision API limit for synchronous
	// processing.
	maxFileSizeBytes = 20 * 1024 * 1024

	// maxPagesSync is the Vision API page limit for synchronous
	// processing.
	maxPagesSync = 5
)

// Vision extracts document text with the Google Cloud Vision API. It is
// the producer of last resort for scanned invoices that pdftotext
// cannot read.
type Vision struct {
	client *vision.ImageAnnotatorClient
}

// NewVision creates a Vision-backed Source with credentials from the
// environment: GOOGLE_CREDENTIALS inline JSON is checked first, then
// GOOGLE_APPLICATION_CREDENTIALS, then application default credentials.
func NewVision(ctx context.Context) (*Vision, error) {
	const op = "NewVision"

	var client *vision.ImageAnnotatorClient
	var err error

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, WrapSourceError(op, "", err, "failed to create client with GOOGLE_CREDENTIALS")
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, WrapSourceError(op, "", err, "failed to create client with GOOGLE_APPLICATION_CREDENTIALS")
		}
	} else {
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, WrapSourceError(op, "", ErrMissingCredentials, "no credentials found in environment")
		}
	}

	return &Vision{client: client}, nil
}

// Text implements Source.
func (v *Vision) Text(ctx context.Context, path string) (string, error) {
	const op = "Text"

	pdfBytes, err := os.ReadFile(path)
	if err != nil {
		return "", WrapSourceError(op, path, err, "failed to read document")
	}
	if len(pdfBytes) > maxFileSizeBytes {
		return "", WrapSourceError(op, path, ErrDocumentTooLarge, fmt.Sprintf("file size: %d bytes", len(pdfBytes)))
	}
	if len(pdfBytes) < 4 || string(pdfBytes[:4]) != "%PDF" {
		return "", WrapSourceError(op, path, ErrInvalidPDF, "missing PDF header")
	}

	req := &visionpb.BatchAnnotateFilesRequest{
		Requests: []*visionpb.AnnotateFileRequest{
			{
				InputConfig: &visionpb.InputConfig{
					Content:  pdfBytes,
					MimeType: "application/pdf",
				},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateFiles(ctx, req)
	if err != nil {
		return "", WrapSourceError(op, path, ErrConversionFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}
	if len(resp.Responses) == 0 {
		return "", WrapSourceError(op, path, ErrConversionFailed, "no response from Vision API")
	}
	fileResp := resp.Responses[0]
	if fileResp.Error != nil {
		return "", WrapSourceError(op, path, ErrConversionFailed, fmt.Sprintf("Vision API error: %s", fileResp.Error.Message))
	}
	if len(fileResp.Responses) > maxPagesSync {
		return "", WrapSourceError(op, path, ErrTooManyPages, fmt.Sprintf("document has %d pages", len(fileResp.Responses)))
	}

	var text strings.Builder
	for pageIdx, page := range fileResp.Responses {
		if page.Error != nil {
			return "", WrapSourceError(op, path, ErrConversionFailed,
				fmt.Sprintf("error processing page %d: %s", pageIdx+1, page.Error.Message))
		}
		if page.FullTextAnnotation == nil {
			continue
		}
		if text.Len() > 0 {
			text.WriteString("\n\f\n")
		}
		text.WriteString(page.FullTextAnnotation.Text)
	}

	if strings.TrimSpace(text.String()) == "" {
		return "", WrapSourceError(op, path, ErrEmptyDocument, "")
	}
	return text.String(), nil
}

// Close closes the underlying Vision client.
func (v *Vision) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}
