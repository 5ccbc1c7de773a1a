package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"facturas/internal/config"
	"facturas/internal/extract"
	"facturas/internal/logger"
	"facturas/pkg/models"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Extract structured invoice data from a PDF or text dump",
	Long: `Parse one invoice document and print the extracted record as JSON.

PDF files are converted to text with the configured producer (pdftotext
by default, Google Cloud Vision with TEXT_SOURCE=vision). Files with a
.txt extension are treated as pre-extracted text dumps.

Extraction never fails for a missing field: unrecovered fields carry
their fallback value (empty string, "Unknown", null date) and the record
is marked needs_review when core fields are absent. The only hard
failure is a document that yields no text lines at all.`,
	Example: `  # Extract invoice data to stdout (JSON format)
  facturas parse factura_0003-00001234.pdf

  # Save extracted data to a JSON file
  facturas parse factura.pdf -o factura.json

  # Parse a raw text dump produced elsewhere
  facturas parse dump.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

// ParseOutput is the JSON output structure for single-file parsing.
type ParseOutput struct {
	Invoice  InvoiceData        `json:"invoice"`
	Metadata ProcessingMetadata `json:"metadata"`
}

// InvoiceData is the extracted record rendered for output.
type InvoiceData struct {
	InvoiceNumber   string         `json:"invoice_number"`
	DocumentType    string         `json:"document_type"`
	SalesPoint      string         `json:"sales_point"`
	DocumentNumber  string         `json:"document_number"`
	EmissionDate    string         `json:"emission_date,omitempty"`
	PeriodFrom      string         `json:"period_from,omitempty"`
	PeriodTo        string         `json:"period_to,omitempty"`
	IssuerTaxID     string         `json:"issuer_tax_id"`
	IssuerName      string         `json:"issuer_name"`
	ReceiverTaxID   string         `json:"receiver_tax_id"`
	ReceiverName    string         `json:"receiver_name"`
	TotalAmount     string         `json:"total_amount"`
	TaxCondition    string         `json:"tax_condition"`
	CAE             string         `json:"cae"`
	Items           []LineItemData `json:"items"`
	NeedsReview     bool           `json:"needs_review"`
}

// LineItemData is one table row rendered for output.
type LineItemData struct {
	Description     string `json:"description"`
	Subtotal        string `json:"subtotal"`
	PatientName     string `json:"patient_name,omitempty"`
	PatientID       string `json:"patient_id,omitempty"`
	AffiliateNumber string `json:"affiliate_number,omitempty"`
}

// ProcessingMetadata contains information about the processing operation.
type ProcessingMetadata struct {
	FileName           string        `json:"file_name"`
	ProcessedAt        time.Time     `json:"processed_at"`
	ProcessingDuration time.Duration `json:"processing_duration"`
	TextSource         string        `json:"text_source"`
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	parseCmd.Flags().Int("timeout", 60, "Processing timeout in seconds")
}

func runParse(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("parse")

	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	path := args[0]

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(timeoutSecs)*time.Second)
	defer cancel()

	source, closer, err := newTextSource(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create text source: %w", err)
	}
	defer closer.Close()

	start := time.Now()
	text, err := source.Text(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to extract text: %w", err)
	}

	parser := extract.NewParser(extract.Options{SelfTaxID: cfg.SelfCUIT})
	inv, err := parser.Parse(text, filepath.Base(path))
	if err != nil {
		return err
	}

	out := ParseOutput{
		Invoice: renderInvoice(inv),
		Metadata: ProcessingMetadata{
			FileName:           filepath.Base(path),
			ProcessedAt:        time.Now(),
			ProcessingDuration: time.Since(start),
			TextSource:         cfg.TextSource,
		},
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		log.Info().Str("file", outputPath).Msg("Output written")
		return nil
	}

	fmt.Println(string(data))
	return nil
}

const outputDateLayout = "02/01/2006"

func renderInvoice(inv *models.ExtractedInvoice) InvoiceData {
	data := InvoiceData{
		InvoiceNumber:  inv.InvoiceNumber(),
		DocumentType:   inv.DocumentType,
		SalesPoint:     inv.SalesPoint,
		DocumentNumber: inv.DocumentNumber,
		IssuerTaxID:    inv.IssuerTaxID,
		IssuerName:     inv.IssuerName,
		ReceiverTaxID:  inv.ReceiverTaxID,
		ReceiverName:   inv.ReceiverName,
		TotalAmount:    inv.TotalAmount,
		TaxCondition:   inv.TaxCondition,
		CAE:            inv.CAE,
		Items:          []LineItemData{},
		NeedsReview:    inv.NeedsReview(),
	}
	if inv.EmissionDate != nil {
		data.EmissionDate = inv.EmissionDate.Format(outputDateLayout)
	}
	if inv.PeriodFrom != nil {
		data.PeriodFrom = inv.PeriodFrom.Format(outputDateLayout)
	}
	if inv.PeriodTo != nil {
		data.PeriodTo = inv.PeriodTo.Format(outputDateLayout)
	}
	for _, item := range inv.Items {
		data.Items = append(data.Items, LineItemData{
			Description:     item.Description,
			Subtotal:        item.Subtotal.StringFixed(2),
			PatientName:     item.PatientName,
			PatientID:       item.PatientID,
			AffiliateNumber: item.AffiliateNumber,
		})
	}
	return data
}
