package extract

import (
	"github.com/rs/zerolog"

	"facturas/internal/logger"
	"facturas/pkg/models"
)

// Options tunes a Parser for one operator.
type Options struct {
	// SelfTaxID is the CUIT of the practice issuing the invoices being
	// processed, when known. It is used for self-exclusion: a token
	// equal to SelfTaxID is always the issuer and never the receiver.
	SelfTaxID string

	// DefaultDocumentType is the comprobante letter assumed for the
	// document family. Defaults to "C".
	DefaultDocumentType string
}

// Parser extracts structured invoice records from linearized document
// text. It is stateless across calls: every Parse builds a fresh line
// sequence, so one Parser may be shared by any number of goroutines.
type Parser struct {
	opts Options
	log  zerolog.Logger
}

// NewParser creates a Parser with the given options.
func NewParser(opts Options) *Parser {
	if opts.DefaultDocumentType == "" {
		opts.DefaultDocumentType = "C"
	}
	return &Parser{
		opts: opts,
		log:  logger.WithComponent("extract"),
	}
}

// Parse extracts one invoice record from raw document text. filename is
// used for diagnostics only.
//
// Parse fails only when the text yields zero lines
// (ErrDocumentUnreadable). Every per-field miss degrades to that
// field's fallback sentinel, so a non-nil record is always total: the
// use case is manual back-office correction of low-confidence fields,
// which needs best-effort output over strict failure. Callers should
// treat records reporting NeedsReview as "check by hand", not as
// errors.
func (p *Parser) Parse(text, filename string) (*models.ExtractedInvoice, error) {
	const op = "Parse"

	doc := NewDocument(text)
	if doc.Len() == 0 {
		return nil, NewParseError(op, filename, ErrDocumentUnreadable, "")
	}

	log := p.log.With().Str("file", filename).Logger()

	inv := &models.ExtractedInvoice{
		Filename:     filename,
		DocumentType: p.opts.DefaultDocumentType,
		TaxCondition: models.TaxConditionUnknown,
		Items:        []models.LineItem{},
	}

	inv.SalesPoint, inv.DocumentNumber = p.invoiceNumber(doc)

	issuer, receiver, idRule := p.resolveTaxIDs(doc)
	inv.IssuerTaxID = issuer
	inv.ReceiverTaxID = receiver
	log.Debug().Str("rule", idRule).Str("issuer", issuer).Str("receiver", receiver).
		Msg("tax IDs resolved")

	var periodAnchor int
	inv.PeriodFrom, inv.PeriodTo, periodAnchor = p.period(doc)

	var rule string
	inv.EmissionDate, rule = p.emissionDate(doc, periodAnchor)
	log.Debug().Str("rule", rule).Msg("emission date resolved")

	inv.TotalAmount, rule = p.totalAmount(doc)
	log.Debug().Str("rule", rule).Str("total", inv.TotalAmount).Msg("total resolved")

	inv.CAE = p.authorizationCode(doc)
	inv.IssuerName = p.issuerName(doc)
	inv.ReceiverName = p.receiverName(doc, inv.IssuerTaxID)

	if cond, condRule := p.taxCondition(doc, inv.ReceiverTaxID); cond != "" {
		inv.TaxCondition = cond
		log.Debug().Str("rule", condRule).Str("condition", cond).Msg("tax condition resolved")
	}

	inv.Items = p.extractItems(doc)

	log.Info().
		Str("invoice", inv.InvoiceNumber()).
		Str("cae", inv.CAE).
		Int("items", len(inv.Items)).
		Bool("needs_review", inv.NeedsReview()).
		Msg("invoice extracted")

	return inv, nil
}
