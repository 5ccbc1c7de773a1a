package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxConditionUnknown is the fallback value when no IVA condition phrase
// could be recovered from the document.
const TaxConditionUnknown = "Unknown"

// ExtractedInvoice is the structured record recovered from the linearized
// text of one AFIP invoice. Every field is always populated: extraction
// misses resolve to the documented fallback (empty string, Unknown, nil
// date, empty item list) so the record is total and safe to persist.
type ExtractedInvoice struct {
	// Source file, for diagnostics only.
	Filename string

	// Dates
	EmissionDate *time.Time // nil when no qualifying date was found
	PeriodFrom   *time.Time // service-period invoices only
	PeriodTo     *time.Time

	// Identifiers
	DocumentType   string // AFIP comprobante letter, defaults to "C"
	SalesPoint     string // "Punto de Venta" number
	DocumentNumber string // "Comp. Nro" number
	CAE            string // 14-digit authorization code, empty when absent

	// Parties
	IssuerTaxID   string // 11-digit CUIT
	IssuerName    string
	ReceiverTaxID string
	ReceiverName  string

	// TotalAmount is the normalized total ("1234.56"). The empty string
	// means "not found" and is distinct from "0.00".
	TotalAmount string

	// TaxCondition is the receiver's IVA condition phrase, or
	// TaxConditionUnknown.
	TaxCondition string

	// Items preserve document order.
	Items []LineItem
}

// LineItem is one priced row of the invoice's product/service table.
// A single item may span several physical lines of description before
// the line carrying its figures appears.
type LineItem struct {
	Description     string
	Subtotal        decimal.Decimal
	PatientName     string // optional, recovered from the description text
	PatientID       string // DNI digits, optional
	AffiliateNumber string // "AF N°" digits, optional
}

// InvoiceNumber returns the human-readable invoice identifier
// "salesPoint-documentNumber", or the empty string when neither part
// was recovered.
func (inv *ExtractedInvoice) InvoiceNumber() string {
	if inv.SalesPoint == "" && inv.DocumentNumber == "" {
		return ""
	}
	return inv.SalesPoint + "-" + inv.DocumentNumber
}

// DedupKey returns the stable duplicate-detection key: the CAE when
// present, otherwise documentNumber + issuerTaxID + documentType.
func (inv *ExtractedInvoice) DedupKey() string {
	if inv.CAE != "" {
		return "cae:" + inv.CAE
	}
	return "doc:" + inv.DocumentNumber + ":" + inv.IssuerTaxID + ":" + inv.DocumentType
}

// NeedsReview reports whether the record is missing enough core fields
// that a human should check it before trusting it. A true result is not
// an error: extraction is best effort and partial records are expected
// for degraded source text.
func (inv *ExtractedInvoice) NeedsReview() bool {
	return inv.EmissionDate == nil ||
		inv.TotalAmount == "" ||
		inv.ReceiverTaxID == "" ||
		inv.CAE == ""
}
