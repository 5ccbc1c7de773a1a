package extract

import (
	"regexp"
	"strings"
	"time"
)

// Field-specific look-ahead windows. Each proximity extractor scans a
// bounded range of lines around its anchor and gives up past the
// window; the values come from measured layouts of the document family.
const (
	totalLookBehind   = 5  // lines scanned above the "Importe Total:" label
	caeWindow         = 6  // lines scanned below the "CAE N°:" label
	periodWindow      = 10 // lines scanned below "Período Facturado Desde"
	emissionScanLimit = 50 // emission date must appear in the first lines
	receiverNameLines = 5  // lines of receiver name collected before bailing
)

var (
	// Label and value normally co-occur, but the text producer may fold
	// both numbers onto the label line in any spacing.
	invoiceNumberRE = regexp.MustCompile(`Punto de Venta:\s*Comp\. Nro:\s*(\d+)\s+(\d+)`)

	// Rigid "Importe Total" label: "VALOR TOTAL" and the like inside item
	// descriptions must not match.
	totalStrictRE = regexp.MustCompile(`(?i)Importe Total[:\s]*\$\s*([\d.,]+)`)

	// A currency value standing alone on its own line, with or without
	// thousands grouping.
	standaloneAmountRE = regexp.MustCompile(`^\d+(?:[.,]\d+)*$`)

	caeTokenRE = regexp.MustCompile(`\b\d{14}\b`)
)

const activityStartLabel = "Inicio de Actividades"

// invoiceNumber recovers the sales point and document number from the
// "Punto de Venta: Comp. Nro:" label. Runs over the raw text because
// the two values regularly end up on the line after the label.
func (p *Parser) invoiceNumber(d *Document) (salesPoint, number string) {
	if m := invoiceNumberRE.FindStringSubmatch(d.Raw()); m != nil {
		return m[1], m[2]
	}
	return "", ""
}

// totalAmount recovers the invoice total, normalized to a dot decimal
// with two fraction digits. The strict label+value pattern is tried
// first; when the layout separated the label from its value, the lines
// above the label are scanned for a standalone currency token. The
// empty string means "not found" and is distinct from "0.00".
func (p *Parser) totalAmount(d *Document) (amount, rule string) {
	if m := totalStrictRE.FindStringSubmatch(d.Raw()); m != nil {
		if v, ok := parseCurrency(m[1]); ok {
			return v.StringFixed(2), "strict-label"
		}
	}

	anchor := d.FindFirst("Importe Total:")
	if anchor == -1 {
		return "", "not-found"
	}
	for i := 1; i <= totalLookBehind; i++ {
		candidate := d.Line(anchor - i)
		if !standaloneAmountRE.MatchString(candidate) {
			continue
		}
		if v, ok := parseCurrency(candidate); ok {
			return v.StringFixed(2), "label-scan"
		}
	}
	return "", "not-found"
}

// authorizationCode recovers the 14-digit CAE from the lines at and
// below its label.
func (p *Parser) authorizationCode(d *Document) string {
	anchor := d.FindFirst("CAE N°:")
	if anchor == -1 {
		return ""
	}
	for i := 0; i < caeWindow; i++ {
		if m := caeTokenRE.FindString(d.Line(anchor + i)); m != "" {
			return m
		}
	}
	return ""
}

// period recovers the service-period dates below the "Período Facturado
// Desde" anchor. The anchor index is returned so the emission-date scan
// can range-exclude the same window; -1 when the document has no
// service-period block.
func (p *Parser) period(d *Document) (from, to *time.Time, anchor int) {
	anchor = d.FindFirst("Período Facturado Desde")
	if anchor == -1 {
		return nil, nil, -1
	}

	var collected []string
	for i := 0; i <= periodWindow; i++ {
		line := d.Line(anchor + i)
		if line == "" || strings.Contains(line, activityStartLabel) {
			continue
		}
		collected = append(collected, dateRE.FindAllString(line, -1)...)
		if len(collected) >= 2 {
			break
		}
	}
	if len(collected) < 2 {
		return nil, nil, anchor
	}

	from = parseDate(collected[0])
	to = parseDate(collected[1])
	if from == nil || to == nil {
		return nil, nil, anchor
	}
	return from, to, anchor
}

// emissionDate finds the first qualifying dd/mm/yyyy date in document
// order within the first emissionScanLimit lines. Dates inside the
// service-period window and "Inicio de Actividades" dates belong to
// other fields and are range-excluded; a document whose only dates sit
// inside the period block yields no emission date at all.
func (p *Parser) emissionDate(d *Document, periodAnchor int) (date *time.Time, rule string) {
	inPeriodWindow := func(i int) bool {
		return periodAnchor != -1 && i >= periodAnchor && i <= periodAnchor+periodWindow
	}
	isActivityStart := func(i int) bool {
		return strings.Contains(d.Line(i), activityStartLabel) ||
			strings.Contains(d.Line(i-1), activityStartLabel)
	}

	limit := d.Len()
	if limit > emissionScanLimit {
		limit = emissionScanLimit
	}
	for i := 0; i < limit; i++ {
		tok := dateRE.FindString(d.Line(i))
		if tok == "" || inPeriodWindow(i) || isActivityStart(i) {
			continue
		}
		if t := parseDate(tok); t != nil {
			return t, "document-order"
		}
	}

	// The header scan came up empty; take the first date anywhere in the
	// document that is not claimed by the period block.
	for i := limit; i < d.Len(); i++ {
		tok := dateRE.FindString(d.Line(i))
		if tok == "" || inPeriodWindow(i) || isActivityStart(i) {
			continue
		}
		if t := parseDate(tok); t != nil {
			return t, "fallback-any-line"
		}
	}
	return nil, "not-found"
}

// issuerName returns the third line of the document, a layout constant
// of this family: the first two lines carry the letterhead ORIGINAL
// banner and the comprobante letter box.
func (p *Parser) issuerName(d *Document) string {
	if d.Len() > 2 {
		return d.Line(2)
	}
	return ""
}

var (
	bareCUITLineRE = regexp.MustCompile(`\d{11}`)
	addressDigits  = regexp.MustCompile(`\d{3,}`)
)

// receiverName collects the receiver's name from the lines following
// the issuer-CUIT line (or, failing that, the first date line). Name
// fragments may spread over several lines; collection stops at
// address-shaped lines and at the next labelled field.
func (p *Parser) receiverName(d *Document, issuerTaxID string) string {
	start := -1
	if issuerTaxID != "" {
		if i := d.FindFirst(issuerTaxID); i != -1 {
			start = i + 1
		}
	}
	if start == -1 {
		i := d.FindFirstMatch(dateRE)
		if i == -1 {
			return ""
		}
		start = i + 1
		if bareCUITLineRE.MatchString(d.Line(start)) {
			start++
		}
	}

	var parts []string
	for i := 0; i < receiverNameLines; i++ {
		if start+i >= d.Len() {
			break
		}
		line := d.Line(start + i)

		isAddress := addressDigits.MatchString(line) ||
			strings.Contains(line, " - ") ||
			strings.HasPrefix(strings.ToLower(line), "domicilio")
		if isAddress {
			break
		}
		if strings.Contains(line, "CUIT:") || strings.Contains(line, "Condición") {
			break
		}
		parts = append(parts, line)
	}
	return strings.Join(parts, " ")
}
