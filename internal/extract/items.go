package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"facturas/pkg/models"
)

// tableState is the item-table machine: seekingHeader until a header
// line is found, readingRows until an end marker, then tableDone.
type tableState int

const (
	seekingHeader tableState = iota
	readingRows
	tableDone
)

// tableEndMarkers close the item table; anything below them is totals
// and authorization footer.
var tableEndMarkers = []string{
	"Subtotal:",
	"Importe Otros Tributos:",
	"Importe Total:",
	"Comprobante Autorizado",
}

// Unit keywords are a strong transaction-row signal: a description line
// that happens to contain one numeric-looking substring must not close
// an item, so a single monetary token only counts together with one of
// these.
var unitKeywords = []string{"unidades", "cuota"}

var (
	whitespaceRE   = regexp.MustCompile(`\s+`)
	unitTailRE     = regexp.MustCompile(`(?i)\s*unidades.*$`)
	patientNameRE  = regexp.MustCompile(`(?i)CORRESPONDIENTES\s+(?:A\s+)?(.*?)(?:\.|,|\s+DNI|\s+AF)`)
	patientIDRE    = regexp.MustCompile(`(?i)DNI[:\s]*(\d+)`)
	affiliateNumRE = regexp.MustCompile(`(?i)AF\s*N°[:\s]*(\d+)`)
)

// extractItems walks the product/service table. One item may span
// several physical lines of description before the line carrying its
// figures, so an item is only closed when a transaction row is seen:
// continuation lines accumulate in a description buffer that is flushed
// into the emitted item and reset.
//
// A document without a table header has no items; that is a valid
// record, not an error.
func (p *Parser) extractItems(d *Document) []models.LineItem {
	items := []models.LineItem{}

	state := seekingHeader
	header := d.FindFirst("Producto / Servicio")
	if header == -1 {
		header = d.FindFirst("Descripción")
	}
	if header == -1 {
		p.log.Debug().Msg("item table header not found, no items")
		return items
	}
	state = readingRows

	start := header + 1
	// A split header sometimes continues with the quantity column label.
	if strings.Contains(d.Line(start), "Cantidad") {
		start++
	}

	var buffer []string
	for i := start; i < d.Len() && state == readingRows; i++ {
		line := d.Line(i)

		if isTableEnd(line) {
			state = tableDone
			break
		}

		tokens := moneyTokenRE.FindAllString(line, -1)
		if !isTransactionRow(line, tokens) {
			buffer = append(buffer, line)
			continue
		}

		item := p.buildItem(buffer, line, tokens)
		items = append(items, item)
		buffer = nil
	}

	return items
}

func isTableEnd(line string) bool {
	for _, marker := range tableEndMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return strings.HasPrefix(line, "CAE N°:")
}

// isTransactionRow classifies a table line. A transaction row carries
// at least one two-decimal monetary token and either a unit keyword or
// a second monetary token; the conjunction keeps description lines with
// one embedded numeric substring out of the row class.
func isTransactionRow(line string, moneyTokens []string) bool {
	if len(moneyTokens) == 0 {
		return false
	}
	if len(moneyTokens) >= 2 {
		return true
	}
	for _, kw := range unitKeywords {
		if strings.Contains(line, kw) {
			return true
		}
	}
	return false
}

// buildItem closes one line item: the buffered continuation lines plus
// the row line stripped of its monetary tokens become the description,
// and the largest token on the row is the subtotal (the smaller values
// are unit quantities and rates).
func (p *Parser) buildItem(buffer []string, rowLine string, tokens []string) models.LineItem {
	subtotal := decimal.Zero
	for _, tok := range tokens {
		v, ok := parseMoney(tok)
		if !ok {
			continue
		}
		if v.GreaterThan(subtotal) {
			subtotal = v
		}
	}

	parts := append(append([]string{}, buffer...), moneyTokenRE.ReplaceAllString(rowLine, ""))
	desc := strings.TrimSpace(whitespaceRE.ReplaceAllString(strings.Join(parts, " "), " "))
	desc = unitTailRE.ReplaceAllString(desc, "")

	item := models.LineItem{
		Description: desc,
		Subtotal:    subtotal,
	}
	if m := patientNameRE.FindStringSubmatch(desc); m != nil {
		item.PatientName = strings.TrimSpace(m[1])
	}
	if m := patientIDRE.FindStringSubmatch(desc); m != nil {
		item.PatientID = m[1]
	}
	if m := affiliateNumRE.FindStringSubmatch(desc); m != nil {
		item.AffiliateNumber = m[1]
	}

	p.log.Trace().
		Str("description", item.Description).
		Str("subtotal", item.Subtotal.StringFixed(2)).
		Msg("line item closed")
	return item
}
