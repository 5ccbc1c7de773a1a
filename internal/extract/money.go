package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// maxPlausibleAmount rejects numeric tokens too large to be currency.
// CUITs, DNIs and CBUs that slip past the money pattern land well above
// this bound.
var maxPlausibleAmount = decimal.NewFromInt(1_000_000_000)

// moneyTokenRE matches a two-decimal monetary-shaped token, with or
// without dot thousands grouping. The final two digits are the
// fraction; integers, DNIs and CBUs do not match. No trailing \b: the
// text producer sometimes merges adjacent columns ("150784,020,00")
// and the tail still has to be picked up.
var moneyTokenRE = regexp.MustCompile(`\d{1,3}(?:\.\d{3})+,\d{2}|\d+(?:[.,]\d{2})`)

// parseMoney normalizes an Argentine- or dot-locale monetary token to a
// decimal: "1.234,56" and "1234.56" both yield 1234.56. Returns false
// for tokens that do not parse or are implausibly large.
func parseMoney(tok string) (decimal.Decimal, bool) {
	tok = strings.TrimSpace(tok)
	dot := strings.LastIndexByte(tok, '.')
	comma := strings.LastIndexByte(tok, ',')

	var norm string
	switch {
	case dot >= 0 && comma >= 0:
		// Both present: the later separator is the decimal point.
		if comma > dot {
			norm = strings.ReplaceAll(tok, ".", "")
			norm = strings.Replace(norm, ",", ".", 1)
		} else {
			norm = strings.ReplaceAll(tok, ",", "")
		}
	case comma >= 0:
		if strings.Count(tok, ",") > 1 {
			return decimal.Zero, false
		}
		norm = strings.Replace(tok, ",", ".", 1)
	case dot >= 0:
		if len(tok)-dot-1 == 2 && strings.Count(tok, ".") == 1 {
			norm = tok
		} else {
			// Thousands grouping only ("1.500").
			norm = strings.ReplaceAll(tok, ".", "")
		}
	default:
		norm = tok
	}

	d, err := decimal.NewFromString(norm)
	if err != nil {
		return decimal.Zero, false
	}
	if d.IsNegative() || d.GreaterThanOrEqual(maxPlausibleAmount) {
		return decimal.Zero, false
	}
	return d, true
}

// parseCurrency is parseMoney restricted to tokens carrying an explicit
// two-digit fraction, the shape required for a recovered total.
func parseCurrency(tok string) (decimal.Decimal, bool) {
	dot := strings.LastIndexByte(tok, '.')
	comma := strings.LastIndexByte(tok, ',')
	sep := dot
	if comma > sep {
		sep = comma
	}
	if sep < 0 || len(strings.TrimSpace(tok))-sep-1 != 2 {
		return decimal.Zero, false
	}
	return parseMoney(tok)
}

// dateRE matches the dd/mm/yyyy dates used throughout the document
// family.
var dateRE = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)

const dateLayout = "02/01/2006"

// parseDate parses a dd/mm/yyyy token, returning nil when it is not a
// real calendar date.
func parseDate(tok string) *time.Time {
	t, err := time.Parse(dateLayout, tok)
	if err != nil {
		return nil
	}
	return &t
}
