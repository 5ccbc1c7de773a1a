package extract

import (
	"regexp"
	"strings"
)

// conditionScanLimit bounds the IVA-condition scan to the header region
// of the first page.
const conditionScanLimit = 80

var (
	// Labelled receiver CUIT.
	labelledCUITRE = regexp.MustCompile(`CUIT:\s*(\d{11})`)

	// Any CUIT-shaped token: eleven digits opening with a valid AFIP
	// issuing-category prefix.
	cuitTokenRE = regexp.MustCompile(`\b(?:20|23|24|27|30|33|34)\d{9}\b`)
)

// ivaConditions is the closed vocabulary of condition phrases. Phrases
// containing another phrase come first, so a line matches its longest
// applicable phrase.
var ivaConditions = []string{
	"IVA Responsable Inscripto",
	"Responsable Inscripto",
	"IVA Sujeto Exento",
	"Consumidor Final",
	"Responsable Monotributo",
	"Monotributista",
	"Exento",
}

// resolveTaxIDs classifies the CUIT-shaped tokens of the document into
// issuer and receiver.
//
// The receiver is the first labelled "CUIT:" match. The issuer is the
// first CUIT-shaped token in document order, shifting to the second
// when the first is the recovered receiver (self-exclusion: a token
// known to be the receiver's is never simultaneously the issuer's).
// When Options.SelfTaxID is configured it wins the issuer role outright
// and is barred from the receiver role. Either field may come back
// empty; they are never both the same token.
func (p *Parser) resolveTaxIDs(d *Document) (issuer, receiver, rule string) {
	raw := d.Raw()

	if m := labelledCUITRE.FindStringSubmatch(raw); m != nil {
		receiver = m[1]
	}
	candidates := cuitTokenRE.FindAllString(raw, -1)

	rule = "document-order"
	if p.opts.SelfTaxID != "" && contains(candidates, p.opts.SelfTaxID) {
		issuer = p.opts.SelfTaxID
		rule = "configured-self-id"
		if receiver == issuer {
			receiver = ""
			for _, m := range labelledCUITRE.FindAllStringSubmatch(raw, -1) {
				if m[1] != issuer {
					receiver = m[1]
					break
				}
			}
		}
		return issuer, receiver, rule
	}

	if len(candidates) > 0 {
		issuer = candidates[0]
		if issuer == receiver && len(candidates) > 1 {
			issuer = candidates[1]
			rule = "self-exclusion"
		}
	}
	if issuer != "" && issuer == receiver {
		// Single candidate claimed by the labelled receiver match; the
		// label wins and the issuer stays unknown.
		issuer = ""
		rule = "receiver-priority"
	}
	return issuer, receiver, rule
}

// conditionHit is one IVA-condition phrase found in the header region.
type conditionHit struct {
	line   int
	phrase string
}

// taxCondition recovers the receiver's IVA condition. The layout
// interleaves issuer and receiver data, so the reliable signal is
// proximity: of every condition phrase in the header, the one whose
// line sits closest to the receiver-CUIT line belongs to the receiver.
// Without a located receiver CUIT the last occurrence is taken, a
// low-confidence fallback inferred from sample layouts rather than a
// verified rule.
func (p *Parser) taxCondition(d *Document, receiverTaxID string) (condition, rule string) {
	limit := d.Len()
	if limit > conditionScanLimit {
		limit = conditionScanLimit
	}

	var hits []conditionHit
	for i := 0; i < limit; i++ {
		line := d.Line(i)
		for _, phrase := range ivaConditions {
			if !strings.Contains(line, phrase) {
				continue
			}
			// One hit per line; supersets are tried first, so the first
			// containment is the longest applicable phrase.
			hits = append(hits, conditionHit{line: i, phrase: phrase})
			break
		}
	}
	if len(hits) == 0 {
		return "", "not-found"
	}

	receiverLine := -1
	if receiverTaxID != "" {
		if i := d.FindFirst(receiverTaxID); i != -1 && i < limit {
			receiverLine = i
		}
	}
	if receiverLine == -1 {
		return hits[len(hits)-1].phrase, "last-occurrence"
	}

	closest := hits[0]
	minDist := abs(closest.line - receiverLine)
	for _, h := range hits[1:] {
		if d := abs(h.line - receiverLine); d < minDist {
			minDist = d
			closest = h
		}
	}
	return closest.phrase, "receiver-proximity"
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
