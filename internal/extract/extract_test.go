package extract

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func datedLines(lines ...string) string {
	return strings.Join(lines, "\n")
}

func TestParseEmptyInputIsUnreadable(t *testing.T) {
	p := NewParser(Options{})

	for _, text := range []string{"", "\n\n\n", "   \n\t\n"} {
		_, err := p.Parse(text, "empty.pdf")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDocumentUnreadable), "input %q", text)
	}
}

func TestParseBasicInvoice(t *testing.T) {
	text := datedLines(
		"ACME SA",
		"",
		"CUIT: 30123456789",
		"01/03/2024",
		"...",
		"Importe Total: $ 1.500,00",
	)

	inv, err := NewParser(Options{}).Parse(text, "factura.pdf")
	require.NoError(t, err)

	assert.Equal(t, "1500.00", inv.TotalAmount)
	require.NotNil(t, inv.EmissionDate)
	assert.Equal(t, "01/03/2024", inv.EmissionDate.Format("02/01/2006"))
	assert.Equal(t, "30123456789", inv.ReceiverTaxID)
}

func TestParseIsIdempotent(t *testing.T) {
	text := datedLines(
		"ORIGINAL",
		"Factura C",
		"CONSULTORIO DR LOPEZ",
		"Punto de Venta: Comp. Nro:0003 00001234",
		"15/02/2024",
		"CUIT: 20304050607",
		"GARCIA MARIA",
		"IVA Responsable Inscripto",
		"Producto / Servicio",
		"HONORARIOS SESION",
		"150,00 1 150,00",
		"Importe Total: $ 150,00",
		"CAE N°: 74123456789012",
	)
	p := NewParser(Options{})

	first, err := p.Parse(text, "a.pdf")
	require.NoError(t, err)
	second, err := p.Parse(text, "a.pdf")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestParseFallbackCompleteness(t *testing.T) {
	// A single meaningless line still yields a total record: every field
	// carries its fallback sentinel, nothing is left undefined.
	inv, err := NewParser(Options{}).Parse("hola", "min.pdf")
	require.NoError(t, err)

	assert.Equal(t, "C", inv.DocumentType)
	assert.Equal(t, "Unknown", inv.TaxCondition)
	assert.Equal(t, "", inv.TotalAmount)
	assert.Equal(t, "", inv.CAE)
	assert.Equal(t, "", inv.IssuerTaxID)
	assert.Equal(t, "", inv.ReceiverTaxID)
	assert.Nil(t, inv.EmissionDate)
	assert.Nil(t, inv.PeriodFrom)
	assert.Nil(t, inv.PeriodTo)
	require.NotNil(t, inv.Items)
	assert.Empty(t, inv.Items)
	assert.True(t, inv.NeedsReview())
}

func TestParseInvoiceNumber(t *testing.T) {
	inv, err := NewParser(Options{}).Parse("Punto de Venta: Comp. Nro:0003 00001234", "n.pdf")
	require.NoError(t, err)

	assert.Equal(t, "0003", inv.SalesPoint)
	assert.Equal(t, "00001234", inv.DocumentNumber)
	assert.Equal(t, "0003-00001234", inv.InvoiceNumber())
}

func TestParseCAEWithinWindow(t *testing.T) {
	text := datedLines(
		"algo",
		"CAE N°:",
		"Fecha de Vto. de CAE:",
		"74123456789012",
	)
	inv, err := NewParser(Options{}).Parse(text, "cae.pdf")
	require.NoError(t, err)
	assert.Equal(t, "74123456789012", inv.CAE)
}

func TestParseCAEOutsideWindowIgnored(t *testing.T) {
	lines := []string{"CAE N°:"}
	for i := 0; i < 8; i++ {
		lines = append(lines, "relleno")
	}
	lines = append(lines, "74123456789012")

	inv, err := NewParser(Options{}).Parse(datedLines(lines...), "cae.pdf")
	require.NoError(t, err)
	assert.Equal(t, "", inv.CAE)
}

func TestParseServicePeriod(t *testing.T) {
	text := datedLines(
		"Período Facturado Desde:",
		"01/07/2024",
		"31/07/2024",
	)
	inv, err := NewParser(Options{}).Parse(text, "periodo.pdf")
	require.NoError(t, err)

	require.NotNil(t, inv.PeriodFrom)
	require.NotNil(t, inv.PeriodTo)
	assert.Equal(t, "01/07/2024", inv.PeriodFrom.Format("02/01/2006"))
	assert.Equal(t, "31/07/2024", inv.PeriodTo.Format("02/01/2006"))
}

func TestPeriodDatesNeverBecomeEmissionDate(t *testing.T) {
	// The only dates in the document sit inside the period window; the
	// emission date must stay unknown rather than steal one of them.
	text := datedLines(
		"CONSULTORIO",
		"Período Facturado Desde: 01/07/2024 Hasta: 31/07/2024",
	)
	inv, err := NewParser(Options{}).Parse(text, "periodo.pdf")
	require.NoError(t, err)

	require.NotNil(t, inv.PeriodFrom)
	assert.Nil(t, inv.EmissionDate)
}

func TestEmissionDateSkipsActivityStart(t *testing.T) {
	text := datedLines(
		"Inicio de Actividades: 01/01/2010",
		"Condición frente al IVA",
		"15/02/2024",
	)
	inv, err := NewParser(Options{}).Parse(text, "inicio.pdf")
	require.NoError(t, err)

	require.NotNil(t, inv.EmissionDate)
	assert.Equal(t, "15/02/2024", inv.EmissionDate.Format("02/01/2006"))
}

func TestEmissionDateSkipsLineAfterActivityStart(t *testing.T) {
	// The producer often splits the label and its date onto two lines.
	text := datedLines(
		"Inicio de Actividades:",
		"01/01/2010",
		"15/02/2024",
	)
	inv, err := NewParser(Options{}).Parse(text, "inicio.pdf")
	require.NoError(t, err)

	require.NotNil(t, inv.EmissionDate)
	assert.Equal(t, "15/02/2024", inv.EmissionDate.Format("02/01/2006"))
}

func TestTotalAmountLabelThenScanFallback(t *testing.T) {
	// Value separated from its label: the lines above the label are
	// scanned for a standalone currency token.
	text := datedLines(
		"Subtotal",
		"1.500,00",
		"Importe Total:",
	)
	inv, err := NewParser(Options{}).Parse(text, "total.pdf")
	require.NoError(t, err)
	assert.Equal(t, "1500.00", inv.TotalAmount)
}

func TestTotalAmountNotFoundStaysEmpty(t *testing.T) {
	text := datedLines(
		"VALOR TOTAL$ 999,99", // description noise, not the rigid label
		"sin totales",
	)
	inv, err := NewParser(Options{}).Parse(text, "total.pdf")
	require.NoError(t, err)
	assert.Equal(t, "", inv.TotalAmount)
}

func TestIssuerAndReceiverNames(t *testing.T) {
	text := datedLines(
		"ORIGINAL",
		"Factura C",
		"CONSULTORIO DR LOPEZ",
		"30123456789",
		"GARCIA",
		"MARIA",
		"Domicilio: AV SIEMPRE VIVA 123",
		"CUIT: 20304050607",
	)
	inv, err := NewParser(Options{SelfTaxID: "30123456789"}).Parse(text, "nombres.pdf")
	require.NoError(t, err)

	assert.Equal(t, "CONSULTORIO DR LOPEZ", inv.IssuerName)
	assert.Equal(t, "GARCIA MARIA", inv.ReceiverName)
}
