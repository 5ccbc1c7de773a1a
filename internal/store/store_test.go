package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturas/pkg/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "facturas.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleInvoice() *models.ExtractedInvoice {
	emission := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return &models.ExtractedInvoice{
		Filename:       "factura_0003-00001234.pdf",
		EmissionDate:   &emission,
		DocumentType:   "C",
		SalesPoint:     "0003",
		DocumentNumber: "00001234",
		CAE:            "74123456789012",
		IssuerTaxID:    "30123456789",
		IssuerName:     "CONSULTORIO DR LOPEZ",
		ReceiverTaxID:  "20304050607",
		ReceiverName:   "GARCIA MARIA",
		TotalAmount:    "1500.00",
		TaxCondition:   "IVA Responsable Inscripto",
		Items: []models.LineItem{
			{
				Description: "HONORARIOS SESION",
				Subtotal:    decimal.RequireFromString("1500.00"),
				PatientID:   "40111222",
			},
		},
	}
}

func TestSaveAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Save(ctx, sampleInvoice())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	records, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, id, r.ID)
	assert.Equal(t, "0003-00001234", r.InvoiceNumber)
	assert.Equal(t, "74123456789012", r.CAE)
	assert.Equal(t, "2024-03-01", r.EmissionDate)
	assert.Equal(t, "1500.00", r.TotalAmount)
	assert.False(t, r.NeedsReview)
}

func TestSaveRejectsDuplicateByCAE(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Save(ctx, sampleInvoice())
	require.NoError(t, err)

	dup := sampleInvoice()
	dup.Filename = "copia.pdf" // same CAE, different file
	_, err = s.Save(ctx, dup)
	assert.ErrorIs(t, err, ErrDuplicateInvoice)

	records, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestSaveDedupFallsBackToDocumentKey(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := sampleInvoice()
	first.CAE = ""
	_, err := s.Save(ctx, first)
	require.NoError(t, err)

	// Same number + issuer + type without CAE is the same invoice.
	second := sampleInvoice()
	second.CAE = ""
	_, err = s.Save(ctx, second)
	assert.ErrorIs(t, err, ErrDuplicateInvoice)

	// A different document number is a new invoice.
	third := sampleInvoice()
	third.CAE = ""
	third.DocumentNumber = "00001235"
	_, err = s.Save(ctx, third)
	assert.NoError(t, err)
}

func TestExists(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	inv := sampleInvoice()
	ok, err := s.Exists(ctx, inv)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Save(ctx, inv)
	require.NoError(t, err)

	ok, err = s.Exists(ctx, inv)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSaveFlagsIncompleteRecordForReview(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	inv := sampleInvoice()
	inv.TotalAmount = ""
	_, err := s.Save(ctx, inv)
	require.NoError(t, err)

	records, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].NeedsReview)
}
