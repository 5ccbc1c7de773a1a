package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInvoiceNumber(t *testing.T) {
	inv := &ExtractedInvoice{SalesPoint: "0003", DocumentNumber: "00001234"}
	assert.Equal(t, "0003-00001234", inv.InvoiceNumber())

	assert.Equal(t, "", (&ExtractedInvoice{}).InvoiceNumber())
}

func TestDedupKeyPrefersCAE(t *testing.T) {
	inv := &ExtractedInvoice{
		CAE:            "74123456789012",
		DocumentNumber: "00001234",
		IssuerTaxID:    "30123456789",
		DocumentType:   "C",
	}
	assert.Equal(t, "cae:74123456789012", inv.DedupKey())

	inv.CAE = ""
	assert.Equal(t, "doc:00001234:30123456789:C", inv.DedupKey())
}

func TestNeedsReview(t *testing.T) {
	emission := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	complete := &ExtractedInvoice{
		EmissionDate:  &emission,
		TotalAmount:   "1500.00",
		ReceiverTaxID: "20304050607",
		CAE:           "74123456789012",
	}
	assert.False(t, complete.NeedsReview())

	for _, mutate := range []func(*ExtractedInvoice){
		func(i *ExtractedInvoice) { i.EmissionDate = nil },
		func(i *ExtractedInvoice) { i.TotalAmount = "" },
		func(i *ExtractedInvoice) { i.ReceiverTaxID = "" },
		func(i *ExtractedInvoice) { i.CAE = "" },
	} {
		inv := *complete
		mutate(&inv)
		assert.True(t, inv.NeedsReview())
	}
}
