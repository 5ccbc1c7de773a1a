// Package store persists extracted invoices in SQLite and enforces
// duplicate detection.
//
// The duplicate key follows the record's DedupKey rule: the CAE when
// one was recovered, otherwise document number + issuer CUIT + document
// type. A UNIQUE index on that key makes the check race-safe when
// several batch workers extract the same file set concurrently.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"facturas/internal/logger"
	"facturas/pkg/models"
)

// ErrDuplicateInvoice is returned by Save when an invoice with the same
// dedup key is already stored.
var ErrDuplicateInvoice = errors.New("invoice already stored")

// Store is a SQLite-backed invoice repository.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Record is one stored invoice row, without its items.
type Record struct {
	ID            string
	InvoiceNumber string
	CAE           string
	EmissionDate  string
	IssuerTaxID   string
	ReceiverName  string
	TotalAmount   string
	NeedsReview   bool
	CreatedAt     time.Time
}

// Open opens (creating if needed) the SQLite database at path with WAL
// mode enabled and the schema initialized.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL for concurrent batch workers
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:  db,
		log: logger.WithComponent("store"),
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist.
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS invoices (
	id TEXT PRIMARY KEY,
	dedup_key TEXT UNIQUE NOT NULL,
	invoice_number TEXT,
	document_type TEXT,
	sales_point TEXT,
	document_number TEXT,
	cae TEXT,
	emission_date TEXT,
	period_from TEXT,
	period_to TEXT,
	issuer_tax_id TEXT,
	issuer_name TEXT,
	receiver_tax_id TEXT,
	receiver_name TEXT,
	total_amount TEXT,
	tax_condition TEXT,
	filename TEXT,
	needs_review INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS invoice_items (
	invoice_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	description TEXT,
	subtotal TEXT,
	patient_name TEXT,
	patient_id TEXT,
	affiliate_number TEXT,
	PRIMARY KEY (invoice_id, position),
	FOREIGN KEY(invoice_id) REFERENCES invoices(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_invoices_issuer ON invoices(issuer_tax_id);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Exists reports whether an invoice with the same dedup key is already
// stored.
func (s *Store) Exists(ctx context.Context, inv *models.ExtractedInvoice) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM invoices WHERE dedup_key = ?", inv.DedupKey()).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("exists check: %w", err)
	}
	return n > 0, nil
}

// Save stores one invoice and its items verbatim, returning the new
// record ID. ErrDuplicateInvoice is returned when the dedup key is
// already present; the check and the insert share one transaction so
// racing workers cannot both store the same invoice.
func (s *Store) Save(ctx context.Context, inv *models.ExtractedInvoice) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM invoices WHERE dedup_key = ?", inv.DedupKey()).Scan(&n); err != nil {
		return "", fmt.Errorf("duplicate check: %w", err)
	}
	if n > 0 {
		return "", ErrDuplicateInvoice
	}

	id := uuid.New().String()
	needsReview := 0
	if inv.NeedsReview() {
		needsReview = 1
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO invoices (
	id, dedup_key, invoice_number, document_type, sales_point, document_number,
	cae, emission_date, period_from, period_to,
	issuer_tax_id, issuer_name, receiver_tax_id, receiver_name,
	total_amount, tax_condition, filename, needs_review, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, inv.DedupKey(), inv.InvoiceNumber(), inv.DocumentType, inv.SalesPoint, inv.DocumentNumber,
		inv.CAE, sqlDate(inv.EmissionDate), sqlDate(inv.PeriodFrom), sqlDate(inv.PeriodTo),
		inv.IssuerTaxID, inv.IssuerName, inv.ReceiverTaxID, inv.ReceiverName,
		inv.TotalAmount, inv.TaxCondition, inv.Filename, needsReview,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("insert invoice: %w", err)
	}

	for pos, item := range inv.Items {
		_, err = tx.ExecContext(ctx, `
INSERT INTO invoice_items (invoice_id, position, description, subtotal, patient_name, patient_id, affiliate_number)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, pos, item.Description, item.Subtotal.StringFixed(2),
			item.PatientName, item.PatientID, item.AffiliateNumber,
		)
		if err != nil {
			return "", fmt.Errorf("insert item %d: %w", pos, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}

	s.log.Info().
		Str("id", id).
		Str("invoice", inv.InvoiceNumber()).
		Str("dedup_key", inv.DedupKey()).
		Int("items", len(inv.Items)).
		Msg("invoice stored")
	return id, nil
}

// List returns stored invoices, newest first.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, invoice_number, cae, COALESCE(emission_date, ''), issuer_tax_id,
	receiver_name, total_amount, needs_review, created_at
FROM invoices ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var needsReview int
		var createdAt string
		if err := rows.Scan(&r.ID, &r.InvoiceNumber, &r.CAE, &r.EmissionDate,
			&r.IssuerTaxID, &r.ReceiverName, &r.TotalAmount, &needsReview, &createdAt); err != nil {
			return nil, err
		}
		r.NeedsReview = needsReview != 0
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, r)
	}
	return records, rows.Err()
}

// sqlDate renders an optional date as ISO text, or NULL.
func sqlDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format("2006-01-02")
}
