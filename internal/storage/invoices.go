package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aj2nd/Save2/internal/common"
	"github.com/aj2nd/Save2/internal/model"
	"github.com/aj2nd/Save2/internal/service"
)

const invoiceColumns = `id, owner_id, fingerprint, invoice_number, vendor_name, vendor_tax_id,
	vendor_phone, vendor_address, amount, subtotal, tax_amount, tax_rate, currency,
	invoice_date, date_extracted, due_date, category, description, line_items, findings,
	confidence, needs_review, status, payment_date, raw_text, created_at`

// SaveInvoice persists a processed invoice.
func (s *SQLiteStorage) SaveInvoice(ctx context.Context, invoice *model.Invoice) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateInvoice(invoice); err != nil {
		return err
	}

	lineItemsJSON, err := json.Marshal(invoice.LineItems)
	if err != nil {
		return fmt.Errorf("failed to marshal line items: %w", err)
	}
	findingsJSON, err := json.Marshal(invoice.Findings)
	if err != nil {
		return fmt.Errorf("failed to marshal findings: %w", err)
	}

	var dueDate, paymentDate any
	if !invoice.DueDate.IsZero() {
		dueDate = invoice.DueDate
	}
	if !invoice.PaymentDate.IsZero() {
		paymentDate = invoice.PaymentDate
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO invoices (
			id, owner_id, fingerprint, invoice_number, vendor_name, vendor_tax_id,
			vendor_phone, vendor_address, amount, subtotal, tax_amount, tax_rate, currency,
			invoice_date, date_extracted, due_date, category, description, line_items, findings,
			confidence, needs_review, status, payment_date, raw_text
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		invoice.ID,
		invoice.OwnerID,
		invoice.Fingerprint,
		invoice.InvoiceNumber,
		invoice.VendorName,
		invoice.VendorTaxID,
		invoice.VendorPhone,
		invoice.VendorAddress,
		invoice.Amount.String(),
		invoice.Subtotal.String(),
		invoice.TaxAmount.String(),
		invoice.TaxRate.String(),
		invoice.Currency,
		invoice.InvoiceDate,
		invoice.DateExtracted,
		dueDate,
		string(invoice.Category),
		invoice.Description,
		string(lineItemsJSON),
		string(findingsJSON),
		invoice.Confidence,
		invoice.NeedsReview,
		string(invoice.Status),
		paymentDate,
		invoice.RawText,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: fingerprint %s", common.ErrDuplicateInvoice, invoice.Fingerprint)
		}
		return fmt.Errorf("failed to save invoice: %w", err)
	}

	return nil
}

// GetInvoiceByID retrieves a single invoice.
func (s *SQLiteStorage) GetInvoiceByID(ctx context.Context, id string) (*model.Invoice, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM invoices WHERE id = ?", invoiceColumns), id)

	invoice, err := scanInvoice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: invoice %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return invoice, nil
}

// GetInvoices retrieves invoices for an owner, newest first.
func (s *SQLiteStorage) GetInvoices(ctx context.Context, ownerID string, filter service.InvoiceFilter) ([]model.Invoice, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(ownerID, "ownerID"); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM invoices WHERE owner_id = ?", invoiceColumns)
	args := []any{ownerID}

	if filter.Status != nil {
		query += " AND status = ?"
		args = append(args, string(*filter.Status))
	}
	if filter.NeedsReview != nil {
		query += " AND needs_review = ?"
		args = append(args, *filter.NeedsReview)
	}
	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, filter.Category)
	}
	query += " ORDER BY invoice_date DESC, created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectInvoices(rows)
}

// GetUnpaidInvoices retrieves all unpaid invoices for an owner in
// processing order.
func (s *SQLiteStorage) GetUnpaidInvoices(ctx context.Context, ownerID string) ([]model.Invoice, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(ownerID, "ownerID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM invoices WHERE owner_id = ? AND status = ? ORDER BY created_at ASC", invoiceColumns),
		ownerID, string(model.StatusUnpaid))
	if err != nil {
		return nil, fmt.Errorf("failed to query unpaid invoices: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectInvoices(rows)
}

// ExistingFingerprints returns every invoice fingerprint recorded for
// an owner.
func (s *SQLiteStorage) ExistingFingerprints(ctx context.Context, ownerID string) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(ownerID, "ownerID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT fingerprint FROM invoices WHERE owner_id = ?", ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fingerprints: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var fingerprints []string
	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return nil, fmt.Errorf("failed to scan fingerprint: %w", err)
		}
		fingerprints = append(fingerprints, fp)
	}
	return fingerprints, rows.Err()
}

// UpdateInvoiceCategory reassigns an invoice's expense category.
func (s *SQLiteStorage) UpdateInvoiceCategory(ctx context.Context, id string, category model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	if !model.ValidCategory(category) {
		return fmt.Errorf("unknown category %q", category)
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE invoices SET category = ? WHERE id = ?", string(category), id)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return requireRowAffected(result, id)
}

// ClearReviewFlag marks an invoice as reviewed.
func (s *SQLiteStorage) ClearReviewFlag(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE invoices SET needs_review = 0 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to clear review flag: %w", err)
	}
	return requireRowAffected(result, id)
}

// GetSummary aggregates invoices for an owner over a date range.
func (s *SQLiteStorage) GetSummary(ctx context.Context, ownerID string, start, end time.Time) (*service.Summary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(ownerID, "ownerID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM invoices WHERE owner_id = ? AND invoice_date >= ? AND invoice_date <= ?", invoiceColumns),
		ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices for summary: %w", err)
	}
	defer func() { _ = rows.Close() }()

	invoices, err := collectInvoices(rows)
	if err != nil {
		return nil, err
	}

	// Aggregate in Go so decimal amounts stay exact.
	summary := &service.Summary{}
	byCategory := make(map[model.Category]*service.CategorySummary)
	var order []model.Category
	for i := range invoices {
		inv := &invoices[i]
		summary.TotalCount++
		summary.TotalAmount = summary.TotalAmount.Add(inv.Amount)
		summary.TaxAmount = summary.TaxAmount.Add(inv.TaxAmount)
		if inv.Status == model.StatusUnpaid {
			summary.UnpaidCount++
			summary.UnpaidAmount = summary.UnpaidAmount.Add(inv.Amount)
		}
		if inv.NeedsReview {
			summary.ReviewCount++
		}
		cs, ok := byCategory[inv.Category]
		if !ok {
			cs = &service.CategorySummary{Category: inv.Category}
			byCategory[inv.Category] = cs
			order = append(order, inv.Category)
		}
		cs.Count++
		cs.Amount = cs.Amount.Add(inv.Amount)
	}
	if summary.TotalCount > 0 {
		summary.AverageAmount = summary.TotalAmount.Div(decimal.NewFromInt(int64(summary.TotalCount))).Round(2)
	}
	for _, cat := range order {
		summary.ByCategory = append(summary.ByCategory, *byCategory[cat])
	}

	return summary, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (*model.Invoice, error) {
	var inv model.Invoice
	var amount, subtotal, taxAmount, taxRate, category, status string
	var lineItemsJSON, findingsJSON sql.NullString
	var invoiceNumber, vendorTaxID, vendorPhone, vendorAddress, description, rawText sql.NullString
	var dueDate, paymentDate sql.NullTime

	err := row.Scan(
		&inv.ID,
		&inv.OwnerID,
		&inv.Fingerprint,
		&invoiceNumber,
		&inv.VendorName,
		&vendorTaxID,
		&vendorPhone,
		&vendorAddress,
		&amount,
		&subtotal,
		&taxAmount,
		&taxRate,
		&inv.Currency,
		&inv.InvoiceDate,
		&inv.DateExtracted,
		&dueDate,
		&category,
		&description,
		&lineItemsJSON,
		&findingsJSON,
		&inv.Confidence,
		&inv.NeedsReview,
		&status,
		&paymentDate,
		&rawText,
		&inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	inv.InvoiceNumber = invoiceNumber.String
	inv.VendorTaxID = vendorTaxID.String
	inv.VendorPhone = vendorPhone.String
	inv.VendorAddress = vendorAddress.String
	inv.Description = description.String
	inv.RawText = rawText.String
	inv.Category = model.Category(category)
	inv.Status = model.InvoiceStatus(status)
	if dueDate.Valid {
		inv.DueDate = dueDate.Time
	}
	if paymentDate.Valid {
		inv.PaymentDate = paymentDate.Time
	}

	if inv.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("%w: bad amount %q: %v", common.ErrDatabaseCorrupted, amount, err)
	}
	if inv.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return nil, fmt.Errorf("%w: bad subtotal %q: %v", common.ErrDatabaseCorrupted, subtotal, err)
	}
	if inv.TaxAmount, err = decimal.NewFromString(taxAmount); err != nil {
		return nil, fmt.Errorf("%w: bad tax amount %q: %v", common.ErrDatabaseCorrupted, taxAmount, err)
	}
	if inv.TaxRate, err = decimal.NewFromString(taxRate); err != nil {
		return nil, fmt.Errorf("%w: bad tax rate %q: %v", common.ErrDatabaseCorrupted, taxRate, err)
	}

	if lineItemsJSON.Valid && lineItemsJSON.String != "" && lineItemsJSON.String != "null" {
		if err := json.Unmarshal([]byte(lineItemsJSON.String), &inv.LineItems); err != nil {
			return nil, fmt.Errorf("%w: bad line items: %v", common.ErrDatabaseCorrupted, err)
		}
	}
	if findingsJSON.Valid && findingsJSON.String != "" && findingsJSON.String != "null" {
		if err := json.Unmarshal([]byte(findingsJSON.String), &inv.Findings); err != nil {
			return nil, fmt.Errorf("%w: bad findings: %v", common.ErrDatabaseCorrupted, err)
		}
	}

	return &inv, nil
}

func collectInvoices(rows *sql.Rows) ([]model.Invoice, error) {
	var invoices []model.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

func requireRowAffected(result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: invoice %s", common.ErrNotFound, id)
	}
	return nil
}
