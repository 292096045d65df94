// Package model defines the core domain models used throughout the application.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus tracks whether an invoice has been settled.
type InvoiceStatus string

// Invoice status constants.
const (
	StatusUnpaid InvoiceStatus = "unpaid"
	StatusPaid   InvoiceStatus = "paid"
)

// UnknownVendor is the sentinel vendor name used when extraction found
// no vendor identity. It is distinguishable from any real extraction.
const UnknownVendor = "Unknown Vendor"

// DefaultCurrency is the currency assumed when the document states none.
const DefaultCurrency = "AED"

// DefaultTaxRate is the standard VAT rate (percent) applied when the
// document does not state one.
var DefaultTaxRate = decimal.NewFromInt(5)

// LineItem is a single <description, quantity, amount> row from an invoice.
type LineItem struct {
	Description string
	Quantity    int
	Amount      decimal.Decimal
}

// Invoice is the structured record produced from one OCR text.
// Once validated it is immutable except for Status and PaymentDate,
// which reconciliation updates when a bank transaction settles it.
type Invoice struct {
	InvoiceDate   time.Time
	DueDate       time.Time
	PaymentDate   time.Time
	CreatedAt     time.Time
	ID            string
	OwnerID       string
	RawText       string
	InvoiceNumber string
	VendorName    string
	VendorTaxID   string
	VendorPhone   string
	VendorAddress string
	Description   string
	Currency      string
	Fingerprint   string
	Category      Category
	Status        InvoiceStatus
	LineItems     []LineItem
	Findings      []Finding
	Amount        decimal.Decimal
	Subtotal      decimal.Decimal
	TaxAmount     decimal.Decimal
	TaxRate       decimal.Decimal
	Confidence    float64
	NeedsReview   bool

	// DateExtracted is false when InvoiceDate was defaulted to the
	// processing day rather than read from the document.
	DateExtracted bool
}

// VendorIdentified reports whether extraction found a real vendor name.
func (inv *Invoice) VendorIdentified() bool {
	return inv.VendorName != "" && inv.VendorName != UnknownVendor
}
