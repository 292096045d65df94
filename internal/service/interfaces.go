// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aj2nd/Save2/internal/model"
)

// InvoiceFilter defines filtering options for invoice queries.
type InvoiceFilter struct {
	Status      *model.InvoiceStatus
	NeedsReview *bool
	Category    string
	Limit       int
	Offset      int
}

// CategorySummary aggregates spend for one expense category.
type CategorySummary struct {
	Category model.Category
	Count    int
	Amount   decimal.Decimal
}

// Summary aggregates an owner's invoices for reporting.
type Summary struct {
	TotalAmount   decimal.Decimal
	UnpaidAmount  decimal.Decimal
	TaxAmount     decimal.Decimal
	AverageAmount decimal.Decimal
	ByCategory    []CategorySummary
	TotalCount    int
	UnpaidCount   int
	ReviewCount   int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Invoice operations
	SaveInvoice(ctx context.Context, invoice *model.Invoice) error
	GetInvoiceByID(ctx context.Context, id string) (*model.Invoice, error)
	GetInvoices(ctx context.Context, ownerID string, filter InvoiceFilter) ([]model.Invoice, error)
	GetUnpaidInvoices(ctx context.Context, ownerID string) ([]model.Invoice, error)
	ExistingFingerprints(ctx context.Context, ownerID string) ([]string, error)
	UpdateInvoiceCategory(ctx context.Context, id string, category model.Category) error
	ClearReviewFlag(ctx context.Context, id string) error

	// Bank transaction operations
	SaveTransactions(ctx context.Context, transactions []model.BankTransaction) error
	GetUnreconciledTransactions(ctx context.Context, ownerID string) ([]model.BankTransaction, error)
	MarkReconciled(ctx context.Context, invoiceID, transactionID string, paymentDate time.Time) error

	// Reporting
	GetSummary(ctx context.Context, ownerID string, start, end time.Time) (*Summary, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}
