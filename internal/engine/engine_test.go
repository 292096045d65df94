package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aj2nd/Save2/internal/common"
	"github.com/aj2nd/Save2/internal/model"
	"github.com/aj2nd/Save2/internal/service"
)

const sampleDocument = `DEWA
TRN: 100123456700003
Invoice No: INV-2025-001
Invoice Date: 15/03/2025
Electricity charges for March

Subtotal: 100.48
VAT 5%: 5.02
Total: AED 105.50`

func TestEngine_ProcessDocument(t *testing.T) {
	store := newMockStorage()
	eng := New(store)
	ctx := context.Background()

	outcome, err := eng.ProcessDocument(ctx, "owner-1", sampleDocument)
	require.NoError(t, err)
	require.NotNil(t, outcome.Invoice)
	assert.False(t, outcome.Duplicate)

	inv := outcome.Invoice
	assert.Equal(t, "owner-1", inv.OwnerID)
	assert.Equal(t, "DEWA", inv.VendorName)
	assert.Equal(t, "INV-2025-001", inv.InvoiceNumber)
	assert.Equal(t, "100123456700003", inv.VendorTaxID)
	assert.True(t, inv.Amount.Equal(decimal.RequireFromString("105.50")))
	assert.Equal(t, model.CategoryUtilities, inv.Category)
	assert.Equal(t, model.StatusUnpaid, inv.Status)
	assert.Equal(t, model.DefaultCurrency, inv.Currency)
	assert.True(t, inv.DateExtracted)
	assert.Empty(t, inv.Findings)
	assert.False(t, inv.NeedsReview)
	assert.NotEmpty(t, inv.Fingerprint)

	saved, err := store.GetInvoiceByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.Fingerprint, saved.Fingerprint)
}

func TestEngine_ProcessDocumentCustomThreshold(t *testing.T) {
	eng := NewWithConfig(newMockStorage(), Config{ReviewThreshold: 0.99})

	outcome, err := eng.ProcessDocument(context.Background(), "owner-1", sampleDocument)
	require.NoError(t, err)
	assert.True(t, outcome.Invoice.NeedsReview)
	assert.Less(t, outcome.Invoice.Confidence, 0.99)
}

func TestEngine_ProcessDocumentCustomCurrency(t *testing.T) {
	eng := NewWithConfig(newMockStorage(), Config{Currency: "USD"})

	// No currency token in the document, so the configured default
	// applies.
	doc := `DEWA
Invoice No: INV-2025-009
Invoice Date: 15/03/2025
Total: 105.50`

	outcome, err := eng.ProcessDocument(context.Background(), "owner-1", doc)
	require.NoError(t, err)
	assert.Equal(t, "USD", outcome.Invoice.Currency)
	assert.True(t, outcome.Invoice.TaxRate.Equal(model.DefaultTaxRate))
}

func TestEngine_ProcessDocumentDuplicate(t *testing.T) {
	store := newMockStorage()
	eng := New(store)
	ctx := context.Background()

	first, err := eng.ProcessDocument(ctx, "owner-1", sampleDocument)
	require.NoError(t, err)
	require.False(t, first.Duplicate)

	second, err := eng.ProcessDocument(ctx, "owner-1", sampleDocument)
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Equal(t, first.Invoice.Fingerprint, second.Invoice.Fingerprint)

	invoices, err := store.GetInvoices(ctx, "owner-1", service.InvoiceFilter{})
	require.NoError(t, err)
	assert.Len(t, invoices, 1)
}

func TestEngine_ProcessDocumentDifferentOwnersNotDuplicates(t *testing.T) {
	store := newMockStorage()
	eng := New(store)
	ctx := context.Background()

	first, err := eng.ProcessDocument(ctx, "owner-1", sampleDocument)
	require.NoError(t, err)
	assert.False(t, first.Duplicate)

	second, err := eng.ProcessDocument(ctx, "owner-2", sampleDocument)
	require.NoError(t, err)
	assert.False(t, second.Duplicate)
}

func TestEngine_ProcessDocumentMalformed(t *testing.T) {
	eng := New(newMockStorage())

	_, err := eng.ProcessDocument(context.Background(), "owner-1", "   \n\t  ")
	assert.ErrorIs(t, err, common.ErrMalformedInput)

	_, err = eng.ProcessDocument(context.Background(), "", sampleDocument)
	assert.ErrorIs(t, err, common.ErrMalformedInput)
}

func TestEngine_ProcessDocumentSaveRace(t *testing.T) {
	store := newMockStorage()
	store.saveErr = fmt.Errorf("wrapped: %w", common.ErrDuplicateInvoice)
	eng := New(store)

	outcome, err := eng.ProcessDocument(context.Background(), "owner-1", sampleDocument)
	require.NoError(t, err)
	assert.True(t, outcome.Duplicate)
}

func TestEngine_Reconcile(t *testing.T) {
	store := newMockStorage()
	eng := New(store)
	ctx := context.Background()

	outcome, err := eng.ProcessDocument(ctx, "owner-1", sampleDocument)
	require.NoError(t, err)

	require.NoError(t, store.SaveTransactions(ctx, []model.BankTransaction{
		{
			ID:          "txn-1",
			OwnerID:     "owner-1",
			Date:        time.Date(2025, 3, 22, 0, 0, 0, 0, time.UTC),
			Description: "Online payment DEWA Dubai",
			Amount:      decimal.RequireFromString("-105.50"),
		},
		{
			ID:          "txn-2",
			OwnerID:     "owner-1",
			Date:        time.Date(2025, 3, 23, 0, 0, 0, 0, time.UTC),
			Description: "Grocery store",
			Amount:      decimal.RequireFromString("-88.00"),
		},
	}))

	result, err := eng.Reconcile(ctx, "owner-1")
	require.NoError(t, err)
	require.Equal(t, 1, result.Matched)
	require.Len(t, result.Pairs, 1)
	assert.Equal(t, outcome.Invoice.ID, result.Pairs[0].InvoiceID)
	assert.Equal(t, "txn-1", result.Pairs[0].TransactionID)

	inv, err := store.GetInvoiceByID(ctx, outcome.Invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, inv.Status)
	assert.True(t, inv.PaymentDate.Equal(time.Date(2025, 3, 22, 0, 0, 0, 0, time.UTC)))

	remaining, err := store.GetUnreconciledTransactions(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "txn-2", remaining[0].ID)

	// A second run has nothing left to match.
	result, err = eng.Reconcile(ctx, "owner-1")
	require.NoError(t, err)
	assert.Zero(t, result.Matched)
}

func TestEngine_ReconcileEarliestInvoiceWins(t *testing.T) {
	store := newMockStorage()
	eng := New(store)
	ctx := context.Background()

	// Two unpaid DEWA invoices for the same amount; only the dates
	// differ, so both are candidates for the single payment.
	february := `DEWA
Invoice No: INV-2025-002
Invoice Date: 15/02/2025
Total: AED 105.50`
	march := `DEWA
Invoice No: INV-2025-003
Invoice Date: 15/03/2025
Total: AED 105.50`

	first, err := eng.ProcessDocument(ctx, "owner-1", february)
	require.NoError(t, err)
	second, err := eng.ProcessDocument(ctx, "owner-1", march)
	require.NoError(t, err)
	require.NotEqual(t, first.Invoice.Fingerprint, second.Invoice.Fingerprint)

	require.NoError(t, store.SaveTransactions(ctx, []model.BankTransaction{{
		ID:          "txn-1",
		OwnerID:     "owner-1",
		Date:        time.Date(2025, 3, 22, 0, 0, 0, 0, time.UTC),
		Description: "Online payment DEWA Dubai",
		Amount:      decimal.RequireFromString("-105.50"),
	}}))

	result, err := eng.Reconcile(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, result.Pairs, 1)
	assert.Equal(t, first.Invoice.ID, result.Pairs[0].InvoiceID)

	older, err := store.GetInvoiceByID(ctx, first.Invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, older.Status)

	newer, err := store.GetInvoiceByID(ctx, second.Invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusUnpaid, newer.Status)
}

func TestEngine_ReconcileEmpty(t *testing.T) {
	eng := New(newMockStorage())

	result, err := eng.Reconcile(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Zero(t, result.Matched)
	assert.Empty(t, result.Pairs)
}
