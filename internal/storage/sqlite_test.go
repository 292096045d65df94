package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aj2nd/Save2/internal/common"
	"github.com/aj2nd/Save2/internal/model"
	"github.com/aj2nd/Save2/internal/service"
)

func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)

	require.NoError(t, store.Migrate(context.Background()))

	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testInvoice(id, ownerID, fingerprint string) *model.Invoice {
	return &model.Invoice{
		ID:            id,
		OwnerID:       ownerID,
		Fingerprint:   fingerprint,
		InvoiceNumber: "INV-1001",
		VendorName:    "DEWA",
		VendorTaxID:   "100123456700003",
		Amount:        decimal.RequireFromString("105.50"),
		Subtotal:      decimal.RequireFromString("100.48"),
		TaxAmount:     decimal.RequireFromString("5.02"),
		TaxRate:       decimal.NewFromInt(5),
		Currency:      model.DefaultCurrency,
		InvoiceDate:   time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		DateExtracted: true,
		Category:      model.CategoryUtilities,
		Status:        model.StatusUnpaid,
		Confidence:    0.9,
		LineItems: []model.LineItem{
			{Description: "Electricity", Quantity: 1, Amount: decimal.RequireFromString("100.48")},
		},
	}
}

func TestSQLiteStorage_SaveAndGetInvoice(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	inv := testInvoice("inv-1", "owner-1", "fp-1")
	require.NoError(t, store.SaveInvoice(ctx, inv))

	got, err := store.GetInvoiceByID(ctx, "inv-1")
	require.NoError(t, err)

	assert.Equal(t, inv.OwnerID, got.OwnerID)
	assert.Equal(t, inv.Fingerprint, got.Fingerprint)
	assert.Equal(t, inv.InvoiceNumber, got.InvoiceNumber)
	assert.Equal(t, inv.VendorName, got.VendorName)
	assert.Equal(t, inv.VendorTaxID, got.VendorTaxID)
	assert.True(t, inv.Amount.Equal(got.Amount), "amount %s != %s", inv.Amount, got.Amount)
	assert.True(t, inv.Subtotal.Equal(got.Subtotal))
	assert.True(t, inv.TaxAmount.Equal(got.TaxAmount))
	assert.Equal(t, model.CategoryUtilities, got.Category)
	assert.Equal(t, model.StatusUnpaid, got.Status)
	assert.True(t, got.DateExtracted)
	assert.True(t, got.PaymentDate.IsZero())
	require.Len(t, got.LineItems, 1)
	assert.Equal(t, "Electricity", got.LineItems[0].Description)
}

func TestSQLiteStorage_SaveInvoiceDuplicateFingerprint(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveInvoice(ctx, testInvoice("inv-1", "owner-1", "fp-dup")))

	err := store.SaveInvoice(ctx, testInvoice("inv-2", "owner-1", "fp-dup"))
	assert.ErrorIs(t, err, common.ErrDuplicateInvoice)

	// Same fingerprint under a different owner is not a duplicate.
	assert.NoError(t, store.SaveInvoice(ctx, testInvoice("inv-3", "owner-2", "fp-dup")))
}

func TestSQLiteStorage_GetInvoiceByIDNotFound(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.GetInvoiceByID(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStorage_ExistingFingerprints(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveInvoice(ctx, testInvoice("inv-1", "owner-1", "fp-1")))
	require.NoError(t, store.SaveInvoice(ctx, testInvoice("inv-2", "owner-1", "fp-2")))
	require.NoError(t, store.SaveInvoice(ctx, testInvoice("inv-3", "owner-2", "fp-3")))

	fps, err := store.ExistingFingerprints(ctx, "owner-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"fp-1", "fp-2"}, fps)
}

func TestSQLiteStorage_GetUnpaidInvoices(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	unpaid := testInvoice("inv-1", "owner-1", "fp-1")
	paid := testInvoice("inv-2", "owner-1", "fp-2")
	paid.Status = model.StatusPaid
	paid.PaymentDate = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveInvoice(ctx, unpaid))
	require.NoError(t, store.SaveInvoice(ctx, paid))

	invoices, err := store.GetUnpaidInvoices(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "inv-1", invoices[0].ID)
}

func TestSQLiteStorage_GetInvoicesFilter(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	review := testInvoice("inv-1", "owner-1", "fp-1")
	review.NeedsReview = true
	clean := testInvoice("inv-2", "owner-1", "fp-2")
	clean.Category = model.CategoryTransportation
	require.NoError(t, store.SaveInvoice(ctx, review))
	require.NoError(t, store.SaveInvoice(ctx, clean))

	needsReview := true
	invoices, err := store.GetInvoices(ctx, "owner-1", service.InvoiceFilter{NeedsReview: &needsReview})
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "inv-1", invoices[0].ID)

	invoices, err = store.GetInvoices(ctx, "owner-1", service.InvoiceFilter{Category: string(model.CategoryTransportation)})
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "inv-2", invoices[0].ID)
}

func TestSQLiteStorage_SaveAndGetTransactions(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	txns := []model.BankTransaction{
		{
			ID:          "txn-1",
			OwnerID:     "owner-1",
			Date:        time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
			Description: "POS purchase DEWA",
			Amount:      decimal.RequireFromString("-105.50"),
		},
		{
			ID:          "txn-2",
			OwnerID:     "owner-1",
			Date:        time.Date(2025, 3, 21, 0, 0, 0, 0, time.UTC),
			Description: "Salary credit",
			Amount:      decimal.RequireFromString("12000.00"),
		},
	}
	require.NoError(t, store.SaveTransactions(ctx, txns))

	got, err := store.GetUnreconciledTransactions(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "txn-1", got[0].ID)
	assert.True(t, got[0].Amount.Equal(decimal.RequireFromString("-105.50")))
	assert.True(t, got[0].Outgoing())
	assert.False(t, got[1].Outgoing())

	// Re-import is a no-op.
	require.NoError(t, store.SaveTransactions(ctx, txns))
	got, err = store.GetUnreconciledTransactions(ctx, "owner-1")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSQLiteStorage_MarkReconciled(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveInvoice(ctx, testInvoice("inv-1", "owner-1", "fp-1")))
	require.NoError(t, store.SaveTransactions(ctx, []model.BankTransaction{{
		ID:          "txn-1",
		OwnerID:     "owner-1",
		Date:        time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
		Description: "DEWA payment",
		Amount:      decimal.RequireFromString("-105.50"),
	}}))

	paymentDate := time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.MarkReconciled(ctx, "inv-1", "txn-1", paymentDate))

	inv, err := store.GetInvoiceByID(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, inv.Status)
	assert.True(t, inv.PaymentDate.Equal(paymentDate))

	txns, err := store.GetUnreconciledTransactions(ctx, "owner-1")
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestSQLiteStorage_MarkReconciledMissingInvoice(t *testing.T) {
	store := createTestStorage(t)

	err := store.MarkReconciled(context.Background(), "missing", "txn-1", time.Now())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStorage_GetSummary(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	first := testInvoice("inv-1", "owner-1", "fp-1")
	second := testInvoice("inv-2", "owner-1", "fp-2")
	second.Amount = decimal.RequireFromString("200.00")
	second.TaxAmount = decimal.RequireFromString("9.52")
	second.Category = model.CategoryTransportation
	second.Status = model.StatusPaid
	second.PaymentDate = time.Date(2025, 3, 25, 0, 0, 0, 0, time.UTC)
	second.NeedsReview = true
	require.NoError(t, store.SaveInvoice(ctx, first))
	require.NoError(t, store.SaveInvoice(ctx, second))

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	summary, err := store.GetSummary(ctx, "owner-1", start, end)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalCount)
	assert.True(t, summary.TotalAmount.Equal(decimal.RequireFromString("305.50")))
	assert.True(t, summary.TaxAmount.Equal(decimal.RequireFromString("14.54")))
	assert.Equal(t, 1, summary.UnpaidCount)
	assert.True(t, summary.UnpaidAmount.Equal(decimal.RequireFromString("105.50")))
	assert.Equal(t, 1, summary.ReviewCount)
	assert.Len(t, summary.ByCategory, 2)
}

func TestSQLiteStorage_UpdateInvoiceCategory(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveInvoice(ctx, testInvoice("inv-1", "owner-1", "fp-1")))

	require.NoError(t, store.UpdateInvoiceCategory(ctx, "inv-1", model.CategoryOfficeRent))
	inv, err := store.GetInvoiceByID(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryOfficeRent, inv.Category)

	assert.Error(t, store.UpdateInvoiceCategory(ctx, "inv-1", model.Category("Nonsense")))
	assert.ErrorIs(t, store.UpdateInvoiceCategory(ctx, "missing", model.CategoryOfficeRent), common.ErrNotFound)
}

func TestSQLiteStorage_ClearReviewFlag(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	inv := testInvoice("inv-1", "owner-1", "fp-1")
	inv.NeedsReview = true
	require.NoError(t, store.SaveInvoice(ctx, inv))

	require.NoError(t, store.ClearReviewFlag(ctx, "inv-1"))
	got, err := store.GetInvoiceByID(ctx, "inv-1")
	require.NoError(t, err)
	assert.False(t, got.NeedsReview)
}

func TestSQLiteStorage_ValidationErrors(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	assert.Error(t, store.SaveInvoice(ctx, nil))
	assert.Error(t, store.SaveInvoice(ctx, &model.Invoice{ID: "x"}))
	assert.Error(t, store.SaveTransactions(ctx, nil))
	assert.Error(t, store.SaveTransactions(ctx, []model.BankTransaction{}))
	_, err := store.GetInvoices(ctx, "", service.InvoiceFilter{})
	assert.Error(t, err)
}
