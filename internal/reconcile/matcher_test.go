package reconcile

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aj2nd/Save2/internal/model"
)

func unpaidInvoice(id, vendor string, amount float64) model.Invoice {
	return model.Invoice{
		ID:         id,
		VendorName: vendor,
		Amount:     decimal.NewFromFloat(amount),
		Status:     model.StatusUnpaid,
	}
}

func outgoingTxn(id, description string, amount float64, date time.Time) model.BankTransaction {
	return model.BankTransaction{
		ID:          id,
		Description: description,
		Amount:      decimal.NewFromFloat(amount),
		Date:        date,
	}
}

func TestReconcile_BasicMatch(t *testing.T) {
	m := NewMatcher()
	date := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)

	invoices := []model.Invoice{unpaidInvoice("inv-1", "Acme", 250.00)}
	transactions := []model.BankTransaction{
		outgoingTxn("txn-1", "Payment to Acme LLC", -250.00, date),
	}

	result := m.Reconcile(invoices, transactions)

	require.Equal(t, 1, result.Matched)
	assert.Equal(t, model.StatusPaid, invoices[0].Status)
	assert.Equal(t, date, invoices[0].PaymentDate)
	assert.True(t, transactions[0].Reconciled)
	assert.Equal(t, "inv-1", transactions[0].MatchedInvoiceID)
}

func TestReconcile_VendorCaseInsensitive(t *testing.T) {
	m := NewMatcher()
	date := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)

	invoices := []model.Invoice{unpaidInvoice("inv-1", "ACME", 100.00)}
	transactions := []model.BankTransaction{
		outgoingTxn("txn-1", "transfer to acme trading", -100.00, date),
	}

	assert.Equal(t, 1, m.Reconcile(invoices, transactions).Matched)
}

func TestReconcile_NoMatch(t *testing.T) {
	m := NewMatcher()
	date := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		txn  model.BankTransaction
	}{
		{
			name: "amount differs",
			txn:  outgoingTxn("txn-1", "Payment to Acme", -250.01, date),
		},
		{
			name: "vendor not in description",
			txn:  outgoingTxn("txn-1", "Payment to Apex", -250.00, date),
		},
		{
			name: "incoming funds skipped",
			txn:  outgoingTxn("txn-1", "Refund from Acme", 250.00, date),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoices := []model.Invoice{unpaidInvoice("inv-1", "Acme", 250.00)}
			transactions := []model.BankTransaction{tt.txn}

			result := m.Reconcile(invoices, transactions)

			assert.Zero(t, result.Matched)
			assert.Equal(t, model.StatusUnpaid, invoices[0].Status)
			assert.False(t, transactions[0].Reconciled)
		})
	}
}

func TestReconcile_GreedyOneShot(t *testing.T) {
	m := NewMatcher()
	date := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)

	// Two identical invoices, two matching transactions: each invoice
	// is consumed by exactly one transaction, in stable input order.
	invoices := []model.Invoice{
		unpaidInvoice("inv-1", "Acme", 100.00),
		unpaidInvoice("inv-2", "Acme", 100.00),
	}
	transactions := []model.BankTransaction{
		outgoingTxn("txn-1", "Payment to Acme", -100.00, date),
		outgoingTxn("txn-2", "Payment to Acme", -100.00, date.AddDate(0, 0, 1)),
	}

	result := m.Reconcile(invoices, transactions)

	require.Equal(t, 2, result.Matched)
	assert.Equal(t, "inv-1", transactions[0].MatchedInvoiceID)
	assert.Equal(t, "inv-2", transactions[1].MatchedInvoiceID)
}

func TestReconcile_InvoiceConsumedOnce(t *testing.T) {
	m := NewMatcher()
	date := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)

	invoices := []model.Invoice{unpaidInvoice("inv-1", "Acme", 100.00)}
	transactions := []model.BankTransaction{
		outgoingTxn("txn-1", "Payment to Acme", -100.00, date),
		outgoingTxn("txn-2", "Second payment to Acme", -100.00, date),
	}

	result := m.Reconcile(invoices, transactions)

	require.Equal(t, 1, result.Matched)
	assert.True(t, transactions[0].Reconciled)
	assert.False(t, transactions[1].Reconciled)
}

func TestReconcile_AlreadySettledSkipped(t *testing.T) {
	m := NewMatcher()
	date := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)

	paid := unpaidInvoice("inv-1", "Acme", 100.00)
	paid.Status = model.StatusPaid
	invoices := []model.Invoice{paid}

	reconciled := outgoingTxn("txn-1", "Payment to Acme", -100.00, date)
	reconciled.Reconciled = true
	transactions := []model.BankTransaction{
		reconciled,
		outgoingTxn("txn-2", "Payment to Acme", -100.00, date),
	}

	result := m.Reconcile(invoices, transactions)
	assert.Zero(t, result.Matched)
}

func TestReconcile_Descriptions(t *testing.T) {
	m := NewMatcher()
	date := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)

	invoices := []model.Invoice{unpaidInvoice("inv-1", "Acme", 250.00)}
	transactions := []model.BankTransaction{
		outgoingTxn("txn-1", "Payment to Acme LLC", -250.00, date),
	}

	result := m.Reconcile(invoices, transactions)

	require.Len(t, result.Descriptions(), 1)
	assert.Equal(t, "Acme 250.00 paid on 2024-04-02", result.Descriptions()[0])
}
