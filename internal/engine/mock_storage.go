package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aj2nd/Save2/internal/common"
	"github.com/aj2nd/Save2/internal/model"
	"github.com/aj2nd/Save2/internal/service"
)

// mockStorage is an in-memory Storage for engine tests. Listings keep
// insertion order, matching the creation-order guarantee of the real
// implementation.
type mockStorage struct {
	mu               sync.Mutex
	invoices         map[string]*model.Invoice
	invoiceOrder     []string
	transactions     map[string]*model.BankTransaction
	transactionOrder []string
	saveErr          error
}

func newMockStorage() *mockStorage {
	return &mockStorage{
		invoices:     make(map[string]*model.Invoice),
		transactions: make(map[string]*model.BankTransaction),
	}
}

func (m *mockStorage) SaveInvoice(_ context.Context, invoice *model.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	for _, inv := range m.invoices {
		if inv.OwnerID == invoice.OwnerID && inv.Fingerprint == invoice.Fingerprint {
			return fmt.Errorf("%w: fingerprint %s", common.ErrDuplicateInvoice, invoice.Fingerprint)
		}
	}
	cp := *invoice
	m.invoices[invoice.ID] = &cp
	m.invoiceOrder = append(m.invoiceOrder, invoice.ID)
	return nil
}

func (m *mockStorage) GetInvoiceByID(_ context.Context, id string) (*model.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id]
	if !ok {
		return nil, fmt.Errorf("%w: invoice %s", common.ErrNotFound, id)
	}
	cp := *inv
	return &cp, nil
}

func (m *mockStorage) GetInvoices(_ context.Context, ownerID string, _ service.InvoiceFilter) ([]model.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Invoice
	for _, id := range m.invoiceOrder {
		if inv := m.invoices[id]; inv.OwnerID == ownerID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (m *mockStorage) GetUnpaidInvoices(_ context.Context, ownerID string) ([]model.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Invoice
	for _, id := range m.invoiceOrder {
		if inv := m.invoices[id]; inv.OwnerID == ownerID && inv.Status == model.StatusUnpaid {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (m *mockStorage) ExistingFingerprints(_ context.Context, ownerID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, id := range m.invoiceOrder {
		if inv := m.invoices[id]; inv.OwnerID == ownerID {
			out = append(out, inv.Fingerprint)
		}
	}
	return out, nil
}

func (m *mockStorage) UpdateInvoiceCategory(_ context.Context, id string, category model.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id]
	if !ok {
		return fmt.Errorf("%w: invoice %s", common.ErrNotFound, id)
	}
	inv.Category = category
	return nil
}

func (m *mockStorage) ClearReviewFlag(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id]
	if !ok {
		return fmt.Errorf("%w: invoice %s", common.ErrNotFound, id)
	}
	inv.NeedsReview = false
	return nil
}

func (m *mockStorage) SaveTransactions(_ context.Context, transactions []model.BankTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, txn := range transactions {
		cp := txn
		if _, exists := m.transactions[txn.ID]; !exists {
			m.transactionOrder = append(m.transactionOrder, txn.ID)
		}
		m.transactions[txn.ID] = &cp
	}
	return nil
}

func (m *mockStorage) GetUnreconciledTransactions(_ context.Context, ownerID string) ([]model.BankTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.BankTransaction
	for _, id := range m.transactionOrder {
		if txn := m.transactions[id]; txn.OwnerID == ownerID && !txn.Reconciled {
			out = append(out, *txn)
		}
	}
	return out, nil
}

func (m *mockStorage) MarkReconciled(_ context.Context, invoiceID, transactionID string, paymentDate time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[invoiceID]
	if !ok {
		return fmt.Errorf("%w: invoice %s", common.ErrNotFound, invoiceID)
	}
	txn, ok := m.transactions[transactionID]
	if !ok {
		return fmt.Errorf("%w: transaction %s", common.ErrNotFound, transactionID)
	}
	inv.Status = model.StatusPaid
	inv.PaymentDate = paymentDate
	txn.Reconciled = true
	txn.MatchedInvoiceID = invoiceID
	return nil
}

func (m *mockStorage) GetSummary(_ context.Context, _ string, _, _ time.Time) (*service.Summary, error) {
	return &service.Summary{}, nil
}

func (m *mockStorage) Migrate(_ context.Context) error { return nil }

func (m *mockStorage) Close() error { return nil }
