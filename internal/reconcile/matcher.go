// Package reconcile pairs outgoing bank transactions with the unpaid
// invoices they settle.
package reconcile

import (
	"strings"

	"github.com/aj2nd/Save2/internal/model"
)

// Matcher implements the greedy one-shot reconciliation pass.
type Matcher struct{}

// NewMatcher creates a Matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Reconcile walks the unreconciled transactions in input order and, for
// each outgoing transaction, scans the remaining unpaid invoices in
// stable input order. A pair matches when the transaction's absolute
// amount equals the invoice amount exactly and the invoice's vendor
// name appears, case-insensitively, in the transaction description.
//
// Matching is greedy: at most one transaction per invoice and one
// invoice per transaction. Matched records are updated in place
// (invoice status and payment date, transaction reconciled flag and
// back-reference); the caller persists them. Non-negative transactions
// are incoming funds and are skipped.
//
// Candidates are bucketed by amount for lookup; the matched set is
// identical to a linear scan.
func (m *Matcher) Reconcile(invoices []model.Invoice, transactions []model.BankTransaction) model.MatchResult {
	// Working set of candidate indices. Matched invoices leave the set;
	// the slice being scanned is never mutated mid-iteration.
	byAmount := make(map[string][]int)
	for i := range invoices {
		if invoices[i].Status != model.StatusUnpaid {
			continue
		}
		key := invoices[i].Amount.StringFixed(4)
		byAmount[key] = append(byAmount[key], i)
	}
	matched := make(map[int]bool)

	var result model.MatchResult
	for ti := range transactions {
		txn := &transactions[ti]
		if txn.Reconciled || !txn.Outgoing() {
			continue
		}

		paid := txn.Amount.Abs()
		desc := strings.ToLower(txn.Description)

		for _, ii := range byAmount[paid.StringFixed(4)] {
			if matched[ii] {
				continue
			}
			inv := &invoices[ii]
			if !paid.Equal(inv.Amount) {
				continue
			}
			vendor := strings.ToLower(inv.VendorName)
			if vendor == "" || !strings.Contains(desc, vendor) {
				continue
			}

			inv.Status = model.StatusPaid
			inv.PaymentDate = txn.Date
			txn.Reconciled = true
			txn.MatchedInvoiceID = inv.ID
			matched[ii] = true

			result.Pairs = append(result.Pairs, model.MatchPair{
				InvoiceID:     inv.ID,
				TransactionID: txn.ID,
				VendorName:    inv.VendorName,
				Amount:        inv.Amount,
				PaymentDate:   txn.Date,
			})
			break
		}
	}

	result.Matched = len(result.Pairs)
	return result
}
