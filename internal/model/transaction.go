package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankTransaction represents a single row from an imported bank statement.
// Amount is signed: negative values are outgoing payments.
type BankTransaction struct {
	Date             time.Time
	CreatedAt        time.Time
	ID               string
	OwnerID          string
	Description      string
	MatchedInvoiceID string
	Amount           decimal.Decimal
	Reconciled       bool
}

// Outgoing reports whether the transaction is an outgoing payment.
// Incoming funds are out of scope for invoice reconciliation.
func (t *BankTransaction) Outgoing() bool {
	return t.Amount.IsNegative()
}
