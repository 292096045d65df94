package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MatchPair records one reconciled invoice/transaction pairing.
type MatchPair struct {
	PaymentDate   time.Time
	InvoiceID     string
	TransactionID string
	VendorName    string
	Amount        decimal.Decimal
}

// Description renders the pair for the human-facing reply.
func (p MatchPair) Description() string {
	return fmt.Sprintf("%s %s paid on %s",
		p.VendorName,
		p.Amount.StringFixed(2),
		p.PaymentDate.Format("2006-01-02"))
}

// MatchResult summarizes one reconciliation run.
type MatchResult struct {
	Pairs   []MatchPair
	Matched int
}

// Descriptions returns the human-readable line per match, in match order.
func (r MatchResult) Descriptions() []string {
	out := make([]string, len(r.Pairs))
	for i, p := range r.Pairs {
		out[i] = p.Description()
	}
	return out
}
