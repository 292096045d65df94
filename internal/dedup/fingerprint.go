// Package dedup detects re-submission of the same source document.
//
// Two photographs of the same invoice OCR slightly differently, so the
// fingerprint is computed over normalized extracted fields, never over
// raw text.
package dedup

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Fingerprint computes the stable dedup key for an invoice from its
// normalized vendor, amount and date.
func Fingerprint(vendorName string, amount decimal.Decimal, date time.Time) string {
	normalized := fmt.Sprintf("%s:%s:%s",
		strings.ToLower(strings.Join(strings.Fields(vendorName), " ")),
		amount.StringFixed(2),
		date.Format("2006-01-02"))
	hash := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", hash)
}

// Guard answers duplicate checks against the fingerprints already
// persisted for an owner.
type Guard struct {
	existing map[string]bool
}

// NewGuard creates a Guard over the given fingerprint set.
func NewGuard(fingerprints []string) *Guard {
	existing := make(map[string]bool, len(fingerprints))
	for _, fp := range fingerprints {
		existing[fp] = true
	}
	return &Guard{existing: existing}
}

// IsDuplicate reports whether the fingerprint was already persisted.
func (g *Guard) IsDuplicate(fingerprint string) bool {
	return g.existing[fingerprint]
}
