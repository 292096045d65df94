package model

import "fmt"

// FindingCode names a validation issue detected in extracted data.
type FindingCode string

// Validation finding codes. Findings are advisory: they feed the
// confidence score and the review queue, never block record creation.
const (
	FindingNoValidAmount        FindingCode = "no-valid-amount"
	FindingTaxMismatch          FindingCode = "tax-mismatch"
	FindingAmountMismatch       FindingCode = "amount-mismatch"
	FindingVendorUnidentified   FindingCode = "vendor-unidentified"
	FindingInvoiceNumberMissing FindingCode = "invoice-number-missing"
	FindingFutureDate           FindingCode = "future-date"
)

// Finding is a single validation issue with optional detail
// (e.g. the expected tax amount for a tax-mismatch).
type Finding struct {
	Code   FindingCode
	Detail string
}

func (f Finding) String() string {
	if f.Detail == "" {
		return string(f.Code)
	}
	return fmt.Sprintf("%s (%s)", f.Code, f.Detail)
}

// HasFinding reports whether findings contains the given code.
func HasFinding(findings []Finding, code FindingCode) bool {
	for _, f := range findings {
		if f.Code == code {
			return true
		}
	}
	return false
}
