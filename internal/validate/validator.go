// Package validate checks extracted invoice fields for internal
// consistency. Findings are advisory: they feed the confidence score
// and the review queue, and never block record creation.
package validate

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aj2nd/Save2/internal/extract"
	"github.com/aj2nd/Save2/internal/model"
)

// taxTolerance is the allowed gap, in currency units, between the
// extracted tax amount and subtotal x rate before flagging a mismatch.
var taxTolerance = decimal.NewFromInt(1)

var oneHundred = decimal.NewFromInt(100)

// Validator applies the consistency rule set. Rules are independent;
// the emitted order is for display only.
type Validator struct {
	now func() time.Time
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock overrides the time source used by the future-date rule.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

// NewValidator creates a Validator with the given options.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate runs every rule against the extracted fields and returns the
// accumulated findings. taxRate is a percentage (5 means 5%).
func (v *Validator) Validate(fields extract.Fields, taxRate decimal.Decimal) []model.Finding {
	var findings []model.Finding

	if !fields.Amount.IsPositive() {
		findings = append(findings, model.Finding{Code: model.FindingNoValidAmount})
	}

	if fields.TaxAmount.IsPositive() && fields.Subtotal.IsPositive() {
		expected := fields.Subtotal.Mul(taxRate).Div(oneHundred)
		if fields.TaxAmount.Sub(expected).Abs().GreaterThan(taxTolerance) {
			findings = append(findings, model.Finding{
				Code:   model.FindingTaxMismatch,
				Detail: fmt.Sprintf("expected %s", expected.StringFixed(2)),
			})
		}

		if fields.Amount.IsPositive() {
			sum := fields.Subtotal.Add(fields.TaxAmount)
			if sum.Sub(fields.Amount).Abs().GreaterThan(taxTolerance) {
				findings = append(findings, model.Finding{
					Code:   model.FindingAmountMismatch,
					Detail: fmt.Sprintf("subtotal and tax sum to %s", sum.StringFixed(2)),
				})
			}
		}
	}

	if fields.VendorName == "" || fields.VendorName == model.UnknownVendor {
		findings = append(findings, model.Finding{Code: model.FindingVendorUnidentified})
	}

	if fields.InvoiceNumber == "" {
		findings = append(findings, model.Finding{Code: model.FindingInvoiceNumberMissing})
	}

	if fields.DateExtracted && fields.InvoiceDate.After(v.now()) {
		findings = append(findings, model.Finding{Code: model.FindingFutureDate})
	}

	return findings
}
