// Package score computes the extraction confidence for an invoice.
//
// This is the one place confidence weights live. Every caller goes
// through Scorer; nothing else in the codebase derives its own
// weighting. The score is a deterministic weighted sum, not a model
// output.
package score

import (
	"github.com/aj2nd/Save2/internal/extract"
	"github.com/aj2nd/Save2/internal/model"
)

// Weights is the canonical confidence weighting table. The fields sum
// to 1.0 before finding penalties are applied.
type Weights struct {
	Amount         float64
	Vendor         float64
	InvoiceNumber  float64
	Date           float64
	TaxConsistency float64
	Category       float64
	Secondary      float64
}

// DefaultWeights is the contract weighting.
var DefaultWeights = Weights{
	Amount:         0.30,
	Vendor:         0.20,
	InvoiceNumber:  0.15,
	Date:           0.10,
	TaxConsistency: 0.10,
	Category:       0.05,
	Secondary:      0.10,
}

// DefaultReviewThreshold marks records below it for human review.
const DefaultReviewThreshold = 0.75

// findingPenalty is subtracted once per validation finding.
const findingPenalty = 0.05

// secondaryFieldCount is the number of pro-rated secondary signals:
// tax id, phone, due date.
const secondaryFieldCount = 3

// Scorer combines field presence and consistency into a 0-1 confidence
// and the derived needs-review flag.
type Scorer struct {
	weights   Weights
	threshold float64
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithThreshold overrides the review threshold.
func WithThreshold(threshold float64) Option {
	return func(s *Scorer) { s.threshold = threshold }
}

// WithWeights overrides the weighting table.
func WithWeights(weights Weights) Option {
	return func(s *Scorer) { s.weights = weights }
}

// NewScorer creates a Scorer with the contract defaults.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		weights:   DefaultWeights,
		threshold: DefaultReviewThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Threshold returns the configured review threshold.
func (s *Scorer) Threshold() float64 {
	return s.threshold
}

// Score computes the confidence for the extracted fields and findings.
// needsReview is true exactly when the confidence falls below the
// review threshold.
func (s *Scorer) Score(fields extract.Fields, category model.Category, findings []model.Finding) (confidence float64, needsReview bool) {
	w := s.weights

	if fields.Amount.IsPositive() {
		confidence += w.Amount
	}
	if fields.VendorName != "" && fields.VendorName != model.UnknownVendor {
		confidence += w.Vendor
	}
	if fields.InvoiceNumber != "" {
		confidence += w.InvoiceNumber
	}
	// Only a genuinely extracted date counts; the "today" default does not.
	if fields.DateExtracted {
		confidence += w.Date
	}
	if fields.TaxAmount.IsPositive() && fields.Subtotal.IsPositive() &&
		!model.HasFinding(findings, model.FindingTaxMismatch) {
		confidence += w.TaxConsistency
	}
	if category != model.CategoryMiscellaneous {
		confidence += w.Category
	}

	secondary := 0
	if fields.VendorTaxID != "" {
		secondary++
	}
	if fields.VendorPhone != "" {
		secondary++
	}
	if !fields.DueDate.IsZero() {
		secondary++
	}
	confidence += w.Secondary * float64(secondary) / secondaryFieldCount

	confidence -= findingPenalty * float64(len(findings))

	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return confidence, confidence < s.threshold
}
