package score

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/aj2nd/Save2/internal/extract"
	"github.com/aj2nd/Save2/internal/model"
)

func completeFields() extract.Fields {
	return extract.Fields{
		Amount:        decimal.NewFromInt(105),
		Subtotal:      decimal.NewFromInt(100),
		TaxAmount:     decimal.NewFromInt(5),
		InvoiceNumber: "INV-1001",
		VendorName:    "Gulf Medical Supplies",
		VendorTaxID:   "100123456789012",
		VendorPhone:   "+971 4 321 7654",
		InvoiceDate:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		DateExtracted: true,
	}
}

func TestScore_CompleteExtraction(t *testing.T) {
	s := NewScorer()

	confidence, needsReview := s.Score(completeFields(), model.CategoryMedicalSupplies, nil)

	assert.InDelta(t, 1.0, confidence, 1e-9)
	assert.False(t, needsReview)
}

func TestScore_EmptyExtraction(t *testing.T) {
	s := NewScorer()

	confidence, needsReview := s.Score(extract.Fields{}, model.CategoryMiscellaneous, nil)

	assert.InDelta(t, 0.0, confidence, 1e-9)
	assert.True(t, needsReview)
}

func TestScore_WeightsSumToOne(t *testing.T) {
	w := DefaultWeights
	sum := w.Amount + w.Vendor + w.InvoiceNumber + w.Date + w.TaxConsistency + w.Category + w.Secondary
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestScore_DefaultedDateNotCredited(t *testing.T) {
	s := NewScorer()

	genuine := completeFields()
	defaulted := completeFields()
	defaulted.DateExtracted = false

	withDate, _ := s.Score(genuine, model.CategoryMedicalSupplies, nil)
	withoutDate, _ := s.Score(defaulted, model.CategoryMedicalSupplies, nil)

	assert.InDelta(t, DefaultWeights.Date, withDate-withoutDate, 1e-9)
}

func TestScore_FindingPenalty(t *testing.T) {
	s := NewScorer()
	fields := completeFields()

	clean, _ := s.Score(fields, model.CategoryMedicalSupplies, nil)
	penalized, _ := s.Score(fields, model.CategoryMedicalSupplies, []model.Finding{
		{Code: model.FindingFutureDate},
	})

	assert.InDelta(t, 0.05, clean-penalized, 1e-9)
}

func TestScore_SecondaryFieldsProRated(t *testing.T) {
	s := NewScorer()

	fields := completeFields()
	fields.VendorTaxID = ""
	fields.VendorPhone = ""

	// One of three secondary fields present (due date).
	confidence, _ := s.Score(fields, model.CategoryMedicalSupplies, nil)
	full, _ := s.Score(completeFields(), model.CategoryMedicalSupplies, nil)

	assert.InDelta(t, DefaultWeights.Secondary*2.0/3.0, full-confidence, 1e-9)
}

// Adding a previously-missing required field never decreases confidence.
func TestScore_Monotonicity(t *testing.T) {
	s := NewScorer()

	base := extract.Fields{
		Subtotal:  decimal.NewFromInt(100),
		TaxAmount: decimal.NewFromInt(5),
	}

	additions := []struct {
		mutate func(*extract.Fields)
		name   string
	}{
		{func(f *extract.Fields) { f.Amount = decimal.NewFromInt(105) }, "amount"},
		{func(f *extract.Fields) { f.VendorName = "Gulf Medical Supplies" }, "vendor"},
		{func(f *extract.Fields) { f.InvoiceNumber = "INV-1" }, "invoice number"},
	}

	before, _ := s.Score(base, model.CategoryMiscellaneous, nil)
	for _, add := range additions {
		t.Run(add.name, func(t *testing.T) {
			fields := base
			add.mutate(&fields)

			after, _ := s.Score(fields, model.CategoryMiscellaneous, nil)
			assert.GreaterOrEqual(t, after, before)
		})
	}
}

func TestScore_NeedsReviewMatchesThresholdExactly(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		fields    extract.Fields
		category  model.Category
		want      bool
	}{
		{
			name:      "well above threshold",
			threshold: 0.75,
			fields:    completeFields(),
			category:  model.CategoryMedicalSupplies,
			want:      false,
		},
		{
			name:      "well below threshold",
			threshold: 0.75,
			fields:    extract.Fields{},
			category:  model.CategoryMiscellaneous,
			want:      true,
		},
		{
			name:      "exactly at threshold is not flagged",
			threshold: 1.0,
			fields:    completeFields(),
			category:  model.CategoryMedicalSupplies,
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScorer(WithThreshold(tt.threshold))
			confidence, needsReview := s.Score(tt.fields, tt.category, nil)
			assert.Equal(t, confidence < tt.threshold, needsReview)
			assert.Equal(t, tt.want, needsReview)
		})
	}
}
