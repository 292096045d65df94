// Package engine orchestrates the invoice processing pipeline and
// bank reconciliation runs.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aj2nd/Save2/internal/categorize"
	"github.com/aj2nd/Save2/internal/common"
	"github.com/aj2nd/Save2/internal/dedup"
	"github.com/aj2nd/Save2/internal/extract"
	"github.com/aj2nd/Save2/internal/model"
	"github.com/aj2nd/Save2/internal/reconcile"
	"github.com/aj2nd/Save2/internal/score"
	"github.com/aj2nd/Save2/internal/service"
	"github.com/aj2nd/Save2/internal/validate"
)

// ProcessOutcome reports the result of one document run. A duplicate
// submission is a normal outcome, not an error: Invoice then holds the
// rejected record and Duplicate is true.
type ProcessOutcome struct {
	Invoice   *model.Invoice
	Duplicate bool
}

// Engine runs the extract, categorize, validate, score and persist
// pipeline, and drives reconciliation.
type Engine struct {
	storage     service.Storage
	extractor   *extract.Extractor
	categorizer *categorize.Categorizer
	validator   *validate.Validator
	scorer      *score.Scorer
	matcher     *reconcile.Matcher
	config      Config

	// Reconciliation runs are serialized per owner so two concurrent
	// runs cannot settle the same invoice twice.
	ownerLocks sync.Map
}

// Config holds engine tuning options. Zero-valued fields fall back to
// the defaults.
type Config struct {
	ReviewThreshold float64
	TaxRate         decimal.Decimal
	YearFloor       int
	Currency        string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		ReviewThreshold: score.DefaultReviewThreshold,
		TaxRate:         model.DefaultTaxRate,
		YearFloor:       extract.DefaultYearFloor,
		Currency:        model.DefaultCurrency,
	}
}

// New creates an engine with the default configuration.
func New(storage service.Storage) *Engine {
	return NewWithConfig(storage, DefaultConfig())
}

// NewWithConfig creates an engine with custom configuration.
func NewWithConfig(storage service.Storage, config Config) *Engine {
	defaults := DefaultConfig()
	if config.ReviewThreshold == 0 {
		config.ReviewThreshold = defaults.ReviewThreshold
	}
	if config.TaxRate.IsZero() {
		config.TaxRate = defaults.TaxRate
	}
	if config.YearFloor == 0 {
		config.YearFloor = defaults.YearFloor
	}
	if config.Currency == "" {
		config.Currency = defaults.Currency
	}

	return &Engine{
		storage:     storage,
		extractor:   extract.NewExtractor(extract.WithYearFloor(config.YearFloor)),
		categorizer: categorize.NewCategorizer(),
		validator:   validate.NewValidator(),
		scorer:      score.NewScorer(score.WithThreshold(config.ReviewThreshold)),
		matcher:     reconcile.NewMatcher(),
		config:      config,
	}
}

// ProcessDocument runs the full pipeline over one OCR text and persists
// the resulting invoice. Malformed input is the only hard failure;
// every validation finding degrades confidence instead.
func (e *Engine) ProcessDocument(ctx context.Context, ownerID, rawText string) (*ProcessOutcome, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: missing owner", common.ErrMalformedInput)
	}

	fields, err := e.extractor.Extract(rawText)
	if err != nil {
		return nil, fmt.Errorf("failed to extract fields: %w", err)
	}

	category := e.categorizer.Categorize(rawText)
	findings := e.validator.Validate(fields, e.config.TaxRate)
	confidence, needsReview := e.scorer.Score(fields, category, findings)

	invoice := e.buildInvoice(ownerID, rawText, fields, category, findings, confidence, needsReview)

	existing, err := e.storage.ExistingFingerprints(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load fingerprints: %w", err)
	}
	if dedup.NewGuard(existing).IsDuplicate(invoice.Fingerprint) {
		slog.Info("Duplicate invoice rejected",
			"owner", ownerID,
			"vendor", invoice.VendorName,
			"fingerprint", invoice.Fingerprint)
		return &ProcessOutcome{Invoice: invoice, Duplicate: true}, nil
	}

	if err := e.storage.SaveInvoice(ctx, invoice); err != nil {
		// A concurrent submission can land the same fingerprint between
		// the guard check and the insert.
		if errors.Is(err, common.ErrDuplicateInvoice) {
			return &ProcessOutcome{Invoice: invoice, Duplicate: true}, nil
		}
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	slog.Info("Processed invoice",
		"owner", ownerID,
		"vendor", invoice.VendorName,
		"amount", invoice.Amount,
		"category", invoice.Category,
		"confidence", invoice.Confidence,
		"needs_review", invoice.NeedsReview,
		"findings", len(invoice.Findings))

	return &ProcessOutcome{Invoice: invoice}, nil
}

// Reconcile matches an owner's unpaid invoices against their
// unreconciled bank transactions and persists every settled pair.
func (e *Engine) Reconcile(ctx context.Context, ownerID string) (model.MatchResult, error) {
	if ownerID == "" {
		return model.MatchResult{}, fmt.Errorf("%w: missing owner", common.ErrMalformedInput)
	}

	lock, _ := e.ownerLocks.LoadOrStore(ownerID, &sync.Mutex{})
	mu := lock.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()

	invoices, err := e.storage.GetUnpaidInvoices(ctx, ownerID)
	if err != nil {
		return model.MatchResult{}, fmt.Errorf("failed to load unpaid invoices: %w", err)
	}
	transactions, err := e.storage.GetUnreconciledTransactions(ctx, ownerID)
	if err != nil {
		return model.MatchResult{}, fmt.Errorf("failed to load transactions: %w", err)
	}

	result := e.matcher.Reconcile(invoices, transactions)

	for _, pair := range result.Pairs {
		if err := e.storage.MarkReconciled(ctx, pair.InvoiceID, pair.TransactionID, pair.PaymentDate); err != nil {
			return model.MatchResult{}, fmt.Errorf("failed to persist match for invoice %s: %w", pair.InvoiceID, err)
		}
	}

	slog.Info("Reconciliation complete",
		"owner", ownerID,
		"invoices", len(invoices),
		"transactions", len(transactions),
		"matched", result.Matched)

	return result, nil
}

func (e *Engine) buildInvoice(ownerID, rawText string, fields extract.Fields, category model.Category, findings []model.Finding, confidence float64, needsReview bool) *model.Invoice {
	currency := fields.Currency
	if currency == "" {
		currency = e.config.Currency
	}

	return &model.Invoice{
		ID:            uuid.New().String(),
		OwnerID:       ownerID,
		RawText:       rawText,
		InvoiceNumber: fields.InvoiceNumber,
		VendorName:    fields.VendorName,
		VendorTaxID:   fields.VendorTaxID,
		VendorPhone:   fields.VendorPhone,
		VendorAddress: fields.VendorAddress,
		Amount:        fields.Amount,
		Subtotal:      fields.Subtotal,
		TaxAmount:     fields.TaxAmount,
		TaxRate:       e.config.TaxRate,
		Currency:      currency,
		InvoiceDate:   fields.InvoiceDate,
		DateExtracted: fields.DateExtracted,
		DueDate:       fields.DueDate,
		LineItems:     fields.LineItems,
		Category:      category,
		Findings:      findings,
		Confidence:    confidence,
		NeedsReview:   needsReview,
		Status:        model.StatusUnpaid,
		Fingerprint:   dedup.Fingerprint(fields.VendorName, fields.Amount, fields.InvoiceDate),
	}
}
