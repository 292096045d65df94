// Package extract pulls candidate invoice fields out of raw OCR text.
//
// Every field is driven by an ordered rule table in rules.go. The table
// order is part of the contract: when more than one rule could match,
// the earlier rule wins, and the tests pin that order. Extraction never
// fails on a missing field; absence is an ordinary result that the
// confidence scorer penalizes later.
package extract

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/aj2nd/Save2/internal/common"
	"github.com/aj2nd/Save2/internal/model"
)

// Plausibility bounds for monetary candidates. Values outside this range
// are OCR noise (stray digits, phone fragments, TRNs).
var (
	minPlausibleAmount = decimal.NewFromFloat(0.01)
	maxPlausibleAmount = decimal.NewFromInt(1_000_000)
)

// maxLineItems caps the extracted line-item list.
const maxLineItems = 10

// DefaultYearFloor rejects date parses before this year as OCR noise.
const DefaultYearFloor = 2000

// Fields holds the candidate values extracted from one OCR text.
// Zero values mean the field was not found.
type Fields struct {
	InvoiceDate   time.Time
	DueDate       time.Time
	InvoiceNumber string
	VendorName    string
	VendorTaxID   string
	VendorPhone   string
	VendorAddress string
	Currency      string
	LineItems     []model.LineItem
	Amount        decimal.Decimal
	Subtotal      decimal.Decimal
	TaxAmount     decimal.Decimal

	// DateExtracted is false when InvoiceDate was defaulted to today.
	DateExtracted bool
}

// Extractor applies the rule tables to raw text. It is stateless and
// safe for concurrent use.
type Extractor struct {
	now       func() time.Time
	yearFloor int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithYearFloor sets the earliest year accepted from a date parse.
func WithYearFloor(year int) Option {
	return func(e *Extractor) { e.yearFloor = year }
}

// WithClock overrides the time source used for the invoice-date default.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// NewExtractor creates an Extractor with the given options.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		yearFloor: DefaultYearFloor,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract applies every rule table to rawText and returns the candidate
// fields. The only error condition is text with nothing to extract.
func (e *Extractor) Extract(rawText string) (Fields, error) {
	if strings.TrimSpace(rawText) == "" {
		return Fields{}, common.ErrMalformedInput
	}

	f := Fields{
		Amount:    e.extractAmount(rawText),
		Subtotal:  firstMoney(subtotalRules, rawText),
		TaxAmount: firstMoney(taxRules, rawText),
		Currency:  extractCurrency(rawText),
		LineItems: extractLineItems(rawText),
	}
	f.InvoiceNumber = extractInvoiceNumber(rawText)
	f.VendorName = extractVendor(rawText)
	f.VendorTaxID = extractTaxID(rawText)
	f.VendorPhone = extractPhone(rawText)
	f.VendorAddress = extractAddress(rawText)

	if date, ok := e.firstDate(invoiceDateRules, rawText); ok {
		f.InvoiceDate = date
		f.DateExtracted = true
	} else {
		// Default to the processing day. DateExtracted stays false so
		// the scorer can tell the default apart from a real extraction.
		f.InvoiceDate = e.now()
	}
	if due, ok := e.firstDate(dueDateRules, rawText); ok {
		f.DueDate = due
	}

	return f, nil
}

// extractAmount collects every monetary candidate from every amount rule
// and returns the maximum plausible value. The grand total is normally
// the largest figure printed; line items and partials are smaller.
func (e *Extractor) extractAmount(text string) decimal.Decimal {
	best := decimal.Zero
	for _, rule := range amountRules {
		for _, m := range rule.re.FindAllStringSubmatch(text, -1) {
			value, ok := parseMoney(m[1])
			if !ok {
				continue
			}
			if value.GreaterThan(best) {
				best = value
			}
		}
	}
	return best
}

// firstMoney returns the first plausible match across the table, in
// table order. Subtotal and tax labels are specific enough that the
// first hit is the right one.
func firstMoney(rules []fieldRule, text string) decimal.Decimal {
	for _, rule := range rules {
		m := rule.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if value, ok := parseMoney(m[1]); ok {
			return value
		}
	}
	return decimal.Zero
}

func parseMoney(s string) (decimal.Decimal, bool) {
	cleaned := strings.ReplaceAll(s, ",", "")
	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	if value.LessThan(minPlausibleAmount) || value.GreaterThan(maxPlausibleAmount) {
		return decimal.Zero, false
	}
	return value, true
}

func extractInvoiceNumber(text string) string {
	for _, rule := range invoiceNumberRules {
		m := rule.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		token := strings.TrimSpace(m[1])
		if len(token) < 3 {
			continue
		}
		return strings.ToUpper(token)
	}
	return ""
}

func (e *Extractor) firstDate(rules []fieldRule, text string) (time.Time, bool) {
	for _, rule := range rules {
		m := rule.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if date, ok := ParseDate(m[1], e.yearFloor); ok {
			return date, true
		}
	}
	return time.Time{}, false
}

// extractVendor resolves the vendor identity in precision order: the
// closed known-vendor list, then label rules, then structural heuristics.
func extractVendor(text string) string {
	lower := strings.ToLower(text)
	for _, vendor := range knownVendors {
		if strings.Contains(lower, strings.ToLower(vendor)) {
			return vendor
		}
	}

	for _, rule := range vendorRules {
		m := rule.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		if name != "" {
			return name
		}
	}

	if m := capitalizedRun.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if line := firstCapitalizedLine(text); line != "" {
		return line
	}
	return model.UnknownVendor
}

// firstCapitalizedLine returns the first line that looks like a company
// name header rather than a labelled field or a number row.
func firstCapitalizedLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 3 || len(line) > 60 {
			continue
		}
		first := []rune(line)[0]
		if !unicode.IsUpper(first) {
			continue
		}
		if strings.ContainsRune(line, ':') {
			continue
		}
		if digitCount(line) > 2 {
			continue
		}
		return line
	}
	return ""
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

// extractTaxID returns the 15-digit UAE tax registration number, or ""
// when no capture has exactly 15 digits.
func extractTaxID(text string) string {
	for _, rule := range trnRules {
		m := rule.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		digits := strings.ReplaceAll(m[1], " ", "")
		if len(digits) != 15 {
			continue
		}
		return digits
	}
	return ""
}

func extractPhone(text string) string {
	if m := phonePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func extractAddress(text string) string {
	for _, rule := range addressRules {
		m := rule.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		addr := strings.TrimSpace(m[1])
		if addr != "" {
			return addr
		}
	}
	return ""
}

// lineItemLabels are row prefixes that look like items to the shape
// pattern but are really summary rows.
var lineItemLabels = map[string]bool{
	"total":     true,
	"subtotal":  true,
	"sub total": true,
	"vat":       true,
	"tax":       true,
	"balance":   true,
	"amount":    true,
}

func extractLineItems(text string) []model.LineItem {
	var items []model.LineItem
	for _, m := range lineItemPattern.FindAllStringSubmatch(text, -1) {
		if len(items) == maxLineItems {
			break
		}
		desc := strings.TrimSpace(m[1])
		if desc == "" || lineItemLabels[strings.ToLower(desc)] {
			continue
		}
		qty, err := strconv.Atoi(m[2])
		if err != nil || qty < 1 {
			continue
		}
		amount, ok := parseMoney(m[3])
		if !ok {
			continue
		}
		items = append(items, model.LineItem{
			Description: desc,
			Quantity:    qty,
			Amount:      amount,
		})
	}
	return items
}

func extractCurrency(text string) string {
	if m := currencyPattern.FindStringSubmatch(text); m != nil {
		return strings.ToUpper(m[1])
	}
	return ""
}
