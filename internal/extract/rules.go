package extract

import "regexp"

// fieldRule is one entry in an ordered rule table. Table order is the
// tie-break when several rules could match, and tests pin that order.
type fieldRule struct {
	name string
	re   *regexp.Regexp
}

const moneyToken = `([0-9][0-9,]*(?:\.[0-9]{1,2})?)`

const dateToken = `([0-9]{1,4}[./\-][0-9]{1,2}[./\-][0-9]{2,4}` +
	`|[0-9]{1,2}\s+[A-Za-z]{3,9}\s+[0-9]{4}` +
	`|[A-Za-z]{3,9}\s+[0-9]{1,2},?\s+[0-9]{4})`

// amountRules collect every monetary candidate; the extractor keeps the
// maximum plausible value since the grand total is normally the largest
// figure printed on the page.
var amountRules = []fieldRule{
	{"labelled-total", regexp.MustCompile(`(?i)(?:grand\s+)?total(?:\s+amount)?(?:\s+due)?\s*[:=\-]?\s*(?:aed|dhs?)?\s*` + moneyToken)},
	{"amount-due", regexp.MustCompile(`(?i)(?:amount\s+due|balance\s+due|net\s+payable)\s*[:=\-]?\s*(?:aed|dhs?)?\s*` + moneyToken)},
	{"currency-prefixed", regexp.MustCompile(`(?i)(?:aed|dhs?)\s*([0-9][0-9,]*\.[0-9]{2})`)},
	{"currency-suffixed", regexp.MustCompile(`(?i)([0-9][0-9,]*\.[0-9]{2})\s*(?:aed|dhs?)\b`)},
	{"line-end-decimal", regexp.MustCompile(`(?m)([0-9][0-9,]*\.[0-9]{2})\s*$`)},
}

// subtotalRules are first-match-wins: the labels are rare enough that
// the first hit is the right one.
var subtotalRules = []fieldRule{
	{"subtotal", regexp.MustCompile(`(?i)sub\s*-?\s*total\s*[:=\-]?\s*(?:aed|dhs?)?\s*` + moneyToken)},
	{"net-amount", regexp.MustCompile(`(?i)net\s+amount\s*[:=\-]?\s*(?:aed|dhs?)?\s*` + moneyToken)},
	{"before-tax", regexp.MustCompile(`(?i)amount\s+before\s+(?:vat|tax)\s*[:=\-]?\s*(?:aed)?\s*` + moneyToken)},
}

var taxRules = []fieldRule{
	{"vat", regexp.MustCompile(`(?i)vat\s*(?:\(?\s*5\s*%\s*\)?)?\s*[:=\-]?\s*(?:aed|dhs?)?\s*` + moneyToken)},
	{"tax-amount", regexp.MustCompile(`(?i)\btax\s*(?:amount)?\s*[:=\-]?\s*(?:aed|dhs?)?\s*` + moneyToken)},
	{"five-percent", regexp.MustCompile(`(?i)5\s*%\s*(?:vat|tax)\s*[:=\-]?\s*(?:aed)?\s*` + moneyToken)},
}

var invoiceNumberRules = []fieldRule{
	{"invoice-hash", regexp.MustCompile(`(?i)invoice\s*#\s*:?\s*([A-Za-z0-9][A-Za-z0-9\-/]+)`)},
	{"invoice-number", regexp.MustCompile(`(?i)invoice\s+(?:no|number|num)\.?\s*[:#]?\s*([A-Za-z0-9][A-Za-z0-9\-/]+)`)},
	{"bill-number", regexp.MustCompile(`(?i)bill\s+(?:no|number)\.?\s*[:#]?\s*([A-Za-z0-9][A-Za-z0-9\-/]+)`)},
	{"inv-abbrev", regexp.MustCompile(`(?i)\binv\s*\.?\s*(?:no)?\s*[:#]\s*([A-Za-z0-9][A-Za-z0-9\-/]+)`)},
}

var invoiceDateRules = []fieldRule{
	{"invoice-date", regexp.MustCompile(`(?i)invoice\s+date\s*[:\-]?\s*` + dateToken)},
	{"date-of-issue", regexp.MustCompile(`(?i)date\s+of\s+issue\s*[:\-]?\s*` + dateToken)},
	{"date", regexp.MustCompile(`(?i)\bdate\s*[:\-]\s*` + dateToken)},
}

var dueDateRules = []fieldRule{
	{"due-date", regexp.MustCompile(`(?i)due\s+date\s*[:\-]?\s*` + dateToken)},
	{"payment-due", regexp.MustCompile(`(?i)payment\s+due(?:\s+(?:by|date))?\s*[:\-]?\s*` + dateToken)},
	{"pay-by", regexp.MustCompile(`(?i)pay\s+by\s*[:\-]?\s*` + dateToken)},
}

// knownVendors is a closed list checked before the generic vendor rules.
// A case-insensitive substring hit on one of these is higher precision
// than anything a label pattern can produce.
var knownVendors = []string{
	"DEWA",
	"SEWA",
	"Etisalat",
	"Emirates NBD",
	"ADNOC",
	"ENOC",
	"Salik",
	"Carrefour",
	"Lulu Hypermarket",
	"Spinneys",
	"Talabat",
	"Careem",
	"Aramex",
	"Amazon",
	"Emirates Post",
}

var vendorRules = []fieldRule{
	{"from", regexp.MustCompile(`(?im)^\s*from\s*[:\-]\s*(.+)$`)},
	{"vendor", regexp.MustCompile(`(?im)^\s*vendor\s*[:\-]\s*(.+)$`)},
	{"company", regexp.MustCompile(`(?im)^\s*(?:company|supplier)\s*(?:name)?\s*[:\-]\s*(.+)$`)},
	{"billed-from", regexp.MustCompile(`(?im)^\s*billed?\s+from\s*[:\-]\s*(.+)$`)},
}

// capitalizedRun matches a run of two or more capitalized words, used as
// a company-name proxy when no vendor label is present.
var capitalizedRun = regexp.MustCompile(`(?m)^([A-Z][A-Za-z&.]+(?:\s+[A-Z][A-Za-z&.]+)+)\s*$`)

var trnRules = []fieldRule{
	{"trn", regexp.MustCompile(`(?i)\btrn\s*(?:no|number|#)?\s*[:.\-]?\s*([0-9][0-9 ]{13,20}[0-9])`)},
	{"tax-registration", regexp.MustCompile(`(?i)tax\s+registration\s*(?:no|number|#)?\s*[:.\-]?\s*([0-9][0-9 ]{13,20}[0-9])`)},
}

// phonePattern matches UAE phone numbers in international or local form.
var phonePattern = regexp.MustCompile(`(\+971[\s\-]?[0-9]{1,2}[\s\-]?[0-9]{3}[\s\-]?[0-9]{4}|\b0[0-9]{1,2}[\s\-]?[0-9]{3}[\s\-]?[0-9]{4})\b`)

// addressRules are length-bounded so a match never swallows a paragraph.
var addressRules = []fieldRule{
	{"po-box", regexp.MustCompile(`(?i)(p\.?\s?o\.?\s?box[\s:]*[0-9]{1,6}[^\n]{0,40})`)},
	{"emirate", regexp.MustCompile(`(?i)([^\n]{0,50}\b(?:dubai|abu dhabi|sharjah|ajman|fujairah|ras al khaimah|umm al quwain|al ain)\b[^\n]{0,25})`)},
}

// lineItemPattern matches a <description> <quantity> <amount> row.
var lineItemPattern = regexp.MustCompile(`(?im)^\s*([A-Za-z][A-Za-z0-9 .\-/&()]{2,49}?)\s+([0-9]{1,3})\s+(?:aed\s*)?([0-9][0-9,]*\.[0-9]{2})\s*$`)

var currencyPattern = regexp.MustCompile(`(?i)\b(AED|USD|EUR|GBP|SAR|INR)\b`)
