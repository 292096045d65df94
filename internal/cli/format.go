package cli

import (
	"fmt"
	"strings"

	"github.com/aj2nd/Save2/internal/model"
	"github.com/aj2nd/Save2/internal/service"
)

// FormatInvoice renders one processed invoice for terminal output.
func FormatInvoice(inv *model.Invoice) string {
	var b strings.Builder

	writeField(&b, "Vendor", inv.VendorName)
	if inv.InvoiceNumber != "" {
		writeField(&b, "Invoice No", inv.InvoiceNumber)
	}
	writeField(&b, "Amount", fmt.Sprintf("%s %s", inv.Currency, inv.Amount.StringFixed(2)))
	if !inv.Subtotal.IsZero() {
		writeField(&b, "Subtotal", fmt.Sprintf("%s %s", inv.Currency, inv.Subtotal.StringFixed(2)))
	}
	if !inv.TaxAmount.IsZero() {
		writeField(&b, "VAT", fmt.Sprintf("%s %s", inv.Currency, inv.TaxAmount.StringFixed(2)))
	}
	date := inv.InvoiceDate.Format("2006-01-02")
	if !inv.DateExtracted {
		date += SubtleStyle.Render(" (assumed)")
	}
	writeField(&b, "Date", date)
	if !inv.DueDate.IsZero() {
		writeField(&b, "Due", inv.DueDate.Format("2006-01-02"))
	}
	writeField(&b, "Category", string(inv.Category))
	if inv.VendorTaxID != "" {
		writeField(&b, "TRN", inv.VendorTaxID)
	}
	writeField(&b, "Status", string(inv.Status))

	confidence := fmt.Sprintf("%.0f%%", inv.Confidence*100)
	if inv.NeedsReview {
		confidence += " " + WarningStyle.Render("needs review")
	}
	writeField(&b, "Confidence", confidence)

	for _, finding := range inv.Findings {
		line := string(finding.Code)
		if finding.Detail != "" {
			line += ": " + finding.Detail
		}
		b.WriteString(WarningStyle.Render(WarningIcon+" "+line) + "\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// FormatMatchResult renders a reconciliation run, one line per match.
func FormatMatchResult(result model.MatchResult) string {
	if result.Matched == 0 {
		return SubtleStyle.Render("No matches found.")
	}

	var b strings.Builder
	b.WriteString(FormatSuccess(fmt.Sprintf("%d invoice(s) reconciled", result.Matched)) + "\n")
	for _, line := range result.Descriptions() {
		b.WriteString("  " + line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatSummary renders the owner's financial summary.
func FormatSummary(summary *service.Summary) string {
	var b strings.Builder

	writeField(&b, "Invoices", fmt.Sprintf("%d", summary.TotalCount))
	writeField(&b, "Total", summary.TotalAmount.StringFixed(2))
	writeField(&b, "Average", summary.AverageAmount.StringFixed(2))
	writeField(&b, "VAT", summary.TaxAmount.StringFixed(2))
	writeField(&b, "Unpaid", fmt.Sprintf("%d (%s)", summary.UnpaidCount, summary.UnpaidAmount.StringFixed(2)))
	if summary.ReviewCount > 0 {
		writeField(&b, "Needs review", WarningStyle.Render(fmt.Sprintf("%d", summary.ReviewCount)))
	}

	if len(summary.ByCategory) > 0 {
		b.WriteString("\n" + BoldStyle.Render("By category") + "\n")
		for _, cs := range summary.ByCategory {
			b.WriteString(fmt.Sprintf("  %-28s %3d  %12s\n",
				cs.Category, cs.Count, cs.Amount.StringFixed(2)))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func writeField(b *strings.Builder, label, value string) {
	b.WriteString(LabelStyle.Render(label) + " " + value + "\n")
}
