package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aj2nd/Save2/internal/cli"
	"github.com/aj2nd/Save2/internal/model"
	"github.com/aj2nd/Save2/internal/service"
)

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored invoices",
		RunE:  runList,
	}

	cmd.Flags().Bool("unpaid", false, "only unpaid invoices")
	cmd.Flags().Bool("review", false, "only invoices flagged for review")
	cmd.Flags().String("category", "", "filter by expense category")
	cmd.Flags().Int("limit", 50, "maximum invoices to show")

	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	owner, err := resolveOwner()
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	filter := service.InvoiceFilter{}
	if unpaid, _ := cmd.Flags().GetBool("unpaid"); unpaid {
		status := model.StatusUnpaid
		filter.Status = &status
	}
	if review, _ := cmd.Flags().GetBool("review"); review {
		needsReview := true
		filter.NeedsReview = &needsReview
	}
	filter.Category, _ = cmd.Flags().GetString("category")
	filter.Limit, _ = cmd.Flags().GetInt("limit")

	invoices, err := store.GetInvoices(ctx, owner, filter)
	if err != nil {
		return fmt.Errorf("failed to list invoices: %w", err)
	}

	if len(invoices) == 0 {
		fmt.Println(cli.SubtleStyle.Render("No invoices found."))
		return nil
	}

	for i := range invoices {
		inv := &invoices[i]
		marker := " "
		if inv.NeedsReview {
			marker = cli.WarningStyle.Render(cli.WarningIcon)
		}
		fmt.Printf("%s %-10s  %-24s %12s  %-24s %s\n",
			marker,
			inv.InvoiceDate.Format("2006-01-02"),
			truncate(inv.VendorName, 24),
			inv.Amount.StringFixed(2),
			truncate(string(inv.Category), 24),
			inv.Status)
	}
	fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf("%d invoice(s)", len(invoices))))

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
