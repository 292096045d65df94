package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aj2nd/Save2/internal/cli"
)

func summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show spending totals, VAT and per-category breakdown",
		Long: `Aggregate the owner's invoices over a period: count, total and
average amount, VAT total, unpaid balance and per-category totals.

Defaults to the current month.`,
		RunE: runSummary,
	}

	cmd.Flags().String("month", "", "month to summarize (YYYY-MM)")
	cmd.Flags().String("start", "", "period start (YYYY-MM-DD), overrides --month")
	cmd.Flags().String("end", "", "period end (YYYY-MM-DD), overrides --month")

	return cmd
}

func runSummary(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	owner, err := resolveOwner()
	if err != nil {
		return err
	}

	start, end, err := summaryPeriod(cmd)
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	summary, err := store.GetSummary(ctx, owner, start, end)
	if err != nil {
		return fmt.Errorf("failed to build summary: %w", err)
	}

	fmt.Println(cli.RenderBox(summaryTitle(start, end), cli.FormatSummary(summary)))
	return nil
}

func summaryTitle(start, end time.Time) string {
	return fmt.Sprintf("Summary %s to %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
}

func summaryPeriod(cmd *cobra.Command) (start, end time.Time, err error) {
	startFlag, _ := cmd.Flags().GetString("start")
	endFlag, _ := cmd.Flags().GetString("end")
	monthFlag, _ := cmd.Flags().GetString("month")

	if startFlag != "" || endFlag != "" {
		if startFlag == "" || endFlag == "" {
			return start, end, fmt.Errorf("--start and --end must be given together")
		}
		if start, err = time.Parse("2006-01-02", startFlag); err != nil {
			return start, end, fmt.Errorf("invalid --start: %w", err)
		}
		if end, err = time.Parse("2006-01-02", endFlag); err != nil {
			return start, end, fmt.Errorf("invalid --end: %w", err)
		}
		return start, end.Add(24*time.Hour - time.Nanosecond), nil
	}

	month := time.Now()
	if monthFlag != "" {
		if month, err = time.Parse("2006-01", monthFlag); err != nil {
			return start, end, fmt.Errorf("invalid --month: %w", err)
		}
	}

	start = time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end, nil
}
