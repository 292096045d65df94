package main

import (
	"github.com/spf13/cobra"

	"github.com/aj2nd/Save2/internal/cli"
)

func reviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Interactively review low-confidence invoices",
		Long: `Open an interactive screen listing every invoice whose confidence
fell below the review threshold. Approving an invoice clears its
review flag.`,
		RunE: runReview,
	}
}

func runReview(cmd *cobra.Command, _ []string) error {
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

	return cli.RunReview(ctx, store, owner)
}
