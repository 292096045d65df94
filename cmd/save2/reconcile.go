package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aj2nd/Save2/internal/cli"
	"github.com/aj2nd/Save2/internal/engine"
)

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Match unpaid invoices against imported bank transactions",
		Long: `Walk the owner's unreconciled outgoing transactions and settle any
unpaid invoice whose amount matches exactly and whose vendor appears in
the transaction description. Each invoice and transaction is matched at
most once per run.`,
		RunE: runReconcile,
	}
}

func runReconcile(cmd *cobra.Command, _ []string) error {
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

	result, err := engine.New(store).Reconcile(ctx, owner)
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}

	fmt.Println(cli.FormatMatchResult(result))
	return nil
}
