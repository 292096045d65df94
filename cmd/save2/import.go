package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/aj2nd/Save2/internal/cli"
	"github.com/aj2nd/Save2/internal/common"
	"github.com/aj2nd/Save2/internal/model"
	"github.com/aj2nd/Save2/internal/statement"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file...>",
		Short: "Import bank statement files (CSV or OFX/QFX)",
		Long: `Import bank statements so their transactions can be reconciled
against stored invoices.

CSV files must have date, description and amount columns with a header
row. Unparseable rows are logged and skipped; a file with no usable
rows fails the import. OFX and QFX exports are parsed as-is.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().String("format", "", "statement format (csv, ofx); default: by file extension")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
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

	format, _ := cmd.Flags().GetString("format")

	bar := progressbar.NewOptions(len(args),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Importing statements..."),
	)

	var imported int
	for _, path := range args {
		transactions, err := parseStatement(owner, path, format)
		if err != nil {
			_ = bar.Close()
			return fmt.Errorf("failed to import %s: %w", path, err)
		}
		if err := store.SaveTransactions(ctx, transactions); err != nil {
			_ = bar.Close()
			return fmt.Errorf("failed to save transactions from %s: %w", path, err)
		}
		imported += len(transactions)
		common.LogInfo("Imported statement", common.Fields{"file": path, "transactions": len(transactions)})
		_ = bar.Add(1)
	}
	_ = bar.Close()
	fmt.Println()

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Imported %d transaction(s) from %d file(s)", imported, len(args))))
	return nil
}

func parseStatement(owner, path, format string) ([]model.BankTransaction, error) {
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".ofx", ".qfx":
			format = "ofx"
		default:
			format = "csv"
		}
	}

	f, err := os.Open(path) // #nosec G304 -- user-supplied input path
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	switch format {
	case "csv":
		return statement.NewCSVIngestor().Parse(owner, f)
	case "ofx":
		return statement.NewOFXIngestor().Parse(owner, f)
	default:
		return nil, fmt.Errorf("unknown statement format %q", format)
	}
}
