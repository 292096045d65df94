package main

import (
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aj2nd/Save2/internal/cli"
	"github.com/aj2nd/Save2/internal/common"
	"github.com/aj2nd/Save2/internal/engine"
)

func processCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process [file...]",
		Short: "Process OCR'd invoice text into structured records",
		Long: `Extract structured fields from raw invoice text, categorize the
expense, validate it and store the result.

Reads each named file, or stdin when no files are given. Duplicate
submissions are reported and skipped, not stored twice.`,
		RunE: runProcess,
	}
}

func runProcess(cmd *cobra.Command, args []string) error {
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

	eng := engine.NewWithConfig(store, engineConfig())

	documents, err := readDocuments(args)
	if err != nil {
		return err
	}

	var failed bool
	for _, doc := range documents {
		outcome, err := eng.ProcessDocument(ctx, owner, doc.text)
		if err != nil {
			common.LogError(err, "document processing failed", common.Fields{"document": doc.name})
			fmt.Println(cli.FormatError(fmt.Sprintf("%s: %v", doc.name, err)))
			failed = true
			continue
		}
		if outcome.Duplicate {
			fmt.Println(cli.FormatWarning(fmt.Sprintf("%s: duplicate of an existing invoice, skipped", doc.name)))
			continue
		}
		fmt.Println(cli.RenderBox(doc.name, cli.FormatInvoice(outcome.Invoice)))
	}

	if failed {
		return fmt.Errorf("some documents could not be processed")
	}
	return nil
}

// engineConfig builds the pipeline tuning from the loaded configuration,
// keeping the built-in defaults for unset keys.
func engineConfig() engine.Config {
	config := engine.DefaultConfig()
	if viper.IsSet("review.threshold") {
		config.ReviewThreshold = viper.GetFloat64("review.threshold")
	}
	if viper.IsSet("tax.rate") {
		config.TaxRate = decimal.NewFromFloat(viper.GetFloat64("tax.rate"))
	}
	if viper.IsSet("extract.year_floor") {
		config.YearFloor = viper.GetInt("extract.year_floor")
	}
	if viper.IsSet("currency") {
		config.Currency = viper.GetString("currency")
	}
	return config
}

type document struct {
	name string
	text string
}

func readDocuments(args []string) ([]document, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return []document{{name: "stdin", text: string(data)}}, nil
	}

	documents := make([]document, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path) // #nosec G304 -- user-supplied input path
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		documents = append(documents, document{name: path, text: string(data)})
	}
	return documents, nil
}
