package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aj2nd/Save2/internal/cli"
	"github.com/aj2nd/Save2/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List the expense categories and their keywords",
		RunE:  runCategories,
	}

	cmd.Flags().Bool("keywords", false, "show the keywords behind each category")

	return cmd
}

func runCategories(cmd *cobra.Command, _ []string) error {
	showKeywords, _ := cmd.Flags().GetBool("keywords")

	fmt.Println(cli.TitleStyle.Render("Expense categories"))
	for _, def := range model.CategoryDefinitions() {
		fmt.Println("  " + cli.BoldStyle.Render(string(def.Name)))
		if showKeywords && len(def.Keywords) > 0 {
			fmt.Println("    " + cli.SubtleStyle.Render(strings.Join(def.Keywords, ", ")))
		}
	}
	return nil
}
