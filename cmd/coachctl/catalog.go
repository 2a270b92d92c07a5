package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/writecoach-backend/internal/app"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the lesson catalog",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a catalog file, or the embedded default",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCatalogValidate,
}

func init() {
	catalogCmd.AddCommand(catalogValidateCmd)
}

func runCatalogValidate(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	cat, err := app.LoadCatalog(path)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, category := range cat.Categories() {
		n := 0
		for _, l := range cat.Lessons() {
			if l.Category == category {
				n++
			}
		}
		fmt.Fprintf(out, "%-12s %d lessons\n", category, n)
	}
	fmt.Fprintf(out, "ok: %d lessons\n", len(cat.Lessons()))
	return nil
}
