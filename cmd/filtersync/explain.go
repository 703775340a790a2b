package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/filtersync/internal/errors"
)

func explainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain <code>",
		Short: "Describe a filtersync error code",
		Long: `Describe a filtersync error code such as F001.

Examples:
  filtersync explain F001
  filtersync explain f005`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := strings.ToUpper(args[0])
			tmpl, ok := errors.GetTemplate(code)
			if !ok {
				return errors.Newf(errors.CategoryCLI, "unknown error code %q", args[0]).
					WithSuggestion("Codes run from F001 to F005")
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s  %s\n\n", code, tmpl.Message)
			info(w, "category: %s", tmpl.Category)
			info(w, "%s", tmpl.Detail)
			info(w, "docs: %s", tmpl.DocURL)
			return nil
		},
	}
}
